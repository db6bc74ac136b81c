// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Backend and Stream interfaces with pulse, malgo, PortAudio and oto implementations
// Package output enumerates output devices and opens blocking playback streams.
//
// Backends:
//   - pulse: PulseAudio/PipeWire native protocol (default, pure Go)
//   - malgo: miniaudio via cgo
//   - portaudio: PortAudio via cgo (build with -tags portaudio)
//   - oto: system default device only
//
// Mock is an in-memory backend for tests.
//
// Example:
//
//	backend, err := output.New("pulse")
//	devices, err := backend.Devices()
//	stream, err := backend.OpenStream(devices[0], 48000, 2)
//	defer stream.Close()
//	err = stream.Write(samples)
package output
