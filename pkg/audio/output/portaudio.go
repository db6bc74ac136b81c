//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform device enumeration and blocking-write streams using PortAudio
package output

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// Frames handed to PortAudio per blocking write
const portaudioFramesPerBuffer = 1024

// PortAudio backend
type PortAudio struct{}

// NewPortAudio initializes PortAudio
func NewPortAudio() (Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, driverError("initialize portaudio", err)
	}
	return &PortAudio{}, nil
}

// Name returns the backend identifier
func (p *PortAudio) Name() string {
	return "portaudio"
}

// Devices lists every PortAudio device across host APIs
func (p *PortAudio) Devices() ([]DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, driverError("enumerate devices", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i, info := range infos {
		id := info.Name
		if info.HostApi != nil {
			id = info.HostApi.Name + ":" + info.Name
		}
		devices = append(devices, DeviceInfo{
			Index:             i,
			Name:              info.Name,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: int(info.DefaultSampleRate),
			ID:                id,
		})
	}
	return devices, nil
}

// OpenStream opens and starts a blocking output stream
func (p *PortAudio) OpenStream(dev DeviceInfo, sampleRate, channels int) (Stream, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, driverError("enumerate devices", err)
	}
	if dev.Index < 0 || dev.Index >= len(infos) {
		return nil, fmt.Errorf("%w: device %d disappeared", ErrDriver, dev.Index)
	}

	params := portaudio.HighLatencyParameters(nil, infos[dev.Index])
	params.Input.Device = nil
	params.Input.Channels = 0
	params.Output.Channels = channels
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = portaudioFramesPerBuffer

	buffer := make([]float32, portaudioFramesPerBuffer*channels)
	stream, err := portaudio.OpenStream(params, buffer)
	if err != nil {
		return nil, driverError("open stream", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, driverError("start stream", err)
	}

	log.Printf("PortAudio stream opened: %s, %dHz, %d channels", dev.Name, sampleRate, channels)
	return &portaudioStream{stream: stream, buffer: buffer}, nil
}

// Close terminates PortAudio
func (p *PortAudio) Close() error {
	return portaudio.Terminate()
}

type portaudioStream struct {
	stream *portaudio.Stream
	buffer []float32
}

// Write copies samples through the stream buffer one block at a time
func (s *portaudioStream) Write(samples []float32) error {
	for len(samples) > 0 {
		n := copy(s.buffer, samples)
		// Pad the final partial block with silence
		for i := n; i < len(s.buffer); i++ {
			s.buffer[i] = 0
		}
		if err := s.stream.Write(); err != nil {
			return driverError("write", err)
		}
		samples = samples[n:]
	}
	return nil
}

// Close stops and closes the stream
func (s *portaudioStream) Close() error {
	if err := s.stream.Stop(); err != nil {
		s.stream.Close()
		return driverError("stop stream", err)
	}
	if err := s.stream.Close(); err != nil {
		return driverError("close stream", err)
	}
	return nil
}
