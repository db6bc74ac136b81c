// ABOUTME: Audio encoder package for writing clips to disk
// ABOUTME: Provides WAV encoding and a sine test tone generator
// Package encode writes decoded clips back out and generates test material.
//
// Supports: WAV (8, 16 and 24-bit PCM, mono or stereo) via gopxl/beep.
//
// Example:
//
//	clip := encode.Tone(440, 48000, 2, time.Second)
//	err := encode.WriteWAVFile("tone.wav", clip, 16)
package encode
