// ABOUTME: Audio type definitions
// ABOUTME: Defines decoded clips and float32 sample conversions
package audio

import (
	"encoding/binary"
	"math"
	"time"
)

const (
	// int16 full-scale divisor for float conversion
	int16Scale = 32768.0
)

// Clip is a decoded audio file held entirely in memory
type Clip struct {
	Path       string
	SampleRate int
	Channels   int
	Samples    [][]float32 // frames x channels
}

// NewClip allocates a silent clip with the given shape
func NewClip(path string, sampleRate, channels, frames int) *Clip {
	samples := make([][]float32, frames)
	backing := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = backing[i*channels : (i+1)*channels : (i+1)*channels]
	}
	return &Clip{
		Path:       path,
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    samples,
	}
}

// Frames returns the number of frames in the clip
func (c *Clip) Frames() int {
	return len(c.Samples)
}

// Duration returns the playing time of the clip at its native rate
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Interleave flattens frames x channels into a single interleaved slice
func Interleave(samples [][]float32, channels int) []float32 {
	out := make([]float32, 0, len(samples)*channels)
	for _, frame := range samples {
		out = append(out, frame[:channels]...)
	}
	return out
}

// Deinterleave splits an interleaved slice into frames x channels
func Deinterleave(interleaved []float32, channels int) [][]float32 {
	frames := len(interleaved) / channels
	out := make([][]float32, frames)
	for i := range out {
		frame := make([]float32, channels)
		copy(frame, interleaved[i*channels:(i+1)*channels])
		out[i] = frame
	}
	return out
}

// Float32FromInt16 converts an int16 sample to the [-1, 1) float range
func Float32FromInt16(sample int16) float32 {
	return float32(sample) / int16Scale
}

// Float32FromInt converts a signed integer sample of the given bit depth to float
func Float32FromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	return float32(float64(sample) / float64(uint64(1)<<(bitDepth-1)))
}

// Float32ToInt16 converts a float sample to int16 with clipping
func Float32ToInt16(sample float32) int16 {
	scaled := math.Round(float64(sample) * int16Scale)
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}

// Float32ToBytes packs float32 samples as little-endian IEEE 754
func Float32ToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}
