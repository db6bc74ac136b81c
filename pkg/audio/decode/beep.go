// ABOUTME: WAV and Ogg Vorbis decoders
// ABOUTME: Decodes through gopxl/beep streamers into float32 clips
package decode

import (
	"fmt"
	"io"

	"github.com/Sendspin/soundboard-go/pkg/audio"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// beep streams in fixed-size stereo blocks
const beepBlockFrames = 4096

// WAVDecoder decodes uncompressed RIFF/WAVE audio
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode converts WAV bytes to a clip
func (d *WAVDecoder) Decode(r io.Reader) (*audio.Clip, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("wav decode failed: %w", err)
	}
	defer streamer.Close()

	return drainBeep(streamer, format)
}

// VorbisDecoder decodes Ogg Vorbis audio
type VorbisDecoder struct{}

// NewVorbis creates a new Ogg Vorbis decoder
func NewVorbis() Decoder {
	return &VorbisDecoder{}
}

// Decode converts Ogg Vorbis bytes to a clip
func (d *VorbisDecoder) Decode(r io.Reader) (*audio.Clip, error) {
	streamer, format, err := vorbis.Decode(io.NopCloser(r))
	if err != nil {
		return nil, fmt.Errorf("vorbis decode failed: %w", err)
	}
	defer streamer.Close()

	return drainBeep(streamer, format)
}

// drainBeep reads a beep streamer to the end, keeping the native channel count
func drainBeep(streamer beep.Streamer, format beep.Format) (*audio.Clip, error) {
	channels := format.NumChannels
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}

	block := make([][2]float64, beepBlockFrames)
	var frames [][]float32

	for {
		n, ok := streamer.Stream(block)
		for i := 0; i < n; i++ {
			frame := make([]float32, channels)
			for ch := 0; ch < channels; ch++ {
				frame[ch] = float32(block[i][ch])
			}
			frames = append(frames, frame)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, err
	}

	return &audio.Clip{
		SampleRate: int(format.SampleRate),
		Channels:   channels,
		Samples:    frames,
	}, nil
}
