// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC audio frame by frame to float32 clips
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/soundboard-go/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode converts FLAC bytes to a clip
func (d *FLACDecoder) Decode(r io.Reader) (*audio.Clip, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels == 0 {
		return nil, fmt.Errorf("FLAC stream has no channels")
	}

	frames := make([][]float32, 0, info.NSamples)
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("flac frame decode failed: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			out := make([]float32, channels)
			for ch := 0; ch < channels; ch++ {
				out[ch] = audio.Float32FromInt(frame.Subframes[ch].Samples[i], bitDepth)
			}
			frames = append(frames, out)
		}
	}

	return &audio.Clip{
		SampleRate: int(info.SampleRate),
		Channels:   channels,
		Samples:    frames,
	}, nil
}
