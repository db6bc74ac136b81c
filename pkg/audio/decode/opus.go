// ABOUTME: Ogg Opus audio decoder
// ABOUTME: Decodes .opus files to float32 clips with libopusfile
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Sendspin/soundboard-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	// libopusfile always decodes at 48kHz
	opusSampleRate = 48000
	// Max frame size (120ms at 48kHz) per channel
	opusMaxFrame = 5760
)

var opusHeadMagic = []byte("OpusHead")

// OpusDecoder decodes Ogg Opus audio
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode converts Ogg Opus bytes to a clip
func (d *OpusDecoder) Decode(r io.Reader) (*audio.Clip, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read opus data: %w", err)
	}

	channels, err := opusChannels(data)
	if err != nil {
		return nil, err
	}

	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}
	defer stream.Close()

	pcm := make([]float32, opusMaxFrame*channels)
	var interleaved []float32
	for {
		n, err := stream.ReadFloat32(pcm)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		// n is samples per channel
		interleaved = append(interleaved, pcm[:n*channels]...)
	}

	return &audio.Clip{
		SampleRate: opusSampleRate,
		Channels:   channels,
		Samples:    audio.Deinterleave(interleaved, channels),
	}, nil
}

// opusChannels reads the channel count from the OpusHead identification header
func opusChannels(data []byte) (int, error) {
	idx := bytes.Index(data, opusHeadMagic)
	// magic(8) + version(1) + channel count(1)
	if idx < 0 || idx+10 > len(data) {
		return 0, fmt.Errorf("not an Ogg Opus stream: missing OpusHead")
	}
	channels := int(data[idx+9])
	if channels == 0 {
		return 0, fmt.Errorf("invalid OpusHead channel count: 0")
	}
	return channels, nil
}
