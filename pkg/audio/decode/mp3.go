// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to float32 clips with go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Sendspin/soundboard-go/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces interleaved stereo int16
const mp3Channels = 2

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode converts MP3 bytes to a clip
func (d *MP3Decoder) Decode(r io.Reader) (*audio.Clip, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	// 2 bytes per int16 sample
	frameBytes := 2 * mp3Channels
	numFrames := len(pcm) / frameBytes
	clip := audio.NewClip("", decoder.SampleRate(), mp3Channels, numFrames)

	for i := 0; i < numFrames; i++ {
		for ch := 0; ch < mp3Channels; ch++ {
			offset := i*frameBytes + ch*2
			sample16 := int16(binary.LittleEndian.Uint16(pcm[offset:]))
			clip.Samples[i][ch] = audio.Float32FromInt16(sample16)
		}
	}

	return clip, nil
}
