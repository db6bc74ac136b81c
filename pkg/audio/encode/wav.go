// ABOUTME: WAV encoder
// ABOUTME: Encodes float32 clips to PCM WAV files using beep
package encode

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/Sendspin/soundboard-go/pkg/audio"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// WAV writes clip to w as PCM with the given bit depth (8, 16 or 24)
func WAV(w io.WriteSeeker, clip *audio.Clip, bitDepth int) error {
	if clip.Channels != 1 && clip.Channels != 2 {
		return fmt.Errorf("unsupported channel count for WAV: %d (supported: 1, 2)", clip.Channels)
	}
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("unsupported bit depth: %d (supported: 8, 16, 24)", bitDepth)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(clip.SampleRate),
		NumChannels: clip.Channels,
		Precision:   bitDepth / 8,
	}

	if err := wav.Encode(w, clipStreamer(clip), format); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return nil
}

// WriteWAVFile writes clip to a new file at path
func WriteWAVFile(path string, clip *audio.Clip, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create WAV file: %w", err)
	}

	if err := WAV(f, clip, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// clipStreamer adapts a clip to beep's stereo streamer interface
func clipStreamer(clip *audio.Clip) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(clip.Samples) {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < len(clip.Samples) {
			frame := clip.Samples[pos]
			left := float64(frame[0])
			right := left
			if clip.Channels > 1 {
				right = float64(frame[1])
			}
			samples[n][0] = left
			samples[n][1] = right
			n++
			pos++
		}
		return n, true
	})
}

// Tone generates a sine wave clip at half amplitude
func Tone(frequency float64, sampleRate, channels int, duration time.Duration) *audio.Clip {
	frames := int(duration.Seconds() * float64(sampleRate))
	clip := audio.NewClip("", sampleRate, channels, frames)

	for i := 0; i < frames; i++ {
		t := float64(i) / float64(sampleRate)
		sample := float32(0.5 * math.Sin(2*math.Pi*frequency*t))
		for ch := 0; ch < channels; ch++ {
			clip.Samples[i][ch] = sample
		}
	}

	return clip
}
