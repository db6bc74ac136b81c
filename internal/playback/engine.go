// ABOUTME: One-shot clip playback engine
// ABOUTME: Decodes a clip, resamples to the device rate and writes it through a call-scoped stream
package playback

import (
	"errors"
	"fmt"
	"log"

	"github.com/Sendspin/soundboard-go/internal/devices"
	"github.com/Sendspin/soundboard-go/pkg/audio"
	"github.com/Sendspin/soundboard-go/pkg/audio/decode"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
	"github.com/Sendspin/soundboard-go/pkg/audio/resample"
)

// Player plays a clip file on a device
type Player interface {
	Play(clipPath string, deviceIndex int) error
}

// Engine plays clips synchronously, holding no state between calls
type Engine struct {
	inventory *devices.Inventory
	backend   output.Backend
	decode    func(path string) (*audio.Clip, error)
}

// NewEngine creates an engine over a backend
func NewEngine(backend output.Backend) *Engine {
	return &Engine{
		inventory: devices.New(backend),
		backend:   backend,
		decode:    decode.File,
	}
}

// Play decodes clipPath and plays it start to finish on deviceIndex.
// It blocks until the whole clip has been written.
func (e *Engine) Play(clipPath string, deviceIndex int) error {
	clip, err := e.decode(clipPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}

	dev, err := e.inventory.QueryDevice(deviceIndex)
	if err != nil {
		if errors.Is(err, devices.ErrDeviceNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}

	if clip.Channels > dev.MaxOutputChannels {
		return fmt.Errorf("%w: %s has %d channels but %s supports %d",
			ErrPlayback, clip.Path, clip.Channels, dev.Name, dev.MaxOutputChannels)
	}

	rate := clip.SampleRate
	samples := clip.Samples
	if dev.DefaultSampleRate > 0 && dev.DefaultSampleRate != clip.SampleRate {
		rate = dev.DefaultSampleRate
		samples = resample.New(clip.SampleRate, rate, clip.Channels).Resample(clip.Samples)
		log.Printf("Resampled %s: %dHz -> %dHz (%d -> %d frames)",
			clip.Path, clip.SampleRate, rate, len(clip.Samples), len(samples))
	}

	buffer := audio.Interleave(samples, clip.Channels)

	log.Printf("Playing %s on [%d] %s: %dHz, %d channels, %s",
		clip.Path, dev.Index, dev.Name, rate, clip.Channels, clip.Duration())

	stream, err := e.backend.OpenStream(dev, rate, clip.Channels)
	if err != nil {
		return classify("open stream", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			log.Printf("Warning: failed to close stream: %v", cerr)
		}
	}()

	if err := stream.Write(buffer); err != nil {
		return classify("write stream", err)
	}
	return nil
}

// classify maps backend failures onto the playback taxonomy
func classify(op string, err error) error {
	if errors.Is(err, output.ErrDriver) {
		return fmt.Errorf("%w: %s: %w", ErrPlayback, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
