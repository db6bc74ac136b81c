// ABOUTME: Oto-based audio output implementation
// ABOUTME: Plays to the system default device through a single process-wide oto context
package output

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sendspin/soundboard-go/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

const (
	otoSampleRate = 48000
	otoChannels   = 2
	otoPoll       = 10 * time.Millisecond
)

// oto only allows one context per process
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoErr     error
)

// Oto backend exposing only the default device
type Oto struct{}

// NewOto creates the process-wide oto context on first use
func NewOto() (Backend, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   otoSampleRate,
			ChannelCount: otoChannels,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoErr != nil {
		return nil, driverError("create oto context", otoErr)
	}
	return &Oto{}, nil
}

// Name returns the backend identifier
func (o *Oto) Name() string {
	return "oto"
}

// Devices returns the single default device
func (o *Oto) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{
		Index:             0,
		Name:              "default",
		MaxOutputChannels: otoChannels,
		DefaultSampleRate: otoSampleRate,
		ID:                "oto:default",
	}}, nil
}

// OpenStream returns a stream on the shared context
func (o *Oto) OpenStream(dev DeviceInfo, sampleRate, channels int) (Stream, error) {
	if dev.Index != 0 {
		return nil, fmt.Errorf("%w: oto only has the default device", ErrDriver)
	}
	if sampleRate != otoSampleRate {
		return nil, fmt.Errorf("%w: oto context runs at %dHz, got %dHz", ErrDriver, otoSampleRate, sampleRate)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: oto supports 1 or 2 channels, got %d", ErrDriver, channels)
	}
	return &otoStream{channels: channels}, nil
}

// Close is a no-op; the oto context lives for the process
func (o *Oto) Close() error {
	return nil
}

type otoStream struct {
	channels int
}

// Write plays samples on a fresh player and waits for it to finish
func (s *otoStream) Write(samples []float32) error {
	if s.channels == 1 {
		samples = upmix(samples)
	}

	player := otoContext.NewPlayer(bytes.NewReader(audio.Float32ToBytes(samples)))
	defer player.Close()

	player.Play()
	for player.IsPlaying() {
		time.Sleep(otoPoll)
	}

	if err := player.Err(); err != nil {
		log.Printf("Warning: oto player error: %v", err)
		return driverError("play", err)
	}
	return nil
}

// Close releases nothing; players are closed per Write
func (s *otoStream) Close() error {
	return nil
}

// upmix duplicates mono samples into interleaved stereo
func upmix(mono []float32) []float32 {
	stereo := make([]float32, len(mono)*2)
	for i, s := range mono {
		stereo[i*2] = s
		stereo[i*2+1] = s
	}
	return stereo
}
