// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo, feeding a callback-driven device from blocking writes
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

const (
	// miniaudio converts to the device's native format internally
	malgoDefaultRate     = 48000
	malgoDefaultChannels = 2

	// Upper bound on waiting for the last period when the device stops calling back
	drainTimeout = 500 * time.Millisecond
)

// Malgo backend using the miniaudio library
type Malgo struct {
	ctx *malgo.AllocatedContext
}

// NewMalgo initializes a miniaudio context
func NewMalgo() (Backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, driverError("initialize malgo context", err)
	}
	return &Malgo{ctx: ctx}, nil
}

// Name returns the backend identifier
func (m *Malgo) Name() string {
	return "malgo"
}

// Devices lists playback devices
func (m *Malgo) Devices() ([]DeviceInfo, error) {
	infos, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, driverError("enumerate devices", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i, info := range infos {
		devices = append(devices, DeviceInfo{
			Index:             i,
			Name:              info.Name(),
			MaxOutputChannels: malgoDefaultChannels,
			DefaultSampleRate: malgoDefaultRate,
			ID:                fmt.Sprintf("malgo:%d", i),
		})
	}
	return devices, nil
}

// OpenStream starts a playback device and returns a blocking writer for it
func (m *Malgo) OpenStream(dev DeviceInfo, sampleRate, channels int) (Stream, error) {
	infos, err := m.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, driverError("enumerate devices", err)
	}
	if dev.Index < 0 || dev.Index >= len(infos) {
		return nil, fmt.Errorf("%w: device %d disappeared", ErrDriver, dev.Index)
	}

	s := &malgoStream{channels: channels}
	s.cond = sync.NewCond(&s.mu)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatF32
	config.Playback.Channels = uint32(channels)
	config.Playback.DeviceID = infos[dev.Index].ID.Pointer()
	config.SampleRate = uint32(sampleRate)
	config.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			s.fill(pOutput, frameCount)
		},
	}

	device, err := malgo.InitDevice(m.ctx.Context, config, callbacks)
	if err != nil {
		return nil, driverError("initialize playback device", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, driverError("start device", err)
	}
	s.device = device

	log.Printf("Malgo stream opened: %s, %dHz, %d channels", dev.Name, sampleRate, channels)
	return s, nil
}

// Close releases the miniaudio context
func (m *Malgo) Close() error {
	if m.ctx == nil {
		return nil
	}
	if err := m.ctx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	m.ctx.Free()
	m.ctx = nil
	return nil
}

// malgoStream hands samples to the device callback one Write at a time
type malgoStream struct {
	device   *malgo.Device
	channels int

	mu      sync.Mutex
	cond    *sync.Cond
	pending []float32
	closed  bool

	// callbacks counts device periods; lastFill is the period that carried the last samples
	callbacks uint64
	lastFill  uint64
	timedOut  bool
}

// Write queues samples and blocks until the callback has consumed them
func (s *malgoStream) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: stream closed", ErrDriver)
	}

	s.pending = samples
	for len(s.pending) > 0 && !s.closed {
		s.cond.Wait()
	}
	return nil
}

// fill is the device data callback
func (s *malgoStream) fill(out []byte, frameCount uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := int(frameCount) * s.channels
	n := want
	if n > len(s.pending) {
		n = len(s.pending)
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s.pending[i]))
	}
	// Silence on underrun
	for i := n; i < want; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], 0)
	}

	s.callbacks++
	if n > 0 {
		s.lastFill = s.callbacks
	}
	s.pending = s.pending[n:]
	if len(s.pending) == 0 {
		s.cond.Broadcast()
	}
}

// drain waits until the device has asked for a period after the one holding
// the final samples, so Stop does not cut off the tail of the clip
func (s *malgoStream) drain() {
	timer := time.AfterFunc(drainTimeout, func() {
		s.mu.Lock()
		s.timedOut = true
		s.cond.Broadcast()
		s.mu.Unlock()
	})
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.lastFill > 0 && s.callbacks <= s.lastFill && !s.timedOut {
		s.cond.Wait()
	}
}

// Close stops and uninitializes the device
func (s *malgoStream) Close() error {
	s.drain()

	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.device != nil {
		if err := s.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		s.device.Uninit()
		s.device = nil
	}
	return nil
}
