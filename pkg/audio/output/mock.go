// ABOUTME: In-memory output backend for tests
// ABOUTME: Records device queries, opened streams and written samples with injectable failures
package output

import (
	"fmt"
	"sync"
	"time"
)

// OpenCall records one OpenStream request
type OpenCall struct {
	Device     DeviceInfo
	SampleRate int
	Channels   int
}

// Mock is a Backend that plays nothing
type Mock struct {
	mu sync.Mutex

	devices []DeviceInfo

	// Injected failures
	DevicesErr error
	OpenErr    error
	WriteErr   error

	// WriteDelay makes each Write block for a while
	WriteDelay time.Duration

	deviceQueries int
	opens         []OpenCall
	writes        [][]float32
	closedStreams int
	active        int
	maxActive     int
}

// MockOption configures a Mock
type MockOption func(*Mock)

// WithWriteDelay makes every Write take d
func WithWriteDelay(d time.Duration) MockOption {
	return func(m *Mock) {
		m.WriteDelay = d
	}
}

// NewMock creates a mock backend with the given device table
func NewMock(devices []DeviceInfo, opts ...MockOption) *Mock {
	m := &Mock{devices: devices}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultMockDevices mirrors a typical PipeWire desktop with the routing graph loaded
func DefaultMockDevices() []DeviceInfo {
	return []DeviceInfo{
		{Index: 0, Name: "Built-in Microphone", MaxOutputChannels: 0, DefaultSampleRate: 48000, ID: "mock:0"},
		{Index: 1, Name: "Built-in Audio Analog Stereo", MaxOutputChannels: 2, DefaultSampleRate: 44100, ID: "mock:1"},
		{Index: 2, Name: "SoundboardSink", MaxOutputChannels: 2, DefaultSampleRate: 48000, ID: "mock:2"},
		{Index: 3, Name: "pipewire", MaxOutputChannels: 64, DefaultSampleRate: 48000, ID: "mock:3"},
	}
}

func newMockBackend() (Backend, error) {
	return NewMock(DefaultMockDevices()), nil
}

// Name returns "mock"
func (m *Mock) Name() string {
	return "mock"
}

// SetDevices replaces the device table
func (m *Mock) SetDevices(devices []DeviceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = devices
}

// Devices returns a copy of the device table
func (m *Mock) Devices() ([]DeviceInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deviceQueries++
	if m.DevicesErr != nil {
		return nil, m.DevicesErr
	}
	out := make([]DeviceInfo, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

// OpenStream records the request and returns a recording stream
func (m *Mock) OpenStream(dev DeviceInfo, sampleRate, channels int) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	if channels > dev.MaxOutputChannels {
		return nil, fmt.Errorf("%w: device %q has %d output channels, need %d", ErrDriver, dev.Name, dev.MaxOutputChannels, channels)
	}

	m.opens = append(m.opens, OpenCall{Device: dev, SampleRate: sampleRate, Channels: channels})
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}
	return &mockStream{backend: m}, nil
}

// Close does nothing
func (m *Mock) Close() error {
	return nil
}

// DeviceQueries returns how many times Devices was called
func (m *Mock) DeviceQueries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deviceQueries
}

// Opens returns the recorded OpenStream calls
func (m *Mock) Opens() []OpenCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OpenCall, len(m.opens))
	copy(out, m.opens)
	return out
}

// Writes returns every buffer passed to Write
func (m *Mock) Writes() [][]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float32, len(m.writes))
	copy(out, m.writes)
	return out
}

// ClosedStreams returns how many streams were closed
func (m *Mock) ClosedStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closedStreams
}

// MaxActive returns the largest number of streams open at once
func (m *Mock) MaxActive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxActive
}

type mockStream struct {
	backend *Mock
	closed  bool
}

func (s *mockStream) Write(samples []float32) error {
	m := s.backend

	m.mu.Lock()
	delay := m.WriteDelay
	err := m.WriteErr
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return err
	}

	buf := make([]float32, len(samples))
	copy(buf, samples)

	m.mu.Lock()
	m.writes = append(m.writes, buf)
	m.mu.Unlock()
	return nil
}

func (s *mockStream) Close() error {
	m := s.backend
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	m.closedStreams++
	m.active--
	return nil
}
