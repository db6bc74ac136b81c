// ABOUTME: PulseAudio output implementation
// ABOUTME: Plays to PulseAudio or PipeWire sinks over the native protocol with jfreymuth/pulse
package output

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// Target buffering for playback streams, in seconds
const pulseLatency = 0.1

// Pulse backend talking to the sound server directly
type Pulse struct {
	client *pulse.Client
}

// NewPulse connects to the PulseAudio (or pipewire-pulse) server
func NewPulse() (Backend, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("Soundboard"))
	if err != nil {
		return nil, driverError("connect to pulse server", err)
	}
	return &Pulse{client: client}, nil
}

// Name returns the backend identifier
func (p *Pulse) Name() string {
	return "pulse"
}

// Devices lists the server's sinks
func (p *Pulse) Devices() ([]DeviceInfo, error) {
	sinks, err := p.client.ListSinks()
	if err != nil {
		return nil, driverError("list sinks", err)
	}

	devices := make([]DeviceInfo, 0, len(sinks))
	for i, sink := range sinks {
		devices = append(devices, sinkDevice(i, sink.ID(), sink.Name(), sink.Channels(), sink.SampleRate()))
	}
	return devices, nil
}

// sinkDevice maps a sink to a device row; the channel count is the size of its channel map
func sinkDevice(index int, id, name string, channels proto.ChannelMap, sampleRate int) DeviceInfo {
	return DeviceInfo{
		Index:             index,
		Name:              name,
		MaxOutputChannels: len(channels),
		DefaultSampleRate: sampleRate,
		ID:                id,
	}
}

// OpenStream prepares playback on the sink behind dev
func (p *Pulse) OpenStream(dev DeviceInfo, sampleRate, channels int) (Stream, error) {
	var layout pulse.PlaybackOption
	switch channels {
	case 1:
		layout = pulse.PlaybackMono
	case 2:
		layout = pulse.PlaybackStereo
	default:
		return nil, fmt.Errorf("%w: pulse supports 1 or 2 channels, got %d", ErrDriver, channels)
	}

	sink, err := p.client.SinkByID(dev.ID)
	if err != nil {
		return nil, driverError(fmt.Sprintf("find sink %s", dev.ID), err)
	}

	return &pulseStream{
		client:     p.client,
		sink:       sink,
		layout:     layout,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Close disconnects from the server
func (p *Pulse) Close() error {
	p.client.Close()
	return nil
}

// pulseStream creates one playback stream per Write and drains it
type pulseStream struct {
	client     *pulse.Client
	sink       *pulse.Sink
	layout     pulse.PlaybackOption
	sampleRate int
	channels   int

	mu     sync.Mutex
	closed bool
}

// Write plays samples and returns once the server has drained them
func (s *pulseStream) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: stream closed", ErrDriver)
	}
	if len(samples) == 0 {
		return nil
	}

	pos := 0
	reader := pulse.Float32Reader(func(out []float32) (int, error) {
		if pos >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(out, samples[pos:])
		pos += n
		return n, nil
	})

	stream, err := s.client.NewPlayback(reader,
		pulse.PlaybackSink(s.sink),
		pulse.PlaybackSampleRate(s.sampleRate),
		s.layout,
		pulse.PlaybackLatency(pulseLatency),
		pulse.PlaybackMediaName("Soundboard clip"),
	)
	if err != nil {
		return driverError("create playback stream", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()

	if err := stream.Error(); err != nil {
		return driverError("playback", err)
	}
	return nil
}

// Close marks the stream closed
func (s *pulseStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
