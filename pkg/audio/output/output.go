// ABOUTME: Audio output interface definition
// ABOUTME: Common device enumeration and blocking stream interfaces for playback backends
package output

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
)

// ErrDriver marks failures reported by the audio driver or sound server
var ErrDriver = errors.New("audio driver error")

// DeviceInfo describes one entry of a backend's device table
type DeviceInfo struct {
	// Index is the position in the backend's current device table; it is not stable
	Index             int
	Name              string
	MaxOutputChannels int
	DefaultSampleRate int
	// ID is a backend-specific handle for logging
	ID string
}

// Backend enumerates devices and opens output streams
type Backend interface {
	// Name returns the backend identifier
	Name() string

	// Devices returns the full device table, including input-only devices
	Devices() ([]DeviceInfo, error)

	// OpenStream opens a float32 output stream on a device
	OpenStream(dev DeviceInfo, sampleRate, channels int) (Stream, error)

	// Close releases backend resources
	Close() error
}

// Stream is an open output stream
type Stream interface {
	// Write outputs interleaved float32 samples (blocks until played)
	Write(samples []float32) error

	// Close releases the stream
	Close() error
}

var backends = map[string]func() (Backend, error){
	"pulse":     NewPulse,
	"malgo":     NewMalgo,
	"portaudio": NewPortAudio,
	"oto":       NewOto,
	"mock":      newMockBackend,
}

// DefaultBackend is the backend used when none is requested
const DefaultBackend = "pulse"

// New creates the named backend
func New(name string) (Backend, error) {
	if name == "" {
		name = DefaultBackend
	}
	newBackend, ok := backends[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported backend: %s (supported: %s)", name, strings.Join(Names(), ", "))
	}

	b, err := newBackend()
	if err != nil {
		return nil, err
	}
	log.Printf("Audio backend: %s", b.Name())
	return b, nil
}

// Names lists the available backend names in sorted order
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// driverError wraps a backend failure with ErrDriver
func driverError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDriver, op, err)
}
