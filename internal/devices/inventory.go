// ABOUTME: Output device inventory
// ABOUTME: Enumerates output-capable devices and resolves device indices on demand
package devices

import (
	"errors"
	"fmt"
	"log"

	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

// ErrDeviceNotFound is returned when an index does not name an output device
var ErrDeviceNotFound = errors.New("device not found")

// Inventory is a view of a backend's device table, refreshed on every call
type Inventory struct {
	backend output.Backend
}

// New creates an inventory over a backend
func New(backend output.Backend) *Inventory {
	return &Inventory{backend: backend}
}

// ListOutputDevices returns devices with at least one output channel, in backend order
func (inv *Inventory) ListOutputDevices() ([]output.DeviceInfo, error) {
	all, err := inv.backend.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	outputs := make([]output.DeviceInfo, 0, len(all))
	for _, dev := range all {
		if dev.MaxOutputChannels > 0 {
			outputs = append(outputs, dev)
		}
	}
	return outputs, nil
}

// QueryDevice re-enumerates and returns the output device at index
func (inv *Inventory) QueryDevice(index int) (output.DeviceInfo, error) {
	all, err := inv.backend.Devices()
	if err != nil {
		return output.DeviceInfo{}, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	for _, dev := range all {
		if dev.Index != index {
			continue
		}
		if dev.MaxOutputChannels <= 0 {
			return output.DeviceInfo{}, fmt.Errorf("%w: %d (%s) has no output channels", ErrDeviceNotFound, index, dev.Name)
		}
		return dev, nil
	}
	return output.DeviceInfo{}, fmt.Errorf("%w: %d", ErrDeviceNotFound, index)
}

// FindByName returns the first output device whose name equals name
func (inv *Inventory) FindByName(name string) (output.DeviceInfo, error) {
	outputs, err := inv.ListOutputDevices()
	if err != nil {
		return output.DeviceInfo{}, err
	}
	for _, dev := range outputs {
		if dev.Name == name {
			return dev, nil
		}
	}
	return output.DeviceInfo{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// LogDevices writes the full device table to the log
func (inv *Inventory) LogDevices() {
	all, err := inv.backend.Devices()
	if err != nil {
		log.Printf("Warning: could not list audio devices: %v", err)
		return
	}

	log.Printf("Available audio devices (%s):", inv.backend.Name())
	for _, dev := range all {
		log.Printf("  [%d] %s (out: %d ch, %d Hz) %s",
			dev.Index, dev.Name, dev.MaxOutputChannels, dev.DefaultSampleRate, dev.ID)
	}
}
