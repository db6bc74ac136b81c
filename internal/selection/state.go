// ABOUTME: Output device selection state
// ABOUTME: Persists the chosen device by name and re-resolves it to an index at startup
package selection

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/Sendspin/soundboard-go/internal/routing"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

// Settings keys
const (
	KeyDeviceIndex = "audio_device"
	KeyDeviceName  = "audio_device_name"
)

// Settings is the key/value persistence the selection is stored in
type Settings interface {
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
}

// DeviceLister enumerates output devices
type DeviceLister interface {
	ListOutputDevices() ([]output.DeviceInfo, error)
}

// State holds the currently selected output device
type State struct {
	settings Settings
	devices  DeviceLister

	mu    sync.RWMutex
	index int
	name  string
}

// New creates selection state; call ResolveInitialDevice before use
func New(settings Settings, devices DeviceLister) *State {
	return &State{
		settings: settings,
		devices:  devices,
	}
}

// Current returns the selected device index and name
func (s *State) Current() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index, s.name
}

// ResolveInitialDevice picks the device to use at startup.
// A persisted name wins over the persisted index since indices shift between runs.
func (s *State) ResolveInitialDevice() (int, error) {
	outputs, err := s.devices.ListOutputDevices()
	if err != nil {
		s.set(0, "")
		return 0, fmt.Errorf("failed to list output devices: %w", err)
	}

	if dev, ok := s.persisted(outputs); ok {
		s.set(dev.Index, dev.Name)
		log.Printf("Restored output device: [%d] %s", dev.Index, dev.Name)
		return dev.Index, nil
	}

	dev, ok := heuristic(outputs)
	if !ok {
		s.set(0, "")
		log.Printf("No preferred output device found, using index 0")
		return 0, nil
	}
	s.set(dev.Index, dev.Name)
	log.Printf("Selected output device: [%d] %s", dev.Index, dev.Name)
	return dev.Index, nil
}

// persisted looks up the stored selection in the current device table
func (s *State) persisted(outputs []output.DeviceInfo) (output.DeviceInfo, bool) {
	name, ok, err := s.settings.GetSetting(KeyDeviceName)
	if err != nil {
		log.Printf("Warning: could not read %s: %v", KeyDeviceName, err)
	}
	if ok && name != "" {
		for _, dev := range outputs {
			if dev.Name == name {
				s.refreshIndex(dev)
				return dev, true
			}
		}
		log.Printf("Saved output device %q is no longer available", name)
		return output.DeviceInfo{}, false
	}

	// Rows written before names were stored only have the index
	raw, ok, err := s.settings.GetSetting(KeyDeviceIndex)
	if err != nil {
		log.Printf("Warning: could not read %s: %v", KeyDeviceIndex, err)
	}
	if !ok {
		return output.DeviceInfo{}, false
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return output.DeviceInfo{}, false
	}
	for _, dev := range outputs {
		if dev.Index == index {
			if err := s.settings.SetSetting(KeyDeviceName, dev.Name); err != nil {
				log.Printf("Warning: could not save %s: %v", KeyDeviceName, err)
			}
			return dev, true
		}
	}
	return output.DeviceInfo{}, false
}

// refreshIndex rewrites the legacy index when a name match moved
func (s *State) refreshIndex(dev output.DeviceInfo) {
	raw, _, _ := s.settings.GetSetting(KeyDeviceIndex)
	if raw == strconv.Itoa(dev.Index) {
		return
	}
	if err := s.settings.SetSetting(KeyDeviceIndex, strconv.Itoa(dev.Index)); err != nil {
		log.Printf("Warning: could not update %s: %v", KeyDeviceIndex, err)
	}
}

// heuristic prefers the soundboard sink, then PipeWire, then the default device
func heuristic(outputs []output.DeviceInfo) (output.DeviceInfo, bool) {
	matchers := []func(string) bool{
		func(name string) bool { return strings.Contains(name, routing.SinkName) },
		func(name string) bool { return strings.Contains(strings.ToLower(name), "pipewire") },
		func(name string) bool { return strings.Contains(strings.ToLower(name), "default") },
	}
	for _, match := range matchers {
		for _, dev := range outputs {
			if match(dev.Name) {
				return dev, true
			}
		}
	}
	return output.DeviceInfo{}, false
}

// OnUserSelect makes index the current device and persists it by name and index
func (s *State) OnUserSelect(index int) error {
	outputs, err := s.devices.ListOutputDevices()
	if err != nil {
		return fmt.Errorf("failed to list output devices: %w", err)
	}

	var dev output.DeviceInfo
	found := false
	for _, d := range outputs {
		if d.Index == index {
			dev, found = d, true
			break
		}
	}
	if !found {
		return fmt.Errorf("output device %d not available", index)
	}

	if err := s.settings.SetSetting(KeyDeviceIndex, strconv.Itoa(dev.Index)); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyDeviceIndex, err)
	}
	if err := s.settings.SetSetting(KeyDeviceName, dev.Name); err != nil {
		return fmt.Errorf("failed to save %s: %w", KeyDeviceName, err)
	}

	s.set(dev.Index, dev.Name)
	log.Printf("Output device set to [%d] %s", dev.Index, dev.Name)
	return nil
}

func (s *State) set(index int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = index
	s.name = name
}
