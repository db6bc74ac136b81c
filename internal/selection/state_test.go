// ABOUTME: Tests for output device selection state
// ABOUTME: Tests name re-matching, legacy index rows, the fallback search order and persistence
package selection

import (
	"errors"
	"testing"

	"github.com/Sendspin/soundboard-go/internal/devices"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

type memSettings map[string]string

func (m memSettings) GetSetting(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memSettings) SetSetting(key, value string) error {
	m[key] = value
	return nil
}

type listerFunc func() ([]output.DeviceInfo, error)

func (f listerFunc) ListOutputDevices() ([]output.DeviceInfo, error) {
	return f()
}

func staticDevices(devs ...output.DeviceInfo) DeviceLister {
	return listerFunc(func() ([]output.DeviceInfo, error) { return devs, nil })
}

func dev(index int, name string) output.DeviceInfo {
	return output.DeviceInfo{Index: index, Name: name, MaxOutputChannels: 2, DefaultSampleRate: 48000}
}

func TestResolvePersistedNameWithShiftedIndex(t *testing.T) {
	settings := memSettings{KeyDeviceIndex: "2", KeyDeviceName: "USB Headset"}
	state := New(settings, staticDevices(
		dev(0, "HDA Intel PCH"),
		dev(1, "pipewire"),
		dev(5, "USB Headset"),
	))

	index, err := state.ResolveInitialDevice()
	if err != nil {
		t.Fatal(err)
	}
	if index != 5 {
		t.Errorf("expected index 5, got %d", index)
	}
	if settings[KeyDeviceIndex] != "5" {
		t.Errorf("expected stored index refreshed to 5, got %s", settings[KeyDeviceIndex])
	}
	if _, name := state.Current(); name != "USB Headset" {
		t.Errorf("expected current name USB Headset, got %s", name)
	}
}

func TestResolveSoundboardSinkWithoutPersistedValue(t *testing.T) {
	state := New(memSettings{}, staticDevices(
		dev(0, "default"),
		dev(1, "pipewire"),
		dev(4, "SoundboardSink"),
	))

	index, err := state.ResolveInitialDevice()
	if err != nil {
		t.Fatal(err)
	}
	if index != 4 {
		t.Errorf("expected SoundboardSink at 4, got %d", index)
	}
}

func TestResolveFallbackOrder(t *testing.T) {
	tests := []struct {
		name    string
		devices []output.DeviceInfo
		want    int
	}{
		{"pipewire before default", []output.DeviceInfo{dev(0, "Default Output"), dev(3, "PipeWire Sound Server")}, 3},
		{"default case-insensitive", []output.DeviceInfo{dev(0, "HDA Intel"), dev(2, "DEFAULT")}, 2},
		{"nothing matches", []output.DeviceInfo{dev(1, "HDA Intel"), dev(2, "USB Headset")}, 0},
		{"no devices", nil, 0},
		{"first match in order", []output.DeviceInfo{dev(1, "pipewire"), dev(2, "pipewire-alt")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := New(memSettings{}, staticDevices(tt.devices...))
			index, err := state.ResolveInitialDevice()
			if err != nil {
				t.Fatal(err)
			}
			if index != tt.want {
				t.Errorf("expected %d, got %d", tt.want, index)
			}
		})
	}
}

func TestResolveStaleNameFallsBack(t *testing.T) {
	settings := memSettings{KeyDeviceIndex: "1", KeyDeviceName: "Unplugged DAC"}
	state := New(settings, staticDevices(dev(1, "HDA Intel"), dev(2, "pipewire")))

	index, err := state.ResolveInitialDevice()
	if err != nil {
		t.Fatal(err)
	}
	// The stale index is not trusted once a name was stored
	if index != 2 {
		t.Errorf("expected heuristic pipewire at 2, got %d", index)
	}
}

func TestResolveLegacyIndexOnly(t *testing.T) {
	settings := memSettings{KeyDeviceIndex: "1"}
	state := New(settings, staticDevices(dev(1, "HDA Intel"), dev(2, "pipewire")))

	index, err := state.ResolveInitialDevice()
	if err != nil {
		t.Fatal(err)
	}
	if index != 1 {
		t.Errorf("expected legacy index 1, got %d", index)
	}
	if settings[KeyDeviceName] != "HDA Intel" {
		t.Errorf("expected legacy selection to be stored by name, got %v", settings)
	}

	// Indices shift between runs; the stored name must follow the device
	moved := New(settings, staticDevices(dev(1, "pipewire"), dev(3, "HDA Intel")))
	index, err = moved.ResolveInitialDevice()
	if err != nil {
		t.Fatal(err)
	}
	if index != 3 {
		t.Errorf("expected HDA Intel at its new index 3, got %d", index)
	}
}

func TestResolveLegacyIndexGone(t *testing.T) {
	state := New(memSettings{KeyDeviceIndex: "9"}, staticDevices(dev(1, "HDA Intel"), dev(2, "pipewire")))

	index, _ := state.ResolveInitialDevice()
	if index != 2 {
		t.Errorf("expected heuristic pipewire at 2, got %d", index)
	}
}

func TestResolveListFailure(t *testing.T) {
	boom := errors.New("no server")
	state := New(memSettings{}, listerFunc(func() ([]output.DeviceInfo, error) { return nil, boom }))

	index, err := state.ResolveInitialDevice()
	if !errors.Is(err, boom) {
		t.Errorf("expected list error, got %v", err)
	}
	if index != 0 {
		t.Errorf("expected index 0, got %d", index)
	}
}

func TestOnUserSelectPersistsNameAndIndex(t *testing.T) {
	settings := memSettings{}
	state := New(settings, staticDevices(dev(1, "HDA Intel"), dev(7, "SoundboardSink")))

	if err := state.OnUserSelect(7); err != nil {
		t.Fatal(err)
	}
	if settings[KeyDeviceIndex] != "7" || settings[KeyDeviceName] != "SoundboardSink" {
		t.Errorf("unexpected settings: %v", settings)
	}
	if index, name := state.Current(); index != 7 || name != "SoundboardSink" {
		t.Errorf("unexpected current: %d %s", index, name)
	}
}

func TestOnUserSelectUnknownIndex(t *testing.T) {
	settings := memSettings{}
	state := New(settings, staticDevices(dev(1, "HDA Intel")))

	if err := state.OnUserSelect(3); err == nil {
		t.Error("expected error for unknown device")
	}
	if len(settings) != 0 {
		t.Errorf("nothing should be persisted, got %v", settings)
	}
}

func TestSelectionSurvivesRestartWithInventory(t *testing.T) {
	settings := memSettings{}
	mock := output.NewMock(output.DefaultMockDevices())

	first := New(settings, devices.New(mock))
	if err := first.OnUserSelect(1); err != nil {
		t.Fatal(err)
	}

	// Device table reorders between runs
	mock.SetDevices([]output.DeviceInfo{
		{Index: 0, Name: "pipewire", MaxOutputChannels: 64, DefaultSampleRate: 48000},
		{Index: 1, Name: "SoundboardSink", MaxOutputChannels: 2, DefaultSampleRate: 48000},
		{Index: 2, Name: "Built-in Audio Analog Stereo", MaxOutputChannels: 2, DefaultSampleRate: 44100},
	})

	second := New(settings, devices.New(mock))
	index, err := second.ResolveInitialDevice()
	if err != nil {
		t.Fatal(err)
	}
	if index != 2 {
		t.Errorf("expected re-matched index 2, got %d", index)
	}
}
