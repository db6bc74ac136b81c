// ABOUTME: Tests for the output device inventory
// ABOUTME: Tests output filtering, index lookup and not-found handling
package devices

import (
	"errors"
	"testing"

	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

func TestListOutputDevices(t *testing.T) {
	inv := New(output.NewMock(output.DefaultMockDevices()))

	devices, err := inv.ListOutputDevices()
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 3 {
		t.Fatalf("expected 3 output devices, got %d", len(devices))
	}
	// Backend indices preserved, input-only device skipped
	want := []int{1, 2, 3}
	for i, dev := range devices {
		if dev.Index != want[i] {
			t.Errorf("position %d: expected index %d, got %d", i, want[i], dev.Index)
		}
	}
}

func TestQueryDevice(t *testing.T) {
	inv := New(output.NewMock(output.DefaultMockDevices()))

	dev, err := inv.QueryDevice(2)
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name != "SoundboardSink" || dev.DefaultSampleRate != 48000 {
		t.Errorf("unexpected device: %+v", dev)
	}
}

func TestQueryDeviceNotFound(t *testing.T) {
	inv := New(output.NewMock(output.DefaultMockDevices()))

	tests := []struct {
		name  string
		index int
	}{
		{"out of range", 9999},
		{"negative", -1},
		{"input only", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inv.QueryDevice(tt.index)
			if !errors.Is(err, ErrDeviceNotFound) {
				t.Errorf("expected ErrDeviceNotFound, got %v", err)
			}
		})
	}
}

func TestQueryDeviceRefreshes(t *testing.T) {
	mock := output.NewMock(output.DefaultMockDevices())
	inv := New(mock)

	if _, err := inv.QueryDevice(3); err != nil {
		t.Fatal(err)
	}

	mock.SetDevices(output.DefaultMockDevices()[:2])
	if _, err := inv.QueryDevice(3); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("expected removed device to be gone, got %v", err)
	}
}

func TestBackendError(t *testing.T) {
	mock := output.NewMock(nil)
	mock.DevicesErr = output.ErrDriver
	inv := New(mock)

	if _, err := inv.ListOutputDevices(); !errors.Is(err, output.ErrDriver) {
		t.Errorf("expected driver error, got %v", err)
	}
	if _, err := inv.QueryDevice(0); errors.Is(err, ErrDeviceNotFound) {
		t.Error("enumeration failure should not look like a missing device")
	}
}

func TestFindByName(t *testing.T) {
	inv := New(output.NewMock(output.DefaultMockDevices()))

	dev, err := inv.FindByName("pipewire")
	if err != nil {
		t.Fatal(err)
	}
	if dev.Index != 3 {
		t.Errorf("expected index 3, got %d", dev.Index)
	}

	if _, err := inv.FindByName("Built-in Microphone"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("input-only device should not match, got %v", err)
	}
}
