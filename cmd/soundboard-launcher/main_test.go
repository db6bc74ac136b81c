// ABOUTME: Tests for the launcher wrapper
// ABOUTME: Runs shell children against a fake routing server
package main

import (
	"context"
	"os/exec"
	"testing"

	"github.com/Sendspin/soundboard-go/internal/routing"
)

func requireShell(t *testing.T) string {
	t.Helper()
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestRunCleansUpAfterChild(t *testing.T) {
	sh := requireShell(t)

	tests := []struct {
		name     string
		script   string
		wantCode int
	}{
		{"clean exit", "exit 0", 0},
		{"crash", "exit 3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := routing.NewFake()

			code, err := run(context.Background(), routing.NewManager(fake), sh, []string{"-c", tt.script})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			if fake.Loads() != 5 {
				t.Errorf("expected graph to be created before the child, got %d loads", fake.Loads())
			}
			if fake.ModuleCount() != 0 {
				t.Errorf("expected graph removed after the child, %d modules left", fake.ModuleCount())
			}
		})
	}
}

func TestRunCleansUpWhenChildCannotStart(t *testing.T) {
	fake := routing.NewFake()

	code, err := run(context.Background(), routing.NewManager(fake), "/nonexistent/soundboard", nil)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if code == 0 {
		t.Error("expected non-zero exit code")
	}
	if fake.ModuleCount() != 0 {
		t.Errorf("expected graph removed, %d modules left", fake.ModuleCount())
	}
}

func TestRunRemovesModulesLoadedByChild(t *testing.T) {
	sh := requireShell(t)
	fake := routing.NewFake()
	mgr := routing.NewManager(fake)

	// A crashed app leaves a second mix sink behind
	fake.Inject("module-null-sink", "sink_name=SoundboardMix", "sink_properties=device.description=SoundboardMix")

	if _, err := run(context.Background(), mgr, sh, []string{"-c", "exit 1"}); err != nil {
		t.Fatal(err)
	}
	if fake.ModuleCount() != 0 {
		t.Errorf("expected stale modules removed, %d left", fake.ModuleCount())
	}
}
