// ABOUTME: Tests for version constants
// ABOUTME: Ensures identification strings are set and sensible
package version

import (
	"strings"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		if tt.value == "" {
			t.Errorf("%s should not be empty", tt.name)
		}
		if len(tt.value) > 100 {
			t.Errorf("%s is unreasonably long", tt.name)
		}
		for _, placeholder := range []string{"TODO", "FIXME", "XXX", "placeholder"} {
			if tt.value == placeholder {
				t.Errorf("%s should not be placeholder value: %s", tt.name, placeholder)
			}
		}
	}
}

func TestVersionIsDotted(t *testing.T) {
	if strings.Count(Version, ".") != 2 {
		t.Errorf("expected major.minor.patch, got %q", Version)
	}
}

func TestString(t *testing.T) {
	if got := String(); got != Product+" "+Version {
		t.Errorf("unexpected version string %q", got)
	}
}
