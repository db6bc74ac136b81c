// ABOUTME: pactl subprocess controller
// ABOUTME: Implements Controller by invoking the pactl command-line tool
package routing

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Pactl runs pactl subprocesses
type Pactl struct {
	// Path to the pactl binary (defaults to "pactl" on PATH)
	Path string
}

// NewPactl creates a controller using pactl from PATH
func NewPactl() *Pactl {
	return &Pactl{Path: "pactl"}
}

func (p *Pactl) run(ctx context.Context, args ...string) (string, error) {
	path := p.Path
	if path == "" {
		path = "pactl"
	}

	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("pactl %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("pactl %s: %w", strings.Join(args, " "), err)
	}
	return string(output), nil
}

// ListSinks runs `pactl list short sinks`
func (p *Pactl) ListSinks(ctx context.Context) (string, error) {
	return p.run(ctx, "list", "short", "sinks")
}

// ListSources runs `pactl list short sources`
func (p *Pactl) ListSources(ctx context.Context) (string, error) {
	return p.run(ctx, "list", "short", "sources")
}

// ListModules runs `pactl list short modules`
func (p *Pactl) ListModules(ctx context.Context) (string, error) {
	return p.run(ctx, "list", "short", "modules")
}

// LoadModule runs `pactl load-module` and parses the printed module id
func (p *Pactl) LoadModule(ctx context.Context, name string, args ...string) (int, error) {
	output, err := p.run(ctx, append([]string{"load-module", name}, args...)...)
	if err != nil {
		return 0, err
	}

	id, err := strconv.Atoi(strings.TrimSpace(output))
	if err != nil {
		return 0, fmt.Errorf("unexpected load-module output %q: %w", strings.TrimSpace(output), err)
	}
	return id, nil
}

// UnloadModule runs `pactl unload-module`
func (p *Pactl) UnloadModule(ctx context.Context, id int) error {
	_, err := p.run(ctx, "unload-module", strconv.Itoa(id))
	return err
}

// DefaultSource runs `pactl get-default-source`
func (p *Pactl) DefaultSource(ctx context.Context) (string, error) {
	output, err := p.run(ctx, "get-default-source")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}
