// ABOUTME: Audio server control plane abstraction
// ABOUTME: Defines the Controller capability interface and pactl listing parsers
package routing

import (
	"context"
	"strconv"
	"strings"
)

// Controller drives the sound server's module graph
type Controller interface {
	// ListSinks returns the short sink listing, one sink per line
	ListSinks(ctx context.Context) (string, error)

	// ListSources returns the short source listing, one source per line
	ListSources(ctx context.Context) (string, error)

	// ListModules returns the short module listing, one module per line
	ListModules(ctx context.Context) (string, error)

	// LoadModule loads a module with key=value arguments and returns its id
	LoadModule(ctx context.Context, name string, args ...string) (int, error)

	// UnloadModule unloads a module by id
	UnloadModule(ctx context.Context, id int) error

	// DefaultSource returns the name of the default capture source
	DefaultSource(ctx context.Context) (string, error)
}

// Module is one line of a short module listing
type Module struct {
	ID   int
	Name string
	Args string
	Line string
}

// ParseModules parses `pactl list short modules` output:
//
//	536870913	module-null-sink	sink_name=SoundboardSink sink_properties=device.description=SoundboardSink
//
// Lines without a leading numeric id are skipped.
func ParseModules(listing string) []Module {
	var modules []Module
	for _, line := range strings.Split(listing, "\n") {
		line = strings.TrimRight(line, "\r")
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}

		// Args are tab separated from the name and may contain spaces
		var args string
		if parts := strings.SplitN(line, "\t", 3); len(parts) == 3 {
			args = strings.TrimSpace(parts[2])
		} else if len(fields) > 2 {
			args = strings.Join(fields[2:], " ")
		}

		modules = append(modules, Module{
			ID:   id,
			Name: fields[1],
			Args: args,
			Line: line,
		})
	}
	return modules
}

// ParseNames returns the second column of a short sink or source listing
func ParseNames(listing string) []string {
	var names []string
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names = append(names, fields[1])
		}
	}
	return names
}
