// ABOUTME: In-memory sound server for routing tests
// ABOUTME: Implements Controller with generated listings, call counters and injectable failures
package routing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Fake is an in-memory Controller
type Fake struct {
	mu sync.Mutex

	nextID  int
	modules map[int]fakeModule

	// Hardware present before any module is loaded
	BaseSinks   []string
	BaseSources []string
	Default     string

	// Injected failures
	ListErr       error
	DefaultErr    error
	FailLoad      map[string]error // keyed by a substring of the load arguments
	FailUnload    map[int]error
	loads         int
	unloads       int
	unloadAttempt []int
}

type fakeModule struct {
	name string
	args []string
}

// NewFake creates a fake server with one speaker and one microphone
func NewFake() *Fake {
	return &Fake{
		nextID:      536870912,
		modules:     make(map[int]fakeModule),
		BaseSinks:   []string{"alsa_output.pci-0000_00_1f.3.analog-stereo"},
		BaseSources: []string{"alsa_input.pci-0000_00_1f.3.analog-stereo"},
		Default:     "alsa_input.pci-0000_00_1f.3.analog-stereo",
		FailLoad:    make(map[string]error),
		FailUnload:  make(map[int]error),
	}
}

func (f *Fake) ids() []int {
	ids := make([]int, 0, len(f.modules))
	for id := range f.modules {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func argValue(args []string, key string) string {
	for _, a := range args {
		if v, ok := strings.CutPrefix(a, key+"="); ok {
			return v
		}
	}
	return ""
}

// sinks must be called with f.mu held
func (f *Fake) sinks() []string {
	sinks := append([]string(nil), f.BaseSinks...)
	for _, id := range f.ids() {
		m := f.modules[id]
		if m.name == "module-null-sink" {
			sinks = append(sinks, argValue(m.args, "sink_name"))
		}
	}
	return sinks
}

// ListSinks lists base sinks and loaded null sinks
func (f *Fake) ListSinks(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return "", f.ListErr
	}
	var b strings.Builder
	for i, name := range f.sinks() {
		fmt.Fprintf(&b, "%d\t%s\tPipeWire\tfloat32le 2ch 48000Hz\tSUSPENDED\n", i+40, name)
	}
	return b.String(), nil
}

// ListSources lists base sources, sink monitors and remap sources
func (f *Fake) ListSources(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return "", f.ListErr
	}
	sources := append([]string(nil), f.BaseSources...)
	for _, sink := range f.sinks() {
		sources = append(sources, sink+".monitor")
	}
	for _, id := range f.ids() {
		m := f.modules[id]
		if m.name == "module-remap-source" {
			sources = append(sources, argValue(m.args, "source_name"))
		}
	}

	var b strings.Builder
	for i, name := range sources {
		fmt.Fprintf(&b, "%d\t%s\tPipeWire\tfloat32le 2ch 48000Hz\tSUSPENDED\n", i+60, name)
	}
	return b.String(), nil
}

// ListModules lists loaded modules in load order
func (f *Fake) ListModules(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return "", f.ListErr
	}
	var b strings.Builder
	b.WriteString("1\tlibpipewire-module-rt\t\n")
	for _, id := range f.ids() {
		m := f.modules[id]
		fmt.Fprintf(&b, "%d\t%s\t%s\n", id, m.name, strings.Join(m.args, " "))
	}
	return b.String(), nil
}

// LoadModule records a module unless a matching failure is injected
func (f *Fake) LoadModule(ctx context.Context, name string, args ...string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	joined := name + " " + strings.Join(args, " ")
	for key, err := range f.FailLoad {
		if strings.Contains(joined, key) {
			return 0, err
		}
	}

	f.nextID++
	f.modules[f.nextID] = fakeModule{name: name, args: append([]string(nil), args...)}
	f.loads++
	return f.nextID, nil
}

// UnloadModule removes a module by id
func (f *Fake) UnloadModule(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unloadAttempt = append(f.unloadAttempt, id)
	if err, ok := f.FailUnload[id]; ok {
		return err
	}
	if _, ok := f.modules[id]; !ok {
		return fmt.Errorf("failure: no such entity: %d", id)
	}
	delete(f.modules, id)
	f.unloads++
	return nil
}

// DefaultSource returns the configured default source
func (f *Fake) DefaultSource(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DefaultErr != nil {
		return "", f.DefaultErr
	}
	return f.Default, nil
}

// Loads returns the number of successful module loads
func (f *Fake) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// Unloads returns the number of successful module unloads
func (f *Fake) Unloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unloads
}

// UnloadAttempts returns every id passed to UnloadModule, in call order
func (f *Fake) UnloadAttempts() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.unloadAttempt...)
}

// ModuleCount returns the number of loaded modules
func (f *Fake) ModuleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.modules)
}

// Inject loads a module as if another process had done it
func (f *Fake) Inject(name string, args ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	f.modules[f.nextID] = fakeModule{name: name, args: append([]string(nil), args...)}
	return f.nextID
}
