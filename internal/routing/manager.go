// ABOUTME: Virtual routing graph lifecycle manager
// ABOUTME: Idempotently ensures the soundboard sink/mix/loopback/source topology and tears it down
package routing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// Node names of the routing graph
const (
	SinkName            = "SoundboardSink"
	MixName             = "SoundboardMix"
	MonitorLoopbackName = "SoundboardMonitorLoopback"
	MicLoopbackName     = "SoundboardMicLoopback"
	MixSourceName       = "SoundboardMixSource"

	// Remap source created by older releases
	legacySourceName = "SoundboardSource"
)

// Module types the manager loads
const (
	moduleNullSink    = "module-null-sink"
	moduleLoopback    = "module-loopback"
	moduleRemapSource = "module-remap-source"
)

// NodeNames lists the graph nodes in creation order
var NodeNames = []string{SinkName, MixName, MonitorLoopbackName, MicLoopbackName, MixSourceName}

// cleanupNames are matched against module lines during teardown
var cleanupNames = append(append([]string(nil), NodeNames...), legacySourceName)

// SetupError reports a graph node that could not be created
type SetupError struct {
	Node string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("routing setup %s: %v", e.Node, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// CleanupError reports a module that could not be listed or unloaded
type CleanupError struct {
	ModuleID int
	Err      error
}

func (e *CleanupError) Error() string {
	if e.ModuleID == 0 {
		return fmt.Sprintf("routing cleanup: %v", e.Err)
	}
	return fmt.Sprintf("routing cleanup module %d: %v", e.ModuleID, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}

// Report describes the outcome of one Ensure pass
type Report struct {
	Created []string
	Present []string
	Failed  []*SetupError
}

// NodeStatus is the presence of one node in the server's listings
type NodeStatus struct {
	Name    string
	Present bool
	Owned   bool
}

// Manager owns the routing graph for this process
type Manager struct {
	ctrl Controller

	mu      sync.Mutex
	created map[string]int // node name -> module id
}

// NewManager creates a manager over a controller
func NewManager(ctrl Controller) *Manager {
	return &Manager{
		ctrl:    ctrl,
		created: make(map[string]int),
	}
}

// snapshot holds the three listings taken at the start of Ensure
type snapshot struct {
	sinks, sources, modules          string
	sinksErr, sourcesErr, modulesErr error
}

func (m *Manager) snapshot(ctx context.Context) snapshot {
	var s snapshot
	s.sinks, s.sinksErr = m.ctrl.ListSinks(ctx)
	s.sources, s.sourcesErr = m.ctrl.ListSources(ctx)
	s.modules, s.modulesErr = m.ctrl.ListModules(ctx)
	return s
}

// step is one node of the desired topology
type step struct {
	node   string
	module string
	// listing returns the listing the node shows up in
	listing func(snapshot) (string, error)
	// args builds the module arguments
	args func(ctx context.Context) ([]string, error)
}

func (m *Manager) steps() []step {
	sinks := func(s snapshot) (string, error) { return s.sinks, s.sinksErr }
	sources := func(s snapshot) (string, error) { return s.sources, s.sourcesErr }
	modules := func(s snapshot) (string, error) { return s.modules, s.modulesErr }
	static := func(args ...string) func(context.Context) ([]string, error) {
		return func(context.Context) ([]string, error) { return args, nil }
	}

	return []step{
		{
			node:    SinkName,
			module:  moduleNullSink,
			listing: sinks,
			args:    static(nullSinkArgs(SinkName)...),
		},
		{
			node:    MixName,
			module:  moduleNullSink,
			listing: sinks,
			args:    static(nullSinkArgs(MixName)...),
		},
		{
			node:    MonitorLoopbackName,
			module:  moduleLoopback,
			listing: modules,
			args:    static(loopbackArgs(SinkName+".monitor", MonitorLoopbackName)...),
		},
		{
			node:    MicLoopbackName,
			module:  moduleLoopback,
			listing: modules,
			args:    m.micLoopbackArgs,
		},
		{
			node:    MixSourceName,
			module:  moduleRemapSource,
			listing: sources,
			args: static(
				"master="+MixName+".monitor",
				"source_name="+MixSourceName,
				"source_properties=device.description="+MixSourceName,
			),
		},
	}
}

func nullSinkArgs(name string) []string {
	return []string{
		"sink_name=" + name,
		"sink_properties=device.description=" + name,
	}
}

func loopbackArgs(source, name string) []string {
	return []string{
		"source=" + source,
		"sink=" + MixName,
		"sink_input_properties=media.name=" + name,
	}
}

func (m *Manager) micLoopbackArgs(ctx context.Context) ([]string, error) {
	mic, err := m.ctrl.DefaultSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve default source: %w", err)
	}
	if mic == "" {
		return nil, errors.New("no default source")
	}
	// Looping our own output back into the mix would feed back
	if strings.Contains(mic, "Soundboard") {
		return nil, fmt.Errorf("default source %q is a soundboard node", mic)
	}
	return loopbackArgs(mic, MicLoopbackName), nil
}

// Ensure brings the routing graph to the desired topology.
// Failures are logged and do not stop later steps; the joined error is
// for reporting only.
func (m *Manager) Ensure(ctx context.Context) error {
	report := m.EnsureReport(ctx)
	if len(report.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(report.Failed))
	for i, f := range report.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// EnsureReport is Ensure with a per-node account of what happened
func (m *Manager) EnsureReport(ctx context.Context) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	var report Report
	snap := m.snapshot(ctx)

	for _, st := range m.steps() {
		if _, ok := m.created[st.node]; ok {
			report.Present = append(report.Present, st.node)
			continue
		}

		listing, err := st.listing(snap)
		if err != nil {
			m.fail(&report, st.node, fmt.Errorf("list: %w", err))
			continue
		}
		if strings.Contains(listing, st.node) {
			report.Present = append(report.Present, st.node)
			continue
		}

		args, err := st.args(ctx)
		if err != nil {
			m.fail(&report, st.node, err)
			continue
		}

		id, err := m.ctrl.LoadModule(ctx, st.module, args...)
		if err != nil {
			m.fail(&report, st.node, fmt.Errorf("load %s: %w", st.module, err))
			continue
		}

		m.created[st.node] = id
		report.Created = append(report.Created, st.node)
		log.Printf("Routing: created %s (module %d)", st.node, id)
	}

	return report
}

func (m *Manager) fail(report *Report, node string, err error) {
	setupErr := &SetupError{Node: node, Err: err}
	report.Failed = append(report.Failed, setupErr)
	log.Printf("Warning: could not set up %s: %v", node, err)
}

// Cleanup unloads every soundboard module in the server's listing,
// including ones loaded by other processes, and forgets created nodes.
func (m *Manager) Cleanup(ctx context.Context) error {
	_, err := m.CleanupReport(ctx)
	return err
}

// CleanupReport is Cleanup returning the modules it unloaded
func (m *Manager) CleanupReport(ctx context.Context) ([]Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created = make(map[string]int)

	listing, err := m.ctrl.ListModules(ctx)
	if err != nil {
		log.Printf("Warning: could not list modules for cleanup: %v", err)
		return nil, &CleanupError{Err: fmt.Errorf("list modules: %w", err)}
	}

	matched := MatchingModules(listing)
	var removed []Module
	var errs []error

	// Reverse order tears down dependents before the sinks they attach to
	for i := len(matched) - 1; i >= 0; i-- {
		mod := matched[i]
		if err := m.ctrl.UnloadModule(ctx, mod.ID); err != nil {
			log.Printf("Warning: could not unload module %d (%s): %v", mod.ID, mod.Name, err)
			errs = append(errs, &CleanupError{ModuleID: mod.ID, Err: err})
			continue
		}
		removed = append(removed, mod)
		log.Printf("Routing: unloaded module %d (%s)", mod.ID, mod.Name)
	}

	return removed, errors.Join(errs...)
}

// MatchingModules returns the soundboard modules in a module listing, in listing order
func MatchingModules(listing string) []Module {
	var matched []Module
	for _, mod := range ParseModules(listing) {
		switch mod.Name {
		case moduleNullSink, moduleRemapSource, moduleLoopback:
		default:
			continue
		}
		for _, name := range cleanupNames {
			if strings.Contains(mod.Line, name) {
				matched = append(matched, mod)
				break
			}
		}
	}
	return matched
}

// Created returns the node names and module ids this manager loaded
func (m *Manager) Created() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int, len(m.created))
	for k, v := range m.created {
		out[k] = v
	}
	return out
}

// Status reports which nodes are currently present on the server
func (m *Manager) Status(ctx context.Context) ([]NodeStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot(ctx)
	if err := errors.Join(snap.sinksErr, snap.sourcesErr, snap.modulesErr); err != nil {
		return nil, err
	}

	statuses := make([]NodeStatus, 0, len(NodeNames))
	for _, st := range m.steps() {
		listing, _ := st.listing(snap)
		_, owned := m.created[st.node]
		statuses = append(statuses, NodeStatus{
			Name:    st.node,
			Present: strings.Contains(listing, st.node),
			Owned:   owned,
		})
	}
	return statuses, nil
}
