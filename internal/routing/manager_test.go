// ABOUTME: Tests for the routing graph manager
// ABOUTME: Tests idempotent ensure, cleanup teardown and best-effort failure handling
package routing

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestEnsureCreatesAllNodes(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)

	report := m.EnsureReport(context.Background())

	if len(report.Failed) != 0 {
		t.Fatalf("unexpected failures: %v", report.Failed)
	}
	if len(report.Created) != len(NodeNames) {
		t.Fatalf("expected %d created nodes, got %v", len(NodeNames), report.Created)
	}
	for i, name := range NodeNames {
		if report.Created[i] != name {
			t.Errorf("step %d: expected %s, got %s", i, name, report.Created[i])
		}
	}
	if fake.Loads() != 5 {
		t.Errorf("expected 5 loads, got %d", fake.Loads())
	}

	created := m.Created()
	if len(created) != 5 {
		t.Errorf("expected 5 tracked modules, got %d", len(created))
	}
}

func TestEnsureIdempotent(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)
	ctx := context.Background()

	if err := m.Ensure(ctx); err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	loads := fake.Loads()

	if err := m.Ensure(ctx); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if fake.Loads() != loads {
		t.Errorf("second ensure created %d new nodes", fake.Loads()-loads)
	}
}

func TestEnsureDetectsExistingGraph(t *testing.T) {
	fake := NewFake()
	ctx := context.Background()

	// A previous run left the graph behind
	if err := NewManager(fake).Ensure(ctx); err != nil {
		t.Fatal(err)
	}
	loads := fake.Loads()

	m := NewManager(fake)
	report := m.EnsureReport(ctx)
	if len(report.Created) != 0 {
		t.Errorf("expected no creations, got %v", report.Created)
	}
	if len(report.Present) != 5 {
		t.Errorf("expected 5 present nodes, got %v", report.Present)
	}
	if fake.Loads() != loads {
		t.Errorf("expected no loads, got %d", fake.Loads()-loads)
	}
	if len(m.Created()) != 0 {
		t.Error("foreign nodes should not be tracked as created")
	}
}

func TestEnsureLoopbackArgs(t *testing.T) {
	fake := NewFake()
	if err := NewManager(fake).Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}

	listing, _ := fake.ListModules(context.Background())
	for _, want := range []string{
		"source=SoundboardSink.monitor sink=SoundboardMix sink_input_properties=media.name=SoundboardMonitorLoopback",
		"source=alsa_input.pci-0000_00_1f.3.analog-stereo sink=SoundboardMix sink_input_properties=media.name=SoundboardMicLoopback",
		"master=SoundboardMix.monitor source_name=SoundboardMixSource",
	} {
		if !strings.Contains(listing, want) {
			t.Errorf("module listing missing %q:\n%s", want, listing)
		}
	}
}

func TestEnsureContinuesAfterFailure(t *testing.T) {
	fake := NewFake()
	boom := errors.New("module load failed")
	fake.FailLoad["sink_name="+MixName] = boom

	m := NewManager(fake)
	report := m.EnsureReport(context.Background())

	if len(report.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %v", report.Failed)
	}
	if report.Failed[0].Node != MixName {
		t.Errorf("expected %s to fail, got %s", MixName, report.Failed[0].Node)
	}
	if !errors.Is(report.Failed[0], boom) {
		t.Error("setup error should wrap the load failure")
	}
	// Remaining steps still attempted
	if len(report.Created) != 4 {
		t.Errorf("expected 4 created nodes, got %v", report.Created)
	}

	err := m.Ensure(context.Background())
	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("expected SetupError, got %v", err)
	}
}

func TestEnsureMicLoopbackFailures(t *testing.T) {
	tests := []struct {
		name       string
		defaultSrc string
		defaultErr error
	}{
		{"no default source", "", nil},
		{"default is soundboard", "SoundboardMixSource", nil},
		{"lookup fails", "", errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := NewFake()
			fake.Default = tt.defaultSrc
			fake.DefaultErr = tt.defaultErr

			report := NewManager(fake).EnsureReport(context.Background())
			if len(report.Failed) != 1 || report.Failed[0].Node != MicLoopbackName {
				t.Fatalf("expected only mic loopback to fail, got %v", report.Failed)
			}
			if len(report.Created) != 4 {
				t.Errorf("expected 4 created nodes, got %v", report.Created)
			}
		})
	}
}

func TestEnsureListingFailure(t *testing.T) {
	fake := NewFake()
	fake.ListErr = errors.New("pactl not found")

	report := NewManager(fake).EnsureReport(context.Background())
	if len(report.Failed) != 5 {
		t.Errorf("expected every step to fail, got %v", report.Failed)
	}
	if fake.Loads() != 0 {
		t.Errorf("expected no blind loads, got %d", fake.Loads())
	}
}

func TestCleanupRemovesAllNodes(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)
	ctx := context.Background()

	if err := m.Ensure(ctx); err != nil {
		t.Fatal(err)
	}
	removed, err := m.CleanupReport(ctx)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if len(removed) != 5 {
		t.Errorf("expected 5 removed modules, got %d", len(removed))
	}

	listing, _ := fake.ListModules(ctx)
	if got := MatchingModules(listing); len(got) != 0 {
		t.Errorf("expected no soundboard modules left, got %v", got)
	}
	for _, name := range NodeNames {
		if strings.Contains(listing, name) {
			t.Errorf("%s still in module listing", name)
		}
	}
	if len(m.Created()) != 0 {
		t.Error("cleanup should forget created nodes")
	}
}

func TestCleanupReverseOrder(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)
	ctx := context.Background()

	m.Ensure(ctx)
	created := m.Created()
	m.Cleanup(ctx)

	attempts := fake.UnloadAttempts()
	if len(attempts) != 5 {
		t.Fatalf("expected 5 unload attempts, got %v", attempts)
	}
	if attempts[0] != created[MixSourceName] {
		t.Errorf("expected mix source unloaded first, got module %d", attempts[0])
	}
	if attempts[4] != created[SinkName] {
		t.Errorf("expected soundboard sink unloaded last, got module %d", attempts[4])
	}
}

func TestCleanupRemovesForeignAndLegacyNodes(t *testing.T) {
	fake := NewFake()
	fake.Inject(moduleNullSink, "sink_name=SoundboardSink")
	fake.Inject(moduleRemapSource, "master=SoundboardSink.monitor", "source_name=SoundboardSource")
	unrelated := fake.Inject(moduleNullSink, "sink_name=OBSSink")

	m := NewManager(fake)
	removed, err := m.CleanupReport(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(removed) != 2 {
		t.Errorf("expected 2 removed modules, got %v", removed)
	}
	for _, mod := range removed {
		if mod.ID == unrelated {
			t.Error("unrelated module was unloaded")
		}
	}
	if fake.ModuleCount() != 1 {
		t.Errorf("expected only the unrelated module left, got %d", fake.ModuleCount())
	}
}

func TestCleanupContinuesAfterUnloadFailure(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)
	ctx := context.Background()

	m.Ensure(ctx)
	stuck := m.Created()[MonitorLoopbackName]
	fake.FailUnload[stuck] = errors.New("busy")

	err := m.Cleanup(ctx)
	var cleanupErr *CleanupError
	if !errors.As(err, &cleanupErr) {
		t.Fatalf("expected CleanupError, got %v", err)
	}
	if cleanupErr.ModuleID != stuck {
		t.Errorf("expected failure for module %d, got %d", stuck, cleanupErr.ModuleID)
	}
	if fake.Unloads() != 4 {
		t.Errorf("expected other 4 modules unloaded, got %d", fake.Unloads())
	}
}

func TestCleanupListFailure(t *testing.T) {
	fake := NewFake()
	fake.ListErr = errors.New("no server")

	err := NewManager(fake).Cleanup(context.Background())
	var cleanupErr *CleanupError
	if !errors.As(err, &cleanupErr) {
		t.Fatalf("expected CleanupError, got %v", err)
	}
}

func TestCleanupThenEnsureRecreates(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)
	ctx := context.Background()

	m.Ensure(ctx)
	m.Cleanup(ctx)
	report := m.EnsureReport(ctx)

	if len(report.Created) != 5 {
		t.Errorf("expected graph rebuilt after cleanup, got %v", report.Created)
	}
}

func TestStatus(t *testing.T) {
	fake := NewFake()
	m := NewManager(fake)
	ctx := context.Background()

	statuses, err := m.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range statuses {
		if s.Present || s.Owned {
			t.Errorf("%s: expected absent before ensure", s.Name)
		}
	}

	m.Ensure(ctx)
	statuses, err = m.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 5 {
		t.Fatalf("expected 5 statuses, got %d", len(statuses))
	}
	for _, s := range statuses {
		if !s.Present || !s.Owned {
			t.Errorf("%s: expected present and owned, got %+v", s.Name, s)
		}
	}
}
