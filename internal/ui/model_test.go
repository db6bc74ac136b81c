// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests cursor movement, triggering, result handling and device/config cycling
package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Sendspin/soundboard-go/internal/board"
	"github.com/Sendspin/soundboard-go/internal/playback"
	"github.com/Sendspin/soundboard-go/internal/store"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeBoard struct {
	board    *board.Board
	devices  []output.DeviceInfo
	current  int
	configs  []store.Config
	switched []int64
	played   []string
	result   playback.Result
}

func newFakeBoard() *fakeBoard {
	b := board.Default(2, 3)
	b.Assign(0, 0, "Airhorn", "/clips/airhorn.wav")
	b.Assign(1, 2, "Rimshot", "/clips/rimshot.mp3")
	b.SetConfig(1, "Stream")

	return &fakeBoard{
		board: b,
		devices: []output.DeviceInfo{
			{Index: 1, Name: "Built-in Audio Analog Stereo", MaxOutputChannels: 2},
			{Index: 2, Name: "SoundboardSink", MaxOutputChannels: 2},
			{Index: 3, Name: "pipewire", MaxOutputChannels: 64},
		},
		current: 2,
		configs: []store.Config{
			{ID: 1, Name: "Stream", Rows: 2, Cols: 3},
			{ID: 2, Name: "Meeting", Rows: 1, Cols: 1},
		},
	}
}

func (f *fakeBoard) Grid() (int, int, []store.Button, string) {
	rows, cols := f.board.Size()
	_, name := f.board.Config()
	return rows, cols, f.board.Buttons(), name
}

func (f *fakeBoard) TriggerCell(row, col int) (<-chan playback.Result, error) {
	path, err := f.board.Clip(row, col)
	if err != nil {
		return nil, err
	}
	f.played = append(f.played, path)
	ch := make(chan playback.Result, 1)
	res := f.result
	res.Path = path
	ch <- res
	return ch, nil
}

func (f *fakeBoard) Devices() ([]output.DeviceInfo, error) { return f.devices, nil }

func (f *fakeBoard) CurrentDevice() (int, string) {
	for _, d := range f.devices {
		if d.Index == f.current {
			return d.Index, d.Name
		}
	}
	return f.current, ""
}

func (f *fakeBoard) SelectDevice(index int) error {
	f.current = index
	return nil
}

func (f *fakeBoard) Configs() ([]store.Config, error) { return f.configs, nil }

func (f *fakeBoard) SwitchConfig(id int64) error {
	for _, cfg := range f.configs {
		if cfg.ID == id {
			f.switched = append(f.switched, id)
			f.board = board.Default(cfg.Rows, cfg.Cols)
			f.board.SetConfig(cfg.ID, cfg.Name)
			return nil
		}
	}
	return store.ErrConfigNotFound
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func TestNewModel(t *testing.T) {
	model := NewModel(newFakeBoard())

	if model.rows != 2 || model.cols != 3 {
		t.Errorf("expected 2x3 grid, got %dx%d", model.rows, model.cols)
	}
	if model.config != "Stream" {
		t.Errorf("expected config Stream, got %q", model.config)
	}
	if model.deviceIndex != 2 || model.deviceName != "SoundboardSink" {
		t.Errorf("unexpected device [%d] %s", model.deviceIndex, model.deviceName)
	}
	if model.row != 0 || model.col != 0 {
		t.Errorf("cursor should start at 0,0")
	}
}

func TestCursorMovementClamps(t *testing.T) {
	model := NewModel(newFakeBoard())

	model, _ = press(t, model, "up", "left")
	if model.row != 0 || model.col != 0 {
		t.Errorf("cursor moved past top-left: %d,%d", model.row, model.col)
	}

	model, _ = press(t, model, "down", "down", "down", "right", "l", "l", "l")
	if model.row != 1 || model.col != 2 {
		t.Errorf("expected cursor at 1,2, got %d,%d", model.row, model.col)
	}

	model, _ = press(t, model, "k", "h")
	if model.row != 0 || model.col != 1 {
		t.Errorf("expected cursor at 0,1, got %d,%d", model.row, model.col)
	}
}

func TestTriggerDeliversResult(t *testing.T) {
	fb := newFakeBoard()
	fb.result = playback.Result{Duration: 1200 * time.Millisecond}
	model := NewModel(fb)

	model, cmd := press(t, model, "enter")
	if cmd == nil {
		t.Fatal("expected a command waiting for the result")
	}
	if model.playing != 1 || !strings.Contains(model.status, "Airhorn") {
		t.Errorf("unexpected state after trigger: playing=%d status=%q", model.playing, model.status)
	}

	msg := cmd()
	result, ok := msg.(ResultMsg)
	if !ok {
		t.Fatalf("expected ResultMsg, got %T", msg)
	}
	next, _ := model.Update(result)
	model = next.(Model)

	if model.playing != 0 || model.played != 1 {
		t.Errorf("expected one finished playback, got playing=%d played=%d", model.playing, model.played)
	}
	if !strings.Contains(model.status, "Finished Airhorn") {
		t.Errorf("unexpected status %q", model.status)
	}
	if len(fb.played) != 1 || fb.played[0] != "/clips/airhorn.wav" {
		t.Errorf("unexpected plays %v", fb.played)
	}
}

func TestNumberKeyTriggers(t *testing.T) {
	fb := newFakeBoard()
	model := NewModel(fb)

	_, cmd := press(t, model, "6")
	if cmd == nil {
		t.Fatal("expected button 6 to trigger")
	}
	if len(fb.played) != 1 || fb.played[0] != "/clips/rimshot.mp3" {
		t.Errorf("expected rimshot, got %v", fb.played)
	}

	if _, cmd := press(t, model, "9"); cmd != nil {
		t.Error("button 9 is outside a 2x3 grid")
	}
}

func TestTriggerWithoutClip(t *testing.T) {
	model := NewModel(newFakeBoard())

	model, cmd := press(t, model, "right", "enter")
	if cmd != nil {
		t.Error("expected no command for a button without a clip")
	}
	if !model.statusErr || !strings.Contains(model.status, "No audio file assigned") {
		t.Errorf("unexpected status %q", model.status)
	}
	if model.playing != 0 {
		t.Errorf("nothing should be playing")
	}
}

func TestPlaybackErrorShowsHint(t *testing.T) {
	model := NewModel(newFakeBoard())

	model.playing = 1
	model.applyResult(ResultMsg{
		Label:  "Airhorn",
		Result: playback.Result{Err: fmt.Errorf("%w: stream open failed", playback.ErrPlayback)},
	})

	if model.failed != 1 || !model.statusErr {
		t.Errorf("expected failure recorded, got failed=%d statusErr=%v", model.failed, model.statusErr)
	}
	if model.hint == "" || !strings.Contains(model.hint, "48000") {
		t.Errorf("expected sample rate hint, got %q", model.hint)
	}
	if !strings.Contains(model.View(), "Hint:") {
		t.Error("view should show the hint")
	}

	model.applyResult(ResultMsg{Label: "Airhorn", Result: playback.Result{Err: errors.New("boom")}})
	if model.hint != "" {
		t.Errorf("non-driver errors carry no hint, got %q", model.hint)
	}
}

func TestCycleDevice(t *testing.T) {
	fb := newFakeBoard()
	model := NewModel(fb)

	model, _ = press(t, model, "d")
	if fb.current != 3 || model.deviceName != "pipewire" {
		t.Errorf("expected pipewire, got [%d] %s", fb.current, model.deviceName)
	}

	model, _ = press(t, model, "d")
	if fb.current != 1 {
		t.Errorf("expected wrap to first device, got %d", fb.current)
	}

	model, _ = press(t, model, "D")
	if fb.current != 3 || model.deviceIndex != 3 {
		t.Errorf("expected previous device 3, got %d", fb.current)
	}
}

func TestCycleConfig(t *testing.T) {
	fb := newFakeBoard()
	model := NewModel(fb)
	model, _ = press(t, model, "down", "right", "right")

	model, _ = press(t, model, "c")
	if len(fb.switched) != 1 || fb.switched[0] != 2 {
		t.Fatalf("expected switch to config 2, got %v", fb.switched)
	}
	if model.config != "Meeting" || model.rows != 1 || model.cols != 1 {
		t.Errorf("expected Meeting 1x1, got %s %dx%d", model.config, model.rows, model.cols)
	}
	if model.row != 0 || model.col != 0 {
		t.Errorf("cursor should be clamped into the smaller grid, got %d,%d", model.row, model.col)
	}
}

func TestQuit(t *testing.T) {
	model := NewModel(newFakeBoard())

	_, cmd := press(t, model, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewShowsGrid(t *testing.T) {
	model := NewModel(newFakeBoard())
	view := model.View()

	for _, want := range []string{"Stream", "SoundboardSink", "[Airhorn", "Rimshot", "Button 2 ·"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long label", 10, "this is..."},
		{"émoji 🎺 trumpet", 8, "émoji..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if clamp(5, 0, 2) != 2 || clamp(-1, 0, 2) != 0 || clamp(1, 0, 2) != 1 || clamp(3, 0, -1) != 0 {
		t.Error("clamp returned an unexpected value")
	}
}
