// ABOUTME: Bubbletea model for the soundboard TUI
// ABOUTME: Renders the button grid and handles triggering, device and config switching
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sendspin/soundboard-go/internal/board"
	"github.com/Sendspin/soundboard-go/internal/playback"
	"github.com/Sendspin/soundboard-go/internal/store"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
	tea "github.com/charmbracelet/bubbletea"
)

const cellWidth = 16

// Soundboard is what the grid drives
type Soundboard interface {
	Grid() (rows, cols int, buttons []store.Button, config string)
	TriggerCell(row, col int) (<-chan playback.Result, error)
	Devices() ([]output.DeviceInfo, error)
	CurrentDevice() (int, string)
	SelectDevice(index int) error
	Configs() ([]store.Config, error)
	SwitchConfig(id int64) error
}

// Model represents the TUI state
type Model struct {
	board Soundboard

	// Grid snapshot
	rows    int
	cols    int
	buttons map[[2]int]store.Button
	config  string

	// Cursor
	row int
	col int

	// Output
	deviceIndex int
	deviceName  string

	// Status line
	status    string
	statusErr bool
	hint      string
	playing   int
	played    int
	failed    int

	// Dimensions
	width  int
	height int
}

// ResultMsg delivers a finished playback
type ResultMsg struct {
	Label  string
	Result playback.Result
}

// ReloadMsg asks the model to re-read the grid
type ReloadMsg struct{}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case ResultMsg:
		m.applyResult(msg)
	case ReloadMsg:
		m.reload()
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString(m.renderGrid())
	sb.WriteString(m.renderStatus())
	sb.WriteString(m.renderHelp())
	return sb.String()
}

func (m Model) renderHeader() string {
	config := m.config
	if config == "" {
		config = "(unsaved)"
	}
	device := m.deviceName
	if device == "" {
		device = "none"
	}

	return fmt.Sprintf("Soundboard · %s\nOutput: [%d] %s\n\n", config, m.deviceIndex, truncate(device, 48))
}

func (m Model) renderGrid() string {
	var sb strings.Builder
	border := strings.Repeat("+"+strings.Repeat("-", cellWidth), m.cols) + "+\n"

	for r := 0; r < m.rows; r++ {
		sb.WriteString(border)
		for c := 0; c < m.cols; c++ {
			label := ""
			if btn, ok := m.buttons[[2]int{r, c}]; ok {
				label = btn.Label
				if btn.AudioPath == "" {
					label += " ·"
				}
			}
			label = truncate(label, cellWidth-2)

			if r == m.row && c == m.col {
				sb.WriteString(fmt.Sprintf("|[%-*s]", cellWidth-2, label))
			} else {
				sb.WriteString(fmt.Sprintf("| %-*s ", cellWidth-2, label))
			}
		}
		sb.WriteString("|\n")
	}
	if m.rows > 0 {
		sb.WriteString(border)
	}
	return sb.String()
}

func (m Model) renderStatus() string {
	s := fmt.Sprintf("\nPlaying: %d  Played: %d  Failed: %d\n", m.playing, m.played, m.failed)
	if m.status != "" {
		prefix := ""
		if m.statusErr {
			prefix = "✗ "
		}
		s += prefix + m.status + "\n"
	}
	if m.hint != "" {
		s += "Hint: " + m.hint + "\n"
	}
	return s
}

func (m Model) renderHelp() string {
	return "\n←↑↓→/hjkl:Move  enter/space:Play  1-9:Play N  d/D:Device  c:Config  r:Reload  q:Quit\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < m.rows-1 {
			m.row++
		}
	case "left", "h":
		if m.col > 0 {
			m.col--
		}
	case "right", "l":
		if m.col < m.cols-1 {
			m.col++
		}
	case "enter", " ":
		return m.trigger(m.row, m.col)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		n := int(key[0] - '1')
		if m.cols > 0 && n < m.rows*m.cols {
			return m.trigger(n/m.cols, n%m.cols)
		}
	case "d":
		m.cycleDevice(1)
	case "D":
		m.cycleDevice(-1)
	case "c":
		m.cycleConfig()
	case "r":
		m.reload()
	}

	return m, nil
}

// trigger starts playback and returns a command that waits for its result
func (m Model) trigger(row, col int) (tea.Model, tea.Cmd) {
	label := fmt.Sprintf("%d,%d", row, col)
	if btn, ok := m.buttons[[2]int{row, col}]; ok {
		label = btn.Label
	}

	results, err := m.board.TriggerCell(row, col)
	if err != nil {
		m.setError(err)
		if errors.Is(err, board.ErrNoClip) {
			m.status = fmt.Sprintf("No audio file assigned to %q", label)
		}
		return m, nil
	}

	m.playing++
	m.setStatus("Playing " + label)
	return m, waitForResult(label, results)
}

func waitForResult(label string, results <-chan playback.Result) tea.Cmd {
	return func() tea.Msg {
		return ResultMsg{Label: label, Result: <-results}
	}
}

func (m *Model) applyResult(msg ResultMsg) {
	if m.playing > 0 {
		m.playing--
	}
	if msg.Result.Err != nil {
		m.failed++
		m.setError(fmt.Errorf("%s: %w", msg.Label, msg.Result.Err))
		return
	}
	m.played++
	m.setStatus(fmt.Sprintf("Finished %s (%.1fs)", msg.Label, msg.Result.Duration.Seconds()))
}

func (m *Model) cycleDevice(step int) {
	outputs, err := m.board.Devices()
	if err != nil {
		m.setError(err)
		return
	}
	if len(outputs) == 0 {
		m.setError(errors.New("no output devices"))
		return
	}

	pos := 0
	for i, dev := range outputs {
		if dev.Index == m.deviceIndex {
			pos = (i + step + len(outputs)) % len(outputs)
			break
		}
	}

	next := outputs[pos]
	if err := m.board.SelectDevice(next.Index); err != nil {
		m.setError(err)
		return
	}
	m.deviceIndex, m.deviceName = m.board.CurrentDevice()
	m.setStatus("Output device: " + next.Name)
}

func (m *Model) cycleConfig() {
	configs, err := m.board.Configs()
	if err != nil {
		m.setError(err)
		return
	}
	if len(configs) == 0 {
		m.setError(errors.New("no saved configurations"))
		return
	}

	pos := 0
	for i, cfg := range configs {
		if cfg.Name == m.config {
			pos = (i + 1) % len(configs)
			break
		}
	}

	if err := m.board.SwitchConfig(configs[pos].ID); err != nil {
		m.setError(err)
		return
	}
	m.reload()
	m.setStatus("Configuration: " + configs[pos].Name)
}

// reload re-reads the grid and selected device, clamping the cursor
func (m *Model) reload() {
	rows, cols, buttons, config := m.board.Grid()
	m.rows, m.cols, m.config = rows, cols, config
	m.buttons = make(map[[2]int]store.Button, len(buttons))
	for _, btn := range buttons {
		m.buttons[[2]int{btn.Row, btn.Col}] = btn
	}
	m.row = clamp(m.row, 0, rows-1)
	m.col = clamp(m.col, 0, cols-1)
	m.deviceIndex, m.deviceName = m.board.CurrentDevice()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
	m.hint = ""
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.hint = playback.Hint(err)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
