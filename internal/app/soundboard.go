// ABOUTME: Soundboard service tying the grid, persistence, selection and playback together
// ABOUTME: Shared by the TUI, the remote API and the operator CLI
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Sendspin/soundboard-go/internal/board"
	"github.com/Sendspin/soundboard-go/internal/devices"
	"github.com/Sendspin/soundboard-go/internal/playback"
	"github.com/Sendspin/soundboard-go/internal/selection"
	"github.com/Sendspin/soundboard-go/internal/store"
	"github.com/Sendspin/soundboard-go/pkg/audio/output"
)

// Soundboard is the running soundboard: one grid, one selected device
type Soundboard struct {
	store      *store.Store
	inventory  *devices.Inventory
	selection  *selection.State
	dispatcher *playback.Dispatcher
	rows, cols int

	mu    sync.RWMutex
	board *board.Board
}

// NewSoundboard wires the collaborators; rows and cols size the default grid
func NewSoundboard(st *store.Store, inv *devices.Inventory, sel *selection.State, disp *playback.Dispatcher, rows, cols int) *Soundboard {
	return &Soundboard{
		store:      st,
		inventory:  inv,
		selection:  sel,
		dispatcher: disp,
		rows:       rows,
		cols:       cols,
		board:      board.Default(rows, cols),
	}
}

// LoadLastUsed loads the last used configuration, or keeps the default grid when there is none
func (s *Soundboard) LoadLastUsed() error {
	cfg, ok, err := s.store.GetLastUsedConfig()
	if err != nil {
		return err
	}
	if !ok {
		log.Printf("No saved configuration, using a %dx%d default grid", s.rows, s.cols)
		return nil
	}
	return s.load(cfg)
}

func (s *Soundboard) load(cfg store.Config) error {
	buttons, err := s.store.GetConfigButtons(cfg.ID)
	if err != nil {
		return err
	}

	b := board.New(cfg.Rows, cfg.Cols, buttons)
	b.SetConfig(cfg.ID, cfg.Name)

	s.mu.Lock()
	s.board = b
	s.mu.Unlock()

	log.Printf("Loaded configuration %q (%dx%d, %d buttons)", cfg.Name, cfg.Rows, cfg.Cols, len(buttons))
	return nil
}

// Board returns the current grid
func (s *Soundboard) Board() *board.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// Grid returns a snapshot of the current grid
func (s *Soundboard) Grid() (rows, cols int, buttons []store.Button, config string) {
	b := s.Board()
	rows, cols = b.Size()
	_, config = b.Config()
	return rows, cols, b.Buttons(), config
}

// TriggerCell plays the clip bound to a cell on the selected device
func (s *Soundboard) TriggerCell(row, col int) (<-chan playback.Result, error) {
	path, err := s.Board().Clip(row, col)
	if err != nil {
		if errors.Is(err, board.ErrNoClip) {
			log.Printf("No audio file assigned to button at row %d, col %d", row, col)
		}
		return nil, err
	}

	device, _ := s.selection.Current()
	return s.dispatcher.Trigger(path, device), nil
}

// TriggerLabel plays the first button whose label matches
func (s *Soundboard) TriggerLabel(label string) (<-chan playback.Result, error) {
	btn, ok := s.Board().FindByLabel(label)
	if !ok {
		return nil, fmt.Errorf("%w: %q", board.ErrNoButton, label)
	}
	return s.TriggerCell(btn.Row, btn.Col)
}

// Devices lists output-capable devices
func (s *Soundboard) Devices() ([]output.DeviceInfo, error) {
	return s.inventory.ListOutputDevices()
}

// CurrentDevice returns the selected device
func (s *Soundboard) CurrentDevice() (int, string) {
	return s.selection.Current()
}

// SelectDevice switches and persists the output device
func (s *Soundboard) SelectDevice(index int) error {
	return s.selection.OnUserSelect(index)
}

// Configs lists saved configurations
func (s *Soundboard) Configs() ([]store.Config, error) {
	return s.store.ListConfigs()
}

// SwitchConfig loads a saved configuration and marks it last used
func (s *Soundboard) SwitchConfig(id int64) error {
	cfg, err := s.store.GetConfig(id)
	if err != nil {
		return err
	}
	if err := s.load(cfg); err != nil {
		return err
	}
	return s.store.SetLastUsedConfig(id)
}

// SaveConfig saves the current grid under name and marks it last used
func (s *Soundboard) SaveConfig(name string) (int64, error) {
	b := s.Board()
	rows, cols := b.Size()

	id, err := s.store.SaveConfig(name, b.Buttons(), rows, cols)
	if err != nil {
		return 0, err
	}
	if err := s.store.SetLastUsedConfig(id); err != nil {
		return 0, err
	}
	b.SetConfig(id, name)

	log.Printf("Saved configuration %q", name)
	return id, nil
}

// ExportConfig writes the current grid as JSON
func (s *Soundboard) ExportConfig(path string) error {
	if err := s.Board().ExportFile(path); err != nil {
		return err
	}
	log.Printf("Exported configuration to %s", path)
	return nil
}

// ImportConfig reads a JSON layout, saves it under name and switches to it
func (s *Soundboard) ImportConfig(path, name string) (int64, error) {
	b, err := board.ImportFile(path)
	if err != nil {
		return 0, err
	}
	rows, cols := b.Size()

	id, err := s.store.SaveConfig(name, b.Buttons(), rows, cols)
	if err != nil {
		return 0, err
	}
	if err := s.store.SetLastUsedConfig(id); err != nil {
		return 0, err
	}
	b.SetConfig(id, name)

	s.mu.Lock()
	s.board = b
	s.mu.Unlock()

	log.Printf("Imported configuration %q from %s", name, path)
	return id, nil
}

// AddButton adds a button in the first free cell
func (s *Soundboard) AddButton(label, audioPath string) (row, col int) {
	return s.Board().Add(label, audioPath)
}

// AssignButton binds a clip to a cell
func (s *Soundboard) AssignButton(row, col int, label, audioPath string) error {
	return s.Board().Assign(row, col, label, audioPath)
}

// RemoveButton deletes the button in a cell
func (s *Soundboard) RemoveButton(row, col int) error {
	return s.Board().Remove(row, col)
}
