// ABOUTME: Soundboard button grid model
// ABOUTME: Default grids, add/assign/remove of buttons and lookups by cell or label
package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Sendspin/soundboard-go/internal/store"
)

var (
	// ErrNoClip is returned when a triggered button has no audio file
	ErrNoClip = errors.New("no audio file assigned to this button")

	// ErrNoButton is returned when no button occupies a cell or label
	ErrNoButton = errors.New("no such button")
)

type cell struct {
	row, col int
}

// Board is the in-memory button grid of the current configuration
type Board struct {
	mu sync.RWMutex

	configID   int64
	configName string
	rows       int
	cols       int
	buttons    map[cell]store.Button
}

// New creates a board from stored buttons
func New(rows, cols int, buttons []store.Button) *Board {
	if rows <= 0 {
		rows = store.DefaultRows
	}
	if cols <= 0 {
		cols = store.DefaultCols
	}

	b := &Board{
		rows:    rows,
		cols:    cols,
		buttons: make(map[cell]store.Button, len(buttons)),
	}
	for _, btn := range buttons {
		b.buttons[cell{btn.Row, btn.Col}] = btn
	}
	return b
}

// Default creates a full grid of unassigned buttons labelled "Button N"
func Default(rows, cols int) *Board {
	b := New(rows, cols, nil)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			b.buttons[cell{r, c}] = store.Button{Label: b.defaultLabel(r, c), Row: r, Col: c}
		}
	}
	return b
}

func (b *Board) defaultLabel(row, col int) string {
	return fmt.Sprintf("Button %d", row*b.cols+col+1)
}

// Size returns the grid dimensions
func (b *Board) Size() (rows, cols int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rows, b.cols
}

// Config returns the id and name of the configuration this board was loaded from
func (b *Board) Config() (int64, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.configID, b.configName
}

// SetConfig records which stored configuration the board belongs to
func (b *Board) SetConfig(id int64, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.configID = id
	b.configName = name
}

// Buttons returns all buttons ordered by row then column
func (b *Board) Buttons() []store.Button {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]store.Button, 0, len(b.buttons))
	for _, btn := range b.buttons {
		out = append(out, btn)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// At returns the button in a cell
func (b *Board) At(row, col int) (store.Button, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	btn, ok := b.buttons[cell{row, col}]
	return btn, ok
}

// FindByLabel returns the first button, in grid order, whose label matches case-insensitively
func (b *Board) FindByLabel(label string) (store.Button, bool) {
	for _, btn := range b.Buttons() {
		if strings.EqualFold(btn.Label, label) {
			return btn, true
		}
	}
	return store.Button{}, false
}

// Clip returns the audio path bound to a cell
func (b *Board) Clip(row, col int) (string, error) {
	btn, ok := b.At(row, col)
	if !ok {
		return "", fmt.Errorf("%w at row %d, col %d", ErrNoButton, row, col)
	}
	if btn.AudioPath == "" {
		return "", fmt.Errorf("%q: %w", btn.Label, ErrNoClip)
	}
	return btn.AudioPath, nil
}

// freeCell must be called with b.mu held; grows the grid by one row when full
func (b *Board) freeCell() cell {
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			if _, used := b.buttons[cell{r, c}]; !used {
				return cell{r, c}
			}
		}
	}
	b.rows++
	return cell{b.rows - 1, 0}
}

// Add places a new button in the first free cell and returns its position
func (b *Board) Add(label, audioPath string) (row, col int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pos := b.freeCell()
	if label == "" {
		label = b.defaultLabel(pos.row, pos.col)
	}
	b.buttons[pos] = store.Button{Label: label, AudioPath: audioPath, Row: pos.row, Col: pos.col}
	return pos.row, pos.col
}

// Assign binds a clip to an existing button; an empty label keeps the current one
func (b *Board) Assign(row, col int, label, audioPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	btn, ok := b.buttons[cell{row, col}]
	if !ok {
		return fmt.Errorf("%w at row %d, col %d", ErrNoButton, row, col)
	}
	btn.AudioPath = audioPath
	if label != "" {
		btn.Label = label
	}
	b.buttons[cell{row, col}] = btn
	return nil
}

// Remove deletes the button in a cell
func (b *Board) Remove(row, col int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.buttons[cell{row, col}]; !ok {
		return fmt.Errorf("%w at row %d, col %d", ErrNoButton, row, col)
	}
	delete(b.buttons, cell{row, col})
	return nil
}
