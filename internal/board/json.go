// ABOUTME: JSON export and import of button grids
// ABOUTME: Reads and writes {rows, cols, buttons} layout files
package board

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Sendspin/soundboard-go/internal/store"
)

// Layout is the JSON file format for a configuration
type Layout struct {
	Rows    int            `json:"rows"`
	Cols    int            `json:"cols"`
	Buttons []store.Button `json:"buttons"`
}

// Export writes the board as an indented JSON layout
func (b *Board) Export(w io.Writer) error {
	rows, cols := b.Size()
	layout := Layout{
		Rows:    rows,
		Cols:    cols,
		Buttons: b.Buttons(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(layout); err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}
	return nil
}

// ExportFile writes the board layout to path
func (b *Board) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := b.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Import reads a JSON layout; missing sizes default to 3x3
func Import(r io.Reader) (*Board, error) {
	var layout Layout
	if err := json.NewDecoder(r).Decode(&layout); err != nil {
		return nil, fmt.Errorf("failed to decode layout: %w", err)
	}
	for i, btn := range layout.Buttons {
		if btn.Row < 0 || btn.Col < 0 {
			return nil, fmt.Errorf("button %d (%q) has a negative position", i, btn.Label)
		}
	}
	return New(layout.Rows, layout.Cols, layout.Buttons), nil
}

// ImportFile reads a layout from path
func ImportFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Import(f)
}
