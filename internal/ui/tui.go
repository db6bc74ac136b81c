// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the soundboard grid
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// NewModel creates a TUI model showing the soundboard's current grid
func NewModel(sb Soundboard) Model {
	m := Model{board: sb}
	m.reload()
	return m
}

// Run creates the TUI program; the caller runs it
func Run(sb Soundboard) *tea.Program {
	return tea.NewProgram(NewModel(sb), tea.WithAltScreen())
}
