// Package tui renders the meter in the terminal with Bubbletea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dooshek/heartbeat/internal/mode"
	"github.com/dooshek/heartbeat/internal/presentation"
)

// spikeFlashFrames is how many level updates a spike stays highlighted for.
const spikeFlashFrames = 12

// Model is the Bubbletea model for the live meter view
type Model struct {
	Modes *mode.Manager
	Heart *presentation.HeartController

	Level      LevelMsg
	Spikes     int
	flash      int
	ModeActive bool

	Width  int
	Height int
}

// NewModel creates a model that controls modes and heart from key presses.
// Either may be nil, in which case the matching key does nothing.
func NewModel(modes *mode.Manager, heart *presentation.HeartController) Model {
	m := Model{Modes: modes, Heart: heart}
	if heart != nil {
		m.Level.Heart = heart.Snapshot()
	}
	if modes != nil {
		m.ModeActive = modes.Active()
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "m":
			if m.Modes != nil {
				m.ModeActive = m.Modes.Toggle()
			}
		case "r":
			if m.Heart != nil {
				m.Heart.Reset()
				m.Level.Heart = m.Heart.Snapshot()
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case LevelMsg:
		m.Level = msg
		if m.flash > 0 {
			m.flash--
		}

	case SpikeMsg:
		m.Spikes++
		m.flash = spikeFlashFrames

	case ModeMsg:
		m.ModeActive = msg.Active
	}

	return m, nil
}

// Flashing reports whether a recent spike is still highlighted.
func (m Model) Flashing() bool {
	return m.flash > 0
}

// View renders the UI
func (m Model) View() string {
	return renderMeterView(m)
}
