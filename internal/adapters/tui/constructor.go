// Package tui provides the interactive task list renderer.
package tui

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/forge/internal/ui/output"
)

// DefaultTickInterval is how often running task timers refresh.
const DefaultTickInterval = 100 * time.Millisecond

// NewModel creates a new TUI model rendering for w.
func NewModel(w io.Writer) Model {
	if w == nil {
		w = os.Stderr
	}
	lipgloss.SetColorProfile(output.New(w, output.Terminal).Profile)

	return Model{
		TaskMap:      make(map[string]*TaskNode),
		SpanMap:      make(map[string]*TaskNode),
		FollowMode:   true,
		TickInterval: DefaultTickInterval,
	}
}

// WithoutTick disables the timer refresh, for tests driving the model directly.
func (m Model) WithoutTick() Model {
	m.TickInterval = 0
	return m
}
