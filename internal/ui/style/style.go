// Package style holds the colours and icons shared by the logger and both renderers.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	// Ember is the accent for titles and the selected task.
	Ember   = lipgloss.Color("#F97316")
	Ash     = lipgloss.Color("#6B7280")
	Bright  = lipgloss.Color("#FAFAFA")
	Success = lipgloss.Color("#16A34A")
	Failure = lipgloss.Color("#DC2626")
	Caution = lipgloss.Color("#EAB308")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)
