package tui

import (
	"bytes"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultLogLines bounds the lines kept per task.
const DefaultLogLines = 1000

// LogTail keeps the last lines of a task's output and a scroll position over them.
// It is only touched from the bubbletea update loop.
type LogTail struct {
	lines    []string
	partial  []byte
	maxLines int

	Offset int
	Height int
	Width  int
}

// NewLogTail creates a LogTail holding at most maxLines lines.
func NewLogTail(maxLines int) *LogTail {
	if maxLines <= 0 {
		maxLines = DefaultLogLines
	}
	return &LogTail{maxLines: maxLines, Height: 1}
}

// Write appends output. Carriage returns rewrite the current line, as progress bars do.
func (l *LogTail) Write(p []byte) (int, error) {
	follow := l.Offset >= l.maxOffset()

	l.partial = append(l.partial, p...)
	for {
		i := bytes.IndexByte(l.partial, '\n')
		if i < 0 {
			break
		}
		l.push(string(l.partial[:i]))
		l.partial = l.partial[i+1:]
	}

	if follow {
		l.Offset = l.maxOffset()
	}
	return len(p), nil
}

func (l *LogTail) push(line string) {
	line = strings.TrimRight(line, "\r")
	if i := strings.LastIndexByte(line, '\r'); i >= 0 {
		line = line[i+1:]
	}
	l.lines = append(l.lines, line)
	if over := len(l.lines) - l.maxLines; over > 0 {
		l.lines = l.lines[over:]
		l.Offset = max(0, l.Offset-over)
	}
}

// Lines returns the complete lines followed by the pending partial line, if any.
func (l *LogTail) Lines() []string {
	if len(l.partial) == 0 {
		return l.lines
	}
	return append(l.lines[:len(l.lines):len(l.lines)], string(l.partial))
}

// SetSize updates the visible window, keeping the view pinned to the bottom when it was.
func (l *LogTail) SetSize(width, height int) {
	follow := l.Offset >= l.maxOffset()
	l.Width = max(1, width)
	l.Height = max(1, height)
	if follow {
		l.Offset = l.maxOffset()
	}
	l.clamp()
}

// Update scrolls the view on navigation keys.
func (l *LogTail) Update(msg tea.KeyMsg) {
	switch msg.String() {
	case "pgup", "ctrl+u":
		l.Offset -= l.Height
	case "pgdown", "ctrl+d":
		l.Offset += l.Height
	case "home", "g":
		l.Offset = 0
	case "end", "G":
		l.Offset = l.maxOffset()
	}
	l.clamp()
}

// View renders the visible lines, truncated to the width.
func (l *LogTail) View() string {
	lines := l.Lines()
	end := min(len(lines), l.Offset+l.Height)
	start := min(l.Offset, end)

	visible := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		if runes := []rune(line); l.Width > 0 && len(runes) > l.Width {
			line = string(runes[:l.Width])
		}
		visible = append(visible, line)
	}
	return strings.Join(visible, "\n")
}

func (l *LogTail) maxOffset() int {
	return max(0, len(l.Lines())-l.Height)
}

func (l *LogTail) clamp() {
	l.Offset = min(max(l.Offset, 0), l.maxOffset())
}
