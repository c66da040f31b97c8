package tui_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/forge/internal/adapters/tui"
	"go.trai.ch/zerr"
)

func TestView_BeforeResize(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	m := tui.NewModel(&bytes.Buffer{}).WithoutTick()

	assert.Equal(t, "Initializing...", m.View())
}

func TestView_TasksAndLogs(t *testing.T) {
	m := newModel(t)
	m.Update(tui.MsgInitTasks{Tasks: []string{"sass", "js"}})

	start := time.Now()
	m.Update(tui.MsgTaskStart{SpanID: "s1", Name: "sass", StartTime: start})
	m.Update(tui.MsgTaskLog{SpanID: "s1", Data: []byte("Compiled main.scss\n")})
	m.Update(tui.MsgTaskComplete{SpanID: "s1", EndTime: start.Add(250 * time.Millisecond)})

	view := m.View()
	assert.Contains(t, view, "TASKS")
	assert.Contains(t, view, "✓ sass")
	assert.Contains(t, view, "250ms")
	assert.Contains(t, view, "○ js")
	assert.Contains(t, view, "LOGS: sass (following)")
	assert.Contains(t, view, "Compiled main.scss")
}

func TestView_FailureAndFooter(t *testing.T) {
	m := newModel(t)
	m.Update(tui.MsgInitTasks{Tasks: []string{"sass"}})

	start := time.Now()
	m.Update(tui.MsgTaskStart{SpanID: "s1", Name: "sass", StartTime: start})
	m.Update(tui.MsgTaskComplete{SpanID: "s1", EndTime: start.Add(time.Second), Err: zerr.New("exit status 65")})
	m.Update(tui.MsgRunComplete{RunID: "ab12cd34", Elapsed: 1500 * time.Millisecond, Err: zerr.New("build failed")})

	view := m.View()
	assert.Contains(t, view, "✗ sass")
	assert.Contains(t, view, "exit status 65")
	assert.Contains(t, view, "✗ run ab12cd34 failed after 1.5s")
	assert.Contains(t, view, "q quit")
}

func TestView_ManualMode(t *testing.T) {
	m := newModel(t)
	m.Update(tui.MsgInitTasks{Tasks: []string{"a", "b"}})
	press(m, "j")

	assert.Contains(t, m.View(), "LOGS: b (manual)")
}
