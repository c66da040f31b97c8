package tui

import "time"

// MsgInitTasks resets the task list for a newly planned run.
type MsgInitTasks struct {
	Tasks        []string
	Dependencies map[string][]string
	Targets      []string
}

// MsgTaskStart indicates a task span has started.
type MsgTaskStart struct {
	SpanID    string
	ParentID  string
	Name      string
	StartTime time.Time
}

// MsgTaskLog carries a chunk of tool output for a task span.
type MsgTaskLog struct {
	SpanID string
	Data   []byte
}

// MsgTaskComplete indicates a task span has finished.
type MsgTaskComplete struct {
	SpanID  string
	EndTime time.Time
	Err     error
}

// MsgRunComplete indicates a build run reached its terminal state.
type MsgRunComplete struct {
	RunID   string
	Elapsed time.Duration
	Err     error
}

type msgTick time.Time
