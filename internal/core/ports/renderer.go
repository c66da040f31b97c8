package ports

import (
	"context"
	"time"
)

// Renderer presents build progress.
// The same event stream drives either the interactive task list or line-oriented logs.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer and begins its lifecycle.
	// Asynchronous renderers may launch background goroutines.
	Start(ctx context.Context) error

	// Stop stops accepting events and flushes buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called once a run has been planned.
	// tasks are in execution order, deps maps each task to its predecessors
	// and targets are the tasks that triggered the run.
	OnPlanEmit(tasks []string, deps map[string][]string, targets []string)

	// OnTaskStart is called when a task begins execution.
	// parentID is empty for top-level spans.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called with raw tool output, possibly partial lines.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a task finishes. err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// OnRunComplete is called when a build run reaches a terminal state.
	OnRunComplete(runID string, elapsed time.Duration, err error)
}
