package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer wraps the bubbletea program as a ports.Renderer.
type Renderer struct {
	program *tea.Program
	model   *Model
	errCh   chan error
}

// NewRenderer creates a new TUI renderer.
func NewRenderer(model *Model, opts ...tea.ProgramOption) *Renderer {
	return &Renderer{
		program: tea.NewProgram(model, opts...),
		model:   model,
		errCh:   make(chan error, 1),
	}
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start(_ context.Context) error {
	go func() {
		_, err := r.program.Run()
		r.errCh <- err
	}()
	return nil
}

// Stop asks the program to quit.
func (r *Renderer) Stop() error {
	r.program.Quit()
	return nil
}

// Wait blocks until the program has terminated.
// A program ended by its context is not an error.
func (r *Renderer) Wait() error {
	err := <-r.errCh
	if err == nil || errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Done is closed once the user quits the program or it stops.
func (r *Renderer) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		r.program.Wait()
		close(done)
	}()
	return done
}

// OnPlanEmit forwards the plan to the program.
func (r *Renderer) OnPlanEmit(tasks []string, deps map[string][]string, targets []string) {
	r.program.Send(MsgInitTasks{Tasks: tasks, Dependencies: deps, Targets: targets})
}

// OnTaskStart forwards task start events to the program.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.program.Send(MsgTaskStart{SpanID: spanID, ParentID: parentID, Name: name, StartTime: startTime})
}

// OnTaskLog forwards task output to the program.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.program.Send(MsgTaskLog{SpanID: spanID, Data: data})
}

// OnTaskComplete forwards task completion events to the program.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.program.Send(MsgTaskComplete{SpanID: spanID, EndTime: endTime, Err: err})
}

// OnRunComplete forwards the run outcome to the program.
func (r *Renderer) OnRunComplete(runID string, elapsed time.Duration, err error) {
	r.program.Send(MsgRunComplete{RunID: runID, Elapsed: elapsed, Err: err})
}

// Model returns the model driven by the program.
func (r *Renderer) Model() *Model {
	return r.model
}
