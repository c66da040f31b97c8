package domain

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/zerr"
)

// RunStatus is the lifecycle state of a BuildRun.
type RunStatus uint8

const (
	// RunIdle is a run that has not been planned yet.
	RunIdle RunStatus = iota
	// RunPlanning is a run whose task set is being resolved.
	RunPlanning
	// RunExecuting is a run whose tasks are being executed.
	RunExecuting
	// RunSucceeded is a run whose tasks all succeeded.
	RunSucceeded
	// RunFailed is a run that failed to plan or had at least one task fail.
	RunFailed
)

func (s RunStatus) String() string {
	switch s {
	case RunIdle:
		return "idle"
	case RunPlanning:
		return "planning"
	case RunExecuting:
		return "executing"
	case RunSucceeded:
		return "succeeded"
	case RunFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the run has finished.
func (s RunStatus) Terminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// TaskStatus is the state of one task inside a BuildRun.
type TaskStatus uint8

const (
	// TaskPending is a task waiting for its predecessors or a free slot.
	TaskPending TaskStatus = iota
	// TaskRunning is a task whose steps are executing.
	TaskRunning
	// TaskSucceeded is a task whose steps all succeeded.
	TaskSucceeded
	// TaskFailed is a task with a failed step.
	TaskFailed
	// TaskSkipped is a task that never ran because a predecessor failed or the run was cancelled.
	TaskSkipped
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	case TaskSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// TriggerKind identifies what started a BuildRun.
type TriggerKind uint8

const (
	// TriggerFull runs every task of the graph.
	TriggerFull TriggerKind = iota
	// TriggerTasks runs explicitly named tasks.
	TriggerTasks
	// TriggerChange runs the tasks affected by filesystem changes.
	TriggerChange
)

// Trigger describes the request a BuildRun serves.
type Trigger struct {
	Kind   TriggerKind
	Tasks  []InternedString
	Events []ChangeEvent
	// WithDeps adds the predecessor closure of Tasks.
	WithDeps bool
}

// TaskRecord is the outcome of a task within a BuildRun.
type TaskRecord struct {
	Name     InternedString
	Class    AssetClass
	Status   TaskStatus
	Outputs  FileSet
	Err      error
	Started  time.Time
	Finished time.Time
}

// BuildRun is one execution of a resolved subset of the task graph.
// It is safe for concurrent use.
type BuildRun struct {
	ID      string
	Trigger Trigger

	mu       sync.RWMutex
	status   RunStatus
	order    []Task
	records  map[InternedString]*TaskRecord
	err      error
	started  time.Time
	finished time.Time
}

// NewBuildRun creates an idle run for trigger.
func NewBuildRun(trigger Trigger) *BuildRun {
	return &BuildRun{
		ID:      uuid.New().String()[:8],
		Trigger: trigger,
		records: make(map[InternedString]*TaskRecord),
	}
}

// Status returns the current run status.
func (r *BuildRun) Status() RunStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// StartPlanning moves an idle run to Planning.
func (r *BuildRun) StartPlanning() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != RunIdle {
		return r.transitionError(RunPlanning)
	}
	r.status = RunPlanning
	r.started = time.Now()
	return nil
}

// StartExecuting records the resolved order and moves a planning run to Executing.
func (r *BuildRun) StartExecuting(order []Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != RunPlanning {
		return r.transitionError(RunExecuting)
	}
	r.order = slices.Clone(order)
	for _, t := range order {
		r.records[t.Name] = &TaskRecord{Name: t.Name, Class: t.Class, Status: TaskPending}
	}
	r.status = RunExecuting
	return nil
}

// Abort fails a run that could not be planned.
func (r *BuildRun) Abort(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = RunFailed
	r.err = err
	r.finished = time.Now()
}

// Finish moves an executing run to its terminal state.
// The run succeeds only when every task succeeded.
func (r *BuildRun) Finish() (RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != RunExecuting {
		return r.status, r.transitionError(RunSucceeded)
	}
	r.status = RunSucceeded
	var errs []error
	for _, t := range r.order {
		rec := r.records[t.Name]
		switch rec.Status {
		case TaskSucceeded:
		case TaskFailed:
			r.status = RunFailed
			errs = append(errs, rec.Err)
		default:
			r.status = RunFailed
		}
	}
	if r.status == RunFailed {
		r.err = errors.Join(append([]error{ErrBuildFailed}, errs...)...)
	}
	r.finished = time.Now()
	return r.status, nil
}

func (r *BuildRun) transitionError(to RunStatus) error {
	err := zerr.With(zerr.Wrap(ErrInvalidRunTransition, "build run "+r.ID), "from", r.status.String())
	return zerr.With(err, "to", to.String())
}

// MarkRunning records that a task started.
func (r *BuildRun) MarkRunning(name InternedString) {
	r.update(name, func(rec *TaskRecord) {
		rec.Status = TaskRunning
		rec.Started = time.Now()
	})
}

// MarkSucceeded records that a task finished and what it produced.
func (r *BuildRun) MarkSucceeded(name InternedString, outputs FileSet) {
	r.update(name, func(rec *TaskRecord) {
		rec.Status = TaskSucceeded
		rec.Outputs = outputs
		rec.Finished = time.Now()
	})
}

// MarkFailed records that a task failed.
func (r *BuildRun) MarkFailed(name InternedString, err error) {
	r.update(name, func(rec *TaskRecord) {
		rec.Status = TaskFailed
		rec.Err = err
		rec.Finished = time.Now()
	})
}

// MarkSkipped records that a task never ran.
func (r *BuildRun) MarkSkipped(name InternedString, cause error) {
	r.update(name, func(rec *TaskRecord) {
		rec.Status = TaskSkipped
		rec.Err = cause
	})
}

func (r *BuildRun) update(name InternedString, fn func(*TaskRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[name]; ok {
		fn(rec)
	}
}

// Order returns the resolved execution order.
func (r *BuildRun) Order() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// TaskNames returns the names of the planned tasks in execution order.
func (r *BuildRun) TaskNames() []InternedString {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]InternedString, len(r.order))
	for i, t := range r.order {
		names[i] = t.Name
	}
	return names
}

// Record returns a copy of the record of a task.
func (r *BuildRun) Record(name InternedString) (TaskRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	if !ok {
		return TaskRecord{}, false
	}
	return *rec, true
}

// Records returns copies of all task records in execution order.
func (r *BuildRun) Records() []TaskRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TaskRecord, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, *r.records[t.Name])
	}
	return out
}

// Failures returns the records of failed tasks in execution order.
func (r *BuildRun) Failures() []TaskRecord {
	var out []TaskRecord
	for _, rec := range r.Records() {
		if rec.Status == TaskFailed {
			out = append(out, rec)
		}
	}
	return out
}

// Classes returns the distinct asset classes of tasks that succeeded, in execution order.
func (r *BuildRun) Classes() []AssetClass {
	var out []AssetClass
	for _, rec := range r.Records() {
		if rec.Status != TaskSucceeded || rec.Class == AssetClassNone {
			continue
		}
		if !slices.Contains(out, rec.Class) {
			out = append(out, rec.Class)
		}
	}
	return out
}

// Outputs returns the union of the outputs of succeeded tasks of class.
func (r *BuildRun) Outputs(class AssetClass) FileSet {
	var out FileSet
	for _, rec := range r.Records() {
		if rec.Status == TaskSucceeded && rec.Class == class {
			out = out.Union(rec.Outputs)
		}
	}
	return out
}

// Err returns the error that failed the run, or nil.
func (r *BuildRun) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Duration returns how long the run took, or has taken so far.
func (r *BuildRun) Duration() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.started.IsZero() {
		return 0
	}
	if r.finished.IsZero() {
		return time.Since(r.started)
	}
	return r.finished.Sub(r.started)
}
