// Package scheduler plans and executes build runs over the task graph.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"time"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// DefaultStepTimeout bounds a single transform step when no timeout is configured.
const DefaultStepTimeout = 2 * time.Minute

// StepSource returns the transform steps of a task.
type StepSource interface {
	StepsForTask(task domain.Task) []ports.TransformStep
}

// Scheduler executes planned build runs.
// Runs share one pool of task slots, so concurrent runs never exceed the configured parallelism together.
type Scheduler struct {
	steps       StepSource
	resolver    ports.InputResolver
	tracer      ports.Tracer
	parallelism int
	stepTimeout time.Duration
	slots       *semaphore.Weighted
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithParallelism sets the maximum number of tasks executing at once.
// Values below one fall back to the number of CPUs.
func WithParallelism(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithStepTimeout sets the time budget of a single transform step.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.stepTimeout = d
		}
	}
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	steps StepSource,
	resolver ports.InputResolver,
	tracer ports.Tracer,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		steps:       steps,
		resolver:    resolver,
		tracer:      tracer,
		parallelism: runtime.NumCPU(),
		stepTimeout: DefaultStepTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.slots = semaphore.NewWeighted(int64(s.parallelism))
	return s
}

// Execute runs the tasks of a planned run and moves it to its terminal state.
// It returns the run error, which is nil when every task succeeded.
// A failing task skips its dependents; independent tasks keep running.
func (s *Scheduler) Execute(ctx context.Context, project *domain.Project, run *domain.BuildRun) error {
	if run.Status() != domain.RunExecuting {
		return zerr.With(zerr.Wrap(domain.ErrInvalidRunTransition, "execute"), "status", run.Status().String())
	}

	state := s.newRunState(ctx, project, run)
	s.emitPlan(ctx, run)

	state.runExecutionLoop()

	if _, err := run.Finish(); err != nil {
		return err
	}
	return run.Err()
}

func (s *Scheduler) emitPlan(ctx context.Context, run *domain.BuildRun) {
	order := run.Order()
	planned := make([]string, len(order))
	inRun := make(map[domain.InternedString]bool, len(order))
	for i, t := range order {
		planned[i] = t.Name.String()
		inRun[t.Name] = true
	}

	depMap := make(map[string][]string, len(order))
	for _, t := range order {
		var deps []string
		for _, dep := range t.Dependencies {
			if inRun[dep] {
				deps = append(deps, dep.String())
			}
		}
		depMap[t.Name.String()] = deps
	}

	targets := domain.Strings(run.Trigger.Tasks)
	if len(targets) == 0 {
		targets = planned
	}
	s.tracer.EmitPlan(ctx, planned, depMap, targets)
}

type result struct {
	task    domain.InternedString
	outputs domain.FileSet
	err     error
}

type runState struct {
	s         *Scheduler
	ctx       context.Context
	project   *domain.Project
	run       *domain.BuildRun
	tasks     map[domain.InternedString]domain.Task
	index     map[domain.InternedString]int
	inDegree  map[domain.InternedString]int
	ready     []domain.InternedString
	done      map[domain.InternedString]bool
	active    int
	resultsCh chan result
}

func (s *Scheduler) newRunState(ctx context.Context, project *domain.Project, run *domain.BuildRun) *runState {
	order := run.Order()
	state := &runState{
		s:         s,
		ctx:       ctx,
		project:   project,
		run:       run,
		tasks:     make(map[domain.InternedString]domain.Task, len(order)),
		index:     make(map[domain.InternedString]int, len(order)),
		inDegree:  make(map[domain.InternedString]int, len(order)),
		done:      make(map[domain.InternedString]bool, len(order)),
		resultsCh: make(chan result, len(order)),
	}

	for i, t := range order {
		state.tasks[t.Name] = t
		state.index[t.Name] = i
	}
	for _, t := range order {
		for _, dep := range t.Dependencies {
			if _, ok := state.tasks[dep]; ok {
				state.inDegree[t.Name]++
			}
		}
		if state.inDegree[t.Name] == 0 {
			state.ready = append(state.ready, t.Name)
		}
	}
	return state
}

func (state *runState) runExecutionLoop() {
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}
		if state.active == 0 && state.ctx.Err() != nil {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
			if state.active > 0 {
				state.handleResult(<-state.resultsCh)
			}
		}
	}

	// Whatever never started was cancelled or blocked by a failed predecessor.
	for name := range state.tasks {
		if !state.done[name] {
			cause := domain.ErrTaskSkipped
			if err := state.ctx.Err(); err != nil {
				cause = err
			}
			state.run.MarkSkipped(name, cause)
		}
	}
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

// schedule starts ready tasks in resolved order while task slots are free.
// With nothing in flight it blocks for a slot, since no result would wake the loop.
func (state *runState) schedule() {
	slices.SortFunc(state.ready, func(a, b domain.InternedString) int {
		return state.index[a] - state.index[b]
	})

	for len(state.ready) > 0 && state.ctx.Err() == nil {
		if state.active == 0 {
			if err := state.s.slots.Acquire(state.ctx, 1); err != nil {
				return
			}
		} else if !state.s.slots.TryAcquire(1) {
			return
		}

		name := state.ready[0]
		state.ready = state.ready[1:]
		state.active++
		state.run.MarkRunning(name)

		t := state.tasks[name]
		go state.executeTask(t)
	}
}

func (state *runState) executeTask(t domain.Task) {
	// The span must end before the result is sent so renderers see the
	// completion before the run finishes.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, t.Name.String(),
			ports.WithAttribute("forge.class", t.Class.String()),
			ports.WithAttribute("forge.run", state.run.ID),
		)
		defer span.End()

		outputs, err := state.s.runSteps(ctx, state.project, t, span)
		if err != nil {
			span.RecordError(err)
			return result{task: t.Name, err: err}
		}
		span.SetAttribute("forge.outputs", outputs.Len())
		return result{task: t.Name, outputs: outputs}
	}()

	state.resultsCh <- res
}

func (state *runState) handleResult(res result) {
	state.active--
	state.s.slots.Release(1)
	state.done[res.task] = true

	if res.err != nil {
		state.run.MarkFailed(res.task, res.err)
		state.skipDependents(res.task)
		return
	}

	state.run.MarkSucceeded(res.task, res.outputs)
	for _, dep := range state.project.Graph.Dependents(res.task) {
		if _, ok := state.tasks[dep]; !ok {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.ready = append(state.ready, dep)
		}
	}
}

// skipDependents marks every task of the run that transitively depends on failed as skipped.
func (state *runState) skipDependents(failed domain.InternedString) {
	for _, name := range state.project.Graph.Successors([]domain.InternedString{failed}) {
		if _, ok := state.tasks[name]; !ok || state.done[name] {
			continue
		}
		state.done[name] = true
		state.run.MarkSkipped(name, zerr.With(zerr.Wrap(domain.ErrTaskSkipped, "skip"), "failed", failed.String()))
	}
}

// runSteps resolves the task inputs and pipes them through the task's steps in order.
func (s *Scheduler) runSteps(
	ctx context.Context,
	project *domain.Project,
	t domain.Task,
	diag ports.Span,
) (domain.FileSet, error) {
	files, err := s.resolveInputs(project, t)
	if err != nil {
		return domain.FileSet{}, err
	}

	for _, step := range s.steps.StepsForTask(t) {
		files, err = s.applyStep(ctx, t, step, files, diag)
		if err != nil {
			return domain.FileSet{}, err
		}
	}
	return files, nil
}

func (s *Scheduler) resolveInputs(project *domain.Project, t domain.Task) (domain.FileSet, error) {
	if len(t.Inputs) == 0 {
		return domain.FileSet{}, nil
	}
	patterns := domain.Strings(t.Inputs)
	resolved, err := s.resolver.ResolveInputs(patterns, project.Layout.Source)
	if err != nil {
		return domain.FileSet{}, zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "task", t.Name.String())
	}
	return domain.NewFileSet(resolved...), nil
}

// applyStep runs one step under the step timeout.
// A step that outlives its deadline fails the task even if it ignores cancellation,
// but its task slot is held until it returns so its writes never overlap a later run.
func (s *Scheduler) applyStep(
	ctx context.Context,
	t domain.Task,
	step ports.TransformStep,
	in domain.FileSet,
	diag ports.Span,
) (domain.FileSet, error) {
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	out, err := step.Apply(stepCtx, in, diag)
	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		cause := err
		if cause == nil {
			cause = zerr.With(stepCtx.Err(), "timeout", s.stepTimeout.String())
		}
		return domain.FileSet{}, domain.NewTransformError(t.Name.String(), step.Name(), true, cause)
	}
	if err != nil {
		return domain.FileSet{}, domain.NewTransformError(t.Name.String(), step.Name(), false, err)
	}
	return out, nil
}
