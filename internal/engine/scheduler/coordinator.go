package scheduler

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/forge/internal/core/domain"
)

// RunHooks observe the runs started by a Coordinator.
type RunHooks struct {
	// OnWarning receives non-fatal planning problems such as unclassified paths.
	OnWarning func(err error)
	// OnComplete is called once per run after it reached a terminal state.
	OnComplete func(ctx context.Context, run *domain.BuildRun)
}

// Coordinator serialises runs that touch the same tasks.
//
// A trigger whose tasks overlap a run in flight is queued. When a run ends, all
// queued triggers are merged and started as a single follow-up run. Triggers
// that touch only idle tasks start immediately.
type Coordinator struct {
	planner   *Planner
	scheduler *Scheduler
	project   *domain.Project
	hooks     RunHooks

	mu       sync.Mutex
	inflight map[domain.InternedString]int
	queued   *domain.Trigger
	wg       sync.WaitGroup
}

// NewCoordinator creates a coordinator for one project.
func NewCoordinator(planner *Planner, scheduler *Scheduler, project *domain.Project, hooks RunHooks) *Coordinator {
	return &Coordinator{
		planner:   planner,
		scheduler: scheduler,
		project:   project,
		hooks:     hooks,
		inflight:  make(map[domain.InternedString]int),
	}
}

// Submit starts a run for trigger or queues it behind the runs it overlaps.
// It reports whether a run was started right away.
// Nothing is started or queued once ctx is done.
func (c *Coordinator) Submit(ctx context.Context, trigger domain.Trigger) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}

	names, warnings, err := c.planner.Affected(trigger)
	c.warn(warnings)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.queued != nil || c.overlapsLocked(names) {
		c.queued = mergeTriggers(c.queued, trigger)
		return false, nil
	}
	c.startLocked(ctx, trigger)
	return true, nil
}

// Wait blocks until no run is in flight and nothing is queued.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) overlapsLocked(names []domain.InternedString) bool {
	for _, name := range names {
		if c.inflight[name] > 0 {
			return true
		}
	}
	return false
}

// startLocked plans trigger and launches its execution. Must be called with mu held.
// Planning warnings were already reported when the trigger was submitted.
func (c *Coordinator) startLocked(ctx context.Context, trigger domain.Trigger) {
	run := domain.NewBuildRun(trigger)
	_, err := c.planner.Plan(run)

	c.wg.Add(1)
	if err != nil {
		go c.finish(ctx, run, nil)
		return
	}

	names := run.TaskNames()
	for _, name := range names {
		c.inflight[name]++
	}

	go func() {
		_ = c.scheduler.Execute(ctx, c.project, run)
		c.finish(ctx, run, names)
	}()
}

func (c *Coordinator) finish(ctx context.Context, run *domain.BuildRun, names []domain.InternedString) {
	defer c.wg.Done()

	c.mu.Lock()
	for _, name := range names {
		c.inflight[name]--
		if c.inflight[name] == 0 {
			delete(c.inflight, name)
		}
	}
	c.mu.Unlock()

	if c.hooks.OnComplete != nil {
		c.hooks.OnComplete(ctx, run)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queued == nil || ctx.Err() != nil {
		return
	}
	next := *c.queued
	nextNames, _, err := c.planner.Affected(next)
	if err == nil && c.overlapsLocked(nextNames) {
		return
	}
	c.queued = nil
	c.startLocked(ctx, next)
}

func (c *Coordinator) warn(warnings []error) {
	if c.hooks.OnWarning == nil {
		return
	}
	for _, w := range warnings {
		c.hooks.OnWarning(w)
	}
}

// mergeTriggers folds next into queued. Events on the same path keep only the latest.
func mergeTriggers(queued *domain.Trigger, next domain.Trigger) *domain.Trigger {
	if queued == nil {
		merged := next
		merged.Tasks = slices.Clone(next.Tasks)
		merged.Events = slices.Clone(next.Events)
		return &merged
	}

	if next.Kind == domain.TriggerFull {
		queued.Kind = domain.TriggerFull
	}
	queued.WithDeps = queued.WithDeps || next.WithDeps

	for _, name := range next.Tasks {
		if !slices.Contains(queued.Tasks, name) {
			queued.Tasks = append(queued.Tasks, name)
		}
	}
	for _, ev := range next.Events {
		idx := slices.IndexFunc(queued.Events, func(e domain.ChangeEvent) bool { return e.Path == ev.Path })
		if idx >= 0 {
			queued.Events[idx] = ev
			continue
		}
		queued.Events = append(queued.Events, ev)
	}
	return queued
}
