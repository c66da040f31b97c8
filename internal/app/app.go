// Package app implements the application layer for forge.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/forge/internal/adapters/detector"  //nolint:depguard // renderers are chosen in the app layer
	"go.trai.ch/forge/internal/adapters/linear"    //nolint:depguard // renderers are chosen in the app layer
	"go.trai.ch/forge/internal/adapters/telemetry" //nolint:depguard // tracing is wired in the app layer
	"go.trai.ch/forge/internal/adapters/tui"       //nolint:depguard // renderers are chosen in the app layer
	"go.trai.ch/forge/internal/adapters/watcher"   //nolint:depguard // debouncing is wired in the app layer
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/engine/classifier"
	"go.trai.ch/forge/internal/engine/notifier"
	"go.trai.ch/forge/internal/engine/registry"
	"go.trai.ch/forge/internal/engine/scheduler"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long buffered task output may take to drain.
const shutdownTimeout = 5 * time.Second

// ChangeSource turns debounced paths into change events.
type ChangeSource interface {
	// Prime records the current content of files without reporting them.
	Prime(files []string)
	// Changes returns one event per path whose content changed.
	Changes(paths []string, now time.Time) []domain.ChangeEvent
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	settings     ports.SettingsLoader
	factory      ports.StepFactory
	resolver     ports.InputResolver
	watcher      ports.Watcher
	changes      ChangeSource
	server       ports.DevServer
	logger       ports.Logger

	stdout      io.Writer
	stderr      io.Writer
	teaOptions  []tea.ProgramOption
	disableTick bool
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	settings ports.SettingsLoader,
	factory ports.StepFactory,
	resolver ports.InputResolver,
	watcher ports.Watcher,
	changes ChangeSource,
	server ports.DevServer,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		settings:     settings,
		factory:      factory,
		resolver:     resolver,
		watcher:      watcher,
		changes:      changes,
		server:       server,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects renderer output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithDisableTick disables the TUI tick loop.
func (a *App) WithDisableTick() *App {
	a.disableTick = true
	return a
}

// RunOptions configure a command invocation. Zero values leave settings untouched.
type RunOptions struct {
	// Config is the project directory or its forge.yaml.
	Config      string
	Mode        string
	Concurrency int
	OutputMode  string
	CI          bool
	// WithDeps adds the predecessors of named tasks.
	WithDeps bool
	NoServe  bool
	Addr     string
}

func (o RunOptions) overrides() map[string]any {
	overrides := make(map[string]any)
	if o.Mode != "" {
		overrides["mode"] = o.Mode
	}
	if o.Concurrency > 0 {
		overrides["concurrency"] = o.Concurrency
	}
	if o.OutputMode != "" {
		overrides["outputMode"] = o.OutputMode
	}
	if o.NoServe {
		overrides["serve.enabled"] = false
	}
	if o.Addr != "" {
		overrides["serve.addr"] = o.Addr
	}
	return overrides
}

// configDir returns the directory the project file is searched from.
func configDir(config string) string {
	if config == "" {
		return "."
	}
	if filepath.Base(config) == domain.ForgeFileName {
		return filepath.Dir(config)
	}
	return config
}

// TaskInfo describes a task for listing.
type TaskInfo struct {
	Name         string
	Class        domain.AssetClass
	Dependencies []string
}

// TaskNames returns the task names in registration order.
func (a *App) TaskNames(opts RunOptions) ([]string, error) {
	project, err := a.configLoader.Load(configDir(opts.Config))
	if err != nil {
		return nil, err
	}
	return domain.Strings(project.Graph.Names()), nil
}

// ListTasks returns every task in resolved execution order.
func (a *App) ListTasks(opts RunOptions) ([]TaskInfo, error) {
	project, err := a.configLoader.Load(configDir(opts.Config))
	if err != nil {
		return nil, err
	}
	order, err := project.Graph.ResolveOrder(project.Graph.Names())
	if err != nil {
		return nil, err
	}

	tasks := make([]TaskInfo, len(order))
	for i, t := range order {
		tasks[i] = TaskInfo{
			Name:         t.Name.String(),
			Class:        t.Class,
			Dependencies: domain.Strings(t.Dependencies),
		}
	}
	return tasks, nil
}

// Build runs every task once.
func (a *App) Build(ctx context.Context, opts RunOptions) error {
	return a.runOnce(ctx, domain.Trigger{Kind: domain.TriggerFull}, opts)
}

// RunTasks runs the named tasks once, with their predecessors when opts.WithDeps is set.
func (a *App) RunTasks(ctx context.Context, names []string, opts RunOptions) error {
	if len(names) == 0 {
		return domain.ErrNoTasksRequested
	}
	trigger := domain.Trigger{
		Kind:     domain.TriggerTasks,
		Tasks:    domain.NewInternedStrings(names),
		WithDeps: opts.WithDeps,
	}
	return a.runOnce(ctx, trigger, opts)
}

// session is a loaded project ready to run.
type session struct {
	project  *domain.Project
	settings domain.Settings
	planner  *scheduler.Planner
	steps    *registry.Registry
}

func (a *App) load(opts RunOptions) (*session, error) {
	project, err := a.configLoader.Load(configDir(opts.Config))
	if err != nil {
		return nil, err
	}

	settings, err := a.settings.Load(project.Layout.Root, opts.overrides())
	if err != nil {
		return nil, err
	}
	if switcher, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		switcher.SetJSON(settings.LogFormat == "json")
	}

	classes, err := classifier.New(project.Layout.Source, project.Classes)
	if err != nil {
		return nil, err
	}

	steps, err := registry.Build(project, settings.Mode, a.factory)
	if err != nil {
		return nil, err
	}

	return &session{
		project:  project,
		settings: settings,
		planner:  scheduler.NewPlanner(project.Graph, classes),
		steps:    steps,
	}, nil
}

// pipeline is the renderer and tracing stack of one command invocation.
type pipeline struct {
	renderer    ports.Renderer
	interactive bool
	provider    *sdktrace.TracerProvider
	tracer      *telemetry.OTelTracer
	scheduler   *scheduler.Scheduler
}

func (a *App) newPipeline(ctx context.Context, s *session, opts RunOptions) *pipeline {
	mode := detector.ResolveMode(detector.DetectEnvironment(), s.settings.OutputMode, opts.CI)

	var renderer ports.Renderer
	if mode == detector.ModeTUI {
		model := tui.NewModel(a.stderr)
		if a.disableTick {
			model = model.WithoutTick()
		}
		teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(a.stderr)}, a.teaOptions...)
		renderer = tui.NewRenderer(&model, teaOpts...)
	} else {
		renderer = linear.NewRenderer(a.stdout, a.stderr)
	}

	provider := telemetry.NewProvider(renderer)
	tracer := telemetry.NewOTelTracer(provider).WithRenderer(renderer)

	return &pipeline{
		renderer:    renderer,
		interactive: mode == detector.ModeTUI,
		provider:    provider,
		tracer:      tracer,
		scheduler: scheduler.NewScheduler(s.steps, a.resolver, tracer,
			scheduler.WithParallelism(s.settings.Concurrency),
			scheduler.WithStepTimeout(s.settings.StepTimeout),
		),
	}
}

// shutdown drains buffered task output and releases the tracer provider.
func (p *pipeline) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	_ = p.tracer.Shutdown(ctx)
	_ = p.provider.Shutdown(ctx)
}

// runOnce plans and executes a single run. Planning errors are returned before
// the renderer starts.
func (a *App) runOnce(ctx context.Context, trigger domain.Trigger, opts RunOptions) error {
	s, err := a.load(opts)
	if err != nil {
		return err
	}

	run := domain.NewBuildRun(trigger)
	warnings, err := s.planner.Plan(run)
	a.warn(warnings)
	if err != nil {
		return err
	}

	p := a.newPipeline(ctx, s, opts)
	defer p.shutdown(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := p.renderer.Start(ctx); err != nil {
			return err
		}
		return p.renderer.Wait()
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = zerr.With(zerr.New("scheduler panic"), "panic", fmt.Sprint(r))
			}
			_ = p.renderer.Stop()
		}()

		runErr := p.scheduler.Execute(ctx, s.project, run)
		p.renderer.OnRunComplete(run.ID, run.Duration(), runErr)
		return runErr
	})

	return g.Wait()
}

// Watch builds once, then rebuilds affected tasks on every content change until
// ctx is cancelled. Failed runs are logged and watching continues.
//
//nolint:cyclop,funlen // orchestration function
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	s, err := a.load(opts)
	if err != nil {
		return err
	}
	layout := s.project.Layout

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := a.newPipeline(ctx, s, opts)
	defer p.shutdown(ctx)

	sources, err := a.resolver.ResolveInputs([]string{"**"}, layout.Source)
	if err != nil {
		return err
	}
	a.changes.Prime(sources)

	var reload *notifier.Notifier
	if s.settings.Serve {
		reload = notifier.New(a.server, layout.Output)
	}

	coordinator := scheduler.NewCoordinator(s.planner, p.scheduler, s.project, scheduler.RunHooks{
		OnWarning: func(err error) {
			if !p.interactive {
				a.logger.Warn(err.Error())
			}
		},
		OnComplete: func(ctx context.Context, run *domain.BuildRun) {
			p.renderer.OnRunComplete(run.ID, run.Duration(), run.Err())
			if run.Err() != nil {
				if !p.interactive {
					a.logger.Error(run.Err())
				}
				return
			}
			if reload == nil {
				return
			}
			if err := reload.Notify(ctx, run); err != nil {
				a.logger.Error(err)
			}
		},
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if p.interactive {
			// Quitting the interface ends the session.
			defer cancel()
		}
		if err := p.renderer.Start(gctx); err != nil {
			return err
		}
		return p.renderer.Wait()
	})

	if s.settings.Serve {
		g.Go(func() error {
			return a.server.Serve(gctx, s.settings.ServeAddr, layout.Output)
		})
	}

	if err := a.watcher.Start(gctx, layout.Root, layout.Output, layout.StateDir()); err != nil {
		cancel()
		_ = g.Wait()
		return err
	}

	g.Go(func() error {
		defer func() {
			coordinator.Wait()
			_ = p.renderer.Stop()
		}()

		debouncer := watcher.NewDebouncer(s.settings.Debounce, func(paths []string) {
			events := a.changes.Changes(paths, time.Now())
			if len(events) == 0 {
				return
			}
			trigger := domain.Trigger{Kind: domain.TriggerChange, Events: events}
			if _, err := coordinator.Submit(gctx, trigger); err != nil && !p.interactive {
				a.logger.Error(err)
			}
		})
		defer debouncer.Stop()

		if _, err := coordinator.Submit(gctx, domain.Trigger{Kind: domain.TriggerFull}); err != nil {
			return err
		}

		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
		return nil
	})

	err = g.Wait()
	_ = a.watcher.Stop()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *App) warn(warnings []error) {
	for _, w := range warnings {
		a.logger.Warn(w.Error())
	}
}
