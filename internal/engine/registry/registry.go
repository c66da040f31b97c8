// Package registry holds the transform pipelines of asset classes and tasks.
package registry

import (
	"slices"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry maps asset classes and tasks to ordered transform steps.
// It is built once at startup and read concurrently afterwards.
type Registry struct {
	pipelines map[domain.AssetClass][]ports.TransformStep
	tasks     map[domain.InternedString][]ports.TransformStep
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		pipelines: make(map[domain.AssetClass][]ports.TransformStep),
		tasks:     make(map[domain.InternedString][]ports.TransformStep),
	}
}

// Build creates every step declared by the project through factory.
// Unknown tools and invalid options surface as configuration errors before any task runs.
func Build(project *domain.Project, mode domain.Mode, factory ports.StepFactory) (*Registry, error) {
	r := New()

	for _, class := range domain.AssetClasses() {
		specs, ok := project.Pipelines[class]
		if !ok {
			continue
		}
		steps, err := newSteps(project, mode, factory, "", specs)
		if err != nil {
			return nil, zerr.With(err, "pipeline", class.String())
		}
		r.Register(class, steps...)
	}

	for _, name := range project.Graph.Names() {
		task, _ := project.Graph.GetTask(name)
		if len(task.Steps) == 0 {
			continue
		}
		steps, err := newSteps(project, mode, factory, name.String(), task.Steps)
		if err != nil {
			return nil, zerr.With(err, "task", name.String())
		}
		r.Bind(name, steps...)
	}

	return r, nil
}

func newSteps(
	project *domain.Project,
	mode domain.Mode,
	factory ports.StepFactory,
	task string,
	specs []domain.StepSpec,
) ([]ports.TransformStep, error) {
	steps := make([]ports.TransformStep, 0, len(specs))
	for _, spec := range specs {
		step, err := factory.NewStep(ports.StepContext{
			Project: project,
			Mode:    mode,
			Task:    task,
			Spec:    spec,
		})
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Register sets the pipeline of class.
func (r *Registry) Register(class domain.AssetClass, steps ...ports.TransformStep) {
	r.pipelines[class] = slices.Clone(steps)
}

// Bind sets task-local steps that take precedence over the class pipeline.
func (r *Registry) Bind(task domain.InternedString, steps ...ports.TransformStep) {
	r.tasks[task] = slices.Clone(steps)
}

// StepsFor returns the ordered pipeline of class. Unknown classes have an empty pipeline.
func (r *Registry) StepsFor(class domain.AssetClass) []ports.TransformStep {
	return slices.Clone(r.pipelines[class])
}

// StepsForTask returns the steps a task runs: its own steps if declared, otherwise its class pipeline.
func (r *Registry) StepsForTask(task domain.Task) []ports.TransformStep {
	if steps, ok := r.tasks[task.Name]; ok {
		return slices.Clone(steps)
	}
	return r.StepsFor(task.Class)
}
