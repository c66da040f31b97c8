package scheduler

import (
	"errors"
	"slices"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// Classifier maps a changed path to its asset class.
type Classifier interface {
	Classify(path string) (domain.AssetClass, error)
}

// Planner resolves the tasks a trigger affects.
type Planner struct {
	graph      *domain.Graph
	classifier Classifier
}

// NewPlanner creates a planner over a validated graph.
func NewPlanner(graph *domain.Graph, classifier Classifier) *Planner {
	return &Planner{graph: graph, classifier: classifier}
}

// Affected returns the names of the tasks a trigger touches, in registration order.
//
// A full trigger selects every task. Named tasks are selected as given, plus
// their predecessors when WithDeps is set. A changed path selects the tasks of
// its asset class and everything that transitively depends on them, so editing
// a stylesheet never re-runs clean or the script tasks.
// Paths outside the source root are returned as warnings and otherwise ignored.
func (p *Planner) Affected(trigger domain.Trigger) ([]domain.InternedString, []error, error) {
	if trigger.Kind == domain.TriggerFull {
		return p.graph.Names(), nil, nil
	}

	if trigger.Kind == domain.TriggerTasks && len(trigger.Tasks) == 0 {
		return nil, nil, domain.ErrNoTasksRequested
	}

	selected := make(map[domain.InternedString]bool)
	for _, name := range trigger.Tasks {
		if _, ok := p.graph.GetTask(name); !ok {
			return nil, nil, zerr.With(zerr.Wrap(domain.ErrUnknownTask, "plan"), "task", name.String())
		}
		selected[name] = true
	}
	if trigger.WithDeps {
		for _, name := range p.graph.Predecessors(trigger.Tasks) {
			selected[name] = true
		}
	}

	var warnings []error
	var classes []domain.AssetClass
	for _, ev := range trigger.Events {
		class, err := p.classifier.Classify(ev.Path)
		if err != nil {
			if errors.Is(err, domain.ErrUnclassifiedPath) {
				warnings = append(warnings, err)
				continue
			}
			return nil, warnings, err
		}
		if !slices.Contains(classes, class) {
			classes = append(classes, class)
		}
	}

	var direct []domain.InternedString
	for _, class := range classes {
		direct = append(direct, p.graph.TasksForClass(class)...)
	}
	for _, name := range direct {
		selected[name] = true
	}
	for _, name := range p.graph.Successors(direct) {
		selected[name] = true
	}

	out := make([]domain.InternedString, 0, len(selected))
	for _, name := range p.graph.Names() {
		if selected[name] {
			out = append(out, name)
		}
	}
	return out, warnings, nil
}

// Plan moves run through Planning and, on success, into Executing with the resolved order.
// A planning failure aborts the run.
func (p *Planner) Plan(run *domain.BuildRun) ([]error, error) {
	if err := run.StartPlanning(); err != nil {
		return nil, err
	}

	names, warnings, err := p.Affected(run.Trigger)
	if err != nil {
		run.Abort(err)
		return warnings, err
	}

	order, err := p.graph.ResolveOrder(names)
	if err != nil {
		run.Abort(err)
		return warnings, err
	}

	if err := run.StartExecuting(order); err != nil {
		return warnings, err
	}
	return warnings, nil
}
