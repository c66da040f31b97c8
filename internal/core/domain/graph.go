// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents a dependency graph of tasks.
// Tasks are registered once at startup; the graph is read-only afterwards.
type Graph struct {
	root           string
	tasks          map[InternedString]Task
	registered     []InternedString
	index          map[InternedString]int
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks:      make(map[InternedString]Task),
		index:      make(map[InternedString]int),
		dependents: make(map[InternedString][]InternedString),
	}
}

// SetRoot sets the project root directory the graph was loaded from.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the project root directory.
func (g *Graph) Root() string {
	return g.root
}

// AddTask registers a task with its predecessors.
// Predecessors may name tasks registered later, but a registration that closes
// a cycle through already registered tasks is rejected with ErrCycleDetected.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(zerr.Wrap(ErrTaskAlreadyExists, "register task"), "task_name", t.Name.String())
	}
	if path := g.findCycle(t); path != nil {
		return g.buildCycleError(path)
	}

	g.tasks[t.Name] = *t
	g.index[t.Name] = len(g.registered)
	g.registered = append(g.registered, t.Name)
	for _, dep := range t.Dependencies {
		g.dependents[dep] = append(g.dependents[dep], t.Name)
	}
	g.executionOrder = nil
	return nil
}

// findCycle reports the dependency path leading from t back to itself, if any.
func (g *Graph) findCycle(t *Task) []InternedString {
	visited := make(map[InternedString]bool)
	var path []InternedString

	var visit func(u InternedString) bool
	visit = func(u InternedString) bool {
		path = append(path, u)
		if u == t.Name {
			return true
		}
		if visited[u] {
			path = path[:len(path)-1]
			return false
		}
		visited[u] = true
		if task, ok := g.tasks[u]; ok {
			for _, dep := range task.Dependencies {
				if visit(dep) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		return false
	}

	for _, dep := range t.Dependencies {
		path = []InternedString{t.Name}
		if visit(dep) {
			return path
		}
	}
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString) error {
	parts := make([]string, len(path))
	for i, node := range path {
		parts[i] = node.String()
	}
	return zerr.With(zerr.Wrap(ErrCycleDetected, "register task"), "cycle", strings.Join(parts, " -> "))
}

// Validate checks that every predecessor is registered and computes the full execution order.
func (g *Graph) Validate() error {
	for _, name := range g.registered {
		for _, dep := range g.tasks[name].Dependencies {
			if _, ok := g.tasks[dep]; !ok {
				err := zerr.With(zerr.Wrap(ErrMissingDependency, "validate graph"), "dependency", dep.String())
				return zerr.With(err, "task", name.String())
			}
		}
	}

	order, err := g.sort(g.registered)
	if err != nil {
		return err
	}
	g.executionOrder = order
	return nil
}

// ResolveOrder returns exactly the requested tasks in dependency order.
// Only edges between requested tasks are considered. Ties are broken by registration order.
func (g *Graph) ResolveOrder(requested []InternedString) ([]Task, error) {
	subset := make([]InternedString, 0, len(requested))
	seen := make(map[InternedString]bool, len(requested))
	for _, name := range requested {
		if _, ok := g.tasks[name]; !ok {
			return nil, zerr.With(zerr.Wrap(ErrUnknownTask, "resolve order"), "task", name.String())
		}
		if !seen[name] {
			seen[name] = true
			subset = append(subset, name)
		}
	}

	order, err := g.sort(subset)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, len(order))
	for i, name := range order {
		tasks[i] = g.tasks[name]
	}
	return tasks, nil
}

// sort is Kahn's algorithm over the given subset, always releasing the
// earliest registered ready task first.
func (g *Graph) sort(subset []InternedString) ([]InternedString, error) {
	inSubset := make(map[InternedString]bool, len(subset))
	for _, name := range subset {
		inSubset[name] = true
	}

	inDegree := make(map[InternedString]int, len(subset))
	for _, name := range subset {
		for _, dep := range g.tasks[name].Dependencies {
			if inSubset[dep] {
				inDegree[name]++
			}
		}
	}

	ready := make([]InternedString, 0, len(subset))
	for _, name := range subset {
		if inDegree[name] == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]InternedString, 0, len(subset))
	for len(ready) > 0 {
		slices.SortFunc(ready, func(a, b InternedString) int {
			return g.index[a] - g.index[b]
		})
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, dependent := range g.dependents[next] {
			if !inSubset[dependent] {
				continue
			}
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(subset) {
		var stuck []string
		for _, name := range subset {
			if inDegree[name] > 0 {
				stuck = append(stuck, name.String())
			}
		}
		return nil, zerr.With(zerr.Wrap(ErrCycleDetected, "sort tasks"), "cycle", strings.Join(stuck, ", "))
	}
	return order, nil
}

// Walk returns an iterator that yields tasks in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of registered tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Names returns the task names in registration order.
func (g *Graph) Names() []InternedString {
	return slices.Clone(g.registered)
}

// Dependents returns the tasks that directly depend on name, in registration order.
func (g *Graph) Dependents(name InternedString) []InternedString {
	deps := slices.Clone(g.dependents[name])
	slices.SortFunc(deps, func(a, b InternedString) int {
		return g.index[a] - g.index[b]
	})
	return deps
}

// Successors returns every task that transitively depends on one of names.
// The given names themselves are not included unless another given name depends on them.
func (g *Graph) Successors(names []InternedString) []InternedString {
	return g.closure(names, func(n InternedString) []InternedString {
		return g.dependents[n]
	})
}

// Predecessors returns every task one of names transitively depends on.
func (g *Graph) Predecessors(names []InternedString) []InternedString {
	return g.closure(names, func(n InternedString) []InternedString {
		return g.tasks[n].Dependencies
	})
}

func (g *Graph) closure(start []InternedString, next func(InternedString) []InternedString) []InternedString {
	found := make(map[InternedString]bool)
	queue := slices.Clone(start)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, m := range next(n) {
			if _, ok := g.tasks[m]; !ok || found[m] {
				continue
			}
			found[m] = true
			queue = append(queue, m)
		}
	}

	out := make([]InternedString, 0, len(found))
	for _, name := range g.registered {
		if found[name] {
			out = append(out, name)
		}
	}
	return out
}

// TasksForClass returns the tasks bound to class, in registration order.
func (g *Graph) TasksForClass(class AssetClass) []InternedString {
	var out []InternedString
	for _, name := range g.registered {
		if g.tasks[name].Class == class && class != AssetClassNone {
			out = append(out, name)
		}
	}
	return out
}
