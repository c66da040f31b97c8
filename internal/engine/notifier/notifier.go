// Package notifier turns finished build runs into live-reload updates.
package notifier

import (
	"context"
	"path/filepath"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// Notifier pushes reload updates for successful runs.
type Notifier struct {
	transport ports.ReloadTransport
	output    string
}

// New creates a notifier that reports output paths relative to output.
func New(transport ports.ReloadTransport, output string) *Notifier {
	return &Notifier{transport: transport, output: output}
}

// UpdateFor returns the update a run warrants and whether one is due.
// Failed runs and runs that touched no asset class produce nothing.
func (n *Notifier) UpdateFor(run *domain.BuildRun) (domain.ReloadUpdate, bool) {
	if run.Status() != domain.RunSucceeded {
		return domain.ReloadUpdate{}, false
	}

	classes := run.Classes()
	if len(classes) == 0 {
		return domain.ReloadUpdate{}, false
	}

	for _, class := range classes {
		if class != domain.AssetClassStylesheet {
			return domain.ReloadUpdate{Kind: domain.ReloadFull}, true
		}
	}

	return domain.ReloadUpdate{
		Kind:  domain.ReloadStyleInject,
		Paths: run.Outputs(domain.AssetClassStylesheet).Filter(isStylesheet).Rel(n.output),
	}, true
}

// Notify pushes the update for run, if any.
func (n *Notifier) Notify(ctx context.Context, run *domain.BuildRun) error {
	update, ok := n.UpdateFor(run)
	if !ok {
		return nil
	}
	if err := n.transport.PushUpdate(ctx, update); err != nil {
		return zerr.With(zerr.Wrap(err, "push reload"), "kind", update.Kind.String())
	}
	return nil
}

func isStylesheet(path string) bool {
	return filepath.Ext(path) == ".css"
}
