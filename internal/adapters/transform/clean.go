package transform

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// CleanStep removes the output directory or a path inside it.
type CleanStep struct {
	root   string
	target string
}

// newCleanStep refuses targets outside the project root, the root itself and
// anything containing the source directory.
func newCleanStep(layout domain.Layout, path string) (ports.TransformStep, error) {
	target := filepath.Join(layout.Output, path)
	if filepath.IsAbs(path) {
		target = filepath.Clean(path)
	}

	if !within(layout.Root, target) || target == layout.Root || within(target, layout.Source) {
		err := zerr.With(zerr.Wrap(domain.ErrOutputPathOutsideRoot, "clean target"), "step", StepClean)
		return nil, zerr.With(err, "path", target)
	}
	return &CleanStep{root: layout.Root, target: target}, nil
}

// Name returns the step kind.
func (s *CleanStep) Name() string {
	return StepClean
}

// Apply removes the target. It produces no files.
func (s *CleanStep) Apply(_ context.Context, _ domain.FileSet, diag io.Writer) (domain.FileSet, error) {
	if err := os.RemoveAll(s.target); err != nil {
		return domain.FileSet{}, zerr.With(zerr.Wrap(domain.ErrCleanFailed, err.Error()), "path", s.target)
	}
	rel, err := filepath.Rel(s.root, s.target)
	if err != nil {
		rel = s.target
	}
	_, _ = fmt.Fprintf(diag, "removed %s\n", rel)
	return domain.FileSet{}, nil
}
