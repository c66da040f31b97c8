package transform

import (
	"context"
	"fmt"
	"io"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

// CacheClearStep drops every step cache record of the project.
type CacheClearStep struct {
	root  string
	store ports.StepCache
}

func newCacheClearStep(root string, store ports.StepCache) *CacheClearStep {
	return &CacheClearStep{root: root, store: store}
}

// Name returns the step kind.
func (s *CacheClearStep) Name() string {
	return StepCacheClear
}

// Apply clears the cache and passes its input through.
func (s *CacheClearStep) Apply(_ context.Context, in domain.FileSet, diag io.Writer) (domain.FileSet, error) {
	if err := s.store.Clear(s.root); err != nil {
		return domain.FileSet{}, err
	}
	_, _ = fmt.Fprintln(diag, "step cache cleared")
	return in, nil
}
