package transform

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// FilterStep narrows its input to the files matching at least one include pattern.
// Patterns are matched against paths relative to the source root or, for
// files produced by earlier steps, the output root.
type FilterStep struct {
	include []string
	bases   []string
}

func newFilterStep(layout domain.Layout, include string) (ports.TransformStep, error) {
	var patterns []string
	for _, p := range strings.Split(include, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, filepath.ToSlash(p))
		}
	}
	if len(patterns) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidToolOption, "filter needs an include pattern"), "step", StepFilter)
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "filter include"), "pattern", p)
		}
	}
	return &FilterStep{include: patterns, bases: []string{layout.Source, layout.Output}}, nil
}

// Name returns the step kind.
func (s *FilterStep) Name() string {
	return StepFilter
}

// Apply returns the matching subset of in.
func (s *FilterStep) Apply(_ context.Context, in domain.FileSet, _ io.Writer) (domain.FileSet, error) {
	return in.Filter(s.matches), nil
}

func (s *FilterStep) matches(path string) bool {
	for _, base := range s.bases {
		if !within(base, path) {
			continue
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		for _, p := range s.include {
			if ok, _ := doublestar.Match(p, rel); ok {
				return true
			}
		}
	}
	return false
}
