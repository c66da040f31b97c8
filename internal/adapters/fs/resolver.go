package fs

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements the InputResolver interface using doublestar globs.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves the given input patterns to a sorted list of concrete file paths.
// A pattern naming a directory contributes every file below it. Patterns that
// match nothing contribute nothing.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	var result []string

	for _, input := range inputs {
		if !doublestar.ValidatePattern(filepath.ToSlash(input)) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "resolve inputs"), "pattern", input)
		}

		pattern := input
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, input)
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInputResolutionFailed.Error()), "pattern", input)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", match)
			}
			if !info.IsDir() {
				result = append(result, match)
				continue
			}
			for file := range r.walker.WalkFiles(match, nil) {
				result = append(result, file)
			}
		}
	}

	slices.Sort(result)
	return slices.Compact(result), nil
}
