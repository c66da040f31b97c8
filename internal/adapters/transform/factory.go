// Package transform builds the transform steps named in forge.yaml.
package transform

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StepFactory = (*Factory)(nil)

// Built-in step kinds.
const (
	StepCopy       = "copy"
	StepClean      = "clean"
	StepCacheClear = "cache-clear"
	StepFilter     = "filter"
)

// builtinOptions lists the options each built-in step accepts.
var builtinOptions = map[string][]string{
	StepCopy:       {"to"},
	StepClean:      {"path"},
	StepCacheClear: {},
	StepFilter:     {"include"},
}

// Factory implements ports.StepFactory for built-in steps and external tools.
type Factory struct {
	executor ports.Executor
	store    ports.StepCache
	hasher   ports.Hasher
	resolver ports.InputResolver
}

// NewFactory creates a step factory.
func NewFactory(
	executor ports.Executor,
	store ports.StepCache,
	hasher ports.Hasher,
	resolver ports.InputResolver,
) *Factory {
	return &Factory{
		executor: executor,
		store:    store,
		hasher:   hasher,
		resolver: resolver,
	}
}

// NewStep builds the step described by sc.Spec.
func (f *Factory) NewStep(sc ports.StepContext) (ports.TransformStep, error) {
	spec := sc.Spec
	layout := sc.Project.Layout

	if allowed, ok := builtinOptions[spec.Uses]; ok {
		for key := range spec.With {
			if !slices.Contains(allowed, key) {
				err := zerr.With(zerr.Wrap(domain.ErrInvalidToolOption, "unknown option"), "step", spec.Uses)
				return nil, zerr.With(err, "option", key)
			}
		}
	}

	switch spec.Uses {
	case StepCopy:
		return newCopyStep(layout, f.hasher, spec.With["to"])
	case StepClean:
		return newCleanStep(layout, spec.With["path"])
	case StepCacheClear:
		return newCacheClearStep(layout.Root, f.store), nil
	case StepFilter:
		return newFilterStep(layout, spec.With["include"])
	}

	tool, ok := sc.Project.Tools[spec.Uses]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownStepKind, "build step"), "uses", spec.Uses)
	}
	return f.newToolStep(sc, tool)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
