package ports

import (
	"context"
	"io"

	"go.trai.ch/forge/internal/core/domain"
)

//go:generate mockgen -source=transform.go -destination=mocks/mock_transform.go -package=mocks

// TransformStep turns an input FileSet into an output FileSet.
type TransformStep interface {
	// Name identifies the step in logs and errors.
	Name() string
	// Apply runs the step. Tool output is written to diag.
	Apply(ctx context.Context, in domain.FileSet, diag io.Writer) (domain.FileSet, error)
}

// StepContext is everything a StepFactory needs to build one step.
type StepContext struct {
	Project *domain.Project
	Mode    domain.Mode
	Task    string
	Spec    domain.StepSpec
}

// StepFactory builds transform steps from their project file definition.
// Invalid definitions are reported as configuration errors.
type StepFactory interface {
	NewStep(sc StepContext) (TransformStep, error)
}
