package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrUnknownTask is returned when a requested task is not defined in the graph.
	ErrUnknownTask = zerr.New("unknown task")

	// ErrNoTasksRequested is returned when an explicit run names no tasks.
	ErrNoTasksRequested = zerr.New("no tasks requested")

	// ErrReservedTaskName is returned when a task uses a name taken by a built-in command.
	ErrReservedTaskName = zerr.New("task name is reserved")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrUnknownAssetClass is returned when a configuration names an asset class that does not exist.
	ErrUnknownAssetClass = zerr.New("unknown asset class")

	// ErrUnknownStepKind is returned when a step references neither a built-in step nor a defined tool.
	ErrUnknownStepKind = zerr.New("unknown step")

	// ErrInvalidToolOption is returned when a step passes an option its tool does not accept.
	ErrInvalidToolOption = zerr.New("invalid tool option")

	// ErrInvalidToolSpec is returned when a tool definition is incomplete.
	ErrInvalidToolSpec = zerr.New("invalid tool definition")

	// ErrInvalidPattern is returned when a glob pattern cannot be parsed.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrInvalidSettings is returned when runtime settings cannot be loaded or are out of range.
	ErrInvalidSettings = zerr.New("invalid settings")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find forge.yaml")

	// ErrUnclassifiedPath is returned when a changed path lies outside the source root.
	ErrUnclassifiedPath = zerr.New("path does not belong to any asset class")

	// ErrBuildFailed is returned when at least one task of a build run failed.
	ErrBuildFailed = zerr.New("build failed")

	// ErrTransformFailed is returned when a transform step reports a failure.
	ErrTransformFailed = zerr.New("transform step failed")

	// ErrStepTimeout is returned when a transform step exceeds its time budget.
	ErrStepTimeout = zerr.New("transform step timed out")

	// ErrInvalidRunTransition is returned when a build run is moved to a state it cannot reach.
	ErrInvalidRunTransition = zerr.New("invalid build run transition")

	// ErrTaskSkipped is recorded for tasks that did not run because a predecessor failed.
	ErrTaskSkipped = zerr.New("skipped because a predecessor failed")

	// ErrInputResolutionFailed is returned when input resolution fails.
	ErrInputResolutionFailed = zerr.New("failed to resolve inputs")

	// ErrOutputPathOutsideRoot is returned when a step would write or delete outside the project root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside project root")

	// ErrCopyFailed is returned when the copy step cannot copy a file.
	ErrCopyFailed = zerr.New("failed to copy file")

	// ErrCleanFailed is returned when the clean step cannot remove the output directory.
	ErrCleanFailed = zerr.New("failed to clean output")

	// ErrStoreCreateFailed is returned when the step cache directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create step cache directory")

	// ErrStoreReadFailed is returned when a step cache record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read step record")

	// ErrStoreUnmarshalFailed is returned when a step cache record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal step record")

	// ErrStoreMarshalFailed is returned when a step cache record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal step record")

	// ErrStoreWriteFailed is returned when a step cache record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write step record")

	// ErrStoreClearFailed is returned when the step cache cannot be cleared.
	ErrStoreClearFailed = zerr.New("failed to clear step cache")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrWriteHashFailed is returned when writing the hash to the digest fails.
	ErrWriteHashFailed = zerr.New("failed to write hash to digest")

	// ErrServerFailed is returned when the live-reload server cannot start.
	ErrServerFailed = zerr.New("live-reload server failed")
)

// configurationErrors lists the sentinels that make a project unusable before any task runs.
var configurationErrors = []error{
	ErrCycleDetected,
	ErrMissingDependency,
	ErrTaskAlreadyExists,
	ErrUnknownTask,
	ErrNoTasksRequested,
	ErrInvalidTaskName,
	ErrReservedTaskName,
	ErrConfigNotFound,
	ErrConfigReadFailed,
	ErrConfigParseFailed,
	ErrUnknownAssetClass,
	ErrUnknownStepKind,
	ErrInvalidToolOption,
	ErrInvalidToolSpec,
	ErrInvalidPattern,
	ErrInvalidSettings,
	ErrOutputPathOutsideRoot,
}

// IsConfigurationError reports whether err stems from an invalid project definition.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	for _, target := range configurationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// TransformError is the failure of one step of one task.
type TransformError struct {
	Task     string
	Step     string
	TimedOut bool
	Err      error
}

// NewTransformError wraps a step failure with the task and step it belongs to.
func NewTransformError(task, step string, timedOut bool, cause error) error {
	te := &TransformError{Task: task, Step: step, TimedOut: timedOut, Err: cause}
	return zerr.With(zerr.With(te, "task", task), "step", step)
}

func (e *TransformError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return e.Message() + ": " + e.Err.Error()
}

// Message returns the failure without its cause.
func (e *TransformError) Message() string {
	if e.TimedOut {
		return ErrStepTimeout.Error() + ": " + e.Step
	}
	return ErrTransformFailed.Error() + ": " + e.Step
}

// Unwrap returns the underlying tool or step error.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransformFailed for every step failure and ErrStepTimeout for deadline overruns.
func (e *TransformError) Is(target error) bool {
	if target == ErrTransformFailed {
		return true
	}
	return e.TimedOut && target == ErrStepTimeout
}

// IsTransformError reports whether err is a failure of a transform step.
func IsTransformError(err error) bool {
	return errors.Is(err, ErrTransformFailed)
}
