package domain

// Task represents a unit of work in the build system.
// It uses InternedString for fields that are frequently repeated to save memory.
type Task struct {
	Name         InternedString
	Dependencies []InternedString
	// Class is the asset class whose changes re-trigger the task.
	Class AssetClass
	// Inputs are glob patterns relative to the source root.
	Inputs []InternedString
	// Steps overrides the pipeline of Class when non-empty.
	Steps []StepSpec
}

// StepSpec describes one transform step as written in the project file.
type StepSpec struct {
	// Uses names a built-in step (copy, clean, cache-clear, filter) or a tool from the tools section.
	Uses string
	// With holds the step options.
	With map[string]string
	// Produces are glob patterns relative to the output root describing what the step writes.
	Produces []string
	// Cache enables the step cache for tool steps.
	Cache bool
}

// ToolSpec is an external program a tool step can invoke.
type ToolSpec struct {
	Name string
	// Command is the program followed by its argument templates.
	Command []string
	Options map[string]OptionSpec
}

// OptionType is the value type accepted by a tool option.
type OptionType string

const (
	// OptionString accepts any value.
	OptionString OptionType = "string"
	// OptionBool accepts true or false.
	OptionBool OptionType = "bool"
	// OptionInt accepts an integer within optional bounds.
	OptionInt OptionType = "int"
	// OptionEnum accepts one of a fixed list of values.
	OptionEnum OptionType = "enum"
)

// OptionSpec is the schema of a single tool option.
type OptionSpec struct {
	Type    OptionType
	Values  []string
	Min     *int
	Max     *int
	Default string
}

// Command is a fully rendered external tool invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env holds extra KEY=VALUE pairs added to the allow-listed host environment.
	Env []string
}
