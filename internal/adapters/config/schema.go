package config

import (
	"gopkg.in/yaml.v3"
)

// Forgefile represents the structure of the forge.yaml configuration file.
type Forgefile struct {
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
	Output  string `yaml:"output"`
	// Settings is read by the settings loader; the project loader ignores it.
	Settings  map[string]any       `yaml:"settings"`
	Classes   map[string][]string  `yaml:"classes"`
	Tools     map[string]*ToolDTO  `yaml:"tools"`
	Pipelines map[string][]StepDTO `yaml:"pipelines"`
	// Tasks is kept as a node so that document order becomes registration order.
	Tasks yaml.Node `yaml:"tasks"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Class     string    `yaml:"class"`
	DependsOn []string  `yaml:"dependsOn"`
	Input     []string  `yaml:"input"`
	Steps     []StepDTO `yaml:"steps"`
}

// StepDTO represents one transform step. A bare string is shorthand for {uses: <string>}.
type StepDTO struct {
	Uses     string            `yaml:"uses"`
	With     map[string]string `yaml:"with"`
	Produces []string          `yaml:"produces"`
	Cache    bool              `yaml:"cache"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StepDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Uses = node.Value
		return nil
	}
	type plain StepDTO
	return node.Decode((*plain)(s))
}

// ToolDTO represents an external tool definition.
type ToolDTO struct {
	Cmd     []string              `yaml:"cmd"`
	Options map[string]*OptionDTO `yaml:"options"`
}

// OptionDTO represents the schema of a tool option.
type OptionDTO struct {
	Type    string   `yaml:"type"`
	Values  []string `yaml:"values"`
	Min     *int     `yaml:"min"`
	Max     *int     `yaml:"max"`
	Default string   `yaml:"default"`
}
