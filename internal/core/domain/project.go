package domain

import "time"

// Mode selects between development and production tool behaviour.
type Mode string

const (
	// ModeDevelopment favours fast builds with source maps.
	ModeDevelopment Mode = "development"
	// ModeProduction favours minified output.
	ModeProduction Mode = "production"
)

// ParseMode accepts the long and short spellings of a mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "", "dev", "development":
		return ModeDevelopment, true
	case "prod", "production":
		return ModeProduction, true
	default:
		return "", false
	}
}

// ClassRule binds glob patterns relative to the source root to an asset class.
type ClassRule struct {
	Class    AssetClass
	Patterns []string
}

// Project is a loaded forge.yaml.
type Project struct {
	Graph     *Graph
	Layout    Layout
	Pipelines map[AssetClass][]StepSpec
	Tools     map[string]ToolSpec
	// Classes overrides the default classifier patterns per class.
	Classes []ClassRule
}

// Settings are the runtime knobs that do not change the task graph.
type Settings struct {
	Mode        Mode
	Concurrency int
	Debounce    time.Duration
	StepTimeout time.Duration
	Serve       bool
	ServeAddr   string
	LogFormat   string
	OutputMode  string
}

// StepRecord is a cached result of a cacheable tool step.
type StepRecord struct {
	Key       string    `json:"key"`
	Task      string    `json:"task"`
	Step      string    `json:"step"`
	Outputs   []string  `json:"outputs"`
	Timestamp time.Time `json:"timestamp"`
}
