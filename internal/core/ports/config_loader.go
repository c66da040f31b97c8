package ports

import "go.trai.ch/forge/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads forge.yaml from the given working directory (or the nearest parent)
	// and returns the project with a validated task graph.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to find the directory containing forge.yaml.
	DiscoverRoot(cwd string) (string, error)
}

// SettingsLoader resolves runtime settings from defaults, the project file,
// FORGE_* environment variables and explicit overrides, in increasing precedence.
type SettingsLoader interface {
	Load(root string, overrides map[string]any) (domain.Settings, error)
}
