// Package config provides the forge.yaml loader.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// SupportedVersion is the forge.yaml schema version understood by the loader.
const SupportedVersion = "1"

// BuiltinSteps are the step kinds that need no tool definition.
var BuiltinSteps = []string{"copy", "clean", "cache-clear", "filter"}

// ReservedTaskNames are taken by built-in commands and cannot name tasks.
var ReservedTaskNames = []string{"build", "watch", "run", "tasks", "version", "help", "completion"}

var validTaskNameRegex = regexp.MustCompile("^[a-zA-Z0-9][a-zA-Z0-9_-]*$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	fs     FileSystem
}

// NewLoader creates a new Loader with the given logger reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return NewLoaderWithFS(logger, NewOSFS())
}

// NewLoaderWithFS creates a new Loader reading through fsys.
func NewLoaderWithFS(logger ports.Logger, fsys FileSystem) *Loader {
	return &Loader{Logger: logger, fs: fsys}
}

// DiscoverRoot returns the directory holding the forge.yaml that applies to cwd.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, err := l.findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

// Load reads the project file that applies to cwd and returns the project with a validated graph.
// cwd may also name the project file itself.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := l.findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var forgefile Forgefile
	if err := l.readAndUnmarshalYAML(configPath, &forgefile); err != nil {
		return nil, err
	}

	if forgefile.Version != "" && forgefile.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", domain.ForgeFileName, forgefile.Version, SupportedVersion))
	}

	root := filepath.Dir(configPath)
	project := &domain.Project{
		Graph:  domain.NewGraph(),
		Layout: domain.NewLayout(root, forgefile.Source, forgefile.Output),
	}
	project.Graph.SetRoot(project.Layout.Root)

	if project.Tools, err = buildTools(forgefile.Tools); err != nil {
		return nil, err
	}
	if project.Classes, err = buildClassRules(forgefile.Classes); err != nil {
		return nil, err
	}
	if project.Pipelines, err = buildPipelines(forgefile.Pipelines, project.Tools); err != nil {
		return nil, err
	}
	if err := l.addTasks(project, &forgefile.Tasks); err != nil {
		return nil, err
	}

	if err := project.Graph.Validate(); err != nil {
		return nil, err
	}

	return project, nil
}

func (l *Loader) findConfiguration(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, err.Error()), "cwd", cwd)
	}

	if info, err := l.fs.Stat(abs); err == nil && !info.IsDir() {
		return abs, nil
	}

	currentDir := abs
	for {
		candidate := filepath.Join(currentDir, domain.ForgeFileName)
		if _, err := l.fs.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "discover project"), "cwd", cwd)
}

// addTasks registers the tasks in document order.
func (l *Loader) addTasks(project *domain.Project, node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		err := zerr.Wrap(domain.ErrConfigParseFailed, "tasks must be a mapping")
		return zerr.With(err, "line", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if err := validateTaskName(name); err != nil {
			return err
		}

		var dto TaskDTO
		if err := node.Content[i+1].Decode(&dto); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "task", name)
		}

		task, err := buildTask(name, &dto, project.Tools)
		if err != nil {
			return err
		}

		if len(task.Steps) == 0 && len(project.Pipelines[task.Class]) == 0 && len(task.Dependencies) == 0 {
			l.Logger.Warn(fmt.Sprintf("task %s has no steps and no dependencies", name))
		}

		if err := project.Graph.AddTask(task); err != nil {
			return err
		}
	}
	return nil
}

func buildTask(name string, dto *TaskDTO, tools map[string]domain.ToolSpec) (*domain.Task, error) {
	class := domain.AssetClassNone
	if dto.Class != "" {
		var err error
		if class, err = domain.ParseAssetClass(dto.Class); err != nil {
			return nil, zerr.With(err, "task", name)
		}
	}

	for _, input := range dto.Input {
		if !validPattern(input) {
			err := zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "task input"), "pattern", input)
			return nil, zerr.With(err, "task", name)
		}
	}

	steps, err := buildSteps(dto.Steps, tools)
	if err != nil {
		return nil, zerr.With(err, "task", name)
	}

	return &domain.Task{
		Name:         domain.NewInternedString(name),
		Dependencies: domain.NewInternedStrings(dto.DependsOn),
		Class:        class,
		Inputs:       canonicalizeStrings(dto.Input),
		Steps:        steps,
	}, nil
}

func buildSteps(dtos []StepDTO, tools map[string]domain.ToolSpec) ([]domain.StepSpec, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	steps := make([]domain.StepSpec, len(dtos))
	for i, dto := range dtos {
		if !slices.Contains(BuiltinSteps, dto.Uses) {
			if _, ok := tools[dto.Uses]; !ok {
				return nil, zerr.With(zerr.Wrap(domain.ErrUnknownStepKind, "build step"), "uses", dto.Uses)
			}
		}
		for _, p := range dto.Produces {
			if !validPattern(p) {
				return nil, zerr.With(zerr.Wrap(domain.ErrInvalidPattern, "step produces"), "pattern", p)
			}
		}
		steps[i] = domain.StepSpec{
			Uses:     dto.Uses,
			With:     dto.With,
			Produces: dto.Produces,
			Cache:    dto.Cache,
		}
	}
	return steps, nil
}

func buildPipelines(dtos map[string][]StepDTO, tools map[string]domain.ToolSpec) (map[domain.AssetClass][]domain.StepSpec, error) {
	pipelines := make(map[domain.AssetClass][]domain.StepSpec, len(dtos))
	for name, steps := range dtos {
		class, err := domain.ParseAssetClass(name)
		if err != nil {
			return nil, zerr.With(err, "pipeline", name)
		}
		specs, err := buildSteps(steps, tools)
		if err != nil {
			return nil, zerr.With(err, "pipeline", name)
		}
		pipelines[class] = specs
	}
	return pipelines, nil
}

// buildClassRules returns the classifier overrides in rule order.
func buildClassRules(dtos map[string][]string) ([]domain.ClassRule, error) {
	var rules []domain.ClassRule
	for name, patterns := range dtos {
		class, err := domain.ParseAssetClass(name)
		if err != nil {
			return nil, zerr.With(err, "classes", name)
		}
		rules = append(rules, domain.ClassRule{Class: class, Patterns: patterns})
	}

	order := domain.AssetClasses()
	slices.SortFunc(rules, func(a, b domain.ClassRule) int {
		return slices.Index(order, a.Class) - slices.Index(order, b.Class)
	})
	return rules, nil
}

func buildTools(dtos map[string]*ToolDTO) (map[string]domain.ToolSpec, error) {
	tools := make(map[string]domain.ToolSpec, len(dtos))
	for name, dto := range dtos {
		if slices.Contains(BuiltinSteps, name) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidToolSpec, "tool shadows a built-in step"), "tool", name)
		}
		if dto == nil || len(dto.Cmd) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidToolSpec, "tool has no command"), "tool", name)
		}

		options := make(map[string]domain.OptionSpec, len(dto.Options))
		for optName, opt := range dto.Options {
			spec, err := buildOption(opt)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "tool", name), "option", optName)
			}
			options[optName] = spec
		}

		tools[name] = domain.ToolSpec{Name: name, Command: dto.Cmd, Options: options}
	}
	return tools, nil
}

func buildOption(dto *OptionDTO) (domain.OptionSpec, error) {
	if dto == nil {
		return domain.OptionSpec{Type: domain.OptionString}, nil
	}

	spec := domain.OptionSpec{
		Type:    domain.OptionType(dto.Type),
		Values:  dto.Values,
		Min:     dto.Min,
		Max:     dto.Max,
		Default: dto.Default,
	}
	switch spec.Type {
	case "":
		spec.Type = domain.OptionString
	case domain.OptionString, domain.OptionBool, domain.OptionInt:
	case domain.OptionEnum:
		if len(spec.Values) == 0 {
			return spec, zerr.Wrap(domain.ErrInvalidToolSpec, "enum option without values")
		}
	default:
		return spec, zerr.With(zerr.Wrap(domain.ErrInvalidToolSpec, "unknown option type"), "type", dto.Type)
	}
	return spec, nil
}

func canonicalizeStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}

	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return domain.NewInternedStrings(slices.Compact(sorted))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// The sentinel stays the root of the chain so callers can classify the failure.
func (l *Loader) readAndUnmarshalYAML(configPath string, target *Forgefile) error {
	data, err := l.fs.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(zerr.Wrap(domain.ErrConfigNotFound, err.Error()), "path", configPath)
		}
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", configPath)
	}

	return nil
}

// validateTaskName checks if the task name is reserved or contains invalid characters.
func validateTaskName(name string) error {
	if slices.Contains(ReservedTaskNames, name) {
		return zerr.With(zerr.Wrap(domain.ErrReservedTaskName, "register task"), "task_name", name)
	}
	if !validTaskNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTaskName, "register task"), "task_name", name)
	}
	return nil
}

func validPattern(p string) bool {
	return doublestar.ValidatePattern(filepath.ToSlash(p))
}
