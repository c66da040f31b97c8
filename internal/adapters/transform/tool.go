package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// InputsArg is the command argument that expands to one argument per input file.
const InputsArg = "$INPUTS"

// diagnosticsTail is how much trailing tool output is attached to a failure.
const diagnosticsTail = 4 << 10

// templateData is the value command argument templates are rendered with.
type templateData struct {
	Input     string
	Inputs    []string
	OutputDir string
	SourceDir string
	Root      string
	Mode      domain.Mode
	Options   map[string]string
}

// toolArg is one command argument and its parsed template.
type toolArg struct {
	raw  string
	tmpl *template.Template
}

// ToolStep runs an external tool over its input files.
type ToolStep struct {
	name     string
	task     string
	program  string
	args     []toolArg
	options  map[string]string
	produces []string
	cache    bool
	mode     domain.Mode
	layout   domain.Layout

	executor ports.Executor
	store    ports.StepCache
	hasher   ports.Hasher
	resolver ports.InputResolver
}

func (f *Factory) newToolStep(sc ports.StepContext, tool domain.ToolSpec) (ports.TransformStep, error) {
	options, err := resolveOptions(tool, sc.Spec.With)
	if err != nil {
		return nil, err
	}

	if len(tool.Command) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidToolSpec, "tool has no command"), "tool", tool.Name)
	}

	args := make([]toolArg, 0, len(tool.Command)-1)
	for i, raw := range tool.Command[1:] {
		tmpl, err := template.New(fmt.Sprintf("%s[%d]", tool.Name, i+1)).Option("missingkey=error").Parse(raw)
		if err != nil {
			err = zerr.With(zerr.Wrap(domain.ErrInvalidToolSpec, err.Error()), "tool", tool.Name)
			return nil, zerr.With(err, "arg", raw)
		}
		args = append(args, toolArg{raw: raw, tmpl: tmpl})
	}

	return &ToolStep{
		name:     tool.Name,
		task:     sc.Task,
		program:  tool.Command[0],
		args:     args,
		options:  options,
		produces: sc.Spec.Produces,
		cache:    sc.Spec.Cache,
		mode:     sc.Mode,
		layout:   sc.Project.Layout,
		executor: f.executor,
		store:    f.store,
		hasher:   f.hasher,
		resolver: f.resolver,
	}, nil
}

// Name returns the tool name.
func (s *ToolStep) Name() string {
	return s.name
}

// Apply runs the tool. With caching enabled, a run over identical inputs
// whose recorded outputs still exist is skipped.
func (s *ToolStep) Apply(ctx context.Context, in domain.FileSet, diag io.Writer) (domain.FileSet, error) {
	var key string
	if s.cache {
		var err error
		if key, err = s.cacheKey(in); err != nil {
			return domain.FileSet{}, err
		}
		if out, ok := s.lookup(key); ok {
			_, _ = fmt.Fprintf(diag, "%s: inputs unchanged, using cached outputs\n", s.name)
			return out, nil
		}
	}

	cmd, err := s.Command(in)
	if err != nil {
		return domain.FileSet{}, err
	}
	if err := os.MkdirAll(s.layout.Output, domain.DirPerm); err != nil {
		return domain.FileSet{}, zerr.With(zerr.Wrap(err, "create output directory"), "path", s.layout.Output)
	}

	tail := &tailWriter{limit: diagnosticsTail}
	out := io.MultiWriter(diag, tail)
	if err := s.executor.Execute(ctx, cmd, out, out); err != nil {
		return domain.FileSet{}, zerr.With(err, "diagnostics", tail.String())
	}

	outputs, err := s.outputs(in)
	if err != nil {
		return domain.FileSet{}, err
	}

	if s.cache {
		rec := domain.StepRecord{
			Key:       key,
			Task:      s.task,
			Step:      s.name,
			Outputs:   outputs.Paths(),
			Timestamp: time.Now(),
		}
		if err := s.store.Put(s.layout.Root, rec); err != nil {
			_, _ = fmt.Fprintf(diag, "%s: step cache not updated: %v\n", s.name, err)
		}
	}
	return outputs, nil
}

// Command renders the tool invocation for the given inputs.
func (s *ToolStep) Command(in domain.FileSet) (*domain.Command, error) {
	inputs := in.Paths()
	data := templateData{
		Inputs:    inputs,
		OutputDir: s.layout.Output,
		SourceDir: s.layout.Source,
		Root:      s.layout.Root,
		Mode:      s.mode,
		Options:   s.options,
	}
	if len(inputs) > 0 {
		data.Input = inputs[0]
	}

	args := make([]string, 0, len(s.args)+len(inputs))
	for _, arg := range s.args {
		if arg.raw == InputsArg {
			args = append(args, inputs...)
			continue
		}
		var buf bytes.Buffer
		if err := arg.tmpl.Execute(&buf, data); err != nil {
			err = zerr.With(zerr.Wrap(domain.ErrInvalidToolSpec, err.Error()), "tool", s.name)
			return nil, zerr.With(err, "arg", arg.raw)
		}
		args = append(args, buf.String())
	}

	return &domain.Command{
		Name: s.program,
		Args: args,
		Dir:  s.layout.Root,
		Env: []string{
			"FORGE_MODE=" + string(s.mode),
			"FORGE_SOURCE_DIR=" + s.layout.Source,
			"FORGE_OUTPUT_DIR=" + s.layout.Output,
			"PATH=" + filepath.Join(s.layout.Root, "node_modules", ".bin"),
		},
	}, nil
}

// outputs returns what the tool produced: the produces matches, or the inputs when none are declared.
func (s *ToolStep) outputs(in domain.FileSet) (domain.FileSet, error) {
	if len(s.produces) == 0 {
		return in, nil
	}
	files, err := s.resolver.ResolveInputs(s.produces, s.layout.Output)
	if err != nil {
		return domain.FileSet{}, zerr.With(err, "tool", s.name)
	}
	return domain.NewFileSet(files...), nil
}

// cacheKey identifies a run of this step by everything that influences its outputs.
func (s *ToolStep) cacheKey(in domain.FileSet) (string, error) {
	inputHash, err := s.hasher.ComputeFileSetHash(in.Paths())
	if err != nil {
		return "", zerr.With(err, "tool", s.name)
	}

	names := make([]string, 0, len(s.options))
	for name := range s.options {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := []string{s.task, s.name, string(s.mode), inputHash, strings.Join(s.produces, ",")}
	for _, name := range names {
		parts = append(parts, name+"="+s.options[name])
	}
	return strings.Join(parts, "\x00"), nil
}

// lookup returns the cached outputs for key if every one of them still exists.
func (s *ToolStep) lookup(key string) (domain.FileSet, bool) {
	rec, err := s.store.Get(s.layout.Root, key)
	if err != nil || rec == nil {
		return domain.FileSet{}, false
	}
	for _, path := range rec.Outputs {
		if _, err := os.Stat(path); err != nil {
			return domain.FileSet{}, false
		}
	}
	return domain.NewFileSet(rec.Outputs...), true
}

// tailWriter keeps the last limit bytes written to it.
type tailWriter struct {
	limit int
	buf   []byte
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	if over := len(w.buf) - w.limit; over > 0 {
		w.buf = w.buf[over:]
	}
	return len(p), nil
}

// String returns the retained output without carriage returns or surrounding blank space.
func (w *tailWriter) String() string {
	return strings.TrimSpace(strings.ReplaceAll(string(w.buf), "\r", ""))
}
