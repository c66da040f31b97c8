// Package shell runs external transform tools under a pseudo-terminal.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

type ptyProcess struct {
	cmd    *exec.Cmd
	ioDone <-chan struct{}
}

// Wait waits for the command to exit and its output to be drained.
func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()
	<-p.ioDone
	return err
}

// Executor implements ports.Executor using os/exec and pty.
// Tools see a colour-capable terminal, so stdout and stderr arrive merged on stdout.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

func start(ctx context.Context, command *domain.Command, stdout io.Writer) (*ptyProcess, error) {
	cmdEnv := resolveEnvironment(os.Environ(), command.Env)

	executable := command.Name
	if !filepath.IsAbs(executable) {
		if lp, err := lookPath(executable, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, command.Args...) //nolint:gosec // tool commands come from forge.yaml
	cmd.Args[0] = command.Name
	cmd.Dir = command.Dir
	cmd.Env = cmdEnv

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to start pty")
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		// Reading a closed pty ends with EIO once the tool exits.
		_, _ = io.Copy(stdout, ptmx)
	}()

	return &ptyProcess{cmd: cmd, ioDone: ioDone}, nil
}

// Execute runs the command and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, command *domain.Command, stdout, _ io.Writer) error {
	if command == nil || command.Name == "" {
		return zerr.Wrap(domain.ErrInvalidToolSpec, "empty command")
	}

	proc, err := start(ctx, command, stdout)
	if err != nil {
		return zerr.With(err, "command", command.Name)
	}

	if err := proc.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err = zerr.With(zerr.Wrap(err, "command failed"), "command", command.Name)
		return zerr.With(err, "exit_code", exitCode)
	}

	return nil
}

// allowListedEnvVars are the host environment variables tools inherit.
// Everything else is dropped so builds do not depend on the invoking shell.
var allowListedEnvVars = []string{
	"HOME",
	"LANG",
	"PATH",
	"TERM",
	"TMPDIR",
	"USER",
}

// resolveEnvironment merges the allow-listed host environment with extra.
// A PATH in extra is prepended to the host PATH; other keys override.
func resolveEnvironment(sysEnv, extra []string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok && slices.Contains(allowListedEnvVars, k) {
			envMap[k] = v
		}
	}

	for _, entry := range extra {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if sysPath := envMap["PATH"]; k == "PATH" && sysPath != "" {
			envMap[k] = v + string(os.PathListSeparator) + sysPath
			continue
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "PATH="); ok {
			path = after
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
