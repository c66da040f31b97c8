package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/cmd/forge/commands"
	"go.trai.ch/forge/internal/app"
	"go.trai.ch/forge/internal/build"
	"go.trai.ch/forge/internal/core/domain"
)

type mockApp struct {
	buildFunc    func(ctx context.Context, opts app.RunOptions) error
	watchFunc    func(ctx context.Context, opts app.RunOptions) error
	runTasksFunc func(ctx context.Context, names []string, opts app.RunOptions) error
	taskNames    []string
	taskNamesErr error
	taskConfigs  []string
	tasks        []app.TaskInfo
}

func (m *mockApp) Build(ctx context.Context, opts app.RunOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.RunOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) RunTasks(ctx context.Context, names []string, opts app.RunOptions) error {
	if m.runTasksFunc != nil {
		return m.runTasksFunc(ctx, names, opts)
	}
	return nil
}

func (m *mockApp) TaskNames(opts app.RunOptions) ([]string, error) {
	m.taskConfigs = append(m.taskConfigs, opts.Config)
	return m.taskNames, m.taskNamesErr
}

func (m *mockApp) ListTasks(_ app.RunOptions) ([]app.TaskInfo, error) {
	return m.tasks, nil
}

func execute(t *testing.T, mock *mockApp, args ...string) (string, error) {
	t.Helper()

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)

	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires global flags", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		_, err := execute(t, mock, "build", "--mode", "prod", "-j", "3", "--output-mode", "tui", "--config", "site")
		require.NoError(t, err)
		assert.Equal(t, app.RunOptions{
			Config:      "site",
			Mode:        "prod",
			Concurrency: 3,
			OutputMode:  "tui",
		}, captured)
	})

	t.Run("ci forces linear output", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.RunOptions) error {
				captured = opts
				return nil
			},
		}

		_, err := execute(t, mock, "build", "--ci", "--output-mode", "tui")
		require.NoError(t, err)
		assert.True(t, captured.CI)
		assert.Equal(t, "linear", captured.OutputMode)
	})

	t.Run("returns build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, app.RunOptions) error {
				return domain.ErrBuildFailed
			},
		}

		_, err := execute(t, mock, "build")
		require.ErrorIs(t, err, domain.ErrBuildFailed)
	})

	t.Run("rejects arguments", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "build", "extra")
		require.Error(t, err)
	})
}

func TestCommands_Watch(t *testing.T) {
	var captured app.RunOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.RunOptions) error {
			captured = opts
			return nil
		},
	}

	_, err := execute(t, mock, "watch", "--no-serve", "--addr", ":9000", "--mode", "dev")
	require.NoError(t, err)
	assert.True(t, captured.NoServe)
	assert.Equal(t, ":9000", captured.Addr)
	assert.Equal(t, "dev", captured.Mode)
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedNames []string
		mock := &mockApp{
			runTasksFunc: func(_ context.Context, names []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedNames = names
				return nil
			},
		}

		_, err := execute(t, mock, "run", "sass", "js", "--with-deps")
		require.NoError(t, err)
		assert.True(t, capturedOpts.WithDeps)
		assert.Equal(t, []string{"sass", "js"}, capturedNames)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runTasksFunc: func(context.Context, []string, app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "run", "sass")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no tasks provided", func(t *testing.T) {
		mock := &mockApp{
			runTasksFunc: func(context.Context, []string, app.RunOptions) error {
				panic("should not be called")
			},
		}

		out, err := execute(t, mock, "run")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})
}

func TestCommands_TaskSubcommands(t *testing.T) {
	t.Run("registers one command per task", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedNames []string
		mock := &mockApp{
			taskNames: []string{"sass", "js"},
			runTasksFunc: func(_ context.Context, names []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedNames = names
				return nil
			},
		}

		_, err := execute(t, mock, "js", "-d", "--config=site/forge.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"js"}, capturedNames)
		assert.True(t, capturedOpts.WithDeps)
		assert.Equal(t, []string{"site/forge.yaml"}, mock.taskConfigs)
	})

	t.Run("task commands appear in help", func(t *testing.T) {
		mock := &mockApp{taskNames: []string{"sass"}}

		out, err := execute(t, mock, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Run the sass task")
	})

	t.Run("unregistered names fall through to the app", func(t *testing.T) {
		var capturedNames []string
		mock := &mockApp{
			taskNamesErr: domain.ErrConfigNotFound,
			runTasksFunc: func(_ context.Context, names []string, _ app.RunOptions) error {
				capturedNames = names
				return domain.ErrConfigNotFound
			},
		}

		_, err := execute(t, mock, "sass", "--config", "elsewhere")
		require.ErrorIs(t, err, domain.ErrConfigNotFound)
		assert.Equal(t, []string{"sass"}, capturedNames)
		assert.Equal(t, []string{"elsewhere"}, mock.taskConfigs)
	})

	t.Run("no arguments shows usage", func(t *testing.T) {
		out, err := execute(t, &mockApp{})
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})
}

func TestCommands_Tasks(t *testing.T) {
	mock := &mockApp{
		tasks: []app.TaskInfo{
			{Name: "sass", Class: domain.AssetClassStylesheet},
			{Name: "html", Class: domain.AssetClassMarkup, Dependencies: []string{"sass", "js"}},
		},
	}

	out, err := execute(t, mock, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "TASK")
	assert.Contains(t, out, "sass")
	assert.Contains(t, out, domain.AssetClassMarkup.String())
	assert.Contains(t, out, "sass, js")
	assert.Less(t, bytes.Index([]byte(out), []byte("sass")), bytes.Index([]byte(out), []byte("html")))
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "forge version "+build.Version)
	assert.Contains(t, out, build.Commit)
}
