package shell

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnvironment(t *testing.T) {
	sep := string(os.PathListSeparator)
	tests := []struct {
		name     string
		sysEnv   []string
		extra    []string
		expected []string
	}{
		{
			name:     "allow-listed host variables",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HOME=/home/test"},
			expected: []string{"HOME=/home/test", "PATH=/bin", "USER=test"},
		},
		{
			name:     "filters everything else",
			sysEnv:   []string{"USER=test", "SSH_AUTH_SOCK=/tmp/ssh", "SECRET=key"},
			expected: []string{"USER=test"},
		},
		{
			name:     "adds forge variables",
			sysEnv:   []string{"PATH=/bin"},
			extra:    []string{"FORGE_MODE=development", "FORGE_OUTPUT_DIR=/site/dist"},
			expected: []string{"FORGE_MODE=development", "FORGE_OUTPUT_DIR=/site/dist", "PATH=/bin"},
		},
		{
			name:     "prepends PATH",
			sysEnv:   []string{"PATH=/bin"},
			extra:    []string{"PATH=/site/node_modules/.bin"},
			expected: []string{"PATH=/site/node_modules/.bin" + sep + "/bin"},
		},
		{
			name:     "PATH without host PATH",
			extra:    []string{"PATH=/site/node_modules/.bin"},
			expected: []string{"PATH=/site/node_modules/.bin"},
		},
		{
			name:     "overrides host values",
			sysEnv:   []string{"USER=test"},
			extra:    []string{"USER=forge", "malformed"},
			expected: []string{"USER=forge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveEnvironment(tt.sysEnv, tt.extra))
		})
	}
}

func TestLookPath(t *testing.T) {
	t.Run("no PATH", func(t *testing.T) {
		_, err := lookPath("echo", []string{"USER=test"})
		require.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := lookPath("nonexistent-command", []string{"PATH=:" + t.TempDir()})
		require.Error(t, err)
	})

	t.Run("found", func(t *testing.T) {
		dir := t.TempDir()
		//nolint:gosec // Test requires executable file
		require.NoError(t, os.WriteFile(dir+"/tool", []byte("#!/bin/sh\n"), 0o700))
		path, err := lookPath("tool", []string{"PATH=/nonexistent" + string(os.PathListSeparator) + dir})
		require.NoError(t, err)
		assert.Equal(t, dir+"/tool", path)
	})
}

func TestFindExecutable(t *testing.T) {
	require.Error(t, findExecutable("/nonexistent/file"))
	require.Error(t, findExecutable(t.TempDir()))

	file := t.TempDir() + "/plain"
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	require.ErrorIs(t, findExecutable(file), os.ErrPermission)
}
