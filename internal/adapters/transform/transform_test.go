package transform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/cas"
	"go.trai.ch/forge/internal/adapters/fs"
	"go.trai.ch/forge/internal/adapters/transform"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

// newSite creates a project with the default src and dist directories below a temp root.
func newSite(t *testing.T) *domain.Project {
	t.Helper()
	root := t.TempDir()
	return &domain.Project{
		Graph:  domain.NewGraph(),
		Layout: domain.NewLayout(root, "", ""),
		Tools:  map[string]domain.ToolSpec{},
	}
}

// newFactory wires a factory with the real store, hasher and resolver around executor.
func newFactory(executor ports.Executor) *transform.Factory {
	return transform.NewFactory(executor, cas.NewStore(), fs.NewHasher(), fs.NewResolver(fs.NewWalker()))
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	return string(data)
}

func intPtr(n int) *int {
	return &n
}
