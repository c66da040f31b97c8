package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/fs"
)

func TestWalker_WalkFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "dir1"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "dir2"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "file1.txt"), []byte("content1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "dir1", "file2.txt"), []byte("content2"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "dir2", "file3.txt"), []byte("content3"), 0o600))

	walker := fs.NewWalker()
	files := make([]string, 0)

	for filePath := range walker.WalkFiles(tmpDir, nil) {
		files = append(files, filePath)
	}

	assert.Len(t, files, 3)
	assert.Contains(t, files, filepath.Join(tmpDir, "file1.txt"))
	assert.Contains(t, files, filepath.Join(tmpDir, "dir1", "file2.txt"))
	assert.Contains(t, files, filepath.Join(tmpDir, "dir2", "file3.txt"))
}

func TestWalker_WalkFiles_SkipsStateDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".git", "objects"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".jj"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "node_modules", "sass"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".forge", "store"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "src"), 0o750))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".git", "config"), []byte("gitconfig"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".jj", "store"), []byte("jjstore"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "node_modules", "sass", "index.js"), []byte("module"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".forge", "store", "abc.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "src", "main.scss"), []byte("body {}"), 0o600))

	walker := fs.NewWalker()
	files := make([]string, 0)

	for filePath := range walker.WalkFiles(tmpDir, nil) {
		files = append(files, filePath)
	}

	assert.Equal(t, []string{filepath.Join(tmpDir, "src", "main.scss")}, files)
}

func TestWalker_WalkFiles_WithIgnores(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "build"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "main.scss"), []byte("body {}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "main.css.map"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "build", "output.css"), []byte("body{}"), 0o600))

	walker := fs.NewWalker()
	files := make([]string, 0)

	ignores := []string{"*.map", "build"}
	for filePath := range walker.WalkFiles(tmpDir, ignores) {
		files = append(files, filePath)
	}

	assert.Equal(t, []string{filepath.Join(tmpDir, "main.scss")}, files)
}

func TestWalker_WalkFiles_EmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	walker := fs.NewWalker()
	files := make([]string, 0)

	for filePath := range walker.WalkFiles(tmpDir, nil) {
		files = append(files, filePath)
	}

	assert.Empty(t, files)
}
