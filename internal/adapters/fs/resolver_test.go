package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/fs"
	"go.trai.ch/forge/internal/core/domain"
)

func TestResolver_ResolveInputs(t *testing.T) {
	t.Parallel()

	rootDir := t.TempDir()
	mustCreateFile(t, rootDir, "index.html")
	mustCreateFile(t, rootDir, "about.html")
	mustCreateFile(t, rootDir, "scss/main.scss")
	mustCreateFile(t, rootDir, "scss/partials/_vars.scss")
	mustCreateFile(t, rootDir, "img/logo.png")
	mustCreateFile(t, rootDir, "img/icons/menu.svg")

	resolver := fs.NewResolver(fs.NewWalker())

	t.Run("recursive globs", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveInputs([]string{"scss/**/*.scss"}, rootDir)
		require.NoError(t, err)

		expected := []string{
			filepath.Join(rootDir, "scss", "main.scss"),
			filepath.Join(rootDir, "scss", "partials", "_vars.scss"),
		}
		assert.Equal(t, expected, resolved)
	})

	t.Run("alternatives", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveInputs([]string{"img/**/*.{png,svg}"}, rootDir)
		require.NoError(t, err)
		assert.Len(t, resolved, 2)
	})

	t.Run("deduplication", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveInputs([]string{"*.html", "index.html"}, rootDir)
		require.NoError(t, err)

		expected := []string{
			filepath.Join(rootDir, "about.html"),
			filepath.Join(rootDir, "index.html"),
		}
		assert.Equal(t, expected, resolved)
	})

	t.Run("directories expand to their files", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveInputs([]string{"img"}, rootDir)
		require.NoError(t, err)

		expected := []string{
			filepath.Join(rootDir, "img", "icons", "menu.svg"),
			filepath.Join(rootDir, "img", "logo.png"),
		}
		assert.Equal(t, expected, resolved)
	})

	t.Run("no matches is empty", func(t *testing.T) {
		t.Parallel()
		resolved, err := resolver.ResolveInputs([]string{"**/*.ts"}, rootDir)
		require.NoError(t, err)
		assert.Empty(t, resolved)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := resolver.ResolveInputs([]string{"scss/[.scss"}, rootDir)
		require.ErrorIs(t, err, domain.ErrInvalidPattern)
	})
}
