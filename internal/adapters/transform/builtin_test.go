package transform_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/cas"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newBuiltin(t *testing.T, project *domain.Project, uses string, with map[string]string) ports.TransformStep {
	t.Helper()
	ctrl := gomock.NewController(t)
	step, err := newFactory(mocks.NewMockExecutor(ctrl)).NewStep(ports.StepContext{
		Project: project,
		Spec:    domain.StepSpec{Uses: uses, With: with},
	})
	require.NoError(t, err)
	return step
}

func TestCopyStep_Apply(t *testing.T) {
	project := newSite(t)
	layout := project.Layout
	favicon := writeFile(t, filepath.Join(layout.Source, "favicon.ico"), "ico")
	robots := writeFile(t, filepath.Join(layout.Source, "meta", "robots.txt"), "User-agent: *")

	step := newBuiltin(t, project, "copy", nil)
	in := domain.NewFileSet(favicon, robots)

	var diag bytes.Buffer
	out, err := step.Apply(context.Background(), in, &diag)
	require.NoError(t, err)

	dstFavicon := filepath.Join(layout.Output, "favicon.ico")
	dstRobots := filepath.Join(layout.Output, "meta", "robots.txt")
	assert.Equal(t, []string{dstFavicon, dstRobots}, out.Paths())
	assert.Equal(t, "User-agent: *", readFile(t, dstRobots))
	assert.Contains(t, diag.String(), "copied 2 files (0 unchanged)")

	t.Run("unchanged files are not rewritten", func(t *testing.T) {
		old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, os.Chtimes(dstFavicon, old, old))
		writeFile(t, robots, "User-agent: forge")

		diag.Reset()
		_, err := step.Apply(context.Background(), in, &diag)
		require.NoError(t, err)

		info, err := os.Stat(dstFavicon)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(old))
		assert.Equal(t, "User-agent: forge", readFile(t, dstRobots))
		assert.Contains(t, diag.String(), "copied 1 files (1 unchanged)")
	})

	t.Run("missing source", func(t *testing.T) {
		missing := domain.NewFileSet(filepath.Join(layout.Source, "gone.txt"))
		_, err := step.Apply(context.Background(), missing, io.Discard)
		require.ErrorIs(t, err, domain.ErrCopyFailed)
	})
}

func TestCopyStep_Apply_To(t *testing.T) {
	project := newSite(t)
	layout := project.Layout
	font := writeFile(t, filepath.Join(layout.Source, "fonts", "inter.woff2"), "woff2")

	step := newBuiltin(t, project, "copy", map[string]string{"to": "assets"})
	out, err := step.Apply(context.Background(), domain.NewFileSet(font), io.Discard)
	require.NoError(t, err)

	dst := filepath.Join(layout.Output, "assets", "fonts", "inter.woff2")
	assert.Equal(t, []string{dst}, out.Paths())
	assert.Equal(t, "woff2", readFile(t, dst))
}

func TestCleanStep_Apply(t *testing.T) {
	project := newSite(t)
	layout := project.Layout
	writeFile(t, filepath.Join(layout.Output, "css", "main.css"), "body{}")
	index := writeFile(t, filepath.Join(layout.Output, "index.html"), "<h1>")
	source := writeFile(t, filepath.Join(layout.Source, "index.html"), "<h1>")

	t.Run("sub-path", func(t *testing.T) {
		step := newBuiltin(t, project, "clean", map[string]string{"path": "css"})
		out, err := step.Apply(context.Background(), domain.FileSet{}, io.Discard)
		require.NoError(t, err)
		assert.True(t, out.Empty())

		assert.NoDirExists(t, filepath.Join(layout.Output, "css"))
		assert.FileExists(t, index)
	})

	t.Run("output directory", func(t *testing.T) {
		var diag bytes.Buffer
		step := newBuiltin(t, project, "clean", nil)
		_, err := step.Apply(context.Background(), domain.FileSet{}, &diag)
		require.NoError(t, err)

		assert.NoDirExists(t, layout.Output)
		assert.FileExists(t, source)
		assert.Equal(t, "removed dist\n", diag.String())
	})

	t.Run("already clean", func(t *testing.T) {
		step := newBuiltin(t, project, "clean", nil)
		_, err := step.Apply(context.Background(), domain.FileSet{}, io.Discard)
		require.NoError(t, err)
	})
}

func TestCacheClearStep_Apply(t *testing.T) {
	project := newSite(t)
	root := project.Layout.Root
	store := cas.NewStore()
	require.NoError(t, store.Put(root, domain.StepRecord{Key: "k", Step: "imagemin"}))

	step := newBuiltin(t, project, "cache-clear", nil)
	in := domain.NewFileSet(filepath.Join(root, "src", "a.png"))
	out, err := step.Apply(context.Background(), in, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	rec, err := store.Get(root, "k")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFilterStep_Apply(t *testing.T) {
	project := newSite(t)
	layout := project.Layout

	in := domain.NewFileSet(
		filepath.Join(layout.Source, "img", "hero.png"),
		filepath.Join(layout.Source, "img", "icons", "menu.svg"),
		filepath.Join(layout.Source, "img", "photo.JPG"),
		filepath.Join(layout.Output, "img", "hero.webp"),
		filepath.Join(layout.Output, "img", "hero.png"),
		filepath.Join(layout.Root, "README.png"),
	)

	step := newBuiltin(t, project, "filter", map[string]string{"include": "img/**/*.png, img/**/*.{jpg,JPG}"})
	out, err := step.Apply(context.Background(), in, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(layout.Output, "img", "hero.png"),
		filepath.Join(layout.Source, "img", "hero.png"),
		filepath.Join(layout.Source, "img", "photo.JPG"),
	}, out.Paths())
}
