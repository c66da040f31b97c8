package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/forge/internal/adapters/watcher"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// nextEvent returns the first event for which match is true, or fails after a timeout.
func nextEvent(t *testing.T, events <-chan ports.WatchEvent, match func(ports.WatchEvent) bool) ports.WatchEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event stream closed")
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for watch event")
			return ports.WatchEvent{}
		}
	}
}

func TestWatcher_ReportsChangesUnderRoot(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	output := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scss"), domain.DirPerm))
	require.NoError(t, os.MkdirAll(output, domain.DirPerm))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), domain.DirPerm))

	w, err := watcher.NewWatcher(mockLogger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	require.NoError(t, w.Start(ctx, root, output))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent, 64)
	go func() {
		defer close(events)
		for ev := range w.Events() {
			events <- ev
		}
	}()

	// Excluded trees produce nothing; the sentinel write below proves ordering.
	writeFile(t, filepath.Join(output, "css", "main.css"), "body{}")
	writeFile(t, filepath.Join(root, "node_modules", "dep.js"), "x")

	scss := writeFile(t, filepath.Join(root, "scss", "main.scss"), "body {}")
	ev := nextEvent(t, events, func(ev ports.WatchEvent) bool {
		assert.NotContains(t, ev.Path, "node_modules")
		assert.NotContains(t, ev.Path, output)
		return ev.Path == scss
	})
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)

	t.Run("new directories are watched", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "img"), domain.DirPerm))
		// Give the pump a moment to register the directory.
		time.Sleep(100 * time.Millisecond)
		logo := writeFile(t, filepath.Join(root, "img", "logo.svg"), "<svg/>")
		nextEvent(t, events, func(ev ports.WatchEvent) bool { return ev.Path == logo })
	})

	t.Run("removals", func(t *testing.T) {
		require.NoError(t, os.Remove(scss))
		ev := nextEvent(t, events, func(ev ports.WatchEvent) bool {
			return ev.Path == scss && ev.Operation == ports.OpRemove
		})
		assert.Equal(t, ports.OpRemove, ev.Operation)
	})
}
