package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/forge/internal/app"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type testMocks struct {
	loader   *mocks.MockConfigLoader
	settings *mocks.MockSettingsLoader
	logger   *mocks.MockLogger
}

func newApplication(t *testing.T) (*app.App, testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := testMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		settings: mocks.NewMockSettingsLoader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}

	application := app.New(
		m.loader,
		m.settings,
		mocks.NewMockStepFactory(ctrl),
		mocks.NewMockInputResolver(ctrl),
		mocks.NewMockWatcher(ctrl),
		nil,
		mocks.NewMockDevServer(ctrl),
		m.logger,
	)
	return application, m
}

func providerFor(application *app.App, logger *mocks.MockLogger) ComponentProvider {
	return func(context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: logger}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	application, m := newApplication(t)
	m.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)

	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), providerFor(application, m.logger))
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ConfigurationError verifies that a broken project exits with 2.
func TestRun_ConfigurationError(t *testing.T) {
	application, m := newApplication(t)
	m.loader.EXPECT().Load(".").Return(nil, zerr.Wrap(domain.ErrCycleDetected, "load")).Times(2)
	m.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"build"}, io.Discard, providerFor(application, m.logger))
	assert.Equal(t, 2, exitCode)
}

// TestRun_BareTaskName verifies that a bare task name that cannot be loaded exits with 2.
func TestRun_BareTaskName(t *testing.T) {
	application, m := newApplication(t)
	m.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound).AnyTimes()
	m.logger.EXPECT().Error(gomock.Any())

	exitCode := run(context.Background(), []string{"run"}, io.Discard, providerFor(application, m.logger))
	assert.Equal(t, 0, exitCode, "run without tasks prints usage")

	exitCode = run(context.Background(), []string{"nope"}, io.Discard, providerFor(application, m.logger))
	assert.Equal(t, 2, exitCode)
}

func TestExitCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	components := &app.Components{Logger: logger}

	assert.Equal(t, exitOK, exitCode(nil, components))

	// Build failures are reported by the renderer, not the logger.
	assert.Equal(t, exitTaskFailure, exitCode(zerr.Wrap(domain.ErrBuildFailed, "run"), components))

	logger.EXPECT().Error(gomock.Any()).Times(2)
	assert.Equal(t, exitConfiguration, exitCode(zerr.Wrap(domain.ErrUnknownTask, "run"), components))
	assert.Equal(t, exitTaskFailure, exitCode(errors.New("boom"), components))
}

// TestRun_Signal verifies that the context is canceled on signal.
func TestRun_Signal(t *testing.T) {
	application, m := newApplication(t)

	blockCh := make(chan struct{})
	m.loader.EXPECT().Load(".").Return(nil, domain.ErrConfigNotFound)
	m.loader.EXPECT().Load(".").DoAndReturn(func(string) (*domain.Project, error) {
		select {
		case <-blockCh:
			return nil, context.Canceled
		case <-time.After(5 * time.Second):
			return nil, errors.New("timeout in mock")
		}
	})
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"build"}, io.Discard, providerFor(application, m.logger))
	}()

	// Wait a bit to ensure run() reaches Load()
	time.Sleep(100 * time.Millisecond)

	cancel()
	close(blockCh)

	select {
	case ret := <-errCh:
		assert.NotEqual(t, 0, ret)
	case <-time.After(2 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
