package ports

import (
	"context"

	"go.trai.ch/forge/internal/core/domain"
)

// ReloadTransport delivers live-reload notifications to connected browsers.
//
//go:generate mockgen -source=reload.go -destination=mocks/mock_reload.go -package=mocks
type ReloadTransport interface {
	PushUpdate(ctx context.Context, update domain.ReloadUpdate) error
}

// DevServer serves the output directory and owns the live-reload connections.
type DevServer interface {
	ReloadTransport
	// Serve blocks until ctx is cancelled or the listener fails.
	Serve(ctx context.Context, addr, dir string) error
}
