package ports

import "go.trai.ch/forge/internal/core/domain"

// StepCache stores the results of cacheable tool steps.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StepCache interface {
	// Get retrieves the record stored under key.
	// Returns nil, nil if not found.
	Get(root, key string) (*domain.StepRecord, error)

	// Put stores the record under its key.
	Put(root string, rec domain.StepRecord) error

	// Clear removes every record.
	Clear(root string) error
}
