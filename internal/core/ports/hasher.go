package ports

// Hasher defines the interface for computing content hashes.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns the content hash of a single file.
	ComputeFileHash(path string) (uint64, error)
	// ComputeFileSetHash returns a hash over the names and contents of files, independent of their order.
	ComputeFileSetHash(files []string) (string, error)
}

// InputResolver expands glob patterns into concrete files.
type InputResolver interface {
	// ResolveInputs returns the absolute paths of the files under root matching any pattern.
	// Patterns matching nothing contribute no files.
	ResolveInputs(patterns []string, root string) ([]string, error)
}
