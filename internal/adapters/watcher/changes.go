package watcher

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

// ChangeFilter turns debounced paths into change events, dropping files whose
// content is identical to the last time they were seen.
type ChangeFilter struct {
	hasher ports.Hasher

	mu   sync.Mutex
	seen map[string]uint64
}

// NewChangeFilter creates a filter that remembers content hashes computed by hasher.
func NewChangeFilter(hasher ports.Hasher) *ChangeFilter {
	return &ChangeFilter{
		hasher: hasher,
		seen:   make(map[string]uint64),
	}
}

// Prime records the current content of files without reporting them.
// Files that cannot be hashed are left unknown.
func (f *ChangeFilter) Prime(files []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, path := range files {
		if h, err := f.hasher.ComputeFileHash(path); err == nil {
			f.seen[path] = h
		}
	}
}

// Changes returns one event per path whose content changed, sorted by path.
// A removed file is reported once if it was known. Directories are ignored.
func (f *ChangeFilter) Changes(paths []string, now time.Time) []domain.ChangeEvent {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	f.mu.Lock()
	defer f.mu.Unlock()

	var events []domain.ChangeEvent
	for _, path := range sorted {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			if _, known := f.seen[path]; known {
				delete(f.seen, path)
				events = append(events, domain.ChangeEvent{Path: path, Op: domain.ChangeRemove, Timestamp: now})
			}
			continue
		}
		if err != nil || info.IsDir() {
			continue
		}

		h, err := f.hasher.ComputeFileHash(path)
		if err != nil {
			// Unreadable mid-write; report it and let the step see the final content.
			events = append(events, domain.ChangeEvent{Path: path, Op: domain.ChangeWrite, Timestamp: now})
			continue
		}
		if prev, known := f.seen[path]; known && prev == h {
			continue
		}
		f.seen[path] = h
		events = append(events, domain.ChangeEvent{Path: path, Op: domain.ChangeWrite, Timestamp: now})
	}
	return events
}
