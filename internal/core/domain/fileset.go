package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// FileSet is a sorted, duplicate-free set of file paths flowing between transform steps.
type FileSet struct {
	paths []string
}

// NewFileSet builds a FileSet from paths, cleaning, sorting and de-duplicating them.
func NewFileSet(paths ...string) FileSet {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		cleaned = append(cleaned, filepath.Clean(p))
	}
	slices.Sort(cleaned)
	return FileSet{paths: slices.Compact(cleaned)}
}

// Paths returns a copy of the paths in sorted order.
func (fs FileSet) Paths() []string {
	return slices.Clone(fs.paths)
}

// Len returns the number of files in the set.
func (fs FileSet) Len() int {
	return len(fs.paths)
}

// Empty reports whether the set holds no files.
func (fs FileSet) Empty() bool {
	return len(fs.paths) == 0
}

// Contains reports whether path is part of the set.
func (fs FileSet) Contains(path string) bool {
	_, found := slices.BinarySearch(fs.paths, filepath.Clean(path))
	return found
}

// Union returns the set of files present in fs or other.
func (fs FileSet) Union(other FileSet) FileSet {
	return NewFileSet(append(fs.Paths(), other.paths...)...)
}

// Filter returns the files for which keep returns true.
func (fs FileSet) Filter(keep func(string) bool) FileSet {
	out := make([]string, 0, len(fs.paths))
	for _, p := range fs.paths {
		if keep(p) {
			out = append(out, p)
		}
	}
	return FileSet{paths: out}
}

// Rel returns the paths relative to base, keeping those outside base unchanged.
func (fs FileSet) Rel(base string) []string {
	out := make([]string, len(fs.paths))
	for i, p := range fs.paths {
		rel, err := filepath.Rel(base, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			out[i] = p
			continue
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}
