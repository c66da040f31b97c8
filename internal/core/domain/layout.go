package domain

import "path/filepath"

const (
	// ForgeDirName is the name of the internal state directory.
	ForgeDirName = ".forge"

	// StoreDirName is the name of the step cache directory.
	StoreDirName = "store"

	// ForgeFileName is the name of the project configuration file.
	ForgeFileName = "forge.yaml"

	// DefaultSourceDir is the source root used when the project file does not set one.
	DefaultSourceDir = "src"

	// DefaultOutputDir is the output root used when the project file does not set one.
	DefaultOutputDir = "dist"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// Layout holds the absolute directories of a project.
type Layout struct {
	Root   string
	Source string
	Output string
}

// NewLayout resolves source and output directories relative to root.
func NewLayout(root, source, output string) Layout {
	if source == "" {
		source = DefaultSourceDir
	}
	if output == "" {
		output = DefaultOutputDir
	}
	if !filepath.IsAbs(source) {
		source = filepath.Join(root, source)
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(root, output)
	}
	return Layout{
		Root:   filepath.Clean(root),
		Source: filepath.Clean(source),
		Output: filepath.Clean(output),
	}
}

// StateDir returns the absolute path of the internal state directory.
func (l Layout) StateDir() string {
	return filepath.Join(l.Root, ForgeDirName)
}

// DefaultForgePath returns the default root directory for forge metadata.
func DefaultForgePath() string {
	return ForgeDirName
}

// DefaultStorePath returns the default path for the step cache.
// It joins .forge and store.
func DefaultStorePath() string {
	return filepath.Join(ForgeDirName, StoreDirName)
}

// DefaultDebugLogPath returns the default path for the debug log.
// It joins .forge and debug.log.
func DefaultDebugLogPath() string {
	return filepath.Join(ForgeDirName, DebugLogFile)
}
