package zipfile

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger attaches a structured logger for debug-level operation events.
// Without it, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithFS substitutes the filesystem collaborator used for reading source
// files and writing archives and extracted content.
func WithFS(fsys FS) Option {
	return func(a *Archive) {
		a.fsys = fsys
	}
}

// addConfig holds configuration for AddFile and AddDir.
type addConfig struct {
	method    Method
	methodSet bool
	recursive bool
}

// AddOption configures AddFile and AddDir operations.
type AddOption func(*addConfig)

// AddWithMethod forces a compression method instead of the default choice
// (the size heuristic for AddFile, Deflate for AddDir).
func AddWithMethod(m Method) AddOption {
	return func(c *addConfig) {
		c.method = m
		c.methodSet = true
	}
}

// AddWithRecursive makes AddDir descend into subdirectories, preserving
// each file's relative path in its stored name.
func AddWithRecursive(recursive bool) AddOption {
	return func(c *addConfig) {
		c.recursive = recursive
	}
}

// extractConfig holds configuration for Extract.
type extractConfig struct {
	overwrite bool
}

// ExtractOption configures Extract operations.
type ExtractOption func(*extractConfig)

// ExtractWithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(c *extractConfig) {
		c.overwrite = overwrite
	}
}
