package zipfile

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Extract writes every entry's decoded content under dest.
//
// An entry whose name ends with a path separator becomes a created
// directory, never a zero-byte file. For file entries any missing
// intermediate directories implied by the relative path are created first.
// Existing files are skipped unless ExtractWithOverwrite is set.
func (a *Archive) Extract(ctx context.Context, dest string, opts ...ExtractOption) error {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, e := range a.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.extractEntry(e, dest, &cfg); err != nil {
			return err
		}
	}
	a.log().Debug("archive extracted", "dest", dest, "entries", len(a.entries))
	return nil
}

func (a *Archive) extractEntry(e *Entry, dest string, cfg *extractConfig) error {
	isDir := strings.HasSuffix(e.name, "/")
	clean := strings.TrimSuffix(e.name, "/")

	// Reject traversal and absolute names before touching the filesystem.
	if !fs.ValidPath(clean) {
		return &fs.PathError{Op: "extract", Path: e.name, Err: fs.ErrInvalid}
	}
	target := filepath.Join(dest, filepath.FromSlash(clean))

	if isDir {
		if err := a.fsys.MkdirAll(target); err != nil {
			return fmt.Errorf("create directory %s: %w", target, err)
		}
		return nil
	}

	if parent := filepath.Dir(target); parent != "." {
		if err := a.fsys.MkdirAll(parent); err != nil {
			return fmt.Errorf("create directory %s: %w", parent, err)
		}
	}

	if !cfg.overwrite {
		// The last-write probe doubles as an existence check.
		if _, err := a.fsys.ModTime(target); err == nil {
			a.log().Debug("entry skipped, destination exists", "name", e.name)
			return nil
		}
	}

	if err := a.fsys.WriteFile(target, e.data); err != nil {
		return fmt.Errorf("extract %s: %w", e.name, err)
	}
	return nil
}
