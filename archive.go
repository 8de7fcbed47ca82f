package zipfile

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// autoStoreThreshold is the size heuristic for automatic method selection:
// files at or below this many bytes are stored, larger files are deflated.
// The choice looks only at size, never at content.
const autoStoreThreshold = 1024

// Archive is an in-memory ZIP archive.
//
// A write-mode archive starts empty and accumulates entries; an archive
// opened from existing bytes holds its entries in ascending
// directory-signature order. The whole archive is materialized in memory in
// both directions. An Archive is not safe for concurrent mutation; read-only
// fan-out over already-decoded entries needs no locking.
type Archive struct {
	entries []*Entry
	fsys    FS
	logger  *slog.Logger

	// dirRoot is the base for relative-name computation; the first AddDir
	// call establishes it for all subsequent calls.
	dirRoot string
}

// New creates an empty archive for writing.
func New(opts ...Option) *Archive {
	a := &Archive{fsys: osFS{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// log returns the logger, falling back to a discard logger if nil.
func (a *Archive) log() *slog.Logger {
	if a.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.logger
}

// Open parses a complete archive held in memory.
//
// Open locates the end-of-directory trailer and the start of the central
// directory by signature scan; if either signature is absent it fails with
// ErrNotArchive and no partial archive state. Entries come back in ascending
// directory-signature order, which for third-party archives is not
// guaranteed to match the order they were added in.
func Open(data []byte, opts ...Option) (*Archive, error) {
	a := New(opts...)
	entries, err := parseArchive(data)
	if err != nil {
		return nil, err
	}
	a.entries = entries
	a.log().Debug("archive opened", "bytes", len(data), "entries", len(entries))
	return a, nil
}

// OpenFile loads the named file fully into memory and parses it with Open
// semantics.
func OpenFile(path string, opts ...Option) (*Archive, error) {
	a := New(opts...)
	data, err := a.fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	entries, err := parseArchive(data)
	if err != nil {
		return nil, err
	}
	a.entries = entries
	a.log().Debug("archive opened", "path", path, "bytes", len(data), "entries", len(entries))
	return a, nil
}

// AddEntry inserts e and re-sorts the full entry list with the
// descending-name comparator. The eager re-sort per call is quadratic over a
// whole archive but preserves the established write order exactly.
func (a *Archive) AddEntry(e *Entry) {
	a.entries = append(a.entries, e)
	slices.SortFunc(a.entries, CompareDescending)
}

// AddFile reads the named file and adds it under its base name.
//
// Without AddWithMethod the method is chosen by the size heuristic: Store
// for files of at most autoStoreThreshold bytes, Deflate otherwise.
func (a *Archive) AddFile(path string, opts ...AddOption) error {
	cfg := addConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	content, err := a.fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	modTime, err := a.fsys.ModTime(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	method := cfg.method
	if !cfg.methodSet {
		method = Deflate
		if len(content) <= autoStoreThreshold {
			method = Store
		}
	}

	e, err := NewEntry(filepath.ToSlash(filepath.Base(path)), content, modTime, method)
	if err != nil {
		return err
	}
	a.AddEntry(e)
	a.log().Debug("file added", "name", e.Name(), "method", method.String(), "size", len(content))
	return nil
}

// AddDir adds the immediate files of the named directory, each with Deflate
// (unless AddWithMethod overrides) and a name relative to the directory
// root. The first AddDir call establishes the root used for all relative
// name computation. With AddWithRecursive the walk descends into
// subdirectories, preserving relative paths in the stored names.
//
// Entries compress in parallel; the subsequent AddEntry pass is sequential,
// so the final on-disk ordering is identical to a serial run.
func (a *Archive) AddDir(ctx context.Context, path string, opts ...AddOption) error {
	cfg := addConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if a.dirRoot == "" {
		a.dirRoot = path
	}

	paths, err := a.enumerate(ctx, path, cfg.recursive)
	if err != nil {
		return err
	}

	method := Deflate
	if cfg.methodSet {
		method = cfg.method
	}

	entries := make([]*Entry, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(a.dirRoot, p)
			if err != nil {
				return err
			}
			content, err := a.fsys.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			modTime, err := a.fsys.ModTime(p)
			if err != nil {
				return fmt.Errorf("stat %s: %w", p, err)
			}
			e, err := NewEntry(filepath.ToSlash(rel), content, modTime, method)
			if err != nil {
				return err
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, e := range entries {
		a.AddEntry(e)
	}
	a.log().Debug("directory added", "path", path, "entries", len(entries), "recursive", cfg.recursive)
	return nil
}

// enumerate lists the files under dir, immediate or recursive, in directory
// read order.
func (a *Archive) enumerate(ctx context.Context, dir string, recursive bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirents, err := a.fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", dir, err)
	}

	var paths, subdirs []string
	for _, de := range dirents {
		p := filepath.Join(dir, de.Name())
		if de.IsDir() {
			subdirs = append(subdirs, p)
			continue
		}
		paths = append(paths, p)
	}
	if recursive {
		for _, sub := range subdirs {
			nested, err := a.enumerate(ctx, sub, true)
			if err != nil {
				return nil, err
			}
			paths = append(paths, nested...)
		}
	}
	return paths, nil
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Entry returns the entry with the given stored name.
func (a *Archive) Entry(name string) (*Entry, bool) {
	for _, e := range a.entries {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// Entries returns an iterator over the archive's entries in their current
// order: descending-name order on the write path, ascending
// directory-signature order after Open.
func (a *Archive) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range a.entries {
			if !yield(e) {
				return
			}
		}
	}
}
