package zipfile

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FS is the filesystem collaborator consumed by the archive engine.
//
// The default implementation targets the host filesystem; tests and embedders
// can substitute their own via WithFS.
type FS interface {
	// ReadFile returns the full content of the named file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to the named file, replacing it atomically:
	// content goes to a temporary path first and is renamed into place on
	// success, so a failure never leaves a partially written destination.
	WriteFile(path string, data []byte) error

	// ReadDir returns the named directory's immediate entries.
	ReadDir(path string) ([]fs.DirEntry, error)

	// MkdirAll creates the named directory along with any missing parents.
	MkdirAll(path string) error

	// ModTime returns the named file's last-write timestamp.
	ModTime(path string) (time.Time, error)
}

// osFS is the host-filesystem implementation of FS.
type osFS struct{}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to a temp file then renames to path, ensuring atomic
// replacement of the target file.
func (osFS) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".zipfile-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (osFS) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

func (osFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o750)
}

func (osFS) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
