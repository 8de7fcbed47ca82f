package zipfile

import (
	"bytes"
	"fmt"
	"io"
)

// WriteTo serializes the archive as entry blocks followed by the directory
// records and trailer. It implements io.WriterTo.
//
// Every current entry is registered with a fresh central directory in sorted
// order, so each directory record's relative offset equals the sum of the
// on-disk lengths of the entries preceding it.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	dir := newCentralDirectory()

	var written int64
	for _, e := range a.entries {
		dir.add(e)
		n, err := w.Write(e.header)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write entry header %s: %w", e.name, err)
		}
		n, err = w.Write(e.payload)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write entry payload %s: %w", e.name, err)
		}
	}

	n, err := w.Write(dir.encode())
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write central directory: %w", err)
	}
	return written, nil
}

// Bytes returns the fully serialized archive.
func (a *Archive) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteToFile serializes the archive and writes it to the named file.
//
// The filesystem collaborator writes atomically (temp path plus rename), so
// a failure never leaves a partially written destination.
func (a *Archive) WriteToFile(path string) error {
	data, err := a.Bytes()
	if err != nil {
		return err
	}
	if err := a.fsys.WriteFile(path, data); err != nil {
		return fmt.Errorf("write archive %s: %w", path, err)
	}
	a.log().Debug("archive written", "path", path, "bytes", len(data), "entries", len(a.entries))
	return nil
}
