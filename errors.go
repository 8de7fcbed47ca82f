package zipfile

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrNotArchive is returned when the end-of-directory or start-of-directory
	// signature cannot be located in the input.
	ErrNotArchive = errors.New("zipfile: not a valid archive")

	// ErrFormat is the root of all structural decoding failures.
	ErrFormat = errors.New("zipfile: malformed archive")

	// ErrIntegrity is the root of checksum verification failures.
	ErrIntegrity = errors.New("zipfile: integrity check failed")

	// ErrUnsupported is the root of rejections for archive features outside
	// the supported subset (ZIP64, encryption, multi-disk).
	ErrUnsupported = errors.New("zipfile: unsupported feature")
)

// FormatError reports a missing or mismatched signature, a truncated
// structure, or inconsistent length fields while decoding a record.
// It matches ErrFormat under errors.Is.
type FormatError struct {
	// Offset is the byte offset in the archive where decoding failed.
	Offset int

	// Reason describes what was wrong with the structure.
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("zipfile: malformed archive at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// formatErrf builds a FormatError at the given offset.
func formatErrf(offset int, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// IntegrityError reports a mismatch between an entry's recorded checksum and
// the checksum recomputed over its decoded payload.
// It matches ErrIntegrity under errors.Is.
type IntegrityError struct {
	Name string
	Want uint32
	Got  uint32
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("zipfile: checksum mismatch for %q: header %08x, payload %08x", e.Name, e.Want, e.Got)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// UnsupportedFeatureError reports an explicit rejection of an archive feature
// outside the supported subset, rather than silent mishandling.
// It matches ErrUnsupported under errors.Is.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return "zipfile: unsupported feature: " + e.Feature
}

func (e *UnsupportedFeatureError) Unwrap() error { return ErrUnsupported }
