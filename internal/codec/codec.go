// Package codec provides the per-method payload transforms for archive
// entries.
//
// The method set is the closed pair {Store, Deflate}; each method is one
// Codec implementation, so new methods extend the table without touching
// the framing logic. Deflate is an external collaborator
// (github.com/klauspost/compress/flate), never reimplemented here.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/flate"

	"github.com/zipforge/zipfile/internal/wire"
)

// Codec compresses payloads for writing and decompresses them on read.
type Codec interface {
	// Compress transforms raw payload bytes into their on-disk form.
	Compress(p []byte) ([]byte, error)

	// Decompress recovers exactly expectedLen raw bytes from the on-disk
	// stream beginning at data. Trailing bytes beyond the compressed
	// payload are ignored.
	Decompress(data []byte, expectedLen int) ([]byte, error)
}

// ForMethod returns the codec for a compression-method code.
// ok is false for methods outside the supported set.
func ForMethod(method uint16) (Codec, bool) {
	switch method {
	case wire.MethodStore:
		return storeCodec{}, true
	case wire.MethodDeflate:
		return deflateCodec{}, true
	default:
		return nil, false
	}
}

// storeCodec keeps payload bytes unmodified.
type storeCodec struct{}

func (storeCodec) Compress(p []byte) ([]byte, error) {
	return slices.Clone(p), nil
}

func (storeCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	if expectedLen < 0 || len(data) < expectedLen {
		return nil, fmt.Errorf("stored payload is %d bytes, need %d", len(data), expectedLen)
	}
	return slices.Clone(data[:expectedLen]), nil
}

// deflateCodec is raw deflate via klauspost/compress.
type deflateCodec struct{}

func (deflateCodec) Compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("create deflate writer: %w", err)
	}
	if _, err := w.Write(p); err != nil {
		return nil, fmt.Errorf("deflate payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("flush deflate stream: %w", err)
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Decompress(data []byte, expectedLen int) ([]byte, error) {
	if expectedLen < 0 {
		return nil, fmt.Errorf("negative payload length %d", expectedLen)
	}
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out := make([]byte, expectedLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("inflate payload: %w", err)
	}
	return out, nil
}
