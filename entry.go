package zipfile

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/zipforge/zipfile/internal/codec"
	"github.com/zipforge/zipfile/internal/crc"
	"github.com/zipforge/zipfile/internal/scan"
	"github.com/zipforge/zipfile/internal/wire"
)

// Method identifies the compression method of an archive entry.
type Method uint16

const (
	// Store keeps payload bytes unmodified.
	Store Method = Method(wire.MethodStore)

	// Deflate compresses payloads with raw deflate.
	Deflate Method = Method(wire.MethodDeflate)
)

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// Version-needed-to-extract, encoded as the (major, minor) pair 2.0.
const (
	versionNeededMajor = 2
	versionNeededMinor = 0
	versionNeeded      = uint16(versionNeededMajor*10 + versionNeededMinor)
)

// Entry is one archived file: its frozen local header, its on-disk payload,
// and its decoded content.
//
// Entries are immutable once built. The write path freezes every header
// field at construction; the read path decodes the payload at construction
// with no further laziness.
type Entry struct {
	name             string
	method           Method
	checksum         uint32
	compressedSize   uint32
	uncompressedSize uint32

	// header is the assembled local-file-header block. Directory records
	// copy their shared fields from sub-slices of this buffer, which is
	// what keeps the two copies bit-identical.
	header wire.LocalHeaderBytes

	// payload is the (possibly compressed) on-disk form.
	payload []byte

	// data is the decoded content.
	data []byte
}

// NewEntry builds an entry from raw content.
//
// The checksum is computed over the raw bytes, the payload is compressed
// eagerly when the method is Deflate, and the header is assembled and frozen
// before NewEntry returns. modTime is packed into the header's time and date
// fields. No data-descriptor record is ever emitted.
func NewEntry(name string, content []byte, modTime time.Time, method Method) (*Entry, error) {
	c, ok := codec.ForMethod(uint16(method))
	if !ok {
		return nil, &UnsupportedFeatureError{Feature: "compression method " + method.String()}
	}

	payload, err := c.Compress(content)
	if err != nil {
		return nil, err
	}

	modT, modD := packTimestamp(modTime)
	hdr := wire.LocalFileHeader{
		VersionNeeded:    versionNeeded,
		Flags:            0,
		Method:           uint16(method),
		ModTime:          modT,
		ModDate:          modD,
		CRC32:            crc.Checksum(content),
		CompressedSize:   uint32(len(payload)),
		UncompressedSize: uint32(len(content)),
		Name:             []byte(name),
	}

	return &Entry{
		name:             name,
		method:           method,
		checksum:         hdr.CRC32,
		compressedSize:   hdr.CompressedSize,
		uncompressedSize: hdr.UncompressedSize,
		header:           hdr.Encode(),
		payload:          payload,
		data:             slices.Clone(content),
	}, nil
}

// decodeEntry reconstructs an entry from an archive buffer.
//
// off is the local-header offset and dirOff the known start of the central
// directory, which bounds every payload. A stored payload runs from the end
// of the header to the next local-header signature, or to dirOff when no
// further signature exists. A deflated payload is inflated to exactly the
// header's uncompressed size. The decoded content is verified against the
// header checksum.
func decodeEntry(buf []byte, off, dirOff int) (*Entry, error) {
	hdr, err := wire.DecodeLocalFileHeader(buf[:dirOff], off)
	if err != nil {
		return nil, formatErrf(off, "local file header: %v", err)
	}
	if hdr.Flags&wire.FlagEncrypted != 0 {
		return nil, &UnsupportedFeatureError{Feature: "encryption"}
	}

	c, ok := codec.ForMethod(hdr.Method)
	if !ok {
		return nil, &UnsupportedFeatureError{Feature: "compression method code " + strconv.Itoa(int(hdr.Method))}
	}

	dataOff := off + hdr.Size()
	if dataOff > dirOff {
		return nil, formatErrf(off, "header extends past central directory")
	}

	var payload []byte
	switch hdr.Method {
	case wire.MethodStore:
		// The span is signature-delimited, not length-delimited.
		end := dirOff
		if next, ok := scan.Find(buf[:dirOff], wire.Signature(wire.LocalFileHeaderSignature), dataOff); ok {
			end = next
		}
		payload = buf[dataOff:end]
	case wire.MethodDeflate:
		end := dataOff + int(hdr.CompressedSize)
		if end > dirOff {
			return nil, formatErrf(off, "compressed size %d exceeds remaining space", hdr.CompressedSize)
		}
		payload = buf[dataOff:dirOff]
	}

	data, err := c.Decompress(payload, int(hdr.UncompressedSize))
	if err != nil {
		return nil, formatErrf(dataOff, "payload: %v", err)
	}

	name, err := decodeName(hdr.Name, hdr.Flags)
	if err != nil {
		return nil, formatErrf(off, "filename: %v", err)
	}

	if got := crc.Checksum(data); got != hdr.CRC32 {
		return nil, &IntegrityError{Name: name, Want: hdr.CRC32, Got: got}
	}

	if hdr.Method == wire.MethodStore {
		payload = payload[:hdr.UncompressedSize]
	} else {
		payload = payload[:hdr.CompressedSize]
	}

	return &Entry{
		name:             name,
		method:           Method(hdr.Method),
		checksum:         hdr.CRC32,
		compressedSize:   hdr.CompressedSize,
		uncompressedSize: hdr.UncompressedSize,
		header:           slices.Clone(buf[off : off+hdr.Size()]),
		payload:          slices.Clone(payload),
		data:             data,
	}, nil
}

// Name returns the entry's stored filename. Names use forward slashes; a
// trailing slash marks a directory entry.
func (e *Entry) Name() string { return e.name }

// Method returns the entry's compression method.
func (e *Entry) Method() Method { return e.method }

// Checksum returns the CRC-32 of the entry's uncompressed content.
func (e *Entry) Checksum() uint32 { return e.checksum }

// CompressedSize returns the on-disk payload length in bytes.
func (e *Entry) CompressedSize() uint32 { return e.compressedSize }

// UncompressedSize returns the decoded content length in bytes.
func (e *Entry) UncompressedSize() uint32 { return e.uncompressedSize }

// Data returns the entry's decoded content. The slice is owned by the entry
// and must be treated as immutable.
func (e *Entry) Data() []byte { return e.data }

// diskSize returns the entry's total on-disk length: header block plus
// payload. Directory offsets are running sums of this value.
func (e *Entry) diskSize() int {
	return len(e.header) + len(e.payload)
}

// CompareDescending orders entries by filename in descending lexical order,
// the order this format writes its local entries and directory records.
func CompareDescending(a, b *Entry) int {
	return strings.Compare(b.name, a.name)
}

// packTimestamp packs a last-write timestamp into the header's two 16-bit
// time and date fields. The packing is a simplified split of the Unix
// timestamp (low half into the time field, high half into the date field),
// not the MS-DOS encoding.
func packTimestamp(t time.Time) (modTime, modDate uint16) {
	unix := t.Unix()
	return uint16(unix & 0xFFFF), uint16(unix >> 16 & 0xFFFF)
}

// decodeName interprets stored filename bytes. Names are ASCII as written by
// this package; for third-party archives, non-ASCII bytes without the UTF-8
// flag are decoded as IBM Code Page 437.
func decodeName(name []byte, flags uint16) (string, error) {
	if flags&wire.FlagUTF8 != 0 || isASCII(name) {
		return string(name), nil
	}
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(name)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func isASCII(p []byte) bool {
	for _, b := range p {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
