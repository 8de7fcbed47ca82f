// Package wire defines the fixed-layout ZIP container records and their
// byte-level encoding.
//
// Records are tagged structs with pure encode/decode functions at the
// package boundary; the packed little-endian form exists only for wire
// compatibility, never as the in-memory representation.
package wire

import (
	"encoding/binary"
	"errors"
)

// Record signatures. Every signature begins with the two-byte marker 0x4b50
// ("PK") identifying the record type.
const (
	LocalFileHeaderSignature  uint32 = 0x04034b50
	CentralDirectorySignature uint32 = 0x02014b50
	EndOfDirectorySignature   uint32 = 0x06054b50

	// ZIP64 records are recognized only to be rejected.
	Zip64EndOfDirectorySignature uint32 = 0x06064b50
	Zip64LocatorSignature        uint32 = 0x07064b50
)

// Fixed record sizes, excluding variable-length name/extra/comment tails.
const (
	LocalFileHeaderLen  = 30
	CentralDirectoryLen = 46
	EndOfDirectoryLen   = 22
)

// Compression method codes.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
)

// FlagEncrypted is general-purpose bit 0; encrypted entries are rejected.
const FlagEncrypted uint16 = 0x0001

// FlagUTF8 is general-purpose bit 11; when clear, non-ASCII names are
// interpreted as IBM Code Page 437.
const FlagUTF8 uint16 = 0x0800

// Structure decoding errors. Callers convert these to their format-error
// taxonomy at the codec boundary.
var (
	ErrTruncated    = errors.New("wire: truncated record")
	ErrBadSignature = errors.New("wire: signature mismatch")
)

// Signature returns the little-endian byte form of a record signature,
// suitable for buffer scanning.
func Signature(sig uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, sig)
	return b
}

// LocalFileHeader is the per-entry record preceding an entry's payload.
type LocalFileHeader struct {
	VersionNeeded    uint16
	Flags            uint16
	Method           uint16
	ModTime          uint16
	ModDate          uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	Name             []byte
	Extra            []byte
}

// Size returns the record's total on-disk length.
func (h *LocalFileHeader) Size() int {
	return LocalFileHeaderLen + len(h.Name) + len(h.Extra)
}

// Encode packs the header into its 30-byte fixed prefix followed by the
// name and extra-field bytes.
func (h *LocalFileHeader) Encode() []byte {
	buf := make([]byte, h.Size())
	binary.LittleEndian.PutUint32(buf[0:4], LocalFileHeaderSignature)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint16(buf[8:10], h.Method)
	binary.LittleEndian.PutUint16(buf[10:12], h.ModTime)
	binary.LittleEndian.PutUint16(buf[12:14], h.ModDate)
	binary.LittleEndian.PutUint32(buf[14:18], h.CRC32)
	binary.LittleEndian.PutUint32(buf[18:22], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[22:26], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[26:28], uint16(len(h.Name)))
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.Extra)))
	copy(buf[30:], h.Name)
	copy(buf[30+len(h.Name):], h.Extra)
	return buf
}

// DecodeLocalFileHeader parses a local file header from buf at off.
func DecodeLocalFileHeader(buf []byte, off int) (LocalFileHeader, error) {
	if off < 0 || len(buf)-off < LocalFileHeaderLen {
		return LocalFileHeader{}, ErrTruncated
	}
	b := buf[off:]
	if binary.LittleEndian.Uint32(b[0:4]) != LocalFileHeaderSignature {
		return LocalFileHeader{}, ErrBadSignature
	}
	h := LocalFileHeader{
		VersionNeeded:    binary.LittleEndian.Uint16(b[4:6]),
		Flags:            binary.LittleEndian.Uint16(b[6:8]),
		Method:           binary.LittleEndian.Uint16(b[8:10]),
		ModTime:          binary.LittleEndian.Uint16(b[10:12]),
		ModDate:          binary.LittleEndian.Uint16(b[12:14]),
		CRC32:            binary.LittleEndian.Uint32(b[14:18]),
		CompressedSize:   binary.LittleEndian.Uint32(b[18:22]),
		UncompressedSize: binary.LittleEndian.Uint32(b[22:26]),
	}
	nameLen := int(binary.LittleEndian.Uint16(b[26:28]))
	extraLen := int(binary.LittleEndian.Uint16(b[28:30]))
	if len(b) < LocalFileHeaderLen+nameLen+extraLen {
		return LocalFileHeader{}, ErrTruncated
	}
	h.Name = b[30 : 30+nameLen]
	h.Extra = b[30+nameLen : 30+nameLen+extraLen]
	return h, nil
}

// LocalHeaderBytes is an assembled local-file-header buffer. Its methods
// expose the fixed-offset fields as sub-slices of the buffer itself, so a
// consumer copying them is guaranteed byte identity with the header.
type LocalHeaderBytes []byte

func (b LocalHeaderBytes) VersionNeeded() []byte    { return b[4:6] }
func (b LocalHeaderBytes) Flags() []byte            { return b[6:8] }
func (b LocalHeaderBytes) Method() []byte           { return b[8:10] }
func (b LocalHeaderBytes) ModTime() []byte          { return b[10:12] }
func (b LocalHeaderBytes) ModDate() []byte          { return b[12:14] }
func (b LocalHeaderBytes) CRC32() []byte            { return b[14:18] }
func (b LocalHeaderBytes) CompressedSize() []byte   { return b[18:22] }
func (b LocalHeaderBytes) UncompressedSize() []byte { return b[22:26] }

func (b LocalHeaderBytes) Name() []byte {
	nameLen := int(binary.LittleEndian.Uint16(b[26:28]))
	return b[30 : 30+nameLen]
}

// CentralDirectoryHeader is the per-entry record in the central directory.
type CentralDirectoryHeader struct {
	VersionMadeBy     uint16
	VersionNeeded     uint16
	Flags             uint16
	Method            uint16
	ModTime           uint16
	ModDate           uint16
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	DiskNumberStart   uint16
	InternalAttrs     uint16
	ExternalAttrs     uint32
	LocalHeaderOffset uint32
	Name              []byte
}

// Size returns the record's total on-disk length. Extra fields and comments
// are never written, so the tail is the name alone.
func (h *CentralDirectoryHeader) Size() int {
	return CentralDirectoryLen + len(h.Name)
}

// Encode packs the record into its 46-byte fixed prefix followed by the
// name bytes. Extra-field and comment lengths are always zero.
func (h *CentralDirectoryHeader) Encode() []byte {
	buf := make([]byte, h.Size())
	binary.LittleEndian.PutUint32(buf[0:4], CentralDirectorySignature)
	binary.LittleEndian.PutUint16(buf[4:6], h.VersionMadeBy)
	binary.LittleEndian.PutUint16(buf[6:8], h.VersionNeeded)
	binary.LittleEndian.PutUint16(buf[8:10], h.Flags)
	binary.LittleEndian.PutUint16(buf[10:12], h.Method)
	binary.LittleEndian.PutUint16(buf[12:14], h.ModTime)
	binary.LittleEndian.PutUint16(buf[14:16], h.ModDate)
	binary.LittleEndian.PutUint32(buf[16:20], h.CRC32)
	binary.LittleEndian.PutUint32(buf[20:24], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[24:28], h.UncompressedSize)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(len(h.Name)))
	binary.LittleEndian.PutUint16(buf[30:32], 0) // extra-field length
	binary.LittleEndian.PutUint16(buf[32:34], 0) // comment length
	binary.LittleEndian.PutUint16(buf[34:36], h.DiskNumberStart)
	binary.LittleEndian.PutUint16(buf[36:38], h.InternalAttrs)
	binary.LittleEndian.PutUint32(buf[38:42], h.ExternalAttrs)
	binary.LittleEndian.PutUint32(buf[42:46], h.LocalHeaderOffset)
	copy(buf[46:], h.Name)
	return buf
}

// DecodeCentralDirectoryHeader parses a central-directory record from buf at
// off. The name is bounded by the record's own name-length field; the caller
// bounds the record itself by signature offsets.
func DecodeCentralDirectoryHeader(buf []byte, off int) (CentralDirectoryHeader, error) {
	if off < 0 || len(buf)-off < CentralDirectoryLen {
		return CentralDirectoryHeader{}, ErrTruncated
	}
	b := buf[off:]
	if binary.LittleEndian.Uint32(b[0:4]) != CentralDirectorySignature {
		return CentralDirectoryHeader{}, ErrBadSignature
	}
	h := CentralDirectoryHeader{
		VersionMadeBy:     binary.LittleEndian.Uint16(b[4:6]),
		VersionNeeded:     binary.LittleEndian.Uint16(b[6:8]),
		Flags:             binary.LittleEndian.Uint16(b[8:10]),
		Method:            binary.LittleEndian.Uint16(b[10:12]),
		ModTime:           binary.LittleEndian.Uint16(b[12:14]),
		ModDate:           binary.LittleEndian.Uint16(b[14:16]),
		CRC32:             binary.LittleEndian.Uint32(b[16:20]),
		CompressedSize:    binary.LittleEndian.Uint32(b[20:24]),
		UncompressedSize:  binary.LittleEndian.Uint32(b[24:28]),
		DiskNumberStart:   binary.LittleEndian.Uint16(b[34:36]),
		InternalAttrs:     binary.LittleEndian.Uint16(b[36:38]),
		ExternalAttrs:     binary.LittleEndian.Uint32(b[38:42]),
		LocalHeaderOffset: binary.LittleEndian.Uint32(b[42:46]),
	}
	nameLen := int(binary.LittleEndian.Uint16(b[28:30]))
	if len(b) < CentralDirectoryLen+nameLen {
		return CentralDirectoryHeader{}, ErrTruncated
	}
	h.Name = b[46 : 46+nameLen]
	return h, nil
}

// EndOfDirectory is the trailer record anchoring the central directory.
// Archive comments are not supported, so the record is always 22 bytes.
type EndOfDirectory struct {
	DiskNumber         uint16
	DirectoryStartDisk uint16
	EntriesThisDisk    uint16
	EntriesTotal       uint16
	DirectorySize      uint32
	DirectoryOffset    uint32
}

// Encode packs the trailer with a zero comment length.
func (e *EndOfDirectory) Encode() []byte {
	buf := make([]byte, EndOfDirectoryLen)
	binary.LittleEndian.PutUint32(buf[0:4], EndOfDirectorySignature)
	binary.LittleEndian.PutUint16(buf[4:6], e.DiskNumber)
	binary.LittleEndian.PutUint16(buf[6:8], e.DirectoryStartDisk)
	binary.LittleEndian.PutUint16(buf[8:10], e.EntriesThisDisk)
	binary.LittleEndian.PutUint16(buf[10:12], e.EntriesTotal)
	binary.LittleEndian.PutUint32(buf[12:16], e.DirectorySize)
	binary.LittleEndian.PutUint32(buf[16:20], e.DirectoryOffset)
	binary.LittleEndian.PutUint16(buf[20:22], 0) // comment length
	return buf
}

// DecodeEndOfDirectory parses the trailer from buf at off.
func DecodeEndOfDirectory(buf []byte, off int) (EndOfDirectory, error) {
	if off < 0 || len(buf)-off < EndOfDirectoryLen {
		return EndOfDirectory{}, ErrTruncated
	}
	b := buf[off:]
	if binary.LittleEndian.Uint32(b[0:4]) != EndOfDirectorySignature {
		return EndOfDirectory{}, ErrBadSignature
	}
	return EndOfDirectory{
		DiskNumber:         binary.LittleEndian.Uint16(b[4:6]),
		DirectoryStartDisk: binary.LittleEndian.Uint16(b[6:8]),
		EntriesThisDisk:    binary.LittleEndian.Uint16(b[8:10]),
		EntriesTotal:       binary.LittleEndian.Uint16(b[10:12]),
		DirectorySize:      binary.LittleEndian.Uint32(b[12:16]),
		DirectoryOffset:    binary.LittleEndian.Uint32(b[16:20]),
	}, nil
}
