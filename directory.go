package zipfile

import (
	"encoding/binary"

	"github.com/zipforge/zipfile/internal/scan"
	"github.com/zipforge/zipfile/internal/wire"
)

// directoryDiskNumber is the disk-number-start value stamped into every
// directory record. The value 1 is what this format has always written;
// the reader tolerates any value in that field.
const directoryDiskNumber uint16 = 1

// centralDirectory accumulates per-entry directory records and the
// end-of-directory trailer on the write path.
type centralDirectory struct {
	records [][]byte

	// nextOffset is the running sum of registered entries' on-disk lengths;
	// it becomes the next record's relative local-header offset.
	nextOffset uint32

	size    uint32
	count   int
	trailer wire.EndOfDirectory
}

func newCentralDirectory() *centralDirectory {
	return &centralDirectory{}
}

// add appends a directory record for e and rebuilds the trailer.
//
// The fields shared with the local header are copied verbatim from the
// entry's assembled header buffer, never re-derived, so the two copies are
// guaranteed bit-identical.
func (d *centralDirectory) add(e *Entry) {
	name := e.header.Name()
	rec := make([]byte, wire.CentralDirectoryLen+len(name))
	binary.LittleEndian.PutUint32(rec[0:4], wire.CentralDirectorySignature)
	copy(rec[4:6], e.header.VersionNeeded()) // version made by
	copy(rec[6:8], e.header.VersionNeeded())
	copy(rec[8:10], e.header.Flags())
	copy(rec[10:12], e.header.Method())
	copy(rec[12:14], e.header.ModTime())
	copy(rec[14:16], e.header.ModDate())
	copy(rec[16:20], e.header.CRC32())
	copy(rec[20:24], e.header.CompressedSize())
	copy(rec[24:28], e.header.UncompressedSize())
	binary.LittleEndian.PutUint16(rec[28:30], uint16(len(name)))
	// Extra-field (30:32), comment (32:34), internal-attrs (36:38), and
	// external-attrs (38:42) reserved fields stay zero.
	binary.LittleEndian.PutUint16(rec[34:36], directoryDiskNumber)
	binary.LittleEndian.PutUint32(rec[42:46], d.nextOffset)
	copy(rec[46:], name)

	d.records = append(d.records, rec)
	d.size += uint32(len(rec))
	d.count++
	d.nextOffset += uint32(e.diskSize())
	d.rebuildTrailer()
}

// rebuildTrailer recomputes the end-of-directory record in full after every
// addition; the trailer is never patched incrementally.
func (d *centralDirectory) rebuildTrailer() {
	d.trailer = wire.EndOfDirectory{
		EntriesThisDisk: uint16(d.count),
		EntriesTotal:    uint16(d.count),
		DirectorySize:   d.size,
		DirectoryOffset: d.nextOffset,
	}
}

// encode serializes the directory records followed by the trailer.
func (d *centralDirectory) encode() []byte {
	out := make([]byte, 0, int(d.size)+wire.EndOfDirectoryLen)
	for _, rec := range d.records {
		out = append(out, rec...)
	}
	return append(out, d.trailer.Encode()...)
}

// parseArchive reconstructs all entries from a complete archive buffer.
//
// The end-of-directory trailer is the anchor: its signature must be the
// final occurrence of that pattern in the buffer. Directory records are
// delimited by successive directory signatures, not by their length fields,
// and entries come back in ascending signature order.
func parseArchive(buf []byte) ([]*Entry, error) {
	eocdOff, ok := scan.FindLast(buf, wire.Signature(wire.EndOfDirectorySignature))
	if !ok {
		return nil, ErrNotArchive
	}
	eocd, err := wire.DecodeEndOfDirectory(buf, eocdOff)
	if err != nil {
		return nil, formatErrf(eocdOff, "end-of-directory: %v", err)
	}
	if err := checkSupported(buf, eocdOff, eocd); err != nil {
		return nil, err
	}

	dirOff := int(eocd.DirectoryOffset)
	if dirOff > eocdOff {
		return nil, formatErrf(eocdOff, "directory offset %d beyond trailer offset %d", dirOff, eocdOff)
	}

	dirSig := wire.Signature(wire.CentralDirectorySignature)
	var offsets []int
	for pos := dirOff; ; {
		off, ok := scan.Find(buf[:eocdOff], dirSig, pos)
		if !ok {
			break
		}
		offsets = append(offsets, off)
		pos = off + scan.SignatureLen
	}
	if len(offsets) == 0 {
		return nil, ErrNotArchive
	}
	if len(offsets) != int(eocd.EntriesTotal) {
		return nil, formatErrf(dirOff, "found %d directory records, trailer says %d", len(offsets), eocd.EntriesTotal)
	}

	entries := make([]*Entry, 0, len(offsets))
	for i, off := range offsets {
		bound := eocdOff
		if i+1 < len(offsets) {
			bound = offsets[i+1]
		}
		rec, err := wire.DecodeCentralDirectoryHeader(buf[:bound], off)
		if err != nil {
			return nil, formatErrf(off, "directory record: %v", err)
		}

		entry, err := decodeEntry(buf, int(rec.LocalHeaderOffset), dirOff)
		if err != nil {
			return nil, err
		}
		if rec.CRC32 != entry.checksum ||
			rec.CompressedSize != entry.compressedSize ||
			rec.UncompressedSize != entry.uncompressedSize {
			return nil, formatErrf(off, "directory record disagrees with local header for %q", entry.name)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// checkSupported rejects ZIP64 and multi-disk archives outright instead of
// mishandling them.
func checkSupported(buf []byte, eocdOff int, eocd wire.EndOfDirectory) error {
	const saturated16, saturated32 = 0xFFFF, 0xFFFFFFFF
	if eocd.EntriesTotal == saturated16 || eocd.DirectorySize == saturated32 || eocd.DirectoryOffset == saturated32 {
		return &UnsupportedFeatureError{Feature: "zip64"}
	}
	// When present, the ZIP64 locator record sits immediately before the
	// trailer.
	if locOff := eocdOff - 20; locOff >= 0 {
		if off, ok := scan.Find(buf[:eocdOff], wire.Signature(wire.Zip64LocatorSignature), locOff); ok && off == locOff {
			return &UnsupportedFeatureError{Feature: "zip64"}
		}
	}
	if eocd.DiskNumber != 0 || eocd.DirectoryStartDisk != 0 || eocd.EntriesThisDisk != eocd.EntriesTotal {
		return &UnsupportedFeatureError{Feature: "multi-disk archive"}
	}
	return nil
}
