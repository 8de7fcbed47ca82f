package zipfile

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zipforge/zipfile/internal/wire"
)

func testEntry(t *testing.T, name, content string, method Method) *Entry {
	t.Helper()
	e, err := NewEntry(name, []byte(content), time.Unix(1700000000, 0), method)
	require.NoError(t, err)
	return e
}

func TestCentralDirectory_RecordCopiesHeaderFields(t *testing.T) {
	t.Parallel()

	e := testEntry(t, "copy.txt", "field copy fidelity", Deflate)

	dir := newCentralDirectory()
	dir.add(e)
	require.Len(t, dir.records, 1)
	rec := dir.records[0]

	// Shared fields are byte-identical between the local header and the
	// directory record.
	assert.Equal(t, []byte(e.header.VersionNeeded()), rec[4:6])
	assert.Equal(t, []byte(e.header.VersionNeeded()), rec[6:8])
	assert.Equal(t, []byte(e.header.Flags()), rec[8:10])
	assert.Equal(t, []byte(e.header.Method()), rec[10:12])
	assert.Equal(t, []byte(e.header.ModTime()), rec[12:14])
	assert.Equal(t, []byte(e.header.ModDate()), rec[14:16])
	assert.Equal(t, []byte(e.header.CRC32()), rec[16:20])
	assert.Equal(t, []byte(e.header.CompressedSize()), rec[20:24])
	assert.Equal(t, []byte(e.header.UncompressedSize()), rec[24:28])
	assert.Equal(t, []byte(e.header.Name()), rec[46:])

	assert.Equal(t, directoryDiskNumber, binary.LittleEndian.Uint16(rec[34:36]))
}

func TestCentralDirectory_OffsetsAreRunningSums(t *testing.T) {
	t.Parallel()

	first := testEntry(t, "first.txt", "aaaaaaaaaa", Store)
	second := testEntry(t, "second.txt", "bbbbbbbbbb", Store)
	third := testEntry(t, "third.txt", "cccccccccc", Deflate)

	dir := newCentralDirectory()
	dir.add(first)
	dir.add(second)
	dir.add(third)

	offsetOf := func(rec []byte) uint32 { return binary.LittleEndian.Uint32(rec[42:46]) }
	assert.Equal(t, uint32(0), offsetOf(dir.records[0]))
	assert.Equal(t, uint32(first.diskSize()), offsetOf(dir.records[1]))
	assert.Equal(t, uint32(first.diskSize()+second.diskSize()), offsetOf(dir.records[2]))
}

func TestCentralDirectory_TrailerRebuiltPerAdd(t *testing.T) {
	t.Parallel()

	dir := newCentralDirectory()
	assert.Equal(t, wire.EndOfDirectory{}, dir.trailer)

	e1 := testEntry(t, "one", "11111", Store)
	dir.add(e1)
	assert.Equal(t, uint16(1), dir.trailer.EntriesTotal)
	assert.Equal(t, uint16(1), dir.trailer.EntriesThisDisk)
	assert.Equal(t, uint32(e1.diskSize()), dir.trailer.DirectoryOffset)
	assert.Equal(t, dir.size, dir.trailer.DirectorySize)

	e2 := testEntry(t, "two", "22222", Store)
	dir.add(e2)
	assert.Equal(t, uint16(2), dir.trailer.EntriesTotal)
	assert.Equal(t, uint32(e1.diskSize()+e2.diskSize()), dir.trailer.DirectoryOffset)
	assert.Equal(t, dir.size, dir.trailer.DirectorySize)
}

func TestParseArchive_NotArchive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("this is just some plain text, not an archive at all")},
		{"short binary", []byte{0x50, 0x4B}},
		{"local header only", append(wire.Signature(wire.LocalFileHeaderSignature), make([]byte, 40)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseArchive(tt.data)
			assert.ErrorIs(t, err, ErrNotArchive)
		})
	}
}

func TestParseArchive_TruncatedTrailer(t *testing.T) {
	t.Parallel()

	// A trailer signature with fewer than 22 bytes behind it.
	data := append([]byte("padding"), wire.Signature(wire.EndOfDirectorySignature)...)
	data = append(data, 0x00, 0x00)

	_, err := parseArchive(data)
	assert.ErrorIs(t, err, ErrFormat)
}

func archiveBytes(t *testing.T, entries ...*Entry) []byte {
	t.Helper()
	a := New()
	for _, e := range entries {
		a.AddEntry(e)
	}
	data, err := a.Bytes()
	require.NoError(t, err)
	return data
}

func TestParseArchive_CountMismatch(t *testing.T) {
	t.Parallel()

	data := archiveBytes(t, testEntry(t, "only.txt", "solo", Store))

	// Patch both trailer entry counts so the multi-disk probe stays quiet.
	eocd := len(data) - wire.EndOfDirectoryLen
	binary.LittleEndian.PutUint16(data[eocd+8:eocd+10], 2)
	binary.LittleEndian.PutUint16(data[eocd+10:eocd+12], 2)

	_, err := parseArchive(data)
	require.ErrorIs(t, err, ErrFormat)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Reason, "trailer says 2")
}

func TestParseArchive_Zip64Rejected(t *testing.T) {
	t.Parallel()

	data := archiveBytes(t, testEntry(t, "f", "x", Store))
	eocd := len(data) - wire.EndOfDirectoryLen
	binary.LittleEndian.PutUint32(data[eocd+16:eocd+20], 0xFFFFFFFF)

	_, err := parseArchive(data)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseArchive_MultiDiskRejected(t *testing.T) {
	t.Parallel()

	data := archiveBytes(t, testEntry(t, "f", "x", Store))
	eocd := len(data) - wire.EndOfDirectoryLen
	binary.LittleEndian.PutUint16(data[eocd+4:eocd+6], 1)

	_, err := parseArchive(data)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseArchive_EncryptedEntryRejected(t *testing.T) {
	t.Parallel()

	data := archiveBytes(t, testEntry(t, "locked.txt", "secret", Store))

	// Set general-purpose bit 0 in the local header (offset 0 in a
	// single-entry archive).
	data[6] |= 0x01

	_, err := parseArchive(data)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseArchive_TamperedPayload(t *testing.T) {
	t.Parallel()

	content := "payload whose checksum is about to stop matching"
	data := archiveBytes(t, testEntry(t, "t.txt", content, Store))

	// Flip one payload byte; the header and directory copies still agree,
	// so only the recomputed checksum can notice.
	payloadOff := 30 + len("t.txt")
	data[payloadOff] ^= 0xFF

	_, err := parseArchive(data)
	require.ErrorIs(t, err, ErrIntegrity)
	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "t.txt", ierr.Name)
}

func TestParseArchive_DirectoryHeaderDisagrees(t *testing.T) {
	t.Parallel()

	data := archiveBytes(t, testEntry(t, "d.txt", "consistent", Store))

	// Corrupt the checksum copy in the directory record only.
	dirSig := wire.Signature(wire.CentralDirectorySignature)
	dirOff := -1
	for i := range data[:len(data)-3] {
		if data[i] == dirSig[0] && data[i+1] == dirSig[1] && data[i+2] == dirSig[2] && data[i+3] == dirSig[3] {
			dirOff = i
		}
	}
	require.GreaterOrEqual(t, dirOff, 0)
	data[dirOff+16] ^= 0xFF

	_, err := parseArchive(data)
	require.ErrorIs(t, err, ErrFormat)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Reason, "disagrees")
}
