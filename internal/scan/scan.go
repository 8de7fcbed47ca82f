// Package scan locates four-byte record signatures inside an archive buffer.
//
// Scans are pure functions over an immutable slice: callers pass an explicit
// start offset and receive an explicit match offset, there is no cursor.
package scan

import "bytes"

// SignatureLen is the length of every ZIP record signature.
const SignatureLen = 4

// Find returns the offset of the first exact match of sig in buf at or after
// from. ok is false when no match exists or from is out of range.
func Find(buf, sig []byte, from int) (off int, ok bool) {
	if from < 0 || from > len(buf) || len(sig) != SignatureLen {
		return 0, false
	}
	i := bytes.Index(buf[from:], sig)
	if i < 0 {
		return 0, false
	}
	return from + i, true
}

// FindLast returns the offset of the final occurrence of sig in buf.
// The end-of-directory anchor uses this: the trailer signature must be the
// last occurrence of its pattern in the archive.
func FindLast(buf, sig []byte) (off int, ok bool) {
	if len(sig) != SignatureLen {
		return 0, false
	}
	i := bytes.LastIndex(buf, sig)
	if i < 0 {
		return 0, false
	}
	return i, true
}
