// Package zipfile is a from-scratch codec for the ZIP archive container
// format: local file headers, the central directory, and the end-of-directory
// trailer are built and parsed directly as byte layouts.
//
// The engine operates on whole archives materialized in memory. Variable
// length regions are delimited by magic-number signature scans, checksums
// use a table-driven CRC-32, and the bookkeeping keeps the local-header and
// central-directory copies of shared metadata bit-identical. The Deflate
// algorithm itself is an external collaborator
// (github.com/klauspost/compress/flate); ZIP64, multi-disk archives, and
// encryption are rejected explicitly rather than mishandled.
//
// # Writing
//
//	a := zipfile.New()
//	if err := a.AddDir(ctx, "./src", zipfile.AddWithRecursive(true)); err != nil {
//	    return err
//	}
//	err := a.WriteToFile("src.zip")
//
// # Reading
//
//	a, err := zipfile.OpenFile("src.zip")
//	if err != nil {
//	    return err
//	}
//	err = a.Extract(ctx, "./out")
//
// Opening bytes that are not a ZIP archive fails with ErrNotArchive;
// structural damage surfaces as FormatError, checksum mismatches as
// IntegrityError.
package zipfile
