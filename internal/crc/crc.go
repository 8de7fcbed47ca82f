// Package crc implements the CRC-32/ISO-HDLC checksum used by the ZIP
// container format.
//
// The implementation is table-driven: a 256-entry lookup table is derived
// once from the reflected polynomial and every checksum is a single O(n)
// pass over the input.
package crc

// poly is the reflected form of the CRC-32/ISO-HDLC generator polynomial.
const poly = 0xEDB88320

// table holds one precomputed remainder per byte value.
var table = makeTable()

func makeTable() [256]uint32 {
	var t [256]uint32
	for i := range t {
		r := uint32(i)
		for range 8 {
			if r&1 == 1 {
				r = r>>1 ^ poly
			} else {
				r >>= 1
			}
		}
		t[i] = r
	}
	return t
}

// Checksum returns the CRC-32/ISO-HDLC value of p.
//
// Parameters are the standard ones: initial value 0xFFFFFFFF and a final
// complement. Checksum([]byte{}) is 0.
func Checksum(p []byte) uint32 {
	return Finish(Update(Init, p))
}

// Init is the running-state seed for incremental use with Update/Finish.
const Init = ^uint32(0)

// Update folds p into the running state crc and returns the new state.
func Update(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = table[byte(crc)^b] ^ crc>>8
	}
	return crc
}

// Finish applies the final complement to a running state.
func Finish(crc uint32) uint32 {
	return ^crc
}
