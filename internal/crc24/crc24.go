// Package crc24 implements the 24-bit cyclic redundancy check defined for
// OpenPGP ASCII armor (RFC 4880, section 6.1) and the display color codes
// derived from it.
package crc24

import (
	"hash"
	"strconv"
)

const (
	// Init is the register value before any byte is processed.
	Init = 0xB704CE
	// Poly is the generator polynomial, including the x^24 term.
	Poly = 0x1864CFB

	// Size is the size of a CRC-24 checksum in bytes.
	Size = 3

	mask = 0xFFFFFF
)

type digest struct {
	crc uint32
}

// New returns a hash.Hash32 computing the CRC-24 checksum. Sum32 yields the
// 24-bit value in the low bits.
func New() hash.Hash32 {
	return &digest{crc: Init}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = Init }
func (d *digest) Sum32() uint32  { return d.crc & mask }

func (d *digest) Write(p []byte) (int, error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>16), byte(s>>8), byte(s))
}

func update(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc ^= uint32(b) << 16
		for i := 0; i < 8; i++ {
			crc <<= 1
			if crc&0x1000000 != 0 {
				crc ^= Poly
			}
		}
	}
	return crc & mask
}

// Checksum returns the CRC-24 of data.
func Checksum(data []byte) uint32 {
	return update(Init, data)
}

// ColorCode renders the CRC-24 of s as lowercase hex without zero padding,
// so the result is between one and six digits long.
//
//	ColorCode("10.00") // → "c0b3c9"
//	ColorCode("1.00")  // → "6e23b"
func ColorCode(s string) string {
	return strconv.FormatUint(uint64(Checksum([]byte(s))), 16)
}
