package crc24

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", Init},
		{"123456789", 0x21CF02},
		{"10.00", 0xC0B3C9},
		{"5.00", 0xDEC773},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum([]byte(tt.in)))
		})
	}
}

func TestHashMatchesChecksum(t *testing.T) {
	h := New()
	_, _ = h.Write([]byte("1234"))
	_, _ = h.Write([]byte("56789"))

	assert.Equal(t, uint32(0x21CF02), h.Sum32())
	assert.Equal(t, []byte{0x21, 0xCF, 0x02}, h.Sum(nil))
	assert.Equal(t, Size, h.Size())

	h.Reset()
	assert.Equal(t, uint32(Init), h.Sum32())
}

func TestColorCode(t *testing.T) {
	tests := []struct {
		rate string
		want string
	}{
		{"10.00", "c0b3c9"},
		{"7.00", "b2d5d7"},
		{"0.00", "30eb69"},
		{"12.50", "d65ffe"},
		// No zero padding: the checksum is below 0x100000.
		{"1.00", "6e23b"},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorCode(tt.rate))
		})
	}
}

func TestColorCode_Deterministic(t *testing.T) {
	assert.Equal(t, ColorCode("3.25"), ColorCode("3.25"))
	assert.NotEqual(t, ColorCode("3.25"), ColorCode("3.26"))
}
