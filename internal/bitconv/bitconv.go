package bitconv

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/yyyoichi/bitstream-go"
)

var (
	ErrStreamExhausted = errors.New("bit stream exhausted")
)

// BitReader is a forward-only bit source. Each call to ReadBit returns the
// next bit (0 or 1) or ErrStreamExhausted once no bits remain.
type BitReader interface {
	ReadBit() (uint8, error)
}

// IntToBytes encodes n as 4 bytes, most significant byte first.
func IntToBytes(n uint32) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return b
}

// BytesToInt is the inverse of IntToBytes.
func BytesToInt(b [4]byte) uint32 {
	return binary.BigEndian.Uint32(b[:])
}

// Bits is a bit sequence produced MSB-first from a byte slice.
type Bits struct {
	reader *bitstream.BitReader[uint64]
	size   int
	pos    int
}

// BytesToBits returns the bits of b, 8 per byte from most to least significant.
func BytesToBits(b []byte) *Bits {
	data, size := BytesToWords(b)
	reader := bitstream.NewBitReader(data, 0, 0)
	reader.SetBits(size)
	return &Bits{reader: reader, size: size}
}

// Len returns the total number of bits.
func (b *Bits) Len() int {
	return b.size
}

// At returns the bit at index i without moving the read position.
// It is safe for concurrent use.
func (b *Bits) At(i int) uint8 {
	if i < 0 || i >= b.size {
		return 0
	}
	if v, _ := b.reader.ReadBitAt(i); v {
		return 1
	}
	return 0
}

func (b *Bits) ReadBit() (uint8, error) {
	if b.pos >= b.size {
		return 0, ErrStreamExhausted
	}
	v := b.At(b.pos)
	b.pos++
	return v, nil
}

// BitsToInt consumes exactly n bits (n <= 64) from r and accumulates them in
// arrival order: acc = acc<<1 | bit.
func BitsToInt(r BitReader, n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("bit count %d out of range [0, 64]", n)
	}
	var acc uint64
	for i := range n {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, fmt.Errorf("%w: got %d of %d bits", err, i, n)
		}
		acc = acc<<1 | uint64(bit&1)
	}
	return acc, nil
}

// BytesToWords packs b MSB-first into the uint64 word layout used by
// bitstream and golay. It returns the words and the number of valid bits.
func BytesToWords(b []byte) ([]uint64, int) {
	w := bitstream.NewBitWriter[uint64](0, 0)
	for _, bb := range b {
		for i := 7; i >= 0; i-- {
			w.WriteBool(((bb >> uint(i)) & 1) == 1)
		}
	}
	return w.Data(), w.Bits()
}

// WordsToBytes reads size bits from data and packs them MSB-first into bytes.
// A trailing partial byte is zero padded.
func WordsToBytes(data []uint64, size int) []byte {
	r := bitstream.NewBitReader(data, 0, 0)
	r.SetBits(size)
	out := make([]byte, (size+7)/8)
	for i := range size {
		if v, _ := r.ReadBitAt(i); v {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
