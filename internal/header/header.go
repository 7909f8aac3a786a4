package header

import (
	"errors"
	"fmt"
	"math"

	"github.com/yyyoichi/stegano_lsb/internal/bitconv"
)

const (
	// Size is the header length in bytes.
	Size = 4
	// Bits is the header length in bits.
	Bits = Size * 8
)

var (
	ErrOverflow = errors.New("payload length does not fit in a 32-bit header")
)

// Encode returns the big-endian 4-byte length prefix for a payload of n bytes.
func Encode(n int) ([Size]byte, error) {
	if n < 0 || uint64(n) > math.MaxUint32 {
		return [Size]byte{}, fmt.Errorf("%w: %d bytes", ErrOverflow, n)
	}
	return bitconv.IntToBytes(uint32(n)), nil
}

func Decode(b [Size]byte) uint32 {
	return bitconv.BytesToInt(b)
}

// RequiredBits returns the number of bits needed to store the header and a
// payload of n bytes.
func RequiredBits(n int) uint64 {
	return (Size + uint64(n)) * 8
}

// MaxPayload returns the largest payload length in bytes that fits into
// capacity bits, or -1 when not even the header fits.
func MaxPayload(capacity uint64) int {
	n := int64(capacity/8) - Size
	if n < 0 {
		return -1
	}
	if n > math.MaxUint32 {
		n = math.MaxUint32
	}
	return int(n)
}
