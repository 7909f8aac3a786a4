package mark

import (
	"fmt"

	"github.com/yyyoichi/golay"
	"github.com/yyyoichi/stegano_lsb/internal/bitconv"
	"github.com/yyyoichi/stegano_lsb/internal/header"
)

var _ Codec = (*golayCodec)(nil)

// codeWordBits is the length of one golay code word carrying 12 data bits.
const codeWordBits = 23

// golayCodec protects the payload with Golay(23,12). The encoded block
// carries its own length prefix because the code word count alone cannot
// tell a 2-byte payload from a 3-byte one.
type golayCodec struct{}

func (gc golayCodec) Encode(payload []byte) ([]byte, error) {
	hdr, err := header.Encode(len(payload))
	if err != nil {
		return nil, err
	}
	data, size := bitconv.BytesToWords(append(hdr[:], payload...))

	var encoded []uint64
	enc := golay.NewEncoder(&encoded)
	if err := enc.Encode(data, size); err != nil {
		return nil, fmt.Errorf("golay encode: %w", err)
	}
	return bitconv.WordsToBytes(encoded, enc.Bits()), nil
}

func (gc golayCodec) Decode(data []byte) ([]byte, error) {
	words, size := bitconv.BytesToWords(data)
	// trailing bits short of a code word are byte padding
	size -= size % codeWordBits

	var decoded []uint64
	dec := golay.NewDecoder(words, size)
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupted, err)
	}
	inner := bitconv.WordsToBytes(decoded, dec.Bits())
	if len(inner) < header.Size {
		return nil, fmt.Errorf("%w: %d bytes decoded, header needs %d", ErrCorrupted, len(inner), header.Size)
	}
	n := uint64(header.Decode([header.Size]byte(inner[:header.Size])))
	if n > uint64(len(inner)-header.Size) {
		return nil, fmt.Errorf("%w: declared %d bytes, %d available", ErrCorrupted, n, len(inner)-header.Size)
	}
	return inner[header.Size : header.Size+int(n)], nil
}

func (gc golayCodec) EncodedLen(n int) int {
	return (golay.EncodedBits((header.Size+n)*8) + 7) / 8
}

func (gc golayCodec) Name() string {
	return "golay"
}

var _ Codec = (*withoutecc)(nil)

type withoutecc struct{}

func (we withoutecc) Encode(payload []byte) ([]byte, error) {
	return payload, nil
}

func (we withoutecc) Decode(data []byte) ([]byte, error) {
	return data, nil
}

func (we withoutecc) EncodedLen(n int) int {
	return n
}

func (we withoutecc) Name() string {
	return "none"
}
