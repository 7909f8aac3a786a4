package lsb

import "github.com/yyyoichi/stegano_lsb/internal/bitconv"

var _ bitconv.BitReader = (*lsbReader)(nil)

// lsbReader pulls LSBs from a raster over the global bit range [pos, end).
// Global bit g lives in channel g%C of pixel g/C. It is single-pass; create
// a new one for every read.
type lsbReader struct {
	src      Raster
	channels uint64
	pos, end uint64

	// cached pixel
	index int
	px    []uint8
}

func newLSBReader(src Raster, start, end uint64) *lsbReader {
	if capacity := Capacity(src); end > capacity {
		end = capacity
	}
	return &lsbReader{
		src:      src,
		channels: uint64(src.Channels()),
		pos:      start,
		end:      end,
		index:    -1,
	}
}

func (r *lsbReader) ReadBit() (uint8, error) {
	if r.pos >= r.end {
		return 0, bitconv.ErrStreamExhausted
	}
	if i := int(r.pos / r.channels); i != r.index {
		r.index = i
		r.px = r.src.PixelAt(i)
	}
	bit := r.px[r.pos%r.channels] & 1
	r.pos++
	return bit, nil
}
