package lsb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yyyoichi/stegano_lsb/internal/bitconv"
	"github.com/yyyoichi/stegano_lsb/internal/header"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large for image")
	ErrNoHiddenData    = errors.New("no hidden data")
	ErrTruncated       = errors.New("hidden data truncated")
)

// Raster is the pixel buffer the codec reads and writes. Pixel indexes run
// row-major over Width()*Height() pixels; each pixel holds Channels() samples.
// Embed and Extract visit bits in the same order: pixel index, then channel
// index, then MSB-first within each byte.
type Raster interface {
	Width() int
	Height() int
	Channels() int
	PixelAt(i int) []uint8
	SetPixelAt(i int, px []uint8)
}

// Capacity returns the number of bits r can hold.
func Capacity(r Raster) uint64 {
	return uint64(r.Width()) * uint64(r.Height()) * uint64(r.Channels())
}

// Enable reports whether a payload of payloadLen bytes fits into r.
func Enable(r Raster, payloadLen int) error {
	if _, err := header.Encode(payloadLen); err != nil {
		return fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
	}
	if required, capacity := header.RequiredBits(payloadLen), Capacity(r); required > capacity {
		return fmt.Errorf("%w: required %d bits > capacity %d bits", ErrPayloadTooLarge, required, capacity)
	}
	return nil
}

// Embed writes the length header and payload into the LSBs of dst.
// dst is not modified unless the whole payload fits and ctx is alive, so a
// failed call leaves it bit-identical to its input.
func Embed(ctx context.Context, dst Raster, payload []byte, workers int) error {
	if err := Enable(dst, len(payload)); err != nil {
		return err
	}
	hdr, _ := header.Encode(len(payload))
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		data     = append(hdr[:], payload...)
		bits     = bitconv.BytesToBits(data)
		channels = dst.Channels()
		pixels   = (bits.Len() + channels - 1) / channels
	)

	var wg sync.WaitGroup
	for _, p := range partition(pixels, workers) {
		wg.Add(1)
		go func(p span) {
			defer wg.Done()
			px := make([]uint8, channels)
			for i := p.start; i < p.end; i++ {
				copy(px, dst.PixelAt(i))
				for c := range channels {
					// indexes past the stream pad the last group with 0
					px[c] = px[c]&^1 | bits.At(i*channels+c)
				}
				dst.SetPixelAt(i, px)
			}
		}(p)
	}
	wg.Wait()
	return nil
}

// Extract reads the length header from the LSBs of src and returns the
// payload it announces. An announced length that cannot fit into src is
// reported as ErrNoHiddenData. src is never modified.
func Extract(ctx context.Context, src Raster, workers int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	capacity := Capacity(src)
	stream := newLSBReader(src, 0, capacity)
	v, err := bitconv.BitsToInt(stream, header.Bits)
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrTruncated, err)
	}
	// strict: a payload that fills the image exactly is readable
	if required := header.Bits + v*8; capacity < required {
		return nil, fmt.Errorf("%w: declared %d bytes need %d bits, capacity %d bits", ErrNoHiddenData, v, required, capacity)
	}
	length := int(v)

	payload := make([]byte, length)
	parts := partition(length, workers)
	if len(parts) <= 1 {
		// continue on the header stream
		if err := readBytes(stream, payload); err != nil {
			return nil, err
		}
		return payload, nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, p := range parts {
		wg.Add(1)
		go func(p span) {
			defer wg.Done()
			start := header.RequiredBits(p.start)
			r := newLSBReader(src, start, start+uint64(p.end-p.start)*8)
			if err := readBytes(r, payload[p.start:p.end]); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return payload, nil
}

func readBytes(r bitconv.BitReader, dst []byte) error {
	for i := range dst {
		b, err := bitconv.BitsToInt(r, 8)
		if err != nil {
			return fmt.Errorf("%w: byte %d: %w", ErrTruncated, i, err)
		}
		dst[i] = byte(b)
	}
	return nil
}
