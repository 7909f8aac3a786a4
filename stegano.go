package stegano

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/yyyoichi/stegano_lsb/internal/header"
	"github.com/yyyoichi/stegano_lsb/internal/lsb"
	"github.com/yyyoichi/stegano_lsb/internal/raster"
	"github.com/yyyoichi/stegano_lsb/mark"
)

var (
	ErrPayloadTooLarge = lsb.ErrPayloadTooLarge
	ErrNoHiddenData    = lsb.ErrNoHiddenData
	ErrTruncated       = lsb.ErrTruncated
	ErrInvalidChannels = raster.ErrInvalidChannels
	ErrCorrupted       = mark.ErrCorrupted
)

// Embed hides payload in the least significant bits of src with the specified options.
// This is a convenience function that creates a Stego instance and calls its Embed method.
func Embed(ctx context.Context, src image.Image, payload []byte, opts ...Option) (image.Image, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.Embed(ctx, src, payload)
}

// Extract recovers a payload hidden by Embed with the specified options.
// This is a convenience function that creates a Stego instance and calls its Extract method.
func Extract(ctx context.Context, src image.Image, opts ...Option) ([]byte, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.Extract(ctx, src)
}

// Capacity returns the largest payload in bytes that Embed accepts for src,
// or -1 when src cannot even hold the length header.
func Capacity(src image.Image, opts ...Option) int {
	s, err := New(opts...)
	if err != nil {
		return -1
	}
	return s.Capacity(src)
}

type Stego struct {
	channels int
	workers  int
	codec    mark.Codec
}

// New initializes a Stego instance.
// For default values, refer to the init function.
func New(opts ...Option) (*Stego, error) {
	s := new(Stego)
	if err := s.init(opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Embed hides payload in a copy of src and returns the copy.
//
// Process:
//  1. Copies src into an 8-bit raster (1, 3 or 4 channels).
//  2. Encodes the payload with the configured codec.
//  3. Prepends the 32-bit big-endian length header.
//  4. Writes the bits MSB-first into the LSB of each channel, row-major.
//  5. Builds a new image from the raster.
//
// src is never modified. Returns ErrPayloadTooLarge if the payload does not fit.
func (s *Stego) Embed(ctx context.Context, src image.Image, payload []byte) (image.Image, error) {
	img, err := raster.FromImage(src, s.channels)
	if err != nil {
		return nil, err
	}
	if err := s.embed(ctx, img, payload); err != nil {
		return nil, err
	}
	return img.Build(), nil
}

// Extract recovers the payload hidden in src.
//
// Process:
//  1. Reads the LSBs of every channel, row-major.
//  2. Decodes the 32-bit length header.
//  3. Reads exactly that many bytes and decodes them with the configured codec.
//
// Returns ErrNoHiddenData if the declared length cannot fit into src,
// which is the usual result for an image that carries no payload.
func (s *Stego) Extract(ctx context.Context, src image.Image) ([]byte, error) {
	img, err := raster.FromImage(src, s.channels)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, img)
}

func (s *Stego) Capacity(src image.Image) int {
	channels := s.channels
	if channels == 0 {
		channels = raster.DetectChannels(src)
	}
	b := src.Bounds()
	return s.capacity(uint64(b.Dx()) * uint64(b.Dy()) * uint64(channels))
}

func (s *Stego) capacity(bits uint64) int {
	return mark.MaxPayload(s.codec, header.MaxPayload(bits))
}

func (s *Stego) embed(ctx context.Context, img *raster.Image, payload []byte) error {
	encoded, err := s.codec.Encode(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPayloadTooLarge, err)
	}
	return lsb.Embed(ctx, img, encoded, s.workers)
}

func (s *Stego) extract(ctx context.Context, img *raster.Image) ([]byte, error) {
	data, err := lsb.Extract(ctx, img, s.workers)
	if err != nil {
		return nil, err
	}
	return s.codec.Decode(data)
}

func (s *Stego) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.codec == nil {
		s.codec = mark.New()
	}
	return nil
}

// Batch enables multiple embed and extract operations on a single image
// by converting it to a raster only once.
type Batch struct {
	original *raster.Image
	opts     []Option
}

// NewBatch converts src once. opts apply to every operation and may be
// extended per call.
func NewBatch(src image.Image, opts ...Option) (*Batch, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	img, err := raster.FromImage(src, s.channels)
	if err != nil {
		return nil, err
	}
	return &Batch{original: img, opts: opts}, nil
}

// Embed hides payload in a fresh copy of the cached image.
func (b *Batch) Embed(ctx context.Context, payload []byte, opts ...Option) (image.Image, error) {
	s, err := New(append(b.opts[:len(b.opts):len(b.opts)], opts...)...)
	if err != nil {
		return nil, err
	}
	img := b.original.Copy()
	if err := s.embed(ctx, img, payload); err != nil {
		return nil, err
	}
	return img.Build(), nil
}

// Extract reads a payload from the cached image.
func (b *Batch) Extract(ctx context.Context, opts ...Option) ([]byte, error) {
	s, err := New(append(b.opts[:len(b.opts):len(b.opts)], opts...)...)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, b.original)
}

func (b *Batch) Capacity(opts ...Option) int {
	s, err := New(append(b.opts[:len(b.opts):len(b.opts)], opts...)...)
	if err != nil {
		return -1
	}
	return s.capacity(lsb.Capacity(b.original))
}

// Channels returns the number of channels carrying hidden bits.
func (b *Batch) Channels() int {
	return b.original.Channels()
}
