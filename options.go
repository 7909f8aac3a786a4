package stegano

import (
	"github.com/yyyoichi/stegano_lsb/internal/raster"
	"github.com/yyyoichi/stegano_lsb/mark"
)

type Option func(*Stego) error

// WithChannels sets how many channels per pixel carry hidden bits:
// 1 (gray), 3 (RGB) or 4 (RGBA). The default 0 derives the count from the
// image type: *image.NRGBA and *image.NRGBA64 use 4, gray images use 1 and
// everything else uses 3.
//
// Embed and Extract must use the same channel count.
func WithChannels(n int) Option {
	return func(s *Stego) error {
		if n != 0 {
			if err := raster.ValidateChannels(n); err != nil {
				return err
			}
		}
		s.channels = n
		return nil
	}
}

// WithWorkers splits the pixel range into n contiguous partitions processed
// concurrently. Values below 1 select runtime.GOMAXPROCS(0).
// The output does not depend on n.
func WithWorkers(n int) Option {
	return func(s *Stego) error {
		s.workers = n
		return nil
	}
}

// WithGolay protects the payload with the Golay(23,12) error correcting code.
// It roughly halves the capacity. Images embedded with this option must be
// extracted with it too.
func WithGolay() Option {
	return WithMark(mark.WithGolay())
}

// WithMark selects the payload codec from the mark package.
func WithMark(opts ...mark.Option) Option {
	return func(s *Stego) error {
		s.codec = mark.New(opts...)
		return nil
	}
}
