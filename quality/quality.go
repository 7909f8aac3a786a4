// Package quality measures how much hiding a payload disturbed an image.
package quality

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/yyyoichi/stegano_lsb/internal/raster"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrBoundsMismatch = errors.New("images have different bounds")
)

type Report struct {
	// MSE is the mean squared difference over all compared samples.
	MSE float64
	// PSNR in dB; +Inf for identical images.
	PSNR float64
	// MaxDiff is the largest absolute sample difference.
	MaxDiff float64
	// Changed counts samples whose value differs.
	Changed int
	Samples int
}

// ChangedRatio returns Changed/Samples.
func (r Report) ChangedRatio() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Changed) / float64(r.Samples)
}

// Compare measures the difference between an original and a modified image.
// Samples are compared per channel with the channel layout of original.
func Compare(original, modified image.Image) (Report, error) {
	if original.Bounds() != modified.Bounds() {
		return Report{}, fmt.Errorf("%w: %v != %v", ErrBoundsMismatch, original.Bounds(), modified.Bounds())
	}
	channels := raster.DetectChannels(original)
	a, err := raster.FromImage(original, channels)
	if err != nil {
		return Report{}, err
	}
	b, err := raster.FromImage(modified, channels)
	if err != nil {
		return Report{}, err
	}
	return compare(a.Pix, b.Pix), nil
}

func compare(a, b []uint8) Report {
	r := Report{Samples: len(a)}
	if len(a) == 0 {
		r.PSNR = math.Inf(1)
		return r
	}
	sq := make([]float64, len(a))
	abs := make([]float64, len(a))
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sq[i] = d * d
		abs[i] = math.Abs(d)
		if d != 0 {
			r.Changed++
		}
	}
	r.MSE = stat.Mean(sq, nil)
	r.MaxDiff = floats.Max(abs)
	r.PSNR = PSNR(r.MSE)
	return r
}

// PSNR converts a mean squared error of 8-bit samples to decibels.
func PSNR(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}
