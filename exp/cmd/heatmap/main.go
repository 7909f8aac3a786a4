package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"exp/internal/images"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/quality"
)

// This tool creates heatmap PNGs marking every pixel whose samples were changed
// by embedding. It saves outputs under /tmp/heatmap/.

func main() {
	uri := pflag.String("uri", images.GeneratedPrefix+"gradient", "image URL or gen:<kind>")
	width := pflag.Int("width", 426, "image width")
	height := pflag.Int("height", 240, "image height")
	fill := pflag.Float64("fill", 0.5, "payload size as a fraction of the capacity")
	cacheDir := pflag.String("cache", "/tmp/stegano_http_cache/", "directory of the http cache")
	outDir := pflag.String("out", "/tmp/heatmap", "output directory")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	img, err := images.NewFetcher(*cacheDir).Fetch(*uri, *width, *height)
	if err != nil {
		logger.Fatal("failed to fetch image", zap.String("uri", *uri), zap.Error(err))
	}

	batch, err := stegano.NewBatch(img)
	if err != nil {
		logger.Fatal("failed to prepare image", zap.Error(err))
	}
	payload := make([]byte, int(float64(batch.Capacity())*(*fill)))
	_, _ = rand.Read(payload)
	marked, err := batch.Embed(context.Background(), payload)
	if err != nil {
		logger.Fatal("failed to embed", zap.Error(err))
	}

	report, err := quality.Compare(img, marked)
	if err != nil {
		logger.Fatal("failed to compare", zap.Error(err))
	}
	// header and payload bits, rounded up to whole pixels
	bits := (4 + len(payload)) * 8
	touched := (bits + batch.Channels() - 1) / batch.Channels()
	out, changed := overlay(img, marked, touched)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("failed to create out dir", zap.Error(err))
	}
	fname := fmt.Sprintf("%dx%d_fill%03.0f_psnr%.1f.png", *width, *height, *fill*100, report.PSNR)
	outPath := filepath.Join(*outDir, fname)
	f, err := os.Create(outPath)
	if err != nil {
		logger.Fatal("failed to create out file", zap.Error(err))
	}
	if err := png.Encode(f, out); err != nil {
		logger.Fatal("failed to encode png", zap.Error(err))
	}
	_ = f.Close()

	logger.Info("wrote heatmap",
		zap.String("path", outPath),
		zap.Int("payload", len(payload)),
		zap.Int("changed_pixels", changed),
		zap.Int("changed_samples", report.Changed),
		zap.Float64("psnr", report.PSNR),
	)
}

var (
	changedColor = color.RGBA{R: 0, G: 0, B: 255, A: 200}
	keptColor    = color.RGBA{R: 255, G: 105, B: 180, A: 60}
)

// overlay paints changed pixels blue and pixels that carried payload bits but
// kept their value pink over a copy of original. The first touched pixels in
// row-major order carry bits. It returns the number of changed pixels.
func overlay(original, marked image.Image, touched int) (*image.RGBA, int) {
	rect := original.Bounds()
	out := image.NewRGBA(rect)
	draw.Draw(out, rect, original, rect.Min, draw.Src)

	changed := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := (y-rect.Min.Y)*rect.Dx() + (x - rect.Min.X)
			px := image.Rect(x, y, x+1, y+1)
			r0, g0, b0, a0 := original.At(x, y).RGBA()
			r1, g1, b1, a1 := marked.At(x, y).RGBA()
			switch {
			case r0>>8 != r1>>8 || g0>>8 != g1>>8 || b0>>8 != b1>>8 || a0>>8 != a1>>8:
				changed++
				blendRect(out, px, changedColor)
			case i < touched:
				blendRect(out, px, keptColor)
			}
		}
	}
	return out, changed
}

// blendRect blends a semi-opaque overlay color into dst for every pixel inside r.
func blendRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	// clamp rectangle to dst bounds
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	a := float64(c.A) / 255.0
	invA := 1.0 - a
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = uint8(a*float64(c.R) + invA*float64(dst.Pix[i+0]))
			dst.Pix[i+1] = uint8(a*float64(c.G) + invA*float64(dst.Pix[i+1]))
			dst.Pix[i+2] = uint8(a*float64(c.B) + invA*float64(dst.Pix[i+2]))
			// alpha is preserved
		}
	}
}
