package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/quality"
)

var (
	imageSizes = [][2]int{
		{1920, 1080}, // FHD
		{1280, 720},  // HD
		{640, 360},   // 360p
	}
	fillRatios = []float64{0.1, 0.5, 0.9, 1.0}
)

type result struct {
	ok    bool
	psnr  float64
	jpegs bool // payload survived jpeg recompression
}

func main() {
	urlsFile := pflag.String("urls", "image_urls.txt", "file with one image URL per line")
	numImages := pflag.IntP("images", "n", 10, "number of images to test")
	cacheDir := pflag.String("cache", "/tmp/stegano_http_cache/", "directory of the http cache")
	golay := pflag.Bool("golay", false, "protect payloads with the Golay code")
	debug := pflag.Bool("debug", false, "log every request")
	pflag.Parse()

	cfg := zap.NewDevelopmentConfig()
	if !*debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	urls, err := readURLs(*urlsFile)
	if err != nil {
		logger.Fatal("failed to read urls", zap.Error(err))
	}
	if len(urls) == 0 {
		logger.Fatal("no image URLs found", zap.String("file", *urlsFile))
	}
	if *numImages > 0 && *numImages < len(urls) {
		urls = urls[:*numImages]
	}

	var opts []stegano.Option
	if *golay {
		opts = append(opts, stegano.WithGolay())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := newFetcher(*cacheDir, logger)
	logger.Info("starting quality evaluation",
		zap.Int("images", len(urls)),
		zap.Int("cases", len(urls)*len(imageSizes)*len(fillRatios)),
	)

	var total, succeeded, survived int
	for i, url := range urls {
		log := logger.With(zap.Int("image", i+1), zap.String("url", url))
		for _, size := range imageSizes {
			img, err := f.fetch(url, size[0], size[1])
			if err != nil {
				log.Warn("failed to fetch image", zap.Error(err))
				continue
			}
			batch, err := stegano.NewBatch(img, opts...)
			if err != nil {
				log.Fatal("failed to prepare image", zap.Error(err))
			}
			for _, fill := range fillRatios {
				if ctx.Err() != nil {
					return
				}
				total++
				r := evaluate(ctx, batch, img, fill, opts)
				if r.ok {
					succeeded++
				}
				if r.jpegs {
					survived++
				}
				log.Info("case",
					zap.Int("width", size[0]),
					zap.Int("height", size[1]),
					zap.Float64("fill", fill),
					zap.Bool("ok", r.ok),
					zap.Float64("psnr", r.psnr),
					zap.Bool("jpeg_survived", r.jpegs),
				)
			}
		}
	}

	logger.Info("results",
		zap.Int("total", total),
		zap.Int("succeeded", succeeded),
		zap.Int("survived_jpeg", survived),
	)
}

// evaluate fills the carrier to the given ratio of its capacity, checks the
// round trip through PNG and then through JPEG at quality 100.
func evaluate(ctx context.Context, batch *stegano.Batch, img image.Image, fill float64, opts []stegano.Option) result {
	var r result
	payload := make([]byte, int(float64(batch.Capacity())*fill))
	_, _ = rand.Read(payload)

	marked, err := batch.Embed(ctx, payload)
	if err != nil {
		return r
	}
	if report, err := quality.Compare(img, marked); err == nil {
		r.psnr = report.PSNR
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, marked); err != nil {
		return r
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		return r
	}
	got, err := stegano.Extract(ctx, decoded, opts...)
	r.ok = err == nil && bytes.Equal(got, payload)

	buf.Reset()
	if err := jpeg.Encode(&buf, marked, &jpeg.Options{Quality: 100}); err != nil {
		return r
	}
	decoded, err = jpeg.Decode(&buf)
	if err != nil {
		return r
	}
	got, err = stegano.Extract(ctx, decoded, opts...)
	r.jpegs = err == nil && bytes.Equal(got, payload)
	return r
}
