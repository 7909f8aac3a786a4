package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"exp/internal/db"
	"exp/internal/images"

	"go.uber.org/zap"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/mark"
	"github.com/yyyoichi/stegano_lsb/quality"
)

type codec struct {
	name string
	opts []stegano.Option
}

func newCodec(opts ...mark.Option) codec {
	return codec{
		name: mark.New(opts...).Name(),
		opts: []stegano.Option{stegano.WithMark(opts...)},
	}
}

type runner struct {
	db      *db.DB
	fetcher *images.Fetcher
	saveDir string
	logger  *zap.Logger
}

func (r *runner) run(ctx context.Context, uri string, width, height int, c codec) error {
	img, err := r.fetcher.Fetch(uri, width, height)
	if err != nil {
		return err
	}
	imageID, err := r.db.InsertImage(uri)
	if err != nil {
		return err
	}
	sizeID, err := r.db.InsertImageSize(imageID, width, height)
	if err != nil {
		return err
	}
	batch, err := stegano.NewBatch(img, c.opts...)
	if err != nil {
		return err
	}

	for _, fill := range fillRatios {
		res, encoded, err := evaluate(ctx, batch, img, fill, c.opts)
		if err != nil {
			return fmt.Errorf("fill %.2f: %w", fill, err)
		}
		res.ImageSizeID = sizeID
		res.Codec = c.name
		if r.saveDir != "" {
			res.EmbedImagePath = filepath.Join(r.saveDir, fmt.Sprintf("%d_%dx%d_%s_%03.0f.png", imageID, width, height, c.name, fill*100))
			if err := os.WriteFile(res.EmbedImagePath, encoded, 0o644); err != nil {
				return err
			}
		}
		if _, err := r.db.InsertResult(res); err != nil {
			return err
		}
		r.logger.Info("result",
			zap.String("uri", uri),
			zap.Int("width", width),
			zap.Int("height", height),
			zap.String("codec", c.name),
			zap.Float64("fill", fill),
			zap.Float64("psnr", res.PSNR),
			zap.Float64("changed", res.ChangedRatio),
			zap.Bool("success", res.Success),
		)
	}
	return nil
}

// evaluate embeds a random payload of fill*capacity bytes and returns the
// measurements together with the PNG encoding of the stego image.
func evaluate(ctx context.Context, batch *stegano.Batch, img image.Image, fill float64, opts []stegano.Option) (*db.Result, []byte, error) {
	res := &db.Result{
		Channels: batch.Channels(),
		Fill:     fill,
		Capacity: batch.Capacity(),
	}
	payload := make([]byte, int(float64(res.Capacity)*fill))
	_, _ = rand.Read(payload)
	res.PayloadBytes = len(payload)

	marked, err := batch.Embed(ctx, payload)
	if err != nil {
		return nil, nil, err
	}
	report, err := quality.Compare(img, marked)
	if err != nil {
		return nil, nil, err
	}
	res.MSE = report.MSE
	res.PSNR = report.PSNR
	res.ChangedRatio = report.ChangedRatio()

	var buf bytes.Buffer
	if err := png.Encode(&buf, marked); err != nil {
		return nil, nil, err
	}
	decoded, err := png.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, nil, err
	}
	got, err := stegano.Extract(ctx, decoded, opts...)
	res.Success = err == nil && bytes.Equal(got, payload)

	var jbuf bytes.Buffer
	if err := jpeg.Encode(&jbuf, marked, &jpeg.Options{Quality: 100}); err != nil {
		return nil, nil, err
	}
	jdecoded, err := jpeg.Decode(&jbuf)
	if err != nil {
		return nil, nil, err
	}
	got, err = stegano.Extract(ctx, jdecoded, opts...)
	res.JPEGSurvived = err == nil && bytes.Equal(got, payload)
	return res, buf.Bytes(), nil
}
