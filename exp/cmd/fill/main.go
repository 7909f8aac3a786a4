package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"exp/internal/db"
	"exp/internal/images"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yyyoichi/stegano_lsb/mark"
)

// This tool embeds random payloads at increasing fill ratios, stores the
// distortion of every run in sqlite and renders a line chart of the averages.

var (
	imageSizes = [][2]int{{640, 360}, {426, 240}}
	fillRatios = []float64{0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0}
)

func main() {
	dbPath := pflag.String("db", "./tmp/fill/results.db", "path to the results database")
	chartPath := pflag.String("chart", "./tmp/fill/fill.html", "path of the rendered chart")
	urlsFile := pflag.String("urls", "", "file with one image URL per line (default: generated images)")
	cacheDir := pflag.String("cache", "/tmp/stegano_http_cache/", "directory of the http cache")
	saveDir := pflag.String("save", "", "directory to keep stego images in (png)")
	golay := pflag.Bool("golay", false, "also run every case with the Golay codec")
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	uris := images.GeneratedURIs()
	if *urlsFile != "" {
		uris, err = images.ReadURLs(*urlsFile)
		if err != nil {
			logger.Fatal("failed to read urls", zap.Error(err))
		}
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		logger.Fatal("failed to create db dir", zap.Error(err))
	}
	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	codecs := []codec{newCodec(mark.WithoutECC())}
	if *golay {
		codecs = append(codecs, newCodec(mark.WithGolay()))
	}
	if *saveDir != "" {
		if err := os.MkdirAll(*saveDir, 0o755); err != nil {
			logger.Fatal("failed to create save dir", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &runner{
		db:      database,
		fetcher: images.NewFetcher(*cacheDir),
		saveDir: *saveDir,
		logger:  logger,
	}
	for _, uri := range uris {
		for _, size := range imageSizes {
			for _, c := range codecs {
				if err := r.run(ctx, uri, size[0], size[1], c); err != nil {
					logger.Warn("run failed", zap.String("uri", uri), zap.Error(err))
				}
				if ctx.Err() != nil {
					return
				}
			}
		}
	}

	stats, err := database.GetFillStats()
	if err != nil {
		logger.Fatal("failed to load stats", zap.Error(err))
	}
	if err := renderChart(*chartPath, stats); err != nil {
		logger.Fatal("failed to render chart", zap.Error(err))
	}
	logger.Info("wrote chart", zap.String("path", *chartPath), zap.Int("points", len(stats)))
}
