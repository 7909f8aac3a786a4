package main

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yyyoichi/httpcache-go"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// rateLimitedClient waits at least interval between two requests.
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
	logger   *zap.Logger
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if elapsed := time.Since(r.lastCall); elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}
	r.logger.Debug("request", zap.Stringer("url", req.URL))
	resp, err := r.client.Do(req)
	r.lastCall = time.Now()
	return resp, err
}

// resizeClient strips the w and h query parameters, fetches the original
// photo and answers with a center-cropped, resized JPEG of that size.
type resizeClient struct {
	client httpcache.Client
}

func (r *resizeClient) Do(req *http.Request) (*http.Response, error) {
	u := *req.URL
	q := u.Query()
	u.RawQuery = ""
	req.URL = &u
	width, err := strconv.Atoi(q.Get("w"))
	if err != nil {
		return nil, fmt.Errorf("invalid width: %w", err)
	}
	height, err := strconv.Atoi(q.Get("h"))
	if err != nil {
		return nil, fmt.Errorf("invalid height: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	src, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dist := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dist, dist.Bounds(), src, centerCrop(src.Bounds(), width, height), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dist, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

// centerCrop returns the largest centered rectangle of bounds with the aspect
// ratio width:height.
func centerCrop(bounds image.Rectangle, width, height int) image.Rectangle {
	srcW, srcH := bounds.Dx(), bounds.Dy()
	switch {
	case srcW*height > width*srcH:
		w := srcH * width / height
		x := bounds.Min.X + (srcW-w)/2
		return image.Rect(x, bounds.Min.Y, x+w, bounds.Max.Y)
	case srcW*height < width*srcH:
		h := srcW * height / width
		y := bounds.Min.Y + (srcH-h)/2
		return image.Rect(bounds.Min.X, y, bounds.Max.X, y+h)
	}
	return bounds
}

type fetcher struct {
	client httpcache.Client
}

func newFetcher(cacheDir string, logger *zap.Logger) *fetcher {
	origin := httpcache.Client{
		Client:  &rateLimitedClient{client: http.DefaultClient, interval: 250 * time.Millisecond, logger: logger},
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}
	return &fetcher{client: httpcache.Client{
		Client:  &resizeClient{client: origin},
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}}
}

func (f *fetcher) fetch(url string, width, height int) (image.Image, error) {
	sizeParams := fmt.Sprintf("w=%d&h=%d", width, height)
	if strings.Contains(url, "?") {
		url += "&" + sizeParams
	} else {
		url += "?" + sizeParams
	}

	resp, err := f.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode)
	}
	img, err := jpeg.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}
	return img, nil
}

// readURLs reads one http(s) URL per line, skipping anything else.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}
