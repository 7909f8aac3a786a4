package images

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "image/png"

	"github.com/yyyoichi/httpcache-go"
	"golang.org/x/image/draw"
)

// GeneratedPrefix marks URIs that name a synthetic image instead of a URL.
const GeneratedPrefix = "gen:"

// ReadURLs reads one http(s) URL per line from path.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseURLs(f)
}

// ParseURLs returns the lines of r that look like http(s) URLs.
func ParseURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}

// rateLimitedClient wraps an HTTP client with rate limiting between requests
// Thread-safe for concurrent requests
type rateLimitedClient struct {
	client   *http.Client
	interval time.Duration
	lastCall time.Time
	mu       sync.Mutex
}

func (r *rateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Wait if needed to maintain the interval between requests
	if elapsed := time.Since(r.lastCall); elapsed < r.interval {
		time.Sleep(r.interval - elapsed)
	}
	resp, err := r.client.Do(req)
	r.lastCall = time.Now()
	return resp, err
}

type trimClient struct {
	client httpcache.Client
}

func (r *trimClient) Do(req *http.Request) (*http.Response, error) {
	// remove query parameters from the URL
	u := *req.URL
	q := u.Query()
	u.RawQuery = ""
	req.URL = &u
	width, err := strconv.Atoi(q.Get("w"))
	if err != nil {
		return nil, err
	}
	height, err := strconv.Atoi(q.Get("h"))
	if err != nil {
		return nil, err
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

	// resize with higher quality filter
	dist := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dist, dist.Bounds(), src, CenterCrop(src.Bounds(), width, height), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dist, &jpeg.Options{Quality: 100}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

// CenterCrop returns the largest centered rectangle of bounds with the aspect
// ratio width:height.
func CenterCrop(bounds image.Rectangle, width, height int) image.Rectangle {
	srcW, srcH := bounds.Dx(), bounds.Dy()
	switch {
	case srcW*height > width*srcH:
		// source too wide
		w := srcH * width / height
		x := bounds.Min.X + (srcW-w)/2
		return image.Rect(x, bounds.Min.Y, x+w, bounds.Max.Y)
	case srcW*height < width*srcH:
		// source too tall
		h := srcW * height / width
		y := bounds.Min.Y + (srcH-h)/2
		return image.Rect(bounds.Min.X, y, bounds.Max.X, y+h)
	}
	return bounds
}

// Fetcher downloads images through an on-disk HTTP cache and resizes them.
type Fetcher struct {
	cacheDir string
	client   httpcache.Client
}

func NewFetcher(cacheDir string) *Fetcher {
	origin := httpcache.Client{
		Client:  &rateLimitedClient{client: http.DefaultClient, interval: 250 * time.Millisecond},
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}
	return &Fetcher{
		cacheDir: cacheDir,
		client: httpcache.Client{
			Client:  &trimClient{client: origin},
			Cache:   httpcache.NewStorageCache(cacheDir),
			Handler: httpcache.NewDefaultHandler(),
		},
	}
}

// Fetch returns the image at uri cropped and resized to width x height.
// URIs starting with GeneratedPrefix are rendered locally by Generate.
func (f *Fetcher) Fetch(uri string, width, height int) (image.Image, error) {
	if kind, ok := strings.CutPrefix(uri, GeneratedPrefix); ok {
		return Generate(kind, width, height, 1)
	}
	resp, err := f.client.Get(sizedURI(uri, width, height))
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

// CachedImagePath returns where the resized image for uri is cached.
func (f *Fetcher) CachedImagePath(uri string, width, height int) string {
	u, err := url.ParseRequestURI(sizedURI(uri, width, height))
	if err != nil {
		return ""
	}
	return filepath.Join(f.cacheDir, httpcache.NewHttpResponseObject(u).Key())
}

func sizedURI(uri string, width, height int) string {
	// Add resolution parameters
	sizeParams := fmt.Sprintf("w=%d&h=%d", width, height)
	if strings.Contains(uri, "?") {
		return uri + "&" + sizeParams
	}
	return uri + "?" + sizeParams
}

// Generate renders a synthetic carrier: "gradient", "noise", "flat" or "gray".
func Generate(kind string, width, height int, seed int64) (image.Image, error) {
	rd := rand.New(rand.NewSource(seed))
	switch kind {
	case "gradient":
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := range height {
			for x := range width {
				img.SetRGBA(x, y, color.RGBA{
					uint8(x * 255 / width),
					uint8(y * 255 / height),
					uint8((x + y) * 255 / (width + height)),
					255,
				})
			}
		}
		return img, nil
	case "noise":
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		_, _ = rd.Read(img.Pix)
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
		return img, nil
	case "flat":
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		for i := range img.Pix {
			img.Pix[i] = 0x80
		}
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
		return img, nil
	case "gray":
		img := image.NewGray(image.Rect(0, 0, width, height))
		_, _ = rd.Read(img.Pix)
		return img, nil
	}
	return nil, fmt.Errorf("unknown generated image %q", kind)
}

// GeneratedURIs lists every synthetic image Fetch understands.
func GeneratedURIs() []string {
	return []string{GeneratedPrefix + "gradient", GeneratedPrefix + "noise", GeneratedPrefix + "flat", GeneratedPrefix + "gray"}
}
