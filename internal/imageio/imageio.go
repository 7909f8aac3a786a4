package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	FormatPNG  = "png"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
)

var (
	ErrInputFileNotFound = errors.New("input file not found")
	ErrLossyFormat       = errors.New("format does not preserve least significant bits")
)

// Exists returns ErrInputFileNotFound when path does not name an existing file.
func Exists(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputFileNotFound, path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInputFileNotFound, path)
	}
	return nil
}

// Load decodes the image at path and returns it with its format name
// ("png", "bmp", "tiff", "jpeg", "gif" or "webp"). The format is sniffed from
// the content, so the file extension does not matter.
func Load(path string) (image.Image, string, error) {
	if err := Exists(path); err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, format, nil
}

// IsLossless reports whether format can be written without altering pixel values.
func IsLossless(format string) bool {
	switch format {
	case FormatPNG, FormatBMP, FormatTIFF:
		return true
	}
	return false
}

// OutputFormat keeps a lossless input format and falls back to PNG otherwise.
func OutputFormat(inputFormat string) string {
	if IsLossless(inputFormat) {
		return inputFormat
	}
	return FormatPNG
}

// Encode writes img to w in a lossless format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %q", ErrLossyFormat, format)
}

// Save writes img to path in format.
func Save(path string, img image.Image, format string) (err error) {
	if !IsLossless(format) {
		return fmt.Errorf("%w: %q", ErrLossyFormat, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, format)
}
