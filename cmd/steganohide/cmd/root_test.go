package cmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stegano "github.com/yyyoichi/stegano_lsb"
	"github.com/yyyoichi/stegano_lsb/internal/imageio"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func carrier(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 5), uint8(y * 3), uint8(x + y), 255})
		}
	}
	return img
}

func writeFiles(t *testing.T, text string, img image.Image, format string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	textPath := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(textPath, []byte(text), 0o644))
	imagePath := filepath.Join(dir, "carrier."+format)
	require.NoError(t, imageio.Save(imagePath, img, format))
	return textPath, imagePath
}

func TestHide(t *testing.T) {
	test := []struct {
		name   string
		format string
		flags  []string
	}{
		{"png", imageio.FormatPNG, nil},
		{"bmp", imageio.FormatBMP, []string{"--workers", "1"}},
		{"tiff golay", imageio.FormatTIFF, []string{"--golay"}},
		{"quiet", imageio.FormatPNG, []string{"--log-level", "error"}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			text := "the floating coffin\n"
			textPath, imagePath := writeFiles(t, text, carrier(32, 32), tt.format)

			stdout, _, err := run(t, append([]string{textPath, imagePath}, tt.flags...)...)
			require.NoError(t, err)
			assert.Equal(t, text, stdout)

			img, format, err := imageio.Load(imagePath + ".ste")
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)

			var opts []stegano.Option
			if tt.name == "tiff golay" {
				opts = append(opts, stegano.WithGolay())
			}
			got, err := stegano.Extract(context.Background(), img, opts...)
			require.NoError(t, err)
			assert.Equal(t, text, string(got))
		})
	}
}

func TestHideTranslucentTIFF(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			a := uint8(64 + x*8)
			src.SetRGBA(x, y, color.RGBA{a / 2, a / 3, uint8(y), a})
		}
	}
	text := "translucent"
	textPath, imagePath := writeFiles(t, text, src, imageio.FormatTIFF)

	stdout, _, err := run(t, textPath, imagePath)
	require.NoError(t, err)
	assert.Equal(t, text, stdout)

	img, format, err := imageio.Load(imagePath + ".ste")
	require.NoError(t, err)
	assert.Equal(t, imageio.FormatTIFF, format)
	out, ok := img.(*image.RGBA)
	require.True(t, ok)

	// 4 channels: header and payload cover the first 30 pixels
	touched := (4 + len(text)) * 8
	for i := touched; i < len(src.Pix); i++ {
		require.Equal(t, src.Pix[i], out.Pix[i], "sample %d", i)
	}
}

func TestHideLossyInput(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("from jpeg"), 0o644))
	imagePath := filepath.Join(dir, "carrier.jpg")
	f, err := os.Create(imagePath)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, carrier(16, 16), nil))
	require.NoError(t, f.Close())

	output := filepath.Join(dir, "out.png")
	stdout, stderr, err := run(t, textPath, imagePath, "-o", output)
	require.NoError(t, err)
	assert.Equal(t, "from jpeg", stdout)
	assert.Contains(t, stderr, "lossy")

	_, format, err := imageio.Load(output)
	require.NoError(t, err)
	assert.Equal(t, imageio.FormatPNG, format)
}

func TestHideErrors(t *testing.T) {
	textPath, imagePath := writeFiles(t, strings.Repeat("x", 100), carrier(8, 8), imageio.FormatPNG)
	missing := filepath.Join(t.TempDir(), "missing.png")

	test := []struct {
		name string
		args []string
		exp  error
	}{
		{"no args", nil, ErrInvalidUsage},
		{"one arg", []string{textPath}, ErrInvalidUsage},
		{"three args", []string{textPath, imagePath, imagePath}, ErrInvalidUsage},
		{"missing text", []string{missing, imagePath}, ErrInputFileNotFound},
		{"missing image", []string{textPath, missing}, ErrInputFileNotFound},
		{"too large", []string{textPath, imagePath}, stegano.ErrPayloadTooLarge},
		{"invalid channels", []string{textPath, imagePath, "--channels", "2"}, stegano.ErrInvalidChannels},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.exp)
			assert.Empty(t, stdout)
		})
	}

	_, err := os.Stat(imagePath + ".ste")
	assert.True(t, os.IsNotExist(err), "nothing is written on failure")
}

func TestInvalidLogLevel(t *testing.T) {
	textPath, imagePath := writeFiles(t, "x", carrier(8, 8), imageio.FormatPNG)
	_, _, err := run(t, textPath, imagePath, "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestExtract(t *testing.T) {
	textPath, imagePath := writeFiles(t, "round trip", carrier(16, 16), imageio.FormatPNG)
	_, _, err := run(t, textPath, imagePath, "--golay")
	require.NoError(t, err)

	stdout, _, err := run(t, "extract", imagePath+".ste", "--golay")
	require.NoError(t, err)
	assert.Equal(t, "round trip", stdout)

	_, _, err = run(t, "extract")
	assert.ErrorIs(t, err, ErrInvalidUsage)
	_, _, err = run(t, "extract", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrInputFileNotFound)
}

func TestExtractNoHiddenData(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	path := filepath.Join(t.TempDir(), "plain.png")
	require.NoError(t, imageio.Save(path, img, imageio.FormatPNG))

	stdout, stderr, err := run(t, "extract", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no hidden data")
}

func TestCapacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carrier.png")
	require.NoError(t, imageio.Save(path, carrier(8, 8), imageio.FormatPNG))

	stdout, _, err := run(t, "capacity", path)
	require.NoError(t, err)
	assert.Equal(t, "width: 8\nheight: 8\nchannels: 3\ncapacity: 20 bytes\n", stdout)

	t.Run("env", func(t *testing.T) {
		t.Setenv("STEGANOHIDE_CHANNELS", "1")
		stdout, _, err := run(t, "capacity", path)
		require.NoError(t, err)
		assert.Equal(t, "width: 8\nheight: 8\nchannels: 1\ncapacity: 4 bytes\n", stdout)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		t.Setenv("STEGANOHIDE_CHANNELS", "1")
		stdout, _, err := run(t, "capacity", path, "--channels", "3")
		require.NoError(t, err)
		assert.Contains(t, stdout, "capacity: 20 bytes")
	})
}
