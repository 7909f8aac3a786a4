package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledRGBA(r image.Rectangle, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDetectChannels(t *testing.T) {
	r := image.Rect(0, 0, 2, 2)
	test := []struct {
		name string
		src  image.Image
		exp  int
	}{
		{"rgba", filledRGBA(r, color.RGBA{10, 20, 30, 255}), 3},
		{"translucent rgba", filledRGBA(r, color.RGBA{40, 40, 40, 128}), 4},
		{"transparent rgba", image.NewRGBA(r), 4},
		{"translucent paletted", image.NewPaletted(r, color.Palette{color.Transparent, color.Black}), 4},
		{"nrgba", image.NewNRGBA(r), 4},
		{"nrgba64", image.NewNRGBA64(r), 4},
		{"gray", image.NewGray(r), 1},
		{"gray16", image.NewGray16(r), 1},
		{"ycbcr", image.NewYCbCr(r, image.YCbCrSubsampleRatio444), 3},
		{"paletted", image.NewPaletted(r, color.Palette{color.Black, color.RGBA{255, 0, 0, 255}}), 3},
		{"gray paletted", image.NewPaletted(r, color.Palette{color.Black, color.White}), 1},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, DetectChannels(tt.src))
		})
	}
}

func TestFromImage(t *testing.T) {
	t.Run("row major order", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
		for y := range 2 {
			for x := range 3 {
				v := uint8(y*3 + x)
				src.SetNRGBA(x, y, color.NRGBA{v, v + 10, v + 20, v + 30})
			}
		}
		m, err := FromImage(src, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, m.Channels())
		assert.Equal(t, 3, m.Width())
		assert.Equal(t, 2, m.Height())
		for i := range 6 {
			v := uint8(i)
			assert.Equal(t, []uint8{v, v + 10, v + 20, v + 30}, m.PixelAt(i))
		}
	})

	t.Run("offset bounds", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(5, 7, 7, 9))
		src.SetRGBA(5, 7, color.RGBA{1, 2, 3, 255})
		src.SetRGBA(6, 7, color.RGBA{4, 5, 6, 255})
		src.SetRGBA(5, 8, color.RGBA{7, 8, 9, 255})
		src.SetRGBA(6, 8, color.RGBA{10, 11, 12, 255})
		m, err := FromImage(src, 0)
		require.NoError(t, err)
		assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, m.Pix)

		out := m.Build()
		assert.Equal(t, src.Bounds(), out.Bounds())
		assert.Equal(t, src, out)
	})

	t.Run("gray", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 2, 2))
		src.Pix = []uint8{10, 20, 30, 40}
		m, err := FromImage(src, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, m.Channels())
		assert.Equal(t, []uint8{10, 20, 30, 40}, m.Pix)
		assert.Equal(t, src, m.Build())
	})

	t.Run("generic path matches fast path", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for i := range src.Pix {
			src.Pix[i] = uint8(i * 7)
		}
		for i := 3; i < len(src.Pix); i += 4 {
			src.Pix[i] = 0xff
		}
		fast, err := FromImage(src, 3)
		require.NoError(t, err)
		// wrap to hide the concrete type
		slow, err := FromImage(struct{ image.Image }{src}, 3)
		require.NoError(t, err)
		assert.Equal(t, fast.Pix, slow.Pix)
	})

	t.Run("translucent rgba keeps premultiplied samples", func(t *testing.T) {
		src := filledRGBA(image.Rect(2, 3, 6, 5), color.RGBA{40, 40, 40, 128})
		src.SetRGBA(3, 4, color.RGBA{0, 0, 0, 0})
		m, err := FromImage(src, 0)
		require.NoError(t, err)
		assert.Equal(t, 4, m.Channels())
		assert.Equal(t, []uint8{40, 40, 40, 128}, m.PixelAt(0))
		assert.Equal(t, []uint8{0, 0, 0, 0}, m.PixelAt(5))

		out, ok := m.Build().(*image.RGBA)
		require.True(t, ok)
		assert.Equal(t, src, out)

		// a copy keeps the source representation
		out, ok = m.Copy().Build().(*image.RGBA)
		require.True(t, ok)
		assert.Equal(t, src.Pix, out.Pix)
	})

	t.Run("forced channels", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		src.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 4})
		m, err := FromImage(src, 3)
		require.NoError(t, err)
		assert.Equal(t, []uint8{1, 2, 3}, m.Pix)
	})

	t.Run("invalid channels", func(t *testing.T) {
		_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), 2)
		assert.ErrorIs(t, err, ErrInvalidChannels)
	})
}

func TestCopy(t *testing.T) {
	m, err := New(2, 2, 3)
	require.NoError(t, err)
	m.SetPixelAt(1, []uint8{9, 8, 7})
	c := m.Copy()
	c.SetPixelAt(1, []uint8{1, 1, 1})
	assert.Equal(t, []uint8{9, 8, 7}, m.PixelAt(1))
	assert.Equal(t, []uint8{1, 1, 1}, c.PixelAt(1))
}

func TestBuild(t *testing.T) {
	m, err := New(1, 1, 4)
	require.NoError(t, err)
	m.SetPixelAt(0, []uint8{200, 100, 50, 0})
	out, ok := m.Build().(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{200, 100, 50, 0}, out.NRGBAAt(0, 0))

	m, err = New(1, 1, 3)
	require.NoError(t, err)
	m.SetPixelAt(0, []uint8{200, 100, 50})
	rgb, ok := m.Build().(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{200, 100, 50, 255}, rgb.RGBAAt(0, 0))
}
