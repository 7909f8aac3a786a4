package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

var (
	ErrInvalidChannels = errors.New("channel count must be 1, 3 or 4")
)

// Image is an owned 8-bit pixel buffer. Pixel i covers Pix[i*C:(i+1)*C] and
// pixels are numbered row-major from the source bounds' Min point:
// i = (y-Min.Y)*width + (x-Min.X). Channel order is R, G, B, A for color
// images and a single luma sample for gray images.
type Image struct {
	bounds        image.Rectangle
	width, height int
	channels      int
	// premultiplied marks 4-channel samples copied as is from a translucent
	// *image.RGBA. Build returns the same type so untouched pixels keep their bytes.
	premultiplied bool

	Pix []uint8
}

// New allocates a zeroed raster.
func New(width, height, channels int) (*Image, error) {
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	return &Image{
		bounds:   image.Rect(0, 0, width, height),
		width:    width,
		height:   height,
		channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

func ValidateChannels(channels int) error {
	switch channels {
	case 1, 3, 4:
		return nil
	}
	return fmt.Errorf("%w: got %d", ErrInvalidChannels, channels)
}

// DetectChannels maps an image's color model to the number of channels
// that carry hidden bits: 4 for non-premultiplied RGBA and for any image
// with translucent pixels, 1 for gray and 3 for everything else. A paletted
// image with an opaque gray palette counts as gray, which is how BMP stores
// 8-bit gray images.
func DetectChannels(src image.Image) int {
	switch s := src.(type) {
	case *image.NRGBA, *image.NRGBA64:
		return 4
	case *image.Gray, *image.Gray16:
		return 1
	case *image.Paletted:
		if grayPalette(s.Palette) {
			return 1
		}
	}
	if o, ok := src.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return 4
	}
	return 3
}

func grayPalette(p color.Palette) bool {
	if len(p) == 0 {
		return false
	}
	for _, c := range p {
		r, g, b, a := c.RGBA()
		if r != g || g != b || a != 0xffff {
			return false
		}
	}
	return true
}

// FromImage copies src into a new raster with the given channel count.
// A channel count of 0 selects DetectChannels(src).
func FromImage(src image.Image, channels int) (*Image, error) {
	if channels == 0 {
		channels = DetectChannels(src)
	}
	var m Image
	m.bounds = src.Bounds()
	m.width, m.height = m.bounds.Dx(), m.bounds.Dy()
	m.channels = channels
	if err := ValidateChannels(channels); err != nil {
		return nil, err
	}
	m.Pix = make([]uint8, m.width*m.height*channels)

	switch s := src.(type) {
	case *image.NRGBA:
		if channels != 1 {
			m.copyRGBA(s.Pix, s.PixOffset)
			return &m, nil
		}
	case *image.RGBA:
		opaque := s.Opaque()
		if channels == 3 && opaque || channels == 4 && !opaque {
			m.premultiplied = !opaque
			m.copyRGBA(s.Pix, s.PixOffset)
			return &m, nil
		}
	case *image.Gray:
		if channels == 1 {
			for y := range m.height {
				off := s.PixOffset(m.bounds.Min.X, m.bounds.Min.Y+y)
				copy(m.Pix[y*m.width:(y+1)*m.width], s.Pix[off:off+m.width])
			}
			return &m, nil
		}
	}

	idx := 0
	for y := m.bounds.Min.Y; y < m.bounds.Max.Y; y++ {
		for x := m.bounds.Min.X; x < m.bounds.Max.X; x++ {
			px := m.Pix[idx*channels : (idx+1)*channels]
			if channels == 1 {
				px[0] = color.GrayModel.Convert(src.At(x, y)).(color.Gray).Y
			} else {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				px[0], px[1], px[2] = c.R, c.G, c.B
				if channels == 4 {
					px[3] = c.A
				}
			}
			idx++
		}
	}
	return &m, nil
}

// copyRGBA copies from a 4-byte-per-pixel buffer, dropping alpha when the
// raster has 3 channels.
func (m *Image) copyRGBA(pix []uint8, offset func(x, y int) int) {
	idx := 0
	for y := m.bounds.Min.Y; y < m.bounds.Max.Y; y++ {
		off := offset(m.bounds.Min.X, y)
		for range m.width {
			copy(m.Pix[idx*m.channels:(idx+1)*m.channels], pix[off:off+m.channels])
			off += 4
			idx++
		}
	}
}

func (m *Image) Width() int {
	return m.width
}

func (m *Image) Height() int {
	return m.height
}

func (m *Image) Channels() int {
	return m.channels
}

func (m *Image) Bounds() image.Rectangle {
	return m.bounds
}

// PixelAt returns the channel values of pixel i. The returned slice aliases
// the raster buffer.
func (m *Image) PixelAt(i int) []uint8 {
	return m.Pix[i*m.channels : (i+1)*m.channels : (i+1)*m.channels]
}

func (m *Image) SetPixelAt(i int, px []uint8) {
	copy(m.Pix[i*m.channels:(i+1)*m.channels], px)
}

// Copy returns a deep copy that shares no memory with m.
func (m *Image) Copy() *Image {
	c := *m
	c.Pix = make([]uint8, len(m.Pix))
	_ = copy(c.Pix, m.Pix)
	return &c
}

// Build converts the raster back to an image.Image with the original bounds:
// *image.Gray for 1 channel, opaque *image.RGBA for 3 and *image.NRGBA for 4.
// A raster read from a translucent *image.RGBA is rebuilt as *image.RGBA.
func (m *Image) Build() image.Image {
	if m.premultiplied {
		dist := image.NewRGBA(m.bounds)
		m.copyRows(dist.Pix, dist.PixOffset)
		return dist
	}
	switch m.channels {
	case 1:
		dist := image.NewGray(m.bounds)
		for y := range m.height {
			off := dist.PixOffset(m.bounds.Min.X, m.bounds.Min.Y+y)
			copy(dist.Pix[off:off+m.width], m.Pix[y*m.width:(y+1)*m.width])
		}
		return dist
	case 3:
		dist := image.NewRGBA(m.bounds)
		idx := 0
		for y := range m.height {
			off := dist.PixOffset(m.bounds.Min.X, m.bounds.Min.Y+y)
			for range m.width {
				copy(dist.Pix[off:off+3], m.Pix[idx*3:idx*3+3])
				dist.Pix[off+3] = 0xff
				off += 4
				idx++
			}
		}
		return dist
	default:
		dist := image.NewNRGBA(m.bounds)
		m.copyRows(dist.Pix, dist.PixOffset)
		return dist
	}
}

// copyRows writes a 4-channel raster into a 4-byte-per-pixel buffer.
func (m *Image) copyRows(pix []uint8, offset func(x, y int) int) {
	for y := range m.height {
		off := offset(m.bounds.Min.X, m.bounds.Min.Y+y)
		copy(pix[off:off+m.width*4], m.Pix[y*m.width*4:(y+1)*m.width*4])
	}
}
