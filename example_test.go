package stegano_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	stegano "github.com/yyyoichi/stegano_lsb"
)

func Example_stegano() {
	// Create a simple gradient image (200x200 pixels)
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			// Create gradient effect: red increases with x, green increases with y, blue is a mix
			r := uint8(x * 255 / 200)
			g := uint8(y * 255 / 200)
			b := uint8((x + y) * 255 / 400)
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	s, err := stegano.New(stegano.WithWorkers(4))
	if err != nil {
		fmt.Printf("Error creating stegano: %v\n", err)
		return
	}
	fmt.Printf("Capacity: %d bytes\n", s.Capacity(img))

	ctx := context.Background()
	secret, err := s.Embed(ctx, img, []byte("the floating coffin"))
	if err != nil {
		fmt.Printf("Error embedding payload: %v\n", err)
		return
	}

	payload, err := s.Extract(ctx, secret)
	if err != nil {
		fmt.Printf("Error extracting payload: %v\n", err)
		return
	}
	fmt.Println(string(payload))

	// Output:
	// Capacity: 14996 bytes
	// the floating coffin
}

func ExampleExtract() {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	// every LSB is 1, so the declared length is 0xffffffff
	_, err := stegano.Extract(context.Background(), img)
	fmt.Println(err != nil, errors.Is(err, stegano.ErrNoHiddenData))

	// Output:
	// true true
}
