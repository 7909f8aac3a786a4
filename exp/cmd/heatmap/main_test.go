package main

import (
	"image"
	"image/color"
	"testing"
)

func TestOverlay(t *testing.T) {
	original := image.NewRGBA(image.Rect(0, 0, 3, 1))
	for i := range original.Pix {
		original.Pix[i] = 100
	}
	marked := image.NewRGBA(original.Rect)
	copy(marked.Pix, original.Pix)
	marked.SetRGBA(0, 0, color.RGBA{101, 100, 100, 100})

	out, changed := overlay(original, marked, 2)
	if changed != 1 {
		t.Errorf("overlay() changed = %d, want 1", changed)
	}
	if c := out.RGBAAt(0, 0); c.B <= c.R {
		t.Errorf("changed pixel is not blue: %v", c)
	}
	if c := out.RGBAAt(1, 0); c.R <= 100 {
		t.Errorf("carrying pixel is not pink: %v", c)
	}
	if c := out.RGBAAt(2, 0); c != (color.RGBA{100, 100, 100, 100}) {
		t.Errorf("untouched pixel changed: %v", c)
	}
}
