package images

import (
	"image"
	"strings"
	"testing"
)

func TestParseURLs(t *testing.T) {
	data := "https://example.com/a.jpg\n\n# comment\n  http://example.com/b.jpg?x=1  \nftp://nope\n"
	urls, err := ParseURLs(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"https://example.com/a.jpg", "http://example.com/b.jpg?x=1"}
	if len(urls) != len(want) {
		t.Fatalf("ParseURLs() = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("ParseURLs()[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestSizedURI(t *testing.T) {
	if got := sizedURI("https://example.com/a.jpg", 640, 360); got != "https://example.com/a.jpg?w=640&h=360" {
		t.Errorf("sizedURI() = %q", got)
	}
	if got := sizedURI("https://example.com/a.jpg?auto=compress", 640, 360); got != "https://example.com/a.jpg?auto=compress&w=640&h=360" {
		t.Errorf("sizedURI() = %q", got)
	}
}

func TestCenterCrop(t *testing.T) {
	test := []struct {
		name   string
		bounds image.Rectangle
		exp    image.Rectangle
	}{
		{"same ratio", image.Rect(0, 0, 160, 90), image.Rect(0, 0, 160, 90)},
		{"too wide", image.Rect(0, 0, 200, 90), image.Rect(20, 0, 180, 90)},
		{"too tall", image.Rect(0, 0, 160, 190), image.Rect(0, 50, 160, 140)},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			if got := CenterCrop(tt.bounds, 16, 9); got != tt.exp {
				t.Errorf("CenterCrop() = %v, want %v", got, tt.exp)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	f := NewFetcher(t.TempDir())
	for _, uri := range GeneratedURIs() {
		img, err := f.Fetch(uri, 12, 8)
		if err != nil {
			t.Fatalf("Fetch(%q) error = %v", uri, err)
		}
		if img.Bounds() != image.Rect(0, 0, 12, 8) {
			t.Errorf("Fetch(%q) bounds = %v", uri, img.Bounds())
		}
	}

	a, _ := Generate("noise", 4, 4, 7)
	b, _ := Generate("noise", 4, 4, 7)
	if string(a.(*image.RGBA).Pix) != string(b.(*image.RGBA).Pix) {
		t.Error("Generate() is not deterministic for a fixed seed")
	}
	if _, err := Generate("stripes", 4, 4, 1); err == nil {
		t.Error("Generate() accepted an unknown kind")
	}
}
