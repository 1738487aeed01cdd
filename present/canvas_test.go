package present

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var (
	red   = color.RGBA{R: 0xFF, A: 0xFF}
	green = color.RGBA{G: 0xFF, A: 0xFF}
	blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

// pixels returns a tightly packed RGBA fill, the format SetPixels
// expects.
func pixels(width, height int, c color.RGBA) []byte {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
	return pix
}

func TestCanvasBackground(t *testing.T) {
	c := NewCanvas(4, 2, red)

	out := c.Render()
	if got := out.Bounds(); got != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v", got)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if got := out.RGBAAt(x, y); got != red {
				t.Fatalf("pixel (%v, %v) = %v, want background", x, y, got)
			}
		}
	}
}

func TestCanvasCompositeOrder(t *testing.T) {
	c := NewCanvas(2, 2, red)

	older, err := c.CreateDrawable(1, 1)
	if err != nil {
		t.Fatalf("create drawable: %v", err)
	}
	newer, err := c.CreateDrawable(1, 1)
	if err != nil {
		t.Fatalf("create drawable: %v", err)
	}

	older.SetPixels(pixels(1, 1, blue))
	newer.SetPixels(pixels(1, 1, green))

	if got := c.Render().RGBAAt(0, 0); got != green {
		t.Fatalf("pixel = %v, want the newer drawable on top", got)
	}

	newer.SetVisible(false)
	if got := c.Render().RGBAAt(0, 0); got != blue {
		t.Fatalf("pixel = %v, want the older drawable after hiding the newer", got)
	}
}

func TestCanvasMove(t *testing.T) {
	c := NewCanvas(4, 4, red)

	d, err := c.CreateDrawable(1, 1)
	if err != nil {
		t.Fatalf("create drawable: %v", err)
	}
	d.SetPixels(pixels(1, 1, green))
	d.Move(2, 1)

	out := c.Render()
	if got := out.RGBAAt(2, 1); got != green {
		t.Fatalf("pixel (2, 1) = %v, want the drawable", got)
	}
	if got := out.RGBAAt(0, 0); got != red {
		t.Fatalf("pixel (0, 0) = %v, want background", got)
	}
}

func TestCanvasScalesOversized(t *testing.T) {
	c := NewCanvas(4, 4, red)

	d, err := c.CreateDrawable(8, 4)
	if err != nil {
		t.Fatalf("create drawable: %v", err)
	}
	d.SetPixels(pixels(8, 4, green))

	// 8x4 fits 4x4 as 4x2, centered vertically.
	out := c.Render()
	if got := out.RGBAAt(0, 1); got != green {
		t.Fatalf("pixel (0, 1) = %v, want scaled drawable", got)
	}
	if got := out.RGBAAt(3, 2); got != green {
		t.Fatalf("pixel (3, 2) = %v, want scaled drawable", got)
	}
	if got := out.RGBAAt(0, 0); got != red {
		t.Fatalf("pixel (0, 0) = %v, want background above the scaled image", got)
	}
	if got := out.RGBAAt(3, 3); got != red {
		t.Fatalf("pixel (3, 3) = %v, want background below the scaled image", got)
	}
}

func TestCanvasDestroy(t *testing.T) {
	c := NewCanvas(2, 2, red)

	d, err := c.CreateDrawable(2, 2)
	if err != nil {
		t.Fatalf("create drawable: %v", err)
	}
	d.SetPixels(pixels(2, 2, green))

	d.Destroy()
	d.Destroy()

	if got := c.Render().RGBAAt(0, 0); got != red {
		t.Fatalf("pixel = %v, want background after destroy", got)
	}
	if len(c.drawables) != 0 {
		t.Fatalf("%v drawables left after destroy", len(c.drawables))
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{8, 4, 4, 4, 4, 2},
		{4, 8, 4, 4, 2, 4},
		{10, 10, 4, 4, 4, 4},
		{100, 1, 10, 10, 10, 1},
		{1, 100, 10, 10, 1, 10},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fit(%v, %v, %v, %v) = %v, %v, want %v, %v",
				tt.w, tt.h, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestCanvasEncodePNG(t *testing.T) {
	c := NewCanvas(4, 2, blue)

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 4, 2) {
		t.Fatalf("bounds = %v", got)
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0xFFFF || a != 0xFFFF {
		t.Fatalf("pixel = %v %v %v %v, want opaque blue", r, g, b, a)
	}
}
