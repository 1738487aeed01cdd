package present

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"gitlab.com/mstarongitlab/goutils/sliceutils"
	"golang.org/x/image/draw"
)

// Canvas is a software Host: a fixed-size viewport that composites
// its drawables in creation order, oldest at the bottom. It exists
// for the daemon and for tests; rendering happens only when asked.
//
// Like any Host, a Canvas must be driven from a single goroutine.
type Canvas struct {
	width, height int
	background    color.Color
	drawables     []*canvasDrawable
}

// NewCanvas returns a canvas of the given size filled with the given
// background color.
func NewCanvas(width, height int, background color.Color) *Canvas {
	return &Canvas{
		width:      width,
		height:     height,
		background: background,
	}
}

func (c *Canvas) CreateDrawable(width, height int) (Drawable, error) {
	d := canvasDrawable{
		canvas:  c,
		width:   width,
		height:  height,
		visible: true,
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	c.drawables = append(c.drawables, &d)
	return &d, nil
}

func (c *Canvas) ViewportSize() (width, height int) {
	return c.width, c.height
}

// Render composites the current state of all visible drawables onto
// the background and returns the result. The returned image is the
// caller's to keep.
func (c *Canvas) Render() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(out, out.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)

	for _, d := range c.drawables {
		if !d.visible || d.width <= 0 || d.height <= 0 {
			continue
		}

		if d.width <= c.width && d.height <= c.height {
			r := image.Rect(d.x, d.y, d.x+d.width, d.y+d.height)
			draw.Draw(out, r, d.img, d.img.Rect.Min, draw.Over)
			continue
		}

		// Too big for the viewport: scale to fit, centered,
		// preserving aspect ratio.
		fw, fh := fit(d.width, d.height, c.width, c.height)
		r := image.Rect(0, 0, fw, fh).Add(image.Pt((c.width-fw)/2, (c.height-fh)/2))
		draw.ApproxBiLinear.Scale(out, r, d.img, d.img.Bounds(), draw.Over, nil)
	}

	return out
}

// EncodePNG renders the canvas and writes it as a PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.Render())
}

func (c *Canvas) remove(d *canvasDrawable) {
	c.drawables = sliceutils.Filter(c.drawables, func(o *canvasDrawable) bool { return o != d })
}

// fit shrinks w by h to fit inside maxW by maxH, preserving aspect
// ratio. At least one dimension becomes exact.
func fit(w, h, maxW, maxH int) (int, int) {
	if w*maxH >= h*maxW {
		return maxW, max(h*maxW/w, 1)
	}
	return max(w*maxH/h, 1), maxH
}

type canvasDrawable struct {
	canvas        *Canvas
	x, y          int
	width, height int
	visible       bool
	img           *image.RGBA
}

func (d *canvasDrawable) Resize(width, height int) {
	d.width, d.height = width, height
	d.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (d *canvasDrawable) Move(x, y int) {
	d.x, d.y = x, y
}

func (d *canvasDrawable) SetPixels(pix []byte) {
	copy(d.img.Pix, pix)
}

func (d *canvasDrawable) SetVisible(visible bool) {
	d.visible = visible
}

func (d *canvasDrawable) Destroy() {
	if d.canvas == nil {
		return
	}
	d.canvas.remove(d)
	d.canvas = nil
}
