package compositor

import (
	"fmt"

	wl "deedles.dev/nest/server"
)

// swizzle says which byte of a 4-byte source pixel feeds each channel
// of the RGBA output. opaque formats ignore their fourth byte and
// produce full alpha.
type swizzle struct {
	r, g, b, a int
	opaque     bool
}

// formats maps each shm format the upload path understands to its
// channel layout. The registry only advertises the two RGB variants;
// the BGR pair is one table row each, so it is handled anyway.
var formats = map[wl.ShmFormat]swizzle{
	wl.ShmFormatArgb8888: {r: 2, g: 1, b: 0, a: 3},
	wl.ShmFormatXrgb8888: {r: 2, g: 1, b: 0, opaque: true},
	wl.ShmFormatAbgr8888: {r: 0, g: 1, b: 2, a: 3},
	wl.ShmFormatXbgr8888: {r: 0, g: 1, b: 2, opaque: true},
}

// upload copies the committed buffer's pixels into the window's
// drawable as tightly packed RGBA, resizing the window first if the
// buffer's dimensions changed.
func (h *Handle) upload(b *buffer) error {
	sw, ok := formats[b.format]
	if !ok {
		return fmt.Errorf("%w: format %v", ErrUnsupportedBuffer, b.format)
	}

	data, release, err := b.reader()
	if err != nil {
		return err
	}
	defer release()

	w, ht := int(b.width), int(b.height)
	if w != h.width || ht != h.height {
		h.resize(w, ht)
	}

	convert(h.pix, data, int(b.stride), w, ht, sw)
	h.drawable.SetPixels(h.pix)
	return nil
}

// convert swizzles src, whose rows are stride bytes apart, into the
// tightly packed RGBA store dst. Any padding bytes between rows are
// never read.
func convert(dst, src []byte, stride, width, height int, sw swizzle) {
	for y := 0; y < height; y++ {
		row := src[y*stride : y*stride+width*4]
		out := dst[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			o := out[x*4 : x*4+4 : x*4+4]
			o[0] = p[sw.r]
			o[1] = p[sw.g]
			o[2] = p[sw.b]
			if sw.opaque {
				o[3] = 0xFF
			} else {
				o[3] = p[sw.a]
			}
		}
	}
}
