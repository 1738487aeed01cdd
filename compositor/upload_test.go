package compositor

import (
	"bytes"
	"errors"
	"testing"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/shm"
)

func TestConvert(t *testing.T) {
	src := []byte{0x10, 0x20, 0x30, 0x80}

	tests := []struct {
		name   string
		format wl.ShmFormat
		want   []byte
	}{
		{"argb8888", wl.ShmFormatArgb8888, []byte{0x30, 0x20, 0x10, 0x80}},
		{"xrgb8888", wl.ShmFormatXrgb8888, []byte{0x30, 0x20, 0x10, 0xFF}},
		{"abgr8888", wl.ShmFormatAbgr8888, []byte{0x10, 0x20, 0x30, 0x80}},
		{"xbgr8888", wl.ShmFormatXbgr8888, []byte{0x10, 0x20, 0x30, 0xFF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw, ok := formats[tt.format]
			if !ok {
				t.Fatalf("format %v not in the table", tt.format)
			}
			dst := make([]byte, 4)
			convert(dst, src, 4, 1, 1, sw)
			if !bytes.Equal(dst, tt.want) {
				t.Fatalf("convert = %#v, want %#v", dst, tt.want)
			}
		})
	}
}

func TestConvertSkipsRowPadding(t *testing.T) {
	// Two 2x1 rows with 4 bytes of poisoned padding between them.
	src := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0xEE, 0xEE, 0xEE, 0xEE,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18, 0xEE, 0xEE, 0xEE, 0xEE,
	}
	dst := make([]byte, 2*2*4)
	convert(dst, src, 12, 2, 2, formats[wl.ShmFormatArgb8888])

	want := []byte{
		0x03, 0x02, 0x01, 0x04, 0x07, 0x06, 0x05, 0x08,
		0x13, 0x12, 0x11, 0x14, 0x17, 0x16, 0x15, 0x18,
	}
	if !bytes.Equal(dst, want) {
		t.Fatalf("convert = %#v, want %#v", dst, want)
	}
	if bytes.IndexByte(dst, 0xEE) >= 0 {
		t.Fatal("padding bytes leaked into the output")
	}
}

// uploadFixture is a handle wired to a fake host and a buffer view
// over plain memory, with no protocol behind either.
func uploadFixture(t *testing.T, src []byte, width, height, stride int32, format wl.ShmFormat) (*Handle, *fakeDrawable, *buffer) {
	t.Helper()

	host := newFakeHost()
	cs := clientConn{comp: &Server{host: host}}
	d, err := host.CreateDrawable(1, 1)
	if err != nil {
		t.Fatalf("create drawable: %v", err)
	}
	h := Handle{cs: &cs, alive: true, drawable: d}

	b := buffer{
		pool:   &pool{cs: &cs, mmap: shm.Mmap(src)},
		obj:    &wl.Buffer{},
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}
	return &h, d.(*fakeDrawable), &b
}

func TestUpload(t *testing.T) {
	src := []byte{
		0x10, 0x20, 0x30, 0xFF,
		0x11, 0x21, 0x31, 0xFF,
	}
	h, d, b := uploadFixture(t, src, 2, 1, 8, wl.ShmFormatArgb8888)

	if err := h.upload(b); err != nil {
		t.Fatalf("upload: %v", err)
	}

	want := []byte{
		0x30, 0x20, 0x10, 0xFF,
		0x31, 0x21, 0x11, 0xFF,
	}
	if !bytes.Equal(d.pix, want) {
		t.Fatalf("pixels = %#v, want %#v", d.pix, want)
	}
	if w, ht := h.Size(); w != 2 || ht != 1 {
		t.Fatalf("size = %vx%v, want 2x1", w, ht)
	}
	if d.width != 2 || d.height != 1 {
		t.Fatalf("drawable size = %vx%v, want 2x1", d.width, d.height)
	}
	if d.x != (640-2)/2 || d.y != (480-1)/2 {
		t.Fatalf("drawable at (%v, %v), want centered", d.x, d.y)
	}
	if b.pool.refs != 0 {
		t.Fatalf("pool refs = %v after upload, want 0", b.pool.refs)
	}

	// A second upload with the same dimensions reuses the store.
	if err := h.upload(b); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if d.uploads != 2 {
		t.Fatalf("uploads = %v, want 2", d.uploads)
	}
}

func TestUploadUnknownFormat(t *testing.T) {
	h, d, b := uploadFixture(t, make([]byte, 4), 1, 1, 4, wl.ShmFormat(999))

	err := h.upload(b)
	if !errors.Is(err, ErrUnsupportedBuffer) {
		t.Fatalf("upload = %v, want ErrUnsupportedBuffer", err)
	}
	if d.uploads != 0 {
		t.Fatal("failed upload still reached the drawable")
	}
}

func TestUploadDeadBuffer(t *testing.T) {
	h, d, b := uploadFixture(t, make([]byte, 4), 1, 1, 4, wl.ShmFormatArgb8888)
	b.dead = true

	if err := h.upload(b); !errors.Is(err, ErrUnsupportedBuffer) {
		t.Fatalf("upload = %v, want ErrUnsupportedBuffer", err)
	}
	if d.uploads != 0 {
		t.Fatal("dead buffer still reached the drawable")
	}
}

func TestUploadBufferBeyondMapping(t *testing.T) {
	// The view claims more rows than the mapping holds.
	h, _, b := uploadFixture(t, make([]byte, 8), 1, 4, 4, wl.ShmFormatArgb8888)

	if err := h.upload(b); !errors.Is(err, ErrUnsupportedBuffer) {
		t.Fatalf("upload = %v, want ErrUnsupportedBuffer", err)
	}
}
