package wl

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"deedles.dev/nest/shm"
	"deedles.dev/ximage/format"
	"golang.org/x/sys/unix"
)

// ImageBuffer bundles the pieces necessary to draw into shared memory
// from the client side. It owns an anonymous file, a mapping of it, a
// pool sharing it with the server, and a buffer into the pool.
type ImageBuffer struct {
	w, h int32
	shm  *Shm
	pool *ShmPool
	buf  *Buffer
	file *os.File
	mmap shm.Mmap
}

// NewImageBuffer creates a w by h ARGB8888 image buffer backed by a
// fresh shared memory file.
func NewImageBuffer(s *Shm, w, h int32) (buf *ImageBuffer, err error) {
	defer func() {
		if err != nil {
			buf.Destroy()
		}
	}()

	buf = &ImageBuffer{
		w:   w,
		h:   h,
		shm: s,
	}
	size := buf.Stride() * buf.h

	file, err := shm.Create()
	if err != nil {
		return buf, fmt.Errorf("create SHM file: %w", err)
	}
	buf.file = file
	buf.file.Truncate(int64(size))

	mmap, err := shm.MapShared(file, int(size), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return buf, fmt.Errorf("mmap SHM file: %w", err)
	}
	buf.mmap = mmap

	buf.pool = buf.shm.CreatePool(file, int32(len(buf.mmap)))
	buf.buf = buf.pool.CreateBuffer(0, w, h, buf.Stride(), ShmFormatArgb8888)

	return buf, nil
}

// Destroy releases everything the buffer holds, both locally and on
// the server.
func (buf *ImageBuffer) Destroy() {
	if buf.buf != nil {
		buf.buf.Destroy()
	}
	if buf.pool != nil {
		buf.pool.Destroy()
	}
	if buf.mmap != nil {
		buf.mmap.Unmap()
	}
	if buf.file != nil {
		buf.file.Close()
	}
}

func (buf *ImageBuffer) Shm() *Shm {
	return buf.shm
}

func (buf *ImageBuffer) ShmPool() *ShmPool {
	return buf.pool
}

// Buffer returns the wl_buffer proxy, for attaching to a surface.
func (buf *ImageBuffer) Buffer() *Buffer {
	return buf.buf
}

func (buf *ImageBuffer) Stride() int32 {
	return buf.w * 4
}

func (buf *ImageBuffer) Len() int32 {
	return buf.Stride() * buf.h
}

func (buf *ImageBuffer) Cap() int32 {
	return int32(cap(buf.mmap))
}

func (buf *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(buf.w), int(buf.h))
}

// Resize adjusts the buffer to w by h, growing the underlying file
// and remapping it if the current mapping is too small.
func (buf *ImageBuffer) Resize(w, h int32) error {
	if (w == buf.w) && (h == buf.h) {
		return nil
	}

	buf.w = w
	buf.h = h
	if buf.Len() <= buf.Cap() {
		buf.mmap = buf.mmap[:buf.Len()]
	} else if err := buf.grow(); err != nil {
		return err
	}

	buf.buf.Destroy()
	buf.buf = buf.pool.CreateBuffer(0, buf.w, buf.h, buf.Stride(), ShmFormatArgb8888)
	return nil
}

// grow extends the file and the pool to the current Len and replaces
// the mapping with one of the new size.
func (buf *ImageBuffer) grow() error {
	buf.file.Truncate(int64(buf.Len()))

	if err := buf.mmap.Unmap(); err != nil {
		return fmt.Errorf("unmap: %w", err)
	}
	mmap, err := shm.MapShared(buf.file, int(buf.Len()), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return fmt.Errorf("mmap: %w", err)
	}
	buf.mmap = mmap

	buf.pool.Resize(buf.Len())
	return nil
}

// Image returns a draw.Image view of the mapped memory. Drawing into
// it writes directly into the shared file.
func (buf *ImageBuffer) Image() draw.Image {
	return &format.Image{
		Format: format.ARGB8888,
		Rect:   buf.Bounds(),
		Pix:    buf.mmap,
	}
}
