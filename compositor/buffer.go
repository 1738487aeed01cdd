package compositor

import (
	"fmt"
	"os"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/shm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// pool is the server-side state of a wl_shm_pool: a read-only mapping
// of client memory, plus a count of readers and buffers keeping the
// mapping pinned. The file stays open so the mapping can be grown on
// resize.
type pool struct {
	cs   *clientConn
	obj  *wl.ShmPool
	file *os.File
	mmap shm.Mmap
	refs int
	dead bool
}

func newPool(cs *clientConn, obj *wl.ShmPool, file *os.File, size int32) (*pool, error) {
	mmap, err := shm.MapShared(file, int(size), unix.PROT_READ)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("map pool: %w", err)
	}

	return &pool{cs: cs, obj: obj, file: file, mmap: mmap}, nil
}

// unmapIfDone tears the mapping down once the pool has been destroyed
// and nothing is reading from it or carved out of it anymore.
func (p *pool) unmapIfDone() {
	if !p.dead || p.refs > 0 || p.mmap == nil {
		return
	}
	p.mmap.Unmap()
	p.mmap = nil
	p.file.Close()
	p.file = nil
}

func (p *pool) createBuffer(obj *wl.Buffer, offset, width, height, stride int32, format wl.ShmFormat) {
	display := p.cs.client.Display()

	if _, ok := formats[format]; !ok {
		display.Error(p.obj.ID(), uint32(wl.ShmErrorInvalidFormat), fmt.Sprintf("unsupported format %v", format))
		return
	}
	if width <= 0 || height <= 0 || stride < width*4 {
		display.Error(p.obj.ID(), uint32(wl.ShmErrorInvalidStride), fmt.Sprintf("bad buffer geometry %vx%v stride %v", width, height, stride))
		return
	}
	end := int64(offset) + int64(stride)*int64(height)
	if offset < 0 || end > int64(len(p.mmap)) {
		display.Error(p.obj.ID(), uint32(wl.ShmErrorInvalidStride), fmt.Sprintf("buffer ends at %v, pool is %v bytes", end, len(p.mmap)))
		return
	}

	b := buffer{
		pool:   p,
		obj:    obj,
		offset: offset,
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}
	p.refs++
	p.cs.buffers[obj] = &b
	obj.Listener = (*bufferListener)(&b)
}

func (p *pool) resize(size int32) {
	if p.mmap == nil {
		return
	}
	if int(size) <= len(p.mmap) {
		logrus.WithFields(logrus.Fields{
			"size":    size,
			"current": len(p.mmap),
		}).Warnln("Ignoring pool resize that does not grow it")
		return
	}

	mmap, err := shm.MapShared(p.file, int(size), unix.PROT_READ)
	if err != nil {
		logrus.WithError(err).Errorln("Remapping resized pool failed")
		p.cs.client.Display().Error(p.obj.ID(), uint32(wl.ShmErrorInvalidFd), "could not remap pool")
		return
	}
	p.mmap.Unmap()
	p.mmap = mmap
}

type poolListener pool

func (p *poolListener) CreateBuffer(buffer *wl.Buffer, offset, width, height, stride int32, format wl.ShmFormat) {
	(*pool)(p).createBuffer(buffer, offset, width, height, stride, format)
}

func (p *poolListener) Destroy() {
	pp := (*pool)(p)
	pp.dead = true
	pp.unmapIfDone()
}

func (p *poolListener) Resize(size int32) {
	(*pool)(p).resize(size)
}

// buffer is the server-side view of a wl_buffer: a rectangle of
// pixels somewhere inside a pool's mapping. The view holds only
// coordinates; the bytes are read out of the pool at upload time, so
// a pool resize in between is harmless.
type buffer struct {
	pool   *pool
	obj    *wl.Buffer
	offset int32
	width  int32
	height int32
	stride int32
	format wl.ShmFormat
	dead   bool
}

func (b *buffer) destroy() {
	if b.dead {
		return
	}
	b.dead = true
	delete(b.pool.cs.buffers, b.obj)
	b.pool.refs--
	b.pool.unmapIfDone()
}

// reader returns the bytes backing the buffer, pinning the pool
// mapping until release is called. It fails if the buffer or its
// mapping is gone, or if the buffer no longer fits the mapping.
func (b *buffer) reader() (data []byte, release func(), err error) {
	if b.dead || b.pool.mmap == nil {
		return nil, nil, ErrUnsupportedBuffer
	}
	end := int64(b.offset) + int64(b.stride)*int64(b.height)
	if end > int64(len(b.pool.mmap)) {
		return nil, nil, ErrUnsupportedBuffer
	}

	b.pool.refs++
	release = func() {
		b.pool.refs--
		b.pool.unmapIfDone()
	}
	return b.pool.mmap[b.offset:end:end], release, nil
}

type bufferListener buffer

func (b *bufferListener) Destroy() {
	(*buffer)(b).destroy()
}
