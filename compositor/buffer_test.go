package compositor

import (
	"errors"
	"testing"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/shm"
)

// testPool maps a real shm file of the given size. The pool has no
// protocol object behind it, which only the error paths would need.
func testPool(t *testing.T, size int32) (*pool, *clientConn) {
	t.Helper()

	file, err := shm.Create()
	if err != nil {
		t.Fatalf("create shm file: %v", err)
	}
	if err := file.Truncate(int64(size)); err != nil {
		file.Close()
		t.Fatalf("truncate shm file: %v", err)
	}

	cs := clientConn{buffers: make(map[*wl.Buffer]*buffer)}
	p, err := newPool(&cs, nil, file, size)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(func() {
		if p.mmap != nil {
			p.mmap.Unmap()
			p.file.Close()
		}
	})
	return p, &cs
}

// carve registers a buffer view on the pool the way createBuffer
// would, without a connection to validate against.
func carve(p *pool, cs *clientConn, offset, width, height, stride int32) *buffer {
	b := buffer{
		pool:   p,
		obj:    &wl.Buffer{},
		offset: offset,
		width:  width,
		height: height,
		stride: stride,
		format: wl.ShmFormatArgb8888,
	}
	p.refs++
	cs.buffers[b.obj] = &b
	return &b
}

func TestPoolPinning(t *testing.T) {
	p, cs := testPool(t, 16)
	b := carve(p, cs, 0, 2, 2, 8)

	if _, err := p.file.WriteAt([]byte{0xAB}, 3); err != nil {
		t.Fatalf("write through file: %v", err)
	}

	// Destroying the pool with a live buffer must not unmap.
	(*poolListener)(p).Destroy()
	if !p.dead {
		t.Fatal("pool not marked dead")
	}
	if p.mmap == nil {
		t.Fatal("mapping dropped while a buffer pins it")
	}

	data, release, err := b.reader()
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	if data[3] != 0xAB {
		t.Fatalf("data[3] = %#x, want the byte written through the file", data[3])
	}
	if p.refs != 2 {
		t.Fatalf("refs = %v with a buffer and a reader, want 2", p.refs)
	}

	// The reader alone keeps the mapping too.
	release()
	if p.mmap == nil {
		t.Fatal("mapping dropped while the buffer still pins it")
	}

	b.destroy()
	if p.mmap != nil || p.file != nil {
		t.Fatal("mapping survived the last unpin of a dead pool")
	}
	if len(cs.buffers) != 0 {
		t.Fatalf("%v buffer views left, want none", len(cs.buffers))
	}

	// Destroy is idempotent.
	b.destroy()
	if p.refs != 0 {
		t.Fatalf("refs = %v after double destroy, want 0", p.refs)
	}
}

func TestPoolResizeGrows(t *testing.T) {
	p, _ := testPool(t, 16)

	if err := p.file.Truncate(32); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	p.resize(32)
	if len(p.mmap) != 32 {
		t.Fatalf("len(mmap) = %v after grow, want 32", len(p.mmap))
	}

	// Shrinking is not a thing; the old mapping stays.
	p.resize(8)
	if len(p.mmap) != 32 {
		t.Fatalf("len(mmap) = %v after shrink attempt, want 32", len(p.mmap))
	}
}

func TestBufferReaderBounds(t *testing.T) {
	p, cs := testPool(t, 16)

	// A view that claims more than the mapping holds is refused.
	b := carve(p, cs, 0, 2, 4, 8)
	if _, _, err := b.reader(); !errors.Is(err, ErrUnsupportedBuffer) {
		t.Fatalf("reader = %v, want ErrUnsupportedBuffer", err)
	}

	// Shrunk to a fitting size it reads fine.
	b.height = 2
	data, release, err := b.reader()
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	defer release()
	if len(data) != 16 {
		t.Fatalf("len(data) = %v, want 16", len(data))
	}
}
