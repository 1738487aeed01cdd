package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	ShmPoolInterface = "wl_shm_pool"
	ShmPoolVersion   = 1
)

// ShmPool is a client-side wl_shm_pool proxy.
type ShmPool struct {
	id     uint32
	client *Client
}

func (p *ShmPool) ID() uint32      { return p.id }
func (p *ShmPool) SetID(id uint32) { p.id = id }
func (p *ShmPool) Delete()         {}

func (p *ShmPool) String() string {
	return fmt.Sprintf("%v@%v", ShmPoolInterface, p.id)
}

func (p *ShmPool) MethodName(op uint16) string {
	return "unknown"
}

func (p *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: ShmPoolInterface, Type: "event", Op: msg.Op()}
}

// CreateBuffer creates a buffer backed by a slice of the pool's
// memory, starting at offset. stride is the number of bytes from the
// start of one row to the start of the next.
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format ShmFormat) *Buffer {
	b := Buffer{client: p.client}
	p.client.Add(&b)

	msg := wire.NewMessage(p, 0)
	msg.Method = "create_buffer"
	msg.Args = []any{&b, offset, width, height, stride, format}
	msg.WriteUint(b.id)
	msg.WriteInt(offset)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(stride)
	msg.WriteUint(uint32(format))
	p.client.Enqueue(msg)

	return &b
}

// Destroy destroys the pool. Buffers created from it remain valid.
func (p *ShmPool) Destroy() {
	msg := wire.NewMessage(p, 1)
	msg.Method = "destroy"
	p.client.Enqueue(msg)
}

// Resize tells the server that the underlying file has grown to size
// bytes.
func (p *ShmPool) Resize(size int32) {
	msg := wire.NewMessage(p, 2)
	msg.Method = "resize"
	msg.Args = []any{size}
	msg.WriteInt(size)
	p.client.Enqueue(msg)
}
