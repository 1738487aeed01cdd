package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	ShmPoolInterface = "wl_shm_pool"
	ShmPoolVersion   = 1
)

// ShmPoolListener handles the requests that a client makes of a
// wl_shm_pool.
type ShmPoolListener interface {
	// CreateBuffer carves a buffer out of the pool, starting offset
	// bytes in. Rows are stride bytes apart, which may be more than
	// width times the pixel size.
	CreateBuffer(buffer *Buffer, offset, width, height, stride int32, format ShmFormat)

	// Destroy is called just before the pool is removed from the
	// client's object store. Buffers created from the pool outlive
	// it.
	Destroy()

	// Resize grows the pool to the given size. Pools never shrink.
	Resize(size int32)
}

// ShmPool is the server side of a wl_shm_pool, a slab of client
// memory that buffers are created from.
type ShmPool struct {
	Listener ShmPoolListener

	id     uint32
	client *Client
}

func NewShmPool(client *Client) *ShmPool {
	return &ShmPool{client: client}
}

func (p *ShmPool) ID() uint32      { return p.id }
func (p *ShmPool) SetID(id uint32) { p.id = id }
func (p *ShmPool) Delete()         {}

func (p *ShmPool) String() string {
	return fmt.Sprintf("%v@%v", ShmPoolInterface, p.id)
}

func (p *ShmPool) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_buffer"
	case 1:
		return "destroy"
	case 2:
		return "resize"
	}
	return "unknown"
}

func (p *ShmPool) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_buffer
		buffer := NewBuffer(p.client)
		buffer.SetID(msg.ReadUint())
		offset := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		stride := msg.ReadInt()
		format := ShmFormat(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		p.client.Add(buffer)
		if p.Listener != nil {
			p.Listener.CreateBuffer(buffer, offset, width, height, stride, format)
		}
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Destroy()
		}
		p.client.Destroy(p)
		return nil

	case 2: // resize
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Resize(size)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ShmPoolInterface, Type: "request", Op: msg.Op()}
}
