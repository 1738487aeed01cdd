package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	BufferInterface = "wl_buffer"
	BufferVersion   = 1
)

// BufferListener handles the events that the server sends on a
// wl_buffer.
type BufferListener interface {
	// Release means that the server is no longer reading from the
	// buffer and the client is free to reuse its memory.
	Release()
}

// Buffer is a client-side wl_buffer proxy.
type Buffer struct {
	Listener BufferListener

	id     uint32
	client *Client
}

func (b *Buffer) ID() uint32      { return b.id }
func (b *Buffer) SetID(id uint32) { b.id = id }
func (b *Buffer) Delete()         {}

func (b *Buffer) String() string {
	return fmt.Sprintf("%v@%v", BufferInterface, b.id)
}

func (b *Buffer) MethodName(op uint16) string {
	switch op {
	case 0:
		return "release"
	}
	return "unknown"
}

func (b *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // release
		if b.Listener != nil {
			b.Listener.Release()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: BufferInterface, Type: "event", Op: msg.Op()}
}

// Destroy destroys the buffer. The ID is removed when the server
// acknowledges with a delete_id.
func (b *Buffer) Destroy() {
	msg := wire.NewMessage(b, 0)
	msg.Method = "destroy"
	b.client.Enqueue(msg)
}
