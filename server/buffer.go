package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	BufferInterface = "wl_buffer"
	BufferVersion   = 1
)

// BufferListener handles the requests that a client makes of a
// wl_buffer.
type BufferListener interface {
	// Destroy is called just before the buffer is removed from the
	// client's object store.
	Destroy()
}

// Buffer is the server side of a wl_buffer.
type Buffer struct {
	Listener BufferListener

	id     uint32
	client *Client
}

func NewBuffer(client *Client) *Buffer {
	return &Buffer{client: client}
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
		return "destroy"
	}
	return "unknown"
}

func (b *Buffer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if b.Listener != nil {
			b.Listener.Destroy()
		}
		b.client.Destroy(b)
		return nil
	}

	return wire.UnknownOpError{Interface: BufferInterface, Type: "request", Op: msg.Op()}
}

// Release tells the client that the server is done reading from the
// buffer and that it is free to reuse the memory.
func (b *Buffer) Release() {
	msg := wire.NewMessage(b, 0)
	msg.Method = "release"
	b.client.Enqueue(msg)
}
