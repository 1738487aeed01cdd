package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	DisplayInterface = "wl_display"
	DisplayVersion   = 1
)

// DisplayListener handles the events that the server sends on the
// wl_display.
type DisplayListener interface {
	// Error reports a fatal protocol error. The connection is dead
	// afterwards.
	Error(id, code uint32, msg string)

	// DeleteId confirms that an object is gone and its ID may be
	// reused. The proxy is removed from the client's store before
	// this is called.
	DeleteId(id uint32)
}

// Display is the client's wl_display proxy. Every Client has one,
// with the well-known ID 1.
type Display struct {
	Listener DisplayListener

	id     uint32
	client *Client
}

func NewDisplay(client *Client) *Display {
	return &Display{client: client}
}

func (d *Display) ID() uint32      { return d.id }
func (d *Display) SetID(id uint32) { d.id = id }
func (d *Display) Delete()         {}

func (d *Display) String() string {
	return fmt.Sprintf("%v@%v", DisplayInterface, d.id)
}

func (d *Display) MethodName(op uint16) string {
	switch op {
	case 0:
		return "error"
	case 1:
		return "delete_id"
	}
	return "unknown"
}

func (d *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // error
		id := msg.ReadUint()
		code := msg.ReadUint()
		text := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if d.Listener != nil {
			d.Listener.Error(id, code, text)
		}
		return nil

	case 1: // delete_id
		id := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		d.client.Delete(id)
		if d.Listener != nil {
			d.Listener.DeleteId(id)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: DisplayInterface, Type: "event", Op: msg.Op()}
}

// Sync asks the server for an acknowledgement that everything
// requested so far has been handled. The returned callback fires when
// the acknowledgement arrives.
func (d *Display) Sync() *Callback {
	cb := NewCallback(d.client)
	d.client.Add(cb)

	msg := wire.NewMessage(d, 0)
	msg.Method = "sync"
	msg.Args = []any{cb}
	msg.WriteUint(cb.ID())
	d.client.Enqueue(msg)

	return cb
}

// GetRegistry creates a registry through which the server's globals
// are advertised and bound.
func (d *Display) GetRegistry() *Registry {
	registry := NewRegistry(d.client)
	d.client.Add(registry)

	msg := wire.NewMessage(d, 1)
	msg.Method = "get_registry"
	msg.Args = []any{registry}
	msg.WriteUint(registry.ID())
	d.client.Enqueue(msg)

	return registry
}
