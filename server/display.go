package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	DisplayInterface = "wl_display"
	DisplayVersion   = 1
)

// DisplayError is a fatal error code, sent alongside the offending
// object in a wl_display error event.
type DisplayError uint32

const (
	DisplayErrorInvalidObject  DisplayError = 0
	DisplayErrorInvalidMethod  DisplayError = 1
	DisplayErrorNoMemory       DisplayError = 2
	DisplayErrorImplementation DisplayError = 3
)

// DisplayListener handles the requests that a client makes of its
// wl_display.
type DisplayListener interface {
	// Sync is called when the client wants to know that all of its
	// previous requests have been handled. The handler should call
	// cb.Done once that is the case.
	Sync(cb *Callback)

	// GetRegistry is called with a newly created registry. The handler
	// should announce the server's globals on it.
	GetRegistry(registry *Registry)
}

// Display is the server side of a client's wl_display, the object
// through which every other object is ultimately created. Each Client
// gets one automatically, with the well-known ID 1.
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
		return "sync"
	case 1:
		return "get_registry"
	}
	return "unknown"
}

func (d *Display) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // sync
		cb := NewCallback(d.client)
		cb.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		d.client.Add(cb)
		if d.Listener != nil {
			d.Listener.Sync(cb)
		}
		return nil

	case 1: // get_registry
		registry := NewRegistry(d.client)
		registry.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		d.client.Add(registry)
		if d.Listener != nil {
			d.Listener.GetRegistry(registry)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: DisplayInterface, Type: "request", Op: msg.Op()}
}

// Error sends a fatal error event to the client. objectID identifies
// the object that the error is about, and code is interpreted
// relative to that object's interface.
func (d *Display) Error(objectID uint32, code uint32, message string) {
	msg := wire.NewMessage(d, 0)
	msg.Method = "error"
	msg.Args = []any{objectID, code, message}
	msg.WriteUint(objectID)
	msg.WriteUint(code)
	msg.WriteString(message)
	d.client.Enqueue(msg)
}

// DeleteId tells the client that an object ID is no longer in use and
// may be reused. It is sent automatically by Client.Destroy.
func (d *Display) DeleteId(id uint32) {
	msg := wire.NewMessage(d, 1)
	msg.Method = "delete_id"
	msg.Args = []any{id}
	msg.WriteUint(id)
	d.client.Enqueue(msg)
}
