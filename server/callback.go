package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	CallbackInterface = "wl_callback"
	CallbackVersion   = 1
)

// Callback is the server side of a wl_callback. It has no requests;
// the server fires it exactly once with Done.
type Callback struct {
	id     uint32
	client *Client
}

func NewCallback(client *Client) *Callback {
	return &Callback{client: client}
}

func (cb *Callback) ID() uint32      { return cb.id }
func (cb *Callback) SetID(id uint32) { cb.id = id }
func (cb *Callback) Delete()         {}

func (cb *Callback) String() string {
	return fmt.Sprintf("%v@%v", CallbackInterface, cb.id)
}

func (cb *Callback) MethodName(op uint16) string {
	return "unknown"
}

func (cb *Callback) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: CallbackInterface, Type: "request", Op: msg.Op()}
}

// Done fires the callback and destroys it. A callback can only fire
// once.
func (cb *Callback) Done(data uint32) {
	msg := wire.NewMessage(cb, 0)
	msg.Method = "done"
	msg.Args = []any{data}
	msg.WriteUint(data)
	cb.client.Enqueue(msg)
	cb.client.Destroy(cb)
}
