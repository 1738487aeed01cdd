package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	CallbackInterface = "wl_callback"
	CallbackVersion   = 1
)

// CallbackListener handles the single event that a wl_callback ever
// delivers.
type CallbackListener interface {
	Done(data uint32)
}

// Callback is a client-side wl_callback proxy.
type Callback struct {
	Listener CallbackListener

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
	switch op {
	case 0:
		return "done"
	}
	return "unknown"
}

func (cb *Callback) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // done
		data := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if cb.Listener != nil {
			cb.Listener.Done(data)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: CallbackInterface, Type: "event", Op: msg.Op()}
}

// Then sets the callback's listener to f.
func (cb *Callback) Then(f func(uint32)) {
	cb.Listener = callbackListener(f)
}

type callbackListener func(uint32)

func (lis callbackListener) Done(data uint32) {
	lis(data)
}
