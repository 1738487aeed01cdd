package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	RegionInterface = "wl_region"
	RegionVersion   = 1
)

// Region is a client-side wl_region proxy.
type Region struct {
	id     uint32
	client *Client
}

func (r *Region) ID() uint32      { return r.id }
func (r *Region) SetID(id uint32) { r.id = id }
func (r *Region) Delete()         {}

func (r *Region) String() string {
	return fmt.Sprintf("%v@%v", RegionInterface, r.id)
}

func (r *Region) MethodName(op uint16) string {
	return "unknown"
}

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: RegionInterface, Type: "event", Op: msg.Op()}
}

func (r *Region) Destroy() {
	msg := wire.NewMessage(r, 0)
	msg.Method = "destroy"
	r.client.Enqueue(msg)
}

func (r *Region) Add(x, y, width, height int32) {
	msg := wire.NewMessage(r, 1)
	msg.Method = "add"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	r.client.Enqueue(msg)
}

func (r *Region) Subtract(x, y, width, height int32) {
	msg := wire.NewMessage(r, 2)
	msg.Method = "subtract"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	r.client.Enqueue(msg)
}
