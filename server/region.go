package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	RegionInterface = "wl_region"
	RegionVersion   = 1
)

// RegionListener handles the requests that a client makes of a
// wl_region.
type RegionListener interface {
	Destroy()
	Add(x, y, width, height int32)
	Subtract(x, y, width, height int32)
}

// Region is the server side of a wl_region.
type Region struct {
	Listener RegionListener

	id     uint32
	client *Client
}

func NewRegion(client *Client) *Region {
	return &Region{client: client}
}

func (r *Region) ID() uint32      { return r.id }
func (r *Region) SetID(id uint32) { r.id = id }
func (r *Region) Delete()         {}

func (r *Region) String() string {
	return fmt.Sprintf("%v@%v", RegionInterface, r.id)
}

func (r *Region) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "add"
	case 2:
		return "subtract"
	}
	return "unknown"
}

func (r *Region) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if r.Listener != nil {
			r.Listener.Destroy()
		}
		r.client.Destroy(r)
		return nil

	case 1: // add
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if r.Listener != nil {
			r.Listener.Add(x, y, width, height)
		}
		return nil

	case 2: // subtract
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if r.Listener != nil {
			r.Listener.Subtract(x, y, width, height)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: RegionInterface, Type: "request", Op: msg.Op()}
}
