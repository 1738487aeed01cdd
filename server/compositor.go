package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	CompositorInterface = "wl_compositor"
	CompositorVersion   = 4
)

// CompositorListener handles the requests that a client makes of a
// wl_compositor.
type CompositorListener interface {
	CreateSurface(surface *Surface)
	CreateRegion(region *Region)
}

// Compositor is the server side of a wl_compositor global. Its only
// purpose is to hand out surfaces and regions.
type Compositor struct {
	Listener CompositorListener

	id     uint32
	client *Client
}

func NewCompositor(client *Client) *Compositor {
	return &Compositor{client: client}
}

// BindCompositor creates the server-side object for a client's bind to
// the wl_compositor global.
func BindCompositor(client *Client, id wire.NewID) *Compositor {
	c := NewCompositor(client)
	c.SetID(id.ID)
	client.Add(c)
	return c
}

func (c *Compositor) ID() uint32      { return c.id }
func (c *Compositor) SetID(id uint32) { c.id = id }
func (c *Compositor) Delete()         {}

func (c *Compositor) String() string {
	return fmt.Sprintf("%v@%v", CompositorInterface, c.id)
}

func (c *Compositor) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_surface"
	case 1:
		return "create_region"
	}
	return "unknown"
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_surface
		surface := NewSurface(c.client)
		surface.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		c.client.Add(surface)
		if c.Listener != nil {
			c.Listener.CreateSurface(surface)
		}
		return nil

	case 1: // create_region
		region := NewRegion(c.client)
		region.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		c.client.Add(region)
		if c.Listener != nil {
			c.Listener.CreateRegion(region)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: CompositorInterface, Type: "request", Op: msg.Op()}
}
