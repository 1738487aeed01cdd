package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	CompositorInterface = "wl_compositor"
	CompositorVersion   = 4
)

// Compositor is a client-side wl_compositor proxy.
type Compositor struct {
	id     uint32
	client *Client
}

// BindCompositor binds the named global as a wl_compositor. name and
// version should come from the corresponding announcement on the
// registry.
func BindCompositor(client *Client, registry *Registry, name, version uint32) *Compositor {
	c := Compositor{client: client}
	client.Add(&c)
	registry.Bind(name, wire.NewID{
		Interface: CompositorInterface,
		Version:   min(version, CompositorVersion),
		ID:        c.id,
	})
	return &c
}

func (c *Compositor) ID() uint32      { return c.id }
func (c *Compositor) SetID(id uint32) { c.id = id }
func (c *Compositor) Delete()         {}

func (c *Compositor) String() string {
	return fmt.Sprintf("%v@%v", CompositorInterface, c.id)
}

func (c *Compositor) MethodName(op uint16) string {
	return "unknown"
}

func (c *Compositor) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: CompositorInterface, Type: "event", Op: msg.Op()}
}

// CreateSurface creates a new surface.
func (c *Compositor) CreateSurface() *Surface {
	s := Surface{client: c.client}
	c.client.Add(&s)

	msg := wire.NewMessage(c, 0)
	msg.Method = "create_surface"
	msg.Args = []any{&s}
	msg.WriteUint(s.id)
	c.client.Enqueue(msg)

	return &s
}

// CreateRegion creates a new region.
func (c *Compositor) CreateRegion() *Region {
	r := Region{client: c.client}
	c.client.Add(&r)

	msg := wire.NewMessage(c, 1)
	msg.Method = "create_region"
	msg.Args = []any{&r}
	msg.WriteUint(r.id)
	c.client.Enqueue(msg)

	return &r
}
