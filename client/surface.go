package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	SurfaceInterface = "wl_surface"
	SurfaceVersion   = 4
)

// SurfaceListener handles the events that the server sends on a
// wl_surface.
type SurfaceListener interface {
	Enter(output *Output)
	Leave(output *Output)
}

// Surface is a client-side wl_surface proxy. Most state set on a
// surface is double-buffered and does not take effect until the next
// Commit.
type Surface struct {
	Listener SurfaceListener

	id     uint32
	client *Client
}

func (s *Surface) ID() uint32      { return s.id }
func (s *Surface) SetID(id uint32) { s.id = id }
func (s *Surface) Delete()         {}

func (s *Surface) String() string {
	return fmt.Sprintf("%v@%v", SurfaceInterface, s.id)
}

func (s *Surface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "enter"
	case 1:
		return "leave"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // enter
		output, _ := s.client.Get(msg.ReadUint()).(*Output)
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Enter(output)
		}
		return nil

	case 1: // leave
		output, _ := s.client.Get(msg.ReadUint()).(*Output)
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Leave(output)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "event", Op: msg.Op()}
}

// Destroy destroys the surface. The server removes the ID once the
// request has been processed.
func (s *Surface) Destroy() {
	msg := wire.NewMessage(s, 0)
	msg.Method = "destroy"
	s.client.Enqueue(msg)
}

// Attach sets the buffer that the next Commit will apply to the
// surface. A nil buffer detaches the current one.
func (s *Surface) Attach(buffer *Buffer, x, y int32) {
	msg := wire.NewMessage(s, 1)
	msg.Method = "attach"
	msg.Args = []any{buffer, x, y}
	msg.WriteObject(buffer)
	msg.WriteInt(x)
	msg.WriteInt(y)
	s.client.Enqueue(msg)
}

// Damage marks a region of the surface, in surface coordinates, as
// needing to be redrawn.
func (s *Surface) Damage(x, y, width, height int32) {
	msg := wire.NewMessage(s, 2)
	msg.Method = "damage"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.Enqueue(msg)
}

// Frame requests a callback that the server will fire when it is a
// good time to draw the next frame.
func (s *Surface) Frame() *Callback {
	cb := Callback{client: s.client}
	s.client.Add(&cb)

	msg := wire.NewMessage(s, 3)
	msg.Method = "frame"
	msg.Args = []any{&cb}
	msg.WriteUint(cb.id)
	s.client.Enqueue(msg)

	return &cb
}

// SetOpaqueRegion tells the server which parts of the surface are
// guaranteed to be fully opaque. A nil region marks the whole surface
// as potentially transparent.
func (s *Surface) SetOpaqueRegion(region *Region) {
	msg := wire.NewMessage(s, 4)
	msg.Method = "set_opaque_region"
	msg.Args = []any{region}
	msg.WriteObject(region)
	s.client.Enqueue(msg)
}

// SetInputRegion tells the server which parts of the surface accept
// input. A nil region resets it to cover the whole surface.
func (s *Surface) SetInputRegion(region *Region) {
	msg := wire.NewMessage(s, 5)
	msg.Method = "set_input_region"
	msg.Args = []any{region}
	msg.WriteObject(region)
	s.client.Enqueue(msg)
}

// Commit atomically applies all state set since the last commit.
func (s *Surface) Commit() {
	msg := wire.NewMessage(s, 6)
	msg.Method = "commit"
	s.client.Enqueue(msg)
}

func (s *Surface) SetBufferTransform(transform OutputTransform) {
	msg := wire.NewMessage(s, 7)
	msg.Method = "set_buffer_transform"
	msg.Args = []any{transform}
	msg.WriteInt(int32(transform))
	s.client.Enqueue(msg)
}

func (s *Surface) SetBufferScale(scale int32) {
	msg := wire.NewMessage(s, 8)
	msg.Method = "set_buffer_scale"
	msg.Args = []any{scale}
	msg.WriteInt(scale)
	s.client.Enqueue(msg)
}

// DamageBuffer is like Damage but takes coordinates in buffer space
// instead of surface space.
func (s *Surface) DamageBuffer(x, y, width, height int32) {
	msg := wire.NewMessage(s, 9)
	msg.Method = "damage_buffer"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.Enqueue(msg)
}
