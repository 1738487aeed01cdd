package xdg

import (
	"fmt"

	wl "deedles.dev/nest/client"
	"deedles.dev/nest/wire"
)

const SurfaceInterface = "xdg_surface"

// SurfaceListener handles the events that the server sends on an
// xdg_surface.
type SurfaceListener interface {
	// Configure delivers a new configuration. The client must
	// acknowledge it with AckConfigure before the next commit that
	// depends on it.
	Configure(serial uint32)
}

// Surface is a client-side xdg_surface proxy.
type Surface struct {
	Listener SurfaceListener

	id     uint32
	client *wl.Client
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
		return "configure"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // configure
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Configure(serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "event", Op: msg.Op()}
}

// Destroy destroys the surface. Any role object created from it must
// be destroyed first.
func (s *Surface) Destroy() {
	msg := wire.NewMessage(s, 0)
	msg.Method = "destroy"
	s.client.Enqueue(msg)
}

// GetToplevel assigns the toplevel role to the surface.
func (s *Surface) GetToplevel() *Toplevel {
	t := Toplevel{client: s.client}
	s.client.Add(&t)

	msg := wire.NewMessage(s, 1)
	msg.Method = "get_toplevel"
	msg.Args = []any{&t}
	msg.WriteUint(t.id)
	s.client.Enqueue(msg)

	return &t
}

// SetWindowGeometry tells the server which part of the surface is
// the actual window, excluding things like drop shadows.
func (s *Surface) SetWindowGeometry(x, y, width, height int32) {
	msg := wire.NewMessage(s, 3)
	msg.Method = "set_window_geometry"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	s.client.Enqueue(msg)
}

// AckConfigure acknowledges a Configure event.
func (s *Surface) AckConfigure(serial uint32) {
	msg := wire.NewMessage(s, 4)
	msg.Method = "ack_configure"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	s.client.Enqueue(msg)
}
