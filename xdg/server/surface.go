package xdg

import (
	"fmt"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/wire"
)

const (
	SurfaceInterface = "xdg_surface"
	SurfaceVersion   = 1
)

// SurfaceError is a protocol error code for misuse of xdg_surface.
type SurfaceError uint32

const (
	SurfaceErrorNotConstructed     SurfaceError = 1
	SurfaceErrorAlreadyConstructed SurfaceError = 2
	SurfaceErrorUnconfiguredBuffer SurfaceError = 3
)

// SurfaceListener handles the requests that a client makes of an
// xdg_surface.
type SurfaceListener interface {
	// Destroy is called just before the xdg surface is removed from
	// the client's object store. Its role object must already be
	// gone.
	Destroy()

	// GetToplevel assigns the toplevel role via the newly created
	// toplevel.
	GetToplevel(toplevel *Toplevel)

	// GetPopup assigns the popup role via the newly created popup.
	// parent may be nil.
	GetPopup(popup *Popup, parent *Surface, positioner *Positioner)

	// SetWindowGeometry tells the server which part of the surface is
	// actually the window, excluding drop shadows and the like.
	SetWindowGeometry(x, y, width, height int32)

	// AckConfigure acknowledges a previously sent configure event by
	// its serial. The commit that follows shows the surface in the
	// configured state.
	AckConfigure(serial uint32)
}

// Surface is the server side of an xdg_surface, the intermediate
// object between a wl_surface and its window role.
type Surface struct {
	Listener SurfaceListener

	id     uint32
	client *wl.Client
}

func NewSurface(client *wl.Client) *Surface {
	return &Surface{client: client}
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
		return "destroy"
	case 1:
		return "get_toplevel"
	case 2:
		return "get_popup"
	case 3:
		return "set_window_geometry"
	case 4:
		return "ack_configure"
	}
	return "unknown"
}

func (s *Surface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Destroy()
		}
		s.client.Destroy(s)
		return nil

	case 1: // get_toplevel
		toplevel := NewToplevel(s.client)
		toplevel.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		s.client.Add(toplevel)
		if s.Listener != nil {
			s.Listener.GetToplevel(toplevel)
		}
		return nil

	case 2: // get_popup
		popup := NewPopup(s.client)
		popup.SetID(msg.ReadUint())
		parent, _ := s.client.Get(msg.ReadUint()).(*Surface)
		positioner, _ := s.client.Get(msg.ReadUint()).(*Positioner)
		if err := msg.Err(); err != nil {
			return err
		}
		s.client.Add(popup)
		if s.Listener != nil {
			s.Listener.GetPopup(popup, parent, positioner)
		}
		return nil

	case 3: // set_window_geometry
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetWindowGeometry(x, y, width, height)
		}
		return nil

	case 4: // ack_configure
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.AckConfigure(serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "request", Op: msg.Op()}
}

// Configure marks the end of a configure sequence. It must follow any
// role-specific configure events, and the client answers it with
// ack_configure using the same serial.
func (s *Surface) Configure(serial uint32) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "configure"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	s.client.Enqueue(msg)
}
