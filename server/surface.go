package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	SurfaceInterface = "wl_surface"
	SurfaceVersion   = 4
)

// SurfaceListener handles the requests that a client makes of a
// wl_surface. Attach, Damage, and the rest of the double-buffered
// state setters only take effect when the following Commit is
// handled.
type SurfaceListener interface {
	// Destroy is called just before the surface is removed from the
	// client's object store.
	Destroy()

	// Attach sets the buffer that the next Commit will present. A nil
	// buffer detaches the surface's contents.
	Attach(buffer *Buffer, x, y int32)

	// Damage marks part of the surface, in surface coordinates, as
	// needing to be redrawn.
	Damage(x, y, width, height int32)

	// Frame asks for cb to be fired when it is a good time to draw
	// the next frame.
	Frame(cb *Callback)

	SetOpaqueRegion(region *Region)
	SetInputRegion(region *Region)

	// Commit atomically applies all state set since the last commit.
	Commit()

	SetBufferTransform(transform OutputTransform)
	SetBufferScale(scale int32)

	// DamageBuffer is Damage in buffer coordinates.
	DamageBuffer(x, y, width, height int32)
}

// Surface is the server side of a wl_surface.
type Surface struct {
	Listener SurfaceListener

	id     uint32
	client *Client
}

func NewSurface(client *Client) *Surface {
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
		return "attach"
	case 2:
		return "damage"
	case 3:
		return "frame"
	case 4:
		return "set_opaque_region"
	case 5:
		return "set_input_region"
	case 6:
		return "commit"
	case 7:
		return "set_buffer_transform"
	case 8:
		return "set_buffer_scale"
	case 9:
		return "damage_buffer"
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

	case 1: // attach
		buffer, _ := s.client.Get(msg.ReadUint()).(*Buffer)
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Attach(buffer, x, y)
		}
		return nil

	case 2: // damage
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Damage(x, y, width, height)
		}
		return nil

	case 3: // frame
		cb := NewCallback(s.client)
		cb.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		s.client.Add(cb)
		if s.Listener != nil {
			s.Listener.Frame(cb)
		}
		return nil

	case 4: // set_opaque_region
		region, _ := s.client.Get(msg.ReadUint()).(*Region)
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetOpaqueRegion(region)
		}
		return nil

	case 5: // set_input_region
		region, _ := s.client.Get(msg.ReadUint()).(*Region)
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetInputRegion(region)
		}
		return nil

	case 6: // commit
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Commit()
		}
		return nil

	case 7: // set_buffer_transform
		transform := OutputTransform(msg.ReadInt())
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetBufferTransform(transform)
		}
		return nil

	case 8: // set_buffer_scale
		scale := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.SetBufferScale(scale)
		}
		return nil

	case 9: // damage_buffer
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.DamageBuffer(x, y, width, height)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SurfaceInterface, Type: "request", Op: msg.Op()}
}

// Enter tells the client that the surface is now visible on output.
func (s *Surface) Enter(output *Output) {
	msg := wire.NewMessage(s, 0)
	msg.Method = "enter"
	msg.Args = []any{output}
	msg.WriteObject(output)
	s.client.Enqueue(msg)
}

// Leave tells the client that the surface is no longer visible on
// output.
func (s *Surface) Leave(output *Output) {
	msg := wire.NewMessage(s, 1)
	msg.Method = "leave"
	msg.Args = []any{output}
	msg.WriteObject(output)
	s.client.Enqueue(msg)
}
