package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	SubcompositorInterface = "wl_subcompositor"
	SubcompositorVersion   = 1
)

const (
	SubsurfaceInterface = "wl_subsurface"
	SubsurfaceVersion   = 1
)

// SubcompositorListener handles the requests that a client makes of a
// wl_subcompositor.
type SubcompositorListener interface {
	Destroy()
	GetSubsurface(subsurface *Subsurface, surface *Surface, parent *Surface)
}

// Subcompositor is the server side of a wl_subcompositor global.
type Subcompositor struct {
	Listener SubcompositorListener

	id     uint32
	client *Client
}

func NewSubcompositor(client *Client) *Subcompositor {
	return &Subcompositor{client: client}
}

// BindSubcompositor creates the server-side object for a client's
// bind to the wl_subcompositor global.
func BindSubcompositor(client *Client, id wire.NewID) *Subcompositor {
	sc := NewSubcompositor(client)
	sc.SetID(id.ID)
	client.Add(sc)
	return sc
}

func (sc *Subcompositor) ID() uint32      { return sc.id }
func (sc *Subcompositor) SetID(id uint32) { sc.id = id }
func (sc *Subcompositor) Delete()         {}

func (sc *Subcompositor) String() string {
	return fmt.Sprintf("%v@%v", SubcompositorInterface, sc.id)
}

func (sc *Subcompositor) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "get_subsurface"
	}
	return "unknown"
}

func (sc *Subcompositor) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if sc.Listener != nil {
			sc.Listener.Destroy()
		}
		sc.client.Destroy(sc)
		return nil

	case 1: // get_subsurface
		subsurface := NewSubsurface(sc.client)
		subsurface.SetID(msg.ReadUint())
		surface, _ := sc.client.Get(msg.ReadUint()).(*Surface)
		parent, _ := sc.client.Get(msg.ReadUint()).(*Surface)
		if err := msg.Err(); err != nil {
			return err
		}
		sc.client.Add(subsurface)
		if sc.Listener != nil {
			sc.Listener.GetSubsurface(subsurface, surface, parent)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SubcompositorInterface, Type: "request", Op: msg.Op()}
}

// SubsurfaceListener handles the requests that a client makes of a
// wl_subsurface.
type SubsurfaceListener interface {
	Destroy()
	SetPosition(x, y int32)
	PlaceAbove(sibling *Surface)
	PlaceBelow(sibling *Surface)
	SetSync()
	SetDesync()
}

// Subsurface is the server side of a wl_subsurface.
type Subsurface struct {
	Listener SubsurfaceListener

	id     uint32
	client *Client
}

func NewSubsurface(client *Client) *Subsurface {
	return &Subsurface{client: client}
}

func (ss *Subsurface) ID() uint32      { return ss.id }
func (ss *Subsurface) SetID(id uint32) { ss.id = id }
func (ss *Subsurface) Delete()         {}

func (ss *Subsurface) String() string {
	return fmt.Sprintf("%v@%v", SubsurfaceInterface, ss.id)
}

func (ss *Subsurface) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "set_position"
	case 2:
		return "place_above"
	case 3:
		return "place_below"
	case 4:
		return "set_sync"
	case 5:
		return "set_desync"
	}
	return "unknown"
}

func (ss *Subsurface) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.Destroy()
		}
		ss.client.Destroy(ss)
		return nil

	case 1: // set_position
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetPosition(x, y)
		}
		return nil

	case 2: // place_above
		sibling, _ := ss.client.Get(msg.ReadUint()).(*Surface)
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.PlaceAbove(sibling)
		}
		return nil

	case 3: // place_below
		sibling, _ := ss.client.Get(msg.ReadUint()).(*Surface)
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.PlaceBelow(sibling)
		}
		return nil

	case 4: // set_sync
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetSync()
		}
		return nil

	case 5: // set_desync
		if err := msg.Err(); err != nil {
			return err
		}
		if ss.Listener != nil {
			ss.Listener.SetDesync()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SubsurfaceInterface, Type: "request", Op: msg.Op()}
}
