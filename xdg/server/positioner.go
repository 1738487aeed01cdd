package xdg

import (
	"fmt"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/wire"
)

const (
	PositionerInterface = "xdg_positioner"
	PositionerVersion   = 1
)

// PositionerListener handles the requests that a client makes of an
// xdg_positioner.
type PositionerListener interface {
	Destroy()
	SetSize(width, height int32)
	SetAnchorRect(x, y, width, height int32)
	SetAnchor(anchor uint32)
	SetGravity(gravity uint32)
	SetConstraintAdjustment(adjustment uint32)
	SetOffset(x, y int32)
}

// Positioner is the server side of an xdg_positioner, a bag of rules
// for where to place a popup.
type Positioner struct {
	Listener PositionerListener

	id     uint32
	client *wl.Client
}

func NewPositioner(client *wl.Client) *Positioner {
	return &Positioner{client: client}
}

func (p *Positioner) ID() uint32      { return p.id }
func (p *Positioner) SetID(id uint32) { p.id = id }
func (p *Positioner) Delete()         {}

func (p *Positioner) String() string {
	return fmt.Sprintf("%v@%v", PositionerInterface, p.id)
}

func (p *Positioner) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "set_size"
	case 2:
		return "set_anchor_rect"
	case 3:
		return "set_anchor"
	case 4:
		return "set_gravity"
	case 5:
		return "set_constraint_adjustment"
	case 6:
		return "set_offset"
	}
	return "unknown"
}

func (p *Positioner) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Destroy()
		}
		p.client.Destroy(p)
		return nil

	case 1: // set_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetSize(width, height)
		}
		return nil

	case 2: // set_anchor_rect
		x := msg.ReadInt()
		y := msg.ReadInt()
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetAnchorRect(x, y, width, height)
		}
		return nil

	case 3: // set_anchor
		anchor := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetAnchor(anchor)
		}
		return nil

	case 4: // set_gravity
		gravity := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetGravity(gravity)
		}
		return nil

	case 5: // set_constraint_adjustment
		adjustment := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetConstraintAdjustment(adjustment)
		}
		return nil

	case 6: // set_offset
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.SetOffset(x, y)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: PositionerInterface, Type: "request", Op: msg.Op()}
}
