// Package xdg implements the server half of the xdg-shell protocol,
// the extension that turns bare surfaces into desktop windows. It
// follows the same listener-based design as the core protocol
// package.
package xdg

import (
	"fmt"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/wire"
)

const (
	WmBaseInterface = "xdg_wm_base"
	WmBaseVersion   = 1
)

// WmBaseError is a protocol error code for misuse of xdg_wm_base.
type WmBaseError uint32

const (
	WmBaseErrorRole                WmBaseError = 0
	WmBaseErrorDefunctSurfaces     WmBaseError = 1
	WmBaseErrorNotTheTopmostPopup  WmBaseError = 2
	WmBaseErrorInvalidPopupParent  WmBaseError = 3
	WmBaseErrorInvalidSurfaceState WmBaseError = 4
	WmBaseErrorInvalidPositioner   WmBaseError = 5
)

// WmBaseListener handles the requests that a client makes of an
// xdg_wm_base.
type WmBaseListener interface {
	// Destroy is called just before the wm base is removed from the
	// client's object store.
	Destroy()

	CreatePositioner(positioner *Positioner)

	// GetXdgSurface assigns surface the xdg surface role via the
	// newly created xsurface.
	GetXdgSurface(xsurface *Surface, surface *wl.Surface)

	// Pong is the client's answer to a Ping.
	Pong(serial uint32)
}

// WmBase is the server side of an xdg_wm_base global.
type WmBase struct {
	Listener WmBaseListener

	id     uint32
	client *wl.Client
}

func NewWmBase(client *wl.Client) *WmBase {
	return &WmBase{client: client}
}

// BindWmBase creates the server-side object for a client's bind to
// the xdg_wm_base global.
func BindWmBase(client *wl.Client, id wire.NewID) *WmBase {
	wb := NewWmBase(client)
	wb.SetID(id.ID)
	client.Add(wb)
	return wb
}

func (wb *WmBase) ID() uint32      { return wb.id }
func (wb *WmBase) SetID(id uint32) { wb.id = id }
func (wb *WmBase) Delete()         {}

func (wb *WmBase) String() string {
	return fmt.Sprintf("%v@%v", WmBaseInterface, wb.id)
}

func (wb *WmBase) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "create_positioner"
	case 2:
		return "get_xdg_surface"
	case 3:
		return "pong"
	}
	return "unknown"
}

func (wb *WmBase) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.Destroy()
		}
		wb.client.Destroy(wb)
		return nil

	case 1: // create_positioner
		positioner := NewPositioner(wb.client)
		positioner.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		wb.client.Add(positioner)
		if wb.Listener != nil {
			wb.Listener.CreatePositioner(positioner)
		}
		return nil

	case 2: // get_xdg_surface
		xsurface := NewSurface(wb.client)
		xsurface.SetID(msg.ReadUint())
		surface, _ := wb.client.Get(msg.ReadUint()).(*wl.Surface)
		if err := msg.Err(); err != nil {
			return err
		}
		wb.client.Add(xsurface)
		if wb.Listener != nil {
			wb.Listener.GetXdgSurface(xsurface, surface)
		}
		return nil

	case 3: // pong
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.Pong(serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: WmBaseInterface, Type: "request", Op: msg.Op()}
}

// Ping asks the client to prove that it is still responsive by
// answering with a pong carrying the same serial.
func (wb *WmBase) Ping(serial uint32) {
	msg := wire.NewMessage(wb, 0)
	msg.Method = "ping"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	wb.client.Enqueue(msg)
}
