// Package xdg provides client-side bindings for the xdg_shell
// protocol, enough to turn a wl_surface into a desktop-style
// toplevel window.
//
// Objects in this package work the same way as those in the core
// client package. Events are dispatched to an object's Listener
// during a flush of the underlying client.
package xdg

import (
	"fmt"

	wl "deedles.dev/nest/client"
	"deedles.dev/nest/wire"
)

const (
	WmBaseInterface = "xdg_wm_base"
	WmBaseVersion   = 5
)

// WmBaseListener handles the events that the server sends on an
// xdg_wm_base.
type WmBaseListener interface {
	// Ping is a liveness check. The client must answer with Pong,
	// passing the same serial, or the server may deem it
	// unresponsive.
	Ping(serial uint32)
}

// WmBase is a client-side xdg_wm_base proxy.
type WmBase struct {
	Listener WmBaseListener

	id     uint32
	client *wl.Client
}

// BindWmBase binds the named global as an xdg_wm_base.
func BindWmBase(client *wl.Client, registry *wl.Registry, name, version uint32) *WmBase {
	wb := WmBase{client: client}
	client.Add(&wb)
	registry.Bind(name, wire.NewID{
		Interface: WmBaseInterface,
		Version:   min(version, WmBaseVersion),
		ID:        wb.id,
	})
	return &wb
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
		return "ping"
	}
	return "unknown"
}

func (wb *WmBase) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // ping
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if wb.Listener != nil {
			wb.Listener.Ping(serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: WmBaseInterface, Type: "event", Op: msg.Op()}
}

// Destroy destroys the wm base. All surfaces created from it must be
// destroyed first.
func (wb *WmBase) Destroy() {
	msg := wire.NewMessage(wb, 0)
	msg.Method = "destroy"
	wb.client.Enqueue(msg)
}

// GetXdgSurface wraps a wl_surface in an xdg_surface, the first step
// towards making it a window.
func (wb *WmBase) GetXdgSurface(surface *wl.Surface) *Surface {
	s := Surface{client: wb.client}
	wb.client.Add(&s)

	msg := wire.NewMessage(wb, 2)
	msg.Method = "get_xdg_surface"
	msg.Args = []any{&s, surface}
	msg.WriteUint(s.id)
	msg.WriteObject(surface)
	wb.client.Enqueue(msg)

	return &s
}

// Pong answers a Ping event.
func (wb *WmBase) Pong(serial uint32) {
	msg := wire.NewMessage(wb, 3)
	msg.Method = "pong"
	msg.Args = []any{serial}
	msg.WriteUint(serial)
	wb.client.Enqueue(msg)
}
