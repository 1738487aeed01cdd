package xdg

import (
	"fmt"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/wire"
)

const (
	PopupInterface = "xdg_popup"
	PopupVersion   = 1
)

// PopupListener handles the requests that a client makes of an
// xdg_popup.
type PopupListener interface {
	Destroy()
	Grab(seat *wl.Seat, serial uint32)
}

// Popup is the server side of an xdg_popup.
type Popup struct {
	Listener PopupListener

	id     uint32
	client *wl.Client
}

func NewPopup(client *wl.Client) *Popup {
	return &Popup{client: client}
}

func (p *Popup) ID() uint32      { return p.id }
func (p *Popup) SetID(id uint32) { p.id = id }
func (p *Popup) Delete()         {}

func (p *Popup) String() string {
	return fmt.Sprintf("%v@%v", PopupInterface, p.id)
}

func (p *Popup) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "grab"
	}
	return "unknown"
}

func (p *Popup) Dispatch(msg *wire.MessageBuffer) error {
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

	case 1: // grab
		seat, _ := p.client.Get(msg.ReadUint()).(*wl.Seat)
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if p.Listener != nil {
			p.Listener.Grab(seat, serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: PopupInterface, Type: "request", Op: msg.Op()}
}

// Configure tells the client where the popup ended up, relative to
// its parent.
func (p *Popup) Configure(x, y, width, height int32) {
	msg := wire.NewMessage(p, 0)
	msg.Method = "configure"
	msg.Args = []any{x, y, width, height}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	p.client.Enqueue(msg)
}

// PopupDone tells the client that the popup was dismissed.
func (p *Popup) PopupDone() {
	msg := wire.NewMessage(p, 1)
	msg.Method = "popup_done"
	p.client.Enqueue(msg)
}
