package xdg

import (
	"fmt"

	"deedles.dev/nest/internal/bin"
	wl "deedles.dev/nest/server"
	"deedles.dev/nest/wire"
)

const (
	ToplevelInterface = "xdg_toplevel"
	ToplevelVersion   = 1
)

// ToplevelState describes one aspect of how a toplevel is currently
// being presented. A configure event carries a set of them.
type ToplevelState uint32

const (
	ToplevelStateMaximized  ToplevelState = 1
	ToplevelStateFullscreen ToplevelState = 2
	ToplevelStateResizing   ToplevelState = 3
	ToplevelStateActivated  ToplevelState = 4
)

// ToplevelResizeEdge names the edge or corner that an interactive
// resize was started from.
type ToplevelResizeEdge uint32

const (
	ToplevelResizeEdgeNone        ToplevelResizeEdge = 0
	ToplevelResizeEdgeTop         ToplevelResizeEdge = 1
	ToplevelResizeEdgeBottom      ToplevelResizeEdge = 2
	ToplevelResizeEdgeLeft        ToplevelResizeEdge = 4
	ToplevelResizeEdgeTopLeft     ToplevelResizeEdge = 5
	ToplevelResizeEdgeBottomLeft  ToplevelResizeEdge = 6
	ToplevelResizeEdgeRight       ToplevelResizeEdge = 8
	ToplevelResizeEdgeTopRight    ToplevelResizeEdge = 9
	ToplevelResizeEdgeBottomRight ToplevelResizeEdge = 10
)

// ToplevelStates packs a list of states into the wire form carried by
// a configure event.
func ToplevelStates(states ...ToplevelState) []byte {
	buf := make([]byte, 0, 4*len(states))
	for _, s := range states {
		b := bin.Bytes(uint32(s))
		buf = append(buf, b[:]...)
	}
	return buf
}

// ToplevelListener handles the requests that a client makes of an
// xdg_toplevel.
type ToplevelListener interface {
	// Destroy is called just before the toplevel is removed from the
	// client's object store.
	Destroy()

	SetParent(parent *Toplevel)
	SetTitle(title string)
	SetAppId(appID string)
	ShowWindowMenu(seat *wl.Seat, serial uint32, x, y int32)
	Move(seat *wl.Seat, serial uint32)
	Resize(seat *wl.Seat, serial uint32, edges ToplevelResizeEdge)
	SetMaxSize(width, height int32)
	SetMinSize(width, height int32)
	SetMaximized()
	UnsetMaximized()
	SetFullscreen(output *wl.Output)
	UnsetFullscreen()
	SetMinimized()
}

// Toplevel is the server side of an xdg_toplevel, a surface acting as
// a normal window.
type Toplevel struct {
	Listener ToplevelListener

	id     uint32
	client *wl.Client
}

func NewToplevel(client *wl.Client) *Toplevel {
	return &Toplevel{client: client}
}

func (t *Toplevel) ID() uint32      { return t.id }
func (t *Toplevel) SetID(id uint32) { t.id = id }
func (t *Toplevel) Delete()         {}

func (t *Toplevel) String() string {
	return fmt.Sprintf("%v@%v", ToplevelInterface, t.id)
}

func (t *Toplevel) MethodName(op uint16) string {
	switch op {
	case 0:
		return "destroy"
	case 1:
		return "set_parent"
	case 2:
		return "set_title"
	case 3:
		return "set_app_id"
	case 4:
		return "show_window_menu"
	case 5:
		return "move"
	case 6:
		return "resize"
	case 7:
		return "set_max_size"
	case 8:
		return "set_min_size"
	case 9:
		return "set_maximized"
	case 10:
		return "unset_maximized"
	case 11:
		return "set_fullscreen"
	case 12:
		return "unset_fullscreen"
	case 13:
		return "set_minimized"
	}
	return "unknown"
}

func (t *Toplevel) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Destroy()
		}
		t.client.Destroy(t)
		return nil

	case 1: // set_parent
		parent, _ := t.client.Get(msg.ReadUint()).(*Toplevel)
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetParent(parent)
		}
		return nil

	case 2: // set_title
		title := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetTitle(title)
		}
		return nil

	case 3: // set_app_id
		appID := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetAppId(appID)
		}
		return nil

	case 4: // show_window_menu
		seat, _ := t.client.Get(msg.ReadUint()).(*wl.Seat)
		serial := msg.ReadUint()
		x := msg.ReadInt()
		y := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.ShowWindowMenu(seat, serial, x, y)
		}
		return nil

	case 5: // move
		seat, _ := t.client.Get(msg.ReadUint()).(*wl.Seat)
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Move(seat, serial)
		}
		return nil

	case 6: // resize
		seat, _ := t.client.Get(msg.ReadUint()).(*wl.Seat)
		serial := msg.ReadUint()
		edges := ToplevelResizeEdge(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Resize(seat, serial, edges)
		}
		return nil

	case 7: // set_max_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetMaxSize(width, height)
		}
		return nil

	case 8: // set_min_size
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetMinSize(width, height)
		}
		return nil

	case 9: // set_maximized
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetMaximized()
		}
		return nil

	case 10: // unset_maximized
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.UnsetMaximized()
		}
		return nil

	case 11: // set_fullscreen
		output, _ := t.client.Get(msg.ReadUint()).(*wl.Output)
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetFullscreen(output)
		}
		return nil

	case 12: // unset_fullscreen
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.UnsetFullscreen()
		}
		return nil

	case 13: // set_minimized
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.SetMinimized()
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ToplevelInterface, Type: "request", Op: msg.Op()}
}

// Configure tells the client what size to be and which states it is
// in. A size of 0x0 leaves the choice to the client. It must be
// followed by an xdg_surface configure carrying the sequence's
// serial.
func (t *Toplevel) Configure(width, height int32, states []byte) {
	msg := wire.NewMessage(t, 0)
	msg.Method = "configure"
	msg.Args = []any{width, height, states}
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteArray(states)
	t.client.Enqueue(msg)
}

// Close asks the client to close its window. The client may ignore
// it.
func (t *Toplevel) Close() {
	msg := wire.NewMessage(t, 1)
	msg.Method = "close"
	t.client.Enqueue(msg)
}
