package xdg

import (
	"fmt"

	wl "deedles.dev/nest/client"
	"deedles.dev/nest/internal/bin"
	"deedles.dev/nest/wire"
)

const ToplevelInterface = "xdg_toplevel"

// ToplevelState describes a way in which a toplevel may currently be
// presented. A configure event carries zero or more of them.
type ToplevelState uint32

const (
	ToplevelStateMaximized  ToplevelState = 1 + iota
	ToplevelStateFullscreen
	ToplevelStateResizing
	ToplevelStateActivated
)

func (state ToplevelState) String() string {
	switch state {
	case ToplevelStateMaximized:
		return "maximized"
	case ToplevelStateFullscreen:
		return "fullscreen"
	case ToplevelStateResizing:
		return "resizing"
	case ToplevelStateActivated:
		return "activated"
	}
	return fmt.Sprintf("unknown(%v)", uint32(state))
}

// ParseToplevelStates unpacks the states array of a configure event.
func ParseToplevelStates(data []byte) []ToplevelState {
	states := make([]ToplevelState, 0, len(data)/4)
	for len(data) >= 4 {
		states = append(states, bin.Value[ToplevelState]([4]byte(data)))
		data = data[4:]
	}
	return states
}

// ToplevelResizeEdge identifies the edge or corner being dragged
// during an interactive resize.
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

// ToplevelListener handles the events that the server sends on an
// xdg_toplevel.
type ToplevelListener interface {
	// Configure suggests a size and states for the window. A zero
	// width or height leaves that dimension up to the client. The
	// new state only takes effect once the accompanying xdg_surface
	// configure has been acknowledged.
	Configure(width, height int32, states []byte)

	// Close asks the client to close the window.
	Close()

	// ConfigureBounds hints at the maximum sensible window size,
	// such as the size of the output the window is on.
	ConfigureBounds(width, height int32)

	// WmCapabilities lists the window management actions the server
	// supports.
	WmCapabilities(capabilities []byte)
}

// Toplevel is a client-side xdg_toplevel proxy.
type Toplevel struct {
	Listener ToplevelListener

	id     uint32
	client *wl.Client
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
		return "configure"
	case 1:
		return "close"
	case 2:
		return "configure_bounds"
	case 3:
		return "wm_capabilities"
	}
	return "unknown"
}

func (t *Toplevel) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // configure
		width := msg.ReadInt()
		height := msg.ReadInt()
		states := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.Configure(width, height, states)
		}
		return nil

	case 1: // close
		if t.Listener != nil {
			t.Listener.Close()
		}
		return nil

	case 2: // configure_bounds
		width := msg.ReadInt()
		height := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.ConfigureBounds(width, height)
		}
		return nil

	case 3: // wm_capabilities
		capabilities := msg.ReadArray()
		if err := msg.Err(); err != nil {
			return err
		}
		if t.Listener != nil {
			t.Listener.WmCapabilities(capabilities)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ToplevelInterface, Type: "event", Op: msg.Op()}
}

// Destroy destroys the toplevel, unmapping the underlying surface.
func (t *Toplevel) Destroy() {
	msg := wire.NewMessage(t, 0)
	msg.Method = "destroy"
	t.client.Enqueue(msg)
}

// SetParent makes the toplevel a child of parent, or a plain
// toplevel again if parent is nil.
func (t *Toplevel) SetParent(parent *Toplevel) {
	msg := wire.NewMessage(t, 1)
	msg.Method = "set_parent"
	msg.Args = []any{parent}
	msg.WriteObject(parent)
	t.client.Enqueue(msg)
}

// SetTitle sets the window title.
func (t *Toplevel) SetTitle(title string) {
	msg := wire.NewMessage(t, 2)
	msg.Method = "set_title"
	msg.Args = []any{title}
	msg.WriteString(title)
	t.client.Enqueue(msg)
}

// SetAppId sets the application identifier, usually the basename of
// the desktop entry.
func (t *Toplevel) SetAppId(appId string) {
	msg := wire.NewMessage(t, 3)
	msg.Method = "set_app_id"
	msg.Args = []any{appId}
	msg.WriteString(appId)
	t.client.Enqueue(msg)
}

// ShowWindowMenu asks the server to show its window menu at the
// given surface-local coordinates.
func (t *Toplevel) ShowWindowMenu(seat *wl.Seat, serial uint32, x, y int32) {
	msg := wire.NewMessage(t, 4)
	msg.Method = "show_window_menu"
	msg.Args = []any{seat, serial, x, y}
	msg.WriteObject(seat)
	msg.WriteUint(serial)
	msg.WriteInt(x)
	msg.WriteInt(y)
	t.client.Enqueue(msg)
}

// Move starts an interactive move, in response to the input event
// identified by serial.
func (t *Toplevel) Move(seat *wl.Seat, serial uint32) {
	msg := wire.NewMessage(t, 5)
	msg.Method = "move"
	msg.Args = []any{seat, serial}
	msg.WriteObject(seat)
	msg.WriteUint(serial)
	t.client.Enqueue(msg)
}

// Resize starts an interactive resize from the given edge, in
// response to the input event identified by serial.
func (t *Toplevel) Resize(seat *wl.Seat, serial uint32, edges ToplevelResizeEdge) {
	msg := wire.NewMessage(t, 6)
	msg.Method = "resize"
	msg.Args = []any{seat, serial, edges}
	msg.WriteObject(seat)
	msg.WriteUint(serial)
	msg.WriteUint(uint32(edges))
	t.client.Enqueue(msg)
}

func (t *Toplevel) SetMaxSize(width, height int32) {
	msg := wire.NewMessage(t, 7)
	msg.Method = "set_max_size"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.client.Enqueue(msg)
}

func (t *Toplevel) SetMinSize(width, height int32) {
	msg := wire.NewMessage(t, 8)
	msg.Method = "set_min_size"
	msg.Args = []any{width, height}
	msg.WriteInt(width)
	msg.WriteInt(height)
	t.client.Enqueue(msg)
}

func (t *Toplevel) SetMaximized() {
	msg := wire.NewMessage(t, 9)
	msg.Method = "set_maximized"
	t.client.Enqueue(msg)
}

func (t *Toplevel) UnsetMaximized() {
	msg := wire.NewMessage(t, 10)
	msg.Method = "unset_maximized"
	t.client.Enqueue(msg)
}

// SetFullscreen asks for the window to be made fullscreen, on the
// given output if non-nil.
func (t *Toplevel) SetFullscreen(output *wl.Output) {
	msg := wire.NewMessage(t, 11)
	msg.Method = "set_fullscreen"
	msg.Args = []any{output}
	msg.WriteObject(output)
	t.client.Enqueue(msg)
}

func (t *Toplevel) UnsetFullscreen() {
	msg := wire.NewMessage(t, 12)
	msg.Method = "unset_fullscreen"
	t.client.Enqueue(msg)
}

func (t *Toplevel) SetMinimized() {
	msg := wire.NewMessage(t, 13)
	msg.Method = "set_minimized"
	t.client.Enqueue(msg)
}
