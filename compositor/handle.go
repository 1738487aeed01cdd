package compositor

import (
	"errors"
	"fmt"
	"time"

	"deedles.dev/nest/present"
	wl "deedles.dev/nest/server"
	xdg "deedles.dev/nest/xdg/server"
	"github.com/sirupsen/logrus"
)

// Phase is where a window is in the xdg-shell configure handshake.
type Phase int

const (
	// PhaseAwaitingConfigure means the window has committed nothing
	// yet. Its first commit is answered with a configure and carries
	// no pixels.
	PhaseAwaitingConfigure Phase = iota

	// PhaseActive means the handshake is done and commits upload
	// pixels.
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingConfigure:
		return "awaiting-configure"
	case PhaseActive:
		return "active"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Handle is one client window: a wl_surface with the xdg toplevel
// role, its drawable on the host, and everything needed to shuttle
// committed buffers into it.
//
// A handle dies in two steps. Protocol events mark it dead, which
// detaches its listeners and hides the drawable but frees nothing.
// The registry's reaper then destroys it at a tick boundary, when no
// dispatch can be holding it.
type Handle struct {
	id uint64
	cs *clientConn

	surface  *wl.Surface
	xsurface *xdg.Surface
	toplevel *xdg.Toplevel

	phase   Phase
	alive   bool
	lastAck uint32
	title   string
	appID   string

	width, height int
	drawable      present.Drawable
	pix           []byte

	pending pending
}

// pending is the state accumulated between commits.
type pending struct {
	attached bool
	buffer   *buffer
	frames   []*wl.Callback
}

func newHandle(cs *clientConn, surface *wl.Surface, xsurface *xdg.Surface, toplevel *xdg.Toplevel) (*Handle, error) {
	d, err := cs.comp.host.CreateDrawable(1, 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
	}

	h := Handle{
		id:       cs.comp.nextIdentity(),
		cs:       cs,
		surface:  surface,
		xsurface: xsurface,
		toplevel: toplevel,
		alive:    true,
		drawable: d,
	}
	h.center()
	return &h, nil
}

// listen points the window's protocol objects at the handle. Called
// once, after the handle is safely in the registry.
func (h *Handle) listen() {
	h.surface.Listener = (*surfaceListener)(h)
	h.xsurface.Listener = (*xdgSurfaceListener)(h)
	h.toplevel.Listener = (*toplevelListener)(h)
}

func (h *Handle) log() *logrus.Entry {
	return logrus.WithField("window", h.id)
}

// Identity returns the window's never-reused identity.
func (h *Handle) Identity() uint64 { return h.id }

// Alive reports whether the window has not been marked dead yet.
func (h *Handle) Alive() bool { return h.alive }

// Phase returns the window's position in the configure handshake.
func (h *Handle) Phase() Phase { return h.phase }

// Size returns the window's dimensions, which track the last
// successfully uploaded buffer. It is 0, 0 for a window that has
// never shown pixels, even though its drawable exists at 1 by 1.
func (h *Handle) Size() (width, height int) { return h.width, h.height }

// Title returns the client-set window title, if any.
func (h *Handle) Title() string { return h.title }

// AppID returns the client-set application ID, if any.
func (h *Handle) AppID() string { return h.appID }

func (h *Handle) center() {
	vw, vh := h.cs.comp.host.ViewportSize()
	h.drawable.Move((vw-h.width)/2, (vh-h.height)/2)
}

func (h *Handle) resize(width, height int) {
	h.width, h.height = width, height
	h.pix = make([]byte, width*height*4)
	h.drawable.Resize(width, height)
	h.center()
	h.log().WithFields(logrus.Fields{
		"width":  width,
		"height": height,
	}).Debugln("Window resized")
}

// commit handles a wl_surface.commit for the window.
func (h *Handle) commit() {
	if !h.alive {
		return
	}

	if h.phase == PhaseAwaitingConfigure {
		// The first commit must be empty and is answered with the
		// initial configure. Pixels, if the client jumped the gun
		// and attached some, wait for the next commit.
		h.toplevel.Configure(0, 0, xdg.ToplevelStates(xdg.ToplevelStateActivated))
		h.xsurface.Configure(h.cs.nextSerial())
		h.phase = PhaseActive
		h.log().Debugln("Window configured")
		return
	}

	buf := h.pending.buffer
	attached := h.pending.attached
	h.pending.buffer = nil
	h.pending.attached = false

	if !attached || buf == nil {
		return
	}

	err := h.upload(buf)
	if err != nil {
		if errors.Is(err, ErrUnsupportedBuffer) {
			h.log().WithError(err).Debugln("Skipping commit")
		} else {
			h.log().WithError(err).Warnln("Uploading buffer failed")
		}
		return
	}

	now := uint32(time.Now().UnixMilli())
	for _, cb := range h.pending.frames {
		cb.Done(now)
	}
	h.pending.frames = h.pending.frames[:0]
	buf.obj.Release()
}

// destroyMark is the protocol-side half of killing a window. It is
// idempotent and safe inside dispatch: it detaches the listeners,
// hides the drawable, and leaves the rest for the reaper.
func (h *Handle) destroyMark() {
	if !h.alive {
		return
	}
	h.alive = false

	h.surface.Listener = nil
	h.xsurface.Listener = nil
	h.toplevel.Listener = nil
	h.pending = pending{}
	h.drawable.SetVisible(false)
	h.log().WithField("title", h.title).Infoln("Window closed")
}

// destroy frees the drawable. Only the reaper and shutdown call it,
// never a dispatch handler.
func (h *Handle) destroy() {
	if h.drawable == nil {
		return
	}
	h.drawable.Destroy()
	h.drawable = nil
}

type surfaceListener Handle

func (h *surfaceListener) Destroy() {
	(*Handle)(h).destroyMark()
}

func (h *surfaceListener) Attach(buffer *wl.Buffer, x, y int32) {
	h.pending.attached = true
	h.pending.buffer = nil
	if buffer != nil {
		h.pending.buffer = h.cs.buffers[buffer]
	}
}

func (h *surfaceListener) Damage(x, y, width, height int32) {}

func (h *surfaceListener) Frame(cb *wl.Callback) {
	h.pending.frames = append(h.pending.frames, cb)
}

func (h *surfaceListener) SetOpaqueRegion(region *wl.Region) {}

func (h *surfaceListener) SetInputRegion(region *wl.Region) {}

func (h *surfaceListener) Commit() {
	(*Handle)(h).commit()
}

func (h *surfaceListener) SetBufferTransform(transform wl.OutputTransform) {}

func (h *surfaceListener) SetBufferScale(scale int32) {}

func (h *surfaceListener) DamageBuffer(x, y, width, height int32) {}

type xdgSurfaceListener Handle

func (h *xdgSurfaceListener) Destroy() {
	(*Handle)(h).destroyMark()
}

func (h *xdgSurfaceListener) GetToplevel(toplevel *xdg.Toplevel) {
	(*Handle)(h).log().Warnln("Surface already has the toplevel role")
}

func (h *xdgSurfaceListener) GetPopup(popup *xdg.Popup, parent *xdg.Surface, positioner *xdg.Positioner) {
	(*Handle)(h).log().Warnln("Surface already has the toplevel role")
}

func (h *xdgSurfaceListener) SetWindowGeometry(x, y, width, height int32) {}

func (h *xdgSurfaceListener) AckConfigure(serial uint32) {
	h.lastAck = serial
}

type toplevelListener Handle

func (h *toplevelListener) Destroy() {
	(*Handle)(h).destroyMark()
}

func (h *toplevelListener) SetParent(parent *xdg.Toplevel) {}

func (h *toplevelListener) SetTitle(title string) {
	h.title = title
}

func (h *toplevelListener) SetAppId(appID string) {
	h.appID = appID
}

func (h *toplevelListener) ShowWindowMenu(seat *wl.Seat, serial uint32, x, y int32) {}

func (h *toplevelListener) Move(seat *wl.Seat, serial uint32) {}

func (h *toplevelListener) Resize(seat *wl.Seat, serial uint32, edges xdg.ToplevelResizeEdge) {}

func (h *toplevelListener) SetMaxSize(width, height int32) {}

func (h *toplevelListener) SetMinSize(width, height int32) {}

func (h *toplevelListener) SetMaximized() {}

func (h *toplevelListener) UnsetMaximized() {}

func (h *toplevelListener) SetFullscreen(output *wl.Output) {}

func (h *toplevelListener) UnsetFullscreen() {}

func (h *toplevelListener) SetMinimized() {}
