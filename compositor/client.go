package compositor

import (
	"os"

	wl "deedles.dev/nest/server"
	"deedles.dev/nest/wire"
	xdg "deedles.dev/nest/xdg/server"
	"github.com/sirupsen/logrus"
)

// Registry global names, in advertisement order.
const (
	globalCompositor uint32 = iota
	globalSubcompositor
	globalShm
	globalOutput
	globalSeat
	globalDataDeviceManager
	globalWmBase
)

// clientConn is the compositor's per-client state: the serial
// counter shared by sync and configure, and the buffer views the
// client has created.
type clientConn struct {
	comp   *Server
	client *wl.Client

	serial  uint32
	buffers map[*wl.Buffer]*buffer
}

func newClientConn(comp *Server, client *wl.Client) *clientConn {
	cs := clientConn{
		comp:    comp,
		client:  client,
		buffers: make(map[*wl.Buffer]*buffer),
	}
	client.Display().Listener = (*displayListener)(&cs)
	return &cs
}

func (cs *clientConn) nextSerial() uint32 {
	cs.serial++
	return cs.serial
}

func (cs *clientConn) sendOutput(o *wl.Output) {
	w, h := cs.comp.outputSize()
	o.Geometry(0, 0, 0, 0, wl.OutputSubpixelUnknown, "nest", "virtual", wl.OutputTransformNormal)
	o.Mode(wl.OutputModeCurrent|wl.OutputModePreferred, int32(w), int32(h), 60000)
	o.Scale(1)
	o.Done()
}

type displayListener clientConn

func (cs *displayListener) Sync(cb *wl.Callback) {
	cb.Done((*clientConn)(cs).nextSerial())
}

func (cs *displayListener) GetRegistry(r *wl.Registry) {
	r.Listener = (*registryListener)(cs)
	r.Global(globalCompositor, wl.CompositorInterface, wl.CompositorVersion)
	r.Global(globalSubcompositor, wl.SubcompositorInterface, wl.SubcompositorVersion)
	r.Global(globalShm, wl.ShmInterface, wl.ShmVersion)
	r.Global(globalOutput, wl.OutputInterface, wl.OutputVersion)
	r.Global(globalSeat, wl.SeatInterface, wl.SeatVersion)
	r.Global(globalDataDeviceManager, wl.DataDeviceManagerInterface, wl.DataDeviceManagerVersion)
	r.Global(globalWmBase, xdg.WmBaseInterface, xdg.WmBaseVersion)
}

type registryListener clientConn

func (cs *registryListener) Bind(name uint32, id wire.NewID) {
	c := (*clientConn)(cs)
	switch name {
	case globalCompositor:
		comp := wl.BindCompositor(c.client, id)
		comp.Listener = (*compositorListener)(cs)

	case globalSubcompositor:
		// Subsurfaces are accepted but never composited.
		wl.BindSubcompositor(c.client, id)

	case globalShm:
		shm := wl.BindShm(c.client, id)
		shm.Listener = (*shmListener)(cs)
		shm.Format(wl.ShmFormatArgb8888)
		shm.Format(wl.ShmFormatXrgb8888)

	case globalOutput:
		c.sendOutput(wl.BindOutput(c.client, id))

	case globalSeat:
		// A placeholder seat: no capabilities, so clients never
		// expect input from it.
		seat := wl.BindSeat(c.client, id)
		seat.Capabilities(0)
		seat.Name("seat0")

	case globalDataDeviceManager:
		wl.BindDataDeviceManager(c.client, id)

	case globalWmBase:
		wb := xdg.BindWmBase(c.client, id)
		wb.Listener = (*wmBaseListener)(cs)

	default:
		logrus.WithFields(logrus.Fields{
			"client": c.client,
			"name":   name,
		}).Warnln("Bind for unknown global")
	}
}

type compositorListener clientConn

func (cs *compositorListener) CreateSurface(surface *wl.Surface) {
	// The surface stays inert until it is given the toplevel role.
	logrus.WithFields(logrus.Fields{
		"client":  cs.client,
		"surface": surface,
	}).Debugln("Surface created")
}

func (cs *compositorListener) CreateRegion(region *wl.Region) {}

type shmListener clientConn

func (cs *shmListener) CreatePool(poolObj *wl.ShmPool, file *os.File, size int32) {
	c := (*clientConn)(cs)
	if size <= 0 {
		file.Close()
		c.client.Display().Error(poolObj.ID(), uint32(wl.ShmErrorInvalidFd), "pool size must be positive")
		return
	}

	p, err := newPool(c, poolObj, file, size)
	if err != nil {
		logrus.WithError(err).WithField("client", c.client).Errorln("Mapping client pool failed")
		c.client.Display().Error(poolObj.ID(), uint32(wl.ShmErrorInvalidFd), "could not map pool")
		return
	}
	poolObj.Listener = (*poolListener)(p)
}

type wmBaseListener clientConn

func (cs *wmBaseListener) Destroy() {}

func (cs *wmBaseListener) CreatePositioner(positioner *xdg.Positioner) {}

func (cs *wmBaseListener) GetXdgSurface(xsurface *xdg.Surface, surface *wl.Surface) {
	c := (*clientConn)(cs)
	if surface == nil {
		logrus.WithField("client", c.client).Warnln("get_xdg_surface without a surface")
		return
	}

	rs := roleState{cs: c, surface: surface, xsurface: xsurface}
	xsurface.Listener = (*roleListener)(&rs)
}

func (cs *wmBaseListener) Pong(serial uint32) {}

// roleState tracks an xdg_surface that has no role yet. Once the
// client asks for a toplevel it graduates into a Handle, which takes
// over all three objects' listeners.
type roleState struct {
	cs       *clientConn
	surface  *wl.Surface
	xsurface *xdg.Surface
}

type roleListener roleState

func (rs *roleListener) Destroy() {}

func (rs *roleListener) GetToplevel(toplevel *xdg.Toplevel) {
	r := (*roleState)(rs)

	h, err := newHandle(r.cs, r.surface, r.xsurface, toplevel)
	if err != nil {
		logrus.WithError(err).WithField("client", r.cs.client).Errorln("Dropping new window")
		return
	}
	if err := r.cs.comp.reg.insert(h); err != nil {
		return
	}

	h.listen()
	h.log().WithField("client", r.cs.client).Infoln("New window")
}

func (rs *roleListener) GetPopup(popup *xdg.Popup, parent *xdg.Surface, positioner *xdg.Positioner) {
	logrus.WithField("client", rs.cs.client).Debugln("Ignoring popup")
}

func (rs *roleListener) SetWindowGeometry(x, y, width, height int32) {}

func (rs *roleListener) AckConfigure(serial uint32) {}
