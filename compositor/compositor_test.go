package compositor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"slices"
	"testing"
	"time"

	wl "deedles.dev/nest/client"
	"deedles.dev/nest/present"
	server "deedles.dev/nest/server"
	"deedles.dev/nest/shm"
	xdg "deedles.dev/nest/xdg/client"
	"golang.org/x/sys/unix"
)

// fakeHost records every drawable the compositor asks for.
type fakeHost struct {
	width, height int
	drawables     []*fakeDrawable
	fail          error
}

func newFakeHost() *fakeHost {
	return &fakeHost{width: 640, height: 480}
}

func (f *fakeHost) CreateDrawable(width, height int) (present.Drawable, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	d := fakeDrawable{width: width, height: height, visible: true}
	f.drawables = append(f.drawables, &d)
	return &d, nil
}

func (f *fakeHost) ViewportSize() (width, height int) {
	return f.width, f.height
}

type fakeDrawable struct {
	width, height int
	x, y          int
	visible       bool
	destroyed     int
	uploads       int
	pix           []byte
}

func (d *fakeDrawable) Resize(width, height int) {
	d.width, d.height = width, height
}

func (d *fakeDrawable) Move(x, y int) {
	d.x, d.y = x, y
}

func (d *fakeDrawable) SetPixels(pix []byte) {
	// The compositor reuses its conversion buffer between commits,
	// so keep a copy.
	d.uploads++
	d.pix = append(d.pix[:0], pix...)
}

func (d *fakeDrawable) SetVisible(visible bool) {
	d.visible = visible
}

func (d *fakeDrawable) Destroy() {
	d.destroyed++
}

func startCompositor(t *testing.T) (*Server, *fakeHost) {
	t.Helper()

	host := newFakeHost()
	sock := filepath.Join(t.TempDir(), "nest-test")
	t.Setenv("WAYLAND_DISPLAY", sock)

	srv := New(host, Config{Socket: sock})
	if err := srv.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(srv.Shutdown)
	return srv, host
}

// pump drives the single-threaded dispatch loop: it alternates server
// ticks with client flushes until cond holds or the deadline passes.
func pump(t *testing.T, srv *Server, clients []*wl.Client, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := srv.Tick(); err != nil {
			t.Logf("tick: %v", err)
		}
		for _, c := range clients {
			if err := c.Flush(); err != nil {
				t.Logf("flush: %v", err)
			}
		}
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %v", what)
}

type protoError struct {
	id   uint32
	code uint32
	msg  string
}

// testClient is the client half of the tests. It doubles as the
// listener for the display, registry, seat, and output.
type testClient struct {
	client     *wl.Client
	display    *wl.Display
	registry   *wl.Registry
	compositor *wl.Compositor
	shm        *wl.Shm
	wmBase     *xdg.WmBase

	errors     []protoError
	seatCaps   *wl.SeatCapability
	seatName   string
	modeW      int32
	modeH      int32
	outputDone bool
}

func (tc *testClient) Error(id, code uint32, msg string) {
	tc.errors = append(tc.errors, protoError{id: id, code: code, msg: msg})
}

func (tc *testClient) DeleteId(id uint32) {}

func (tc *testClient) Global(name uint32, inter string, version uint32) {
	switch inter {
	case wl.CompositorInterface:
		tc.compositor = wl.BindCompositor(tc.client, tc.registry, name, version)
	case wl.ShmInterface:
		tc.shm = wl.BindShm(tc.client, tc.registry, name, version)
	case wl.SeatInterface:
		seat := wl.BindSeat(tc.client, tc.registry, name, version)
		seat.Listener = tc
	case wl.OutputInterface:
		output := wl.BindOutput(tc.client, tc.registry, name, version)
		output.Listener = tc
	case xdg.WmBaseInterface:
		tc.wmBase = xdg.BindWmBase(tc.client, tc.registry, name, version)
	}
}

func (tc *testClient) GlobalRemove(name uint32) {}

func (tc *testClient) Capabilities(caps wl.SeatCapability) { tc.seatCaps = &caps }
func (tc *testClient) Name(name string)                    { tc.seatName = name }

func (tc *testClient) Geometry(x, y, physicalWidth, physicalHeight int32, subpixel wl.OutputSubpixel, maker, model string, transform wl.OutputTransform) {
}

func (tc *testClient) Mode(flags wl.OutputMode, width, height, refresh int32) {
	tc.modeW, tc.modeH = width, height
}

func (tc *testClient) Done()              { tc.outputDone = true }
func (tc *testClient) Scale(factor int32) {}

// connect dials the compositor and pumps until every global is bound
// and has sent its initial state.
func connect(t *testing.T, srv *Server) *testClient {
	t.Helper()

	c, err := wl.Dial()
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	tc := testClient{client: c}
	tc.display = c.Display()
	tc.display.Listener = &tc
	tc.registry = tc.display.GetRegistry()
	tc.registry.Listener = &tc

	pump(t, srv, []*wl.Client{c}, "initial globals", func() bool {
		return tc.compositor != nil && tc.wmBase != nil &&
			tc.shm != nil && tc.shm.Supports(wl.ShmFormatArgb8888) &&
			tc.outputDone && tc.seatCaps != nil && tc.seatName != ""
	})
	return &tc
}

// roundTrip pumps until the server has handled everything requested
// before the call.
func (tc *testClient) roundTrip(t *testing.T, srv *Server) {
	t.Helper()

	done := false
	tc.display.Sync().Then(func(uint32) { done = true })
	pump(t, srv, []*wl.Client{tc.client}, "sync", func() bool { return done })
}

// testWindow is a toplevel under construction on the client side. It
// listens on the xdg_surface; toplevelEvents listens on the toplevel.
type testWindow struct {
	tc *testClient

	surface  *wl.Surface
	xsurface *xdg.Surface
	toplevel *xdg.Toplevel

	configures []uint32
	autoAck    bool

	tlWidth  int32
	tlHeight int32
	tlStates []xdg.ToplevelState
	closed   bool
}

func (w *testWindow) Configure(serial uint32) {
	w.configures = append(w.configures, serial)
	if w.autoAck {
		w.xsurface.AckConfigure(serial)
	}
}

type toplevelEvents testWindow

func (w *toplevelEvents) Configure(width, height int32, states []byte) {
	w.tlWidth, w.tlHeight = width, height
	w.tlStates = xdg.ParseToplevelStates(states)
}

func (w *toplevelEvents) Close()                              { w.closed = true }
func (w *toplevelEvents) ConfigureBounds(width, height int32) {}
func (w *toplevelEvents) WmCapabilities(capabilities []byte)  {}

// newWindow builds the surface, xdg_surface, toplevel triple but does
// not commit, so the configure handshake has not started yet.
func newWindow(tc *testClient) *testWindow {
	w := testWindow{tc: tc, autoAck: true}
	w.surface = tc.compositor.CreateSurface()
	w.xsurface = tc.wmBase.GetXdgSurface(w.surface)
	w.xsurface.Listener = &w
	w.toplevel = w.xsurface.GetToplevel()
	w.toplevel.Listener = (*toplevelEvents)(&w)
	return &w
}

// createWindow makes a window the way a well-behaved client does:
// role setup, title, then an empty commit to start the handshake.
func createWindow(t *testing.T, srv *Server, tc *testClient, title string) *testWindow {
	t.Helper()

	w := newWindow(tc)
	w.toplevel.SetTitle(title)
	w.surface.Commit()

	pump(t, srv, []*wl.Client{tc.client}, "initial configure", func() bool {
		return len(w.configures) > 0
	})
	return w
}

type releaseCounter struct {
	n int
}

func (r *releaseCounter) Release() { r.n++ }

// createShmBuffer shares pix with the compositor through a fresh pool.
// The pool is destroyed right away; the buffer keeps it mapped.
func createShmBuffer(t *testing.T, tc *testClient, width, height, stride int32, format wl.ShmFormat, pix []byte) (*wl.Buffer, shm.Mmap) {
	t.Helper()

	size := stride * height
	file, err := shm.Create()
	if err != nil {
		t.Fatalf("create shm file: %v", err)
	}
	defer file.Close()
	if err := file.Truncate(int64(size)); err != nil {
		t.Fatalf("truncate shm file: %v", err)
	}

	mmap, err := shm.MapShared(file, int(size), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		t.Fatalf("map shm file: %v", err)
	}
	t.Cleanup(func() { mmap.Unmap() })
	copy(mmap, pix)

	pool := tc.shm.CreatePool(file, size)
	defer pool.Destroy()
	return pool.CreateBuffer(0, width, height, stride, format), mmap
}

// createShmPool makes a pool holding pix without carving a buffer out
// of it.
func createShmPool(t *testing.T, tc *testClient, pix []byte) (*wl.ShmPool, shm.Mmap) {
	t.Helper()

	file, err := shm.Create()
	if err != nil {
		t.Fatalf("create shm file: %v", err)
	}
	defer file.Close()
	if err := file.Truncate(int64(len(pix))); err != nil {
		t.Fatalf("truncate shm file: %v", err)
	}
	mmap, err := shm.MapShared(file, len(pix), unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		t.Fatalf("map shm file: %v", err)
	}
	t.Cleanup(func() { mmap.Unmap() })
	copy(mmap, pix)

	return tc.shm.CreatePool(file, int32(len(pix))), mmap
}

func TestCompositorHandshake(t *testing.T) {
	srv, host := startCompositor(t)
	tc := connect(t, srv)

	if *tc.seatCaps != 0 {
		t.Fatalf("seat capabilities = %v, want none", *tc.seatCaps)
	}
	if tc.seatName != "seat0" {
		t.Fatalf("seat name = %q, want seat0", tc.seatName)
	}
	if tc.modeW != 640 || tc.modeH != 480 {
		t.Fatalf("output mode = %vx%v, want the host viewport 640x480", tc.modeW, tc.modeH)
	}
	if !tc.shm.Supports(wl.ShmFormatXrgb8888) {
		t.Fatal("xrgb8888 not advertised")
	}

	w := createWindow(t, srv, tc, "handshake")

	if len(w.configures) != 1 || w.configures[0] == 0 {
		t.Fatalf("configure serials = %v, want one nonzero serial", w.configures)
	}
	if w.tlWidth != 0 || w.tlHeight != 0 {
		t.Fatalf("toplevel configure size = %vx%v, want 0x0", w.tlWidth, w.tlHeight)
	}
	if !slices.Contains(w.tlStates, xdg.ToplevelStateActivated) {
		t.Fatalf("toplevel states = %v, want activated", w.tlStates)
	}

	handles := srv.Registry().Handles()
	if len(handles) != 1 {
		t.Fatalf("%v windows registered, want 1", len(handles))
	}
	h := handles[0]
	if h.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want %v", h.Phase(), PhaseActive)
	}
	if !h.Alive() {
		t.Fatal("window not alive")
	}
	if hw, hh := h.Size(); hw != 0 || hh != 0 {
		t.Fatalf("size = %vx%v, want 0x0 before any pixels", hw, hh)
	}
	if h.Title() != "handshake" {
		t.Fatalf("title = %q, want handshake", h.Title())
	}

	if len(host.drawables) != 1 {
		t.Fatalf("%v drawables created, want 1", len(host.drawables))
	}
	if host.drawables[0].uploads != 0 {
		t.Fatal("the empty first commit uploaded pixels")
	}
}

func TestCommitUploadsPixels(t *testing.T) {
	srv, host := startCompositor(t)
	tc := connect(t, srv)
	w := createWindow(t, srv, tc, "pixels")

	src := []byte{
		0x10, 0x20, 0x30, 0xFF,
		0x40, 0x50, 0x60, 0x80,
	}
	buf, _ := createShmBuffer(t, tc, 2, 1, 8, wl.ShmFormatArgb8888, src)
	rel := releaseCounter{}
	buf.Listener = &rel

	frames := 0
	w.surface.Attach(buf, 0, 0)
	w.surface.DamageBuffer(0, 0, 2, 1)
	w.surface.Frame().Then(func(uint32) { frames++ })
	w.surface.Commit()

	d := host.drawables[0]
	pump(t, srv, []*wl.Client{tc.client}, "pixels on the drawable", func() bool {
		return d.uploads == 1 && frames == 1 && rel.n == 1
	})

	want := []byte{
		0x30, 0x20, 0x10, 0xFF,
		0x60, 0x50, 0x40, 0x80,
	}
	if !bytes.Equal(d.pix, want) {
		t.Fatalf("drawable pixels = %#v, want %#v", d.pix, want)
	}
	if d.width != 2 || d.height != 1 {
		t.Fatalf("drawable size = %vx%v, want 2x1", d.width, d.height)
	}
	if hw, hh := srv.Registry().Handles()[0].Size(); hw != 2 || hh != 1 {
		t.Fatalf("window size = %vx%v, want 2x1", hw, hh)
	}
	if d.x != (640-2)/2 || d.y != (480-1)/2 {
		t.Fatalf("drawable at (%v, %v), want centered", d.x, d.y)
	}
}

func TestEarlyAttachWaitsForNextCommit(t *testing.T) {
	srv, host := startCompositor(t)
	tc := connect(t, srv)

	src := []byte{0x01, 0x02, 0x03, 0xFF}
	w := newWindow(tc)
	buf, _ := createShmBuffer(t, tc, 1, 1, 4, wl.ShmFormatArgb8888, src)

	// The client jumps the gun: a buffer on the very first commit.
	w.surface.Attach(buf, 0, 0)
	w.surface.Commit()

	pump(t, srv, []*wl.Client{tc.client}, "initial configure", func() bool {
		return len(w.configures) > 0
	})

	d := host.drawables[0]
	if d.uploads != 0 {
		t.Fatal("first commit must not upload, even with a buffer attached")
	}
	if got := srv.Registry().Handles()[0].Phase(); got != PhaseActive {
		t.Fatalf("phase = %v, want %v", got, PhaseActive)
	}

	// The attached buffer is still pending and the next commit shows it.
	w.surface.Commit()
	pump(t, srv, []*wl.Client{tc.client}, "pixels after the second commit", func() bool {
		return d.uploads == 1
	})
	if !bytes.Equal(d.pix, []byte{0x03, 0x02, 0x01, 0xFF}) {
		t.Fatalf("drawable pixels = %#v", d.pix)
	}
}

func TestWindowDestroyReaps(t *testing.T) {
	srv, host := startCompositor(t)
	tc := connect(t, srv)

	first := createWindow(t, srv, tc, "doomed")
	createWindow(t, srv, tc, "survivor")
	if got := srv.Registry().Len(); got != 2 {
		t.Fatalf("%v windows registered, want 2", got)
	}

	first.toplevel.Destroy()
	first.xsurface.Destroy()
	first.surface.Destroy()

	pump(t, srv, []*wl.Client{tc.client}, "window reaped", func() bool {
		return srv.Registry().Len() == 1
	})

	d := host.drawables[0]
	if d.destroyed != 1 {
		t.Fatalf("drawable destroyed %v times, want exactly once", d.destroyed)
	}
	if d.visible {
		t.Fatal("dead window's drawable still visible")
	}

	left := srv.Registry().Handles()
	if len(left) != 1 || left[0].Title() != "survivor" {
		t.Fatalf("remaining windows = %v, want just the survivor", len(left))
	}
	if host.drawables[1].destroyed != 0 {
		t.Fatal("the surviving window's drawable was destroyed")
	}
}

func TestSecondToplevelRoleIgnored(t *testing.T) {
	srv, _ := startCompositor(t)
	tc := connect(t, srv)

	w := createWindow(t, srv, tc, "one role")
	w.xsurface.GetToplevel()
	tc.roundTrip(t, srv)

	if got := srv.Registry().Len(); got != 1 {
		t.Fatalf("%v windows after a second get_toplevel, want 1", got)
	}
}

func TestClientDisconnectReapsItsWindows(t *testing.T) {
	srv, host := startCompositor(t)

	tcA := connect(t, srv)
	tcB := connect(t, srv)
	both := []*wl.Client{tcA.client, tcB.client}

	wA := newWindow(tcA)
	wA.toplevel.SetTitle("visitor")
	wA.surface.Commit()
	wB := newWindow(tcB)
	wB.toplevel.SetTitle("resident")
	wB.surface.Commit()

	pump(t, srv, both, "both windows", func() bool {
		return srv.Registry().Len() == 2
	})

	tcA.client.Close()
	pump(t, srv, []*wl.Client{tcB.client}, "disconnected client's windows reaped", func() bool {
		return srv.Registry().Len() == 1
	})

	if got := srv.Registry().Handles()[0].Title(); got != "resident" {
		t.Fatalf("remaining window = %q, want resident", got)
	}

	var destroyed int
	for _, d := range host.drawables {
		destroyed += d.destroyed
	}
	if destroyed != 1 {
		t.Fatalf("%v drawables destroyed, want 1", destroyed)
	}
}

func TestShmValidation(t *testing.T) {
	srv, _ := startCompositor(t)
	tc := connect(t, srv)

	lastError := func() *protoError {
		if len(tc.errors) == 0 {
			return nil
		}
		return &tc.errors[len(tc.errors)-1]
	}

	// A pool with no bytes in it is refused outright.
	file, err := shm.Create()
	if err != nil {
		t.Fatalf("create shm file: %v", err)
	}
	empty := tc.shm.CreatePool(file, 0)
	file.Close()
	pump(t, srv, []*wl.Client{tc.client}, "empty pool error", func() bool {
		return len(tc.errors) == 1
	})
	if e := lastError(); e.code != uint32(server.ShmErrorInvalidFd) || e.id != empty.ID() {
		t.Fatalf("error = %+v, want invalid_fd on the pool", *e)
	}

	pix := make([]byte, 16)
	tests := []struct {
		name   string
		create func(pool *wl.ShmPool) *wl.Buffer
		code   uint32
	}{
		{
			name: "unknown format",
			create: func(pool *wl.ShmPool) *wl.Buffer {
				return pool.CreateBuffer(0, 2, 2, 8, wl.ShmFormat(1000))
			},
			code: uint32(server.ShmErrorInvalidFormat),
		},
		{
			name: "stride too small",
			create: func(pool *wl.ShmPool) *wl.Buffer {
				return pool.CreateBuffer(0, 2, 2, 4, wl.ShmFormatArgb8888)
			},
			code: uint32(server.ShmErrorInvalidStride),
		},
		{
			name: "buffer past the end of the pool",
			create: func(pool *wl.ShmPool) *wl.Buffer {
				return pool.CreateBuffer(0, 2, 4, 8, wl.ShmFormatArgb8888)
			},
			code: uint32(server.ShmErrorInvalidStride),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(tc.errors)
			pool, _ := createShmPool(t, tc, pix)
			tt.create(pool)
			pump(t, srv, []*wl.Client{tc.client}, "protocol error", func() bool {
				return len(tc.errors) == before+1
			})
			if e := lastError(); e.code != tt.code {
				t.Fatalf("error code = %v, want %v", e.code, tt.code)
			}
		})
	}

	// The connection survives all of it.
	pool, _ := createShmPool(t, tc, pix)
	pool.CreateBuffer(0, 2, 2, 8, wl.ShmFormatArgb8888)
	tc.roundTrip(t, srv)
	if len(tc.errors) != 4 {
		t.Fatalf("%v errors after a valid buffer, want the 4 from before", len(tc.errors))
	}
}

func TestImageBufferResize(t *testing.T) {
	srv, host := startCompositor(t)
	tc := connect(t, srv)
	w := createWindow(t, srv, tc, "resizing")

	ib, err := wl.NewImageBuffer(tc.shm, 2, 2)
	if err != nil {
		t.Fatalf("create image buffer: %v", err)
	}

	green := color.NRGBA{G: 0xFF, A: 0xFF}
	fillImageBuffer(ib, green)
	w.surface.Attach(ib.Buffer(), 0, 0)
	w.surface.Commit()

	d := host.drawables[0]
	pump(t, srv, []*wl.Client{tc.client}, "2x2 upload", func() bool {
		return d.uploads == 1
	})
	if d.width != 2 || d.height != 2 {
		t.Fatalf("drawable size = %vx%v, want 2x2", d.width, d.height)
	}

	// Growing past the pool's capacity forces a remap on both ends.
	if err := ib.Resize(4, 3); err != nil {
		t.Fatalf("resize: %v", err)
	}
	fillImageBuffer(ib, green)
	w.surface.Attach(ib.Buffer(), 0, 0)
	w.surface.Commit()

	pump(t, srv, []*wl.Client{tc.client}, "4x3 upload", func() bool {
		return d.uploads == 2
	})
	if d.width != 4 || d.height != 3 {
		t.Fatalf("drawable size = %vx%v, want 4x3", d.width, d.height)
	}
	if len(d.pix) != 4*3*4 {
		t.Fatalf("len(pix) = %v, want %v", len(d.pix), 4*3*4)
	}
	for i := 0; i < len(d.pix); i += 4 {
		if d.pix[i] != 0x00 || d.pix[i+1] != 0xFF || d.pix[i+2] != 0x00 || d.pix[i+3] != 0xFF {
			t.Fatalf("pixel %v = %v, want opaque green", i/4, d.pix[i:i+4])
		}
	}
}

func fillImageBuffer(ib *wl.ImageBuffer, c color.Color) {
	img := ib.Image()
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func TestDrawableAllocationFailureDropsWindow(t *testing.T) {
	srv, host := startCompositor(t)
	tc := connect(t, srv)

	host.fail = errors.New("out of drawables")
	w := newWindow(tc)
	w.surface.Commit()
	tc.roundTrip(t, srv)

	if got := srv.Registry().Len(); got != 0 {
		t.Fatalf("%v windows registered, want none", got)
	}

	// The compositor itself keeps going.
	host.fail = nil
	createWindow(t, srv, tc, "second try")
	if got := srv.Registry().Len(); got != 1 {
		t.Fatalf("%v windows registered after recovery, want 1", got)
	}
}

func TestStartBadSocketPath(t *testing.T) {
	srv := New(newFakeHost(), Config{
		Socket: filepath.Join(t.TempDir(), "missing", "dir", "sock"),
	})
	err := srv.Start()
	if err == nil {
		srv.Shutdown()
		t.Fatal("expected an error for an unusable socket path")
	}
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("error = %v, want ErrInitialization", err)
	}
}
