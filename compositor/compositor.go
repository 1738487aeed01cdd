// Package compositor implements the window pipeline of a nested
// Wayland server. It accepts clients on a Unix socket, walks each
// client window through the xdg-shell configure handshake, and copies
// committed shm buffers into drawables owned by a presentation host,
// once per tick and without ever blocking on a client.
//
// The compositor itself is single-threaded: connection goroutines
// only queue work, and everything from protocol dispatch to pixel
// upload happens on whichever goroutine calls Tick.
package compositor

import (
	"fmt"
	"os"
	"path/filepath"

	"deedles.dev/nest/present"
	wl "deedles.dev/nest/server"
	adrgxdg "github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

// Config carries the tunable parts of a compositor.
type Config struct {
	// Socket is the socket name to listen on, under the runtime
	// directory unless absolute. Empty picks the first free
	// wayland-N name.
	Socket string

	// OutputWidth and OutputHeight describe the advertised output
	// mode. Zero falls back to the host's viewport size.
	OutputWidth  int
	OutputHeight int
}

// Server is a compositor: a Wayland server that turns client windows
// into drawables on a presentation host.
type Server struct {
	host present.Host
	cfg  Config

	wl       *wl.Server
	reg      *Registry
	conns    map[*wl.Client]*clientConn
	identity uint64
	socket   string
}

// New returns an inert compositor. Nothing happens until Start.
func New(host present.Host, cfg Config) *Server {
	return &Server{
		host:  host,
		cfg:   cfg,
		reg:   newRegistry(),
		conns: make(map[*wl.Client]*clientConn),
	}
}

// Start begins listening for clients and exports the socket name in
// $WAYLAND_DISPLAY so spawned programs find it. Clients connect
// immediately, but none of their requests are handled until the
// first Tick.
func (s *Server) Start() error {
	srv, err := s.listen()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	s.wl = srv
	s.socket = srv.SocketName()
	if filepath.IsAbs(s.cfg.Socket) {
		// An absolute socket lives outside the runtime directory, so
		// the name alone would not lead clients to it.
		s.socket = s.cfg.Socket
	}
	srv.Listener = (*serverListener)(s)

	if cur := os.Getenv("WAYLAND_DISPLAY"); cur != "" && cur != s.socket {
		logrus.WithFields(logrus.Fields{
			"old": cur,
			"new": s.socket,
		}).Warnln("Overriding WAYLAND_DISPLAY")
	}
	os.Setenv("WAYLAND_DISPLAY", s.socket)

	logrus.WithField("socket", s.socket).Infoln("Compositor listening")
	return nil
}

func (s *Server) listen() (*wl.Server, error) {
	if s.cfg.Socket == "" {
		return wl.ListenAndServe()
	}

	path := s.cfg.Socket
	if !filepath.IsAbs(path) {
		path = filepath.Join(adrgxdg.RuntimeDir, path)
	}
	return wl.ListenAndServeAt(path)
}

// Socket returns the socket name the compositor listens on. It is
// only valid after Start.
func (s *Server) Socket() string { return s.socket }

// Registry returns the compositor's window registry.
func (s *Server) Registry() *Registry { return s.reg }

func (s *Server) nextIdentity() uint64 {
	s.identity++
	return s.identity
}

func (s *Server) outputSize() (int, int) {
	if s.cfg.OutputWidth <= 0 || s.cfg.OutputHeight <= 0 {
		return s.host.ViewportSize()
	}
	return s.cfg.OutputWidth, s.cfg.OutputHeight
}

// Tick drains every client's queued requests without blocking, then
// reaps windows that died during dispatch. The returned error joins
// all per-message dispatch failures; the connections they came from
// are still alive.
func (s *Server) Tick() error {
	if s.wl == nil {
		return nil
	}
	err := s.wl.Flush()
	s.reg.reap()
	return err
}

// Shutdown destroys every window and closes the server, listener and
// client connections both. It must not run concurrently with Tick.
func (s *Server) Shutdown() {
	if s.wl == nil {
		return
	}

	for _, h := range s.reg.Handles() {
		h.destroyMark()
		h.destroy()
	}
	s.reg.clear()

	s.wl.Close()
	s.wl = nil
	logrus.WithField("socket", s.socket).Infoln("Compositor stopped")
}

type serverListener Server

func (s *serverListener) Client(c *wl.Client) {
	srv := (*Server)(s)
	srv.conns[c] = newClientConn(srv, c)
	logrus.WithField("client", c).Infoln("Client connected")
}

func (s *serverListener) ClientRemove(c *wl.Client) {
	srv := (*Server)(s)
	cs := srv.conns[c]
	delete(srv.conns, c)
	if cs == nil {
		return
	}

	for _, h := range srv.reg.Handles() {
		if h.cs == cs {
			h.destroyMark()
		}
	}
	logrus.WithField("client", c).Infoln("Client disconnected")
}
