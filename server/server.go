// Package wl implements the server half of the core Wayland protocol.
//
// A Server accepts client connections and tracks the protocol objects
// that each client creates, but it attaches no meaning to them. All
// policy is delegated to listeners: the Server's own Listener is told
// about clients coming and going, and each protocol object has a
// Listener field that is informed of requests made on that object.
// Incoming requests are queued as they arrive and are only dispatched,
// on the caller's goroutine, when Flush is called.
package wl

import (
	"errors"
	"net"
	"path/filepath"
	"sync"

	"deedles.dev/nest/internal/cq"
	"deedles.dev/nest/internal/set"
	"deedles.dev/nest/wire"
)

// ServerListener is notified of clients connecting to and
// disconnecting from a Server.
type ServerListener interface {
	// Client is called when a new client connects, before any of the
	// client's requests are dispatched.
	Client(client *Client)

	// ClientRemove is called after a client's connection has gone
	// away. Requests from the client that were still queued when it
	// disconnected are not dispatched.
	ClientRemove(client *Client)
}

type Server struct {
	Listener ServerListener

	done    chan struct{}
	close   sync.Once
	lis     *net.UnixListener
	clients set.Set[*Client]
	queue   *cq.Queue[func() error]
}

// ListenAndServe listens on the first free default socket path and
// serves clients that connect to it.
func ListenAndServe() (*Server, error) {
	lis, err := wire.Listen()
	if err != nil {
		return nil, err
	}
	return NewServer(lis), nil
}

// ListenAndServeAt is like ListenAndServe but listens on the socket
// path given instead of picking one automatically.
func ListenAndServeAt(path string) (*Server, error) {
	lis, err := wire.ListenAt(path)
	if err != nil {
		return nil, err
	}
	return NewServer(lis), nil
}

func NewServer(lis *net.UnixListener) *Server {
	server := Server{
		done:    make(chan struct{}),
		lis:     lis,
		clients: make(set.Set[*Client]),
		queue:   cq.New[func() error](),
	}
	go server.listen()

	return &server
}

// SocketName returns the name of the socket that the server is
// listening on, relative to the runtime directory. It is the value
// that clients expect to find in $WAYLAND_DISPLAY.
func (server *Server) SocketName() string {
	return filepath.Base(server.lis.Addr().String())
}

func (server *Server) listen() {
	for {
		c, err := server.lis.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-server.done:
				return
			case server.queue.Add() <- func() error { return err }:
				continue
			}
		}

		select {
		case <-server.done:
			return
		case server.queue.Add() <- func() error { server.addClient(c); return nil }:
		}
	}
}

func (server *Server) addClient(c *net.UnixConn) {
	client := newClient(server, wire.NewConn(c))
	server.clients.Add(client)
	if server.Listener != nil {
		server.Listener.Client(client)
	}
}

func (server *Server) removeClient(client *Client) {
	if !server.clients.Has(client) {
		return
	}

	server.clients.Remove(client)
	if server.Listener != nil {
		server.Listener.ClientRemove(client)
	}
}

// Flush runs the server's queued work. It first handles connection
// comings and goings and then flushes every connected client,
// dispatching the requests that they have sent since the last flush
// and writing out any events that handling them produced. It returns
// the combined errors of everything it ran.
//
// All dispatching happens on Flush's caller. None of the listeners
// attached to the server or to protocol objects are ever called from
// anywhere else.
func (server *Server) Flush() error {
	var errs []error

	for {
		select {
		case queue := <-server.queue.Get():
			errs = append(errs, cq.Flush(queue)...)
			continue
		default:
		}
		break
	}

	for client := range server.clients {
		err := client.Flush()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close shuts the server down, closing the listening socket and all
// client connections.
func (server *Server) Close() error {
	var errs []error
	server.close.Do(func() {
		close(server.done)
		errs = append(errs, server.lis.Close())
		for client := range server.clients {
			errs = append(errs, client.Close())
		}
		clear(server.clients)
		server.queue.Stop()
	})
	return errors.Join(errs...)
}
