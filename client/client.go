// Package wl implements the client half of the core Wayland protocol.
//
// It mirrors the server package's design: a Client owns the
// connection and the proxy objects, events arriving from the server
// are queued, and nothing is dispatched until Flush is called. Each
// proxy object has a Listener field through which its events are
// delivered.
package wl

import (
	"errors"
	"io"
	"net"
	"sync"

	"deedles.dev/nest/internal/cq"
	"deedles.dev/nest/internal/debug"
	"deedles.dev/nest/internal/objstore"
	"deedles.dev/nest/wire"
)

// Client is the client side of a connection to a Wayland server.
type Client struct {
	done  chan struct{}
	close sync.Once
	conn  *wire.Conn
	store *objstore.Store
	queue *cq.Queue[func() error]
}

// Dial connects to the Wayland server that the environment points at.
func Dial() (*Client, error) {
	conn, err := wire.Dial()
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient creates a Client on top of an existing connection. The
// returned Client owns conn and will close it when it is closed.
func NewClient(conn *wire.Conn) *Client {
	client := Client{
		done:  make(chan struct{}),
		conn:  conn,
		store: objstore.New(1),
		queue: cq.New[func() error](),
	}

	client.store.Add(NewDisplay(&client))

	go client.listen()

	return &client
}

func (client *Client) listen() {
	for {
		msg, err := wire.ReadMessage(client.conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case <-client.done:
				return
			case client.queue.Add() <- func() error { return err }:
				continue
			}
		}

		select {
		case <-client.done:
			return
		case client.queue.Add() <- func() error { return client.store.Dispatch(msg) }:
		}
	}
}

// Display returns the client's wl_display proxy, the object with ID 1.
func (client *Client) Display() *Display {
	return client.Get(1).(*Display)
}

// Add registers obj with the client's object store, allocating an ID
// for it.
func (client *Client) Add(obj wire.Object) {
	client.store.Add(obj)
}

// Get returns the object with the given ID, or nil if there isn't
// one.
func (client *Client) Get(id uint32) wire.Object {
	return client.store.Get(id)
}

// Delete removes the object with the given ID from the client's
// object store.
func (client *Client) Delete(id uint32) {
	client.store.Delete(id)
}

// Enqueue schedules msg to be sent to the server during the next
// flush.
func (client *Client) Enqueue(msg *wire.MessageBuilder) {
	select {
	case <-client.done:
	case client.queue.Add() <- func() error {
		debug.Printf(" -> %v", msg)
		return msg.Build(client.conn)
	}:
	}
}

// Flush sends everything that has been enqueued since the last flush
// and dispatches the events that have arrived from the server in the
// meantime.
func (client *Client) Flush() error {
	var errs []error
	for {
		select {
		case queue := <-client.queue.Get():
			errs = append(errs, cq.Flush(queue)...)
		default:
			return errors.Join(errs...)
		}
	}
}

// RoundTrip flushes until the server confirms that it has processed
// every request made before the call. Unlike Flush it blocks, so it
// must not be called from an event handler.
func (client *Client) RoundTrip() error {
	get := client.queue.Get()
	done := make(chan struct{})
	client.Display().Sync().Then(func(uint32) {
		close(done)
		get = nil
	})

	var errs []error

	for {
		select {
		case <-done:
			return errors.Join(errs...)

		case queue := <-get:
			errs = append(errs, cq.Flush(queue)...)
		}
	}
}

// Close closes the connection. Events and requests still queued are
// dropped.
func (client *Client) Close() error {
	client.close.Do(func() { close(client.done) })
	client.queue.Stop()
	return client.conn.Close()
}
