package wl

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"deedles.dev/nest/internal/cq"
	"deedles.dev/nest/internal/debug"
	"deedles.dev/nest/internal/objstore"
	"deedles.dev/nest/wire"
)

// Client is the server side of one client connection. It owns the
// protocol objects that the client has created and the queue of work
// pending for it.
type Client struct {
	server *Server
	done   chan struct{}
	close  sync.Once
	conn   *wire.Conn
	store  *objstore.Store
	queue  *cq.Queue[func() error]
}

func newClient(server *Server, conn *wire.Conn) *Client {
	client := Client{
		server: server,
		done:   make(chan struct{}),
		conn:   conn,
		store:  objstore.New(1 << 24),
		queue:  cq.New[func() error](),
	}

	display := NewDisplay(&client)
	display.SetID(1)
	client.store.Add(display)

	go client.listen()

	return &client
}

func (client *Client) listen() {
	defer func() {
		client.Close()

		select {
		case <-client.server.done:
		case client.server.queue.Add() <- func() error { client.server.removeClient(client); return nil }:
		}
	}()

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
		case client.queue.Add() <- func() error { return client.dispatch(msg) }:
		}
	}
}

// dispatch routes one request to its target object. Unknown objects
// and opcodes are answered with a wl_display error, posted on the
// display itself, in addition to being returned.
func (client *Client) dispatch(msg *wire.MessageBuffer) error {
	err := client.store.Dispatch(msg)

	var opErr wire.UnknownOpError
	var senderErr wire.UnknownSenderIDError
	switch {
	case errors.As(err, &opErr):
		display := client.Display()
		display.Error(display.ID(), uint32(DisplayErrorInvalidMethod), err.Error())
	case errors.As(err, &senderErr):
		display := client.Display()
		display.Error(display.ID(), uint32(DisplayErrorInvalidObject), err.Error())
	}
	return err
}

func (client *Client) String() string {
	return fmt.Sprintf("client(%p)", client)
}

// Server returns the server that accepted the client.
func (client *Client) Server() *Server {
	return client.server
}

// Add registers obj with the client's object store. If obj does not
// have an ID yet, one is allocated for it from the server-side range.
func (client *Client) Add(obj wire.Object) {
	client.store.Add(obj)
}

// Get returns the object with the given ID, or nil if there isn't one.
func (client *Client) Get(id uint32) wire.Object {
	return client.store.Get(id)
}

// Delete removes the object with the given ID from the client's
// object store without telling the client about it. Most callers want
// Destroy instead.
func (client *Client) Delete(id uint32) {
	client.store.Delete(id)
}

// Destroy removes obj from the client's object store and notifies the
// client that the object's ID is free to be reused. It is the normal
// way to finish handling a destructor request.
func (client *Client) Destroy(obj wire.Object) {
	id := obj.ID()
	client.store.Delete(id)
	client.Display().DeleteId(id)
}

// Display returns the client's wl_display, the object with ID 1.
func (client *Client) Display() *Display {
	return client.Get(1).(*Display)
}

// Enqueue schedules msg to be sent to the client during the next
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

// Flush dispatches the requests that have arrived from the client
// since the last flush and sends it everything that has been enqueued
// in the meantime, repeating until the queue is empty so that replies
// produced while dispatching go out in the same flush.
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

// Close closes the client's connection and stops its queue. Queued
// work that has not been flushed yet is dropped.
func (client *Client) Close() error {
	client.close.Do(func() { close(client.done) })
	client.queue.Stop()
	return client.conn.Close()
}
