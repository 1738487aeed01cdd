package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	RegistryInterface = "wl_registry"
	RegistryVersion   = 1
)

// RegistryListener handles the requests that a client makes of a
// wl_registry.
type RegistryListener interface {
	// Bind is called when the client binds one of the advertised
	// globals. id carries the client's idea of the global's interface
	// and version along with the object ID that it has chosen; it is
	// the handler's job to check them and to create the corresponding
	// object.
	Bind(name uint32, id wire.NewID)
}

// Registry is the server side of a wl_registry. The server announces
// its globals on it and the client binds the ones it wants.
type Registry struct {
	Listener RegistryListener

	id     uint32
	client *Client
}

func NewRegistry(client *Client) *Registry {
	return &Registry{client: client}
}

func (r *Registry) ID() uint32      { return r.id }
func (r *Registry) SetID(id uint32) { r.id = id }
func (r *Registry) Delete()         {}

func (r *Registry) String() string {
	return fmt.Sprintf("%v@%v", RegistryInterface, r.id)
}

func (r *Registry) MethodName(op uint16) string {
	switch op {
	case 0:
		return "bind"
	}
	return "unknown"
}

func (r *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // bind
		name := msg.ReadUint()
		id := msg.ReadNewID()
		if err := msg.Err(); err != nil {
			return err
		}
		if r.Listener != nil {
			r.Listener.Bind(name, id)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: RegistryInterface, Type: "request", Op: msg.Op()}
}

// Global announces a global object to the client. name identifies the
// global in later bind requests.
func (r *Registry) Global(name uint32, inter string, version uint32) {
	msg := wire.NewMessage(r, 0)
	msg.Method = "global"
	msg.Args = []any{name, inter, version}
	msg.WriteUint(name)
	msg.WriteString(inter)
	msg.WriteUint(version)
	r.client.Enqueue(msg)
}

// GlobalRemove withdraws a previously announced global. The name may
// not be reused until the client could no longer have a bind to it in
// flight.
func (r *Registry) GlobalRemove(name uint32) {
	msg := wire.NewMessage(r, 1)
	msg.Method = "global_remove"
	msg.Args = []any{name}
	msg.WriteUint(name)
	r.client.Enqueue(msg)
}
