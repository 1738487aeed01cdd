package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
	"golang.org/x/exp/maps"
)

const (
	RegistryInterface = "wl_registry"
	RegistryVersion   = 1
)

// Interface identifies a bindable global: what it is and the highest
// version that the server offers.
type Interface struct {
	Name    string
	Version uint32
}

// Is reports whether i is the named interface at no less than the
// given version.
func (i Interface) Is(name string, version uint32) bool {
	return i.Name == name && i.Version >= version
}

// RegistryListener handles the events that the server sends on a
// wl_registry.
type RegistryListener interface {
	Global(name uint32, inter string, version uint32)
	GlobalRemove(name uint32)
}

// Registry is a client-side wl_registry proxy. It remembers the
// globals announced on it, so a listener is only necessary to react
// to changes as they happen.
type Registry struct {
	Listener RegistryListener

	id      uint32
	client  *Client
	globals map[uint32]Interface
}

func NewRegistry(client *Client) *Registry {
	return &Registry{
		client:  client,
		globals: make(map[uint32]Interface),
	}
}

// Globals returns a copy of the globals that the server has announced
// and not withdrawn so far.
func (r *Registry) Globals() map[uint32]Interface {
	return maps.Clone(r.globals)
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
		return "global"
	case 1:
		return "global_remove"
	}
	return "unknown"
}

func (r *Registry) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // global
		name := msg.ReadUint()
		inter := msg.ReadString()
		version := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		r.globals[name] = Interface{Name: inter, Version: version}
		if r.Listener != nil {
			r.Listener.Global(name, inter, version)
		}
		return nil

	case 1: // global_remove
		name := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		delete(r.globals, name)
		if r.Listener != nil {
			r.Listener.GlobalRemove(name)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: RegistryInterface, Type: "event", Op: msg.Op()}
}

// Bind binds the named global to the given ID. Most callers should
// use a typed helper such as BindCompositor instead, which also
// creates and registers the local proxy.
func (r *Registry) Bind(name uint32, id wire.NewID) {
	msg := wire.NewMessage(r, 0)
	msg.Method = "bind"
	msg.Args = []any{name, id}
	msg.WriteUint(name)
	msg.WriteNewID(id)
	r.client.Enqueue(msg)
}
