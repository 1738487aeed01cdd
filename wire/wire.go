// Package wire implements the Wayland wire format. It deals in raw
// messages and file descriptors and knows nothing about specific
// protocol interfaces; that knowledge lives in the binding packages
// built on top of it.
package wire

// Object represents a Wayland protocol object, either a client-side
// proxy or a server-side resource.
type Object interface {
	// ID returns the object's ID, or 0 if it has not been assigned
	// one yet.
	ID() uint32

	// SetID assigns the object's ID. It is called once, by the store
	// that the object is added to.
	SetID(id uint32)

	// Delete is called when the object is removed from its store.
	Delete()

	// MethodName returns the name of the method that corresponds to
	// the given opcode. It is only used for debug output.
	MethodName(op uint16) string

	// Dispatch performs the operation requested by the message in the
	// buffer.
	Dispatch(msg *MessageBuffer) error
}

// NewID is the triple transmitted for a new_id argument whose
// interface is not fixed by the protocol, such as wl_registry.bind.
type NewID struct {
	Interface string
	Version   uint32
	ID        uint32
}

// padding returns the number of padding bytes necessary to align data
// of the given size to a 32-bit boundary.
func padding(size uint32) uint32 {
	return (4 - (size & 3)) & 3
}
