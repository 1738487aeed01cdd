// Package objstore tracks the protocol objects that belong to one side
// of a Wayland connection.
package objstore

import (
	"deedles.dev/nest/internal/debug"
	"deedles.dev/nest/wire"
)

type Store struct {
	objects map[uint32]wire.Object
	nextID  uint32
}

// New returns a store that hands out IDs counting up from start.
// Clients allocate from 1, servers from the upper server-side range.
func New(start uint32) *Store {
	return &Store{
		objects: make(map[uint32]wire.Object),
		nextID:  start,
	}
}

// Add registers obj, assigning it the next free ID if it does not
// carry one already.
func (s *Store) Add(obj wire.Object) {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.objects[obj.ID()] = obj
}

func (s *Store) Get(id uint32) wire.Object {
	return s.objects[id]
}

// Delete removes the object with the given ID and runs its Delete
// hook. Unknown IDs are ignored.
func (s *Store) Delete(id uint32) {
	obj := s.objects[id]
	delete(s.objects, id)
	if obj == nil {
		return
	}
	obj.Delete()
}

// Dispatch routes msg to the object that it is addressed to.
func (s *Store) Dispatch(msg *wire.MessageBuffer) error {
	obj := s.objects[msg.Sender()]
	if obj == nil {
		return wire.UnknownSenderIDError{Msg: msg}
	}

	err := obj.Dispatch(msg)
	debug.Printf("%v", msg.Debug(obj))
	return err
}
