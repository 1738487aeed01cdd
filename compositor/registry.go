package compositor

import (
	"slices"

	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// Registry tracks every window the compositor knows about, keyed by
// identity and iterated in creation order. Windows that die during
// dispatch stay in the registry, marked dead, until the next reap.
type Registry struct {
	handles map[uint64]*Handle
	order   []*Handle
}

func newRegistry() *Registry {
	return &Registry{handles: make(map[uint64]*Handle)}
}

func (r *Registry) insert(h *Handle) error {
	if prev, ok := r.handles[h.id]; ok {
		logrus.WithFields(logrus.Fields{
			"identity": h.id,
			"existing": prev.title,
		}).Errorln("Window identity collision")
		h.destroyMark()
		h.destroy()
		return ErrRegistryCollision
	}

	r.handles[h.id] = h
	r.order = append(r.order, h)
	return nil
}

// Lookup returns the handle with the given identity, or nil if it is
// unknown or already reaped. A nil result is normal for events that
// raced with a window's death.
func (r *Registry) Lookup(id uint64) *Handle {
	return r.handles[id]
}

// Handles returns a snapshot of all registered windows in creation
// order, dead ones included.
func (r *Registry) Handles() []*Handle {
	return slices.Clone(r.order)
}

// Alive returns a snapshot of the windows that have not been marked
// dead, in creation order.
func (r *Registry) Alive() []*Handle {
	return sliceutils.Filter(r.order, func(h *Handle) bool { return h.alive })
}

func (r *Registry) Len() int {
	return len(r.handles)
}

// reap destroys and removes every window that has been marked dead.
// It runs once per tick, after dispatch, so it never overlaps with a
// handler that might still be holding one of the corpses.
func (r *Registry) reap() {
	dead := sliceutils.Filter(r.order, func(h *Handle) bool { return !h.alive })
	if len(dead) == 0 {
		return
	}

	for _, h := range dead {
		h.destroy()
		delete(r.handles, h.id)
		logrus.WithField("window", h.id).Debugln("Window reaped")
	}
	r.order = sliceutils.Filter(r.order, func(h *Handle) bool { return h.alive })
}

func (r *Registry) clear() {
	r.handles = make(map[uint64]*Handle)
	r.order = nil
}
