package wl

import (
	"fmt"
	"strings"

	"deedles.dev/nest/wire"
)

const (
	SeatInterface = "wl_seat"
	SeatVersion   = 2
)

// SeatCapability is a bitfield of the input device classes that a
// seat provides.
type SeatCapability uint32

const (
	SeatCapabilityPointer  SeatCapability = 1 << iota
	SeatCapabilityKeyboard
	SeatCapabilityTouch
)

func (caps SeatCapability) String() string {
	var parts []string
	if caps&SeatCapabilityPointer != 0 {
		parts = append(parts, "pointer")
	}
	if caps&SeatCapabilityKeyboard != 0 {
		parts = append(parts, "keyboard")
	}
	if caps&SeatCapabilityTouch != 0 {
		parts = append(parts, "touch")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// SeatListener handles the events that the server sends on a wl_seat.
type SeatListener interface {
	Capabilities(caps SeatCapability)
	Name(name string)
}

// Seat is a client-side wl_seat proxy.
type Seat struct {
	Listener SeatListener

	id     uint32
	client *Client
}

// BindSeat binds the named global as a wl_seat.
func BindSeat(client *Client, registry *Registry, name, version uint32) *Seat {
	s := Seat{client: client}
	client.Add(&s)
	registry.Bind(name, wire.NewID{
		Interface: SeatInterface,
		Version:   min(version, SeatVersion),
		ID:        s.id,
	})
	return &s
}

func (s *Seat) ID() uint32      { return s.id }
func (s *Seat) SetID(id uint32) { s.id = id }
func (s *Seat) Delete()         {}

func (s *Seat) String() string {
	return fmt.Sprintf("%v@%v", SeatInterface, s.id)
}

func (s *Seat) MethodName(op uint16) string {
	switch op {
	case 0:
		return "capabilities"
	case 1:
		return "name"
	}
	return "unknown"
}

func (s *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // capabilities
		caps := SeatCapability(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Capabilities(caps)
		}
		return nil

	case 1: // name
		name := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if s.Listener != nil {
			s.Listener.Name(name)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SeatInterface, Type: "event", Op: msg.Op()}
}
