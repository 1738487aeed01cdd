package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	SeatInterface = "wl_seat"
	SeatVersion   = 2
)

// SeatCapability is a bitmask of the input devices that a seat has.
type SeatCapability uint32

const (
	SeatCapabilityPointer  SeatCapability = 1 << 0
	SeatCapabilityKeyboard SeatCapability = 1 << 1
	SeatCapabilityTouch    SeatCapability = 1 << 2
)

// SeatListener handles the requests that a client makes of a wl_seat.
type SeatListener interface {
	GetPointer(pointer *Pointer)
	GetKeyboard(keyboard *Keyboard)
	GetTouch(touch *Touch)
}

// Seat is the server side of a wl_seat global. A server that has no
// input to offer still advertises one, with an empty capability set,
// because some clients refuse to start without it.
type Seat struct {
	Listener SeatListener

	id     uint32
	client *Client
}

func NewSeat(client *Client) *Seat {
	return &Seat{client: client}
}

// BindSeat creates the server-side object for a client's bind to the
// wl_seat global.
func BindSeat(client *Client, id wire.NewID) *Seat {
	seat := NewSeat(client)
	seat.SetID(id.ID)
	client.Add(seat)
	return seat
}

func (seat *Seat) ID() uint32      { return seat.id }
func (seat *Seat) SetID(id uint32) { seat.id = id }
func (seat *Seat) Delete()         {}

func (seat *Seat) String() string {
	return fmt.Sprintf("%v@%v", SeatInterface, seat.id)
}

func (seat *Seat) MethodName(op uint16) string {
	switch op {
	case 0:
		return "get_pointer"
	case 1:
		return "get_keyboard"
	case 2:
		return "get_touch"
	}
	return "unknown"
}

func (seat *Seat) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // get_pointer
		pointer := NewPointer(seat.client)
		pointer.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		seat.client.Add(pointer)
		if seat.Listener != nil {
			seat.Listener.GetPointer(pointer)
		}
		return nil

	case 1: // get_keyboard
		keyboard := NewKeyboard(seat.client)
		keyboard.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		seat.client.Add(keyboard)
		if seat.Listener != nil {
			seat.Listener.GetKeyboard(keyboard)
		}
		return nil

	case 2: // get_touch
		touch := NewTouch(seat.client)
		touch.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		seat.client.Add(touch)
		if seat.Listener != nil {
			seat.Listener.GetTouch(touch)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: SeatInterface, Type: "request", Op: msg.Op()}
}

// Capabilities tells the client which classes of input device the
// seat has.
func (seat *Seat) Capabilities(capabilities SeatCapability) {
	msg := wire.NewMessage(seat, 0)
	msg.Method = "capabilities"
	msg.Args = []any{capabilities}
	msg.WriteUint(uint32(capabilities))
	seat.client.Enqueue(msg)
}

// Name gives the seat a human-readable name.
func (seat *Seat) Name(name string) {
	msg := wire.NewMessage(seat, 1)
	msg.Method = "name"
	msg.Args = []any{name}
	msg.WriteString(name)
	seat.client.Enqueue(msg)
}

// Pointer is the server side of a wl_pointer. A seat with no pointer
// capability still answers get_pointer with one of these so that the
// client's object bookkeeping stays intact; it just never sends any
// events.
type Pointer struct {
	id     uint32
	client *Client
}

func NewPointer(client *Client) *Pointer {
	return &Pointer{client: client}
}

func (p *Pointer) ID() uint32      { return p.id }
func (p *Pointer) SetID(id uint32) { p.id = id }
func (p *Pointer) Delete()         {}

func (p *Pointer) String() string {
	return fmt.Sprintf("wl_pointer@%v", p.id)
}

func (p *Pointer) MethodName(op uint16) string {
	switch op {
	case 0:
		return "set_cursor"
	}
	return "unknown"
}

func (p *Pointer) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // set_cursor
		msg.ReadUint()
		msg.ReadUint()
		msg.ReadInt()
		msg.ReadInt()
		return msg.Err()
	}

	return wire.UnknownOpError{Interface: "wl_pointer", Type: "request", Op: msg.Op()}
}

// Keyboard is the server side of a wl_keyboard. Like Pointer, it
// exists only to keep clients that ask for one happy.
type Keyboard struct {
	id     uint32
	client *Client
}

func NewKeyboard(client *Client) *Keyboard {
	return &Keyboard{client: client}
}

func (k *Keyboard) ID() uint32      { return k.id }
func (k *Keyboard) SetID(id uint32) { k.id = id }
func (k *Keyboard) Delete()         {}

func (k *Keyboard) String() string {
	return fmt.Sprintf("wl_keyboard@%v", k.id)
}

func (k *Keyboard) MethodName(op uint16) string {
	return "unknown"
}

func (k *Keyboard) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_keyboard", Type: "request", Op: msg.Op()}
}

// Touch is the server side of a wl_touch. Like Pointer, it exists
// only to keep clients that ask for one happy.
type Touch struct {
	id     uint32
	client *Client
}

func NewTouch(client *Client) *Touch {
	return &Touch{client: client}
}

func (t *Touch) ID() uint32      { return t.id }
func (t *Touch) SetID(id uint32) { t.id = id }
func (t *Touch) Delete()         {}

func (t *Touch) String() string {
	return fmt.Sprintf("wl_touch@%v", t.id)
}

func (t *Touch) MethodName(op uint16) string {
	return "unknown"
}

func (t *Touch) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: "wl_touch", Type: "request", Op: msg.Op()}
}
