package wire

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"deedles.dev/nest/internal/bin"
	"golang.org/x/sys/unix"
)

// MessageBuilder accumulates the arguments of an outgoing message and
// frames it onto a connection. The Write methods latch the first
// failure; Build reports it.
//
// A builder carries a single message. After Build it must not be
// reused.
type MessageBuilder struct {
	// Method is the protocol name of the method being called. It is
	// only used for debug output.
	Method string

	// Args holds the original argument values, again only for debug
	// output. It has no effect on the encoded message.
	Args []any

	sender Object
	op     uint16
	data   bytes.Buffer
	fds    []int
	err    error
}

// NewMessage starts a message from sender with the given opcode.
func NewMessage(sender Object, op uint16) *MessageBuilder {
	return &MessageBuilder{
		sender: sender,
		op:     op,
	}
}

// Sender is the object the message will be sent from.
func (mb *MessageBuilder) Sender() Object {
	return mb.sender
}

// Op is the message's opcode.
func (mb *MessageBuilder) Op() uint16 {
	return mb.op
}

// writeScalar encodes one 32-bit argument of any of the scalar wire
// types.
func writeScalar[T ~int32 | ~uint32](mb *MessageBuilder, v T) {
	if mb.err != nil {
		return
	}

	mb.err = bin.Write(&mb.data, v)
}

func (mb *MessageBuilder) WriteInt(v int32) {
	writeScalar(mb, v)
}

func (mb *MessageBuilder) WriteUint(v uint32) {
	writeScalar(mb, v)
}

func (mb *MessageBuilder) WriteFixed(v Fixed) {
	writeScalar(mb, v)
}

// WriteObject encodes v's object ID, or 0 if v is nil. An interface
// holding a typed nil pointer counts as nil.
func (mb *MessageBuilder) WriteObject(v Object) {
	if isNil(v) {
		mb.WriteUint(0)
		return
	}
	mb.WriteUint(v.ID())
}

// WriteNewID encodes the interface name, version, ID triple of an
// untyped new_id argument.
func (mb *MessageBuilder) WriteNewID(v NewID) {
	mb.WriteString(v.Interface)
	mb.WriteUint(v.Version)
	mb.WriteUint(v.ID)
}

// WriteString encodes v with the null terminator that the wire format
// requires.
func (mb *MessageBuilder) WriteString(v string) {
	mb.writeBlock(append([]byte(v), 0))
}

func (mb *MessageBuilder) WriteArray(v []byte) {
	mb.writeBlock(v)
}

// writeBlock encodes a length-prefixed run of bytes plus the zero
// padding that aligns it to 32 bits.
func (mb *MessageBuilder) writeBlock(v []byte) {
	if mb.err != nil {
		return
	}

	bin.Write(&mb.data, uint32(len(v)))
	mb.data.Write(v)
	var zeros [3]byte
	mb.data.Write(zeros[:padding(uint32(len(v)))])
}

// WriteFile attaches v's file descriptor to the message. The
// descriptor is duplicated immediately, so the caller is free to
// close v as soon as WriteFile returns. The duplicate is closed when
// the builder is garbage collected.
func (mb *MessageBuilder) WriteFile(v *os.File) {
	if mb.err != nil {
		return
	}

	fd, err := unix.Dup(int(v.Fd()))
	if err != nil {
		mb.err = fmt.Errorf("dup file descriptor: %w", err)
		return
	}

	if len(mb.fds) == 0 {
		runtime.SetFinalizer(mb, (*MessageBuilder).close)
	}
	mb.fds = append(mb.fds, fd)
}

// Build frames the message and sends it to c, along with any attached
// file descriptors.
func (mb *MessageBuilder) Build(c *Conn) error {
	if mb.err != nil {
		return mb.err
	}

	size := uint32(8 + mb.data.Len())
	msg := make([]byte, 0, size)
	word := bin.Bytes(mb.sender.ID())
	msg = append(msg, word[:]...)
	word = bin.Bytes((size << 16) | uint32(mb.op))
	msg = append(msg, word[:]...)
	msg = append(msg, mb.data.Bytes()...)

	oob := unix.UnixRights(mb.fds...)
	_, _, mb.err = c.conn.WriteMsgUnix(msg, oob, nil)
	return mb.err
}

// close releases the duplicated file descriptors.
func (mb *MessageBuilder) close() {
	var errs []error
	for _, fd := range mb.fds {
		errs = append(errs, unix.Close(fd))
	}
	mb.fds = nil
	if mb.err == nil {
		mb.err = errors.Join(errs...)
	}
	runtime.SetFinalizer(mb, nil)
}

// String formats the message as a method call on its sender, for wire
// traces.
func (mb *MessageBuilder) String() string {
	return fmt.Sprintf("%v.%v(%v)", mb.sender, mb.Method, formatArgs(mb.Args))
}

// isNil reports whether v is nil, treating an interface that holds a
// typed nil pointer as nil.
func isNil(v any) bool {
	return (v == nil) || ((*[2]uintptr)(unsafe.Pointer(&v))[1] == 0)
}
