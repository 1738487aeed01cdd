package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"deedles.dev/nest/internal/bin"
	"golang.org/x/sys/unix"
)

// MessageBuffer is a single message as it came off the socket: the
// header, the undecoded argument bytes, and any file descriptors that
// rode along in the control data.
//
// The Read methods decode arguments in protocol order. They latch the
// first failure, so a dispatch function can read a whole signature
// and check Err once at the end.
type MessageBuffer struct {
	sender  uint32
	op      uint16
	size    uint16
	data    bytes.Reader
	fds     []int
	fdindex int
	err     error
	args    []any
}

// ReadMessage reads the next message from c. File descriptors are
// collected from the control data that arrives interleaved with the
// message bytes.
func ReadMessage(c *Conn) (*MessageBuffer, error) {
	var mr MessageBuffer

	var oob bytes.Buffer
	r := unixTee{c: c.conn, oob: &oob}

	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read message header: %w", err)
	}
	mr.sender = bin.Value[uint32]([4]byte(header[:4]))
	sizeOp := bin.Value[uint32]([4]byte(header[4:]))
	mr.size = uint16(sizeOp >> 16)
	mr.op = uint16(sizeOp & 0xFFFF)

	body := bytes.NewBuffer(make([]byte, 0, mr.size))
	if _, err := io.CopyN(body, r, int64(mr.size)-8); err != nil {
		return nil, fmt.Errorf("read message body: %w", err)
	}

	cmsgs, err := unix.ParseSocketControlMessage(oob.Bytes())
	if err != nil {
		return nil, fmt.Errorf("parse control messages: %w", err)
	}
	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				// Not an SCM_RIGHTS message.
				continue
			}
			return nil, fmt.Errorf("parse rights message: %w", err)
		}
		mr.fds = append(mr.fds, fds...)
	}

	mr.data.Reset(body.Bytes())

	return &mr, nil
}

// Sender is the ID of the object the message is addressed to.
func (r MessageBuffer) Sender() uint32 {
	return r.sender
}

// Op is the message's opcode.
func (r MessageBuffer) Op() uint16 {
	return r.op
}

// Size is the total size of the message, 8-byte header included.
func (r MessageBuffer) Size() uint16 {
	return r.size
}

// Err returns the first decoding failure, if any. Reading exactly to
// the end of the message is not a failure; reading past it is.
func (r MessageBuffer) Err() error {
	if errors.Is(r.err, io.EOF) {
		if r.data.Size() < int64(r.size)-8 {
			return io.ErrUnexpectedEOF
		}
		return nil
	}
	return r.err
}

// readScalar decodes one 32-bit argument of any of the scalar wire
// types.
func readScalar[T ~int32 | ~uint32](r *MessageBuffer) (v T) {
	if r.err != nil {
		return v
	}

	v, r.err = bin.Read[T](&r.data)
	r.args = append(r.args, v)
	return v
}

func (r *MessageBuffer) ReadInt() int32 {
	return readScalar[int32](r)
}

func (r *MessageBuffer) ReadUint() uint32 {
	return readScalar[uint32](r)
}

func (r *MessageBuffer) ReadFixed() Fixed {
	return readScalar[Fixed](r)
}

// ReadNewID decodes the interface name, version, ID triple of an
// untyped new_id argument, as found in wl_registry.bind.
func (r *MessageBuffer) ReadNewID() NewID {
	return NewID{
		Interface: r.ReadString(),
		Version:   r.ReadUint(),
		ID:        r.ReadUint(),
	}
}

func (r *MessageBuffer) ReadString() string {
	raw := r.readBlock()
	if r.err != nil {
		return ""
	}
	if len(raw) == 0 || raw[len(raw)-1] != 0 {
		r.err = errors.New("string argument is not null-terminated")
		return ""
	}

	v := string(raw[:len(raw)-1])
	r.args = append(r.args, v)
	return v
}

func (r *MessageBuffer) ReadArray() []byte {
	v := r.readBlock()
	if r.err != nil {
		return nil
	}

	r.args = append(r.args, v)
	return v
}

// readBlock decodes a length-prefixed run of bytes and skips the
// padding that aligns it to 32 bits.
func (r *MessageBuffer) readBlock() []byte {
	if r.err != nil {
		return nil
	}

	var length uint32
	length, r.err = bin.Read[uint32](&r.data)
	if r.err != nil {
		return nil
	}

	buf := make([]byte, length+padding(length))
	if _, r.err = io.ReadFull(&r.data, buf); r.err != nil {
		return nil
	}
	return buf[:length]
}

// ReadFile takes ownership of the next file descriptor attached to
// the message.
func (r *MessageBuffer) ReadFile() *os.File {
	if r.err != nil {
		return nil
	}

	if r.fdindex >= len(r.fds) {
		r.err = errors.New("no more file descriptors")
		return nil
	}

	f := os.NewFile(uintptr(r.fds[r.fdindex]), "")
	r.fdindex++
	r.args = append(r.args, f)
	return f
}

// Debug formats the decoded-so-far message as a method call on
// sender, for wire traces.
func (r *MessageBuffer) Debug(sender Object) string {
	return fmt.Sprintf("%v.%v(%v)", sender, sender.MethodName(r.op), formatArgs(r.args))
}

// formatArgs renders a message's argument values for wire traces.
func formatArgs(args []any) string {
	s := make([]string, 0, len(args))
	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			s = append(s, strconv.Quote(arg))
		case *os.File:
			s = append(s, fmt.Sprint(arg.Fd()))
		default:
			s = append(s, fmt.Sprint(arg))
		}
	}
	return strings.Join(s, ", ")
}
