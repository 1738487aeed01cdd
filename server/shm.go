package wl

import (
	"fmt"
	"os"

	"deedles.dev/nest/wire"
)

const (
	ShmInterface = "wl_shm"
	ShmVersion   = 1
)

// ShmError is a protocol error code for misuse of wl_shm.
type ShmError uint32

const (
	ShmErrorInvalidFormat ShmError = 0
	ShmErrorInvalidStride ShmError = 1
	ShmErrorInvalidFd     ShmError = 2
)

// ShmFormat is a pixel format, as advertised by wl_shm format events.
// The values are drm fourcc codes, except for the two mandatory
// formats which predate that convention and are 0 and 1.
type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
	ShmFormatAbgr8888 ShmFormat = 0x34324241
	ShmFormatXbgr8888 ShmFormat = 0x34324258
)

func (f ShmFormat) String() string {
	switch f {
	case ShmFormatArgb8888:
		return "argb8888"
	case ShmFormatXrgb8888:
		return "xrgb8888"
	case ShmFormatAbgr8888:
		return "abgr8888"
	case ShmFormatXbgr8888:
		return "xbgr8888"
	}
	return fmt.Sprintf("0x%08x", uint32(f))
}

// ShmListener handles the requests that a client makes of a wl_shm.
type ShmListener interface {
	// CreatePool is called with a newly created pool and the file
	// that backs it. The handler owns the file and is responsible for
	// closing it.
	CreatePool(pool *ShmPool, file *os.File, size int32)
}

// Shm is the server side of a wl_shm global.
type Shm struct {
	Listener ShmListener

	id     uint32
	client *Client
}

func NewShm(client *Client) *Shm {
	return &Shm{client: client}
}

// BindShm creates the server-side object for a client's bind to the
// wl_shm global.
func BindShm(client *Client, id wire.NewID) *Shm {
	shm := NewShm(client)
	shm.SetID(id.ID)
	client.Add(shm)
	return shm
}

func (shm *Shm) ID() uint32      { return shm.id }
func (shm *Shm) SetID(id uint32) { shm.id = id }
func (shm *Shm) Delete()         {}

func (shm *Shm) String() string {
	return fmt.Sprintf("%v@%v", ShmInterface, shm.id)
}

func (shm *Shm) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_pool"
	}
	return "unknown"
}

func (shm *Shm) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_pool
		pool := NewShmPool(shm.client)
		pool.SetID(msg.ReadUint())
		file := msg.ReadFile()
		size := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		shm.client.Add(pool)
		if shm.Listener != nil {
			shm.Listener.CreatePool(pool, file, size)
			return nil
		}
		return file.Close()
	}

	return wire.UnknownOpError{Interface: ShmInterface, Type: "request", Op: msg.Op()}
}

// Format advertises a pixel format that buffers may be created with.
// The two mandatory formats are ShmFormatArgb8888 and
// ShmFormatXrgb8888.
func (shm *Shm) Format(format ShmFormat) {
	msg := wire.NewMessage(shm, 0)
	msg.Method = "format"
	msg.Args = []any{format}
	msg.WriteUint(uint32(format))
	shm.client.Enqueue(msg)
}
