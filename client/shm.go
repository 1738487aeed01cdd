package wl

import (
	"fmt"
	"os"
	"slices"

	"deedles.dev/nest/wire"
)

const (
	ShmInterface = "wl_shm"
	ShmVersion   = 1
)

// ShmFormat is a pixel format for shared memory buffers. The
// supported subset is little-endian and 32 bits per pixel.
type ShmFormat uint32

const (
	ShmFormatArgb8888 ShmFormat = 0
	ShmFormatXrgb8888 ShmFormat = 1
	ShmFormatAbgr8888 ShmFormat = 0x34324241
	ShmFormatXbgr8888 ShmFormat = 0x34324258
)

func (format ShmFormat) String() string {
	switch format {
	case ShmFormatArgb8888:
		return "ARGB8888"
	case ShmFormatXrgb8888:
		return "XRGB8888"
	case ShmFormatAbgr8888:
		return "ABGR8888"
	case ShmFormatXbgr8888:
		return "XBGR8888"
	}
	return fmt.Sprintf("0x%x", uint32(format))
}

// ShmListener handles the events that the server sends on a wl_shm.
type ShmListener interface {
	Format(format ShmFormat)
}

// Shm is a client-side wl_shm proxy. It remembers the formats that
// the server advertises.
type Shm struct {
	Listener ShmListener

	id      uint32
	client  *Client
	formats []ShmFormat
}

// BindShm binds the named global as a wl_shm.
func BindShm(client *Client, registry *Registry, name, version uint32) *Shm {
	s := Shm{client: client}
	client.Add(&s)
	registry.Bind(name, wire.NewID{
		Interface: ShmInterface,
		Version:   min(version, ShmVersion),
		ID:        s.id,
	})
	return &s
}

// Formats returns the formats that the server has advertised so far.
func (s *Shm) Formats() []ShmFormat {
	return slices.Clone(s.formats)
}

// Supports reports whether the server has advertised support for
// format.
func (s *Shm) Supports(format ShmFormat) bool {
	return slices.Contains(s.formats, format)
}

func (s *Shm) ID() uint32      { return s.id }
func (s *Shm) SetID(id uint32) { s.id = id }
func (s *Shm) Delete()         {}

func (s *Shm) String() string {
	return fmt.Sprintf("%v@%v", ShmInterface, s.id)
}

func (s *Shm) MethodName(op uint16) string {
	switch op {
	case 0:
		return "format"
	}
	return "unknown"
}

func (s *Shm) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // format
		format := ShmFormat(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		s.formats = append(s.formats, format)
		if s.Listener != nil {
			s.Listener.Format(format)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: ShmInterface, Type: "event", Op: msg.Op()}
}

// CreatePool shares file with the server as a buffer pool. size is
// the number of bytes of the file that the server may map.
func (s *Shm) CreatePool(file *os.File, size int32) *ShmPool {
	pool := ShmPool{client: s.client}
	s.client.Add(&pool)

	msg := wire.NewMessage(s, 0)
	msg.Method = "create_pool"
	msg.Args = []any{&pool, file, size}
	msg.WriteUint(pool.id)
	msg.WriteFile(file)
	msg.WriteInt(size)
	s.client.Enqueue(msg)

	return &pool
}
