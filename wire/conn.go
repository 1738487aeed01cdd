package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"deedles.dev/nest/internal/set"
	adrgxdg "github.com/adrg/xdg"
	"golang.org/x/sys/unix"
)

// SocketPath determines the path to the Wayland Unix domain socket
// based on the contents of the $WAYLAND_DISPLAY environment variable.
// It does not attempt to determine if the value corresponds to an
// actual socket.
func SocketPath() string {
	v := os.Getenv("WAYLAND_DISPLAY")
	if v == "" {
		v = "wayland-0"
	}
	if filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(adrgxdg.RuntimeDir, v)
}

// NewSocketPath returns a path of the form wayland-N in the runtime
// directory whose name is not taken by an existing entry.
func NewSocketPath() (string, error) {
	dir := adrgxdg.RuntimeDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	taken := make(set.Set[string], len(entries))
	for _, ent := range entries {
		taken.Add(ent.Name())
	}

	for n := 0; ; n++ {
		name := fmt.Sprintf("wayland-%v", n)
		if !taken.Has(name) {
			return filepath.Join(dir, name), nil
		}
	}
}

// Conn represents a low-level Wayland connection. It is not generally
// used directly, instead being handled automatically by a client or
// server implementation.
type Conn struct {
	conn *net.UnixConn
}

// NewConn creates a new Conn that wraps c. After this is called, use
// the provided Close method to close c instead of calling its own
// Close method.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		conn: c,
	}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Dial opens a connection to the Wayland socket based on the current
// environment. It follows the procedure outlined at
// https://wayland-book.com/protocol-design/wire-protocol.html#transports
func Dial() (*Conn, error) {
	if v, ok := os.LookupEnv("WAYLAND_SOCKET"); ok {
		return dialInherited(v)
	}

	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return nil, err
	}
	return NewConn(c.(*net.UnixConn)), nil
}

// dialInherited adopts the already-connected socket that a parent
// process passed down in $WAYLAND_SOCKET.
func dialInherited(v string) (*Conn, error) {
	fd, err := strconv.ParseInt(v, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("parse WAYLAND_SOCKET fd: %w", err)
	}
	file := os.NewFile(uintptr(fd), "WAYLAND_SOCKET")
	defer file.Close()

	c, err := net.FileConn(file)
	if err != nil {
		return nil, fmt.Errorf("open WAYLAND_SOCKET connection: %w", err)
	}
	return NewConn(c.(*net.UnixConn)), nil
}

// Listen creates a Unix domain socket at the first unused path that
// NewSocketPath yields and listens on it. The socket is removed
// automatically when the listener is closed.
func Listen() (*net.UnixListener, error) {
	path, err := NewSocketPath()
	if err != nil {
		return nil, fmt.Errorf("find free socket path: %w", err)
	}
	return ListenAt(path)
}

// ListenAt creates a Unix domain socket at the given path and listens
// on it.
func ListenAt(path string) (*net.UnixListener, error) {
	return net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
}

// unixTee reads from c, but also reads out-of-band data
// simultaneously, writing it into oob.
type unixTee struct {
	c   *net.UnixConn
	oob io.Writer
}

func (t unixTee) Read(buf []byte) (int, error) {
	oob := make([]byte, unix.CmsgSpace(len(buf)))
	n, oobn, _, _, err := t.c.ReadMsgUnix(buf, oob)
	_, ooberr := t.oob.Write(oob[:oobn])
	return n, errors.Join(err, ooberr)
}
