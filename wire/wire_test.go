package wire

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	adrgxdg "github.com/adrg/xdg"
)

type testObject struct {
	id uint32
}

func (o *testObject) ID() uint32                        { return o.id }
func (o *testObject) SetID(id uint32)                   { o.id = id }
func (o *testObject) Delete()                           {}
func (o *testObject) MethodName(op uint16) string       { return "test" }
func (o *testObject) Dispatch(msg *MessageBuffer) error { return nil }

func testConnPair(t *testing.T) (client, server *Conn) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wire-test")
	lis, err := ListenAt(path)
	if err != nil {
		t.Fatalf("listen at %v: %v", path, err)
	}
	defer lis.Close()

	type accepted struct {
		c   *net.UnixConn
		err error
	}
	ch := make(chan accepted, 1)
	go func() {
		c, err := lis.AcceptUnix()
		ch <- accepted{c, err}
	}()

	dc, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial %v: %v", path, err)
	}

	a := <-ch
	if a.err != nil {
		t.Fatalf("accept: %v", a.err)
	}

	client = NewConn(dc.(*net.UnixConn))
	server = NewConn(a.c)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestMessageRoundTrip(t *testing.T) {
	client, server := testConnPair(t)

	mb := NewMessage(&testObject{id: 3}, 7)
	mb.WriteInt(-42)
	mb.WriteUint(99)
	mb.WriteString("hello")
	mb.WriteArray([]byte{1, 2, 3})
	mb.WriteFixed(FixedInt(5))
	mb.WriteNewID(NewID{Interface: "wl_compositor", Version: 4, ID: 12})
	if err := mb.Build(client); err != nil {
		t.Fatalf("build: %v", err)
	}

	msg, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if msg.Sender() != 3 {
		t.Fatalf("sender = %v, want 3", msg.Sender())
	}
	if msg.Op() != 7 {
		t.Fatalf("op = %v, want 7", msg.Op())
	}
	// 8 header + 4 int + 4 uint + 12 string + 8 array + 4 fixed
	// + 28 new_id, strings and arrays padded to 32 bits.
	if msg.Size() != 68 {
		t.Fatalf("size = %v, want 68", msg.Size())
	}

	if v := msg.ReadInt(); v != -42 {
		t.Fatalf("int = %v, want -42", v)
	}
	if v := msg.ReadUint(); v != 99 {
		t.Fatalf("uint = %v, want 99", v)
	}
	if v := msg.ReadString(); v != "hello" {
		t.Fatalf("string = %q, want %q", v, "hello")
	}
	if v := msg.ReadArray(); !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Fatalf("array = %v, want [1 2 3]", v)
	}
	if v := msg.ReadFixed(); v.Int() != 5 {
		t.Fatalf("fixed = %v, want 5", v)
	}
	want := NewID{Interface: "wl_compositor", Version: 4, ID: 12}
	if id := msg.ReadNewID(); id != want {
		t.Fatalf("new_id = %+v, want %+v", id, want)
	}
	if err := msg.Err(); err != nil {
		t.Fatalf("message error: %v", err)
	}
}

func TestMessageEmptyString(t *testing.T) {
	client, server := testConnPair(t)

	mb := NewMessage(&testObject{id: 1}, 0)
	mb.WriteString("")
	mb.WriteUint(7)
	if err := mb.Build(client); err != nil {
		t.Fatalf("build: %v", err)
	}

	msg, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if v := msg.ReadString(); v != "" {
		t.Fatalf("string = %q, want empty", v)
	}
	if v := msg.ReadUint(); v != 7 {
		t.Fatalf("uint after empty string = %v, want 7", v)
	}
	if err := msg.Err(); err != nil {
		t.Fatalf("message error: %v", err)
	}
}

func TestMessageFile(t *testing.T) {
	client, server := testConnPair(t)

	file, err := os.CreateTemp(t.TempDir(), "fd-*")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString("fd contents"); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	mb := NewMessage(&testObject{id: 1}, 0)
	mb.WriteUint(1)
	mb.WriteFile(file)
	if err := mb.Build(client); err != nil {
		t.Fatalf("build: %v", err)
	}

	msg, err := ReadMessage(server)
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	msg.ReadUint()
	got := msg.ReadFile()
	if got == nil {
		t.Fatalf("no file descriptor received: %v", msg.Err())
	}
	defer got.Close()

	if _, err := got.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek received file: %v", err)
	}
	data, err := io.ReadAll(got)
	if err != nil {
		t.Fatalf("read received file: %v", err)
	}
	if string(data) != "fd contents" {
		t.Fatalf("received file contents = %q, want %q", data, "fd contents")
	}
}

func TestPadding(t *testing.T) {
	want := map[uint32]uint32{0: 0, 1: 3, 2: 2, 3: 1, 4: 0, 5: 3, 8: 0}
	for size, pad := range want {
		if got := padding(size); got != pad {
			t.Errorf("padding(%v) = %v, want %v", size, got, pad)
		}
	}
}

func TestSocketPath(t *testing.T) {
	t.Setenv("WAYLAND_DISPLAY", "/tmp/abs-sock")
	if got := SocketPath(); got != "/tmp/abs-sock" {
		t.Fatalf("SocketPath = %q, want /tmp/abs-sock", got)
	}

	t.Setenv("WAYLAND_DISPLAY", "wayland-5")
	want := filepath.Join(adrgxdg.RuntimeDir, "wayland-5")
	if got := SocketPath(); got != want {
		t.Fatalf("SocketPath = %q, want %q", got, want)
	}
}

func TestFixed(t *testing.T) {
	if got := FixedInt(7).Int(); got != 7 {
		t.Fatalf("FixedInt(7).Int() = %v", got)
	}
	if got := FixedInt(-3).Int(); got != -3 {
		t.Fatalf("FixedInt(-3).Int() = %v", got)
	}

	f := FixedFloat(2.5)
	if f.Int() != 2 {
		t.Fatalf("FixedFloat(2.5).Int() = %v, want 2", f.Int())
	}
	if f.Float() != 2.5 {
		t.Fatalf("FixedFloat(2.5).Float() = %v, want 2.5", f.Float())
	}

	if got := FixedInt(4).String(); got != "4" {
		t.Fatalf("FixedInt(4).String() = %q, want 4", got)
	}
}
