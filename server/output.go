package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	OutputInterface = "wl_output"
	OutputVersion   = 2
)

// OutputSubpixel describes the subpixel layout of an output.
type OutputSubpixel int32

const (
	OutputSubpixelUnknown       OutputSubpixel = 0
	OutputSubpixelNone          OutputSubpixel = 1
	OutputSubpixelHorizontalRgb OutputSubpixel = 2
	OutputSubpixelHorizontalBgr OutputSubpixel = 3
	OutputSubpixelVerticalRgb   OutputSubpixel = 4
	OutputSubpixelVerticalBgr   OutputSubpixel = 5
)

// OutputTransform describes a rotation and/or flip applied between
// buffer contents and an output.
type OutputTransform int32

const (
	OutputTransformNormal     OutputTransform = 0
	OutputTransform90         OutputTransform = 1
	OutputTransform180        OutputTransform = 2
	OutputTransform270        OutputTransform = 3
	OutputTransformFlipped    OutputTransform = 4
	OutputTransformFlipped90  OutputTransform = 5
	OutputTransformFlipped180 OutputTransform = 6
	OutputTransformFlipped270 OutputTransform = 7
)

// OutputMode is a bitmask qualifying a mode event.
type OutputMode uint32

const (
	OutputModeCurrent   OutputMode = 1 << 0
	OutputModePreferred OutputMode = 1 << 1
)

// Output is the server side of a wl_output global. At the version
// served here it has no requests; the server just describes the
// output with events after the client binds.
type Output struct {
	id     uint32
	client *Client
}

func NewOutput(client *Client) *Output {
	return &Output{client: client}
}

// BindOutput creates the server-side object for a client's bind to a
// wl_output global.
func BindOutput(client *Client, id wire.NewID) *Output {
	output := NewOutput(client)
	output.SetID(id.ID)
	client.Add(output)
	return output
}

func (o *Output) ID() uint32      { return o.id }
func (o *Output) SetID(id uint32) { o.id = id }
func (o *Output) Delete()         {}

func (o *Output) String() string {
	return fmt.Sprintf("%v@%v", OutputInterface, o.id)
}

func (o *Output) MethodName(op uint16) string {
	return "unknown"
}

func (o *Output) Dispatch(msg *wire.MessageBuffer) error {
	return wire.UnknownOpError{Interface: OutputInterface, Type: "request", Op: msg.Op()}
}

// Geometry describes the physical properties and position of the
// output.
func (o *Output) Geometry(x, y, physicalWidth, physicalHeight int32, subpixel OutputSubpixel, make, model string, transform OutputTransform) {
	msg := wire.NewMessage(o, 0)
	msg.Method = "geometry"
	msg.Args = []any{x, y, physicalWidth, physicalHeight, subpixel, make, model, transform}
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(physicalWidth)
	msg.WriteInt(physicalHeight)
	msg.WriteInt(int32(subpixel))
	msg.WriteString(make)
	msg.WriteString(model)
	msg.WriteInt(int32(transform))
	o.client.Enqueue(msg)
}

// Mode describes a display mode of the output, in physical pixels.
func (o *Output) Mode(flags OutputMode, width, height, refresh int32) {
	msg := wire.NewMessage(o, 1)
	msg.Method = "mode"
	msg.Args = []any{flags, width, height, refresh}
	msg.WriteUint(uint32(flags))
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(refresh)
	o.client.Enqueue(msg)
}

// Done marks the end of a burst of output property events. The client
// should apply everything it heard since the last done atomically.
func (o *Output) Done() {
	msg := wire.NewMessage(o, 2)
	msg.Method = "done"
	o.client.Enqueue(msg)
}

// Scale advertises the output's integer scale factor.
func (o *Output) Scale(factor int32) {
	msg := wire.NewMessage(o, 3)
	msg.Method = "scale"
	msg.Args = []any{factor}
	msg.WriteInt(factor)
	o.client.Enqueue(msg)
}
