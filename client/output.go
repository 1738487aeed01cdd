package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	OutputInterface = "wl_output"
	OutputVersion   = 2
)

// OutputSubpixel describes the physical arrangement of subpixels on
// an output.
type OutputSubpixel uint32

const (
	OutputSubpixelUnknown OutputSubpixel = iota
	OutputSubpixelNone
	OutputSubpixelHorizontalRGB
	OutputSubpixelHorizontalBGR
	OutputSubpixelVerticalRGB
	OutputSubpixelVerticalBGR
)

// OutputTransform describes a rotation and/or flip to apply to buffer
// contents.
type OutputTransform int32

const (
	OutputTransformNormal OutputTransform = iota
	OutputTransform90
	OutputTransform180
	OutputTransform270
	OutputTransformFlipped
	OutputTransformFlipped90
	OutputTransformFlipped180
	OutputTransformFlipped270
)

// OutputMode is a bitfield describing a mode announcement.
type OutputMode uint32

const (
	OutputModeCurrent   OutputMode = 1 << iota
	OutputModePreferred
)

// OutputListener handles the events that the server sends on a
// wl_output. The server sends the full state followed by Done, and
// again after any change.
type OutputListener interface {
	Geometry(x, y, physicalWidth, physicalHeight int32, subpixel OutputSubpixel, make, model string, transform OutputTransform)
	Mode(flags OutputMode, width, height, refresh int32)
	Done()
	Scale(factor int32)
}

// Output is a client-side wl_output proxy.
type Output struct {
	Listener OutputListener

	id     uint32
	client *Client
}

// BindOutput binds the named global as a wl_output.
func BindOutput(client *Client, registry *Registry, name, version uint32) *Output {
	o := Output{client: client}
	client.Add(&o)
	registry.Bind(name, wire.NewID{
		Interface: OutputInterface,
		Version:   min(version, OutputVersion),
		ID:        o.id,
	})
	return &o
}

func (o *Output) ID() uint32      { return o.id }
func (o *Output) SetID(id uint32) { o.id = id }
func (o *Output) Delete()         {}

func (o *Output) String() string {
	return fmt.Sprintf("%v@%v", OutputInterface, o.id)
}

func (o *Output) MethodName(op uint16) string {
	switch op {
	case 0:
		return "geometry"
	case 1:
		return "mode"
	case 2:
		return "done"
	case 3:
		return "scale"
	}
	return "unknown"
}

func (o *Output) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // geometry
		x := msg.ReadInt()
		y := msg.ReadInt()
		physicalWidth := msg.ReadInt()
		physicalHeight := msg.ReadInt()
		subpixel := OutputSubpixel(msg.ReadInt())
		mk := msg.ReadString()
		model := msg.ReadString()
		transform := OutputTransform(msg.ReadInt())
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Geometry(x, y, physicalWidth, physicalHeight, subpixel, mk, model, transform)
		}
		return nil

	case 1: // mode
		flags := OutputMode(msg.ReadUint())
		width := msg.ReadInt()
		height := msg.ReadInt()
		refresh := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Mode(flags, width, height, refresh)
		}
		return nil

	case 2: // done
		if o.Listener != nil {
			o.Listener.Done()
		}
		return nil

	case 3: // scale
		factor := msg.ReadInt()
		if err := msg.Err(); err != nil {
			return err
		}
		if o.Listener != nil {
			o.Listener.Scale(factor)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: OutputInterface, Type: "event", Op: msg.Op()}
}
