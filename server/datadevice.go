package wl

import (
	"fmt"

	"deedles.dev/nest/wire"
)

const (
	DataDeviceManagerInterface = "wl_data_device_manager"
	DataDeviceManagerVersion   = 1
)

const (
	DataSourceInterface = "wl_data_source"
	DataSourceVersion   = 1
)

const (
	DataDeviceInterface = "wl_data_device"
	DataDeviceVersion   = 1
)

// DataDeviceManagerListener handles the requests that a client makes
// of a wl_data_device_manager.
type DataDeviceManagerListener interface {
	CreateDataSource(source *DataSource)
	GetDataDevice(device *DataDevice, seat *Seat)
}

// DataDeviceManager is the server side of a wl_data_device_manager
// global, the entry point for clipboard and drag-and-drop.
type DataDeviceManager struct {
	Listener DataDeviceManagerListener

	id     uint32
	client *Client
}

func NewDataDeviceManager(client *Client) *DataDeviceManager {
	return &DataDeviceManager{client: client}
}

// BindDataDeviceManager creates the server-side object for a client's
// bind to the wl_data_device_manager global.
func BindDataDeviceManager(client *Client, id wire.NewID) *DataDeviceManager {
	ddm := NewDataDeviceManager(client)
	ddm.SetID(id.ID)
	client.Add(ddm)
	return ddm
}

func (ddm *DataDeviceManager) ID() uint32      { return ddm.id }
func (ddm *DataDeviceManager) SetID(id uint32) { ddm.id = id }
func (ddm *DataDeviceManager) Delete()         {}

func (ddm *DataDeviceManager) String() string {
	return fmt.Sprintf("%v@%v", DataDeviceManagerInterface, ddm.id)
}

func (ddm *DataDeviceManager) MethodName(op uint16) string {
	switch op {
	case 0:
		return "create_data_source"
	case 1:
		return "get_data_device"
	}
	return "unknown"
}

func (ddm *DataDeviceManager) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // create_data_source
		source := NewDataSource(ddm.client)
		source.SetID(msg.ReadUint())
		if err := msg.Err(); err != nil {
			return err
		}
		ddm.client.Add(source)
		if ddm.Listener != nil {
			ddm.Listener.CreateDataSource(source)
		}
		return nil

	case 1: // get_data_device
		device := NewDataDevice(ddm.client)
		device.SetID(msg.ReadUint())
		seat, _ := ddm.client.Get(msg.ReadUint()).(*Seat)
		if err := msg.Err(); err != nil {
			return err
		}
		ddm.client.Add(device)
		if ddm.Listener != nil {
			ddm.Listener.GetDataDevice(device, seat)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: DataDeviceManagerInterface, Type: "request", Op: msg.Op()}
}

// DataSourceListener handles the requests that a client makes of a
// wl_data_source.
type DataSourceListener interface {
	Offer(mimeType string)
	Destroy()
}

// DataSource is the server side of a wl_data_source.
type DataSource struct {
	Listener DataSourceListener

	id     uint32
	client *Client
}

func NewDataSource(client *Client) *DataSource {
	return &DataSource{client: client}
}

func (ds *DataSource) ID() uint32      { return ds.id }
func (ds *DataSource) SetID(id uint32) { ds.id = id }
func (ds *DataSource) Delete()         {}

func (ds *DataSource) String() string {
	return fmt.Sprintf("%v@%v", DataSourceInterface, ds.id)
}

func (ds *DataSource) MethodName(op uint16) string {
	switch op {
	case 0:
		return "offer"
	case 1:
		return "destroy"
	}
	return "unknown"
}

func (ds *DataSource) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // offer
		mimeType := msg.ReadString()
		if err := msg.Err(); err != nil {
			return err
		}
		if ds.Listener != nil {
			ds.Listener.Offer(mimeType)
		}
		return nil

	case 1: // destroy
		if err := msg.Err(); err != nil {
			return err
		}
		if ds.Listener != nil {
			ds.Listener.Destroy()
		}
		ds.client.Destroy(ds)
		return nil
	}

	return wire.UnknownOpError{Interface: DataSourceInterface, Type: "request", Op: msg.Op()}
}

// DataDeviceListener handles the requests that a client makes of a
// wl_data_device.
type DataDeviceListener interface {
	StartDrag(source *DataSource, origin *Surface, icon *Surface, serial uint32)
	SetSelection(source *DataSource, serial uint32)
}

// DataDevice is the server side of a wl_data_device.
type DataDevice struct {
	Listener DataDeviceListener

	id     uint32
	client *Client
}

func NewDataDevice(client *Client) *DataDevice {
	return &DataDevice{client: client}
}

func (dd *DataDevice) ID() uint32      { return dd.id }
func (dd *DataDevice) SetID(id uint32) { dd.id = id }
func (dd *DataDevice) Delete()         {}

func (dd *DataDevice) String() string {
	return fmt.Sprintf("%v@%v", DataDeviceInterface, dd.id)
}

func (dd *DataDevice) MethodName(op uint16) string {
	switch op {
	case 0:
		return "start_drag"
	case 1:
		return "set_selection"
	}
	return "unknown"
}

func (dd *DataDevice) Dispatch(msg *wire.MessageBuffer) error {
	switch msg.Op() {
	case 0: // start_drag
		source, _ := dd.client.Get(msg.ReadUint()).(*DataSource)
		origin, _ := dd.client.Get(msg.ReadUint()).(*Surface)
		icon, _ := dd.client.Get(msg.ReadUint()).(*Surface)
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if dd.Listener != nil {
			dd.Listener.StartDrag(source, origin, icon, serial)
		}
		return nil

	case 1: // set_selection
		source, _ := dd.client.Get(msg.ReadUint()).(*DataSource)
		serial := msg.ReadUint()
		if err := msg.Err(); err != nil {
			return err
		}
		if dd.Listener != nil {
			dd.Listener.SetSelection(source, serial)
		}
		return nil
	}

	return wire.UnknownOpError{Interface: DataDeviceInterface, Type: "request", Op: msg.Op()}
}
