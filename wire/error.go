package wire

import (
	"fmt"
)

// UnknownOpError is returned by Object.Dispatch when a message
// carries an opcode that the object's interface does not define.
type UnknownOpError struct {
	Interface string
	Type      string
	Op        uint16
}

func (err UnknownOpError) Error() string {
	return fmt.Sprintf("unknown %v opcode for %v: %v", err.Type, err.Interface, err.Op)
}

// UnknownSenderIDError is returned when an incoming message is
// addressed to an object ID that the connection's object store has no
// entry for.
type UnknownSenderIDError struct {
	Msg *MessageBuffer
}

func (err UnknownSenderIDError) Error() string {
	return fmt.Sprintf("unknown sender object ID: %v", err.Msg.Sender())
}
