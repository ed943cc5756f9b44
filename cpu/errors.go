package cpu

import (
	"errors"
	"fmt"
)

// ErrFatalDecode is wrapped by every DecodeError. Emulation cannot continue
// past one.
var ErrFatalDecode = errors.New("cpu: fatal decode error")

type DecodeError struct {
	Opcode uint8
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: illegal opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

func (e *DecodeError) Unwrap() error {
	return ErrFatalDecode
}
