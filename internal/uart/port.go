// internal/uart/port.go

// Package uart describes the generic 16550A UART driver this module hands
// discovered ports to.
package uart

import "errors"

// ErrNoLine is returned when the driver has no free line for a port.
var ErrNoLine = errors.New("uart: no free line")

// IOType is the register addressing mode of a port.
type IOType uint8

// IOPort is x86 port I/O (UPIO_PORT), the only mode these chips use.
const IOPort IOType = 0

// Type is the UART compatibility level, numbered like the kernel's PORT_*.
type Type int

const (
	TypeUnknown Type = 0
	Type16550A  Type = 4
)

// Line identifies a registered port.
type Line int

// Parity of a serial line: "N", "E" or "O".
type Parity string

const (
	ParityNone Parity = "N"
	ParityEven Parity = "E"
	ParityOdd  Parity = "O"
)

// LineSettings are the negotiated line parameters of a port.
type LineSettings struct {
	Baud     uint32
	DataBits uint8
	StopBits uint8
	Parity   Parity
}

// TermiosFunc is called whenever the line settings of p change.
// old is nil on the first change.
type TermiosFunc func(p *Port, settings, old *LineSettings) error

// Port describes one UART handed to the driver.
//
// UartClock is written only from the port's SetTermios hook. Callers of the
// hook must serialize settings changes per port and hold the same lock while
// reading UartClock.
type Port struct {
	IOBase    uint16
	IOType    IOType
	Type      Type
	UartClock uint32

	SetTermios TermiosFunc

	// Device is the tty path assigned by the registrar, if any.
	Device string
}

// Registrar adds and removes ports from the generic driver.
type Registrar interface {
	Register(p *Port) (Line, error)
	Unregister(line Line) error
}

// LineApplier is the generic line-settings routine. Hooks call it after
// adjusting the port's reference clock.
type LineApplier interface {
	ApplyLineSettings(p *Port, settings, old *LineSettings) error
}
