// internal/uart/serial8250/serial_struct.go
package serial8250

// serialStruct mirrors struct serial_struct from <linux/serial.h>.
// Field order and widths must match the kernel ABI.
type serialStruct struct {
	Type          int32
	Line          int32
	Port          uint32
	IRQ           int32
	Flags         int32
	XmitFifoSize  int32
	CustomDivisor int32
	BaudBase      int32
	CloseDelay    uint16
	IOType        int8
	ReservedChar  [1]int8
	Hub6          int32
	ClosingWait   uint16
	ClosingWait2  uint16
	IomemBase     uintptr
	IomemRegShift uint16
	PortHigh      uint32
	IomapBase     uintptr
}

// ASYNC_SPD_MASK: legacy spd_* flags that override baud_base.
const asyncSpdMask = 0x1030

// serialIoctl reads and writes the serial_struct of a tty device.
type serialIoctl interface {
	get(path string) (serialStruct, error)
	set(path string, ss serialStruct) error
}
