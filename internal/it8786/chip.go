// internal/it8786/chip.go

// Package it8786 drives the six UARTs of an ITE IT8786 Super I/O: it finds
// the enabled ports, hands them to the generic 8250 driver and switches the
// UART clock divisor so rates above 115200 baud become reachable.
package it8786

import "errors"

// ChipID is the value of the chip ID register pair on an IT8786.
const ChipID uint16 = 0x8786

// Per-LDN serial port registers.
const (
	RegEnable uint8 = 0x30
	RegBaseH  uint8 = 0x60
	RegBaseL  uint8 = 0x61
	RegClock  uint8 = 0xF0
)

// MaxPorts is the number of UARTs on the chip.
const MaxPorts = 6

// SerialLDNs are the logical device numbers of the six UARTs, in port order.
var SerialLDNs = [MaxPorts]uint8{0x01, 0x02, 0x08, 0x09, 0x0B, 0x0C}

// IsSerialLDN reports whether ldn is one of the chip's UARTs.
func IsSerialLDN(ldn uint8) bool {
	for _, l := range SerialLDNs {
		if l == ldn {
			return true
		}
	}
	return false
}

var (
	// ErrChipMismatch aborts initialization when the chip ID is wrong.
	ErrChipMismatch = errors.New("it8786: chip id mismatch")

	// ErrNotRegistered is returned for operations on a port that is not
	// registered with the UART driver.
	ErrNotRegistered = errors.New("it8786: port not registered")
)
