// internal/it8786/divisor.go
package it8786

import (
	"fmt"

	"github.com/tamzrod/superio-serial/internal/uart"
)

// Divisor is the 2-bit UART clock divisor code held in bits 1-2 of RegClock.
// The chip divides its 24 MHz source by the selected value.
type Divisor uint8

const (
	Div13    Divisor = 0b00
	Div12    Divisor = 0b01
	Div1     Divisor = 0b10
	Div1_625 Divisor = 0b11
)

// ClockMask covers the divisor field of RegClock.
const ClockMask uint8 = 0b0110

// Reference clocks reported to the UART driver.
const (
	// 24 MHz / 13 = 1,846,153 Hz, close enough to the 8250 standard.
	BaselineClock uint32 = 1843200
	// 24 MHz / 1.625.
	HighSpeedClock uint32 = 14769230

	// BaselineMaxBaud is the highest rate served at the baseline clock.
	BaselineMaxBaud uint32 = 115200
)

// hangupBaud stands in for a requested rate of 0.
const hangupBaud uint32 = 9600

func (d Divisor) String() string {
	switch d {
	case Div13:
		return "div13"
	case Div12:
		return "div12"
	case Div1:
		return "div1"
	case Div1_625:
		return "div1.625"
	}
	return fmt.Sprintf("Divisor(%d)", uint8(d))
}

// Clock returns the approximate UART reference clock for d.
func (d Divisor) Clock() uint32 {
	switch d {
	case Div13:
		return BaselineClock
	case Div12:
		return 2000000
	case Div1:
		return 24000000
	case Div1_625:
		return HighSpeedClock
	}
	return 0
}

// PolicyFor selects the divisor for a baud rate. Two tiers only.
func PolicyFor(baud uint32) Divisor {
	if baud <= BaselineMaxBaud {
		return Div13
	}
	return Div1_625
}

// DivisorFromConfig extracts the divisor code from a RegClock value.
func DivisorFromConfig(config uint8) Divisor {
	return Divisor((config & ClockMask) >> 1)
}

// WithDivisor replaces the divisor field of config, keeping all other bits.
func WithDivisor(config uint8, d Divisor) uint8 {
	return config&^ClockMask | (uint8(d)<<1)&ClockMask
}

// ClampBaud returns the rate to configure for settings. A rate of zero
// (hang-up) means 9600. Rates outside [clock/16/0xFFFF, HighSpeedClock/16]
// fall back to the old rate when that is in range, else to the nearest bound.
func ClampBaud(settings, old *uart.LineSettings, clock uint32) uint32 {
	lo := clock / 16 / uart.MaxDivisor
	if lo == 0 {
		lo = 1
	}
	hi := HighSpeedClock / 16

	inRange := func(b uint32) bool { return b >= lo && b <= hi }

	baud := settings.Baud
	if baud == 0 {
		baud = hangupBaud
	}
	if inRange(baud) {
		return baud
	}
	if old != nil && old.Baud != 0 && inRange(old.Baud) {
		return old.Baud
	}
	if baud < lo {
		return lo
	}
	return hi
}
