// internal/uart/baud.go
package uart

// MaxDivisor is the largest value of the 16-bit divisor latch.
const MaxDivisor = 0xFFFF

// Divisor returns the divisor latch value the driver derives for baud at the
// given reference clock, rounded to nearest and limited to [1, MaxDivisor].
func Divisor(clock, baud uint32) uint32 {
	if baud == 0 {
		return MaxDivisor
	}
	d := (uint64(clock) + 8*uint64(baud)) / (16 * uint64(baud))
	if d < 1 {
		d = 1
	}
	if d > MaxDivisor {
		d = MaxDivisor
	}
	return uint32(d)
}

// ActualBaud returns the rate produced by a divisor at the given clock.
func ActualBaud(clock, divisor uint32) uint32 {
	if divisor == 0 {
		return 0
	}
	return clock / (16 * divisor)
}

// BaudError returns the relative error between the requested baud and the
// rate the driver can produce at clock.
func BaudError(clock, baud uint32) float64 {
	if baud == 0 {
		return 0
	}
	got := float64(clock) / (16 * float64(Divisor(clock, baud)))
	e := (got - float64(baud)) / float64(baud)
	if e < 0 {
		e = -e
	}
	return e
}
