// internal/status/constants.go
package status

// Port status codes.
// These values are part of the snapshot format and MUST NOT be configurable.

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a registered port whose hardware matches its clock.
const HealthOK uint16 = 1

// HealthError represents a port whose hardware disagrees with the driver.
const HealthError uint16 = 2

// HealthStale represents a port that could not be read back this cycle.
const HealthStale uint16 = 3

// HealthDisabled represents a port the firmware left disabled.
const HealthDisabled uint16 = 4

// ---- LAST ERROR CODES ----

// ErrNone means the last readback succeeded.
const ErrNone uint16 = 0

// ErrBusy means the mailbox was held by another owner.
const ErrBusy uint16 = 1

// ErrIO means a port i/o access failed.
const ErrIO uint16 = 2

// ErrDivisorMismatch means the divisor field disagrees with the port clock.
const ErrDivisorMismatch uint16 = 3

// ErrUnregistered means the port is enabled but has no line.
const ErrUnregistered uint16 = 4

// ErrPortDisabled means a registered port reads back disabled.
const ErrPortDisabled uint16 = 5

// ---- LIMITS ----

// MaxSecondsInError is where seconds_in_error saturates.
const MaxSecondsInError = 65535
