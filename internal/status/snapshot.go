// internal/status/snapshot.go
package status

import "time"

// Snapshot is one monitor pass over the whole port table.
// It contains no logic.
type Snapshot struct {
	At     time.Time    `cbor:"1,keyasint"`
	PassID string       `cbor:"2,keyasint"`
	ChipID uint16       `cbor:"3,keyasint"`
	Ports  []PortStatus `cbor:"4,keyasint"`
}

// PortStatus is the state of one descriptor plus its last readback.
type PortStatus struct {
	Index     uint8  `cbor:"1,keyasint"`
	LDN       uint8  `cbor:"2,keyasint"`
	State     string `cbor:"3,keyasint"`
	IOBase    uint16 `cbor:"4,keyasint,omitempty"`
	Line      int    `cbor:"5,keyasint"`
	Device    string `cbor:"6,keyasint,omitempty"`
	UartClock uint32 `cbor:"7,keyasint,omitempty"`
	Divisor   string `cbor:"8,keyasint,omitempty"`

	Health         uint16 `cbor:"9,keyasint"`
	LastErrorCode  uint16 `cbor:"10,keyasint"`
	SecondsInError uint16 `cbor:"11,keyasint"`
}

// Port returns the entry for ldn.
func (s Snapshot) Port(ldn uint8) (PortStatus, bool) {
	for _, p := range s.Ports {
		if p.LDN == ldn {
			return p, true
		}
	}
	return PortStatus{}, false
}
