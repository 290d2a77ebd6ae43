// internal/status/encode.go
package status

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("status: cbor encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("status: cbor decoder mode: %v", err))
	}
}

// Encode converts a Snapshot into its CBOR form.
// Same snapshot, same bytes. No IO.
func Encode(s Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

// Decode parses a snapshot written by Encode.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("status: decode: %w", err)
	}
	return s, nil
}
