// internal/superio/ioport_memio.go

//go:build linux && (amd64 || 386)

package superio

import (
	"github.com/u-root/u-root/pkg/memio"
)

// MemioPort performs port I/O through /dev/port. Requires CAP_SYS_RAWIO.
type MemioPort struct{}

func (MemioPort) Inb(port uint16) (uint8, error) {
	var v memio.Uint8
	if err := memio.In(port, &v); err != nil {
		return 0, err
	}
	return uint8(v), nil
}

func (MemioPort) Outb(port uint16, v uint8) error {
	val := memio.Uint8(v)
	return memio.Out(port, &val)
}
