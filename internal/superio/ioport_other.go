// internal/superio/ioport_other.go

//go:build !(linux && (amd64 || 386))

package superio

import "errors"

var errNoPortIO = errors.New("superio: x86 port i/o not available on this platform")

// MemioPort is unavailable off linux/x86.
type MemioPort struct{}

func (MemioPort) Inb(uint16) (uint8, error) { return 0, errNoPortIO }

func (MemioPort) Outb(uint16, uint8) error { return errNoPortIO }
