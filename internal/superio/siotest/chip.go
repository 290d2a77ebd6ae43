// internal/superio/siotest/chip.go

// Package siotest provides an in-memory Super I/O chip and mailbox lock
// for tests.
package siotest

import (
	"sync"

	"github.com/tamzrod/superio-serial/internal/superio"
)

// RegAccess is one data-port access made while the chip was in config mode.
type RegAccess struct {
	LDN   uint8
	Reg   uint8
	Write bool
	Value uint8
}

// Chip emulates the configuration space of an ITE Super I/O behind the
// 0x2E/0x2F pair. It implements superio.PortIO.
type Chip struct {
	mu sync.Mutex

	id     uint16
	key    []byte
	keyPos int

	configMode bool
	addr       uint8
	ldn        uint8
	devices    map[uint8]*[256]uint8

	accesses []RegAccess
	enters   int
	exits    int

	// FailOut, when set, is returned from every Outb.
	FailOut error
}

// NewChip returns a chip reporting id that accepts the ITE enter key.
func NewChip(id uint16) *Chip {
	return &Chip{
		id:      id,
		key:     superio.ITEHandshake.EnterKey,
		devices: make(map[uint8]*[256]uint8),
	}
}

func (c *Chip) dev(ldn uint8) *[256]uint8 {
	d, ok := c.devices[ldn]
	if !ok {
		d = new([256]uint8)
		c.devices[ldn] = d
	}
	return d
}

// ---- setup ----

// SetReg sets a device register without going through the mailbox.
func (c *Chip) SetReg(ldn, reg, v uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dev(ldn)[reg] = v
}

// Reg returns a device register without going through the mailbox.
func (c *Chip) Reg(ldn, reg uint8) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev(ldn)[reg]
}

// SetSerial configures a UART logical device: enable flag and base.
func (c *Chip) SetSerial(ldn uint8, enabled bool, base uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.dev(ldn)
	if enabled {
		d[0x30] = 0x01
	} else {
		d[0x30] = 0x00
	}
	d[0x60] = uint8(base >> 8)
	d[0x61] = uint8(base)
}

// ---- inspection ----

// ConfigMode reports whether the chip is currently in config mode.
func (c *Chip) ConfigMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configMode
}

// Enters returns how many times config mode was entered.
func (c *Chip) Enters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enters
}

// Exits returns how many exit pairs were written.
func (c *Chip) Exits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exits
}

// Accesses returns a copy of the data-port access log.
func (c *Chip) Accesses() []RegAccess {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RegAccess, len(c.accesses))
	copy(out, c.accesses)
	return out
}

// Reads counts reads of reg on logical device ldn.
func (c *Chip) Reads(ldn, reg uint8) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.accesses {
		if !a.Write && a.LDN == ldn && a.Reg == reg {
			n++
		}
	}
	return n
}

// ---- superio.PortIO ----

func (c *Chip) Inb(port uint16) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if port != superio.DataPort || !c.configMode {
		return 0xFF, nil
	}

	var v uint8
	switch c.addr {
	case superio.RegLDN:
		v = c.ldn
	case superio.RegChipIDH:
		v = uint8(c.id >> 8)
	case superio.RegChipIDL:
		v = uint8(c.id)
	default:
		if c.addr < 0x30 {
			v = 0x00
		} else {
			v = c.dev(c.ldn)[c.addr]
		}
	}
	c.accesses = append(c.accesses, RegAccess{LDN: c.ldn, Reg: c.addr, Value: v})
	return v, nil
}

func (c *Chip) Outb(port uint16, v uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailOut != nil {
		return c.FailOut
	}

	switch port {
	case superio.AddrPort:
		if c.configMode {
			c.addr = v
			return nil
		}
		c.feedKey(v)

	case superio.DataPort:
		if !c.configMode {
			// The exit pair lands here when no session is active.
			if c.addr == 0x02 {
				c.exits++
			}
			return nil
		}
		c.accesses = append(c.accesses, RegAccess{LDN: c.ldn, Reg: c.addr, Write: true, Value: v})
		switch {
		case c.addr == 0x02 && v&0x02 != 0:
			c.configMode = false
			c.exits++
		case c.addr == superio.RegLDN:
			c.ldn = v
		case c.addr >= 0x30:
			c.dev(c.ldn)[c.addr] = v
		}
	}
	return nil
}

func (c *Chip) feedKey(v uint8) {
	c.addr = v
	if v == c.key[c.keyPos] {
		c.keyPos++
	} else if v == c.key[0] {
		c.keyPos = 1
	} else {
		c.keyPos = 0
	}
	if c.keyPos == len(c.key) {
		c.keyPos = 0
		c.configMode = true
		c.enters++
	}
}
