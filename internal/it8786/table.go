// internal/it8786/table.go
package it8786

import (
	"fmt"
	"sync"

	"github.com/tamzrod/superio-serial/internal/uart"
)

// State is the lifecycle position of a port descriptor.
type State uint8

const (
	// Undiscovered: not probed in the current pass, or probe skipped.
	Undiscovered State = iota
	// Disabled: enable flag clear.
	Disabled
	// Unregistered: enabled, but the UART driver refused it.
	Unregistered
	// Registered: owned by the UART driver under a line.
	Registered
)

func (s State) String() string {
	switch s {
	case Undiscovered:
		return "undiscovered"
	case Disabled:
		return "disabled"
	case Unregistered:
		return "unregistered"
	case Registered:
		return "registered"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Descriptor is one serial port candidate. The LDN never changes; base,
// line and port are only held while Registered.
//
// mu is the per-port termios lock: it orders line-settings changes on the
// port against each other, against teardown and against readers. It guards
// the descriptor fields and the port's UartClock. It never covers hardware
// access to other ports; the mailbox lock does that.
type Descriptor struct {
	mu sync.Mutex

	index int
	ldn   uint8
	state State

	ioBase uint16
	line   uart.Line
	port   *uart.Port
	last   *uart.LineSettings
}

func (d *Descriptor) Index() int { return d.index }
func (d *Descriptor) LDN() uint8 { return d.ldn }

func (d *Descriptor) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// IOBase returns the port's I/O base while Registered.
func (d *Descriptor) IOBase() (uint16, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Registered {
		return 0, false
	}
	return d.ioBase, true
}

// Line returns the registration handle while Registered.
func (d *Descriptor) Line() (uart.Line, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Registered {
		return -1, false
	}
	return d.line, true
}

// Port returns the description handed to the UART driver, nil unless
// Registered.
func (d *Descriptor) Port() *uart.Port {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Registered {
		return nil
	}
	return d.port
}

// info copies the descriptor for readers.
func (d *Descriptor) info() PortInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	pi := PortInfo{
		Index: d.index,
		LDN:   d.ldn,
		State: d.state,
		Line:  -1,
	}
	if d.state == Registered {
		pi.IOBase = d.ioBase
		pi.Line = d.line
		pi.Device = d.port.Device
		pi.UartClock = d.port.UartClock
		if d.last != nil {
			pi.Baud = d.last.Baud
		}
	}
	return pi
}

// The mark and reset helpers expect d.mu held by the caller.

func (d *Descriptor) reset() {
	d.state = Undiscovered
	d.ioBase = 0
	d.line = -1
	d.port = nil
	d.last = nil
}

func (d *Descriptor) markDisabled() {
	d.reset()
	d.state = Disabled
}

func (d *Descriptor) markUnregistered() {
	d.reset()
	d.state = Unregistered
}

func (d *Descriptor) markRegistered(line uart.Line, p *uart.Port) {
	d.state = Registered
	d.ioBase = p.IOBase
	d.line = line
	d.port = p
	d.last = nil
}

// Table is the ordered, fixed set of port descriptors.
type Table struct {
	descs []*Descriptor
}

// NewTable builds a table over ldns, or over SerialLDNs when none are given.
func NewTable(ldns ...uint8) (*Table, error) {
	if len(ldns) == 0 {
		ldns = SerialLDNs[:]
	}
	if len(ldns) > MaxPorts {
		return nil, fmt.Errorf("it8786: %d ports requested, chip has %d", len(ldns), MaxPorts)
	}

	t := &Table{descs: make([]*Descriptor, 0, len(ldns))}
	seen := make(map[uint8]bool, len(ldns))
	for i, ldn := range ldns {
		if !IsSerialLDN(ldn) {
			return nil, fmt.Errorf("it8786: ldn %#02x is not a serial port", ldn)
		}
		if seen[ldn] {
			return nil, fmt.Errorf("it8786: duplicate ldn %#02x", ldn)
		}
		seen[ldn] = true
		t.descs = append(t.descs, &Descriptor{index: i, ldn: ldn, line: -1})
	}
	return t, nil
}

// Len returns the number of descriptors.
func (t *Table) Len() int { return len(t.descs) }

// At returns descriptor i.
func (t *Table) At(i int) (*Descriptor, error) {
	if i < 0 || i >= len(t.descs) {
		return nil, fmt.Errorf("it8786: port index %d out of range [0,%d)", i, len(t.descs))
	}
	return t.descs[i], nil
}

// ByLDN returns the descriptor for ldn.
func (t *Table) ByLDN(ldn uint8) (*Descriptor, bool) {
	for _, d := range t.descs {
		if d.ldn == ldn {
			return d, true
		}
	}
	return nil, false
}

// All returns every descriptor in port order.
func (t *Table) All() []*Descriptor {
	return append([]*Descriptor(nil), t.descs...)
}

// Registered returns the descriptors currently owned by the UART driver.
func (t *Table) Registered() []*Descriptor {
	var out []*Descriptor
	for _, d := range t.descs {
		if d.State() == Registered {
			out = append(out, d)
		}
	}
	return out
}
