// internal/uart/uarttest/fake.go

// Package uarttest provides recording fakes of the generic UART driver.
package uarttest

import (
	"fmt"
	"sync"

	"github.com/tamzrod/superio-serial/internal/uart"
)

// Registrar records Register/Unregister calls. Lines are handed out from 0
// upwards and never reused.
type Registrar struct {
	mu sync.Mutex

	next  uart.Line
	ports map[uart.Line]*uart.Port

	registered   []uint16
	unregistered []uart.Line

	// Fail maps an I/O base to the error Register returns for it.
	Fail map[uint16]error
}

// NewRegistrar returns an empty fake registrar.
func NewRegistrar() *Registrar {
	return &Registrar{ports: make(map[uart.Line]*uart.Port)}
}

func (r *Registrar) Register(p *uart.Port) (uart.Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registered = append(r.registered, p.IOBase)
	if err, ok := r.Fail[p.IOBase]; ok {
		return -1, err
	}

	line := r.next
	r.next++
	p.Device = fmt.Sprintf("/dev/ttyFAKE%d", line)
	r.ports[line] = p
	return line, nil
}

func (r *Registrar) Unregister(line uart.Line) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregistered = append(r.unregistered, line)
	if _, ok := r.ports[line]; !ok {
		return fmt.Errorf("uarttest: line %d not registered", line)
	}
	delete(r.ports, line)
	return nil
}

// Port returns the registered port for line.
func (r *Registrar) Port(line uart.Line) (*uart.Port, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.ports[line]
	return p, ok
}

// Live returns the number of currently registered ports.
func (r *Registrar) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ports)
}

// Registered returns the I/O bases passed to Register, in call order.
func (r *Registrar) Registered() []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint16(nil), r.registered...)
}

// Unregistered returns the lines passed to Unregister, in call order.
func (r *Registrar) Unregistered() []uart.Line {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uart.Line(nil), r.unregistered...)
}

// ApplyCall is one recorded ApplyLineSettings call.
type ApplyCall struct {
	IOBase    uint16
	UartClock uint32
	Baud      uint32
}

// Applier records the generic line-settings calls.
type Applier struct {
	mu    sync.Mutex
	calls []ApplyCall

	Err error
}

func (a *Applier) ApplyLineSettings(p *uart.Port, settings, _ *uart.LineSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, ApplyCall{
		IOBase:    p.IOBase,
		UartClock: p.UartClock,
		Baud:      settings.Baud,
	})
	return a.Err
}

// Calls returns the recorded calls.
func (a *Applier) Calls() []ApplyCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]ApplyCall(nil), a.calls...)
}
