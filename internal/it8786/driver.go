// internal/it8786/driver.go
package it8786

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tamzrod/superio-serial/internal/report"
	"github.com/tamzrod/superio-serial/internal/superio"
	"github.com/tamzrod/superio-serial/internal/uart"
)

// Config wires the driver to the mailbox and the generic UART driver.
type Config struct {
	Mailbox   *superio.Mailbox
	Registrar uart.Registrar
	Applier   uart.LineApplier
	Reporter  report.Reporter

	// LDNs restricts discovery to a subset of the serial LDNs.
	LDNs []uint8
}

// Driver owns the port table of one chip.
//
// Init and Shutdown run sequentially. SetLineSettings may run concurrently
// with them and with itself: each port's descriptor lock orders work on that
// port, and the mailbox lock is the only serialization of the hardware.
type Driver struct {
	mb    *superio.Mailbox
	reg   uart.Registrar
	app   uart.LineApplier
	rep   report.Reporter
	table *Table

	chipID uint16
	passID uuid.UUID
}

// New validates cfg and builds the port table.
func New(cfg Config) (*Driver, error) {
	if cfg.Mailbox == nil {
		return nil, errors.New("it8786: mailbox required")
	}
	if cfg.Registrar == nil {
		return nil, errors.New("it8786: uart registrar required")
	}
	if cfg.Applier == nil {
		return nil, errors.New("it8786: uart line applier required")
	}

	table, err := NewTable(cfg.LDNs...)
	if err != nil {
		return nil, err
	}

	rep := cfg.Reporter
	if rep == nil {
		rep = report.Discard
	}

	return &Driver{
		mb:    cfg.Mailbox,
		reg:   cfg.Registrar,
		app:   cfg.Applier,
		rep:   rep,
		table: table,
	}, nil
}

// Table returns the port table.
func (d *Driver) Table() *Table { return d.table }

// ChipID returns the ID read by the last Init.
func (d *Driver) ChipID() uint16 { return d.chipID }

// PassID identifies the last discovery pass in diagnostics.
func (d *Driver) PassID() string {
	if d.passID == uuid.Nil {
		return ""
	}
	return d.passID.String()
}

// ---- init ----

// Init identifies the chip and registers every enabled port.
// Only a chip ID failure is returned; per-port problems are reported and
// discovery moves on to the next port.
func (d *Driver) Init(ctx context.Context) error {
	if n := len(d.table.Registered()); n > 0 {
		return fmt.Errorf("it8786: %d ports still registered, shut down first", n)
	}

	d.passID = uuid.New()
	pass := d.passID.String()
	d.rep.Debug("initializing", "pass", pass)

	id, err := d.mb.ReadChipID(ctx)
	if err != nil {
		return fmt.Errorf("it8786: read chip id: %w", err)
	}
	d.chipID = id

	if id != ChipID {
		d.rep.Warn("found invalid chip id", "chip_id", report.Hex(id), "pass", pass)
		return fmt.Errorf("%w: found %s", ErrChipMismatch, report.Hex(id))
	}

	for _, desc := range d.table.descs {
		desc.mu.Lock()
		desc.reset()
		desc.mu.Unlock()
		d.discover(ctx, desc)
	}
	return nil
}

func (d *Driver) discover(ctx context.Context, desc *Descriptor) {
	enabled, base, err := d.probe(ctx, desc.ldn)
	if err != nil {
		if errors.Is(err, superio.ErrBusy) {
			d.rep.Debug("unable to enter config mode, skipping port", "index", desc.index, "ldn", report.Hex(uint16(desc.ldn)))
		} else {
			d.rep.Warn("probe failed, skipping port", "index", desc.index, "ldn", report.Hex(uint16(desc.ldn)), "err", err)
		}
		return
	}

	if !enabled {
		desc.mu.Lock()
		desc.markDisabled()
		desc.mu.Unlock()
		d.rep.Info("skipping disabled port", "index", desc.index, "ldn", report.Hex(uint16(desc.ldn)))
		return
	}

	// The session is closed by now: lower level drivers claim the same
	// ports while the line is registered.
	p := &uart.Port{
		IOBase:    base,
		IOType:    uart.IOPort,
		Type:      uart.Type16550A,
		UartClock: BaselineClock,
	}
	ldn := desc.ldn
	p.SetTermios = func(p *uart.Port, settings, old *uart.LineSettings) error {
		return d.setTermios(ldn, p, settings, old)
	}

	line, err := d.reg.Register(p)
	if err != nil {
		desc.mu.Lock()
		desc.markUnregistered()
		desc.mu.Unlock()
		d.rep.Warn("failed to register port", "index", desc.index, "err", err)
		return
	}

	// Always start with the clock in the normal state.
	if err := d.setDivisor(ctx, ldn, Div13); err != nil {
		d.rep.Warn("unable to reset clock divisor", "index", desc.index, "err", err)
	}

	desc.mu.Lock()
	desc.markRegistered(line, p)
	desc.mu.Unlock()
	d.rep.Info("registered port", "index", desc.index, "base", report.Hex(base), "line", int(line), "device", p.Device)
}

// probe reads the enable flag and, for enabled ports, the I/O base.
func (d *Driver) probe(ctx context.Context, ldn uint8) (enabled bool, base uint16, err error) {
	err = d.mb.Do(ctx, func(s *superio.Session) error {
		if err := s.SelectDevice(ldn); err != nil {
			return err
		}
		v, err := s.ReadReg(RegEnable)
		if err != nil {
			return err
		}
		if v&0x01 == 0 {
			return nil
		}
		enabled = true
		base, err = s.ReadWord(RegBaseH, RegBaseL)
		return err
	})
	return enabled, base, err
}

// ---- clock ----

// setDivisor rewrites the divisor field of RegClock under its own session.
func (d *Driver) setDivisor(ctx context.Context, ldn uint8, div Divisor) error {
	return d.mb.Do(ctx, func(s *superio.Session) error {
		if err := s.SelectDevice(ldn); err != nil {
			return err
		}
		config, err := s.ReadReg(RegClock)
		if err != nil {
			return err
		}
		return s.WriteReg(RegClock, WithDivisor(config, div))
	})
}

// setTermios is the line-settings hook bound to every registered port.
// settings.Baud is rewritten to the clamped rate. A busy mailbox or a failed
// divisor write leaves the divisor and p.UartClock untouched; the settings
// are applied regardless.
func (d *Driver) setTermios(ldn uint8, p *uart.Port, settings, old *uart.LineSettings) error {
	baud := ClampBaud(settings, old, p.UartClock)
	settings.Baud = baud

	div := PolicyFor(baud)
	err := d.setDivisor(context.Background(), ldn, div)
	switch {
	case errors.Is(err, superio.ErrBusy):
		d.rep.Warn("unable to enter config mode, clock divisor unchanged", "ldn", report.Hex(uint16(ldn)), "err", err)
	case err != nil:
		d.rep.Warn("clock divisor write failed, clock unchanged", "ldn", report.Hex(uint16(ldn)), "err", err)
	default:
		p.UartClock = div.Clock()
		d.rep.Debug("setting baud and clock",
			"baud", baud,
			"clock", p.UartClock,
			"actual", uart.ActualBaud(p.UartClock, uart.Divisor(p.UartClock, baud)),
		)
	}

	return d.app.ApplyLineSettings(p, settings, old)
}

// SetLineSettings runs the port's line-settings hook as the UART layer
// would on a termios change. Calls on one port are serialized; calls on
// different ports only meet at the mailbox lock.
func (d *Driver) SetLineSettings(ldn uint8, settings uart.LineSettings) error {
	desc, ok := d.table.ByLDN(ldn)
	if !ok {
		return fmt.Errorf("%w: ldn %s", ErrNotRegistered, report.Hex(uint16(ldn)))
	}

	desc.mu.Lock()
	defer desc.mu.Unlock()

	if desc.state != Registered {
		return fmt.Errorf("%w: ldn %s", ErrNotRegistered, report.Hex(uint16(ldn)))
	}

	p := desc.port
	if err := p.SetTermios(p, &settings, desc.last); err != nil {
		return err
	}
	desc.last = &settings
	return nil
}

// ---- readback ----

// Readback is the live hardware view of one port.
type Readback struct {
	Enabled bool
	Divisor Divisor
}

// ReadPort reads the enable flag and clock divisor of ldn under a session.
func (d *Driver) ReadPort(ctx context.Context, ldn uint8) (Readback, error) {
	var rb Readback
	err := d.mb.Do(ctx, func(s *superio.Session) error {
		if err := s.SelectDevice(ldn); err != nil {
			return err
		}
		v, err := s.ReadReg(RegEnable)
		if err != nil {
			return err
		}
		rb.Enabled = v&0x01 != 0
		config, err := s.ReadReg(RegClock)
		if err != nil {
			return err
		}
		rb.Divisor = DivisorFromConfig(config)
		return nil
	})
	return rb, err
}

// PortInfo is a copy of one descriptor's state.
type PortInfo struct {
	Index     int
	LDN       uint8
	State     State
	IOBase    uint16
	Line      uart.Line
	Device    string
	UartClock uint32
	// Baud is the last applied rate, 0 if none.
	Baud uint32
}

// Ports returns a copy of the table in port order.
func (d *Driver) Ports() []PortInfo {
	out := make([]PortInfo, 0, d.table.Len())
	for _, desc := range d.table.descs {
		out = append(out, desc.info())
	}
	return out
}

// ---- shutdown ----

// Shutdown restores the baseline divisor of every registered port, then
// unregisters it. The clock is reset first: nothing resets it afterwards.
func (d *Driver) Shutdown(ctx context.Context) {
	d.rep.Debug("shutting down", "pass", d.PassID())

	for _, desc := range d.table.descs {
		d.teardown(ctx, desc)
	}
}

// teardown holds the port lock so no line-settings change can land
// between the divisor reset and the unregister.
func (d *Driver) teardown(ctx context.Context, desc *Descriptor) {
	desc.mu.Lock()
	defer desc.mu.Unlock()

	if desc.state != Registered {
		return
	}

	if err := d.setDivisor(ctx, desc.ldn, Div13); err != nil {
		d.rep.Warn("unable to reset clock divisor", "index", desc.index, "err", err)
	}

	if err := d.reg.Unregister(desc.line); err != nil {
		d.rep.Warn("failed to unregister port", "index", desc.index, "line", int(desc.line), "err", err)
	}
	desc.reset()
}
