// internal/uart/serial8250/driver.go

// Package serial8250 registers ports with the Linux 8250 driver from user
// space, the way setserial(8) does: a free /dev/ttyS line is pointed at the
// port's I/O base with TIOCSSERIAL.
package serial8250

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/superio-serial/internal/report"
	"github.com/tamzrod/superio-serial/internal/uart"
)

// Config is the line pool and defaults of the driver.
type Config struct {
	// Devices are the tty lines ports may be bound to, tried in order.
	Devices []string
	// Timeout is the read timeout used when the line is opened to apply settings.
	Timeout  time.Duration
	Reporter report.Reporter
}

// Driver implements uart.Registrar and uart.LineApplier.
type Driver struct {
	mu      sync.Mutex
	devices []string
	lines   map[uart.Line]string
	timeout time.Duration
	rep     report.Reporter

	sys  serialIoctl
	open func(c *serial.Config) (io.Closer, error)
}

// New returns a driver over the configured tty pool.
func New(cfg Config) (*Driver, error) {
	seen := make(map[string]struct{}, len(cfg.Devices))
	for _, d := range cfg.Devices {
		if d == "" {
			return nil, errors.New("serial8250: empty device path")
		}
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("serial8250: duplicate device %s", d)
		}
		seen[d] = struct{}{}
	}

	rep := cfg.Reporter
	if rep == nil {
		rep = report.Discard
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	return &Driver{
		devices: append([]string(nil), cfg.Devices...),
		lines:   make(map[uart.Line]string),
		timeout: timeout,
		rep:     rep,
		sys:     defaultIoctl(),
		open: func(c *serial.Config) (io.Closer, error) {
			return serial.Open(c)
		},
	}, nil
}

// ---- uart.Registrar ----

// Register binds p to a tty line. A line already pointing at p's I/O base
// is preferred; otherwise the first unbound line is used.
func (d *Driver) Register(p *uart.Port) (uart.Line, error) {
	if p == nil || p.IOBase == 0 {
		return -1, errors.New("serial8250: port has no i/o base")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		free   string
		freeSS serialStruct
	)
	for _, path := range d.devices {
		if d.inUse(path) {
			continue
		}
		ss, err := d.sys.get(path)
		if err != nil {
			d.rep.Debug("skipping tty", "device", path, "err", err)
			continue
		}
		if ss.Port == uint32(p.IOBase) {
			return d.bind(path, ss, p)
		}
		if free == "" && (ss.Type == int32(uart.TypeUnknown) || ss.Port == 0) {
			free, freeSS = path, ss
		}
	}

	if free == "" {
		return -1, uart.ErrNoLine
	}
	return d.bind(free, freeSS, p)
}

func (d *Driver) bind(path string, ss serialStruct, p *uart.Port) (uart.Line, error) {
	ss.Type = int32(p.Type)
	ss.Port = uint32(p.IOBase)
	ss.PortHigh = 0
	ss.IOType = int8(p.IOType)
	ss.BaudBase = int32(p.UartClock / 16)
	ss.CustomDivisor = 0
	ss.Flags &^= asyncSpdMask

	if err := d.sys.set(path, ss); err != nil {
		return -1, err
	}

	line := uart.Line(ss.Line)
	d.lines[line] = path
	p.Device = path
	return line, nil
}

// Unregister detaches the line from its hardware and returns it to the pool.
func (d *Driver) Unregister(line uart.Line) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, ok := d.lines[line]
	if !ok {
		return fmt.Errorf("serial8250: line %d not registered", line)
	}

	ss, err := d.sys.get(path)
	if err != nil {
		return err
	}
	ss.Type = int32(uart.TypeUnknown)
	ss.Port = 0
	ss.PortHigh = 0
	if err := d.sys.set(path, ss); err != nil {
		return err
	}

	delete(d.lines, line)
	return nil
}

// ---- uart.LineApplier ----

// ApplyLineSettings reprograms baud_base for the port's current reference
// clock, then opens the line at the requested settings so the kernel derives
// its divisor latch from the new clock.
func (d *Driver) ApplyLineSettings(p *uart.Port, settings, _ *uart.LineSettings) error {
	if p.Device == "" {
		return errors.New("serial8250: port has no device")
	}

	ss, err := d.sys.get(p.Device)
	if err != nil {
		return err
	}
	if base := int32(p.UartClock / 16); ss.BaudBase != base || ss.Flags&asyncSpdMask != 0 {
		ss.BaudBase = base
		ss.CustomDivisor = 0
		ss.Flags &^= asyncSpdMask
		if err := d.sys.set(p.Device, ss); err != nil {
			return err
		}
	}

	c, err := d.open(lineConfig(p.Device, settings, d.timeout))
	if err != nil {
		return fmt.Errorf("serial8250: open %s at %d baud: %w", p.Device, settings.Baud, err)
	}
	return c.Close()
}

func (d *Driver) inUse(path string) bool {
	for _, p := range d.lines {
		if p == path {
			return true
		}
	}
	return false
}

func lineConfig(path string, s *uart.LineSettings, timeout time.Duration) *serial.Config {
	c := &serial.Config{
		Address:  path,
		BaudRate: int(s.Baud),
		DataBits: int(s.DataBits),
		StopBits: int(s.StopBits),
		Parity:   string(s.Parity),
		Timeout:  timeout,
	}
	if c.DataBits == 0 {
		c.DataBits = 8
	}
	if c.StopBits == 0 {
		c.StopBits = 1
	}
	if c.Parity == "" {
		c.Parity = string(uart.ParityNone)
	}
	return c
}
