// internal/superio/mailbox.go
package superio

import (
	"context"
	"errors"
	"time"
)

// Mailbox port pair. Fixed by the board; never configurable.
const (
	AddrPort uint16 = 0x2E
	DataPort uint16 = 0x2F
)

// Global registers, valid for every logical device.
const (
	RegLDN     uint8 = 0x07
	RegChipIDH uint8 = 0x20
	RegChipIDL uint8 = 0x21
)

// ErrBusy is returned when another holder owns the mailbox.
var ErrBusy = errors.New("superio: mailbox busy")

// PortIO is raw 8-bit x86 port I/O.
type PortIO interface {
	Inb(port uint16) (uint8, error)
	Outb(port uint16, v uint8) error
}

// Locker guards the mailbox system-wide.
// TryLock never blocks: it returns ErrBusy while another holder owns the lock.
type Locker interface {
	TryLock() (unlock func() error, err error)
}

// Handshake is the chip-specific byte sequence used to enter and leave
// configuration mode.
type Handshake struct {
	ExitAddr byte   // written to AddrPort to leave config mode
	ExitData byte   // written to DataPort to leave config mode
	EnterKey []byte // written to AddrPort, in order, to enter config mode
}

// ITEHandshake is the MB PnP key used by ITE parts on the 0x2E port pair.
var ITEHandshake = Handshake{
	ExitAddr: 0x02,
	ExitData: 0x02,
	EnterKey: []byte{0x87, 0x01, 0x55, 0x55},
}

// Config wires a Mailbox to its hardware and lock.
type Config struct {
	IO        PortIO
	Lock      Locker
	Handshake Handshake

	// LockWait bounds how long Open polls a contended lock.
	// Zero means a single attempt.
	LockWait     time.Duration
	PollInterval time.Duration
}

// Mailbox is the address/data configuration port pair.
// All register access goes through a Session.
type Mailbox struct {
	io   PortIO
	lock Locker
	hs   Handshake
	wait time.Duration
	poll time.Duration
}

// New validates cfg and returns the mailbox.
func New(cfg Config) (*Mailbox, error) {
	if cfg.IO == nil {
		return nil, errors.New("superio: port io required")
	}
	if cfg.Lock == nil {
		return nil, errors.New("superio: locker required")
	}
	if len(cfg.Handshake.EnterKey) == 0 {
		return nil, errors.New("superio: handshake enter key required")
	}
	if cfg.LockWait < 0 {
		return nil, errors.New("superio: lock wait must be >= 0")
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	return &Mailbox{
		io:   cfg.IO,
		lock: cfg.Lock,
		hs:   cfg.Handshake,
		wait: cfg.LockWait,
		poll: poll,
	}, nil
}

// Session returns a new closed session on this mailbox.
// Each session holds its own lock handle, so two sessions exclude each other
// even inside one process.
func (m *Mailbox) Session() *Session {
	return &Session{mb: m}
}

// Do opens a session, runs fn and closes the session on every exit path.
func (m *Mailbox) Do(ctx context.Context, fn func(s *Session) error) (err error) {
	s := m.Session()
	if err := s.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// ReadChipID opens a session just long enough to read the 16-bit chip ID
// (high byte first).
func (m *Mailbox) ReadChipID(ctx context.Context) (uint16, error) {
	var id uint16
	err := m.Do(ctx, func(s *Session) error {
		v, err := s.ReadWord(RegChipIDH, RegChipIDL)
		id = v
		return err
	})
	return id, err
}

func (m *Mailbox) acquire(ctx context.Context) (func() error, error) {
	unlock, err := m.lock.TryLock()
	if err == nil || !errors.Is(err, ErrBusy) || m.wait == 0 {
		return unlock, err
	}

	deadline := time.NewTimer(m.wait)
	defer deadline.Stop()
	tick := time.NewTicker(m.poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrBusy, ctx.Err())
		case <-deadline.C:
			return nil, ErrBusy
		case <-tick.C:
			unlock, err = m.lock.TryLock()
			if err == nil || !errors.Is(err, ErrBusy) {
				return unlock, err
			}
		}
	}
}

// exit leaves configuration mode. Harmless when not in config mode.
func (m *Mailbox) exit() error {
	if err := m.io.Outb(AddrPort, m.hs.ExitAddr); err != nil {
		return err
	}
	return m.io.Outb(DataPort, m.hs.ExitData)
}

func (m *Mailbox) enter() error {
	for _, b := range m.hs.EnterKey {
		if err := m.io.Outb(AddrPort, b); err != nil {
			return err
		}
	}
	return nil
}
