// internal/superio/session.go
package superio

import (
	"context"
	"errors"
	"fmt"
)

// Session is exclusive ownership of the mailbox with config mode active.
//
// Keep sessions short: other drivers probe the same two ports during their
// own initialization and block for as long as a session stays open.
type Session struct {
	mb     *Mailbox
	unlock func() error
}

// IsOpen reports whether the session currently holds the mailbox.
func (s *Session) IsOpen() bool {
	return s.unlock != nil
}

// Open acquires the mailbox and enters config mode.
//
// Opening an already open session returns nil without touching the lock or
// the hardware. This is not nesting: one Close ends the session.
func (s *Session) Open(ctx context.Context) error {
	if s.unlock != nil {
		return nil
	}

	unlock, err := s.mb.acquire(ctx)
	if err != nil {
		return err
	}

	// Force any stale session closed before entering.
	if err := s.mb.exit(); err != nil {
		return errors.Join(fmt.Errorf("superio: exit config mode: %w", err), unlock())
	}
	if err := s.mb.enter(); err != nil {
		return errors.Join(fmt.Errorf("superio: enter config mode: %w", err), unlock())
	}

	s.unlock = unlock
	return nil
}

// Close leaves config mode and releases the mailbox.
// Closing a closed session still writes the exit pair and returns nil.
func (s *Session) Close() error {
	err := s.mb.exit()
	if err != nil {
		err = fmt.Errorf("superio: exit config mode: %w", err)
	}
	if s.unlock != nil {
		if uerr := s.unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("superio: release mailbox: %w", uerr)
		}
		s.unlock = nil
	}
	return err
}

// ReadReg reads one configuration register.
// Only meaningful while the session is open; this is not checked.
func (s *Session) ReadReg(reg uint8) (uint8, error) {
	if err := s.mb.io.Outb(AddrPort, reg); err != nil {
		return 0, err
	}
	return s.mb.io.Inb(DataPort)
}

// WriteReg writes one configuration register.
// Only meaningful while the session is open; this is not checked.
func (s *Session) WriteReg(reg, v uint8) error {
	if err := s.mb.io.Outb(AddrPort, reg); err != nil {
		return err
	}
	return s.mb.io.Outb(DataPort, v)
}

// ReadWord reads a big-endian register pair.
func (s *Session) ReadWord(hi, lo uint8) (uint16, error) {
	h, err := s.ReadReg(hi)
	if err != nil {
		return 0, err
	}
	l, err := s.ReadReg(lo)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// SelectDevice exposes the registers of logical device ldn.
func (s *Session) SelectDevice(ldn uint8) error {
	return s.WriteReg(RegLDN, ldn)
}
