// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/tamzrod/superio-serial/internal/it8786"
	"github.com/tamzrod/superio-serial/internal/report"
	"github.com/tamzrod/superio-serial/internal/status"
	"github.com/tamzrod/superio-serial/internal/superio"
)

// Driver abstracts the configurator calls the monitor needs.
// The monitor only reads.
type Driver interface {
	ChipID() uint16
	PassID() string
	Ports() []it8786.PortInfo
	ReadPort(ctx context.Context, ldn uint8) (it8786.Readback, error)
}

// Config is the minimal runtime config the monitor needs.
type Config struct {
	// Interval between passes. Zero means Run writes one snapshot and returns.
	Interval time.Duration
}

// Monitor is a clock-driven reader of the port table and its hardware.
// PollOnce and Run must not be called concurrently.
type Monitor struct {
	cfg Config
	drv Driver
	out status.Writer
	rep report.Reporter
	now func() time.Time

	// per LDN
	errorSince  map[uint8]time.Time
	lastDivisor map[uint8]string
}

// New creates a monitor with immutable config.
func New(cfg Config, drv Driver, out status.Writer, rep report.Reporter) (*Monitor, error) {
	if drv == nil {
		return nil, errors.New("monitor: driver required")
	}
	if out == nil {
		return nil, errors.New("monitor: status writer required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("monitor: interval must be >= 0")
	}
	if rep == nil {
		rep = report.Discard
	}
	return &Monitor{
		cfg:         cfg,
		drv:         drv,
		out:         out,
		rep:         rep,
		now:         time.Now,
		errorSince:  make(map[uint8]time.Time),
		lastDivisor: make(map[uint8]string),
	}, nil
}

// PollOnce performs exactly one pass over the table.
// A port that cannot be read back is reported stale, never dropped.
func (m *Monitor) PollOnce(ctx context.Context) status.Snapshot {
	now := m.now()
	snap := status.Snapshot{
		At:     now,
		PassID: m.drv.PassID(),
		ChipID: m.drv.ChipID(),
	}

	for _, pi := range m.drv.Ports() {
		ps := status.PortStatus{
			Index:     uint8(pi.Index),
			LDN:       pi.LDN,
			State:     pi.State.String(),
			IOBase:    pi.IOBase,
			Line:      int(pi.Line),
			Device:    pi.Device,
			UartClock: pi.UartClock,
		}

		switch pi.State {
		case it8786.Undiscovered:
			ps.Health = status.HealthUnknown

		case it8786.Disabled:
			ps.Health = status.HealthDisabled

		case it8786.Unregistered:
			ps.Health = status.HealthError
			ps.LastErrorCode = status.ErrUnregistered

		case it8786.Registered:
			m.readback(ctx, pi, &ps)
		}

		m.trackError(now, &ps)
		snap.Ports = append(snap.Ports, ps)
	}

	return snap
}

func (m *Monitor) readback(ctx context.Context, pi it8786.PortInfo, ps *status.PortStatus) {
	rb, err := m.drv.ReadPort(ctx, pi.LDN)
	switch {
	case errors.Is(err, superio.ErrBusy):
		ps.Health = status.HealthStale
		ps.LastErrorCode = status.ErrBusy
		ps.Divisor = m.lastDivisor[pi.LDN]
		return

	case err != nil:
		m.rep.Debug("port readback failed", "ldn", report.Hex(uint16(pi.LDN)), "err", err)
		ps.Health = status.HealthError
		ps.LastErrorCode = status.ErrIO
		return
	}

	ps.Divisor = rb.Divisor.String()
	m.lastDivisor[pi.LDN] = ps.Divisor

	switch {
	case !rb.Enabled:
		ps.Health = status.HealthError
		ps.LastErrorCode = status.ErrPortDisabled
	case rb.Divisor.Clock() != pi.UartClock:
		ps.Health = status.HealthError
		ps.LastErrorCode = status.ErrDivisorMismatch
	default:
		ps.Health = status.HealthOK
	}
}

// trackError fills SecondsInError. Only HealthError counts; stale keeps
// the running count without resetting it.
func (m *Monitor) trackError(now time.Time, ps *status.PortStatus) {
	switch ps.Health {
	case status.HealthError:
		since, ok := m.errorSince[ps.LDN]
		if !ok {
			m.errorSince[ps.LDN] = now
			return
		}
		ps.SecondsInError = saturate(now.Sub(since))

	case status.HealthStale:
		if since, ok := m.errorSince[ps.LDN]; ok {
			ps.SecondsInError = saturate(now.Sub(since))
		}

	default:
		delete(m.errorSince, ps.LDN)
	}
}

// seconds_in_error MUST NOT wrap
func saturate(d time.Duration) uint16 {
	s := d / time.Second
	if s > status.MaxSecondsInError {
		return status.MaxSecondsInError
	}
	if s < 0 {
		return 0
	}
	return uint16(s)
}
