// internal/linkcheck/check.go
package linkcheck

import (
	"fmt"
	"time"

	"github.com/tamzrod/superio-serial/internal/report"
)

// Result of one successful probe.
type Result struct {
	Registers []uint16
	Elapsed   time.Duration
}

// Checker proves a reconfigured line carries traffic by reading holding
// registers from a Modbus RTU slave on it.
type Checker struct {
	dial Dialer
	rep  report.Reporter
}

// New returns a checker. A nil dial uses DialRTU.
func New(dial Dialer, rep report.Reporter) *Checker {
	if dial == nil {
		dial = DialRTU
	}
	if rep == nil {
		rep = report.Discard
	}
	return &Checker{dial: dial, rep: rep}
}

// Check opens the line, reads once and closes it. No retries.
func (c *Checker) Check(cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()

	cli, err := c.dial(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("linkcheck: open %s: %w", cfg.Device, err)
	}
	defer cli.Close()

	raw, err := cli.ReadHoldingRegisters(cfg.Address, cfg.Quantity)
	if err != nil {
		return Result{}, fmt.Errorf("linkcheck: %s slave %d addr %d: %w", cfg.Device, cfg.SlaveID, cfg.Address, err)
	}
	if len(raw) != int(cfg.Quantity)*2 {
		return Result{}, fmt.Errorf("linkcheck: %s: got %d bytes, want %d", cfg.Device, len(raw), int(cfg.Quantity)*2)
	}

	res := Result{
		Registers: unpackRegisters(raw),
		Elapsed:   time.Since(start),
	}
	c.rep.Debug("link check ok",
		"device", cfg.Device,
		"baud", cfg.Baud,
		"slave", cfg.SlaveID,
		"elapsed", res.Elapsed,
	)
	return res, nil
}
