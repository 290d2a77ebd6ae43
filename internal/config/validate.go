// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/superio-serial/internal/it8786"
	"github.com/tamzrod/superio-serial/internal/report"
	"github.com/tamzrod/superio-serial/internal/uart"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// SUPER I/O
	// ------------------------------------------------------------

	if cfg.SuperIO.LockWaitMs < 0 {
		return fmt.Errorf("superio: lock_wait_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// SERIAL DEVICE POOL
	// ------------------------------------------------------------

	if len(cfg.Serial.Devices) == 0 {
		return fmt.Errorf("serial: at least one device is required")
	}
	if len(cfg.Serial.Devices) > it8786.MaxPorts {
		return fmt.Errorf("serial: %d devices given, the chip has %d ports", len(cfg.Serial.Devices), it8786.MaxPorts)
	}

	seenDev := make(map[string]struct{})
	for _, dev := range cfg.Serial.Devices {
		if dev == "" {
			return fmt.Errorf("serial: empty device path")
		}
		if _, dup := seenDev[dev]; dup {
			return fmt.Errorf("serial: duplicate device %q", dev)
		}
		seenDev[dev] = struct{}{}
	}

	if cfg.Serial.TimeoutMs < 0 {
		return fmt.Errorf("serial: timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// PER-PORT LINE SETTINGS
	// ------------------------------------------------------------

	seenLDN := make(map[uint8]struct{})
	for _, p := range cfg.Ports {
		if !it8786.IsSerialLDN(p.LDN) {
			return fmt.Errorf("port ldn %#02x: not a serial logical device", p.LDN)
		}
		if _, dup := seenLDN[p.LDN]; dup {
			return fmt.Errorf("port ldn %#02x: configured twice", p.LDN)
		}
		seenLDN[p.LDN] = struct{}{}

		if p.Baud == 0 {
			return fmt.Errorf("port ldn %#02x: baud must be > 0", p.LDN)
		}
		if p.DataBits != 0 && (p.DataBits < 5 || p.DataBits > 8) {
			return fmt.Errorf("port ldn %#02x: data_bits must be 5..8", p.LDN)
		}
		if p.StopBits != 0 && p.StopBits != 1 && p.StopBits != 2 {
			return fmt.Errorf("port ldn %#02x: stop_bits must be 1 or 2", p.LDN)
		}
		switch uart.Parity(p.Parity) {
		case "", uart.ParityNone, uart.ParityEven, uart.ParityOdd:
		default:
			return fmt.Errorf("port ldn %#02x: parity must be N, E or O", p.LDN)
		}

		if lc := p.LinkCheck; lc != nil {
			if lc.SlaveID == 0 || lc.SlaveID > 247 {
				return fmt.Errorf("port ldn %#02x: link_check slave_id must be 1..247", p.LDN)
			}
			if lc.Quantity > 125 {
				return fmt.Errorf("port ldn %#02x: link_check quantity must be <= 125", p.LDN)
			}
			if lc.TimeoutMs < 0 {
				return fmt.Errorf("port ldn %#02x: link_check timeout_ms must be >= 0", p.LDN)
			}
		}
	}

	// ------------------------------------------------------------
	// STATUS + LOG
	// ------------------------------------------------------------

	if cfg.Status.IntervalMs < 0 {
		return fmt.Errorf("status: interval_ms must be >= 0")
	}
	if cfg.Status.IntervalMs > 0 && cfg.Status.File == "" {
		return fmt.Errorf("status: interval_ms is set but no file is given")
	}

	if _, err := report.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}
