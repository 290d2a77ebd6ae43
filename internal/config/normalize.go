// internal/config/normalize.go
package config

import "github.com/tamzrod/superio-serial/internal/uart"

const (
	defaultSerialTimeoutMs = 1000
	defaultLinkTimeoutMs   = 500
	defaultLogLevel        = "info"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// An empty lock_file is left empty: the lock layer owns its default path.

	if cfg.Serial.TimeoutMs == 0 {
		cfg.Serial.TimeoutMs = defaultSerialTimeoutMs
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}

	for pi := range cfg.Ports {
		p := &cfg.Ports[pi]

		// ------------------------------------------------------------
		// LINE DEFAULTS (8N1)
		// ------------------------------------------------------------

		if p.DataBits == 0 {
			p.DataBits = 8
		}
		if p.StopBits == 0 {
			p.StopBits = 1
		}
		if p.Parity == "" {
			p.Parity = string(uart.ParityNone)
		}

		// ------------------------------------------------------------
		// LINK CHECK DEFAULTS (OPT-IN)
		// ------------------------------------------------------------

		if p.LinkCheck == nil {
			continue
		}
		if p.LinkCheck.Quantity == 0 {
			p.LinkCheck.Quantity = 1
		}
		if p.LinkCheck.TimeoutMs == 0 {
			p.LinkCheck.TimeoutMs = defaultLinkTimeoutMs
		}
	}
}
