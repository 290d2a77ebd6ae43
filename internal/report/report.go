// internal/report/report.go

// Package report is the diagnostics seam between the hardware logic and the
// process logger.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Reporter receives diagnostics as a message plus key/value pairs.
// *slog.Logger satisfies it.
type Reporter interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Discard drops everything.
var Discard Reporter = slog.New(slog.NewTextHandler(io.Discard, nil))

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("report: unknown log level %q", s)
}

// New returns a text logger writing to w at level.
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), nil
}

// Hex formats a register value or address the way datasheets print them.
func Hex(v uint16) string {
	return fmt.Sprintf("%#04x", v)
}
