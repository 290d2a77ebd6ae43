// internal/report/report_test.go
package report

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err=%v, wantErr=%v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	var r Reporter = l
	r.Info("hidden")
	r.Warn("shown", "ldn", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "ldn=1") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Debug("a", "k", 1)
	r.Warn("failed to register port", "index", 2)
	r.Warn("failed to register port", "index", 3)

	if got := r.Count(slog.LevelWarn, "register"); got != 2 {
		t.Fatalf("Count = %d, want 2", got)
	}
	if !r.Has(slog.LevelDebug, "a") {
		t.Fatalf("missing debug entry")
	}
	if r.Entries()[1].Attrs["index"] != 2 {
		t.Fatalf("attrs not recorded: %+v", r.Entries()[1])
	}
}

func TestHex(t *testing.T) {
	if got := Hex(0x3f8); got != "0x03f8" {
		t.Fatalf("Hex = %q", got)
	}
	if got := Hex(0x8786); got != "0x8786" {
		t.Fatalf("Hex = %q", got)
	}
}
