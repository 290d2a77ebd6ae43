// internal/it8786/divisor_test.go
package it8786

import (
	"testing"

	"github.com/tamzrod/superio-serial/internal/uart"
)

func TestPolicyFor_TwoTiers(t *testing.T) {
	for _, b := range []uint32{1, 50, 300, 1200, 9600, 19200, 38400, 57600, 115200} {
		if d := PolicyFor(b); d != Div13 || d.Clock() != BaselineClock {
			t.Errorf("PolicyFor(%d) = %v (clock %d), want div13 / %d", b, d, d.Clock(), BaselineClock)
		}
	}
	for _, b := range []uint32{115201, 128000, 203400, 230400, 256000, 460800, 921600} {
		if d := PolicyFor(b); d != Div1_625 || d.Clock() != HighSpeedClock {
			t.Errorf("PolicyFor(%d) = %v (clock %d), want div1.625 / %d", b, d, d.Clock(), HighSpeedClock)
		}
	}
}

func TestWithDivisor_PreservesOtherBits(t *testing.T) {
	divs := []Divisor{Div13, Div12, Div1, Div1_625}
	for cfg := 0; cfg < 256; cfg++ {
		for _, d := range divs {
			got := WithDivisor(uint8(cfg), d)
			if got&^ClockMask != uint8(cfg)&^ClockMask {
				t.Fatalf("WithDivisor(%#02x, %v) = %#02x changed bits outside the field", cfg, d, got)
			}
			if DivisorFromConfig(got) != d {
				t.Fatalf("WithDivisor(%#02x, %v) = %#02x, field reads back %v", cfg, d, got, DivisorFromConfig(got))
			}
		}
	}
}

func TestWithDivisor_Values(t *testing.T) {
	tests := []struct {
		cfg  uint8
		div  Divisor
		want uint8
	}{
		{0x00, Div1_625, 0x06},
		{0xFF, Div13, 0xF9},
		{0x41, Div1, 0x45},
		{0x47, Div12, 0x43},
	}
	for _, tt := range tests {
		if got := WithDivisor(tt.cfg, tt.div); got != tt.want {
			t.Errorf("WithDivisor(%#02x, %v) = %#02x, want %#02x", tt.cfg, tt.div, got, tt.want)
		}
	}
}

func TestClampBaud(t *testing.T) {
	s := func(b uint32) *uart.LineSettings { return &uart.LineSettings{Baud: b} }

	tests := []struct {
		name     string
		settings *uart.LineSettings
		old      *uart.LineSettings
		clock    uint32
		want     uint32
	}{
		{"in range baseline", s(9600), nil, BaselineClock, 9600},
		{"elevated from baseline clock", s(921600), nil, BaselineClock, 921600},
		{"hangup", s(0), nil, BaselineClock, 9600},
		{"too fast falls back to old", s(3000000), s(115200), BaselineClock, 115200},
		{"too fast clamps to max", s(3000000), nil, HighSpeedClock, HighSpeedClock / 16},
		{"too slow at high clock clamps to min", s(5), nil, HighSpeedClock, HighSpeedClock / 16 / uart.MaxDivisor},
		{"old hangup ignored", s(3000000), s(0), BaselineClock, HighSpeedClock / 16},
		// 923076 is the ceiling at every clock, so 1M never reaches the fast tier
		{"above high speed ceiling falls back to old", s(1000000), s(9600), BaselineClock, 9600},
		{"above high speed ceiling from fast clock", s(1000000), s(460800), HighSpeedClock, 460800},
		{"above high speed ceiling clamps without old", s(1000000), nil, BaselineClock, 923076},
		{"at high speed ceiling", s(923076), nil, BaselineClock, 923076},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampBaud(tt.settings, tt.old, tt.clock); got != tt.want {
				t.Fatalf("ClampBaud = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDivisor_String(t *testing.T) {
	if Div1_625.String() != "div1.625" || Divisor(7).String() != "Divisor(7)" {
		t.Fatalf("unexpected names %q %q", Div1_625, Divisor(7))
	}
	if Divisor(7).Clock() != 0 {
		t.Fatalf("unknown divisor has a clock")
	}
}
