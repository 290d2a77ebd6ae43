// internal/report/recorder.go
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Level slog.Level
	Msg   string
	Attrs map[string]any
}

// Recorder is a Reporter that keeps every entry for later assertions.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Debug(msg string, args ...any) { r.add(slog.LevelDebug, msg, args) }
func (r *Recorder) Info(msg string, args ...any)  { r.add(slog.LevelInfo, msg, args) }
func (r *Recorder) Warn(msg string, args ...any)  { r.add(slog.LevelWarn, msg, args) }

func (r *Recorder) add(level slog.Level, msg string, args []any) {
	attrs := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		attrs[fmt.Sprint(args[i])] = args[i+1]
	}
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Attrs: attrs})
	r.mu.Unlock()
}

// Entries returns a copy of everything recorded.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns the number of entries at level whose message contains substr.
func (r *Recorder) Count(level slog.Level, substr string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			n++
		}
	}
	return n
}

// Has reports whether any entry at level contains substr.
func (r *Recorder) Has(level slog.Level, substr string) bool {
	return r.Count(level, substr) > 0
}
