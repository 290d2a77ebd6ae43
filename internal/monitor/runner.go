// internal/monitor/runner.go
package monitor

import (
	"context"
	"time"
)

// Run writes one snapshot immediately, then one per interval until ctx is
// done. No overlap. No retries: a failed write is logged and the next tick
// tries again with fresh data.
func (m *Monitor) Run(ctx context.Context) {
	m.emit(ctx)
	if m.cfg.Interval == 0 {
		return
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.emit(ctx)
		}
	}
}

func (m *Monitor) emit(ctx context.Context) {
	snap := m.PollOnce(ctx)
	if err := m.out.WriteStatus(snap); err != nil {
		m.rep.Warn("status write failed", "err", err)
	}
}
