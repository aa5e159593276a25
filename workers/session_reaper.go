package workers

import (
	"context"
	"time"

	"focargo/logger"
	"focargo/metrics"
)

// Sweeper is the part of the session store the reaper drives.
type Sweeper interface {
	Sweep(idle time.Duration) int
	Len() int
}

// SessionReaper tears down sessions that have been idle longer than ttl.
type SessionReaper struct {
	store    Sweeper
	ttl      time.Duration
	interval time.Duration
	log      *logger.Logger
}

func NewSessionReaper(store Sweeper, ttl, interval time.Duration, log *logger.Logger) *SessionReaper {
	return &SessionReaper{
		store:    store,
		ttl:      ttl,
		interval: interval,
		log:      log.With("worker", "SessionReaper"),
	}
}

// Start runs the reaper until ctx is cancelled.
func (w *SessionReaper) Start(ctx context.Context) {
	w.log.Info("🔁 Starting session reaper", "ttl", w.ttl.String(), "interval", w.interval.String())
	go w.run(ctx)
}

func (w *SessionReaper) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.reap()
		case <-ctx.Done():
			w.log.Info("⏹️ Session reaper stopped")
			return
		}
	}
}

func (w *SessionReaper) reap() int {
	removed := w.store.Sweep(w.ttl)
	remaining := w.store.Len()
	metrics.SetActiveSessions(remaining)
	if removed > 0 {
		w.log.Info("🧹 Reaped idle sessions", "removed", removed, "remaining", remaining)
	}
	return removed
}
