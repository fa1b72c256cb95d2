package workers

import (
	"batepapo/services"
	"context"
	"log/slog"
	"time"
)

// InactivitySweeper periodically evicts participants whose heartbeat is
// older than the configured threshold. Each sweep fully completes before the
// next tick fires, so sweeps never overlap. A failed sweep is logged and the
// loop keeps going; nothing waits on it synchronously.
type InactivitySweeper struct {
	presence  services.IPresenceService
	interval  time.Duration
	threshold time.Duration
	log       *slog.Logger
}

func NewInactivitySweeper(
	presence services.IPresenceService,
	interval time.Duration,
	threshold time.Duration,
	log *slog.Logger,
) *InactivitySweeper {
	return &InactivitySweeper{presence: presence, interval: interval, threshold: threshold, log: log}
}

func (w *InactivitySweeper) Run(ctx context.Context) error {
	w.log.Info("Starting inactivity sweeper", "interval", w.interval, "threshold", w.threshold)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count, err := w.presence.EvictInactive(w.threshold)
			if err != nil {
				w.log.Error("Sweep failed", "err", err)
				continue
			}
			w.log.Debug("Sweep completed", "evicted", count)
		}
	}
}
