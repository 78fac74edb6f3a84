package services

import (
	"context"
	"log/slog"
	"time"
)

// StartSessionSweeper starts a background goroutine that periodically evicts
// inactive sessions from the store.
func StartSessionSweeper(ctx context.Context, store *SessionStore, interval, maxInactivity time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Session sweeper stopped")
				return
			case <-ticker.C:
				if count := store.Sweep(maxInactivity); count > 0 {
					slog.Info("Evicted inactive sessions", "count", count)
				}
			}
		}
	}()

	slog.Info("Session sweeper started", "interval", interval, "maxInactivity", maxInactivity)
}
