package live

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper runs a background goroutine that periodically removes idle
// page sessions until ctx is cancelled.
func StartSweeper(ctx context.Context, r *Registry, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(ttl); n > 0 {
					slog.Info("Session sweeper removed idle sessions", "count", n)
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
