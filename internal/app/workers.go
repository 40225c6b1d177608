package app

import (
	"context"
	"time"

	"github.com/ticket-marketplace/payments/internal/domain/escrow"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

// StartSweeper runs the escrow release sweep on a fixed interval until ctx
// is cancelled. One failed pass logs and waits for the next tick; each
// release claims its hold, so an overlapping manual release cannot
// double-pay.
func StartSweeper(ctx context.Context, l *logger.Logger, manager *escrow.Manager, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		l.Info("Escrow sweeper started: interval=%s", interval)
		for {
			select {
			case <-ctx.Done():
				l.Info("Escrow sweeper stopped")
				return
			case <-ticker.C:
				results, err := manager.Sweep(ctx)
				if err != nil {
					l.Error("Escrow sweep failed: error=%v", err)
					continue
				}
				if len(results) > 0 {
					released := 0
					for _, r := range results {
						if r.Success {
							released++
						}
					}
					l.Info("Escrow sweep done: due=%d released=%d", len(results), released)
				}
			}
		}
	}()
}
