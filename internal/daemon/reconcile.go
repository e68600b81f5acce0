package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crewdesk/internal/team"
)

// ReconcileTask periodically repairs every organisation's member directory:
// orphaned members are reattached to the owner seat, duplicate owner seats
// are removed and stale profiles are refreshed. One failing organisation
// never stops the sweep.
func ReconcileTask(teamManager *team.Manager, logger *slog.Logger, interval time.Duration) DaemonFunc {
	return func(ctx context.Context, name string) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				fmt.Printf("%s shutting down...\n", name)
				return nil
			case <-ticker.C:
				if err := teamManager.ReconcileAll(ctx); err != nil {
					logger.Error("Directory reconcile sweep failed", "error", err)
				}
			}
		}
	}
}
