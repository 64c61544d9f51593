package workers

import (
	"context"
	"log/slog"
	"time"

	"driftway/contract"
	"driftway/services"
)

// Ensure *SessionSweeper implements the contract.Worker interface at
// compile time.
var _ contract.Worker = (*SessionSweeper)(nil)

// SessionSweeper purges expired session records: once immediately at
// startup (expired logins must not survive a restart), then on each
// tick. Validation also deletes expired sessions lazily, so the sweep
// only has to catch sessions nobody ever presented again.
type SessionSweeper struct {
	auth     services.IAuthService
	interval time.Duration
	log      *slog.Logger
}

func NewSessionSweeper(auth services.IAuthService, interval time.Duration, log *slog.Logger) *SessionSweeper {
	return &SessionSweeper{auth: auth, interval: interval, log: log}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping session sweeper")
			return nil
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionSweeper) sweep() {
	purged, err := w.auth.SweepExpiredSessions()
	if err != nil {
		w.log.Error("Session sweep failed", "error", err)
		return
	}
	if purged > 0 {
		w.log.Info("Expired sessions purged", "count", purged)
	}
}
