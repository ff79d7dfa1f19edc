// Package alerter periodically sweeps the portfolio for agreements nearing
// expiration and emits alert events for those with email alerts enabled.
// Delivery is a collaborator concern; the sweep only finds and records them.
package alerter

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"baatrack/internal/compliance"
	"baatrack/internal/ports"
)

type Runner struct {
	repo   ports.AgreementRepository
	clock  clockwork.Clock
	window time.Duration
	log    *slog.Logger
}

func New(repo ports.AgreementRepository, clock clockwork.Clock, window time.Duration, log *slog.Logger) *Runner {
	return &Runner{repo: repo, clock: clock, window: window, log: log}
}

// Run sweeps once immediately, then on every tick until the context ends.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	r.Sweep(ctx)
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Sweep(ctx)
		}
	}
}

// Sweep finds alert-enabled agreements expiring within the window and logs
// one alert event each. Already-expired agreements are skipped; the
// compliance report covers those.
func (r *Runner) Sweep(ctx context.Context) {
	now := r.clock.Now()
	ags, err := r.repo.ListExpiring(ctx, now.Add(r.window))
	if err != nil {
		r.log.Error("expiration sweep failed", "err", err)
		return
	}
	for _, ag := range ags {
		days := compliance.DaysUntil(ag.ExpirationDate, now)
		if days <= 0 {
			continue
		}
		r.log.Info("expiration alert",
			"agreement", ag.Name,
			"counterparty", ag.Counterparty,
			"days_until_expiration", days,
			"expiration_date", ag.ExpirationDate.Format("2006-01-02"),
		)
	}
}
