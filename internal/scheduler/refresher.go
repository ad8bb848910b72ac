// Package scheduler runs the periodic market data refresh. Each tick pulls
// fresh quotes for every held or watched symbol and re-evaluates active
// price alerts against them.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stockpilot/internal/logger"
	"stockpilot/internal/services"
)

// refreshTimeout bounds one full refresh pass.
const refreshTimeout = 2 * time.Minute

// QuoteRefresher schedules quote refresh runs on a cron spec.
type QuoteRefresher struct {
	quoteService services.QuoteServicer
	alertService services.AlertServicer
	spec         string
	cron         *cron.Cron
	log          *zap.SugaredLogger
}

// NewQuoteRefresher creates a refresher for the given cron spec. An empty
// spec disables scheduling; RunOnce still works for manual runs.
func NewQuoteRefresher(quoteService services.QuoteServicer, alertService services.AlertServicer, spec string) *QuoteRefresher {
	return &QuoteRefresher{
		quoteService: quoteService,
		alertService: alertService,
		spec:         spec,
		log:          logger.Named("scheduler"),
	}
}

// Start registers the refresh job and starts the cron loop.
func (r *QuoteRefresher) Start() error {
	if r.spec == "" {
		r.log.Info("quote refresh schedule disabled")
		return nil
	}

	r.cron = cron.New()
	_, err := r.cron.AddFunc(r.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		r.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.log.Infow("quote refresh scheduled", "spec", r.spec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (r *QuoteRefresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RunOnce performs one refresh pass: fetch quotes for all active symbols,
// then re-evaluate active alerts against the new prices. Failures are
// logged, not returned; the next tick simply tries again.
func (r *QuoteRefresher) RunOnce(ctx context.Context) {
	symbols, err := r.quoteService.ActiveSymbols()
	if err != nil {
		r.log.Errorw("failed to list active symbols", "error", err)
		return
	}
	if len(symbols) == 0 {
		return
	}

	stored, degraded, err := r.quoteService.RefreshQuotes(ctx, symbols)
	if err != nil {
		r.log.Errorw("quote refresh failed", "error", err)
		return
	}
	if degraded {
		r.log.Warnw("quote refresh degraded, no new data stored", "symbols", len(symbols))
		return
	}

	triggered, err := r.alertService.EvaluateActive()
	if err != nil {
		r.log.Errorw("alert evaluation failed", "error", err)
		return
	}

	r.log.Infow("quote refresh completed",
		"symbols", len(symbols),
		"stored", stored,
		"alerts_triggered", triggered,
	)
}
