package main

import (
	"context"
	"log/slog"

	"github.com/alejandrodnm/binotree/config"
	"github.com/alejandrodnm/binotree/internal/application/pricing"
	"github.com/alejandrodnm/binotree/internal/domain"
)

func runSweep(ctx context.Context, svc *pricing.Service, base domain.OptionParameters, cfg config.SweepConfig) error {
	strikes, err := pricing.StrikeGrid(cfg.StrikeFrom, cfg.StrikeTo, cfg.StrikeCount)
	if err != nil {
		slog.Error("invalid strike grid", "err", err)
		return err
	}

	slog.Info("=== STRIKE SWEEP ===",
		"from", cfg.StrikeFrom,
		"to", cfg.StrikeTo,
		"count", len(strikes),
		"workers", cfg.Workers,
	)

	points, err := svc.Sweep(ctx, base, strikes)
	if err != nil {
		slog.Error("sweep failed", "err", err)
		return err
	}

	failed := 0
	for _, pt := range points {
		if pt.Err != nil {
			failed++
			logPricingError(pt.Err, base.WithStrike(pt.Strike))
		}
	}
	slog.Info("sweep complete", "strikes", len(points), "failed", failed)
	return nil
}
