package pricing

// sweep.go: worker pool para valorar un mismo contrato sobre una rejilla de strikes.
//
// Cada valoración es independiente y el motor no tiene estado mutable, así que
// los workers no comparten nada salvo los canales. El rate limiter opcional
// acota el throughput cuando el barrido corre junto a otros procesos.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alejandrodnm/binotree/internal/domain"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/floats"
)

// StrikeGrid devuelve n strikes equiespaciados en [from, to].
func StrikeGrid(from, to float64, n int) ([]float64, error) {
	switch {
	case n < 1:
		return nil, fmt.Errorf("pricing.StrikeGrid: count must be >= 1, got %d", n)
	case from <= 0 || to <= 0:
		return nil, fmt.Errorf("pricing.StrikeGrid: strikes must be > 0, got [%v, %v]", from, to)
	case to < from:
		return nil, fmt.Errorf("pricing.StrikeGrid: empty range [%v, %v]", from, to)
	case n == 1:
		return []float64{from}, nil
	}
	return floats.Span(make([]float64, n), from, to), nil
}

// Sweep valora call y put de base para cada strike en paralelo.
// Los puntos se devuelven ordenados por strike; un strike que falla lleva Err
// y no aborta el resto. Devuelve ctx.Err() si el contexto se cancela.
func (s *Service) Sweep(ctx context.Context, base domain.OptionParameters, strikes []float64) ([]domain.SweepPoint, error) {
	start := time.Now()
	points, err := s.sweepConcurrent(ctx, base, strikes)
	if err != nil {
		return nil, fmt.Errorf("pricing.Sweep: %w", err)
	}

	slog.Debug("sweep complete",
		"strikes", len(strikes),
		"points", len(points),
		"elapsed", time.Since(start),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifySweep(ctx, points); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if s.cfg.PersistSweeps && s.storage != nil {
		s.persistSweep(ctx, points)
	}
	return points, nil
}

func (s *Service) sweepConcurrent(ctx context.Context, base domain.OptionParameters, strikes []float64) ([]domain.SweepPoint, error) {
	workers := s.cfg.SweepWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(strikes) {
		workers = len(strikes)
	}

	var limiter *rate.Limiter
	if s.cfg.SweepMaxPerSec > 0 {
		burst := s.cfg.SweepBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.cfg.SweepMaxPerSec), burst)
	}

	workCh := make(chan float64)
	resultCh := make(chan domain.SweepPoint, len(strikes))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range workCh {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				resultCh <- s.pricePair(base, k)
			}
		}()
	}

	// Alimentar el work channel hasta terminar o hasta que se cancele el contexto.
feed:
	for _, k := range strikes {
		select {
		case <-ctx.Done():
			break feed
		case workCh <- k:
		}
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	points := make([]domain.SweepPoint, 0, len(strikes))
	for pt := range resultCh {
		points = append(points, pt)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Strike < points[j].Strike })
	return points, nil
}

// pricePair valora call y put para un strike.
func (s *Service) pricePair(base domain.OptionParameters, strike float64) domain.SweepPoint {
	pt := domain.SweepPoint{Strike: strike}
	params := base.WithStrike(strike)

	call, err := s.pricer.Price(params.WithType(domain.Call))
	if err != nil {
		slog.Debug("sweep pricing failed", "strike", strike, "type", domain.Call, "err", err)
		pt.Err = err
		return pt
	}
	put, err := s.pricer.Price(params.WithType(domain.Put))
	if err != nil {
		slog.Debug("sweep pricing failed", "strike", strike, "type", domain.Put, "err", err)
		pt.Err = err
		return pt
	}
	pt.Call, pt.Put = call, put
	return pt
}

func (s *Service) persistSweep(ctx context.Context, points []domain.SweepPoint) {
	saved := 0
	for _, pt := range points {
		if pt.Err != nil {
			continue
		}
		for _, res := range []domain.PricingResult{pt.Call, pt.Put} {
			if _, err := s.storage.SaveRun(ctx, res); err != nil {
				slog.Warn("storage error", "strike", pt.Strike, "err", err)
				continue
			}
			saved++
		}
	}
	slog.Debug("sweep stored", "runs", saved)
}
