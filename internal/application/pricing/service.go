package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/alejandrodnm/binotree/internal/ports"
)

// Config contiene la configuración del servicio.
type Config struct {
	SweepWorkers   int     // <= 0 usa runtime.NumCPU()
	SweepMaxPerSec float64 // 0 = sin límite
	SweepBurst     int
	PersistSweeps  bool
}

// DefaultConfig devuelve una configuración sensata.
func DefaultConfig() Config {
	return Config{SweepBurst: 1}
}

// Service orquesta valoración, presentación y persistencia.
type Service struct {
	cfg      Config
	pricer   ports.Pricer
	notifier ports.Notifier
	storage  ports.Storage
}

// New crea un Service. notifier y storage pueden ser nil.
func New(cfg Config, pricer ports.Pricer, notifier ports.Notifier, storage ports.Storage) *Service {
	return &Service{
		cfg:      cfg,
		pricer:   pricer,
		notifier: notifier,
		storage:  storage,
	}
}

// Price valora una opción, la muestra y la persiste.
// Errores del notifier o del storage se loguean y no invalidan el precio.
// Devuelve el ID persistido ("" si no hay storage o falló la escritura).
func (s *Service) Price(ctx context.Context, params domain.OptionParameters) (domain.PricingResult, string, error) {
	start := time.Now()

	result, err := s.pricer.Price(params)
	if err != nil {
		return domain.PricingResult{}, "", fmt.Errorf("pricing.Price: %w", err)
	}

	slog.Debug("option priced",
		"type", params.Type,
		"n", params.N,
		"price", result.OptionPrice,
		"u", result.U,
		"d", result.D,
		"p", result.P,
		"elapsed", time.Since(start),
	)
	if result.Constants().Arbitrage() {
		slog.Warn("risk-neutral probability outside [0,1]",
			"p", result.P,
			"sigma", params.Sigma,
			"r", params.R,
			"dt", result.Dt,
		)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, result); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	var id string
	if s.storage != nil {
		id, err = s.storage.SaveRun(ctx, result)
		if err != nil {
			slog.Warn("storage error", "err", err)
			id = ""
		} else {
			slog.Debug("run stored", "id", id, "nodes", result.Lattice.NodeCount())
		}
	}

	return result, id, nil
}

// Replay recupera un cálculo persistido y lo vuelve a mostrar.
func (s *Service) Replay(ctx context.Context, id string) (domain.Run, error) {
	if s.storage == nil {
		return domain.Run{}, fmt.Errorf("pricing.Replay %s: storage disabled", id)
	}
	run, err := s.storage.GetRun(ctx, id)
	if err != nil {
		return domain.Run{}, fmt.Errorf("pricing.Replay: %w", err)
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, run.Result); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}
	return run, nil
}

// History devuelve las cabeceras de los cálculos de las últimas `since`.
func (s *Service) History(ctx context.Context, since time.Duration) ([]domain.Run, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("pricing.History: storage disabled")
	}
	now := time.Now()
	runs, err := s.storage.ListRuns(ctx, now.Add(-since), now)
	if err != nil {
		return nil, fmt.Errorf("pricing.History: %w", err)
	}
	return runs, nil
}
