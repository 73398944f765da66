package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/binotree/config"
	"github.com/alejandrodnm/binotree/internal/adapters/notify"
	"github.com/alejandrodnm/binotree/internal/adapters/storage"
	"github.com/alejandrodnm/binotree/internal/application/pricing"
	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/alejandrodnm/binotree/internal/ports"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run devuelve el código de salida en lugar de llamar a os.Exit, para que los
// defer (cierre del storage, cancelación del contexto) se ejecuten siempre.
func run(args []string) int {
	fs := flag.NewFlagSet("binotree", flag.ContinueOnError)
	configPath := fs.String("config", "config/config.yaml", "path to config file")
	optType := fs.String("type", "", "option type: call|put (overrides config)")
	s0 := fs.Float64("s0", 0, "initial underlying price")
	k := fs.Float64("k", 0, "strike price")
	r := fs.Float64("r", 0, "annual risk-free rate, continuously compounded")
	t := fs.Float64("t", 0, "time to maturity in years")
	sigma := fs.Float64("sigma", 0, "annual volatility")
	n := fs.Int("n", 0, "number of time steps")
	sweep := fs.Bool("sweep", false, "price call and put across the configured strike grid")
	history := fs.Bool("history", false, "list stored runs within the history window")
	runID := fs.String("run", "", "show a stored run by id")
	table := fs.Bool("table", false, "always print the full lattice")
	noStore := fs.Bool("no-store", false, "do not persist runs")
	verbose := fs.Bool("verbose", false, "set log level to debug")
	logFormat := fs.String("format", "", "log format: text|json (overrides config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		return 1
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	// Solo los flags presentes en la línea de comandos sobreescriben la config.
	params := cfg.Option
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "type":
			params.Type, parseErr = domain.ParseOptionType(*optType)
		case "s0":
			params.S0 = *s0
		case "k":
			params.K = *k
		case "r":
			params.R = *r
		case "t":
			params.T = *t
		case "sigma":
			params.Sigma = *sigma
		case "n":
			params.N = *n
		}
	})
	if parseErr != nil {
		slog.Error("invalid flag", "err", parseErr)
		return 2
	}

	slog.Debug("binotree starting",
		"config", *configPath,
		"params", fmt.Sprintf("%+v", params),
		"max_steps", cfg.Engine.MaxSteps,
		"sweep", *sweep,
		"history", *history,
	)

	var store ports.Storage
	if cfg.Storage.Enabled && !*noStore {
		s, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			return 1
		}
		defer func() {
			if err := s.Close(); err != nil {
				slog.Warn("failed to close storage", "err", err)
			}
		}()
		store = s
	}

	console := notify.NewConsole(cfg.Display.LabelMaxSteps, *table || cfg.Display.Table)

	svcCfg := pricing.DefaultConfig()
	svcCfg.SweepWorkers = cfg.Sweep.Workers
	svcCfg.SweepMaxPerSec = cfg.Sweep.MaxPerSecond
	svcCfg.SweepBurst = cfg.Sweep.Burst
	svcCfg.PersistSweeps = cfg.Sweep.Persist

	svc := pricing.New(svcCfg, domain.NewEngine(cfg.Engine.MaxSteps), console, store)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *history:
		err = runHistory(ctx, svc, console, cfg)
	case *runID != "":
		if _, err = svc.Replay(ctx, *runID); err != nil {
			slog.Error("replay failed", "err", err, "id", *runID)
		}
	case *sweep:
		err = runSweep(ctx, svc, params, cfg.Sweep)
	default:
		err = runPrice(ctx, svc, params)
	}
	if err != nil {
		return exitCode(err)
	}
	return 0
}

func runPrice(ctx context.Context, svc *pricing.Service, params domain.OptionParameters) error {
	_, id, err := svc.Price(ctx, params)
	if err != nil {
		logPricingError(err, params)
		return err
	}
	if id != "" {
		slog.Info("run stored", "id", id)
	}
	return nil
}

func runHistory(ctx context.Context, svc *pricing.Service, console *notify.Console, cfg *config.Config) error {
	runs, err := svc.History(ctx, cfg.HistoryWindow())
	if err != nil {
		slog.Error("history failed", "err", err)
		return err
	}
	console.PrintHistory(runs)
	return nil
}

// logPricingError distingue los errores de parámetros de los de mercado degenerado.
func logPricingError(err error, params domain.OptionParameters) {
	var pe *domain.ParameterError
	switch {
	case errors.As(err, &pe):
		slog.Error("invalid parameter", "param", pe.Param, "value", pe.Value, "reason", pe.Reason)
	case errors.Is(err, domain.ErrDegenerateVolatility), errors.Is(err, domain.ErrNumericOverflow):
		slog.Error("cannot price option", "err", err, "sigma", params.Sigma, "t", params.T, "n", params.N)
	default:
		slog.Error("pricing failed", "err", err)
	}
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrInvalidParameter) {
		return 2
	}
	return 1
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
