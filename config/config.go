package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alejandrodnm/binotree/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de binotree.
type Config struct {
	Option  domain.OptionParameters `yaml:"option"`
	Engine  EngineConfig            `yaml:"engine"`
	Display DisplayConfig           `yaml:"display"`
	Sweep   SweepConfig             `yaml:"sweep"`
	Storage StorageConfig           `yaml:"storage"`
	Log     LogConfig               `yaml:"log"`
}

// EngineConfig controla los límites del motor.
type EngineConfig struct {
	MaxSteps int `yaml:"max_steps"` // cota de N; el coste es O(N²)
}

// DisplayConfig controla la salida por consola.
type DisplayConfig struct {
	LabelMaxSteps int  `yaml:"label_max_steps"` // por encima no se etiquetan los nodos
	Table         bool `yaml:"table"`           // imprimir siempre el retículo completo
}

// SweepConfig controla el barrido de strikes.
type SweepConfig struct {
	Workers      int     `yaml:"workers"`        // 0 = NumCPU
	MaxPerSecond float64 `yaml:"max_per_second"` // 0 = sin límite
	Burst        int     `yaml:"burst"`
	StrikeFrom   float64 `yaml:"strike_from"`
	StrikeTo     float64 `yaml:"strike_to"`
	StrikeCount  int     `yaml:"strike_count"`
	Persist      bool    `yaml:"persist"`
}

// StorageConfig controla dónde se persisten los cálculos.
type StorageConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DSN          string `yaml:"dsn"`           // ruta al archivo SQLite, o ":memory:"
	HistoryHours int    `yaml:"history_hours"` // ventana de -history
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Si path no existe se usan los valores por defecto.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{Option: DefaultOption()}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// sin archivo: solo defaults y env
	case err != nil:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	return &cfg, nil
}

// HistoryWindow devuelve la ventana de historial como time.Duration.
func (c *Config) HistoryWindow() time.Duration {
	return time.Duration(c.Storage.HistoryHours) * time.Hour
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BINOTREE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("BINOTREE_MAX_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BINOTREE_MAX_STEPS=%q: %w", v, err)
		}
		cfg.Engine.MaxSteps = n
	}
	return nil
}

// DefaultOption devuelve el contrato de ejemplo: S0=100, K=100, r=5%, T=1, σ=20%, N=3, call.
// Se aplica antes de leer el YAML para que las keys ausentes conserven estos valores
// y un cero explícito (σ: 0, n: 0) llegue tal cual al motor.
func DefaultOption() domain.OptionParameters {
	return domain.OptionParameters{S0: 100, K: 100, R: 0.05, T: 1, Sigma: 0.2, N: 3, Type: domain.Call}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	o := &cfg.Option
	if cfg.Engine.MaxSteps <= 0 {
		cfg.Engine.MaxSteps = domain.MaxSteps
	}
	if cfg.Display.LabelMaxSteps <= 0 {
		cfg.Display.LabelMaxSteps = 5
	}
	if cfg.Sweep.Burst <= 0 {
		cfg.Sweep.Burst = 1
	}
	if cfg.Sweep.StrikeCount <= 0 {
		cfg.Sweep.StrikeCount = 9
	}
	if cfg.Sweep.StrikeFrom <= 0 {
		cfg.Sweep.StrikeFrom = o.S0 * 0.8
	}
	if cfg.Sweep.StrikeTo <= 0 {
		cfg.Sweep.StrikeTo = o.S0 * 1.2
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "binotree.db"
	}
	if cfg.Storage.HistoryHours <= 0 {
		cfg.Storage.HistoryHours = 24
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
