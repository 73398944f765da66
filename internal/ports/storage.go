package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/binotree/internal/domain"
)

// Storage persiste los cálculos junto con su retículo completo.
type Storage interface {
	// SaveRun guarda un resultado y devuelve el ID asignado.
	SaveRun(ctx context.Context, result domain.PricingResult) (string, error)

	// GetRun reconstruye un cálculo con su retículo. domain.ErrRunNotFound si no existe.
	GetRun(ctx context.Context, id string) (domain.Run, error)

	// ListRuns devuelve las cabeceras (sin retículo) creadas en el rango dado.
	ListRuns(ctx context.Context, from, to time.Time) ([]domain.Run, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
