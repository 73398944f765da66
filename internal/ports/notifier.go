package ports

import (
	"context"

	"github.com/alejandrodnm/binotree/internal/domain"
)

// Notifier presenta los resultados de valoración al usuario.
type Notifier interface {
	// Notify muestra el precio, las constantes del modelo y el retículo.
	Notify(ctx context.Context, result domain.PricingResult) error

	// NotifySweep muestra un barrido de strikes ordenado por strike.
	NotifySweep(ctx context.Context, points []domain.SweepPoint) error
}
