package domain

import "time"

// Run es un cálculo persistido.
type Run struct {
	ID        string
	CreatedAt time.Time
	Result    PricingResult
}

// SweepPoint es el par call/put valorado para un strike dentro de un barrido.
// Err != nil si alguna de las dos valoraciones falló.
type SweepPoint struct {
	Strike float64
	Call   PricingResult
	Put    PricingResult
	Err    error
}
