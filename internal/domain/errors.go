package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter agrupa todos los errores de validación de parámetros.
	ErrInvalidParameter = errors.New("invalid option parameter")

	// ErrDegenerateVolatility se devuelve cuando u == d y la probabilidad
	// neutral al riesgo no está definida (división por cero).
	ErrDegenerateVolatility = errors.New("degenerate volatility: up and down factors coincide")

	// ErrNumericOverflow se devuelve cuando el retículo sale del rango de float64
	// (σ·√(T·N) por encima de ~709).
	ErrNumericOverflow = errors.New("numeric overflow: lattice values exceed float64 range")

	// ErrRunNotFound se devuelve cuando un cálculo persistido no existe.
	ErrRunNotFound = errors.New("pricing run not found")
)

// ParameterError nombra el parámetro que falló la validación.
type ParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidParameter).
func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }
