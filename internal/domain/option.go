package domain

import (
	"fmt"
	"math"
	"strings"
)

// MaxSteps es el límite por defecto de pasos del árbol.
// El coste es O(N²) en tiempo y memoria; 5000 pasos son ~12.5M nodos.
const MaxSteps = 5000

// OptionType es el tipo de opción europea.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType convierte "call"/"put" (sin distinguir mayúsculas) a OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch OptionType(strings.ToLower(strings.TrimSpace(s))) {
	case Call:
		return Call, nil
	case Put:
		return Put, nil
	}
	return "", &ParameterError{Param: "optionType", Value: s, Reason: "must be call or put"}
}

// String devuelve el nombre del tipo.
func (t OptionType) String() string { return string(t) }

// Title devuelve el tipo con la primera letra en mayúscula ("Call", "Put").
func (t OptionType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// OptionParameters es el conjunto de parámetros de un cálculo. Inmutable por cálculo.
type OptionParameters struct {
	S0    float64    `yaml:"s0"`    // precio inicial del subyacente
	K     float64    `yaml:"k"`     // strike
	R     float64    `yaml:"r"`     // tasa libre de riesgo anual, compuesta continua
	T     float64    `yaml:"t"`     // vencimiento en años
	Sigma float64    `yaml:"sigma"` // volatilidad anual
	N     int        `yaml:"n"`     // número de pasos
	Type  OptionType `yaml:"type"`
}

// Validate comprueba los parámetros y devuelve un *ParameterError con el
// parámetro ofensivo. Usa maxSteps <= 0 para aplicar MaxSteps.
//
// Sigma == 0 NO es un error de parámetro: se reporta como ErrDegenerateVolatility
// al derivar las constantes del modelo.
func (p OptionParameters) Validate(maxSteps int) error {
	if maxSteps <= 0 {
		maxSteps = MaxSteps
	}
	switch {
	case !positive(p.S0):
		return invalid("S0", p.S0, "must be a finite number > 0")
	case !positive(p.K):
		return invalid("K", p.K, "must be a finite number > 0")
	case !finite(p.R):
		return invalid("r", p.R, "must be finite")
	case !positive(p.T):
		return invalid("T", p.T, "must be a finite number > 0")
	case !finite(p.Sigma) || p.Sigma < 0:
		return invalid("sigma", p.Sigma, "must be a finite number >= 0")
	case p.N < 0:
		return invalid("N", p.N, "must be >= 0")
	case p.N > maxSteps:
		return invalid("N", p.N, fmt.Sprintf("must be <= %d", maxSteps))
	}
	if p.Type != Call && p.Type != Put {
		return invalid("optionType", p.Type, "must be call or put")
	}
	return nil
}

// WithType devuelve una copia de los parámetros con otro tipo de opción.
func (p OptionParameters) WithType(t OptionType) OptionParameters {
	p.Type = t
	return p
}

// WithStrike devuelve una copia de los parámetros con otro strike.
func (p OptionParameters) WithStrike(k float64) OptionParameters {
	p.K = k
	return p
}

// Payoff devuelve el valor intrínseco al vencimiento.
func Payoff(t OptionType, spot, strike float64) float64 {
	if t == Put {
		return math.Max(strike-spot, 0)
	}
	return math.Max(spot-strike, 0)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }

func invalid(param string, value any, reason string) error {
	return &ParameterError{Param: param, Value: value, Reason: reason}
}
