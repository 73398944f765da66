package domain

import (
	"fmt"
	"math"
)

// ModelConstants son las constantes estructurales del árbol CRR.
//
//	dt = T / N
//	u  = exp(σ·√dt)
//	d  = 1 / u                       (u·d = 1, árbol recombinante)
//	p  = (exp(r·dt) − d) / (u − d)   probabilidad neutral al riesgo de subida
//
// Con N = 0 no hay transiciones: dt = 0, u = d = 1 y P se reporta como 0.
type ModelConstants struct {
	Dt float64
	U  float64
	D  float64
	P  float64
}

// Growth devuelve exp(r·dt), el factor de capitalización de un paso.
func (c ModelConstants) Growth(r float64) float64 {
	return math.Exp(r * c.Dt)
}

// Arbitrage devuelve true si p cae fuera de [0, 1], es decir exp(r·dt) ∉ [d, u].
// El precio se sigue calculando, pero los pesos dejan de ser probabilidades.
func (c ModelConstants) Arbitrage() bool {
	return c.P < 0 || c.P > 1
}

// PricingResult es la salida completa del motor.
type PricingResult struct {
	Params      OptionParameters
	OptionPrice float64
	Lattice     Lattice
	U           float64
	D           float64
	P           float64
	Dt          float64
}

// Constants devuelve las constantes del modelo usadas en el cálculo.
func (r PricingResult) Constants() ModelConstants {
	return ModelConstants{Dt: r.Dt, U: r.U, D: r.D, P: r.P}
}

// DeriveConstants calcula dt, u, d y p. Devuelve ErrDegenerateVolatility si
// N >= 1 y u == d (σ = 0, o σ·√dt tan pequeño que exp() redondea a 1).
func DeriveConstants(params OptionParameters) (ModelConstants, error) {
	if params.N == 0 {
		return ModelConstants{U: 1, D: 1}, nil
	}

	dt := params.T / float64(params.N)
	u := math.Exp(params.Sigma * math.Sqrt(dt))
	d := 1 / u
	if u == d {
		return ModelConstants{Dt: dt, U: u, D: d}, fmt.Errorf(
			"domain.DeriveConstants: sigma=%v dt=%v: %w", params.Sigma, dt, ErrDegenerateVolatility)
	}
	p := (math.Exp(params.R*dt) - d) / (u - d)
	return ModelConstants{Dt: dt, U: u, D: d, P: p}, nil
}

// Engine es el motor de valoración binomial. Es un valor sin estado mutable:
// puede usarse desde varias goroutines a la vez.
type Engine struct {
	maxSteps int
}

// NewEngine crea un motor que rechaza N > maxSteps. maxSteps <= 0 usa MaxSteps.
func NewEngine(maxSteps int) Engine {
	if maxSteps <= 0 {
		maxSteps = MaxSteps
	}
	return Engine{maxSteps: maxSteps}
}

// MaxSteps devuelve el límite de pasos configurado.
func (e Engine) MaxSteps() int {
	if e.maxSteps <= 0 {
		return MaxSteps
	}
	return e.maxSteps
}

// Price valora una opción europea con el método Cox-Ross-Rubinstein y
// devuelve el retículo completo.
//
// Fases:
//  1. constantes dt, u, d, p
//  2. forward: S(i,j) = S0·u^j·d^(i−j)
//  3. payoff terminal max(S−K, 0) | max(K−S, 0)
//  4. backward: V(i,j) = e^(−r·dt)·(p·V(i+1,j+1) + (1−p)·V(i+1,j))
//
// Devuelve ErrNumericOverflow si el nodo más alto o la raíz no son finitos.
//
// El retículo se conserva entero (O(N²)) porque es parte del resultado.
func (e Engine) Price(params OptionParameters) (PricingResult, error) {
	if err := params.Validate(e.MaxSteps()); err != nil {
		return PricingResult{}, fmt.Errorf("domain.Price: %w", err)
	}

	c, err := DeriveConstants(params)
	if err != nil {
		return PricingResult{}, fmt.Errorf("domain.Price: %w", err)
	}

	n := params.N
	tree := newLattice(n)

	// u^j·d^(i−j) = exp((2j−i)·σ√dt); evita Inf·0 cuando u^j desborda y d^(i−j) se anula.
	move := params.Sigma * math.Sqrt(c.Dt)
	for i := 0; i <= n; i++ {
		for j := 0; j <= i; j++ {
			tree[i][j] = TreeNode{
				StockPrice: params.S0 * math.Exp(float64(2*j-i)*move),
				Step:       i,
				UpMoves:    j,
			}
		}
	}
	if top := tree[n][n].StockPrice; !finite(top) {
		return PricingResult{}, fmt.Errorf("domain.Price: sigma=%v T=%v N=%d: top node %v: %w",
			params.Sigma, params.T, n, top, ErrNumericOverflow)
	}

	for j := range tree[n] {
		tree[n][j].OptionValue = Payoff(params.Type, tree[n][j].StockPrice, params.K)
	}

	disc := math.Exp(-params.R * c.Dt)
	for i := n - 1; i >= 0; i-- {
		next := tree[i+1]
		for j := 0; j <= i; j++ {
			tree[i][j].OptionValue = disc * (c.P*next[j+1].OptionValue + (1-c.P)*next[j].OptionValue)
		}
	}

	if root := tree[0][0].OptionValue; !finite(root) {
		return PricingResult{}, fmt.Errorf("domain.Price: root value %v: %w", root, ErrNumericOverflow)
	}

	return PricingResult{
		Params:      params,
		OptionPrice: tree[0][0].OptionValue,
		Lattice:     tree,
		U:           c.U,
		D:           c.D,
		P:           c.P,
		Dt:          c.Dt,
	}, nil
}

// Price valora con el límite de pasos por defecto.
func Price(params OptionParameters) (PricingResult, error) {
	return NewEngine(MaxSteps).Price(params)
}

// ParityGap devuelve (C − P) − (S0 − K·e^(−rT)) para un par call/put con los
// mismos parámetros. En un árbol CRR es ~0 salvo error de redondeo.
func ParityGap(call, put PricingResult) float64 {
	p := call.Params
	return (call.OptionPrice - put.OptionPrice) - (p.S0 - p.K*math.Exp(-p.R*p.T))
}
