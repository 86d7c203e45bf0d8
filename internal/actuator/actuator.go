// Package actuator models a blade pitch drive as a linear second-order
// system sampled with a fixed time step.
//
// The continuous system
//
//	x'' + 2γω x' + ω² x = ω² u
//
// is discretised assuming u varies linearly over each step, which gives a
// closed-form transition from the previous state and input:
//
//	[x, x', x'']ₙ = A·[x, x']ₙ₋₁ + B·[u', u]ₙ₋₁
//
// A and B depend only on ω, γ and Δt and are computed once in [New].
package actuator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDamping is returned when the damping ratio is outside (0, 1).
	ErrDamping = errors.New("actuator: damping ratio must be in (0, 1)")

	// ErrParameter is returned for a non-positive or non-finite frequency or time step.
	ErrParameter = errors.New("actuator: parameter out of valid bounds")
)

// State is the output of one actuator evaluation.
type State struct {
	Position     float64
	Velocity     float64
	Acceleration float64
}

type Model struct {
	omega float64
	gamma float64
	dt    float64
	f, g  float64

	a *mat.Dense
	b *mat.Dense

	prev  State
	uPrev float64

	hist *mat.VecDense
	in   *mat.VecDense
	out  *mat.VecDense
	tmp  *mat.VecDense
}

// New builds an actuator with natural frequency omega (rad/s), damping
// ratio gamma and time step dt (s). The model starts at rest with zero input.
func New(omega, gamma, dt float64) (*Model, error) {
	if math.IsNaN(gamma) || gamma <= 0 || gamma >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrDamping, gamma)
	}
	if !(omega > 0) || math.IsInf(omega, 0) {
		return nil, fmt.Errorf("%w: omega %g", ErrParameter, omega)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: dt %g", ErrParameter, dt)
	}

	beta := math.Sqrt(1 - gamma*gamma)
	decay := math.Exp(-gamma * omega * dt)
	s, c := math.Sincos(beta * omega * dt)
	g := decay * s / (beta * omega)
	f := decay * (gamma*s/beta + c)

	w2 := omega * omega
	g2w := 2 * gamma * omega

	a := mat.NewDense(3, 2, []float64{
		f, g,
		-g * w2, f - g2w*g,
		(g2w*g - f) * w2, (4*gamma*gamma-1)*w2*g - g2w*f,
	})
	b := mat.NewDense(3, 2, []float64{
		2*gamma*(f-1)/omega + dt - g, 1 - f,
		1 - f, g * w2,
		w2 * g, -(g2w*g - f) * w2,
	})

	return &Model{
		omega: omega,
		gamma: gamma,
		dt:    dt,
		f:     f,
		g:     g,
		a:     a,
		b:     b,
		hist:  mat.NewVecDense(2, nil),
		in:    mat.NewVecDense(2, nil),
		out:   mat.NewVecDense(3, nil),
		tmp:   mat.NewVecDense(3, nil),
	}, nil
}

// Evaluate advances the actuator by one time step with commanded input u
// and returns the new state. Each call is one step.
func (m *Model) Evaluate(u float64) State {
	udot := (u - m.uPrev) / m.dt

	m.hist.SetVec(0, m.prev.Position)
	m.hist.SetVec(1, m.prev.Velocity)
	m.in.SetVec(0, udot)
	m.in.SetVec(1, m.uPrev)

	m.out.MulVec(m.a, m.hist)
	m.tmp.MulVec(m.b, m.in)
	m.out.AddVec(m.out, m.tmp)

	next := State{
		Position:     m.out.AtVec(0),
		Velocity:     m.out.AtVec(1),
		Acceleration: m.out.AtVec(2),
	}
	m.prev = next
	m.uPrev = u
	return next
}

// Coefficients returns the precomputed f and g terms.
func (m *Model) Coefficients() (f, g float64) { return m.f, m.g }
