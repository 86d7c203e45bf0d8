package integrators

import "github.com/san-kum/turbinectl/internal/sim"

// Euler is the explicit first-order step; it is cheap but needs a time step
// well below the tower period.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	next := x.Clone()
	for i, d := range dyn.Derivative(x, u, t) {
		next[i] += dt * d
	}
	return next
}
