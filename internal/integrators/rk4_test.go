package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/turbinectl/internal/sim"
)

// towerMode is an undamped fore-aft mode x'' = -w^2 x driven by a constant
// thrust u[0] per unit mass.
type towerMode struct{ w float64 }

func (m towerMode) StateDim() int   { return 2 }
func (m towerMode) ControlDim() int { return 1 }
func (m towerMode) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return sim.State{x[1], u[0] - m.w*m.w*x[0]}
}

func integrate(integ sim.Integrator, dyn sim.Dynamics, x sim.State, u sim.Control, dt float64, steps int) sim.State {
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, u, float64(i)*dt, dt)
	}
	return x
}

func TestTowerModeAccuracy(t *testing.T) {
	w := 2 * math.Pi * 0.32
	force := 0.5
	static := force / (w * w)
	dt := 0.05
	steps := 200
	tEnd := dt * float64(steps)

	wantX := static * (1 - math.Cos(w*tEnd))
	wantV := static * w * math.Sin(w*tEnd)

	errs := make(map[string]float64)
	for _, name := range Names() {
		integ, err := Get(name)
		if err != nil {
			t.Fatal(err)
		}
		x := integrate(integ, towerMode{w}, sim.State{0, 0}, sim.Control{force}, dt, steps)
		errs[name] = math.Hypot(x[0]-wantX, (x[1]-wantV)/w)
	}

	if errs["rk4"] > 1e-4*static {
		t.Errorf("rk4 error too large: %g", errs["rk4"])
	}
	if errs["euler"] <= errs["rk4"] {
		t.Errorf("expected euler (%g) to be less accurate than rk4 (%g)", errs["euler"], errs["rk4"])
	}
}

func TestRK4Order(t *testing.T) {
	w := 1.0
	errAt := func(dt float64) float64 {
		steps := int(math.Round(2 / dt))
		x := integrate(NewRK4(), towerMode{w}, sim.State{1, 0}, sim.Control{0}, dt, steps)
		return math.Abs(x[0] - math.Cos(2))
	}
	// halving dt cuts a fourth-order error by about 16
	ratio := errAt(0.1) / errAt(0.05)
	if ratio < 12 || ratio > 20 {
		t.Errorf("expected fourth-order convergence, error ratio %.2f", ratio)
	}
}

func TestEulerStep(t *testing.T) {
	x0 := sim.State{1, 0}
	x := NewEuler().Step(towerMode{1}, x0, sim.Control{0}, 0, 0.1)
	if x[0] != 1 || math.Abs(x[1]+0.1) > 1e-15 {
		t.Errorf("unexpected euler step %v", x)
	}
	if x0[1] != 0 {
		t.Error("euler step modified its input")
	}
}

func TestGet(t *testing.T) {
	for _, name := range Names() {
		if _, err := Get(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := Get("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}
