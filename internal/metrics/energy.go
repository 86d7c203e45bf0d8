package metrics

import "github.com/san-kum/turbinectl/internal/sim"

// Energy integrates shaft power u[torque]·x[speed]·ratio over time and
// reports it in kWh.
type Energy struct {
	name   string
	speed  int
	torque int
	ratio  float64

	joules  float64
	lastT   float64
	lastP   float64
	samples int
}

func NewEnergy(speed, torque int, ratio float64) *Energy {
	return &Energy{
		name:   "energy_kwh",
		speed:  speed,
		torque: torque,
		ratio:  ratio,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, u sim.Control, t float64) {
	if e.speed >= len(x) || e.torque >= len(u) {
		return
	}
	p := u[e.torque] * x[e.speed] * e.ratio
	if e.samples > 0 {
		e.joules += 0.5 * (p + e.lastP) * (t - e.lastT)
	}
	e.lastT, e.lastP = t, p
	e.samples++
}

func (e *Energy) Value() float64 { return e.joules / 3.6e6 }

func (e *Energy) Reset() {
	e.joules = 0
	e.lastT = 0
	e.lastP = 0
	e.samples = 0
}
