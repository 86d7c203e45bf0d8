package hostsim

import (
	"math"

	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/sim"
)

// State layout.
const (
	StateAzimuth = iota
	StateRotorSpeed
	StateTowerX
	StateTowerV
	stateDim
)

// Control layout: collective pitch (rad), generator torque on the high
// speed shaft (N·m) and the rotor-normal hub wind speed (m/s).
const (
	ControlPitch = iota
	ControlTorque
	ControlWind
	controlDim
)

// Plant is a rigid drivetrain on a single fore-aft tower mode:
//
//	J ω' = Qaero − N Qgen
//	m x'' + c x' + k x = T
//
// with rotor loads evaluated at the wind seen by the moving nacelle.
type Plant struct {
	Rotor   Rotor
	Inertia float64
	Gearbox float64

	TowerMass      float64
	TowerStiffness float64
	TowerDamping   float64
}

func NewPlant(t config.TurbineConfig, airDensity float64) *Plant {
	wn := 2 * math.Pi * t.TowerFrequency
	return &Plant{
		Rotor:          Rotor{Radius: t.RotorRadius, AirDensity: airDensity},
		Inertia:        t.RotorInertia,
		Gearbox:        t.GearboxRatio,
		TowerMass:      t.TowerMass,
		TowerStiffness: t.TowerMass * wn * wn,
		TowerDamping:   2 * t.TowerDamping * t.TowerMass * wn,
	}
}

func (p *Plant) StateDim() int   { return stateDim }
func (p *Plant) ControlDim() int { return controlDim }

func (p *Plant) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	omega, tx, tv := x[StateRotorSpeed], x[StateTowerX], x[StateTowerV]
	aero, thrust := p.Rotor.Loads(omega, u[ControlPitch], u[ControlWind]-tv)

	dx := make(sim.State, stateDim)
	dx[StateAzimuth] = omega
	dx[StateRotorSpeed] = (aero - p.Gearbox*u[ControlTorque]) / p.Inertia
	dx[StateTowerX] = tv
	dx[StateTowerV] = (thrust - p.TowerDamping*tv - p.TowerStiffness*tx) / p.TowerMass
	return dx
}

// EquilibriumTorque is the generator torque (N·m) balancing the aerodynamic
// torque at the given operating point.
func (p *Plant) EquilibriumTorque(omega, pitch, wind float64) float64 {
	aero, _ := p.Rotor.Loads(omega, pitch, wind)
	return aero / p.Gearbox
}
