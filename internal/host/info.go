package host

import "gonum.org/v1/gonum/spatial/r3"

type Action int

const (
	Initialise Action = iota
	Calculate
	Finalise
)

func (a Action) String() string {
	switch a {
	case Initialise:
		return "initialise"
	case Calculate:
		return "calculate"
	case Finalise:
		return "finalise"
	default:
		return "unknown"
	}
}

// Turbine is the instantaneous state the host passes with every turbine
// calculate call. Angles in rad, rates in rad/s, lengths and velocities
// in model units.
type Turbine struct {
	BladeCount             int
	BladePitch             float64
	HorizontalHubWindSpeed float64
	RotorAngle             float64
	GeneratorAngVel        float64
	MainShaftAngVel        float64
	Position               r3.Vec
	Orientation            *r3.Mat
	Acceleration           r3.Vec
	AngularVelocity        r3.Vec
	AngularAcceleration    r3.Vec
}

// PitchValue is one blade's imposed pitch.
type PitchValue struct {
	Value        float64
	Velocity     float64
	Acceleration float64
}

// Motion is an externally calculated imposed motion.
type Motion struct {
	Orientation     *r3.Mat
	AngularVelocity r3.Vec
}

// Info is the per-call context of an external function. Data persists
// between calls for the same registration; the remaining output fields are
// filled by calculate.
type Info struct {
	Action   Action
	Model    Model
	Object   Object
	DataName string
	Time     float64
	Turbine  *Turbine

	Data any

	Value  float64
	Pitch  []PitchValue
	Motion Motion
}
