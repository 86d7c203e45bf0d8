package laws

import (
	"math"

	"github.com/san-kum/turbinectl/internal/record"
)

// RampPitch ramps collective pitch along a logistic curve
// MaxPitch/(1+exp(Centre-t)), with t the absolute simulation time.
// The record carries time elapsed since the simulation start, so Start
// must hold the model's start time for Centre to be absolute; zero
// centres the ramp on elapsed time.
type RampPitch struct {
	MaxPitch float64
	Centre   float64
	Start    float64
}

func (r *RampPitch) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	if status(rec) == record.StatusFinalCall {
		accept(fail, msg)
		return
	}
	if s, ok := finite(rec, record.CurrentTime); !ok {
		reject(fail, msg, "ramp-pitch: non-finite input in record slot %d", int(s))
		return
	}
	setCollective(rec, r.MaxPitch*logistic(rec.Float(record.CurrentTime)+r.Start-r.Centre))
	accept(fail, msg)
}

// RampTorque ramps generator torque to Target (Nm) along a logistic curve.
type RampTorque struct {
	Target float64
}

func (r *RampTorque) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	if status(rec) == record.StatusFinalCall {
		accept(fail, msg)
		return
	}
	if s, ok := finite(rec, record.CurrentTime); !ok {
		reject(fail, msg, "ramp-torque: non-finite input in record slot %d", int(s))
		return
	}
	rec.Set(record.DemandedTorque, r.Target*logistic(rec.Float(record.CurrentTime)))
	accept(fail, msg)
}

// IndividualPitch drives each blade with its own scaled sinusoid.
type IndividualPitch struct {
	Amplitude float64
	Omega     float64
	Scale     [record.MaxBlades]float64
}

func NewIndividualPitch() *IndividualPitch {
	return &IndividualPitch{
		Amplitude: math.Pi,
		Omega:     math.Pi / 10,
		Scale:     [record.MaxBlades]float64{0.25, 0.5, 1.0},
	}
}

func (p *IndividualPitch) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	if status(rec) == record.StatusFinalCall {
		accept(fail, msg)
		return
	}
	if s, ok := finite(rec, record.CurrentTime, record.BladeCount, record.PitchMode); !ok {
		reject(fail, msg, "individual-pitch: non-finite input in record slot %d", int(s))
		return
	}
	if int(rec.Get(record.PitchMode)) != record.PitchModeIndividual {
		reject(fail, msg, "individual-pitch: turbine must use individual pitch control")
		return
	}
	n := int(rec.Get(record.BladeCount))
	if n > record.MaxBlades {
		n = record.MaxBlades
	}
	s := math.Sin(p.Omega * rec.Float(record.CurrentTime))
	for i := 0; i < n; i++ {
		rec.Set(record.DemandedPitch(i), p.Scale[i]*p.Amplitude*s)
	}
	accept(fail, msg)
}
