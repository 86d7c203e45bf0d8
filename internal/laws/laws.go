// Package laws provides control laws written in Go that speak the DISCON
// record protocol. They are registered under "go:" module paths so a
// turbine can be driven without a native controller library.
package laws

import (
	"fmt"
	"math"

	"github.com/san-kum/turbinectl/internal/module"
	"github.com/san-kum/turbinectl/internal/record"
)

// Register adds every law in this package to reg.
func Register(reg *module.Registry) {
	reg.Register("baseline", "NREL 5 MW baseline variable-speed, collective pitch",
		func() module.Entry { return NewBaseline(NREL5MW()) })
	reg.Register("baseline-floating", "NREL 5 MW baseline with detuned floating-platform gains",
		func() module.Entry { return NewBaseline(NREL5MWFloating()) })
	reg.Register("baseline-yaw", "NREL 5 MW baseline with a rate-limited yaw tracker",
		func() module.Entry {
			b := NewBaseline(NREL5MW())
			b.Yaw = NewYawTracker(DefaultYawParams())
			return b
		})
	reg.Register("ramp-pitch", "logistic collective pitch ramp to 90 deg centred on 10 s elapsed",
		func() module.Entry { return &RampPitch{MaxPitch: math.Pi / 2, Centre: 10} })
	reg.Register("ramp-torque", "logistic generator torque ramp to 100 kNm",
		func() module.Entry { return &RampTorque{Target: 1e5} })
	reg.Register("individual-pitch", "per-blade sinusoidal pitch, individual pitch mode only",
		func() module.Entry { return NewIndividualPitch() })
}

// Builtin returns a registry holding every law in this package.
func Builtin() *module.Registry {
	reg := module.NewRegistry()
	Register(reg)
	return reg
}

func reject(fail *int32, msg *record.Text, format string, args ...any) {
	*fail = -1
	msg.Write(fmt.Sprintf(format, args...))
}

func accept(fail *int32, msg *record.Text) {
	*fail = 0
	msg.Write("")
}

// finite checks that every listed slot holds a finite value and returns
// the first offending slot.
func finite(rec *record.Exchange, slots ...record.Slot) (record.Slot, bool) {
	for _, s := range slots {
		v := rec.Float(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return s, false
		}
	}
	return 0, true
}

func status(rec *record.Exchange) int {
	return int(math.Round(rec.Float(record.Status)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// setCollective writes the same demand to the common and per-blade slots.
func setCollective(rec *record.Exchange, pitch float64) {
	rec.Set(record.DemandedPitchCommon, pitch)
	for i := 0; i < record.MaxBlades; i++ {
		rec.Set(record.DemandedPitch(i), pitch)
	}
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
