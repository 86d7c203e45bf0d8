// Package record defines the fixed-layout exchange record and text buffers
// passed to a DISCON control-law module on every call.
//
// Slots are 1-based, matching the numbering used in controller
// documentation; [Exchange.Get] and [Exchange.Set] translate to the
// underlying array.
package record

import "fmt"

// Length is the number of float32 slots in an exchange record.
const Length = 84

// Slot is a 1-based position in the exchange record.
type Slot int

const (
	Status                Slot = 1
	CurrentTime           Slot = 2
	TimeStep              Slot = 3
	BladePitch1           Slot = 4
	ElectricalPower       Slot = 15
	GeneratorSpeed        Slot = 20
	RotorSpeed            Slot = 21
	GeneratorTorque       Slot = 23
	YawError              Slot = 24
	HubWindSpeed          Slot = 27
	PitchMode             Slot = 28
	RootMomentOutOfPlane1 Slot = 30
	BladePitch2           Slot = 33
	BladePitch3           Slot = 34
	NacelleYaw            Slot = 37
	DemandedPitch1        Slot = 42
	DemandedPitchCommon   Slot = 45
	DemandedTorque        Slot = 47
	DemandedYawRate       Slot = 48
	MessageLength         Slot = 49
	InfileLength          Slot = 50
	OutfileLength         Slot = 51
	NacelleAcceleration   Slot = 53
	RotorAzimuth          Slot = 60
	BladeCount            Slot = 61
	RootMomentInPlane1    Slot = 69
	HubMomentY            Slot = 75
	HubMomentZ            Slot = 76
	NacelleAngularAccel   Slot = 83
)

// Status values written to the Status slot.
const (
	StatusFirstCall = 0
	StatusRunning   = 1
	StatusFinalCall = -1
)

// Pitch mode flag values.
const (
	PitchModeCommon     = 0
	PitchModeIndividual = 1
)

// MaxBlades is the number of blades the record layout has pitch slots for.
const MaxBlades = 3

var bladePitch = [MaxBlades]Slot{BladePitch1, BladePitch2, BladePitch3}

// BladePitch returns the measured pitch slot for blade i (0-based).
func BladePitch(i int) Slot { return bladePitch[i] }

// DemandedPitch returns the individual pitch demand slot for blade i (0-based).
func DemandedPitch(i int) Slot { return DemandedPitch1 + Slot(i) }

// RootMomentOutOfPlane returns the out-of-plane root moment slot for blade i (0-based).
func RootMomentOutOfPlane(i int) Slot { return RootMomentOutOfPlane1 + Slot(i) }

// RootMomentInPlane returns the in-plane root moment slot for blade i (0-based).
func RootMomentInPlane(i int) Slot { return RootMomentInPlane1 + Slot(i) }

// Exchange is the swap array shared with the control-law module.
type Exchange [Length]float32

func (s Slot) index() int {
	if s < 1 || s > Length {
		panic(fmt.Sprintf("record: slot %d out of range [1, %d]", int(s), Length))
	}
	return int(s) - 1
}

func (r *Exchange) Get(s Slot) float32 {
	return r[s.index()]
}

// Set stores v in slot s, narrowing to float32.
func (r *Exchange) Set(s Slot, v float64) {
	r[s.index()] = float32(v)
}

func (r *Exchange) Float(s Slot) float64 {
	return float64(r.Get(s))
}
