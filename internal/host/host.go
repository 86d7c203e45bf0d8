// Package host declares the narrow slice of the host simulation API the
// controller bridge consumes: object tags and data, unit factors,
// instantaneous time-history samples and an error channel.
package host

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrValueNotAvailable is returned for a data field that exists but has
	// no value in the current model configuration.
	ErrValueNotAvailable = errors.New("host: value not available")

	// ErrNotFound is returned for unknown objects, data names or variables.
	ErrNotFound = errors.New("host: not found")
)

// ObjectID identifies a host object for the lifetime of a model. It is a
// lookup key only.
type ObjectID uint64

type ObjectType int

const (
	TypeUnknown ObjectType = iota
	TypeGeneral
	TypeEnvironment
	TypeTurbine
	TypeConstraint
	TypeVessel
)

func (t ObjectType) String() string {
	switch t {
	case TypeGeneral:
		return "general"
	case TypeEnvironment:
		return "environment"
	case TypeTurbine:
		return "turbine"
	case TypeConstraint:
		return "constraint"
	case TypeVessel:
		return "vessel"
	default:
		return "unknown"
	}
}

// Extra qualifies a time-history request: a blade for turbine results, a
// position for environment results.
type Extra struct {
	Blade    int
	Position r3.Vec
}

// Blade returns the Extra selecting blade n (1-based).
func Blade(n int) Extra { return Extra{Blade: n} }

// At returns the Extra selecting a global position.
func At(p r3.Vec) Extra { return Extra{Position: p} }

type Object interface {
	ID() ObjectID
	Name() string
	Type() ObjectType

	// Tag returns a user tag and whether it is set.
	Tag(name string) (string, bool)

	DataNameValid(name string) bool
	DataString(name string) (string, error)
	DataInteger(name string) (int, error)
	DataDouble(name string) (float64, error)

	// UnitsConversionFactor converts SI values of the given dimension
	// (e.g. "FF.LL") into the model's unit system.
	UnitsConversionFactor(units string) (float64, error)

	// Sample returns the instantaneous value of a result variable.
	Sample(variable string, extra Extra) (float64, error)
}

type Model interface {
	FileName() string
	Directory() string
	SimulationStartTime() float64
	General() Object
	Environment() Object
	ObjectCalled(name string) (Object, error)
}

// Reporter is the host's error channel for the current step.
type Reporter interface {
	ReportError(obj Object, msg string)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(obj Object, msg string)

func (f ReporterFunc) ReportError(obj Object, msg string) { f(obj, msg) }
