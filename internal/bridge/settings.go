package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/turbinectl/internal/host"
	"github.com/san-kum/turbinectl/internal/module"
	"github.com/san-kum/turbinectl/internal/record"
)

// Tags read from the turbine object.
const (
	TagShareable = "ControllerDLLCanBeShared"
	TagActuator  = "UseActuator"
	TagAccelRef  = "AccelRefPosRrtTurbine"
	TagOmega     = "ActuatorOmega"
	TagGamma     = "ActuatorGamma"
	TagModule    = "ControllerDLL"
	TagInputFile = "InputFile"
)

// Unit dimensions requested from the turbine's unit system.
const (
	UnitsMoment       = "FF.LL"
	UnitsVelocity     = "LL.TT^-1"
	UnitsAcceleration = "LL.TT^-2"
)

// Settings is the configuration captured once when a controller is created.
type Settings struct {
	Shareable        bool
	UseActuator      bool
	IndividualPitch  bool
	ControlledBlades int

	AccelRef    r3.Vec
	HasAccelRef bool

	ActuatorOmega float64
	ActuatorGamma float64

	ModulePath string
	InputFile  string
	OutputName string

	TimeStep  float64
	StartTime float64

	MomentScale       float64
	VelocityScale     float64
	AccelerationScale float64
}

// ReadSettings validates the turbine's data and tags and resolves paths
// against the model directory.
func ReadSettings(model host.Model, turbine host.Object) (Settings, error) {
	var s Settings
	name := turbine.Name()

	if turbine.Type() != host.TypeTurbine {
		return s, configError(name, "%s is a %s object; controllers can only be attached to turbines", name, turbine.Type())
	}

	if err := s.readBlades(turbine); err != nil {
		return s, err
	}

	var err error
	if s.Shareable, err = boolTag(turbine, TagShareable); err != nil {
		return s, err
	}
	if s.UseActuator, err = boolTag(turbine, TagActuator); err != nil {
		return s, err
	}
	if raw, ok := turbine.Tag(TagAccelRef); ok {
		if s.AccelRef, err = parseVector(raw); err != nil {
			return s, configError(name, "%s tag: %v", TagAccelRef, err)
		}
		s.HasAccelRef = true
	}

	s.StartTime = model.SimulationStartTime()
	if s.TimeStep, err = timeStep(model.General()); err != nil {
		return s, configError(name, "%v", err)
	}

	if s.MomentScale, err = turbine.UnitsConversionFactor(UnitsMoment); err != nil {
		return s, configError(name, "units %s: %v", UnitsMoment, err)
	}
	if s.VelocityScale, err = turbine.UnitsConversionFactor(UnitsVelocity); err != nil {
		return s, configError(name, "units %s: %v", UnitsVelocity, err)
	}
	if s.AccelerationScale, err = turbine.UnitsConversionFactor(UnitsAcceleration); err != nil {
		return s, configError(name, "units %s: %v", UnitsAcceleration, err)
	}

	if s.UseActuator {
		if s.ActuatorOmega, err = floatTag(turbine, TagOmega); err != nil {
			return s, err
		}
		if s.ActuatorGamma, err = floatTag(turbine, TagGamma); err != nil {
			return s, err
		}
	}

	dll, ok := turbine.Tag(TagModule)
	if !ok || strings.TrimSpace(dll) == "" {
		return s, configError(name, "%s tag must be defined", TagModule)
	}
	s.ModulePath = resolve(model.Directory(), dll)
	if in, ok := turbine.Tag(TagInputFile); ok {
		s.InputFile = resolve(model.Directory(), in)
	}
	s.OutputName = OutputName(model.FileName(), name)
	return s, nil
}

func (s *Settings) readBlades(turbine host.Object) error {
	name := turbine.Name()
	if !turbine.DataNameValid("PitchControlMode") {
		return configError(name, "%s: turbine data has no pitch control mode; host versions without per-blade pitch control are not supported", name)
	}
	mode, err := turbine.DataString("PitchControlMode")
	if err != nil {
		return configError(name, "pitch control mode: %v", err)
	}
	if mode == "Common" {
		s.ControlledBlades = 1
		return nil
	}
	s.IndividualPitch = true
	if s.ControlledBlades, err = turbine.DataInteger("BladeCount"); err != nil {
		return configError(name, "blade count: %v", err)
	}
	if s.ControlledBlades > record.MaxBlades {
		return configError(name, "%s must not use pitch control on more than %d blades", name, record.MaxBlades)
	}
	if s.ControlledBlades < 1 {
		return configError(name, "%s has no blades to control", name)
	}
	return nil
}

// OutputName is the output path handed to the module: the model file
// without extension, the turbine name and five spaces for the module to
// overwrite with its own suffix.
func OutputName(modelFile, turbine string) string {
	base := strings.TrimSuffix(modelFile, filepath.Ext(modelFile))
	return fmt.Sprintf("%s_%s_     ", base, turbine)
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) || module.IsBuiltin(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func timeStep(general host.Object) (float64, error) {
	for _, name := range []string{"ActualOuterTimeStep", "ImplicitConstantTimeStep"} {
		dt, err := general.DataDouble(name)
		if err != nil {
			continue
		}
		if !(dt > 0) || math.IsInf(dt, 0) {
			return 0, fmt.Errorf("%s must be positive, got %g", name, dt)
		}
		return dt, nil
	}
	return 0, errors.New("turbine controllers require a constant time step")
}

func boolTag(obj host.Object, tag string) (bool, error) {
	v, ok := obj.Tag(tag)
	if !ok {
		return false, nil
	}
	switch v {
	case "True":
		return true, nil
	case "False":
		return false, nil
	}
	return false, configError(obj.Name(), "unrecognised value for %s: %q", tag, v)
}

func floatTag(obj host.Object, tag string) (float64, error) {
	v, ok := obj.Tag(tag)
	if !ok {
		return 0, configError(obj.Name(), "%s tag must be defined", tag)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, configError(obj.Name(), "%s tag: %q is not a number", tag, v)
	}
	return f, nil
}

func parseVector(raw string) (r3.Vec, error) {
	var xs []float64
	if err := json.Unmarshal([]byte(raw), &xs); err != nil {
		return r3.Vec{}, fmt.Errorf("expected a JSON array of three numbers: %w", err)
	}
	if len(xs) != 3 {
		return r3.Vec{}, fmt.Errorf("expected three components, got %d", len(xs))
	}
	return r3.Vec{X: xs[0], Y: xs[1], Z: xs[2]}, nil
}
