// Package bridge couples a host turbine object to a control-law module
// speaking the DISCON record protocol.
//
// Once per distinct simulation time a Controller samples the turbine,
// fills the exchange record, calls the module and converts its demands
// back to pitch, generator torque and yaw in model units.
package bridge

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/turbinectl/internal/actuator"
	"github.com/san-kum/turbinectl/internal/geom"
	"github.com/san-kum/turbinectl/internal/host"
	"github.com/san-kum/turbinectl/internal/module"
	"github.com/san-kum/turbinectl/internal/record"
)

// Host result variables sampled each step.
const (
	varGeneratorTorque = "Generator torque"
	varBladePitch      = "Blade pitch"
	varWindDirection   = "Wind direction"
	varAzimuth         = "Azimuth"
	varRootEx          = "Root connection Ex moment"
	varRootEy          = "Root connection Ey moment"
	varHubLx           = "Connection Lx moment"
	varHubLy           = "Connection Ly moment"
)

// Data names a controller can be calculated for.
const (
	PitchController  = "PitchController"
	TorqueController = "GeneratorTorqueController"
)

type State int

const (
	Initialising State = iota
	Active
	Finalising
	Destroyed
)

func (s State) String() string {
	switch s {
	case Initialising:
		return "initialising"
	case Active:
		return "active"
	case Finalising:
		return "finalising"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

type Options struct {
	// Loader resolves module paths; module.Native{} when nil.
	Loader  module.Loader
	Logger  *zap.Logger
	TempDir string
	// Encoding names the code page for the text arguments.
	Encoding string
}

// Controller is the per-turbine bridge state machine.
type Controller struct {
	model   host.Model
	turbine host.Object
	general host.Object
	env     host.Object
	cfg     Settings
	log     *zap.Logger

	handle    *module.Handle
	rec       record.Exchange
	in        record.Text
	out       record.Text
	msg       record.Text
	fail      int32
	actuators []*actuator.Model

	state      State
	refs       int
	lastUpdate float64
	firstCall  bool
	updated    bool

	torque     float64
	pitch      []host.PitchValue
	yaw        float64
	yawRate    float64
	yawError   float64
	nacelleYaw float64
}

// New validates the turbine's configuration, loads its control-law module
// and prepares the text arguments. On error nothing stays loaded.
func New(model host.Model, turbine host.Object, opts Options) (*Controller, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loader := opts.Loader
	if loader == nil {
		loader = module.Native{}
	}

	cfg, err := ReadSettings(model, turbine)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		model:      model,
		turbine:    turbine,
		general:    model.General(),
		env:        model.Environment(),
		cfg:        cfg,
		log:        log.With(zap.String("turbine", turbine.Name())),
		state:      Initialising,
		lastUpdate: math.Inf(-1),
		firstCall:  true,
		yawError:   math.NaN(),
		nacelleYaw: math.NaN(),
		pitch:      make([]host.PitchValue, cfg.ControlledBlades),
	}

	if cfg.UseActuator {
		for i := 0; i < cfg.ControlledBlades; i++ {
			a, err := actuator.New(cfg.ActuatorOmega, cfg.ActuatorGamma, cfg.TimeStep)
			if err != nil {
				return nil, &ConfigurationError{Object: turbine.Name(), Err: fmt.Errorf("pitch actuator: %w", err)}
			}
			c.actuators = append(c.actuators, a)
		}
	}

	cm, err := record.LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, &ResourceError{Object: turbine.Name(), Err: err}
	}
	if cfg.InputFile != "" {
		if err := c.in.Encode(cfg.InputFile, cm); err != nil {
			return nil, &ResourceError{Object: turbine.Name(), Path: cfg.InputFile, Err: err}
		}
	}
	if err := c.out.Encode(cfg.OutputName, cm); err != nil {
		return nil, &ResourceError{Object: turbine.Name(), Path: cfg.OutputName, Err: err}
	}

	h, err := module.Open(loader, cfg.ModulePath, module.OpenOptions{
		Shareable: cfg.Shareable,
		TempDir:   opts.TempDir,
		Logger:    c.log,
	})
	if err != nil {
		return nil, &ResourceError{Object: turbine.Name(), Path: cfg.ModulePath, Err: err}
	}
	c.handle = h
	c.state = Active

	c.log.Info("controller created",
		zap.Int("controlled_blades", cfg.ControlledBlades),
		zap.Bool("individual_pitch", cfg.IndividualPitch),
		zap.Bool("actuator", cfg.UseActuator),
		zap.Float64("dt", cfg.TimeStep),
		zap.Bool("private_copy", h.Private()))
	return c, nil
}

func (c *Controller) Settings() Settings   { return c.cfg }
func (c *Controller) State() State         { return c.state }
func (c *Controller) Turbine() host.Object { return c.turbine }

// Module is the loaded control-law module handle.
func (c *Controller) Module() *module.Handle { return c.handle }

// LastUpdate is the time of the most recent update, -Inf before the first.
func (c *Controller) LastUpdate() float64 { return c.lastUpdate }

// Acquire registers another user of the controller.
func (c *Controller) Acquire() int {
	c.refs++
	return c.refs
}

// Release drops one user and returns how many remain.
func (c *Controller) Release() int {
	if c.refs > 0 {
		c.refs--
	}
	return c.refs
}

func (c *Controller) Refs() int { return c.refs }

// Update advances the controller to time t. Repeated calls for a time not
// later than the last update do nothing. When the module fails, the error
// is returned, outputs keep their previous values and the next later time
// calls the module again.
func (c *Controller) Update(t float64, inst *host.Turbine) error {
	if c.state != Active {
		return fmt.Errorf("%w (%s)", ErrInactive, c.state)
	}
	if !(t > c.lastUpdate) {
		return nil
	}
	if inst == nil {
		return c.runtimeError(t, errors.New("no instantaneous turbine data"))
	}
	c.lastUpdate = t

	if c.firstCall {
		torque, err := c.turbine.Sample(varGeneratorTorque, host.Extra{})
		if err != nil {
			return c.runtimeError(t, err)
		}
		c.torque = torque
		c.yawError = math.NaN()
		c.nacelleYaw = math.NaN()
		c.rec.Set(record.InfileLength, float64(c.in.Len()))
		c.rec.Set(record.OutfileLength, float64(c.out.Len()))
		c.rec.Set(record.Status, record.StatusFirstCall)
	} else {
		c.rec.Set(record.Status, record.StatusRunning)
	}

	if err := c.populate(t, inst); err != nil {
		return c.runtimeError(t, err)
	}

	c.firstCall = false
	c.fail = 0
	c.handle.Call(&c.rec, &c.fail, &c.in, &c.out, &c.msg)
	if c.fail < 0 {
		msg := c.msg.String()
		c.log.Warn("control-law module reported failure", zap.Float64("t", t), zap.Int32("fail", c.fail), zap.String("message", msg))
		return &RuntimeCalculationError{Object: c.turbine.Name(), Time: t, Fail: c.fail, Message: msg, Err: ErrModuleFailed}
	}

	c.demarshal()
	c.updated = true
	return nil
}

func (c *Controller) runtimeError(t float64, err error) error {
	return &RuntimeCalculationError{Object: c.turbine.Name(), Time: t, Err: err}
}

func (c *Controller) populate(t float64, inst *host.Turbine) error {
	cfg := c.cfg
	rec := &c.rec

	rec.Set(record.MessageLength, record.TextLength)
	rec.Set(record.BladeCount, float64(inst.BladeCount))

	if cfg.IndividualPitch {
		rec.Set(record.PitchMode, record.PitchModeIndividual)
		for i := 0; i < cfg.ControlledBlades; i++ {
			deg, err := c.turbine.Sample(varBladePitch, host.Blade(i+1))
			if err != nil {
				return err
			}
			rec.Set(record.BladePitch(i), geom.Radians(deg))
		}
	} else {
		rec.Set(record.PitchMode, record.PitchModeCommon)
		for i := 0; i < record.MaxBlades; i++ {
			rec.Set(record.BladePitch(i), inst.BladePitch)
		}
	}

	wind, err := c.env.Sample(varWindDirection, host.At(inst.Position))
	if err != nil {
		return err
	}
	azimuth, err := c.turbine.Sample(varAzimuth, host.Extra{})
	if err != nil {
		return err
	}
	c.yawError = geom.Unwrap(c.yawError, wind-azimuth)
	rec.Set(record.YawError, geom.Radians(c.yawError))

	north, err := c.northDirection()
	if err != nil {
		return err
	}
	c.nacelleYaw = geom.Unwrap(c.nacelleYaw, azimuth-(north-180))
	rec.Set(record.NacelleYaw, geom.Radians(c.nacelleYaw))

	rec.Set(record.HubWindSpeed, inst.HorizontalHubWindSpeed/cfg.VelocityScale)
	rec.Set(record.RotorAzimuth, inst.RotorAngle)
	rec.Set(record.CurrentTime, t-cfg.StartTime)
	rec.Set(record.TimeStep, cfg.TimeStep)
	rec.Set(record.GeneratorSpeed, inst.GeneratorAngVel)
	rec.Set(record.RotorSpeed, inst.MainShaftAngVel)

	torque := -c.torque * 1000 / cfg.MomentScale
	rec.Set(record.GeneratorTorque, torque)
	rec.Set(record.ElectricalPower, torque*inst.GeneratorAngVel)

	for i := 0; i < cfg.ControlledBlades; i++ {
		ex, err := c.turbine.Sample(varRootEx, host.Blade(i+1))
		if err != nil {
			return err
		}
		ey, err := c.turbine.Sample(varRootEy, host.Blade(i+1))
		if err != nil {
			return err
		}
		rec.Set(record.RootMomentInPlane(i), -ex*1000/cfg.MomentScale)
		rec.Set(record.RootMomentOutOfPlane(i), -ey*1000/cfg.MomentScale)
	}

	accel := inst.Acceleration
	if inst.Orientation != nil {
		accel = inst.Orientation.MulVec(inst.Acceleration)
	}
	if cfg.HasAccelRef {
		accel = geom.TransportAcceleration(accel, inst.AngularAcceleration, inst.AngularVelocity, cfg.AccelRef)
	}
	rec.Set(record.NacelleAcceleration, accel.Z/cfg.AccelerationScale)
	// FAST nodding is positive nose-down.
	rec.Set(record.NacelleAngularAccel, -inst.AngularAcceleration.Y)

	ly, err := c.turbine.Sample(varHubLy, host.Extra{})
	if err != nil {
		return err
	}
	lx, err := c.turbine.Sample(varHubLx, host.Extra{})
	if err != nil {
		return err
	}
	rec.Set(record.HubMomentY, ly*1000/cfg.MomentScale)
	rec.Set(record.HubMomentZ, -lx*1000/cfg.MomentScale)
	return nil
}

// northDirection falls back to 180 deg, so that 0 deg wind comes from
// North, when the model defines no North direction.
func (c *Controller) northDirection() (float64, error) {
	north, err := c.general.DataDouble("NorthDirection")
	switch {
	case err == nil:
		return north, nil
	case errors.Is(err, host.ErrValueNotAvailable), errors.Is(err, host.ErrNotFound):
		return 180, nil
	default:
		return 0, err
	}
}

func (c *Controller) demarshal() {
	for i := range c.pitch {
		cmd := c.rec.Float(record.DemandedPitchCommon)
		if c.cfg.IndividualPitch {
			cmd = c.rec.Float(record.DemandedPitch(i))
		}
		if c.actuators != nil {
			s := c.actuators[i].Evaluate(cmd)
			c.pitch[i] = host.PitchValue{Value: s.Position, Velocity: s.Velocity, Acceleration: s.Acceleration}
		} else {
			c.pitch[i] = host.PitchValue{Value: cmd}
		}
	}
	c.torque = -c.rec.Float(record.DemandedTorque) / 1000 * c.cfg.MomentScale
	c.yawRate = c.rec.Float(record.DemandedYawRate)
	c.yaw += c.yawRate * c.cfg.TimeStep
}

// Torque is the generator torque demand in model units.
func (c *Controller) Torque() (float64, error) {
	if !c.updated {
		return 0, ErrNotUpdated
	}
	return c.torque, nil
}

// Pitch returns one value per controlled blade; a single entry applies to
// every blade in common pitch mode.
func (c *Controller) Pitch() ([]host.PitchValue, error) {
	if !c.updated {
		return nil, ErrNotUpdated
	}
	out := make([]host.PitchValue, len(c.pitch))
	copy(out, c.pitch)
	return out, nil
}

// Yaw returns the integrated nacelle yaw (rad) and its rate (rad/s).
func (c *Controller) Yaw() (yaw, rate float64) {
	return c.yaw, c.yawRate
}

// Calculate writes the output named by info.DataName into info.
func (c *Controller) Calculate(info *host.Info) error {
	switch info.DataName {
	case TorqueController:
		v, err := c.Torque()
		if err != nil {
			return err
		}
		info.Value = v
	case PitchController:
		p, err := c.Pitch()
		if err != nil {
			return err
		}
		info.Pitch = p
	default:
		return fmt.Errorf("%w: %q", ErrOutput, info.DataName)
	}
	return nil
}

// Close makes the final module call, when the module has been called at
// all, then unloads it. The controller cannot be used afterwards.
func (c *Controller) Close() error {
	if c.state == Destroyed {
		return nil
	}
	c.state = Finalising

	var err error
	if !c.firstCall && c.handle != nil {
		c.rec.Set(record.Status, record.StatusFinalCall)
		c.fail = 0
		c.handle.Call(&c.rec, &c.fail, &c.in, &c.out, &c.msg)
		if c.fail < 0 {
			msg := c.msg.String()
			c.log.Warn("final control-law call failed", zap.String("message", msg))
			err = &RuntimeCalculationError{Object: c.turbine.Name(), Time: c.lastUpdate, Fail: c.fail, Message: msg, Err: ErrModuleFailed}
		}
	}
	if c.handle != nil {
		err = multierr.Append(err, c.handle.Close())
		c.handle = nil
	}
	c.state = Destroyed
	c.log.Info("controller destroyed")
	return err
}
