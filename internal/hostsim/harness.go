// Package hostsim is a small in-process turbine host. It builds a host
// model from a run configuration, drives the lifecycle dispatcher the way
// a host calls its external functions, and integrates a rotor and tower
// plant with the demands the controller returns.
package hostsim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/turbinectl/internal/bridge"
	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/dispatch"
	"github.com/san-kum/turbinectl/internal/geom"
	"github.com/san-kum/turbinectl/internal/host"
	"github.com/san-kum/turbinectl/internal/integrators"
	"github.com/san-kum/turbinectl/internal/laws"
	"github.com/san-kum/turbinectl/internal/metrics"
	"github.com/san-kum/turbinectl/internal/module"
	"github.com/san-kum/turbinectl/internal/sim"
)

var (
	ErrDone   = errors.New("run complete")
	ErrClosed = errors.New("harness closed")
)

// ReportedError is a failure the dispatcher reported to the host.
type ReportedError struct {
	Object  string
	Message string
}

func (e *ReportedError) Error() string { return e.Message }

// Recorded channels.
const (
	ChanWind         = "wind_ms"
	ChanRotorRPM     = "rotor_rpm"
	ChanGeneratorRPM = "generator_rpm"
	ChanPitch        = "pitch_deg"
	ChanTorque       = "torque_knm"
	ChanPower        = "power_kw"
	ChanTowerX       = "tower_x_m"
	ChanAzimuth      = "nacelle_azimuth_deg"
	ChanYawError     = "yaw_error_deg"
)

func bladeChannel(b int) string { return fmt.Sprintf("pitch%d_deg", b) }

type Options struct {
	// Dir is the model directory; relative module and input file paths
	// resolve against it.
	Dir string
	// Loader defaults to the built-in laws with native libraries as
	// fallback.
	Loader  module.Loader
	Logger  *zap.Logger
	TempDir string
}

// Harness owns one simulated turbine and its controllers.
type Harness struct {
	cfg   *config.Config
	log   *zap.Logger
	disp  *dispatch.Dispatcher
	plant *Plant
	wind  *Wind
	integ sim.Integrator

	model      *host.MemoryModel
	turbine    *host.MemoryObject
	constraint *host.MemoryObject

	torqueInfo *host.Info
	pitchInfo  *host.Info
	yawInfo    *host.Info

	run     *sim.Stepper
	x0      sim.State
	x       sim.State
	u       sim.Control
	t       float64
	pitch   []float64
	torque  float64
	aero    float64
	thrust  float64
	yaw     float64
	yawRate float64

	rec      *sim.Recording
	reported []error
	started  bool
	closed   bool
}

func New(cfg *config.Config, opts Options) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.Get(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loader := opts.Loader
	if loader == nil {
		loader = module.Router{Builtin: laws.Builtin(), Native: module.Native{}}
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	h := &Harness{
		cfg:   cfg.Clone(),
		log:   log.With(zap.String("run", cfg.Name)),
		plant: NewPlant(cfg.Turbine, cfg.Wind.AirDensity),
		wind:  NewWind(cfg.Wind, cfg.Seed),
		integ: integ,
		t:     cfg.StartTime,
	}
	h.disp = dispatch.New(h, bridge.Options{
		Loader:   loader,
		Logger:   h.log,
		TempDir:  opts.TempDir,
		Encoding: cfg.Controller.Encoding,
	})

	omega := cfg.Turbine.InitialRotorRPM * math.Pi / 30
	pitch := geom.Radians(cfg.Turbine.InitialPitch)
	h.x0 = sim.State{0, omega, 0, 0}
	h.x = h.x0.Clone()
	h.pitch = make([]float64, cfg.Turbine.BladeCount)
	for i := range h.pitch {
		h.pitch[i] = pitch
	}
	if err := h.buildModel(dir); err != nil {
		return nil, err
	}
	wind := h.rotorWind(h.t)
	h.torque = h.plant.EquilibriumTorque(omega, pitch, wind)
	h.u = sim.Control{pitch, h.torque, wind}
	h.loads()

	names := []string{ChanWind, ChanRotorRPM, ChanGeneratorRPM, ChanPitch, ChanTorque, ChanPower, ChanTowerX, ChanAzimuth, ChanYawError}
	if cfg.Turbine.PitchMode == "Individual" {
		for b := 1; b <= cfg.Turbine.BladeCount; b++ {
			names = append(names, bladeChannel(b))
		}
	}
	h.rec = sim.NewRecording(names...)
	return h, nil
}

func (h *Harness) Config() *config.Config           { return h.cfg }
func (h *Harness) Model() *host.MemoryModel         { return h.model }
func (h *Harness) Dispatcher() *dispatch.Dispatcher { return h.disp }
func (h *Harness) Recording() *sim.Recording        { return h.rec }

// Time is the start of the next step.
func (h *Harness) Time() float64 {
	if h.run == nil {
		return h.cfg.StartTime
	}
	return h.run.Time()
}

func (h *Harness) State() sim.State {
	if h.run == nil {
		return h.x0.Clone()
	}
	return h.run.State().Clone()
}

func (h *Harness) Done() bool { return h.run != nil && h.run.Done() }

// Progress is the completed fraction of the run.
func (h *Harness) Progress() float64 {
	if h.run == nil {
		return 0
	}
	return h.run.Progress()
}

// ReportError collects dispatcher failures; the next step returns them.
func (h *Harness) ReportError(obj host.Object, msg string) {
	name := ""
	if obj != nil {
		name = obj.Name()
	}
	h.reported = append(h.reported, &ReportedError{Object: name, Message: msg})
}

func (h *Harness) takeErrors() error {
	err := multierr.Combine(h.reported...)
	h.reported = nil
	return err
}

// Start initialises the pitch and torque registrations of the turbine and
// the yaw constraint, as a host does when a run begins.
func (h *Harness) Start() error {
	if h.started {
		return nil
	}

	s := sim.New(h.plant, h.integ, h)
	s.AddObserver(h)
	s.AddMetric(metrics.NewEnergy(StateRotorSpeed, ControlTorque, h.cfg.Turbine.GearboxRatio))
	s.AddMetric(metrics.NewActivity("pitch_activity", ControlPitch))
	s.AddMetric(metrics.NewLimit("speed_within_limit", StateRotorSpeed, h.cfg.Turbine.OverspeedRPM*math.Pi/30))
	run, err := s.Begin(h.x0, sim.Config{
		Dt:            h.cfg.Dt,
		Duration:      h.cfg.Duration,
		StartTime:     h.cfg.StartTime,
		ValidateState: true,
	})
	if err != nil {
		return err
	}
	h.run = run
	h.started = true

	h.torqueInfo = &host.Info{Action: host.Initialise, Model: h.model, Object: h.turbine, DataName: bridge.TorqueController}
	h.pitchInfo = &host.Info{Action: host.Initialise, Model: h.model, Object: h.turbine, DataName: bridge.PitchController}
	h.disp.Turbine(h.torqueInfo)
	h.disp.Turbine(h.pitchInfo)
	if h.constraint != nil {
		h.yawInfo = &host.Info{Action: host.Initialise, Model: h.model, Object: h.constraint}
		h.disp.Constraint(h.yawInfo)
	}
	if err := h.takeErrors(); err != nil {
		return multierr.Append(err, h.Close())
	}
	h.log.Info("run started",
		zap.String("controller", h.cfg.Controller.Module),
		zap.Float64("dt", h.cfg.Dt),
		zap.Int("steps", h.run.Total()))
	return nil
}

// instant is the turbine's instantaneous state at the current snapshot.
func (h *Harness) instant() *host.Turbine {
	x := h.x
	accel := h.plant.Derivative(x, h.u, h.t)[StateTowerV]
	return &host.Turbine{
		BladeCount:             h.cfg.Turbine.BladeCount,
		BladePitch:             h.meanPitch(),
		HorizontalHubWindSpeed: h.wind.Speed(h.t),
		RotorAngle:             math.Mod(x[StateAzimuth], 2*math.Pi),
		GeneratorAngVel:        x[StateRotorSpeed] * h.cfg.Turbine.GearboxRatio,
		MainShaftAngVel:        x[StateRotorSpeed],
		Position:               r3.Vec{X: x[StateTowerX], Z: h.cfg.Turbine.HubHeight},
		Orientation:            shaftFrame(),
		Acceleration:           r3.Vec{X: accel},
	}
}

// shaftFrame maps global axes (x downwind, z up) to the turbine frame whose
// z axis runs along the shaft.
func shaftFrame() *r3.Mat {
	return r3.NewMat([]float64{
		0, 0, -1,
		0, 1, 0,
		1, 0, 0,
	})
}

func (h *Harness) loads() {
	h.aero, h.thrust = h.plant.Rotor.Loads(h.x[StateRotorSpeed], h.u[ControlPitch], h.u[ControlWind]-h.x[StateTowerV])
}

// Compute calls the controllers at time t and returns the plant controls.
// Any error the dispatcher reports ends the run.
func (h *Harness) Compute(x sim.State, t float64) (sim.Control, error) {
	h.x, h.t = x.Clone(), t
	h.loads()
	inst := h.instant()

	for _, info := range []*host.Info{h.torqueInfo, h.pitchInfo} {
		info.Action = host.Calculate
		info.Time = t
		info.Turbine = inst
		h.disp.Turbine(info)
		if err := h.takeErrors(); err != nil {
			return nil, err
		}
	}
	h.torque = -h.torqueInfo.Value * 1000
	if p := h.pitchInfo.Pitch; len(p) == 1 {
		for i := range h.pitch {
			h.pitch[i] = p[0].Value
		}
	} else {
		for i := range p {
			if i < len(h.pitch) {
				h.pitch[i] = p[i].Value
			}
		}
	}

	if h.yawInfo != nil {
		h.yawInfo.Action = host.Calculate
		h.yawInfo.Time = t
		h.disp.Constraint(h.yawInfo)
		if err := h.takeErrors(); err != nil {
			return nil, err
		}
		if o := h.yawInfo.Motion.Orientation; o != nil {
			h.yaw = math.Atan2(o.At(0, 1), o.At(0, 0))
		}
		h.yawRate = h.yawInfo.Motion.AngularVelocity.Z
	}

	h.u = sim.Control{h.meanPitch(), h.torque, h.rotorWind(t)}
	return h.u, nil
}

// OnStep records the channels for one step.
func (h *Harness) OnStep(x sim.State, u sim.Control, t float64) {
	n := h.cfg.Turbine.GearboxRatio
	omega := x[StateRotorSpeed]
	row := []float64{
		h.wind.Speed(t),
		omega * 30 / math.Pi,
		omega * n * 30 / math.Pi,
		geom.Degrees(u[ControlPitch]),
		u[ControlTorque] / 1000,
		u[ControlTorque] * omega * n / 1000,
		x[StateTowerX],
		h.nacelleAzimuth(),
		h.wind.Direction(t) - h.nacelleAzimuth(),
	}
	if h.cfg.Turbine.PitchMode == "Individual" {
		for _, p := range h.pitch {
			row = append(row, geom.Degrees(p))
		}
	}
	if err := h.rec.Add(t, row...); err != nil {
		h.log.Warn("recording", zap.Error(err))
	}
}

// Step advances the run by one time step. It returns ErrDone once the
// configured duration has elapsed.
func (h *Harness) Step() error {
	if h.closed {
		return ErrClosed
	}
	if err := h.Start(); err != nil {
		return err
	}
	_, err := h.run.Step()
	if errors.Is(err, sim.ErrFinished) {
		return ErrDone
	}
	return err
}

// Close finalises every registration and unloads the controllers.
func (h *Harness) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	for _, info := range []*host.Info{h.torqueInfo, h.pitchInfo} {
		if info != nil {
			info.Action = host.Finalise
			h.disp.Turbine(info)
		}
	}
	if h.yawInfo != nil {
		h.yawInfo.Action = host.Finalise
		h.disp.Constraint(h.yawInfo)
	}
	h.disp.Close()
	err := h.takeErrors()
	h.log.Info("run finished", zap.Float64("t", h.Time()), zap.Error(err))
	return err
}

// Result is a completed run.
type Result struct {
	Name      string
	Config    *config.Config
	Recording *sim.Recording
	Metrics   map[string]float64
	Steps     int
}

// Run integrates the whole duration. A controller failure stops the run;
// the partial recording is returned with the error.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	if err := h.Start(); err != nil {
		return nil, err
	}
	runErr := h.run.Continue(ctx)
	err := multierr.Append(runErr, h.Close())
	return &Result{
		Name:      h.cfg.Name,
		Config:    h.cfg,
		Recording: h.rec,
		Metrics:   h.run.Metrics(),
		Steps:     h.run.Steps(),
	}, err
}
