package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrFinished = errors.New("run finished")

type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn Dynamics, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Stepper is a run in progress. Each Step samples the controller at the
// current time, shows the sample to the metrics and observers, then
// integrates over one dt with the control held.
type Stepper struct {
	sim   *Simulator
	cfg   Config
	x     State
	t     float64
	step  int
	total int
}

// Begin validates cfg and resets the metrics.
func (s *Simulator) Begin(x0 State, cfg Config) (*Stepper, error) {
	if !(cfg.Dt > 0) {
		return nil, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return nil, fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	return &Stepper{
		sim:   s,
		cfg:   cfg,
		x:     x0.Clone(),
		t:     cfg.StartTime,
		total: int(math.Round(cfg.Duration / cfg.Dt)),
	}, nil
}

func (st *Stepper) State() State  { return st.x }
func (st *Stepper) Time() float64 { return st.t }
func (st *Stepper) Steps() int    { return st.step }
func (st *Stepper) Total() int    { return st.total }
func (st *Stepper) Done() bool    { return st.step >= st.total }

func (st *Stepper) Progress() float64 {
	if st.total == 0 {
		return 1
	}
	return float64(st.step) / float64(st.total)
}

// Step advances one time step and returns the control that was applied.
// It returns ErrFinished once the duration has elapsed; any other error
// leaves the state where it was.
func (st *Stepper) Step() (Control, error) {
	if st.Done() {
		return nil, ErrFinished
	}
	s := st.sim
	u, err := s.controller.Compute(st.x, st.t)
	if err != nil {
		return nil, SimError{Time: st.t, Step: st.step, Err: err}
	}
	for _, m := range s.metrics {
		m.Observe(st.x, u, st.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(st.x, u, st.t)
	}

	next := s.integrator.Step(s.dyn, st.x, u, st.t, st.cfg.Dt)
	if st.cfg.ValidateState && !next.IsValid() {
		return u, SimError{Time: st.t, Step: st.step, Message: "invalid state (NaN/Inf)"}
	}
	st.x = next
	st.step++
	// from the step index so long runs hit exact step times
	st.t = st.cfg.StartTime + float64(st.step)*st.cfg.Dt
	return u, nil
}

// Continue steps until the run completes, ctx is done or a step fails.
func (st *Stepper) Continue(ctx context.Context) error {
	for !st.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := st.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (st *Stepper) Metrics() map[string]float64 {
	out := make(map[string]float64, len(st.sim.metrics))
	for _, m := range st.sim.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
