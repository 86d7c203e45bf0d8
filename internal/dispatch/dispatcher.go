// Package dispatch routes host lifecycle calls (initialise, calculate,
// finalise) for turbine and yaw-constraint objects to shared controller
// instances, one per turbine.
package dispatch

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/turbinectl/internal/bridge"
	"github.com/san-kum/turbinectl/internal/host"
	"github.com/san-kum/turbinectl/internal/yaw"
)

// Dispatcher owns the controllers of one model. Every failure goes to the
// reporter; none is returned to the host.
type Dispatcher struct {
	mu          sync.Mutex
	controllers map[host.ObjectID]*bridge.Controller

	opts     bridge.Options
	reporter host.Reporter
	log      *zap.Logger
}

func New(reporter host.Reporter, opts bridge.Options) *Dispatcher {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	opts.Logger = log
	return &Dispatcher{
		controllers: make(map[host.ObjectID]*bridge.Controller),
		opts:        opts,
		reporter:    reporter,
		log:         log,
	}
}

// Lookup returns the active controller for a turbine.
func (d *Dispatcher) Lookup(id host.ObjectID) (*bridge.Controller, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.controllers[id]
	return c, ok
}

// Controller adapts Lookup for yaw feedback.
func (d *Dispatcher) Controller(id host.ObjectID) (yaw.Controller, bool) {
	c, ok := d.Lookup(id)
	if !ok {
		return nil, false
	}
	return c, true
}

// Len is the number of live controllers.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.controllers)
}

// Turbine handles a pitch or generator torque external function call.
func (d *Dispatcher) Turbine(info *host.Info) {
	switch info.Action {
	case host.Initialise:
		c, err := d.acquire(info)
		if err != nil {
			d.report(info.Object, "Could not initialise controller. "+err.Error())
			return
		}
		info.Data = c
	case host.Calculate:
		c, ok := info.Data.(*bridge.Controller)
		if !ok || c == nil {
			if c, ok = d.Lookup(info.Object.ID()); !ok {
				d.report(info.Object, "Controller has not been initialised.")
				return
			}
		}
		if err := c.Update(info.Time, info.Turbine); err != nil {
			d.report(info.Object, err.Error())
			return
		}
		if err := c.Calculate(info); err != nil {
			d.report(info.Object, err.Error())
		}
	case host.Finalise:
		if c, ok := info.Data.(*bridge.Controller); ok && c != nil {
			d.release(info.Object, c)
		}
		info.Data = nil
	}
}

func (d *Dispatcher) acquire(info *host.Info) (*bridge.Controller, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := info.Object.ID()
	if c, ok := d.controllers[id]; ok {
		c.Acquire()
		return c, nil
	}
	c, err := bridge.New(info.Model, info.Object, d.opts)
	if err != nil {
		return nil, err
	}
	c.Acquire()
	d.controllers[id] = c
	d.log.Debug("controller registered", zap.String("turbine", info.Object.Name()), zap.Uint64("id", uint64(id)))
	return c, nil
}

// release drops the reference held by one registration. A controller
// already swept by Close is left alone.
func (d *Dispatcher) release(obj host.Object, c *bridge.Controller) {
	d.mu.Lock()
	if d.controllers[obj.ID()] != c {
		d.mu.Unlock()
		return
	}
	if c.Release() > 0 {
		d.mu.Unlock()
		return
	}
	delete(d.controllers, obj.ID())
	d.mu.Unlock()

	d.log.Debug("controller released", zap.String("turbine", obj.Name()))
	if err := c.Close(); err != nil {
		d.report(obj, err.Error())
	}
}

// Constraint handles a yaw constraint's imposed-motion external function.
func (d *Dispatcher) Constraint(info *host.Info) {
	switch info.Action {
	case host.Initialise:
		fb, err := yaw.New(info.Model, info.Object)
		if err != nil {
			d.report(info.Object, err.Error())
			return
		}
		info.Data = fb
	case host.Calculate:
		fb, ok := info.Data.(*yaw.Feedback)
		if !ok || fb == nil {
			d.report(info.Object, "Yaw feedback has not been initialised.")
			return
		}
		m, err := fb.Calculate(d)
		if err != nil {
			d.report(info.Object, err.Error())
			return
		}
		info.Motion = m
	case host.Finalise:
		info.Data = nil
	}
}

// Close destroys every remaining controller regardless of its count, for
// hosts that end a run without finalising every object.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	live := d.controllers
	d.controllers = make(map[host.ObjectID]*bridge.Controller)
	d.mu.Unlock()

	for _, c := range live {
		if err := c.Close(); err != nil {
			d.report(c.Turbine(), err.Error())
		}
	}
}

func (d *Dispatcher) report(obj host.Object, msg string) {
	name := "<unknown>"
	if obj != nil {
		name = obj.Name()
	}
	d.log.Error("controller error", zap.String("object", name), zap.String("message", msg))
	if d.reporter != nil {
		d.reporter.ReportError(obj, fmt.Sprintf("%s\n\n%s", name, msg))
	}
}
