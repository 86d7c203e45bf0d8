// Package yaw imposes a turbine controller's integrated yaw on a
// constraint object as an externally calculated motion.
package yaw

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/turbinectl/internal/bridge"
	"github.com/san-kum/turbinectl/internal/geom"
	"github.com/san-kum/turbinectl/internal/host"
)

// TagTurbine names the turbine whose controller drives the constraint.
const TagTurbine = "TurbineName"

var ErrNoController = errors.New("the turbine's controller was not found. Ensure controllers are active for the associated turbine object")

// Controller is the part of a bridge controller yaw feedback reads.
type Controller interface {
	Yaw() (yaw, rate float64)
}

// Source finds the active controller for a turbine.
type Source interface {
	Controller(id host.ObjectID) (Controller, bool)
}

type SourceFunc func(id host.ObjectID) (Controller, bool)

func (f SourceFunc) Controller(id host.ObjectID) (Controller, bool) { return f(id) }

// Feedback binds a constraint to a turbine.
type Feedback struct {
	constraint host.Object
	turbine    host.Object
}

// New reads the constraint's TurbineName tag and resolves the turbine.
func New(model host.Model, constraint host.Object) (*Feedback, error) {
	name, ok := constraint.Tag(TagTurbine)
	if !ok || name == "" {
		return nil, &bridge.ConfigurationError{
			Object: constraint.Name(),
			Err: fmt.Errorf("%s tag must be defined, naming the turbine whose controller sets the yaw of %s",
				TagTurbine, constraint.Name()),
		}
	}
	turbine, err := model.ObjectCalled(name)
	if err != nil {
		return nil, &bridge.ConfigurationError{
			Object: constraint.Name(),
			Err:    fmt.Errorf("turbine %q named by the %s tag was not found: %w", name, TagTurbine, err),
		}
	}
	return &Feedback{constraint: constraint, turbine: turbine}, nil
}

func (f *Feedback) Turbine() host.Object    { return f.turbine }
func (f *Feedback) Constraint() host.Object { return f.constraint }

// Calculate returns the imposed motion: a rotation by the controller's yaw
// about the vertical axis turning at the controller's yaw rate.
func (f *Feedback) Calculate(src Source) (host.Motion, error) {
	c, ok := src.Controller(f.turbine.ID())
	if !ok {
		return host.Motion{}, &bridge.ConfigurationError{Object: f.constraint.Name(), Err: ErrNoController}
	}
	yaw, rate := c.Yaw()
	return host.Motion{
		Orientation:     geom.YawOrientation(yaw),
		AngularVelocity: r3.Vec{Z: rate},
	}, nil
}
