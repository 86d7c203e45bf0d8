package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrModuleFailed is wrapped by a RuntimeCalculationError when the
	// control-law module signals failure.
	ErrModuleFailed = errors.New("bridge: call to DISCON failed")

	// ErrNotUpdated is returned when outputs are requested before the
	// first successful update.
	ErrNotUpdated = errors.New("bridge: controller has not been updated")

	// ErrInactive is returned when a finalised controller is driven.
	ErrInactive = errors.New("bridge: controller is not active")

	// ErrOutput is returned for a calculate request that is neither pitch
	// nor generator torque.
	ErrOutput = errors.New("turbine controller can only be used to control pitch or torque")
)

// ConfigurationError reports invalid object data or tags found while a
// controller was being created.
type ConfigurationError struct {
	Object string
	Err    error
}

func (e *ConfigurationError) Error() string { return e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// ResourceError reports a control-law module that could not be copied,
// loaded or resolved, or text arguments that could not be prepared.
type ResourceError struct {
	Object string
	Path   string
	Err    error
}

func (e *ResourceError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// RuntimeCalculationError reports a failed controller step. Message holds
// the module's own message when the module reported the failure.
type RuntimeCalculationError struct {
	Object  string
	Time    float64
	Fail    int32
	Message string
	Err     error
}

func (e *RuntimeCalculationError) Error() string {
	if errors.Is(e.Err, ErrModuleFailed) {
		return fmt.Sprintf("Call to DISCON failed:\n%s", e.Message)
	}
	return fmt.Sprintf("t=%g: %v", e.Time, e.Err)
}

func (e *RuntimeCalculationError) Unwrap() error { return e.Err }

func configError(obj, format string, args ...any) error {
	return &ConfigurationError{Object: obj, Err: fmt.Errorf(format, args...)}
}
