package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Identity returns a fresh 3×3 identity matrix.
func Identity() *r3.Mat {
	return r3.NewMat([]float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// TransportAcceleration returns the acceleration of a point fixed to a
// rigid body at offset r from the body reference, given the reference
// acceleration a, angular acceleration alpha and angular velocity omega:
//
//	a + α×r + ω×(ω×r)
func TransportAcceleration(a, alpha, omega, r r3.Vec) r3.Vec {
	tangential := r3.Cross(alpha, r)
	centripetal := r3.Cross(omega, r3.Cross(omega, r))
	return r3.Add(a, r3.Add(tangential, centripetal))
}

// YawOrientation is the plane rotation by yaw (rad) about the vertical axis,
// laid out the way the host expects imposed-motion orientations.
func YawOrientation(yaw float64) *r3.Mat {
	s, c := math.Sincos(yaw)
	return r3.NewMat([]float64{
		c, s, 0,
		-s, c, 0,
		0, 0, 1,
	})
}
