// Package geom holds the angle and vector helpers used when translating
// host kinematics into controller inputs.
package geom

import "math"

// Unwrap returns raw shifted by a multiple of 360 so that it lies within
// 180 degrees of previous. A NaN previous means there is no history yet and
// raw is returned unchanged.
func Unwrap(previous, raw float64) float64 {
	if math.IsNaN(previous) {
		return raw
	}
	diff := raw - previous
	if math.Abs(diff) <= 180 {
		return raw
	}
	return previous - 180 + floorMod(diff+180, 360)
}

// floorMod is the modulus with the sign of the divisor.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

func Radians(deg float64) float64 { return deg * math.Pi / 180 }

func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
