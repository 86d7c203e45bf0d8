package laws

import "math"

type YawParams struct {
	// TimeConstant of the first-order yaw error filter (s).
	TimeConstant float64
	// Deadband below which no yaw is commanded (rad).
	Deadband float64
	Gain     float64
	MaxRate  float64
}

func DefaultYawParams() YawParams {
	return YawParams{
		TimeConstant: 10,
		Deadband:     2 * math.Pi / 180,
		Gain:         0.05,
		MaxRate:      0.3 * math.Pi / 180,
	}
}

// YawTracker turns a filtered yaw error into a bounded nacelle yaw rate.
type YawTracker struct {
	p        YawParams
	filtered float64
	rate     float64
}

func NewYawTracker(p YawParams) *YawTracker {
	return &YawTracker{p: p}
}

func (y *YawTracker) Reset(yawErr float64) {
	y.filtered = yawErr
	y.rate = 0
}

func (y *YawTracker) Step(yawErr, dt float64) {
	alpha := 0.0
	if y.p.TimeConstant > 0 {
		alpha = math.Exp(-dt / y.p.TimeConstant)
	}
	y.filtered = (1-alpha)*yawErr + alpha*y.filtered
	if math.Abs(y.filtered) < y.p.Deadband {
		y.rate = 0
		return
	}
	y.rate = clamp(y.p.Gain*y.filtered, -y.p.MaxRate, y.p.MaxRate)
}

func (y *YawTracker) Rate() float64     { return y.rate }
func (y *YawTracker) Filtered() float64 { return y.filtered }
