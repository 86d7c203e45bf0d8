package laws

import (
	"math"

	"github.com/san-kum/turbinectl/internal/record"
)

// Params are the tuning constants of the baseline controller. Speeds are
// generator-side (rad/s), torques in Nm, pitch in rad.
type Params struct {
	CornerFreq  float64
	TargetSpeed float64

	MinPitch     float64
	MaxPitch     float64
	MaxPitchRate float64
	ThetaK       float64
	Kp           float64
	Ki           float64

	CutInSpeed      float64
	MaxTorqueRate   float64
	MaxTorque       float64
	Region2K        float64
	Region2Speed    float64
	Region3MinPitch float64
	RatedSpeed      float64
	RatedPower      float64
	SlipPercent     float64

	// ConstantTorque holds region 3 torque at RatedPower/TargetSpeed
	// instead of constant power.
	ConstantTorque bool
}

func NREL5MW() Params {
	return Params{
		CornerFreq:      1.570796,
		TargetSpeed:     122.9096,
		MinPitch:        0,
		MaxPitch:        math.Pi / 2,
		MaxPitchRate:    0.1396263,
		ThetaK:          0.1099965,
		Kp:              0.01882681,
		Ki:              0.008068634,
		CutInSpeed:      70.16224,
		MaxTorqueRate:   1.5e4,
		MaxTorque:       47402.91,
		Region2K:        2.332287,
		Region2Speed:    91.21091,
		Region3MinPitch: 0.01745329,
		RatedSpeed:      121.6805,
		RatedPower:      5296610,
		SlipPercent:     10,
	}
}

// NREL5MWFloating detunes the pitch loop below the platform pitch
// frequency and holds region 3 torque constant.
func NREL5MWFloating() Params {
	p := NREL5MW()
	p.Kp = 0.006275604
	p.Ki = 0.0008965149
	p.ConstantTorque = true
	return p
}

func (p Params) synchronousSpeed() float64 {
	return p.RatedSpeed / (1 + 0.01*p.SlipPercent)
}

func (p Params) slope15() float64 {
	return p.Region2K * p.Region2Speed * p.Region2Speed / (p.Region2Speed - p.CutInSpeed)
}

func (p Params) slope25() float64 {
	power := p.RatedPower / p.RatedSpeed
	if p.ConstantTorque {
		power = p.RatedPower / p.TargetSpeed
	}
	return power / (p.RatedSpeed - p.synchronousSpeed())
}

// transitionSpeed is where the region 2 quadratic meets the region 2½ line.
func (p Params) transitionSpeed() float64 {
	sy := p.synchronousSpeed()
	if p.Region2K == 0 {
		return sy
	}
	s := p.slope25()
	return (s - math.Sqrt(s*(s-4*p.Region2K*sy))) / (2 * p.Region2K)
}

// Baseline is the variable-speed, collective-pitch controller of the NREL
// 5 MW reference turbine: a low-pass generator speed filter feeding a
// gain-scheduled PI pitch loop and a five-region torque schedule.
type Baseline struct {
	p Params

	slope15, slope25, sySpeed, trSpeed float64

	filteredSpeed float64
	pitchCom      float64
	torqueCom     float64
	errIntegral   float64
	lastTime      float64
	started       bool

	// Yaw, when set, commands a nacelle yaw rate from the yaw error.
	Yaw *YawTracker
}

func NewBaseline(p Params) *Baseline {
	return &Baseline{
		p:        p,
		slope15:  p.slope15(),
		slope25:  p.slope25(),
		sySpeed:  p.synchronousSpeed(),
		trSpeed:  p.transitionSpeed(),
		lastTime: math.Inf(-1),
	}
}

func (b *Baseline) Params() Params { return b.p }

func (b *Baseline) FilteredSpeed() float64 { return b.filteredSpeed }

func (b *Baseline) Call(rec *record.Exchange, fail *int32, in, out, msg *record.Text) {
	st := status(rec)
	if st == record.StatusFinalCall {
		accept(fail, msg)
		return
	}
	if s, ok := finite(rec, record.CurrentTime, record.TimeStep, record.BladePitch1,
		record.GeneratorSpeed, record.GeneratorTorque, record.YawError); !ok {
		reject(fail, msg, "baseline: non-finite input in record slot %d", int(s))
		return
	}
	dt := rec.Float(record.TimeStep)
	if dt <= 0 {
		reject(fail, msg, "baseline: time step must be positive, got %g", dt)
		return
	}

	t := rec.Float(record.CurrentTime)
	pitch := rec.Float(record.BladePitch1)
	speed := rec.Float(record.GeneratorSpeed)

	if st == record.StatusFirstCall || !b.started {
		b.filteredSpeed = speed
		b.pitchCom = pitch
		b.torqueCom = rec.Float(record.GeneratorTorque)
		b.errIntegral = pitch / (b.gainCorrection(pitch) * b.p.Ki)
		b.started = true
		if b.Yaw != nil {
			b.Yaw.Reset(rec.Float(record.YawError))
		}
	}

	if t > b.lastTime {
		b.lastTime = t
		b.step(speed, pitch, dt)
		if b.Yaw != nil {
			b.Yaw.Step(rec.Float(record.YawError), dt)
		}
	}

	setCollective(rec, b.pitchCom)
	rec.Set(record.DemandedTorque, b.torqueCom)
	if b.Yaw != nil {
		rec.Set(record.DemandedYawRate, b.Yaw.Rate())
	}
	accept(fail, msg)
}

func (b *Baseline) gainCorrection(pitch float64) float64 {
	return 1 / (1 + pitch/b.p.ThetaK)
}

func (b *Baseline) step(speed, pitch, dt float64) {
	p := b.p
	lastPitchCom, lastTorqueCom := b.pitchCom, b.torqueCom
	gk := b.gainCorrection(lastPitchCom)

	alpha := math.Exp(-dt * p.CornerFreq)
	b.filteredSpeed = (1-alpha)*speed + alpha*b.filteredSpeed
	speedErr := b.filteredSpeed - p.TargetSpeed

	b.errIntegral += speedErr * dt
	b.errIntegral = clamp(b.errIntegral, p.MinPitch/(gk*p.Ki), p.MaxPitch/(gk*p.Ki))

	com := clamp(gk*(p.Kp*speedErr+p.Ki*b.errIntegral), p.MinPitch, p.MaxPitch)
	rate := clamp((com-pitch)/dt, -p.MaxPitchRate, p.MaxPitchRate)
	b.pitchCom = clamp(pitch+rate*dt, p.MinPitch, p.MaxPitch)

	var torque float64
	switch fs := b.filteredSpeed; {
	case fs >= p.RatedSpeed || lastPitchCom >= p.Region3MinPitch:
		if p.ConstantTorque {
			torque = p.RatedPower / p.TargetSpeed
		} else {
			torque = p.RatedPower / fs
		}
	case fs <= p.CutInSpeed:
		torque = 0
	case fs < p.Region2Speed:
		torque = b.slope15 * (fs - p.CutInSpeed)
	case fs < b.trSpeed:
		torque = p.Region2K * fs * fs
	default:
		torque = b.slope25 * (fs - b.sySpeed)
	}
	torque = math.Min(torque, p.MaxTorque)

	trate := clamp((torque-lastTorqueCom)/dt, -p.MaxTorqueRate, p.MaxTorqueRate)
	b.torqueCom = lastTorqueCom + trate*dt
}
