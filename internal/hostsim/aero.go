package hostsim

import "math"

// Power coefficient surface Cp(λ, β) of the analytic rotor model, with β in
// degrees:
//
//	Cp = c1 (c2/λi − c3 β − c4) e^(−c5/λi) + c6 λ
//	1/λi = 1/(λ + 0.08 β) − 0.035/(β³ + 1)
const (
	cp1 = 0.5176
	cp2 = 116.0
	cp3 = 0.4
	cp4 = 5.0
	cp5 = 21.0
	cp6 = 0.0068
)

func inverseLambdaI(lambda, betaDeg float64) float64 {
	return 1/(lambda+0.08*betaDeg) - 0.035/(betaDeg*betaDeg*betaDeg+1)
}

// PowerCoefficient evaluates Cp for tip speed ratio lambda and pitch beta
// (rad). Negative pitch is treated as zero.
func PowerCoefficient(lambda, beta float64) float64 {
	if lambda <= 0 {
		return 0
	}
	b := math.Max(0, beta*180/math.Pi)
	li := inverseLambdaI(lambda, b)
	cp := cp1*(cp2*li-cp3*b-cp4)*math.Exp(-cp5*li) + cp6*lambda
	return math.Max(cp, -0.2)
}

// ThrustCoefficient is a momentum-theory estimate: the axial induction that
// extracts Cp gives Ct = 4a(1−a), limited to the turbulent-wake bound.
func ThrustCoefficient(lambda, beta float64) float64 {
	cp := math.Max(0, PowerCoefficient(lambda, beta))
	// invert Cp = 4a(1−a)² by bisection on a ∈ [0, 1/3]
	lo, hi := 0.0, 1.0/3
	for i := 0; i < 40; i++ {
		a := 0.5 * (lo + hi)
		if 4*a*(1-a)*(1-a) < cp {
			lo = a
		} else {
			hi = a
		}
	}
	a := 0.5 * (lo + hi)
	return math.Min(4*a*(1-a), 1)
}

// TipSpeedRatio guards against a stalled or reversed wind.
func TipSpeedRatio(omega, radius, wind float64) float64 {
	if wind < 0.1 {
		wind = 0.1
	}
	return omega * radius / wind
}

// Rotor is the aerodynamic part of the plant.
type Rotor struct {
	Radius     float64
	AirDensity float64
}

func (r Rotor) area() float64 { return math.Pi * r.Radius * r.Radius }

// Loads returns the aerodynamic shaft torque (N·m) and rotor thrust (N).
func (r Rotor) Loads(omega, beta, wind float64) (torque, thrust float64) {
	v := math.Max(wind, 0.1)
	lambda := TipSpeedRatio(omega, r.Radius, v)
	q := 0.5 * r.AirDensity * r.area() * v * v
	cp := PowerCoefficient(lambda, beta)
	if lambda > 0 {
		// P/ω = q v Cp / ω = q R Cp / λ
		torque = q * r.Radius * cp / lambda
	}
	thrust = q * ThrustCoefficient(lambda, beta)
	return torque, thrust
}
