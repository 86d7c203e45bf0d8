package hostsim

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/turbinectl/internal/config"
)

const turbulenceModes = 12

// Wind is a deterministic hub-height wind field: mean speed, a 1−cos gust,
// sinusoidal turbulence with seeded phases and a step change in direction.
type Wind struct {
	cfg   config.WindConfig
	freqs []float64
	phase []float64
	amp   float64
}

func NewWind(cfg config.WindConfig, seed int64) *Wind {
	w := &Wind{cfg: cfg}
	if cfg.Turbulence > 0 {
		rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
		w.freqs = make([]float64, turbulenceModes)
		w.phase = make([]float64, turbulenceModes)
		for i := range w.freqs {
			// log-spaced between 0.005 and 0.5 Hz
			w.freqs[i] = 2 * math.Pi * 0.005 * math.Pow(100, float64(i)/float64(turbulenceModes-1))
			w.phase[i] = 2 * math.Pi * rng.Float64()
		}
		w.amp = cfg.Turbulence * cfg.Mean * math.Sqrt(2/float64(turbulenceModes))
	}
	return w
}

// Speed is the horizontal hub wind speed (m/s) at time t.
func (w *Wind) Speed(t float64) float64 {
	v := w.cfg.Mean
	if g := w.cfg; g.GustAmplitude != 0 && g.GustDuration > 0 && t >= g.GustStart && t <= g.GustStart+g.GustDuration {
		v += 0.5 * g.GustAmplitude * (1 - math.Cos(2*math.Pi*(t-g.GustStart)/g.GustDuration))
	}
	for i, f := range w.freqs {
		v += w.amp * math.Sin(f*t+w.phase[i])
	}
	return math.Max(v, 0)
}

// Direction is the wind direction (deg) at time t.
func (w *Wind) Direction(t float64) float64 {
	d := w.cfg.Direction
	if w.cfg.DirectionStep != 0 && t >= w.cfg.DirectionStepTime {
		d += w.cfg.DirectionStep
	}
	return d
}
