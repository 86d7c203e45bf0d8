package metrics

import (
	"math"

	"github.com/san-kum/turbinectl/internal/sim"
)

// Limit is the fraction of samples in which x[index] stays at or below an
// upper limit, such as rotor speed against the overspeed trip.
type Limit struct {
	name   string
	index  int
	limit  float64
	over   int
	n      int
	peak   float64
	peakAt float64
}

func NewLimit(name string, index int, limit float64) *Limit {
	l := &Limit{name: name, index: index, limit: limit}
	l.Reset()
	return l
}

func (l *Limit) Name() string { return l.name }

func (l *Limit) Observe(x sim.State, u sim.Control, t float64) {
	if l.index >= len(x) {
		return
	}
	v := x[l.index]
	l.n++
	if v > l.limit {
		l.over++
	}
	if v > l.peak {
		l.peak, l.peakAt = v, t
	}
}

func (l *Limit) Value() float64 {
	if l.n == 0 {
		return 1
	}
	return 1 - float64(l.over)/float64(l.n)
}

// Peak is the largest observed value and when it occurred.
func (l *Limit) Peak() (v, t float64) { return l.peak, l.peakAt }

func (l *Limit) Reset() {
	l.over, l.n = 0, 0
	l.peak, l.peakAt = math.Inf(-1), math.NaN()
}
