package metrics

import (
	"math"

	"github.com/san-kum/turbinectl/internal/sim"
)

// Activity is the mean absolute rate of change of one control channel.
type Activity struct {
	name  string
	index int

	sum     float64
	last    float64
	lastT   float64
	samples int
}

func NewActivity(name string, index int) *Activity {
	return &Activity{name: name, index: index}
}

func (a *Activity) Name() string { return a.name }

func (a *Activity) Observe(x sim.State, u sim.Control, t float64) {
	if a.index >= len(u) {
		return
	}
	v := u[a.index]
	if a.samples > 0 && t > a.lastT {
		a.sum += math.Abs(v-a.last) / (t - a.lastT)
	}
	a.last, a.lastT = v, t
	a.samples++
}

func (a *Activity) Value() float64 {
	if a.samples < 2 {
		return 0
	}
	return a.sum / float64(a.samples-1)
}

func (a *Activity) Reset() {
	a.sum = 0
	a.last = 0
	a.lastT = 0
	a.samples = 0
}
