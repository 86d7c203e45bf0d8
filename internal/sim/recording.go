package sim

import "fmt"

// Recording is a table of named channels sampled at common times.
type Recording struct {
	Names []string
	Times []float64
	Rows  [][]float64
}

func NewRecording(names ...string) *Recording {
	return &Recording{Names: names}
}

// Add appends one sample; values must match Names in order.
func (r *Recording) Add(t float64, values ...float64) error {
	if len(values) != len(r.Names) {
		return fmt.Errorf("recording: %d values for %d channels", len(values), len(r.Names))
	}
	row := make([]float64, len(values))
	copy(row, values)
	r.Times = append(r.Times, t)
	r.Rows = append(r.Rows, row)
	return nil
}

func (r *Recording) Len() int { return len(r.Times) }

func (r *Recording) Index(name string) int {
	for i, n := range r.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// Channel returns a copy of the named column.
func (r *Recording) Channel(name string) ([]float64, bool) {
	i := r.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]float64, len(r.Rows))
	for k, row := range r.Rows {
		out[k] = row[i]
	}
	return out, true
}

// Last returns the most recent value of a channel.
func (r *Recording) Last(name string) (float64, bool) {
	i := r.Index(name)
	if i < 0 || len(r.Rows) == 0 {
		return 0, false
	}
	return r.Rows[len(r.Rows)-1][i], true
}
