package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/turbinectl/internal/sim"
)

// PlotOptions sizes channel plots.
type PlotOptions struct {
	Width  int
	Height int
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = 70
	}
	if o.Height <= 0 {
		o.Height = 10
	}
	return o
}

// downsample keeps at most n evenly spaced points.
func downsample(values []float64, n int) []float64 {
	if len(values) <= n || n < 2 {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}

// PlotChannel draws one recorded channel against time.
func PlotChannel(rec *sim.Recording, name string, opts PlotOptions) (string, error) {
	values, ok := rec.Channel(name)
	if !ok {
		return "", fmt.Errorf("no channel %q (have %s)", name, strings.Join(rec.Names, ", "))
	}
	if len(values) == 0 {
		return "", fmt.Errorf("channel %q is empty", name)
	}
	opts = opts.withDefaults()
	caption := name
	if n := rec.Len(); n > 0 {
		caption = fmt.Sprintf("%s  (t = %.2f .. %.2f s)", name, rec.Times[0], rec.Times[n-1])
	}
	return asciigraph.Plot(downsample(values, opts.Width),
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption)), nil
}

// PlotChannels draws each named channel, all channels when names is empty.
func PlotChannels(rec *sim.Recording, names []string, opts PlotOptions) (string, error) {
	if len(names) == 0 {
		names = rec.Names
	}
	var b strings.Builder
	for i, name := range names {
		chart, err := PlotChannel(rec, name, opts)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(chart)
	}
	return b.String(), nil
}
