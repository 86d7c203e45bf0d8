package viz

import (
	"errors"
	"fmt"
	"strings"
)

const svgBackground = "#0a0a0a"

// CanvasToSVG renders every set braille dot as a circle, scale pixels apart.
func CanvasToSVG(c *Canvas, scale float64) string {
	if c == nil {
		return ""
	}
	w := float64(c.Width) * scale * 2
	h := float64(c.Height) * scale * 4

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00d7ff">
`, w, h, w, h, svgBackground)

	r := scale * 0.4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			cell := c.Grid[row][col]
			if cell < brailleBlank {
				continue
			}
			pattern := cell - brailleBlank
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
				}
			}
		}
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// ChannelSVG draws values against times as a single polyline with a 10%
// margin on both axes.
func ChannelSVG(name string, times, values []float64, width, height int, stroke string) (string, error) {
	if len(times) != len(values) {
		return "", fmt.Errorf("channel %s: %d times for %d values", name, len(times), len(values))
	}
	if len(values) < 2 {
		return "", errors.New("channel needs at least two samples")
	}

	minX, maxX := bounds(times)
	minY, maxY := bounds(values)
	padX, padY := (maxX-minX)*0.1, (maxY-minY)*0.1
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	minX, maxX = minX-padX, maxX+padX
	minY, maxY = minY-padY, maxY+padY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="8" y="16" fill="#888888" font-family="monospace" font-size="12">%s</text>
<path fill="none" stroke="%s" stroke-width="1.5" d="`,
		width, height, width, height, svgBackground, name, stroke)

	for i := range values {
		x := (times[i] - minX) / (maxX - minX) * float64(width)
		y := float64(height) - (values[i]-minY)/(maxY-minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n</svg>\n")
	return sb.String(), nil
}

func bounds(xs []float64) (lo, hi float64) {
	lo, hi = xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}
