package viz

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/turbinectl/internal/hostsim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 20
	historyCapacity = 300
	maxStepsPerTick = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live steps a harness in real time and draws the rotor, the nacelle
// heading and the controller outputs.
type Live struct {
	h      *hostsim.Harness
	canvas *Canvas

	// SnapshotDir receives the SVG snapshots taken with the s key.
	SnapshotDir string
	note        string

	running  bool
	speed    int
	err      error
	done     bool
	showHelp bool

	rpm   []float64
	power []float64
}

func NewLive(h *hostsim.Harness) Live {
	return Live{
		h:           h,
		canvas:      NewCanvas(canvasWidth, canvasHeight),
		SnapshotDir: ".",
		running:     true,
		speed:       1,
		rpm:         make([]float64, 0, historyCapacity),
		power:       make([]float64, 0, historyCapacity),
	}
}

// Err is the failure that stopped the run, if any.
func (m Live) Err() error { return m.err }

func (m Live) Init() tea.Cmd { return tick() }

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = min(m.speed*2, maxStepsPerTick)
		case "-", "_":
			m.speed = max(m.speed/2, 1)
		case "?":
			m.showHelp = !m.showHelp
		case "s":
			m.note = m.snapshot()
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Live) advance() {
	for i := 0; i < m.speed; i++ {
		err := m.h.Step()
		if errors.Is(err, hostsim.ErrDone) {
			m.done = true
			return
		}
		if err != nil {
			m.err = err
			return
		}
	}
	rec := m.h.Recording()
	if v, ok := rec.Last(hostsim.ChanRotorRPM); ok {
		m.rpm = appendCapped(m.rpm, v)
	}
	if v, ok := rec.Last(hostsim.ChanPower); ok {
		m.power = appendCapped(m.power, v)
	}
}

func (m *Live) snapshot() string {
	m.draw()
	name := fmt.Sprintf("%s_%07.2f.svg", m.h.Config().Name, m.h.Time())
	path := filepath.Join(m.SnapshotDir, name)
	if err := os.WriteFile(path, []byte(CanvasToSVG(m.canvas, 4)), 0o644); err != nil {
		return "snapshot: " + err.Error()
	}
	return "saved " + path
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// draw renders the rotor seen from upwind and a heading needle.
func (m *Live) draw() {
	c := m.canvas
	c.Clear()
	w, h := c.Dots()
	cx, cy := w/2, h/3
	r := float64(h) / 3.2

	c.DrawLine(cx, cy, cx, h-1)
	c.DrawCircle(cx, cy, 1)

	x := m.h.State()
	n := m.h.Config().Turbine.BladeCount
	for b := 0; b < n; b++ {
		psi := x[hostsim.StateAzimuth] + 2*math.Pi*float64(b)/float64(n)
		s, co := math.Sincos(psi)
		c.DrawLine(cx, cy, cx+int(r*s), cy-int(r*co))
	}

	if az, ok := m.h.Recording().Last(hostsim.ChanAzimuth); ok {
		s, co := math.Sincos(az * math.Pi / 180)
		hx, hy := w-8, h-8
		c.DrawCircle(hx, hy, 6)
		c.DrawLine(hx, hy, hx+int(6*s), hy-int(6*co))
	}
}

func (m Live) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.done:
		return StatusPaused.Render("COMPLETE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render(fmt.Sprintf("RUNNING ×%d", m.speed))
}

func (m Live) metric(label, format, name string) string {
	v, ok := m.h.Recording().Last(name)
	text := "-"
	if ok {
		text = fmt.Sprintf(format, v)
	}
	return MetricLabel.Render(label) + MetricValue.Render(text) + "\n"
}

func (m Live) View() string {
	m.draw()
	cfg := m.h.Config()

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(cfg.Name)) + "  " + m.status() + "\n")
	s.WriteString(Subtle.Render(cfg.Controller.Module) + "\n\n")
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.2f s", m.h.Time())) + "\n")
	s.WriteString(m.metric("Wind", "%.2f m/s", hostsim.ChanWind))
	s.WriteString(m.metric("Rotor", "%.2f rpm", hostsim.ChanRotorRPM))
	s.WriteString(m.metric("Generator", "%.0f rpm", hostsim.ChanGeneratorRPM))
	s.WriteString(m.metric("Pitch", "%.2f°", hostsim.ChanPitch))
	s.WriteString(m.metric("Torque", "%.1f kN·m", hostsim.ChanTorque))
	s.WriteString(m.metric("Power", "%.0f kW", hostsim.ChanPower))
	s.WriteString(m.metric("Tower", "%.3f m", hostsim.ChanTowerX))
	s.WriteString(m.metric("Nacelle", "%.1f°", hostsim.ChanAzimuth))
	s.WriteString(m.metric("Yaw error", "%.1f°", hostsim.ChanYawError))
	s.WriteString("\n" + ProgressBar(m.h.Progress(), 30) + "\n")
	s.WriteString(MetricLabel.Render("Power") + Sparkline(m.power, 30) + "\n")

	if len(m.rpm) > 1 {
		chart := asciigraph.Plot(m.rpm, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("rotor rpm"))
		s.WriteString("\n" + chart + "\n")
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	if m.note != "" {
		s.WriteString("\n" + Subtle.Render(m.note) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("space:pause  +/-:speed  s:snapshot  ?:help  q:quit"))

	body := lipgloss.JoinHorizontal(lipgloss.Top, Panel.Render(m.canvas.String()), Panel.Render(s.String()))
	if m.showHelp {
		help := Panel.Render(strings.Join([]string{
			"Space   pause or resume",
			"+ / -   double or halve steps per frame",
			"s       save the rotor view as SVG",
			"?       toggle this help",
			"q       quit and finalise the controllers",
		}, "\n"))
		return help + "\n" + body
	}
	return body
}

// RunLive shows the live view until the user quits, then finalises the
// harness. It returns the run failure, if any, combined with any error from
// finalising.
func RunLive(h *hostsim.Harness) error {
	if err := h.Start(); err != nil {
		return err
	}
	final, err := tea.NewProgram(NewLive(h), tea.WithAltScreen()).Run()
	closeErr := h.Close()
	if err != nil {
		return errors.Join(err, closeErr)
	}
	if live, ok := final.(Live); ok && live.err != nil {
		return errors.Join(live.err, closeErr)
	}
	return closeErr
}
