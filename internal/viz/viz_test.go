package viz

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/hostsim"
	"github.com/san-kum/turbinectl/internal/sim"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(10, 10)

	if c.Grid[0][0] != brailleBlank|0x1 {
		t.Errorf("expected dot 1 set, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != brailleBlank|0x80 {
		t.Errorf("expected dot 8 set, got %U", c.Grid[0][1])
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)
	for col := 0; col < 4; col++ {
		if c.Grid[0][col] != brailleBlank|0x1|0x8 {
			t.Errorf("cell %d: expected top row lit, got %U", col, c.Grid[0][col])
		}
	}
	if w, h := c.Dots(); w != 8 || h != 4 {
		t.Errorf("expected 8x4 dots, got %dx%d", w, h)
	}
}

func testRecording() *sim.Recording {
	rec := sim.NewRecording("rotor_rpm", "pitch_deg")
	for i := 0; i < 200; i++ {
		_ = rec.Add(float64(i)*0.1, 9+float64(i)*0.01, float64(i%10))
	}
	return rec
}

func TestPlotChannels(t *testing.T) {
	out, err := PlotChannels(testRecording(), nil, PlotOptions{Width: 40, Height: 5})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "rotor_rpm") || !strings.Contains(out, "pitch_deg") {
		t.Errorf("expected captions for both channels:\n%s", out)
	}
}

func TestPlotChannelUnknown(t *testing.T) {
	if _, err := PlotChannel(testRecording(), "nope", PlotOptions{}); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestDownsample(t *testing.T) {
	xs := make([]float64, 101)
	for i := range xs {
		xs[i] = float64(i)
	}
	got := downsample(xs, 11)
	if len(got) != 11 || got[0] != 0 || got[10] != 100 || got[5] != 50 {
		t.Errorf("unexpected downsample %v", got)
	}
	if len(downsample(xs, 500)) != 101 {
		t.Error("short series should be kept")
	}
}

func TestSparklineWidth(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("expected empty line, got %q", got)
	}
	if !strings.Contains(Sparkline(values, 4), "█") {
		t.Error("expected the maximum to reach the top bar")
	}
}

func TestLiveSteps(t *testing.T) {
	cfg := config.GetPreset("ramp-torque")
	cfg.Duration = 1
	cfg.Dt = 0.1
	h, err := hostsim.New(cfg, hostsim.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Start(); err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	var m tea.Model = NewLive(h)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	for i := 0; i < 10; i++ {
		m, _ = m.Update(TickMsg{})
	}

	live := m.(Live)
	live.SnapshotDir = t.TempDir()
	m, _ = live.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	live = m.(Live)
	if !strings.HasPrefix(live.note, "saved ") {
		t.Errorf("expected snapshot saved, got %q", live.note)
	}
	files, _ := filepath.Glob(filepath.Join(live.SnapshotDir, "*.svg"))
	if len(files) != 1 {
		t.Errorf("expected one snapshot, got %v", files)
	}

	if live.Err() != nil {
		t.Fatal(live.Err())
	}
	if !live.done || !h.Done() {
		t.Errorf("expected the run to complete, t=%f", h.Time())
	}
	if view := live.View(); !strings.Contains(view, "RAMP-TORQUE") || !strings.Contains(view, "COMPLETE") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	out := CanvasToSVG(c, 4)
	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("expected 2 dots, got %d", got)
	}
	if !strings.Contains(out, `width="16" height="16"`) {
		t.Errorf("unexpected size:\n%s", out)
	}
	if !strings.Contains(out, `cx="2.0" cy="2.0"`) || !strings.Contains(out, `cx="14.0" cy="14.0"`) {
		t.Errorf("unexpected dot positions:\n%s", out)
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}
}

func TestChannelSVG(t *testing.T) {
	rec := testRecording()
	values, ok := rec.Channel("rotor_rpm")
	if !ok {
		t.Fatal("missing channel")
	}
	out, err := ChannelSVG("rotor_rpm", rec.Times, values, 400, 200, "#ff8800")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, "rotor_rpm") {
		t.Errorf("unexpected header:\n%.200s", out)
	}
	if got := strings.Count(out, " L"); got != len(values)-1 {
		t.Errorf("expected %d segments, got %d", len(values)-1, got)
	}

	if _, err := ChannelSVG("x", []float64{0}, []float64{1}, 10, 10, "red"); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, err := ChannelSVG("x", []float64{0, 1}, []float64{1}, 10, 10, "red"); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}
