package automation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ladder = `
name: ladder
workers: 2
duration: 5
runs:
  - preset: rated
    overrides:
      wind:
        turbulence: 0.1
      seed: 3
  - name: calm
    preset: below-rated
    overrides:
      wind: {mean: 6}
  - preset: rated
sweep:
  preset: below-rated
  param: wind.mean
  min: 5
  max: 11
  steps: 4
`

func TestScenarioConfigs(t *testing.T) {
	s, err := Parse([]byte(ladder))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "ladder" || s.Workers != 2 {
		t.Errorf("unexpected header: %+v", s)
	}

	cfgs, err := s.Configs()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfgs) != 7 {
		t.Fatalf("expected 7 configs, got %d", len(cfgs))
	}

	rated := cfgs[0]
	if rated.Name != "rated" || rated.Wind.Turbulence != 0.1 || rated.Seed != 3 {
		t.Errorf("overrides not applied: %+v", rated.Wind)
	}
	if rated.Wind.Mean != 11.4 {
		t.Errorf("expected preset wind kept, got %f", rated.Wind.Mean)
	}
	if rated.Duration != 5 {
		t.Errorf("expected scenario duration, got %f", rated.Duration)
	}

	if cfgs[1].Name != "calm" || cfgs[1].Wind.Mean != 6 {
		t.Errorf("unexpected calm run: %s %f", cfgs[1].Name, cfgs[1].Wind.Mean)
	}
	if cfgs[2].Name != "rated-2" || cfgs[2].Wind.Turbulence != 0 {
		t.Errorf("expected fresh second rated run, got %s %f", cfgs[2].Name, cfgs[2].Wind.Turbulence)
	}

	want := []float64{5, 7, 9, 11}
	for i, w := range want {
		c := cfgs[3+i]
		if c.Wind.Mean != w {
			t.Errorf("sweep %d: expected wind %f, got %f", i, w, c.Wind.Mean)
		}
		if !strings.HasPrefix(c.Name, "below-rated_wind.mean=") {
			t.Errorf("sweep %d: unexpected name %s", i, c.Name)
		}
	}
}

func TestScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "name: nothing\n"},
		{"unknown preset", "runs:\n  - preset: hurricane\n"},
		{"unknown param", "sweep:\n  param: wind.colour\n  steps: 2\n"},
		{"no steps", "sweep:\n  param: wind.mean\n"},
		{"invalid override", "runs:\n  - overrides:\n      dt: -1\n"},
		{"bad yaml", "runs: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			if err == nil {
				_, err = s.Configs()
			}
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(ladder), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Runs) != 3 || s.Sweep == nil || s.Sweep.Steps != 4 {
		t.Errorf("unexpected scenario: %+v", s)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParamsSorted(t *testing.T) {
	names := Params()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("params not sorted: %v", names)
		}
	}
}
