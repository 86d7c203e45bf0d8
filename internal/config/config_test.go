package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Controller.Module != DefaultController {
		t.Errorf("expected controller %s, got %s", DefaultController, cfg.Controller.Module)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gust")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Wind.GustAmplitude != 6 {
		t.Errorf("expected gust amplitude 6, got %f", cfg.Wind.GustAmplitude)
	}

	cfg.Wind.GustAmplitude = 100
	if Presets["gust"].Wind.GustAmplitude != 6 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
	for _, name := range presets {
		if err := Presets[name].Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"dt", func(c *Config) { c.Dt = 0 }, "dt must be positive"},
		{"duration", func(c *Config) { c.Duration = -1 }, "duration must be positive"},
		{"module", func(c *Config) { c.Controller.Module = "" }, "controller.module"},
		{"blades", func(c *Config) { c.Turbine.BladeCount = 0 }, "blade_count"},
		{"pitch mode", func(c *Config) { c.Turbine.PitchMode = "Cyclic" }, "pitch_mode"},
		{"radius", func(c *Config) { c.Turbine.RotorRadius = 0 }, "rotor_radius"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("yaw-misalignment")
	north := 90.0
	cfg.NorthDirection = &north
	cfg.Controller.AccelRef = &[3]float64{0, 0, 2.4}

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Controller.Module != "go:baseline-yaw" || !loaded.Yaw.Enabled {
		t.Errorf("unexpected controller section %+v", loaded.Controller)
	}
	if loaded.NorthDirection == nil || *loaded.NorthDirection != 90 {
		t.Errorf("expected north direction 90, got %v", loaded.NorthDirection)
	}
	if loaded.Controller.AccelRef == nil || loaded.Controller.AccelRef[2] != 2.4 {
		t.Errorf("expected accel ref, got %v", loaded.Controller.AccelRef)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("name: partial\ndt: 0.1\nwind:\n  mean: 12\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dt != 0.1 || cfg.Wind.Mean != 12 {
		t.Errorf("expected dt 0.1 and wind 12, got %v and %v", cfg.Dt, cfg.Wind.Mean)
	}
	if cfg.Turbine.RotorRadius != 63 || cfg.Wind.AirDensity != 1.225 {
		t.Errorf("unset fields should keep defaults, got %+v", cfg.Turbine)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
