// Package automation expands scripted scenarios into batches of
// harness configurations.
package automation

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/turbinectl/internal/config"
)

// Scenario is a named batch of runs read from YAML.
//
//	name: wind-ladder
//	workers: 4
//	runs:
//	  - preset: rated
//	    overrides:
//	      wind: {turbulence: 0.1}
//	sweep:
//	  preset: below-rated
//	  param: wind.mean
//	  min: 5
//	  max: 11
//	  steps: 4
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Workers     int        `yaml:"workers"`
	Duration    float64    `yaml:"duration,omitempty"`
	Runs        []Run      `yaml:"runs"`
	Sweep       *Parameter `yaml:"sweep,omitempty"`
}

// Run starts from a preset and applies overrides in config file syntax.
type Run struct {
	Name      string    `yaml:"name"`
	Preset    string    `yaml:"preset"`
	Overrides yaml.Node `yaml:"overrides"`
}

// Parameter spreads steps values of one parameter evenly over [Min, Max].
type Parameter struct {
	Preset string  `yaml:"preset"`
	Param  string  `yaml:"param"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Steps  int     `yaml:"steps"`
}

var params = map[string]func(*config.Config, float64){
	"wind.mean":                 func(c *config.Config, v float64) { c.Wind.Mean = v },
	"wind.direction":            func(c *config.Config, v float64) { c.Wind.Direction = v },
	"wind.turbulence":           func(c *config.Config, v float64) { c.Wind.Turbulence = v },
	"wind.gust_amplitude":       func(c *config.Config, v float64) { c.Wind.GustAmplitude = v },
	"turbine.initial_rotor_rpm": func(c *config.Config, v float64) { c.Turbine.InitialRotorRPM = v },
	"turbine.initial_pitch":     func(c *config.Config, v float64) { c.Turbine.InitialPitch = v },
	"turbine.tower_damping":     func(c *config.Config, v float64) { c.Turbine.TowerDamping = v },
	"controller.actuator_omega": func(c *config.Config, v float64) { c.Controller.ActuatorOmega = v },
	"controller.actuator_gamma": func(c *config.Config, v float64) { c.Controller.ActuatorGamma = v },
	"yaw.initial_azimuth":       func(c *config.Config, v float64) { c.Yaw.InitialAzimuth = v },
}

// Params lists the parameter names a sweep accepts.
func Params() []string {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Runs) == 0 && s.Sweep == nil {
		return nil, errors.New("scenario has no runs")
	}
	return &s, nil
}

// Configs expands the scenario into validated configurations, explicit runs
// first. Every configuration gets a distinct name.
func (s *Scenario) Configs() ([]*config.Config, error) {
	var cfgs []*config.Config
	for i, r := range s.Runs {
		cfg, err := r.config()
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		cfgs = append(cfgs, cfg)
	}

	if s.Sweep != nil {
		swept, err := s.Sweep.configs()
		if err != nil {
			return nil, fmt.Errorf("sweep: %w", err)
		}
		cfgs = append(cfgs, swept...)
	}

	seen := make(map[string]int)
	for _, cfg := range cfgs {
		if s.Duration > 0 {
			cfg.Duration = s.Duration
		}
		if n := seen[cfg.Name]; n > 0 {
			seen[cfg.Name] = n + 1
			cfg.Name = fmt.Sprintf("%s-%d", cfg.Name, n+1)
		} else {
			seen[cfg.Name] = 1
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Name, err)
		}
	}
	return cfgs, nil
}

func (r Run) config() (*config.Config, error) {
	cfg, err := preset(r.Preset)
	if err != nil {
		return nil, err
	}
	if !r.Overrides.IsZero() {
		if err := r.Overrides.Decode(cfg); err != nil {
			return nil, fmt.Errorf("overrides: %w", err)
		}
	}
	if r.Name != "" {
		cfg.Name = r.Name
	}
	return cfg, nil
}

func (p *Parameter) configs() ([]*config.Config, error) {
	set, ok := params[p.Param]
	if !ok {
		return nil, fmt.Errorf("unknown parameter %q (available: %v)", p.Param, Params())
	}
	if p.Steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	cfgs := make([]*config.Config, 0, p.Steps)
	for i := 0; i < p.Steps; i++ {
		v := p.Min
		if p.Steps > 1 {
			v += (p.Max - p.Min) * float64(i) / float64(p.Steps-1)
		}
		cfg, err := preset(p.Preset)
		if err != nil {
			return nil, err
		}
		set(cfg, v)
		cfg.Name = fmt.Sprintf("%s_%s=%g", cfg.Name, p.Param, v)
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

func preset(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}
	return cfg, nil
}
