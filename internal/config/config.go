package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt         = 0.05
	DefaultDuration   = 60.0
	DefaultController = "go:baseline"
	DefaultWind       = 8.0
	DefaultRotorSpeed = 9.0
)

// Config describes one run of the bundled turbine plant.
type Config struct {
	Name       string  `yaml:"name"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	StartTime  float64 `yaml:"start_time"`
	Seed       int64   `yaml:"seed"`

	Controller ControllerConfig `yaml:"controller"`
	Turbine    TurbineConfig    `yaml:"turbine"`
	Wind       WindConfig       `yaml:"wind"`
	Yaw        YawConfig        `yaml:"yaw"`

	// NorthDirection in degrees; nil leaves it undefined in the model.
	NorthDirection *float64 `yaml:"north_direction,omitempty"`
}

type ControllerConfig struct {
	// Module is a shared library path or a "go:" control law name.
	Module        string      `yaml:"module"`
	Shareable     bool        `yaml:"shareable"`
	InputFile     string      `yaml:"input_file,omitempty"`
	UseActuator   bool        `yaml:"use_actuator"`
	ActuatorOmega float64     `yaml:"actuator_omega"`
	ActuatorGamma float64     `yaml:"actuator_gamma"`
	AccelRef      *[3]float64 `yaml:"accel_ref,omitempty"`
	Encoding      string      `yaml:"encoding,omitempty"`
	TempDir       string      `yaml:"temp_dir,omitempty"`
}

type TurbineConfig struct {
	BladeCount      int     `yaml:"blade_count"`
	PitchMode       string  `yaml:"pitch_mode"`
	RotorRadius     float64 `yaml:"rotor_radius"`
	RotorInertia    float64 `yaml:"rotor_inertia"`
	GearboxRatio    float64 `yaml:"gearbox_ratio"`
	HubHeight       float64 `yaml:"hub_height"`
	TowerMass       float64 `yaml:"tower_mass"`
	TowerFrequency  float64 `yaml:"tower_frequency"`
	TowerDamping    float64 `yaml:"tower_damping"`
	InitialRotorRPM float64 `yaml:"initial_rotor_rpm"`
	InitialPitch    float64 `yaml:"initial_pitch"`
	OverspeedRPM    float64 `yaml:"overspeed_rpm"`
}

type WindConfig struct {
	Mean              float64 `yaml:"mean"`
	Direction         float64 `yaml:"direction"`
	AirDensity        float64 `yaml:"air_density"`
	Turbulence        float64 `yaml:"turbulence"`
	GustAmplitude     float64 `yaml:"gust_amplitude"`
	GustStart         float64 `yaml:"gust_start"`
	GustDuration      float64 `yaml:"gust_duration"`
	DirectionStep     float64 `yaml:"direction_step"`
	DirectionStepTime float64 `yaml:"direction_step_time"`
}

type YawConfig struct {
	Enabled        bool    `yaml:"enabled"`
	InitialAzimuth float64 `yaml:"initial_azimuth"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "turbine",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Controller: ControllerConfig{
			Module:        DefaultController,
			ActuatorOmega: 2 * math.Pi,
			ActuatorGamma: 0.7,
		},
		Turbine: TurbineConfig{
			BladeCount:      3,
			PitchMode:       "Common",
			RotorRadius:     63,
			RotorInertia:    4.38e7,
			GearboxRatio:    97,
			HubHeight:       90,
			TowerMass:       4.4e5,
			TowerFrequency:  0.32,
			TowerDamping:    0.01,
			InitialRotorRPM: DefaultRotorSpeed,
			OverspeedRPM:    14,
		},
		Wind: WindConfig{
			Mean:       DefaultWind,
			AirDensity: 1.225,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the plant and timing values the harness relies on.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Dt > 0) {
		errs = append(errs, fmt.Errorf("dt must be positive, got %g", c.Dt))
	}
	if !(c.Duration > 0) {
		errs = append(errs, fmt.Errorf("duration must be positive, got %g", c.Duration))
	}
	if c.Controller.Module == "" {
		errs = append(errs, errors.New("controller.module must be set"))
	}
	t := c.Turbine
	if t.BladeCount < 1 {
		errs = append(errs, fmt.Errorf("turbine.blade_count must be at least 1, got %d", t.BladeCount))
	}
	if t.PitchMode != "Common" && t.PitchMode != "Individual" {
		errs = append(errs, fmt.Errorf("turbine.pitch_mode must be Common or Individual, got %q", t.PitchMode))
	}
	for name, v := range map[string]float64{
		"turbine.rotor_radius":    t.RotorRadius,
		"turbine.rotor_inertia":   t.RotorInertia,
		"turbine.gearbox_ratio":   t.GearboxRatio,
		"turbine.tower_mass":      t.TowerMass,
		"turbine.tower_frequency": t.TowerFrequency,
		"wind.air_density":        c.Wind.AirDensity,
	} {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", name, v))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.NorthDirection != nil {
		n := *c.NorthDirection
		out.NorthDirection = &n
	}
	if c.Controller.AccelRef != nil {
		r := *c.Controller.AccelRef
		out.Controller.AccelRef = &r
	}
	return &out
}
