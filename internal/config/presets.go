package config

import "sort"

func preset(mutate func(c *Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"below-rated": preset(func(c *Config) {
		c.Name = "below-rated"
		c.Wind.Mean = 8
		c.Turbine.InitialRotorRPM = 9.2
	}),
	"rated": preset(func(c *Config) {
		c.Name = "rated"
		c.Wind.Mean = 11.4
		c.Turbine.InitialRotorRPM = 12.1
	}),
	"above-rated": preset(func(c *Config) {
		c.Name = "above-rated"
		c.Wind.Mean = 18
		c.Turbine.InitialRotorRPM = 12.1
		c.Turbine.InitialPitch = 15
	}),
	"gust": preset(func(c *Config) {
		c.Name = "gust"
		c.Wind.Mean = 14
		c.Wind.GustAmplitude = 6
		c.Wind.GustStart = 20
		c.Wind.GustDuration = 10
		c.Turbine.InitialRotorRPM = 12.1
		c.Turbine.InitialPitch = 8
	}),
	"turbulent": preset(func(c *Config) {
		c.Name = "turbulent"
		c.Wind.Mean = 11
		c.Wind.Turbulence = 0.12
		c.Seed = 7
		c.Duration = 120
		c.Turbine.InitialRotorRPM = 11.5
	}),
	"floating": preset(func(c *Config) {
		c.Name = "floating"
		c.Controller.Module = "go:baseline-floating"
		c.Wind.Mean = 16
		c.Turbine.TowerFrequency = 0.08
		c.Turbine.InitialRotorRPM = 12.1
		c.Turbine.InitialPitch = 10
	}),
	"yaw-misalignment": preset(func(c *Config) {
		c.Name = "yaw-misalignment"
		c.Controller.Module = "go:baseline-yaw"
		c.Wind.Mean = 9
		c.Wind.Direction = 0
		c.Wind.DirectionStep = 20
		c.Wind.DirectionStepTime = 5
		c.Yaw.Enabled = true
		c.Duration = 120
		c.Turbine.InitialRotorRPM = 10
	}),
	"actuator": preset(func(c *Config) {
		c.Name = "actuator"
		c.Wind.Mean = 16
		c.Controller.UseActuator = true
		c.Controller.ActuatorOmega = 6.28
		c.Controller.ActuatorGamma = 0.7
		c.Dt = 0.02
		c.Turbine.InitialRotorRPM = 12.1
		c.Turbine.InitialPitch = 10
	}),
	"ramp-pitch": preset(func(c *Config) {
		c.Name = "ramp-pitch"
		c.Controller.Module = "go:ramp-pitch"
		c.Wind.Mean = 10
		c.Duration = 30
	}),
	"ramp-torque": preset(func(c *Config) {
		c.Name = "ramp-torque"
		c.Controller.Module = "go:ramp-torque"
		c.Wind.Mean = 6
		c.Duration = 30
	}),
	"individual-pitch": preset(func(c *Config) {
		c.Name = "individual-pitch"
		c.Controller.Module = "go:individual-pitch"
		c.Turbine.PitchMode = "Individual"
		c.Wind.Mean = 10
		c.Duration = 30
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
