package integrators_test

import (
	"math"
	"testing"

	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/hostsim"
	"github.com/san-kum/turbinectl/internal/integrators"
	"github.com/san-kum/turbinectl/internal/sim"
)

func benchPlant(b *testing.B, name string) {
	integ, err := integrators.Get(name)
	if err != nil {
		b.Fatal(err)
	}
	cfg := config.DefaultConfig()
	plant := hostsim.NewPlant(cfg.Turbine, cfg.Wind.AirDensity)

	omega := 9 * 2 * math.Pi / 60
	u := make(sim.Control, plant.ControlDim())
	u[hostsim.ControlWind] = 8
	u[hostsim.ControlTorque] = plant.EquilibriumTorque(omega, 0, 8)
	x := sim.State{0, omega, 0, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(plant, x, u, 0, 0.05)
	}
}

func BenchmarkEulerPlant(b *testing.B) { benchPlant(b, "euler") }
func BenchmarkRK4Plant(b *testing.B)   { benchPlant(b, "rk4") }
