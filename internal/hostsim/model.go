package hostsim

import (
	"encoding/json"
	"math"
	"path/filepath"
	"strconv"

	"github.com/san-kum/turbinectl/internal/bridge"
	"github.com/san-kum/turbinectl/internal/geom"
	"github.com/san-kum/turbinectl/internal/host"
	"github.com/san-kum/turbinectl/internal/yaw"
)

// Object names in the generated model.
const (
	TurbineName    = "Turbine1"
	ConstraintName = "Yaw"
)

// Result variables sampled by the controller bridge.
const (
	varGeneratorTorque = "Generator torque"
	varBladePitch      = "Blade pitch"
	varWindDirection   = "Wind direction"
	varAzimuth         = "Azimuth"
	varRootEx          = "Root connection Ex moment"
	varRootEy          = "Root connection Ey moment"
	varHubLx           = "Connection Lx moment"
	varHubLy           = "Connection Ly moment"
)

// windShear scales the once-per-revolution variation of out-of-plane blade
// root moments.
const windShear = 0.1

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// buildModel lays out the host model for cfg. Model units are kN and m, so
// every units conversion factor is 1.
func (h *Harness) buildModel(dir string) error {
	cfg := h.cfg
	m := host.NewModel(filepath.Join(dir, cfg.Name+".dat"), cfg.StartTime)

	general := m.GeneralObject()
	general.SetDouble("ActualOuterTimeStep", cfg.Dt)
	if cfg.NorthDirection != nil {
		general.SetDouble("NorthDirection", *cfg.NorthDirection)
	}

	m.EnvironmentObject().SetSample(varWindDirection, func(host.Extra) (float64, error) {
		return h.wind.Direction(h.t), nil
	})

	tb := m.NewObject(TurbineName, host.TypeTurbine)
	tb.SetString("PitchControlMode", cfg.Turbine.PitchMode).
		SetInteger("BladeCount", cfg.Turbine.BladeCount)

	c := cfg.Controller
	tb.SetTag(bridge.TagModule, c.Module).
		SetTag(bridge.TagShareable, boolString(c.Shareable))
	if c.InputFile != "" {
		tb.SetTag(bridge.TagInputFile, c.InputFile)
	}
	if c.UseActuator {
		tb.SetTag(bridge.TagActuator, "True").
			SetTag(bridge.TagOmega, strconv.FormatFloat(c.ActuatorOmega, 'g', -1, 64)).
			SetTag(bridge.TagGamma, strconv.FormatFloat(c.ActuatorGamma, 'g', -1, 64))
	}
	if c.AccelRef != nil {
		raw, err := json.Marshal(c.AccelRef[:])
		if err != nil {
			return err
		}
		tb.SetTag(bridge.TagAccelRef, string(raw))
	}

	tb.SetSample(varGeneratorTorque, func(host.Extra) (float64, error) {
		// reaction torque on the nacelle, kN·m
		return -h.torque / 1000, nil
	})
	tb.SetSample(varAzimuth, func(host.Extra) (float64, error) {
		return h.nacelleAzimuth(), nil
	})
	tb.SetSample(varBladePitch, func(e host.Extra) (float64, error) {
		return geom.Degrees(h.bladePitch(e.Blade)), nil
	})
	tb.SetSample(varRootEy, func(e host.Extra) (float64, error) {
		return -h.rootOutOfPlane(e.Blade) / 1000, nil
	})
	tb.SetSample(varRootEx, func(e host.Extra) (float64, error) {
		return -h.aero / float64(cfg.Turbine.BladeCount) / 1000, nil
	})
	tb.SetSample(varHubLy, func(host.Extra) (float64, error) {
		ly, _ := h.hubMoments()
		return ly / 1000, nil
	})
	tb.SetSample(varHubLx, func(host.Extra) (float64, error) {
		_, lz := h.hubMoments()
		return -lz / 1000, nil
	})
	h.turbine = tb

	if cfg.Yaw.Enabled {
		h.constraint = m.NewObject(ConstraintName, host.TypeConstraint).
			SetTag(yaw.TagTurbine, TurbineName)
	}
	h.model = m
	return nil
}

func (h *Harness) bladeAzimuth(blade int) float64 {
	n := float64(h.cfg.Turbine.BladeCount)
	return h.x[StateAzimuth] + 2*math.Pi*float64(blade-1)/n
}

// rootOutOfPlane is the flapwise root moment (N·m) of a blade: its share of
// the thrust acting at two thirds span, modulated by shear.
func (h *Harness) rootOutOfPlane(blade int) float64 {
	n := float64(h.cfg.Turbine.BladeCount)
	arm := 2 * h.cfg.Turbine.RotorRadius / 3
	return h.thrust / n * arm * (1 + windShear*math.Cos(h.bladeAzimuth(blade)))
}

// hubMoments resolves the blade root moments into rotor tilt and yaw
// moments (N·m).
func (h *Harness) hubMoments() (tilt, yawMoment float64) {
	for b := 1; b <= h.cfg.Turbine.BladeCount; b++ {
		m := h.rootOutOfPlane(b)
		psi := h.bladeAzimuth(b)
		tilt += m * math.Cos(psi)
		yawMoment += m * math.Sin(psi)
	}
	return tilt, yawMoment
}

func (h *Harness) bladePitch(blade int) float64 {
	if blade < 1 || blade > len(h.pitch) {
		return h.meanPitch()
	}
	return h.pitch[blade-1]
}

func (h *Harness) meanPitch() float64 {
	if len(h.pitch) == 0 {
		return 0
	}
	var sum float64
	for _, p := range h.pitch {
		sum += p
	}
	return sum / float64(len(h.pitch))
}

// nacelleAzimuth is the heading (deg) of the nacelle.
func (h *Harness) nacelleAzimuth() float64 {
	return h.cfg.Yaw.InitialAzimuth + geom.Degrees(h.yaw)
}

// rotorWind is the wind component normal to the rotor disc.
func (h *Harness) rotorWind(t float64) float64 {
	misalign := geom.Radians(h.wind.Direction(t) - h.nacelleAzimuth())
	return h.wind.Speed(t) * math.Max(0, math.Cos(misalign))
}
