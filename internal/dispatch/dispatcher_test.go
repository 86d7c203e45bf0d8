package dispatch_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/turbinectl/internal/bridge"
	"github.com/san-kum/turbinectl/internal/dispatch"
	"github.com/san-kum/turbinectl/internal/geom"
	"github.com/san-kum/turbinectl/internal/host"
	"github.com/san-kum/turbinectl/internal/laws"
	"github.com/san-kum/turbinectl/internal/module"
	"github.com/san-kum/turbinectl/internal/yaw"
)

func addTurbine(m *host.MemoryModel, name, law string) *host.MemoryObject {
	tb := m.NewObject(name, host.TypeTurbine)
	tb.SetString("PitchControlMode", "Common").SetInteger("BladeCount", 3)
	tb.SetTag(bridge.TagModule, law)
	tb.SetValue("Generator torque", 0).SetValue("Azimuth", 0)
	tb.SetValue("Root connection Ex moment", 0).SetValue("Root connection Ey moment", 0)
	tb.SetValue("Connection Lx moment", 0).SetValue("Connection Ly moment", 0)
	return tb
}

func instant() *host.Turbine {
	return &host.Turbine{
		BladeCount:      3,
		GeneratorAngVel: 100,
		MainShaftAngVel: 1,
		Orientation:     geom.Identity(),
		Acceleration:    r3.Vec{},
	}
}

var _ = Describe("Dispatcher", func() {
	var (
		model   *host.MemoryModel
		turbine *host.MemoryObject
		d       *dispatch.Dispatcher
		reports []string
		loads   int
	)

	initialise := func(obj host.Object) *host.Info {
		info := &host.Info{Action: host.Initialise, Model: model, Object: obj}
		d.Turbine(info)
		return info
	}

	calculate := func(info *host.Info, dataName string, t float64) {
		info.Action = host.Calculate
		info.DataName = dataName
		info.Time = t
		info.Turbine = instant()
		d.Turbine(info)
	}

	finalise := func(info *host.Info) {
		info.Action = host.Finalise
		d.Turbine(info)
	}

	BeforeEach(func() {
		model = host.NewModel("/models/site.dat", 0)
		model.GeneralObject().SetDouble("ActualOuterTimeStep", 0.1)
		model.EnvironmentObject().SetValue("Wind direction", 30)
		turbine = addTurbine(model, "Turbine1", "go:ramp-torque")

		reports = nil
		loads = 0
		router := module.Router{Builtin: laws.Builtin()}
		counting := module.LoaderFunc(func(path string) (module.Module, error) {
			loads++
			return router.Load(path)
		})
		d = dispatch.New(host.ReporterFunc(func(_ host.Object, msg string) {
			reports = append(reports, msg)
		}), bridge.Options{Loader: counting})
	})

	AfterEach(func() {
		d.Close()
	})

	Describe("turbine lifecycle", func() {
		It("shares one controller between the pitch and torque functions", func() {
			pitch := initialise(turbine)
			torque := initialise(turbine)

			Expect(reports).To(BeEmpty())
			Expect(loads).To(Equal(1))
			Expect(d.Len()).To(Equal(1))
			Expect(pitch.Data).To(BeIdenticalTo(torque.Data))

			c, ok := d.Lookup(turbine.ID())
			Expect(ok).To(BeTrue())
			Expect(c.Refs()).To(Equal(2))

			finalise(pitch)
			Expect(d.Len()).To(Equal(1))
			finalise(torque)
			Expect(d.Len()).To(Equal(0))
			Expect(c.State()).To(Equal(bridge.Destroyed))
			Expect(reports).To(BeEmpty())
		})

		It("keeps turbines independent", func() {
			other := addTurbine(model, "Turbine2", "go:ramp-torque")
			a := initialise(turbine)
			b := initialise(other)

			Expect(d.Len()).To(Equal(2))
			Expect(a.Data).NotTo(BeIdenticalTo(b.Data))

			finalise(a)
			_, ok := d.Lookup(other.ID())
			Expect(ok).To(BeTrue())
		})

		It("reports initialise failures prefixed with the object name", func() {
			turbine.DeleteTag(bridge.TagModule)
			info := initialise(turbine)

			Expect(info.Data).To(BeNil())
			Expect(d.Len()).To(Equal(0))
			Expect(loads).To(Equal(0))
			Expect(reports).To(ConsistOf(
				"Turbine1\n\nCould not initialise controller. ControllerDLL tag must be defined",
			))
		})

		It("leaves the live controller alone when a failed registration finalises", func() {
			turbine.DeleteTag(bridge.TagModule)
			failed := initialise(turbine)
			Expect(failed.Data).To(BeNil())

			turbine.SetTag(bridge.TagModule, "go:ramp-torque")
			live := initialise(turbine)
			c, ok := d.Lookup(turbine.ID())
			Expect(ok).To(BeTrue())
			Expect(c.Refs()).To(Equal(1))

			finalise(failed)
			Expect(d.Len()).To(Equal(1))
			Expect(c.Refs()).To(Equal(1))
			Expect(c.State()).NotTo(Equal(bridge.Destroyed))

			calculate(live, bridge.TorqueController, 0)
			Expect(reports).To(HaveLen(1))

			finalise(live)
			Expect(d.Len()).To(Equal(0))
			Expect(c.State()).To(Equal(bridge.Destroyed))
		})

		It("returns the converted torque demand", func() {
			turbine.SetUnits(bridge.UnitsMoment, 2)
			info := initialise(turbine)
			calculate(info, bridge.TorqueController, 0)

			Expect(reports).To(BeEmpty())
			// 100 kNm * logistic(0), converted to model units
			Expect(info.Value).To(BeNumerically("~", -100, 1e-9))
		})

		It("updates once per time across both functions", func() {
			info := initialise(turbine)
			calculate(info, bridge.TorqueController, 1)
			first := info.Value
			calculate(info, bridge.PitchController, 1)

			Expect(reports).To(BeEmpty())
			Expect(info.Pitch).To(HaveLen(1))
			c, _ := d.Lookup(turbine.ID())
			Expect(c.LastUpdate()).To(Equal(1.0))
			torque, err := c.Torque()
			Expect(err).NotTo(HaveOccurred())
			Expect(torque).To(Equal(first))
		})

		It("reports module failures and keeps the controller", func() {
			turbine.SetTag(bridge.TagModule, "go:individual-pitch")
			info := initialise(turbine)
			calculate(info, bridge.PitchController, 0)

			Expect(reports).To(HaveLen(1))
			Expect(reports[0]).To(HavePrefix("Turbine1\n\nCall to DISCON failed:\n"))
			Expect(reports[0]).To(ContainSubstring("individual pitch"))
			Expect(d.Len()).To(Equal(1))

			calculate(info, bridge.PitchController, 0.1)
			Expect(reports).To(HaveLen(2))
		})

		It("rejects outputs other than pitch and torque", func() {
			info := initialise(turbine)
			calculate(info, "WinchController", 0)
			Expect(reports).To(HaveLen(1))
			Expect(reports[0]).To(ContainSubstring("pitch or torque"))
		})

		It("reports calculate without initialise", func() {
			calculate(&host.Info{Model: model, Object: turbine}, bridge.TorqueController, 0)
			Expect(reports).To(ConsistOf(ContainSubstring("not been initialised")))
		})

		It("ignores finalise for unknown objects", func() {
			finalise(&host.Info{Model: model, Object: turbine})
			Expect(reports).To(BeEmpty())
		})

		It("destroys leftover controllers on close", func() {
			info := initialise(turbine)
			c := info.Data.(*bridge.Controller)
			d.Close()
			Expect(d.Len()).To(Equal(0))
			Expect(c.State()).To(Equal(bridge.Destroyed))
		})
	})

	Describe("yaw constraint", func() {
		var constraint *host.MemoryObject

		BeforeEach(func() {
			turbine.SetTag(bridge.TagModule, "go:baseline-yaw")
			constraint = model.NewObject("Yaw", host.TypeConstraint)
			constraint.SetTag(yaw.TagTurbine, "Turbine1")
		})

		It("imposes the controller's yaw", func() {
			info := initialise(turbine)
			calculate(info, bridge.TorqueController, 0)
			Expect(reports).To(BeEmpty())

			ci := &host.Info{Action: host.Initialise, Model: model, Object: constraint}
			d.Constraint(ci)
			ci.Action = host.Calculate
			d.Constraint(ci)
			Expect(reports).To(BeEmpty())

			rate := laws.DefaultYawParams().MaxRate
			Expect(ci.Motion.AngularVelocity.Z).To(BeNumerically("~", rate, 1e-7))
			Expect(ci.Motion.Orientation.At(0, 1)).To(BeNumerically("~", math.Sin(rate*0.1), 1e-7))
		})

		It("reports a missing turbine name", func() {
			constraint.DeleteTag(yaw.TagTurbine)
			d.Constraint(&host.Info{Action: host.Initialise, Model: model, Object: constraint})
			Expect(reports).To(ConsistOf(HavePrefix("Yaw\n\nTurbineName tag must be defined")))
		})

		It("reports a turbine without an active controller", func() {
			ci := &host.Info{Action: host.Initialise, Model: model, Object: constraint}
			d.Constraint(ci)
			ci.Action = host.Calculate
			d.Constraint(ci)
			Expect(reports).To(ConsistOf(ContainSubstring("controller was not found")))
		})
	})
})
