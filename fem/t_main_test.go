// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"math"
	"testing"

	"github.com/anilkunwar/hyrax/inp"
	"github.com/anilkunwar/hyrax/nucl"
	"github.com/anilkunwar/hyrax/out"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// newSim parses simulation data given as JSON
func newSim(tst *testing.T, key, data string) *inp.Simulation {
	sim, err := inp.ParseSim([]byte(data), ".sim", key)
	if err != nil {
		tst.Fatalf("cannot parse simulation data:\n%v", err)
	}
	sim.DirOut = tst.TempDir()
	return sim
}

// simNoDrivingForce has a positive driving force everywhere
const simNoDrivingForce = `{
  "mesh": {"nx": 4, "ny": 4, "lx": 1, "ly": 1, "minlevel": 0, "maxlevel": 3},
  "solver": {"maxretries": 3, "dtfac": 0.5},
  "thermo": {"chem": {"model": "cte", "prms": {"dg": 1}}},
  "nucl": {"mode": "single", "x": [0.5, 0.5], "time": 0.012},
  "nucleus": {"radius": 0.1},
  "control": {"tf": 0.1, "dt": 0.01}
}`

// simUniform has a uniform negative driving force
const simUniform = `{
  "mesh": {"nx": 4, "ny": 4, "lx": 1, "ly": 1, "minlevel": 0, "maxlevel": 3},
  "solver": {"prms": {"mob": 1, "w": 1}},
  "thermo": {"chem": {"model": "cte", "prms": {"dg": -1}}},
  "nucl": {"seed": 2016, "j0": 200, "gamma": 0.1, "exclradius": 0.2, "opmax": 0.5},
  "nucleus": {"radius": 0.1},
  "control": {"tf": 0.1, "dt": 0.01}
}`

// failing never converges and spoils the fields
type failing struct {
	dts []float64
}

func (o *failing) Advance(dom *Domain, dt float64) (bool, error) {
	o.dts = append(o.dts, dt)
	for _, eid := range dom.Msh.Elems() {
		for ip := 0; ip < dom.Msh.Nip(eid); ip++ {
			dom.Msh.Set("eta", eid, ip, 123)
		}
	}
	return false, nil
}

// flaky fails every other call
type flaky struct {
	ncalls int
	dts    []float64
}

func (o *flaky) Advance(dom *Domain, dt float64) (bool, error) {
	o.ncalls++
	o.dts = append(o.dts, dt)
	return o.ncalls%2 == 0, nil
}

// counting counts calls to Sample
type counting struct {
	nucl.Sampler
	steps []int
}

func (o *counting) Sample(pf *nucl.ProbField, step int, t float64) ([]*nucl.Event, error) {
	o.steps = append(o.steps, step)
	return o.Sampler.Sample(pf, step, t)
}

func Test_relax01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("relax01")

	sim := newSim(tst, "relax01", simNoDrivingForce)
	sim.Solver.Atol = 1e-13
	main, err := NewMainSim(sim, false, chk.Verbose)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	dom := main.Dom
	dom.Msh.SetFunc("eta", func(x []float64) float64 {
		if x[0] < 0.5 {
			return 0
		}
		return 0.9
	})

	dt := 0.1
	converged, err := main.Solver.Advance(dom, dt)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if !converged {
		tst.Errorf("relax solver must converge\n")
		return
	}
	for _, eid := range dom.Msh.Elems() {
		for ip, x := range dom.Msh.IpCoords(eid) {
			η := dom.Msh.Get("eta", eid, ip)
			if x[0] < 0.5 {
				chk.Float64(tst, "η(left)", 1e-15, η, 0)
				continue
			}
			r := η - 0.9 + dt*2.0*η*(1.0-η)*(1.0-2.0*η)
			chk.Float64(tst, "residual", 1e-12, r, 0)
			if η <= 0.9 || η >= 1 {
				tst.Errorf("η must move towards 1. η=%g\n", η)
				return
			}
		}
	}

	// invalid parameters
	sim.Solver.Prms = map[string]interface{}{"mob": 1, "height": 2}
	_, err = NewSolver(sim)
	if err == nil {
		tst.Errorf("unknown parameter must fail\n")
	}
	sim.Solver.Type = "nonexistent"
	_, err = NewSolver(sim)
	if err == nil {
		tst.Errorf("unknown solver must fail\n")
	}
}

func Test_main01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("main01. divergence")

	sim := newSim(tst, "main01", simNoDrivingForce)
	main, err := NewMainSim(sim, true, chk.Verbose)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	solver := new(failing)
	main.Solver = solver
	main.Metrics = out.NewMetrics(prometheus.NewRegistry())

	err = main.Run()
	var div *DivergenceError
	if !errors.As(err, &div) {
		tst.Errorf("Run must return a DivergenceError. err = %v\n", err)
		return
	}
	io.Pforan("%v\n", err)
	chk.Int(tst, "retries", div.Retries, 3)
	chk.Int(tst, "step", div.Step, 1)
	chk.Array(tst, "dts", 1e-17, solver.dts, []float64{0.01, 0.005, 0.0025, 0.00125})
	chk.Int(tst, "main.Retries", main.Retries, 3)
	chk.String(tst, main.State.String(), "Failure")
	chk.Float64(tst, "failures(divergence)", 1e-17, testutil.ToFloat64(main.Metrics.Failures.WithLabelValues("divergence")), 1)
	chk.Float64(tst, "failures(error)", 1e-17, testutil.ToFloat64(main.Metrics.Failures.WithLabelValues("error")), 0)

	// last stable state
	chk.Float64(tst, "T", 1e-17, main.Dom.T, 0)
	chk.Int(tst, "Step", main.Dom.Step, 0)
	chk.Int(tst, "nevents", main.Dom.Hist.Len(), 0)
	for _, eid := range main.Dom.Msh.Elems() {
		for ip := 0; ip < main.Dom.Msh.Nip(eid); ip++ {
			chk.Float64(tst, "η", 1e-17, main.Dom.Msh.Get("eta", eid, ip), 0)
		}
	}

	// summary is saved even if the run fails
	var sum Summary
	err = sum.Read(sim.DirOut, sim.Key, sim.EncType)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	chk.Int(tst, "sum.Retries", sum.Retries, 3)
	chk.String(tst, sum.RunId, main.Summary.RunId)

	// minimum time step
	main, _ = NewMainSim(sim, false, chk.Verbose)
	solver = new(failing)
	main.Solver = solver
	main.Sim.Solver.DtMin = 0.004
	err = main.Step()
	if !errors.As(err, &div) {
		tst.Errorf("Step must return a DivergenceError. err = %v\n", err)
		return
	}
	chk.Int(tst, "retries", div.Retries, 1)
	chk.Array(tst, "dts", 1e-17, solver.dts, []float64{0.01, 0.005})
}

func Test_main02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("main02. retries never re-sample")

	sim := newSim(tst, "main02", simNoDrivingForce)
	main, err := NewMainSim(sim, false, chk.Verbose)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	solver := new(flaky)
	sampler := &counting{Sampler: main.Sampler}
	main.Solver = solver
	main.Sampler = sampler

	for i := 0; i < 3; i++ {
		err = main.Step()
		if err != nil {
			tst.Errorf("%v\n", err)
			return
		}
	}
	chk.Int(tst, "ncalls", solver.ncalls, 6)
	chk.Array(tst, "dts", 1e-17, solver.dts, []float64{0.01, 0.005, 0.01, 0.005, 0.01, 0.005})
	chk.Int(tst, "retries", main.Retries, 3)
	chk.Ints(tst, "sampled steps", sampler.steps, []int{1, 2, 3})
	chk.Float64(tst, "T", 1e-15, main.Dom.T, 0.015)

	// single nucleus accepted @ step 3 and injected after refinement
	hist := main.Dom.Hist
	chk.Int(tst, "nevents", hist.Len(), 1)
	ev, _ := hist.Get(0)
	chk.Int(tst, "event step", ev.Step, 3)
	if !hist.Applied(0) {
		tst.Errorf("nucleus must have been injected\n")
		return
	}
	eid := main.Dom.Msh.Locate([]float64{0.5, 0.5})
	chk.Int(tst, "level @ nucleus", main.Dom.Msh.Level(eid), 3)
	chk.Float64(tst, "η @ nucleus", 1e-12, main.Dom.Msh.Interp("eta", []float64{0.5, 0.5}), 1)
	chk.Float64(tst, "η far away", 1e-15, main.Dom.Msh.Interp("eta", []float64{0.1, 0.1}), 0)
	chk.Int(tst, "summary: nevents", main.Summary.Nevents, 1)
	chk.Int(tst, "summary: napplied", main.Summary.Napplied, 1)

	// each step ends in the stable state
	chk.String(tst, main.State.String(), "Stable")
}

func Test_main03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("main03. checkpoint and resume")

	nsteps := 10
	nhalf := 5

	// reference run
	ref, err := NewMainSim(newSim(tst, "main03", simUniform), false, chk.Verbose)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	for i := 0; i < nsteps; i++ {
		if err = ref.Step(); err != nil {
			tst.Errorf("%v\n", err)
			return
		}
	}
	events := ref.Dom.Hist.Snapshot()
	io.Pforan("number of events = %d\n", len(events))
	if len(events) < 2 {
		tst.Errorf("reference run must produce at least two events\n")
		return
	}

	// interrupted run
	first, _ := NewMainSim(newSim(tst, "main03", simUniform), false, chk.Verbose)
	for i := 0; i < nhalf; i++ {
		if err = first.Step(); err != nil {
			tst.Errorf("%v\n", err)
			return
		}
	}
	cp, err := first.Checkpoint()
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	chk.Int(tst, "cp.Step", cp.Step, nhalf)

	// resumed run
	second, _ := NewMainSim(newSim(tst, "main03", simUniform), false, chk.Verbose)
	err = second.Resume(cp)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	if !second.Summary.Resumed {
		tst.Errorf("summary must record the resume\n")
	}
	for i := nhalf; i < nsteps; i++ {
		if err = second.Step(); err != nil {
			tst.Errorf("%v\n", err)
			return
		}
	}

	// compare
	res := second.Dom.Hist.Snapshot()
	chk.Int(tst, "nevents", len(res), len(events))
	for i, ev := range events {
		chk.Int(tst, "id", res[i].Id, ev.Id)
		chk.Int(tst, "step", res[i].Step, ev.Step)
		chk.Float64(tst, "time", 1e-15, res[i].Time, ev.Time)
		chk.Array(tst, "x", 1e-15, res[i].X, ev.X)
	}
	chk.Ints(tst, "applied", second.Dom.Hist.AppliedIds(), ref.Dom.Hist.AppliedIds())
	chk.Int(tst, "ncells", len(second.Dom.Msh.Elems()), len(ref.Dom.Msh.Elems()))
	x := events[0].X
	chk.Float64(tst, "η", 1e-14, second.Dom.Msh.Interp("eta", x), ref.Dom.Msh.Interp("eta", x))

	// exclusion zones are respected
	for i := 0; i < len(res); i++ {
		for j := i + 1; j < len(res); j++ {
			d := math.Hypot(res[i].X[0]-res[j].X[0], res[i].X[1]-res[j].X[1])
			if d < 0.2 {
				tst.Errorf("events %d and %d are too close: %g\n", i, j, d)
			}
		}
	}

	// wrong seed
	other := newSim(tst, "main03", simUniform)
	other.Nucl.Seed = 1
	third, _ := NewMainSim(other, false, chk.Verbose)
	if err = third.Resume(cp); err == nil {
		tst.Errorf("resume with a different seed must fail\n")
	}
}

// simHotspot has a driving force only @ one integration point of the coarse mesh: the cold spot
// is centred @ the integration point (0.4868, 0.4868) of the level-2 cell [0.4375,0.5]²
const simHotspot = `{
  "functions": [
    {"name": "temp", "type": "gauss", "prms": {"v0": 1.2, "amp": -0.5, "x0": [0.486793, 0.486793], "sigma": 0.01}}
  ],
  "mesh": {"nx": 4, "ny": 4, "lx": 1, "ly": 1, "minlevel": 2, "maxlevel": 4},
  "thermo": {"chem": {"model": "undercooling", "prms": {"lv": 1, "t0": 1}}},
  "nucl": {"seed": 3, "j0": 1e12, "gamma": 0.1, "exclradius": 0.1, "opmax": 0.5},
  "nucleus": {"radius": 0.05},
  "control": {"tf": 0.05, "dt": 0.01},
  "ini": [{"key": "T", "func": "temp"}]
}`

func Test_main04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("main04. hotspot with probability equal to one")

	main, err := NewMainSim(newSim(tst, "main04", simHotspot), false, chk.Verbose)
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	sampler := &counting{Sampler: main.Sampler}
	main.Sampler = sampler

	// first evaluation
	err = main.Step()
	if err != nil {
		tst.Errorf("%v\n", err)
		return
	}
	hist := main.Dom.Hist
	chk.Int(tst, "nevents after first step", hist.Len(), 1)
	ev, _ := hist.Get(0)
	chk.Int(tst, "event step", ev.Step, 1)
	d := math.Hypot(ev.X[0]-0.486793, ev.X[1]-0.486793)
	io.Pforan("x = %v  d = %g\n", ev.X, d)
	if d > 1e-4 {
		tst.Errorf("event must be located @ the hotspot. d=%g\n", d)
		return
	}
	if !hist.Applied(0) {
		tst.Errorf("nucleus must have been injected in the first step\n")
		return
	}
	chk.Float64(tst, "η @ hotspot", 1e-12, main.Dom.Msh.Interp("eta", ev.X), 1)

	// further steps add nothing
	for main.Dom.T < main.Sim.Control.Tf-tolT {
		err = main.Step()
		if err != nil {
			tst.Errorf("%v\n", err)
			return
		}
	}
	chk.Ints(tst, "sampled steps", sampler.steps, []int{1, 2, 3, 4, 5})
	chk.Int(tst, "nevents", hist.Len(), 1)
	chk.Float64(tst, "η @ hotspot", 1e-12, main.Dom.Msh.Interp("eta", ev.X), 1)
	chk.Float64(tst, "η far away", 1e-15, main.Dom.Msh.Interp("eta", []float64{0.9, 0.1}), 0)
}
