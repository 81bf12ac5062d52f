// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the simulation context, the solve collaborators and the step
// orchestrator sequencing the nucleation engine around each solve
package fem

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/anilkunwar/hyrax/inp"
	"github.com/anilkunwar/hyrax/nucl"
	"github.com/anilkunwar/hyrax/out"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// tolerance to compare times
const tolT = 1e-10

// State holds the state of the step orchestrator
type State int

// states of the step orchestrator
const (
	AdvanceSolve State = iota
	EvaluateNucleation
	RefineMesh
	ProjectSolution
	InjectNuclei
	Stable
	Failure
)

// String returns the name of state
func (s State) String() string {
	switch s {
	case AdvanceSolve:
		return "AdvanceSolve"
	case EvaluateNucleation:
		return "EvaluateNucleation"
	case RefineMesh:
		return "RefineMesh"
	case ProjectSolution:
		return "ProjectSolution"
	case InjectNuclei:
		return "InjectNuclei"
	case Stable:
		return "Stable"
	case Failure:
		return "Failure"
	}
	return io.Sf("State(%d)", int(s))
}

// Main holds all data for a simulation with nucleation
type Main struct {

	// collaborators
	Sim     *inp.Simulation // simulation data
	Summary *Summary        // summary structure
	Dom     *Domain         // mesh, fields, history and time
	Solver  Solver          // advances fields by one time step
	Eval    *nucl.Evaluator // probability field evaluator
	Sampler nucl.Sampler    // event sampler
	Inj     *nucl.Injector  // nucleus injector
	Mrk     *nucl.Marker    // refinement marker
	Metrics *out.Metrics    // metrics; nil => disabled
	Store   ckp.Store       // checkpoints are saved @ output times; nil => disabled
	Pf      *nucl.ProbField // probability field of last evaluation
	ShowMsg bool            // show messages
	State   State           // state of step orchestrator
	Retries int             // total number of solve retries

	// internal
	saveSummary bool       // save summary at exit
	lastSampled int        // index of last step with evaluation; -1 => none
	prevStats   nucl.Stats // sampler counters after last evaluation
	requests    []int      // elements to be refined so pending nuclei can be injected
	cycles      int        // number of refine-project-inject cycles in current step
	tout        float64    // next output time
	tidx        int        // index of next output
}

// NewMain returns a new Main structure
//  Input:
//   simfilepath -- simulation (.sim or .yaml) filename including full path
//   alias       -- word to be appended to simulation key; e.g. when running multiple simulations
//   erasePrev   -- erase previous results files
//   saveSummary -- save summary at exit
//   readSummary -- read summary of previous simulation
//   verbose     -- show messages
func NewMain(simfilepath, alias string, erasePrev, saveSummary, readSummary, verbose bool) (o *Main, err error) {

	// read input data
	sim, err := inp.ReadSim(simfilepath, alias, erasePrev, saveSummary)
	if err != nil {
		return
	}
	if verbose {
		io.Pf("> Simulation file read\n")
	}
	o, err = NewMainSim(sim, saveSummary, verbose)
	if err != nil {
		return
	}

	// read summary of previous simulation
	if readSummary {
		err = o.Summary.Read(sim.DirOut, sim.Key, sim.EncType)
		if err != nil {
			return nil, err
		}
	}
	return
}

// NewMainSim returns a new Main structure using simulation data already read
func NewMainSim(sim *inp.Simulation, saveSummary, verbose bool) (o *Main, err error) {

	// new Main object
	o = new(Main)
	o.Sim = sim
	o.Summary = NewSummary()
	o.ShowMsg = verbose
	o.saveSummary = saveSummary
	o.lastSampled = -1

	// domain
	o.Dom, err = NewDomain(sim, verbose)
	if err != nil {
		return nil, err
	}

	// solver
	o.Solver, err = NewSolver(sim)
	if err != nil {
		return nil, err
	}

	// evaluator
	nc := &sim.Nucl
	o.Eval = &nucl.Evaluator{
		Chem:       sim.Thermo.ChemMdl,
		J0:         nc.J0,
		Gamma:      nc.Gamma,
		Kb:         nc.Kb,
		Q:          nc.Q,
		Temp:       nc.Temp,
		OpMax:      nc.OpMax,
		CompKey:    nc.CompKey,
		TempKey:    nc.TempKey,
		StrainKeys: nc.StrainKeys,
		OpKeys:     nc.OpKeys,
		Nworkers:   nc.Nworkers,
	}
	if el := sim.Thermo.Elastic(); el != nil {
		o.Eval.Elast = el
	}

	// sampler
	nu := &sim.Nucleus
	shape := nucl.Shape{Radius: nu.Radius, Amp: nu.Amp, Axes: nu.Axes}
	switch nc.Mode {
	case "single":
		o.Sampler = &nucl.Single{Hist: o.Dom.Hist, X: nc.X, Time: nc.Time, Variant: nc.Variant, Shape: shape}
	default:
		s := nucl.NewStochastic(o.Dom.Hist, nc.Seed, shape)
		s.Nvariants = nc.Nvariants
		s.MaxPerStep = nc.MaxPerStep
		s.MaxTotal = nc.MaxTotal
		s.Tstart = nc.Tstart
		s.Tend = nc.Tend
		o.Sampler = s
	}

	// injector
	o.Inj = &nucl.Injector{
		Hist:       o.Dom.Hist,
		OpKeys:     nc.OpKeys,
		CompKey:    nc.CompKey,
		CompIn:     nu.CompIn,
		Conserve:   nu.Conserve,
		CompFactor: nu.CompFactor,
		Width:      nu.Width,
		Profile:    nu.Profile,
		MinCells:   nu.MinCells,
	}

	// marker
	mk := &sim.Marker
	o.Mrk = &nucl.Marker{
		Prefine:  mk.Prefine,
		Pcoarsen: mk.Pcoarsen,
		Cooldown: mk.Cooldown,
		MinLevel: sim.Mesh.MinLevel,
		MaxLevel: sim.Mesh.MaxLevel,
		Buffer:   mk.Buffer,
		Recent:   mk.Recent,
	}

	// output
	o.tout = sim.Control.DtOut
	if o.ShowMsg {
		io.Pf("> Step orchestrator allocated (solver=%s, sampler=%s)\n", sim.Solver.Type, nc.Mode)
	}
	return
}

// Run runs the simulation until the final time
func (o *Main) Run() (err error) {

	// exit commands
	cputime := time.Now()
	defer func() { err = o.onexit(cputime, err) }()

	// message
	if o.ShowMsg {
		io.Pf("> Running simulation %q from t=%g to t=%g\n", o.Sim.Key, o.Dom.T, o.Sim.Control.Tf)
	}

	// time loop
	tf := o.Sim.Control.Tf
	for o.Dom.T < tf-tolT {
		err = o.Step()
		if err != nil {
			return
		}
		if o.Dom.T >= o.tout-tolT || o.Dom.T >= tf-tolT {
			err = o.output()
			if err != nil {
				return
			}
			for o.tout <= o.Dom.T+tolT {
				o.tout += o.Sim.Control.DtOut
			}
		}
	}
	return
}

// Step performs one complete time step: solve, evaluation of nucleation, mesh adaptation and
// injection of nuclei
func (o *Main) Step() (err error) {
	cputime := time.Now()
	o.State = AdvanceSolve
	o.cycles = 0
	o.requests = nil
	for {
		if o.ShowMsg && o.Sim.Data.Verbose {
			io.Pf("  step %d: %v\n", o.Dom.Step+1, o.State)
		}
		switch o.State {

		case AdvanceSolve:
			err = o.advance()
			if err != nil {
				o.State = Failure
				continue
			}
			o.State = Stable

		case Stable:
			if o.lastSampled == o.Dom.Step {
				o.updateSummary()
				o.Metrics.Stepped(cputime)
				return
			}
			o.State = EvaluateNucleation

		case EvaluateNucleation:
			var adapt bool
			adapt, err = o.evaluate()
			if err != nil {
				o.State = Failure
				continue
			}
			switch {
			case adapt:
				o.State = RefineMesh
			case len(o.Dom.Hist.Pending()) > 0:
				o.State = InjectNuclei
			default:
				o.State = Stable
			}

		case RefineMesh:
			o.refineMesh()
			o.State = ProjectSolution

		case ProjectSolution:
			o.Dom.Msh.Project()
			o.State = InjectNuclei

		case InjectNuclei:
			err = o.inject()
			if err != nil {
				o.State = Failure
				continue
			}
			if len(o.requests) > 0 && o.cycles < o.Sim.Solver.MaxAdapt {
				o.cycles++
				o.State = RefineMesh
				continue
			}
			if len(o.requests) > 0 {
				if o.ShowMsg {
					io.Pforan("  injection of %d nuclei deferred to the next step\n", len(o.Dom.Hist.Pending()))
				}
				o.Mrk.Force(o.requests)
				o.requests = nil
			}
			o.State = Stable

		case Failure:
			var div *DivergenceError
			o.Metrics.Failed(errors.As(err, &div))
			return

		default:
			chk.Panic("step orchestrator reached an invalid state %v", o.State)
		}
	}
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// advance solves one time step with divergence control. The time step is reduced after each
// failed solve; the domain holds the last stable state if all retries fail
func (o *Main) advance() (err error) {
	d := o.Dom
	dt := o.Sim.Control.Dt
	if d.T+dt > o.Sim.Control.Tf {
		dt = math.Max(o.Sim.Control.Tf-d.T, tolT)
	}
	d.backup()
	for retry := 0; ; retry++ {
		converged, e := o.Solver.Advance(d, dt)
		if e != nil {
			if er := d.restore(); er != nil {
				return chk.Err("%v\ncannot restore domain: %v", e, er)
			}
			return e
		}
		if converged {
			d.T += dt
			d.Step++
			d.Dt = dt
			return
		}
		err = d.restore()
		if err != nil {
			return
		}
		if retry >= o.Sim.Solver.MaxRetries || dt*o.Sim.Solver.DtFac < o.Sim.Solver.DtMin {
			return &DivergenceError{Step: d.Step + 1, Time: d.T, Dt: dt, Retries: retry}
		}
		o.Retries++
		o.Metrics.Retried()
		dt *= o.Sim.Solver.DtFac
		if o.ShowMsg {
			io.Pforan("  step %d did not converge; retrying with Δt=%g\n", d.Step+1, dt)
		}
	}
}

// evaluate computes the probability field, samples new events and marks elements
//  Output:
//   adapt -- the marker requests refinement or coarsening
func (o *Main) evaluate() (adapt bool, err error) {
	d := o.Dom
	o.Pf, err = o.Eval.Compute(d.Msh, d.Dt)
	if err != nil {
		return
	}
	events, err := o.Sampler.Sample(o.Pf, d.Step, d.T)
	if err != nil {
		return
	}
	o.lastSampled = d.Step
	stats := o.Sampler.Stats()
	o.Metrics.Sampled(stats.Accepted-o.prevStats.Accepted, stats.Rejected-o.prevStats.Rejected, d.Hist.Len(), o.Pf.Max(), o.Pf.Total())
	o.prevStats = stats
	if o.ShowMsg {
		for _, ev := range events {
			io.Pf("  nucleus %d accepted @ %v (t=%g, variant=%d)\n", ev.Id, ev.X, ev.Time, ev.Variant)
		}
	}
	eids, flags := o.Mrk.Mark(d.Msh, o.Pf, d.Hist, d.Step)
	for i, f := range flags {
		switch f {
		case nucl.Refine:
			d.Msh.Refine(eids[i])
			adapt = true
		case nucl.Coarsen:
			d.Msh.Coarsen(eids[i])
			adapt = true
		}
	}
	return
}

// refineMesh applies the requests of marker and of deferred injections
func (o *Main) refineMesh() {
	for _, eid := range o.requests {
		o.Dom.Msh.Refine(eid)
	}
	o.requests = nil
	changed := o.Dom.Msh.Adapt()
	if changed && o.ShowMsg {
		io.Pf("  mesh adapted: %d cells\n", len(o.Dom.Msh.Elems()))
	}
}

// inject injects all pending nuclei. Nuclei requiring a finer mesh remain pending and the
// elements to be refined are collected in o.requests
func (o *Main) inject() (err error) {
	seen := make(map[int]bool)
	for _, ev := range o.Dom.Hist.Pending() {
		err = o.Inj.Inject(o.Dom.Msh, ev)
		var coarse *nucl.MeshTooCoarseError
		switch {
		case err == nil:
			o.Metrics.Injected(false)
			if o.ShowMsg {
				io.Pf("  nucleus %d injected\n", ev.Id)
			}
		case errors.As(err, &coarse):
			o.Metrics.Injected(true)
			for _, eid := range coarse.Eids {
				if !seen[eid] {
					seen[eid] = true
					o.requests = append(o.requests, eid)
				}
			}
			err = nil
		case errors.Is(err, nucl.ErrAlreadyApplied):
			err = nil
		default:
			return chk.Err("cannot inject nucleus %d:\n%v", ev.Id, err)
		}
	}
	sort.Ints(o.requests)
	return
}

// output records an output time and saves a checkpoint
func (o *Main) output() (err error) {
	o.Summary.OutTimes = append(o.Summary.OutTimes, o.Dom.T)
	if o.Store != nil {
		cp, e := o.Checkpoint()
		if e != nil {
			return e
		}
		key := io.Sf("%s_%04d", o.Sim.Key, o.tidx)
		ctx := context.Background()
		err = o.Store.Save(ctx, key, cp)
		if err != nil {
			return
		}
		err = o.Store.Save(ctx, o.Sim.Key, cp)
		if err != nil {
			return
		}
		o.Summary.CkpKeys = append(o.Summary.CkpKeys, key)
	}
	o.tidx++
	if o.ShowMsg {
		io.Pf("> t=%g: output %d (%d nuclei)\n", o.Dom.T, o.tidx, o.Dom.Hist.Len())
	}
	return
}

// updateSummary copies counters to summary
func (o *Main) updateSummary() {
	o.Summary.Nsteps = o.Dom.Step
	o.Summary.Nevents = o.Dom.Hist.Len()
	o.Summary.Napplied = o.Dom.Hist.NumApplied()
	o.Summary.Retries = o.Retries
}

// onexit prints final message with simulation and cpu times and saves summary
func (o *Main) onexit(cputime time.Time, prevErr error) (err error) {

	// show final message
	if o.ShowMsg {
		if prevErr == nil {
			io.PfGreen("> Success\n")
			io.Pf("> CPU time = %v\n", time.Now().Sub(cputime))
		} else {
			io.PfRed("> Failed\n")
		}
	}

	// save summary
	o.updateSummary()
	if o.saveSummary {
		err = o.Summary.Save(o.Sim.DirOut, o.Sim.Key, o.Sim.EncType)
		if err != nil && prevErr == nil {
			return
		}
	}

	// previous error has priority
	if prevErr != nil {
		err = prevErr
	}
	return
}
