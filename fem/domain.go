// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/anilkunwar/hyrax/inp"
	"github.com/anilkunwar/hyrax/msh"
	"github.com/anilkunwar/hyrax/nucl"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Domain holds the simulation context: the mesh with all fields, the nucleation history and the
// time of the last converged step
type Domain struct {

	// init: auxiliary variables
	Verbose bool            // verbose
	ShowMsg bool            // show messages
	Sim     *inp.Simulation // [from Main] input data

	// state
	Msh  *msh.Mesh     // mesh and fields
	Hist *nucl.History // nucleation history
	T    float64       // time of last converged step
	Step int           // index of last converged step
	Dt   float64       // time step of last converged step

	// for divergence control
	bkpT  float64 // backup time
	bkpOk bool    // backup is available
}

// NewDomain returns a new domain with fields initialised by the "ini" functions
func NewDomain(sim *inp.Simulation, verbose bool) (o *Domain, err error) {

	// new domain
	o = new(Domain)
	o.Verbose = verbose
	o.ShowMsg = verbose
	o.Sim = sim
	o.Dt = sim.Control.Dt

	// mesh with order parameters
	m := sim.Mesh
	o.Msh, err = msh.New(m.Nx, m.Ny, m.Lx, m.Ly, m.MinLevel, m.MaxLevel, sim.Nucl.OpKeys...)
	if err != nil {
		return nil, chk.Err("cannot allocate mesh:\n%v", err)
	}
	o.Msh.Periodic = m.Periodic

	// initial values
	for _, ini := range sim.Ini {
		fcn, e := sim.Functions.Get(ini.Func)
		if e != nil {
			return nil, chk.Err("cannot set initial values of %q:\n%v", ini.Key, e)
		}
		o.Msh.SetFunc(ini.Key, fcn)
	}

	// history
	o.Hist = nucl.NewHistory(&nucl.Exclusion{
		Radius: sim.Nucl.ExclRadius,
		Decay:  sim.Nucl.ExclDecay,
		Sep:    o.Msh.Separation,
	})
	if o.ShowMsg {
		io.Pf("> Domain with %d cells and fields %v allocated\n", len(o.Msh.Elems()), o.Msh.Keys)
	}
	return
}

// SetMesh replaces the mesh; e.g. when resuming a simulation
func (o *Domain) SetMesh(m *msh.Mesh) {
	o.Msh = m
	if o.Hist.Excl != nil {
		o.Hist.Excl.Sep = m.Separation
	}
	o.bkpOk = false
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// backup saves a copy of the fields and of the time
func (o *Domain) backup() {
	o.Msh.Backup()
	o.bkpT = o.T
	o.bkpOk = true
}

// restore restores the fields and time saved by backup
func (o *Domain) restore() (err error) {
	if !o.bkpOk {
		return chk.Err("cannot restore domain because there is no backup")
	}
	err = o.Msh.Restore()
	if err != nil {
		return
	}
	o.T = o.bkpT
	return
}
