// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"time"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/anilkunwar/hyrax/msh"
	"github.com/anilkunwar/hyrax/nucl"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Checkpoint returns a copy of the current state. Resuming from it reproduces the future
// sampling of this run exactly
func (o *Main) Checkpoint() (cp *ckp.Checkpoint, err error) {
	d := o.Dom
	cp = &ckp.Checkpoint{
		RunId:   o.Summary.RunId,
		Key:     o.Sim.Key,
		Saved:   time.Now().UTC(),
		Step:    d.Step,
		Time:    d.T,
		Dt:      d.Dt,
		Events:  d.Hist.Snapshot(),
		Applied: d.Hist.AppliedIds(),
		Mesh:    d.Msh.State(),
	}
	cp.Cool, cp.Forced = o.Mrk.Counters()
	if s, ok := o.Sampler.(*nucl.Stochastic); ok {
		cp.Seed = s.Seed()
		cp.Draws = s.Draws()
		cp.RngState, err = s.State()
		if err != nil {
			return nil, chk.Err("cannot save state of random numbers generator:\n%v", err)
		}
	}
	return
}

// Resume restores the state saved by Checkpoint
func (o *Main) Resume(cp *ckp.Checkpoint) (err error) {

	// mesh and fields
	m, err := msh.NewFromState(cp.Mesh)
	if err != nil {
		return chk.Err("cannot resume from checkpoint %q:\n%v", cp.Key, err)
	}
	for _, key := range o.Sim.Nucl.OpKeys {
		if !m.HasKey(key) {
			return chk.Err("cannot resume from checkpoint %q: field %q is missing", cp.Key, key)
		}
	}
	d := o.Dom
	d.SetMesh(m)

	// history
	err = d.Hist.Load(cp.Events, cp.Applied)
	if err != nil {
		return chk.Err("cannot resume from checkpoint %q:\n%v", cp.Key, err)
	}

	// random numbers
	if s, ok := o.Sampler.(*nucl.Stochastic); ok {
		if cp.Seed != s.Seed() {
			return chk.Err("cannot resume from checkpoint %q: seed %d differs from seed %d of simulation", cp.Key, cp.Seed, s.Seed())
		}
		if len(cp.RngState) > 0 {
			err = s.SetState(cp.RngState, cp.Draws)
			if err != nil {
				return chk.Err("cannot restore random numbers generator:\n%v", err)
			}
		} else {
			s.Restore(cp.Seed, cp.Draws)
		}
	}

	// marker and time
	o.Mrk.SetCounters(cp.Cool, cp.Forced)
	d.T, d.Step, d.Dt = cp.Time, cp.Step, cp.Dt
	o.lastSampled = cp.Step
	o.prevStats = o.Sampler.Stats()

	// output
	o.tout, o.tidx = o.Sim.Control.DtOut, 0
	for o.tout <= d.T+tolT {
		o.tout += o.Sim.Control.DtOut
		o.tidx++
	}
	o.Summary.Resumed = true
	if cp.RunId != "" {
		o.Summary.RunId = cp.RunId
	}
	o.updateSummary()
	if o.ShowMsg {
		io.Pf("> Resumed from checkpoint %q @ step %d (t=%g, %d nuclei)\n", cp.Key, cp.Step, cp.Time, d.Hist.Len())
	}
	return
}
