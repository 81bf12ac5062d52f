// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package tests implements structures and functions to test complete simulations
package tests

import (
	"testing"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/anilkunwar/hyrax/fem"
	"github.com/anilkunwar/hyrax/nucl"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// RunSim reads a simulation file and runs it until the final time
//  Input:
//   store -- checkpoints store; may be nil
//   cp    -- checkpoint to resume from; may be nil
//  Output:
//   main -- the simulation or nil if anything failed
func RunSim(tst *testing.T, simfilepath, alias string, store ckp.Store, cp *ckp.Checkpoint, verbose bool) (main *fem.Main) {
	main, err := fem.NewMain(simfilepath, alias, cp == nil, true, false, verbose)
	if err != nil {
		tst.Errorf("cannot allocate simulation:\n%v", err)
		return nil
	}
	main.Store = store
	if cp != nil {
		err = main.Resume(cp)
		if err != nil {
			tst.Errorf("cannot resume simulation:\n%v", err)
			return nil
		}
	}
	err = main.Run()
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return nil
	}
	return
}

// CompareEvents checks that two nucleation histories are identical
func CompareEvents(tst *testing.T, res, ref []*nucl.Event, tol float64) {
	chk.Int(tst, "number of events", len(res), len(ref))
	if len(res) != len(ref) {
		return
	}
	for i, ev := range ref {
		if chk.Verbose {
			io.Pf("%3d: step=%3d t=%8.4f x=%v\n", ev.Id, ev.Step, ev.Time, ev.X)
		}
		chk.Int(tst, io.Sf("event %d: id", i), res[i].Id, ev.Id)
		chk.Int(tst, io.Sf("event %d: step", i), res[i].Step, ev.Step)
		chk.Int(tst, io.Sf("event %d: variant", i), res[i].Variant, ev.Variant)
		chk.Float64(tst, io.Sf("event %d: time", i), tol, res[i].Time, ev.Time)
		chk.Float64(tst, io.Sf("event %d: radius", i), tol, res[i].Radius, ev.Radius)
		chk.Array(tst, io.Sf("event %d: x", i), tol, res[i].X, ev.X)
	}
}

// CheckSeparation checks that no two events are closer than dmin according to the distance
// function dist
func CheckSeparation(tst *testing.T, events []*nucl.Event, dmin float64, dist func(a, b []float64) float64) {
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			d := dist(events[i].X, events[j].X)
			if d < dmin {
				tst.Errorf("events %d and %d are too close: d=%g < %g\n", events[i].Id, events[j].Id, d, dmin)
			}
		}
	}
}
