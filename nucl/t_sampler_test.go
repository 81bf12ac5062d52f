// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// uniformField returns a probability field with n elements of one integration point each, located
// along the x axis with unit spacing
func uniformField(n int, p float64) (pf *ProbField) {
	eids := make([]int, n)
	for i := range eids {
		eids[i] = i
	}
	pf = newProbField(eids, 1)
	for i := range eids {
		pf.alloc(i, 1)
		pf.X[i][0] = []float64{float64(i), 0}
		pf.Vol[i][0] = 1
		pf.Prob[i][0] = p
	}
	return
}

func Test_sampler01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sampler01. Bernoulli frequency")

	for _, p := range []float64{0, 0.05, 0.3, 0.8, 1} {
		pf := uniformField(1, p)
		hist := NewHistory(nil)
		smp := NewStochastic(hist, 1234, Shape{Radius: 0.1, Amp: 1})
		ntrials := 20000
		for step := 0; step < ntrials; step++ {
			_, err := smp.Sample(pf, step, float64(step))
			if err != nil {
				tst.Errorf("Sample failed:\n%v", err)
				return
			}
		}
		freq := float64(hist.Len()) / float64(ntrials)
		tol := 5.0 * math.Sqrt(p*(1-p)/float64(ntrials))
		io.Pforan("p = %g  frequency = %g\n", p, freq)
		chk.Float64(tst, io.Sf("frequency(p=%g)", p), tol+1e-15, freq, p)
		if p == 0 {
			chk.IntAssert(int(smp.Draws()), 0)
		}
	}
}

func Test_sampler02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sampler02. determinism and exclusion")

	run := func() (hist *History) {
		hist = NewHistory(&Exclusion{Radius: 2.5})
		smp := NewStochastic(hist, 7, Shape{Radius: 0.5, Amp: 1})
		smp.Nvariants = 3
		pf := uniformField(100, 0.2)
		for step := 0; step < 10; step++ {
			_, err := smp.Sample(pf, step, 0.1*float64(step))
			if err != nil {
				tst.Errorf("Sample failed:\n%v", err)
				return nil
			}
		}
		if smp.Stats().Rejected == 0 {
			tst.Errorf("exclusion zones should have rejected some successful trials\n")
		}
		return
	}
	h1, h2 := run(), run()
	if h1 == nil || h2 == nil {
		return
	}
	if h1.Len() == 0 {
		tst.Errorf("some events should have been accepted\n")
		return
	}
	b1, _ := json.Marshal(h1)
	b2, _ := json.Marshal(h2)
	chk.String(tst, string(b1), string(b2))

	// exclusion invariant
	events := h1.Snapshot()
	for i, a := range events {
		chk.IntAssert(a.Id, i)
		for _, b := range events[i+1:] {
			if d := math.Abs(a.X[0] - b.X[0]); d < 2.5 {
				tst.Errorf("events %d and %d are too close: %g\n", a.Id, b.Id, d)
				return
			}
		}
	}
}

func Test_sampler03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sampler03. resume with identical future sampling")

	pf := uniformField(50, 0.05)
	ref := NewStochastic(NewHistory(nil), 99, Shape{Radius: 0.1, Amp: 1})
	for step := 0; step < 5; step++ {
		ref.Sample(pf, step, float64(step))
	}

	// checkpoint
	data, err := json.Marshal(ref.Hist)
	if err != nil {
		tst.Errorf("Marshal failed:\n%v", err)
		return
	}
	state, err := ref.State()
	if err != nil {
		tst.Errorf("State failed:\n%v", err)
		return
	}
	draws := ref.Draws()

	// resumed samplers
	h1, h2 := NewHistory(nil), NewHistory(nil)
	if err = json.Unmarshal(data, h1); err != nil {
		tst.Errorf("Unmarshal failed:\n%v", err)
		return
	}
	json.Unmarshal(data, h2)
	s1 := NewStochastic(h1, 0, Shape{Radius: 0.1, Amp: 1})
	s1.Restore(99, draws)
	s2 := NewStochastic(h2, 0, Shape{Radius: 0.1, Amp: 1})
	if err = s2.SetState(state, draws); err != nil {
		tst.Errorf("SetState failed:\n%v", err)
		return
	}

	// future
	for step := 5; step < 10; step++ {
		ref.Sample(pf, step, float64(step))
		s1.Sample(pf, step, float64(step))
		s2.Sample(pf, step, float64(step))
	}
	b0, _ := json.Marshal(ref.Hist)
	b1, _ := json.Marshal(h1)
	b2, _ := json.Marshal(h2)
	chk.String(tst, string(b1), string(b0))
	chk.String(tst, string(b2), string(b0))
	chk.IntAssert(int(s1.Draws()), int(ref.Draws()))
}

func Test_sampler04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("sampler04. single nucleus and limits")

	// single
	hist := NewHistory(&Exclusion{Radius: 1})
	smp := &Single{Hist: hist, X: []float64{0.5, 0.5}, Time: 0.3, Shape: Shape{Radius: 0.1, Amp: 1}}
	for step := 0; step < 20; step++ {
		events, err := smp.Sample(nil, step, 0.1*float64(step))
		if err != nil {
			tst.Errorf("Sample failed:\n%v", err)
			return
		}
		if step == 3 {
			chk.IntAssert(len(events), 1)
			chk.Array(tst, "x", 1e-17, events[0].X, []float64{0.5, 0.5})
		} else {
			chk.IntAssert(len(events), 0)
		}
	}
	chk.IntAssert(hist.Len(), 1)
	resumed := &Single{Hist: hist, X: []float64{0.5, 0.5}}
	chk.IntAssert(boolToInt(resumed.Inert()), 1)

	// at most one event ever
	pf := uniformField(10, 1)
	sto := NewStochastic(NewHistory(nil), 1, Shape{Radius: 0.1, Amp: 1})
	sto.MaxTotal = 1
	for step := 0; step < 5; step++ {
		sto.Sample(pf, step, float64(step))
	}
	chk.IntAssert(sto.Hist.Len(), 1)
	chk.IntAssert(boolToInt(sto.Inert()), 1)

	// first success only
	sto = NewStochastic(NewHistory(nil), 1, Shape{Radius: 0.1, Amp: 1})
	sto.MaxPerStep = 1
	events, _ := sto.Sample(pf, 0, 0)
	chk.IntAssert(len(events), 1)
	chk.Array(tst, "first location", 1e-17, events[0].X, []float64{0, 0})

	// time window
	sto = NewStochastic(NewHistory(nil), 1, Shape{Radius: 0.1, Amp: 1})
	sto.Tstart, sto.Tend = 1, 2
	events, _ = sto.Sample(pf, 0, 0.5)
	chk.IntAssert(len(events), 0)
	events, _ = sto.Sample(pf, 1, 1.5)
	chk.IntAssert(len(events), 10)
	events, _ = sto.Sample(pf, 2, 2.5)
	chk.IntAssert(len(events), 0)
}

func Test_history01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("history01. append, exclusion and applied events")

	hist := NewHistory(&Exclusion{Radius: 1, Decay: 10})
	err := hist.Append(&Event{Id: 1, X: []float64{0, 0}})
	if err == nil {
		tst.Errorf("Append should fail with wrong id\n")
		return
	}
	err = hist.Append(&Event{Id: 0, X: []float64{0, 0}, Radius: 0.1})
	if err != nil {
		tst.Errorf("Append failed:\n%v", err)
		return
	}

	// exclusion
	err = hist.Append(&Event{Id: 1, X: []float64{0.5, 0}, Time: 1})
	var exclErr *ExclusionError
	if !errors.As(err, &exclErr) {
		tst.Errorf("ExclusionError expected. got %v\n", err)
		return
	}
	chk.IntAssert(exclErr.Other, 0)

	// decayed zone: radius = 1 - 6/10 = 0.4
	err = hist.Append(&Event{Id: 1, X: []float64{0.5, 0}, Time: 6})
	if err != nil {
		tst.Errorf("Append failed:\n%v", err)
		return
	}
	chk.Float64(tst, "decayed radius", 1e-15, hist.Excl.RadiusAt(0, 6), 0.4)

	// applied
	if err = hist.MarkApplied(0); err != nil {
		tst.Errorf("MarkApplied failed:\n%v", err)
		return
	}
	if !errors.Is(hist.MarkApplied(0), ErrAlreadyApplied) {
		tst.Errorf("ErrAlreadyApplied expected\n")
		return
	}
	if hist.MarkApplied(5) == nil {
		tst.Errorf("MarkApplied should fail with unknown id\n")
		return
	}
	pending := hist.Pending()
	chk.IntAssert(len(pending), 1)
	chk.IntAssert(pending[0].Id, 1)

	// snapshots are copies
	events := hist.Snapshot()
	events[0].X[0] = 123
	ev, _ := hist.Get(0)
	chk.Float64(tst, "immutable", 1e-17, ev.X[0], 0)

	// serialisation
	b, err := json.Marshal(hist)
	if err != nil {
		tst.Errorf("Marshal failed:\n%v", err)
		return
	}
	io.Pforan("%s\n", b)
	other := NewHistory(nil)
	if err = json.Unmarshal(b, other); err != nil {
		tst.Errorf("Unmarshal failed:\n%v", err)
		return
	}
	chk.IntAssert(other.Len(), 2)
	chk.IntAssert(other.NextId(), 2)
	chk.IntAssert(boolToInt(other.Applied(0)), 1)
	chk.IntAssert(boolToInt(other.Applied(1)), 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
