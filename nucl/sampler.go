// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import (
	"math/rand/v2"

	"github.com/cpmech/gosl/chk"
)

// Sampler selects nucleation sites from a probability field
type Sampler interface {
	Sample(pf *ProbField, step int, t float64) (events []*Event, err error) // appends accepted events to history
	Inert() bool                                                           // sampler will never accept events again
	Stats() Stats                                                          // counters
}

// Stats holds the counters of a sampler
type Stats struct {
	Trials   int // number of Bernoulli trials
	Accepted int // accepted events
	Rejected int // successful trials rejected by exclusion zones
}

// pcgStream selects the PCG stream; the seed selects the state
const pcgStream = 0x9e3779b97f4a7c15

// Shape holds the shape parameters given to new events
type Shape struct {
	Radius float64   // nucleus radius
	Amp    float64   // order parameter amplitude
	Axes   []float64 // relative semi-axes; nil => sphere
}

// Stochastic implements the Monte Carlo sampler. Candidates are visited in the order of the
// probability field (elements, then integration points) and each candidate with positive
// probability consumes exactly one random number; therefore the sequence of accepted events
// depends only on the seed and on the field.
type Stochastic struct {

	// input
	Hist       *History // history of events
	Shape      Shape    // shape of new nuclei
	Nvariants  int      // number of variants; one extra draw per accepted event if > 1
	MaxPerStep int      // maximum number of events per step. 0 => unlimited
	MaxTotal   int      // maximum number of events ever. 0 => unlimited
	Tstart     float64  // sampling starts at this time
	Tend       float64  // sampling stops after this time. 0 => never stops

	// internal
	seed  uint64    // seed
	src   *rand.PCG // generator
	draws uint64    // number of random numbers drawn so far
	stats Stats     // counters
}

// NewStochastic returns a new stochastic sampler
func NewStochastic(hist *History, seed uint64, shape Shape) *Stochastic {
	return &Stochastic{Hist: hist, Shape: shape, seed: seed, src: rand.NewPCG(seed, pcgStream)}
}

// Sample performs one Bernoulli trial per candidate and appends accepted events to history
func (o *Stochastic) Sample(pf *ProbField, step int, t float64) (events []*Event, err error) {
	if o.Inert() || t < o.Tstart || (o.Tend > 0 && t > o.Tend) {
		return
	}
	for idx := range pf.Eids {
		for ip, p := range pf.Prob[idx] {
			if !(p > 0) {
				continue
			}
			o.stats.Trials++
			if o.uniform() >= p {
				continue
			}
			x := pf.X[idx][ip]
			if _, found := o.Hist.Excluded(x, t); found {
				o.stats.Rejected++
				continue
			}
			ev := &Event{
				Id:     o.Hist.NextId(),
				X:      append([]float64(nil), x...),
				Step:   step,
				Time:   t,
				Radius: o.Shape.Radius,
				Amp:    o.Shape.Amp,
				Axes:   o.Shape.Axes,
			}
			if o.Nvariants > 1 {
				ev.Variant = min(int(o.uniform()*float64(o.Nvariants)), o.Nvariants-1)
			}
			err = o.Hist.Append(ev)
			if err != nil {
				return
			}
			o.stats.Accepted++
			events = append(events, ev)
			if o.MaxPerStep > 0 && len(events) >= o.MaxPerStep {
				return
			}
			if o.Inert() {
				return
			}
		}
	}
	return
}

// Inert tells whether the maximum number of events has been reached
func (o *Stochastic) Inert() bool {
	return o.MaxTotal > 0 && o.Hist.Len() >= o.MaxTotal
}

// Stats returns the counters
func (o *Stochastic) Stats() Stats { return o.stats }

// Seed returns the seed
func (o *Stochastic) Seed() uint64 { return o.seed }

// Draws returns the number of random numbers drawn since seeding
func (o *Stochastic) Draws() uint64 { return o.draws }

// State returns the serialised state of the generator
func (o *Stochastic) State() ([]byte, error) {
	return o.src.MarshalBinary()
}

// SetState sets the state of the generator obtained with State
func (o *Stochastic) SetState(state []byte, draws uint64) (err error) {
	err = o.src.UnmarshalBinary(state)
	if err != nil {
		return chk.Err("cannot restore state of random number generator:\n%v", err)
	}
	o.draws = draws
	return
}

// Restore re-seeds the generator and discards the given number of draws
func (o *Stochastic) Restore(seed, draws uint64) {
	o.seed = seed
	o.src.Seed(seed, pcgStream)
	o.draws = 0
	for o.draws < draws {
		o.uniform()
	}
}

// uniform returns a random number in [0,1)
func (o *Stochastic) uniform() float64 {
	o.draws++
	return float64(o.src.Uint64()>>11) / (1 << 53)
}

// Single implements the deterministic single-nucleus sampler: a nucleus is accepted at X at the
// first sampled step with t >= Time; afterwards the sampler is inert
type Single struct {
	Hist    *History  // history of events
	X       []float64 // location of nucleus
	Time    float64   // earliest nucleation time
	Variant int       // variant of nucleus
	Shape   Shape     // shape of nucleus

	done  bool
	stats Stats
}

// Sample accepts the nucleus once
func (o *Single) Sample(pf *ProbField, step int, t float64) (events []*Event, err error) {
	if o.Inert() || t < o.Time {
		return
	}
	o.stats.Trials++
	ev := &Event{
		Id:      o.Hist.NextId(),
		X:       append([]float64(nil), o.X...),
		Step:    step,
		Time:    t,
		Variant: o.Variant,
		Radius:  o.Shape.Radius,
		Amp:     o.Shape.Amp,
		Axes:    o.Shape.Axes,
	}
	err = o.Hist.Append(ev)
	if err != nil {
		return
	}
	o.done = true
	o.stats.Accepted++
	return []*Event{ev}, nil
}

// Inert tells whether the nucleus has been accepted; a resumed run with non-empty history is inert
func (o *Single) Inert() bool {
	return o.done || o.Hist.Len() > 0
}

// Stats returns the counters
func (o *Single) Stats() Stats { return o.stats }
