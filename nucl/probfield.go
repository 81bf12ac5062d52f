// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

// ProbField holds the nucleation quantities @ integration points of all elements for one time step.
// Slices are indexed by [element index in Eids][integration point].
type ProbField struct {
	Dt      float64       // time step used to compute probabilities
	Eids    []int         // element ids; fixed iteration order
	X       [][][]float64 // coordinates of integration points
	Vol     [][]float64   // volume associated with integration points
	Dgv     [][]float64   // total driving force per volume
	Barrier [][]float64   // critical energy barrier; NoBarrier where there is no driving force
	Rate    [][]float64   // volumetric nucleation rate
	Prob    [][]float64   // probability of an event during Dt
}

// newProbField allocates the slots of a new probability field
func newProbField(eids []int, dt float64) (o *ProbField) {
	n := len(eids)
	o = &ProbField{Dt: dt, Eids: eids}
	o.X = make([][][]float64, n)
	o.Vol = make([][]float64, n)
	o.Dgv = make([][]float64, n)
	o.Barrier = make([][]float64, n)
	o.Rate = make([][]float64, n)
	o.Prob = make([][]float64, n)
	return
}

// alloc allocates the integration point slices of element idx
func (o *ProbField) alloc(idx, nip int) {
	o.X[idx] = make([][]float64, nip)
	o.Vol[idx] = make([]float64, nip)
	o.Dgv[idx] = make([]float64, nip)
	o.Barrier[idx] = make([]float64, nip)
	o.Rate[idx] = make([]float64, nip)
	o.Prob[idx] = make([]float64, nip)
}

// MaxProb returns the largest probability @ integration points of element idx
func (o *ProbField) MaxProb(idx int) (pmax float64) {
	for _, p := range o.Prob[idx] {
		if p > pmax {
			pmax = p
		}
	}
	return
}

// Max returns the largest probability in the field
func (o *ProbField) Max() (pmax float64) {
	for idx := range o.Prob {
		if p := o.MaxProb(idx); p > pmax {
			pmax = p
		}
	}
	return
}

// Total returns the sum of probabilities; i.e. the expected number of accepted trials
// when exclusion is ignored
func (o *ProbField) Total() (sum float64) {
	for _, probs := range o.Prob {
		for _, p := range probs {
			sum += p
		}
	}
	return
}

// Index returns the position of element eid in Eids or -1
func (o *ProbField) Index(eid int) int {
	for idx, id := range o.Eids {
		if id == eid {
			return idx
		}
	}
	return -1
}
