// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import (
	"math"
	"runtime"

	"github.com/cpmech/gosl/chk"
	"golang.org/x/sync/errgroup"
)

// NoBarrier is recorded as the barrier of samples without driving force
var NoBarrier = math.Inf(1)

// maxExpArg bounds J·V·Δt; beyond it 1 - exp(-x) == 1 in double precision
const maxExpArg = 40.0

// Barrier computes the critical energy barrier of classical nucleation theory
//  Input:
//   dgv   -- total driving force per volume: ΔGchem + ΔGel
//   gamma -- interfacial energy
//   ndim  -- space dimension. 2 => barrier per unit thickness
//  Output:
//   3D: ΔG* = 16 π γ³ / (3 ΔGv²)
//   2D: ΔG* = π γ² / (-ΔGv)
//   err = ErrNoBarrier if ΔGv >= 0
func Barrier(dgv, gamma float64, ndim int) (res float64, err error) {
	if !(dgv < 0) {
		return NoBarrier, ErrNoBarrier
	}
	if ndim == 2 {
		return math.Pi * gamma * gamma / (-dgv), nil
	}
	return 16.0 * math.Pi * gamma * gamma * gamma / (3.0 * dgv * dgv), nil
}

// Rate computes the volumetric nucleation rate
//
//   J = J0 exp(-Q/kT) exp(-ΔG*/kT)
//
//  Note: the result is always finite and non-negative
func Rate(j0, q, kb, T, barrier float64) float64 {
	if math.IsInf(barrier, 1) || !(T > 0) || !(kb > 0) || !(j0 > 0) {
		return 0
	}
	J := j0 * math.Exp(-(barrier+q)/(kb*T))
	switch {
	case math.IsNaN(J) || J < 0:
		return 0
	case math.IsInf(J, 1):
		return math.MaxFloat64
	}
	return J
}

// Probability computes the probability of at least one event in volume V during Δt
//
//   P = 1 - exp(-J V Δt)
//
//  Note: the result is clamped to [0,1]
func Probability(J, V, dt float64) float64 {
	x := J * V * dt
	if !(x > 0) {
		return 0
	}
	if x > maxExpArg {
		return 1
	}
	p := -math.Expm1(-x)
	if p > 1 {
		return 1
	}
	return p
}

// Evaluator computes barrier, rate and probability fields from field samples
type Evaluator struct {

	// collaborators
	Chem  Chemical // chemical driving force
	Elast Elastic  // elastic energy; may be nil

	// parameters
	J0    float64 // rate prefactor
	Gamma float64 // interfacial energy
	Kb    float64 // Boltzmann constant
	Q     float64 // activation energy of migration
	Temp  float64 // temperature when TempKey is empty or unavailable
	OpMax float64 // samples with order parameter above OpMax are already transformed. 0 => no check

	// field keys
	CompKey    string   // composition
	TempKey    string   // temperature
	StrainKeys []string // {εxx, εyy, εxy}
	OpKeys     []string // order parameters

	// parallelism
	Nworkers int // number of goroutines; 0 => GOMAXPROCS
}

// keys holds the field keys available in the current field
type keys struct {
	comp   string
	temp   string
	strain []string
	ops    []string
}

// available selects the keys present in fld
func (o *Evaluator) available(fld Field) (k keys) {
	if o.CompKey != "" && fld.HasKey(o.CompKey) {
		k.comp = o.CompKey
	}
	if o.TempKey != "" && fld.HasKey(o.TempKey) {
		k.temp = o.TempKey
	}
	for _, key := range o.StrainKeys {
		if !fld.HasKey(key) {
			k.strain = nil
			break
		}
		k.strain = append(k.strain, key)
	}
	for _, key := range o.OpKeys {
		if fld.HasKey(key) {
			k.ops = append(k.ops, key)
		}
	}
	return
}

// Compute computes the probability field. The work is split among goroutines but each element
// writes into its own slot; therefore the result does not depend on scheduling.
func (o *Evaluator) Compute(fld Field, dt float64) (pf *ProbField, err error) {
	if o.Chem == nil {
		return nil, chk.Err("evaluator requires a chemical model")
	}
	if !(dt > 0) {
		return nil, chk.Err("time step must be positive. dt=%g", dt)
	}
	k := o.available(fld)
	pf = newProbField(fld.Elems(), dt)
	nele := len(pf.Eids)
	if nele == 0 {
		return
	}
	nw := o.Nworkers
	if nw < 1 {
		nw = runtime.GOMAXPROCS(0)
	}
	if nw > nele {
		nw = nele
	}
	chunk := (nele + nw - 1) / nw
	var g errgroup.Group
	for start := 0; start < nele; start += chunk {
		lo, hi := start, min(start+chunk, nele)
		g.Go(func() error {
			for idx := lo; idx < hi; idx++ {
				if e := o.element(fld, pf, k, idx); e != nil {
					return e
				}
			}
			return nil
		})
	}
	err = g.Wait()
	if err != nil {
		return nil, err
	}
	return
}

// element computes all quantities @ integration points of element pf.Eids[idx]
func (o *Evaluator) element(fld Field, pf *ProbField, k keys, idx int) (err error) {
	eid := pf.Eids[idx]
	nip := fld.Nip(eid)
	X := fld.IpCoords(eid)
	W := fld.IpWeights(eid)
	vol := fld.Volume(eid)
	var sumW float64
	for _, w := range W {
		sumW += w
	}
	if !(vol > 0) || !(sumW > 0) {
		return chk.Err("element %d has invalid volume or weights. vol=%g, Σw=%g", eid, vol, sumW)
	}
	pf.alloc(idx, nip)
	var eps []float64
	if len(k.strain) > 0 {
		eps = make([]float64, len(k.strain))
	}
	for ip := 0; ip < nip; ip++ {
		pf.X[idx][ip] = X[ip]
		pf.Vol[idx][ip] = vol * W[ip] / sumW
		pf.Barrier[idx][ip] = NoBarrier

		// already transformed
		if o.OpMax > 0 && o.transformed(fld, k, eid, ip) {
			continue
		}

		// sample values
		var c float64
		if k.comp != "" {
			c = fld.Get(k.comp, eid, ip)
		}
		T := o.Temp
		if k.temp != "" {
			T = fld.Get(k.temp, eid, ip)
		}
		for i, key := range k.strain {
			eps[i] = fld.Get(key, eid, ip)
		}

		// driving force
		dgv := o.Chem.DeltaG(c, T)
		if o.Elast != nil {
			dgv += o.Elast.Energy(eps)
		}
		pf.Dgv[idx][ip] = dgv

		// barrier, rate and probability
		barrier, e := Barrier(dgv, o.Gamma, fld.Ndim())
		if e != nil {
			continue // no driving force => zero rate
		}
		pf.Barrier[idx][ip] = barrier
		pf.Rate[idx][ip] = Rate(o.J0, o.Q, o.Kb, T, barrier)
		pf.Prob[idx][ip] = Probability(pf.Rate[idx][ip], pf.Vol[idx][ip], pf.Dt)
	}
	return
}

// transformed tells whether any order parameter exceeds OpMax
func (o *Evaluator) transformed(fld Field, k keys, eid, ip int) bool {
	for _, key := range k.ops {
		if fld.Get(key, eid, ip) > o.OpMax {
			return true
		}
	}
	return false
}
