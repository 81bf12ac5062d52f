// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/anilkunwar/hyrax/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Relax implements a pointwise backward-Euler relaxation of the order parameters
//
//   dη/dt = -M f'(η)    with    f(η) = W η² (1-η)²
//
// solved with Newton's method @ each integration point. There is no spatial coupling.
type Relax struct {
	Mob    float64  // mobility M
	W      float64  // barrier height W
	NmaxIt int      // max number of Newton iterations
	Atol   float64  // absolute tolerance on the residual
	Keys   []string // order parameter keys
}

// register solver
func init() {
	allocators["relax"] = func(sim *inp.Simulation) (Solver, error) {
		o := &Relax{Mob: 1, W: 1, NmaxIt: sim.Solver.NmaxIt, Atol: sim.Solver.Atol, Keys: sim.Nucl.OpKeys}
		var p struct {
			Mob float64
			W   float64
		}
		p.Mob, p.W = o.Mob, o.W
		if err := decode(sim.Solver.Prms, &p); err != nil {
			return nil, chk.Err("cannot decode parameters of relax solver:\n%v", err)
		}
		if p.Mob < 0 || p.W < 0 {
			return nil, chk.Err("parameters of relax solver must not be negative. mob=%g, w=%g", p.Mob, p.W)
		}
		o.Mob, o.W = p.Mob, p.W
		return o, nil
	}
}

// Advance solves one time step for all order parameters
func (o *Relax) Advance(dom *Domain, dt float64) (converged bool, err error) {
	if !(dt > 0) {
		return false, chk.Err("time step must be positive. dt=%g", dt)
	}
	m := dom.Msh
	for _, key := range o.Keys {
		if !m.HasKey(key) {
			continue
		}
		for _, eid := range m.Elems() {
			for ip := 0; ip < m.Nip(eid); ip++ {
				η, ok := o.newton(m.Get(key, eid, ip), dt)
				if !ok {
					if dom.ShowMsg {
						io.Pforan("relax: Newton iterations failed @ element %d, ip %d (key=%s, dt=%g)\n", eid, ip, key, dt)
					}
					return false, nil
				}
				m.Set(key, eid, ip, η)
			}
		}
	}
	return true, nil
}

// newton solves η - η0 + Δt M f'(η) = 0 starting from η0
func (o *Relax) newton(η0, dt float64) (η float64, ok bool) {
	η = η0
	a := dt * o.Mob * 2.0 * o.W
	for it := 0; it < o.NmaxIt; it++ {
		r := η - η0 + a*η*(1.0-η)*(1.0-2.0*η)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return η, false
		}
		if math.Abs(r) < o.Atol {
			return η, true
		}
		j := 1.0 + a*(1.0-6.0*η+6.0*η*η)
		if j == 0 {
			return η, false
		}
		η -= r / j
	}
	return η, false
}
