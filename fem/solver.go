// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/anilkunwar/hyrax/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/mitchellh/mapstructure"
)

// Solver advances the fields of a domain by one time step. It must not modify the time of the
// domain. A solve that does not converge returns converged == false and may leave the fields in
// any state; errors are reserved for unrecoverable failures.
type Solver interface {
	Advance(dom *Domain, dt float64) (converged bool, err error)
}

// allocators holds all available solvers
var allocators = make(map[string]func(sim *inp.Simulation) (Solver, error))

// NewSolver allocates a solver by name
func NewSolver(sim *inp.Simulation) (Solver, error) {
	alloc, ok := allocators[sim.Solver.Type]
	if !ok {
		return nil, chk.Err("cannot find solver type named %q", sim.Solver.Type)
	}
	return alloc(sim)
}

// decode decodes solver parameters
func decode(prms map[string]interface{}, res interface{}) (err error) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           res,
	})
	if err != nil {
		return
	}
	return dec.Decode(prms)
}
