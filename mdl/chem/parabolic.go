// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chem

import "github.com/cpmech/gosl/chk"

// Parabolic implements two parabolic free energy curves
//
//   fα(c) = Aα (c - cα)²
//   fβ(c) = Aβ (c - cβ)² + Δf(T)      with   Δf(T) = Δf0 + dΔf/dT (T - T0)
//
//  The driving force follows from the parallel tangent construction: the nucleus composition x
//  satisfies fβ'(x) = fα'(c) and
//
//   ΔG = fβ(x) - fα(c) - fα'(c) (x - c)
//
type Parabolic struct {
	Aa   float64 `mapstructure:"aa"`   // curvature of matrix curve
	Ab   float64 `mapstructure:"ab"`   // curvature of precipitate curve
	Ca   float64 `mapstructure:"ca"`   // composition @ minimum of matrix curve
	Cb   float64 `mapstructure:"cb"`   // composition @ minimum of precipitate curve
	Df0  float64 `mapstructure:"df0"`  // offset of precipitate curve @ T0
	DfdT float64 `mapstructure:"dfdt"` // temperature sensitivity of offset
	T0   float64 `mapstructure:"t0"`   // reference temperature
	Vm   float64 `mapstructure:"vm"`   // molar volume. 0 => curves are given per volume
}

// add model to factory
func init() {
	allocators["parabolic"] = func() Model { return new(Parabolic) }
}

// Init initialises this structure
func (o *Parabolic) Init(prms map[string]interface{}) (err error) {
	err = decode(prms, o)
	if err != nil {
		return
	}
	if o.Aa <= 0 || o.Ab <= 0 {
		return chk.Err("parabolic model: curvatures must be positive. aa=%g, ab=%g", o.Aa, o.Ab)
	}
	if o.Vm < 0 {
		return chk.Err("parabolic model: molar volume must not be negative. vm=%g", o.Vm)
	}
	return
}

// Nucleus returns the composition of the nucleus given the matrix composition
func (o *Parabolic) Nucleus(c float64) float64 {
	return o.Cb + o.Aa*(c-o.Ca)/o.Ab
}

// DeltaG computes the driving force
func (o *Parabolic) DeltaG(c, T float64) float64 {
	x := o.Nucleus(c)
	fa := o.Aa * (c - o.Ca) * (c - o.Ca)
	dfa := 2.0 * o.Aa * (c - o.Ca)
	fb := o.Ab*(x-o.Cb)*(x-o.Cb) + o.Df0 + o.DfdT*(T-o.T0)
	dg := fb - fa - dfa*(x-c)
	if o.Vm > 0 {
		dg /= o.Vm
	}
	return dg
}
