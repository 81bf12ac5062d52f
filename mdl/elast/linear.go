// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elast

import "github.com/cpmech/gosl/chk"

// Linear implements isotropic linear elasticity in plane-strain with an isotropic misfit δ
//
//   εe = ε - δ I
//   W  = ½ λ (tr εe)² + μ εe : εe
//
type Linear struct {
	E      float64 `mapstructure:"E"`      // Young's modulus
	Nu     float64 `mapstructure:"nu"`     // Poisson's coefficient
	Misfit float64 `mapstructure:"misfit"` // isotropic eigenstrain of the new phase

	// derived
	Lam float64 // Lamé's λ
	Mu  float64 // shear modulus
}

// None implements a model without elastic energy
type None struct{}

// add models to factory
func init() {
	allocators["linear"] = func() Model { return new(Linear) }
	allocators["none"] = func() Model { return new(None) }
}

// Init initialises this structure
func (o *Linear) Init(prms map[string]interface{}) (err error) {
	err = decode(prms, o)
	if err != nil {
		return
	}
	if o.E <= 0 {
		return chk.Err("linear elastic model: E must be positive. E=%g", o.E)
	}
	if o.Nu <= -1 || o.Nu >= 0.5 {
		return chk.Err("linear elastic model: nu must be in (-1, 0.5). nu=%g", o.Nu)
	}
	o.Lam = o.E * o.Nu / ((1.0 + o.Nu) * (1.0 - 2.0*o.Nu))
	o.Mu = o.E / (2.0 * (1.0 + o.Nu))
	return
}

// Energy computes the strain energy density
func (o *Linear) Energy(eps []float64) float64 {
	var exx, eyy, exy float64
	if len(eps) > 2 {
		exx, eyy, exy = eps[0], eps[1], eps[2]
	}
	exx -= o.Misfit
	eyy -= o.Misfit
	ezz := -o.Misfit // plane-strain: total εzz = 0
	tr := exx + eyy + ezz
	return 0.5*o.Lam*tr*tr + o.Mu*(exx*exx+eyy*eyy+ezz*ezz+2.0*exy*exy)
}

// Init initialises this structure
func (o *None) Init(prms map[string]interface{}) error { return decode(prms, o) }

// Energy returns zero
func (o *None) Energy(eps []float64) float64 { return 0 }
