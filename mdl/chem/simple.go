// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chem

import "github.com/cpmech/gosl/chk"

// Undercooling implements the classical linearised driving force
//
//   ΔG = -Lv (T0 - T) / T0
//
type Undercooling struct {
	Lv float64 `mapstructure:"lv"` // latent heat per volume
	T0 float64 `mapstructure:"t0"` // transformation temperature
}

// Cte implements a constant driving force
type Cte struct {
	Dg float64 `mapstructure:"dg"` // driving force
}

// add models to factory
func init() {
	allocators["undercooling"] = func() Model { return new(Undercooling) }
	allocators["cte"] = func() Model { return new(Cte) }
}

// Init initialises this structure
func (o *Undercooling) Init(prms map[string]interface{}) (err error) {
	err = decode(prms, o)
	if err != nil {
		return
	}
	if o.T0 <= 0 {
		return chk.Err("undercooling model: transformation temperature must be positive. t0=%g", o.T0)
	}
	return
}

// DeltaG computes the driving force
func (o *Undercooling) DeltaG(c, T float64) float64 {
	return -o.Lv * (o.T0 - T) / o.T0
}

// Init initialises this structure
func (o *Cte) Init(prms map[string]interface{}) error {
	return decode(prms, o)
}

// DeltaG returns the constant driving force
func (o *Cte) DeltaG(c, T float64) float64 { return o.Dg }
