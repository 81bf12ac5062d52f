// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"context"
	"math"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/anilkunwar/hyrax/msh"
	"github.com/anilkunwar/hyrax/nucl"
	"github.com/cpmech/gosl/chk"
)

// Results holds the state of a simulation loaded from a checkpoint
type Results struct {
	Cp   *ckp.Checkpoint // checkpoint
	Msh  *msh.Mesh       // mesh with field values
	Hist *nucl.History   // nucleation history
}

// Load loads the results saved with key
func Load(ctx context.Context, store ckp.Store, key string) (o *Results, err error) {
	cp, err := store.Load(ctx, key)
	if err != nil {
		return
	}
	return NewResults(cp)
}

// NewResults rebuilds mesh and history from a checkpoint
func NewResults(cp *ckp.Checkpoint) (o *Results, err error) {
	o = &Results{Cp: cp}
	o.Msh, err = msh.NewFromState(cp.Mesh)
	if err != nil {
		return nil, chk.Err("cannot rebuild mesh of checkpoint %q:\n%v", cp.Key, err)
	}
	o.Hist = nucl.NewHistory(&nucl.Exclusion{Sep: o.Msh.Separation})
	err = o.Hist.Load(cp.Events, cp.Applied)
	if err != nil {
		return nil, chk.Err("cannot load history of checkpoint %q:\n%v", cp.Key, err)
	}
	return
}

// Nuclei returns information about the nuclei at the time of the checkpoint
func (o *Results) Nuclei() *NucleiInfo {
	return NewNucleiInfo(o.Hist, o.Cp.Time)
}

// Range returns the minimum, maximum and volume average of a field over all integration points
func (o *Results) Range(key string) (vmin, vmax, avg float64, err error) {
	if !o.Msh.HasKey(key) {
		return 0, 0, 0, chk.Err("field %q is not available", key)
	}
	vmin, vmax = math.Inf(1), math.Inf(-1)
	var vol float64
	for _, eid := range o.Msh.Elems() {
		w := o.Msh.IpWeights(eid)
		var wsum float64
		for _, wi := range w {
			wsum += wi
		}
		for ip, wi := range w {
			v := o.Msh.Get(key, eid, ip)
			dv := o.Msh.Volume(eid) * wi / wsum
			vmin = math.Min(vmin, v)
			vmax = math.Max(vmax, v)
			avg += v * dv
			vol += dv
		}
	}
	avg /= vol
	return
}

// Probe returns the value of a field at x
func (o *Results) Probe(key string, x []float64) float64 {
	return o.Msh.Interp(key, x)
}
