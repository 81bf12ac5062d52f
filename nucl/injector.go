// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// profile kinds
const (
	ProfileCos  = "cos"  // cosine blend over width w centred at R
	ProfileTanh = "tanh" // hyperbolic tangent with interface width w
)

// tanhCut is the cutoff of the tanh profile in units of w beyond R
const tanhCut = 3.0

// Injector superimposes nucleus profiles onto the order parameter and composition fields.
//
//   η ← η + (A − η) s(r)
//   c ← c + (cin − c) s(r)
//
// where s(r) ∈ [0,1] is the profile function.
type Injector struct {
	Hist       *History // history; injected events are marked as applied
	OpKeys     []string // order parameter key of each variant
	CompKey    string   // composition key; empty => composition is not modified
	CompIn     float64  // composition inside the nucleus
	Conserve   bool     // remove the excess of solute from a shell around the nucleus
	CompFactor float64  // outer radius of the compensation shell in units of R
	Width      float64  // interface width w. 0 => sharp interface
	Profile    string   // "cos" or "tanh"
	MinCells   float64  // minimum number of elements across the nucleus radius
}

// Shape returns the profile function s @ (scaled) distance r from the centre of a nucleus of radius R
func (o *Injector) Shape(r, R float64) float64 {
	w := o.Width
	if w <= 0 {
		if r <= R {
			return 1
		}
		return 0
	}
	if o.Profile == ProfileTanh {
		if r > R+tanhCut*w {
			return 0
		}
		return 0.5 * (1.0 - math.Tanh(2.0*(r-R)/w))
	}
	switch {
	case r <= R-w/2.0:
		return 1
	case r >= R+w/2.0:
		return 0
	}
	return 0.5 * (1.0 + math.Cos(math.Pi*(r-R+w/2.0)/w))
}

// Cutoff returns the (scaled) distance beyond which the profile vanishes
func (o *Injector) Cutoff(R float64) float64 {
	return Cutoff(o.Profile, R, o.Width)
}

// Cutoff returns the distance beyond which a profile of radius R and interface width w vanishes.
// The compensation shell of conserving injections must reach beyond it.
func Cutoff(profile string, R, w float64) float64 {
	w = math.Max(w, 0)
	if profile == ProfileTanh {
		return R + tanhCut*w
	}
	return R + w/2.0
}

// Check returns the ids of elements within the profile cutoff of the nucleus that are too coarse
// to represent it. Elements at the maximum refinement level are accepted.
func (o *Injector) Check(fld Field, ev *Event) (eids []int) {
	if o.MinCells <= 0 {
		return
	}
	hmax := ev.Radius * amin(ev.Axes) / o.MinCells
	reach := o.Cutoff(ev.Radius) * amax(ev.Axes)
	for _, eid := range fld.Elems() {
		if fld.Dist(eid, ev.X) > reach {
			continue
		}
		if fld.Size(eid) > hmax && !fld.MaxLevelReached(eid) {
			eids = append(eids, eid)
		}
	}
	return
}

// point holds the profile value @ one integration point
type point struct {
	eid, ip int
	s       float64 // profile value
	vol     float64 // volume
}

// Inject inserts the nucleus of event ev into the field. Nothing is modified if an error occurs.
//  Errors:
//   ErrAlreadyApplied   -- event has been injected before
//   unknown event       -- Hist is set but does not hold ev
//   MeshTooCoarseError -- elements must be refined first
func (o *Injector) Inject(fld Field, ev *Event) (err error) {

	// check event and keys
	if o.Hist != nil && o.Hist.Applied(ev.Id) {
		return ErrAlreadyApplied
	}
	if ev.Variant < 0 || ev.Variant >= len(o.OpKeys) {
		return chk.Err("variant %d of nucleus %d does not correspond to any order parameter", ev.Variant, ev.Id)
	}
	opkey := o.OpKeys[ev.Variant]
	if !fld.HasKey(opkey) {
		return chk.Err("cannot inject nucleus %d: field %q does not exist", ev.Id, opkey)
	}
	comp := o.CompKey != "" && fld.HasKey(o.CompKey)
	if !(ev.Radius > 0) {
		return chk.Err("radius of nucleus %d must be positive. R=%g", ev.Id, ev.Radius)
	}

	// resolution
	if eids := o.Check(fld, ev); len(eids) > 0 {
		return &MeshTooCoarseError{EventId: ev.Id, Eids: eids}
	}

	// profile and compensation shell
	R := ev.Radius
	cut := o.Cutoff(R)
	rshell := cut
	if comp && o.Conserve {
		rshell = o.CompFactor * R
	}
	reach := math.Max(cut, rshell) * amax(ev.Axes)
	var inside, shell []point
	for _, eid := range fld.Elems() {
		if fld.Dist(eid, ev.X) > reach {
			continue
		}
		vols := ipVolumes(fld, eid)
		for ip, x := range fld.IpCoords(eid) {
			r := scaledDist(fld.Separation(ev.X, x), ev.Axes)
			if s := o.Shape(r, R); s > 0 {
				inside = append(inside, point{eid, ip, s, vols[ip]})
				continue
			}
			if r > cut && r <= rshell {
				shell = append(shell, point{eid, ip, 0, vols[ip]})
			}
		}
	}

	// excess of solute
	var excess, vshell float64
	if comp && o.Conserve {
		for _, p := range inside {
			c := fld.Get(o.CompKey, p.eid, p.ip)
			excess += (o.CompIn - c) * p.s * p.vol
		}
		for _, p := range shell {
			vshell += p.vol
		}
		if excess != 0 && !(vshell > 0) {
			return chk.Err("compensation shell of nucleus %d is empty. increase the compensation factor %g", ev.Id, o.CompFactor)
		}
	}

	// mark first so a failure cannot lead to a double injection
	if o.Hist != nil {
		err = o.Hist.MarkApplied(ev.Id)
		if err != nil {
			return
		}
	}

	// superimpose profile
	for _, p := range inside {
		eta := fld.Get(opkey, p.eid, p.ip)
		fld.Set(opkey, p.eid, p.ip, eta+(ev.Amp-eta)*p.s)
		if comp {
			c := fld.Get(o.CompKey, p.eid, p.ip)
			fld.Set(o.CompKey, p.eid, p.ip, c+(o.CompIn-c)*p.s)
		}
	}
	if comp && o.Conserve && excess != 0 {
		dc := excess / vshell
		for _, p := range shell {
			fld.Set(o.CompKey, p.eid, p.ip, fld.Get(o.CompKey, p.eid, p.ip)-dc)
		}
	}
	return
}

// scaledDist returns the ellipsoidal distance sqrt(Σ (d_i/a_i)²); a_i = 1 if axes are missing
func scaledDist(d, axes []float64) float64 {
	if len(axes) == 0 {
		return norm(d)
	}
	var sum float64
	for i, di := range d {
		if i < len(axes) && axes[i] > 0 {
			di /= axes[i]
		}
		sum += di * di
	}
	return math.Sqrt(sum)
}
