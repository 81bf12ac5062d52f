// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package nucl implements the nucleation event engine: driving force, rate and probability
// evaluators, event sampling with exclusion zones, nucleus injection and refinement marking
package nucl

import "math"

// Field defines the access to the mesh and continuum fields required by the nucleation engine.
// Element ids returned by Elems define the fixed iteration order of all computations.
type Field interface {
	Ndim() int                                // space dimension
	Elems() []int                             // ids of active elements in a fixed order
	Volume(eid int) float64                   // element volume
	Size(eid int) float64                     // element characteristic length
	Level(eid int) int                        // element refinement level
	MaxLevelReached(eid int) bool             // element cannot be refined any further
	Nip(eid int) int                          // number of integration points
	IpCoords(eid int) [][]float64             // [nip][ndim] coordinates of integration points
	IpWeights(eid int) []float64              // [nip] integration weights including the Jacobian
	HasKey(key string) bool                   // field exists
	Get(key string, eid, ip int) float64      // value of field @ integration point
	Set(key string, eid, ip int, val float64) // sets value of field @ integration point
	Dist(eid int, x []float64) float64        // distance from x to element (0 if inside)
	Separation(a, b []float64) []float64      // vector from a to b (minimum image if periodic)
}

// Chemical computes the chemical driving force per volume; negative values favour the new phase
type Chemical interface {
	DeltaG(c, T float64) float64
}

// Elastic computes the local elastic strain energy per volume that opposes nucleation
type Elastic interface {
	Energy(eps []float64) float64
}

// norm returns the Euclidean norm of v
func norm(v []float64) (res float64) {
	for _, x := range v {
		res += x * x
	}
	return math.Sqrt(res)
}

// ipVolumes returns the volume associated with each integration point of element eid
func ipVolumes(fld Field, eid int) (vols []float64) {
	W := fld.IpWeights(eid)
	var sum float64
	for _, w := range W {
		sum += w
	}
	vols = make([]float64, len(W))
	if !(sum > 0) {
		return
	}
	vol := fld.Volume(eid)
	for i, w := range W {
		vols[i] = vol * w / sum
	}
	return
}
