// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msh implements an adaptive quadtree mesh of square cells holding fields at integration points
package msh

import (
	"math"
	"sort"

	"github.com/anilkunwar/hyrax/shp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// Cell holds the geometry and topology of one quadtree cell. Only leaves are active.
//
//    kids:  3 | 2
//           --+--
//           0 | 1
//
type Cell struct {
	Id     int     // cell id; never reused
	Level  int     // refinement level; root cells have level 0
	X0, Y0 float64 // lower-left corner
	H      float64 // edge length
	Parent int     // parent id; -1 for root cells
	Kids   []int   // ids of children; nil for leaves
	Alive  bool    // false after being merged into its parent
}

// transfer kinds
const (
	trRefine = iota
	trCoarsen
)

// transfer holds a pending re-projection after a change of topology
type transfer struct {
	kind   int
	parent int
	kids   []int
}

// Mesh holds the quadtree and the fields at integration points of active cells
type Mesh struct {

	// input
	Nx, Ny   int     // number of root cells along x and y
	Lx, Ly   float64 // domain lengths
	MinLevel int     // cells are not coarsened below this level
	MaxLevel int     // cells are not refined beyond this level
	Periodic bool    // periodic domain: distances use the minimum image

	// derived
	Cells []*Cell  // all cells ever created; index == Id
	Keys  []string // field keys

	// internal
	h0      float64                // edge length of root cells
	vals    map[string][][]float64 // key => [ncells][nip] values; nil for inactive cells
	leaves  []int                  // active cells sorted by Id
	refine  map[int]bool           // refinement requests
	coarsen map[int]bool           // coarsening requests
	pending []transfer             // transfers waiting for Project
	bkp     map[string][][]float64 // backup of values
	bkpOk   bool                   // backup matches current topology
}

// New returns a new uniform mesh with nx*ny square root cells refined uniformly up to minLevel
func New(nx, ny int, lx, ly float64, minLevel, maxLevel int, keys ...string) (o *Mesh, err error) {
	if nx < 1 || ny < 1 {
		return nil, chk.Err("number of root cells must be positive. nx=%d, ny=%d", nx, ny)
	}
	if lx <= 0 || ly <= 0 {
		return nil, chk.Err("domain lengths must be positive. lx=%g, ly=%g", lx, ly)
	}
	hx, hy := lx/float64(nx), ly/float64(ny)
	if math.Abs(hx-hy) > 1e-10*utl.Max(hx, hy) {
		return nil, chk.Err("root cells must be square. lx/nx=%g != ly/ny=%g", hx, hy)
	}
	if minLevel < 0 || maxLevel < minLevel {
		return nil, chk.Err("refinement levels are inconsistent. min=%d, max=%d", minLevel, maxLevel)
	}
	o = &Mesh{Nx: nx, Ny: ny, Lx: lx, Ly: ly, MinLevel: minLevel, MaxLevel: maxLevel, h0: hx}
	o.vals = make(map[string][][]float64)
	o.refine = make(map[int]bool)
	o.coarsen = make(map[int]bool)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			o.Cells = append(o.Cells, &Cell{
				Id:     len(o.Cells),
				X0:     float64(i) * hx,
				Y0:     float64(j) * hx,
				H:      hx,
				Parent: -1,
				Alive:  true,
			})
		}
	}
	o.rebuildLeaves()
	for _, key := range keys {
		o.AddKey(key)
	}
	for lvl := 0; lvl < minLevel; lvl++ {
		for _, cid := range o.leaves {
			o.Refine(cid)
		}
		o.Adapt()
		o.Project()
	}
	return
}

// AddKey adds a new field initialised with zeros. Existing keys are not modified.
func (o *Mesh) AddKey(key string) {
	if _, ok := o.vals[key]; ok {
		return
	}
	o.Keys = append(o.Keys, key)
	slots := make([][]float64, len(o.Cells))
	for _, cid := range o.leaves {
		slots[cid] = make([]float64, shp.NipQua4)
	}
	o.vals[key] = slots
	o.bkpOk = false
}

// HasKey tells whether field key exists
func (o *Mesh) HasKey(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// geometry and access //////////////////////////////////////////////////////////////////////////////

// Ndim returns the space dimension
func (o *Mesh) Ndim() int { return 2 }

// Elems returns a copy of the ids of active cells in increasing order
func (o *Mesh) Elems() []int {
	eids := make([]int, len(o.leaves))
	copy(eids, o.leaves)
	return eids
}

// NumElems returns the number of active cells
func (o *Mesh) NumElems() int { return len(o.leaves) }

// Volume returns the area of cell (unit thickness)
func (o *Mesh) Volume(eid int) float64 { return o.Cells[eid].H * o.Cells[eid].H }

// Size returns the edge length of cell
func (o *Mesh) Size(eid int) float64 { return o.Cells[eid].H }

// Level returns the refinement level of cell
func (o *Mesh) Level(eid int) int { return o.Cells[eid].Level }

// MaxLevelReached tells whether cell cannot be refined any further
func (o *Mesh) MaxLevelReached(eid int) bool { return o.Cells[eid].Level >= o.MaxLevel }

// Nip returns the number of integration points of cell
func (o *Mesh) Nip(eid int) int { return shp.NipQua4 }

// IpCoords returns the real coordinates of the integration points of cell
func (o *Mesh) IpCoords(eid int) (X [][]float64) {
	c := o.Cells[eid]
	X = make([][]float64, shp.NipQua4)
	for i, ip := range shp.IpsQua4 {
		x, y := shp.NatToReal(c.X0, c.Y0, c.H, ip[0], ip[1])
		X[i] = []float64{x, y}
	}
	return
}

// IpWeights returns the integration weights (including the Jacobian) of cell
func (o *Mesh) IpWeights(eid int) (W []float64) {
	c := o.Cells[eid]
	detJ := c.H * c.H / 4.0
	W = make([]float64, shp.NipQua4)
	for i, ip := range shp.IpsQua4 {
		W[i] = ip[3] * detJ
	}
	return
}

// Get returns the value of field key @ integration point ip of cell eid
func (o *Mesh) Get(key string, eid, ip int) float64 {
	slots, ok := o.vals[key]
	if !ok {
		return 0
	}
	return slots[eid][ip]
}

// Set sets the value of field key @ integration point ip of cell eid
func (o *Mesh) Set(key string, eid, ip int, val float64) {
	slots, ok := o.vals[key]
	if !ok {
		chk.Panic("cannot set value of unknown field %q", key)
	}
	slots[eid][ip] = val
}

// SetFunc sets the values of field key at all integration points using f(x)
func (o *Mesh) SetFunc(key string, f func(x []float64) float64) {
	o.AddKey(key)
	for _, eid := range o.leaves {
		for ip, x := range o.IpCoords(eid) {
			o.vals[key][eid][ip] = f(x)
		}
	}
}

// Bounds returns the limits of the domain
func (o *Mesh) Bounds() (xmin, xmax []float64) {
	return []float64{0, 0}, []float64{o.Lx, o.Ly}
}

// Locate returns the id of the active cell containing x or -1 if x is outside the domain
func (o *Mesh) Locate(x []float64) int {
	px, py := x[0], x[1]
	if o.Periodic {
		px, py = wrap(px, o.Lx), wrap(py, o.Ly)
	}
	if px < 0 || px > o.Lx || py < 0 || py > o.Ly {
		return -1
	}
	i := utl.Imin(int(px/o.h0), o.Nx-1)
	j := utl.Imin(int(py/o.h0), o.Ny-1)
	c := o.Cells[j*o.Nx+i]
	for c.Kids != nil {
		xm, ym := c.X0+c.H/2.0, c.Y0+c.H/2.0
		k := 0
		switch {
		case px >= xm && py < ym:
			k = 1
		case px >= xm && py >= ym:
			k = 2
		case px < xm && py >= ym:
			k = 3
		}
		c = o.Cells[c.Kids[k]]
	}
	return c.Id
}

// Interp interpolates field key @ x. Returns 0 if x is outside the domain
func (o *Mesh) Interp(key string, x []float64) float64 {
	eid := o.Locate(x)
	if eid < 0 || !o.HasKey(key) {
		return 0
	}
	c := o.Cells[eid]
	px, py := x[0], x[1]
	if o.Periodic {
		px, py = wrap(px, o.Lx), wrap(py, o.Ly)
	}
	r, s := shp.RealToNat(c.X0, c.Y0, c.H, px, py)
	return shp.InterpQua4(o.vals[key][eid], r, s)
}

// Separation returns the vector from a to b; minimum image if periodic
func (o *Mesh) Separation(a, b []float64) []float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	if o.Periodic {
		dx, dy = minImage(dx, o.Lx), minImage(dy, o.Ly)
	}
	return []float64{dx, dy}
}

// Distance returns the distance between two points; minimum image if periodic
func (o *Mesh) Distance(a, b []float64) float64 {
	d := o.Separation(a, b)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1])
}

// Dist returns the distance from point x to cell eid (zero if x is inside the cell)
func (o *Mesh) Dist(eid int, x []float64) float64 {
	c := o.Cells[eid]
	dx := axisGap(x[0], c.X0, c.X0+c.H)
	dy := axisGap(x[1], c.Y0, c.Y0+c.H)
	if o.Periodic {
		dx = utl.Min(dx, utl.Min(axisGap(x[0]-o.Lx, c.X0, c.X0+c.H), axisGap(x[0]+o.Lx, c.X0, c.X0+c.H)))
		dy = utl.Min(dy, utl.Min(axisGap(x[1]-o.Ly, c.Y0, c.Y0+c.H), axisGap(x[1]+o.Ly, c.Y0, c.Y0+c.H)))
	}
	return math.Sqrt(dx*dx + dy*dy)
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

func (o *Mesh) rebuildLeaves() {
	o.leaves = o.leaves[:0]
	for _, c := range o.Cells {
		if c.Alive && c.Kids == nil {
			o.leaves = append(o.leaves, c.Id)
		}
	}
	sort.Ints(o.leaves)
}

// axisGap returns the gap between p and the interval [a,b]
func axisGap(p, a, b float64) float64 {
	if p < a {
		return a - p
	}
	if p > b {
		return p - b
	}
	return 0
}

// wrap maps p into [0,l)
func wrap(p, l float64) float64 {
	p = math.Mod(p, l)
	if p < 0 {
		p += l
	}
	return p
}

// minImage returns the minimum image of the separation d in a periodic box of length l
func minImage(d, l float64) float64 {
	return d - l*math.Round(d/l)
}
