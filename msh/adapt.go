// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"github.com/anilkunwar/hyrax/shp"
	"github.com/cpmech/gosl/chk"
)

// Refine requests the refinement of an active cell. The request is honoured by Adapt
func (o *Mesh) Refine(eid int) {
	delete(o.coarsen, eid)
	o.refine[eid] = true
}

// Coarsen requests the coarsening of an active cell. A cell is merged into its parent only
// if all its siblings are active and also requested to be coarsened
func (o *Mesh) Coarsen(eid int) {
	if o.refine[eid] {
		return
	}
	o.coarsen[eid] = true
}

// Requests returns the number of pending refinement and coarsening requests
func (o *Mesh) Requests() (nref, ncrs int) {
	return len(o.refine), len(o.coarsen)
}

// Adapt changes the topology according to the requests. Values of new cells are allocated but
// remain undefined until Project is called. Any previous pending projection is performed first.
//  Output:
//   changed -- the topology has changed
func (o *Mesh) Adapt() (changed bool) {

	// finish previous changes
	o.Project()

	// refine
	for _, eid := range o.leaves {
		if !o.refine[eid] {
			continue
		}
		c := o.Cells[eid]
		if c.Level >= o.MaxLevel {
			continue
		}
		h := c.H / 2.0
		corners := [][]float64{{c.X0, c.Y0}, {c.X0 + h, c.Y0}, {c.X0 + h, c.Y0 + h}, {c.X0, c.Y0 + h}}
		c.Kids = make([]int, 4)
		for k, x := range corners {
			kid := &Cell{Id: len(o.Cells), Level: c.Level + 1, X0: x[0], Y0: x[1], H: h, Parent: c.Id, Alive: true}
			o.Cells = append(o.Cells, kid)
			c.Kids[k] = kid.Id
		}
		o.pending = append(o.pending, transfer{trRefine, c.Id, c.Kids})
		changed = true
	}

	// coarsen: visit each parent once
	visited := make(map[int]bool)
	for _, eid := range o.leaves {
		if !o.coarsen[eid] {
			continue
		}
		pid := o.Cells[eid].Parent
		if pid < 0 || visited[pid] {
			continue
		}
		visited[pid] = true
		p := o.Cells[pid]
		if p.Level < o.MinLevel {
			continue
		}
		ok := true
		for _, kid := range p.Kids {
			k := o.Cells[kid]
			if k.Kids != nil || !o.coarsen[kid] || o.refine[kid] {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		kids := p.Kids
		p.Kids = nil
		for _, kid := range kids {
			o.Cells[kid].Alive = false
		}
		o.pending = append(o.pending, transfer{trCoarsen, pid, kids})
		changed = true
	}

	// clear requests
	o.refine = make(map[int]bool)
	o.coarsen = make(map[int]bool)
	if !changed {
		return
	}

	// allocate values of new active cells
	for key, slots := range o.vals {
		for len(slots) < len(o.Cells) {
			slots = append(slots, nil)
		}
		for _, tr := range o.pending {
			switch tr.kind {
			case trRefine:
				for _, kid := range tr.kids {
					slots[kid] = make([]float64, shp.NipQua4)
				}
			case trCoarsen:
				slots[tr.parent] = make([]float64, shp.NipQua4)
			}
		}
		o.vals[key] = slots
	}
	o.rebuildLeaves()
	o.bkpOk = false
	return
}

// Pending tells whether there are new cells waiting for Project
func (o *Mesh) Pending() bool { return len(o.pending) > 0 }

// Project re-expresses the field values on the cells created by the last Adapt. Children receive the
// bilinear function defined by the Gauss values of the parent; merged parents receive the values of
// the children functions evaluated at the parent's integration points.
func (o *Mesh) Project() {
	if len(o.pending) == 0 {
		return
	}
	for _, tr := range o.pending {
		p := o.Cells[tr.parent]
		for _, slots := range o.vals {
			switch tr.kind {
			case trRefine:
				pv := slots[tr.parent]
				for _, kid := range tr.kids {
					for ip, x := range o.IpCoords(kid) {
						r, s := shp.RealToNat(p.X0, p.Y0, p.H, x[0], x[1])
						slots[kid][ip] = shp.InterpQua4(pv, r, s)
					}
				}
				slots[tr.parent] = nil
			case trCoarsen:
				for ip, x := range o.IpCoords(tr.parent) {
					k := o.Cells[tr.kids[ip]] // integration point ip lies inside kid ip
					r, s := shp.RealToNat(k.X0, k.Y0, k.H, x[0], x[1])
					slots[tr.parent][ip] = shp.InterpQua4(slots[k.Id], r, s)
				}
				for _, kid := range tr.kids {
					slots[kid] = nil
				}
			}
		}
	}
	o.pending = o.pending[:0]
}

// Backup saves a copy of the values of all fields at active cells
func (o *Mesh) Backup() {
	o.Project()
	o.bkp = make(map[string][][]float64, len(o.vals))
	for key, slots := range o.vals {
		cpy := make([][]float64, len(slots))
		for _, eid := range o.leaves {
			cpy[eid] = append([]float64(nil), slots[eid]...)
		}
		o.bkp[key] = cpy
	}
	o.bkpOk = true
}

// Restore restores the values saved by Backup. It fails if the topology or keys changed after Backup
func (o *Mesh) Restore() (err error) {
	if !o.bkpOk {
		return chk.Err("cannot restore field values because the mesh changed after the last backup")
	}
	for key, slots := range o.vals {
		cpy := o.bkp[key]
		for _, eid := range o.leaves {
			copy(slots[eid], cpy[eid])
		}
	}
	return
}
