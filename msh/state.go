// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"github.com/anilkunwar/hyrax/shp"
	"github.com/cpmech/gosl/chk"
)

// State holds a serialisable copy of the mesh and of the field values at active cells
type State struct {
	Nx, Ny   int
	Lx, Ly   float64
	MinLevel int
	MaxLevel int
	Periodic bool
	Cells    []Cell
	Keys     []string
	Vals     map[string][][]float64 // key => [ncells][nip]; nil for inactive cells
}

// State returns a copy of the current mesh. Pending projections are performed first
func (o *Mesh) State() (s *State) {
	o.Project()
	s = &State{
		Nx: o.Nx, Ny: o.Ny, Lx: o.Lx, Ly: o.Ly,
		MinLevel: o.MinLevel, MaxLevel: o.MaxLevel, Periodic: o.Periodic,
		Keys: append([]string(nil), o.Keys...),
		Vals: make(map[string][][]float64, len(o.vals)),
	}
	s.Cells = make([]Cell, len(o.Cells))
	for i, c := range o.Cells {
		s.Cells[i] = *c
		s.Cells[i].Kids = append([]int(nil), c.Kids...)
	}
	for key, slots := range o.vals {
		cpy := make([][]float64, len(slots))
		for _, eid := range o.leaves {
			cpy[eid] = append([]float64(nil), slots[eid]...)
		}
		s.Vals[key] = cpy
	}
	return
}

// NewFromState returns a mesh rebuilt from a State
func NewFromState(s *State) (o *Mesh, err error) {
	if s == nil || len(s.Cells) == 0 {
		return nil, chk.Err("mesh state is empty")
	}
	o, err = New(s.Nx, s.Ny, s.Lx, s.Ly, 0, s.MaxLevel)
	if err != nil {
		return
	}
	o.MinLevel = s.MinLevel
	o.Periodic = s.Periodic
	o.Cells = make([]*Cell, len(s.Cells))
	for i := range s.Cells {
		c := s.Cells[i]
		if c.Id != i {
			return nil, chk.Err("cell %d has inconsistent id %d", i, c.Id)
		}
		c.Kids = append([]int(nil), s.Cells[i].Kids...)
		if len(c.Kids) == 0 {
			c.Kids = nil
		}
		o.Cells[i] = &c
	}
	o.rebuildLeaves()
	o.Keys = nil
	o.vals = make(map[string][][]float64)
	for _, key := range s.Keys {
		src, ok := s.Vals[key]
		if !ok || len(src) != len(o.Cells) {
			return nil, chk.Err("values of field %q are missing or inconsistent", key)
		}
		slots := make([][]float64, len(o.Cells))
		for _, eid := range o.leaves {
			if len(src[eid]) != shp.NipQua4 {
				return nil, chk.Err("values of field %q at cell %d are missing", key, eid)
			}
			slots[eid] = append([]float64(nil), src[eid]...)
		}
		o.Keys = append(o.Keys, key)
		o.vals[key] = slots
	}
	o.bkpOk = false
	return
}
