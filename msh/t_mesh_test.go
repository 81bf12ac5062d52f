// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msh

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_mesh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh01. uniform mesh and locate")

	m, err := New(4, 2, 4, 2, 0, 3, "eta")
	if err != nil {
		tst.Errorf("New failed:\n%v", err)
		return
	}
	chk.Int(tst, "number of cells", m.NumElems(), 8)
	chk.Ints(tst, "elems", m.Elems(), []int{0, 1, 2, 3, 4, 5, 6, 7})
	chk.Float64(tst, "volume", 1e-15, m.Volume(5), 1)
	chk.Int(tst, "locate", m.Locate([]float64{2.5, 1.5}), 6)
	chk.Int(tst, "outside", m.Locate([]float64{-0.1, 1.5}), -1)

	var sum float64
	for _, w := range m.IpWeights(3) {
		sum += w
	}
	chk.Float64(tst, "sum of weights == volume", 1e-15, sum, m.Volume(3))

	// distance to cells
	chk.Float64(tst, "inside", 1e-15, m.Dist(0, []float64{0.5, 0.5}), 0)
	chk.Float64(tst, "outside", 1e-15, m.Dist(0, []float64{2, 0.5}), 1)
	m.Periodic = true
	chk.Float64(tst, "periodic", 1e-15, m.Dist(0, []float64{3.5, 0.5}), 0.5)
	chk.Float64(tst, "periodic distance", 1e-14, m.Distance([]float64{0.1, 0.1}, []float64{3.9, 0.1}), 0.2)
}

func Test_mesh02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh02. refine, project and coarsen")

	m, err := New(2, 2, 2, 2, 0, 2)
	if err != nil {
		tst.Errorf("New failed:\n%v", err)
		return
	}
	f := func(x []float64) float64 { return 1 + 2*x[0] - x[1] }
	m.SetFunc("c", f)

	// refine cell 0
	m.Refine(0)
	chk.Int(tst, "changed", boolToInt(m.Adapt()), 1)
	chk.Int(tst, "pending", boolToInt(m.Pending()), 1)
	m.Project()
	chk.Int(tst, "number of cells", m.NumElems(), 7)
	chk.Ints(tst, "elems", m.Elems(), []int{1, 2, 3, 4, 5, 6, 7})
	chk.Int(tst, "level", m.Level(4), 1)
	chk.Float64(tst, "size", 1e-15, m.Size(4), 0.5)
	for _, eid := range m.Elems() {
		for ip, x := range m.IpCoords(eid) {
			chk.Float64(tst, io.Sf("c @ %d,%d", eid, ip), 1e-14, m.Get("c", eid, ip), f(x))
		}
	}
	chk.Int(tst, "locate fine cell", m.Locate([]float64{0.75, 0.25}), 5)
	chk.Float64(tst, "interp", 1e-14, m.Interp("c", []float64{0.3, 0.6}), f([]float64{0.3, 0.6}))

	// coarsen needs all siblings
	m.Coarsen(4)
	m.Coarsen(5)
	m.Coarsen(6)
	chk.Int(tst, "not changed", boolToInt(m.Adapt()), 0)
	for _, eid := range []int{4, 5, 6, 7} {
		m.Coarsen(eid)
	}
	chk.Int(tst, "changed", boolToInt(m.Adapt()), 1)
	m.Project()
	chk.Ints(tst, "elems", m.Elems(), []int{0, 1, 2, 3})
	for ip, x := range m.IpCoords(0) {
		chk.Float64(tst, io.Sf("c @ 0,%d", ip), 1e-14, m.Get("c", 0, ip), f(x))
	}

	// cells at max level are not refined
	m.Refine(3)
	m.Adapt()
	kid := m.Cells[3].Kids[2]
	m.Refine(kid)
	m.Adapt()
	grandkid := m.Cells[kid].Kids[0]
	m.Refine(grandkid)
	chk.Int(tst, "max level", boolToInt(m.Adapt()), 0)
	chk.Int(tst, "max level reached", boolToInt(m.MaxLevelReached(grandkid)), 1)
}

func Test_mesh03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh03. backup and restore")

	m, err := New(2, 2, 2, 2, 1, 2, "eta")
	if err != nil {
		tst.Errorf("New failed:\n%v", err)
		return
	}
	chk.Int(tst, "uniform refinement to min level", m.NumElems(), 16)
	m.Backup()
	eid := m.Elems()[3]
	m.Set("eta", eid, 2, 0.7)
	err = m.Restore()
	if err != nil {
		tst.Errorf("Restore failed:\n%v", err)
		return
	}
	chk.Float64(tst, "restored", 1e-15, m.Get("eta", eid, 2), 0)

	m.Refine(eid)
	m.Adapt()
	if m.Restore() == nil {
		tst.Errorf("Restore should fail after a change of topology\n")
	}

	_, err = New(2, 2, 3, 2, 0, 1)
	if err == nil {
		tst.Errorf("New should fail with non-square cells\n")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func Test_mesh04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("mesh04. state")

	m, err := New(2, 1, 2, 1, 0, 3, "c")
	if err != nil {
		tst.Errorf("New failed:\n%v", err)
		return
	}
	m.Periodic = true
	m.SetFunc("c", func(x []float64) float64 { return x[0] * x[1] })
	m.Refine(1)
	m.Adapt()
	m.Coarsen(0)

	other, err := NewFromState(m.State())
	if err != nil {
		tst.Errorf("NewFromState failed:\n%v", err)
		return
	}
	chk.Ints(tst, "elems", other.Elems(), m.Elems())
	chk.Int(tst, "periodic", boolToInt(other.Periodic), 1)
	for _, eid := range m.Elems() {
		for ip := 0; ip < m.Nip(eid); ip++ {
			chk.Float64(tst, io.Sf("c @ %d,%d", eid, ip), 1e-17, other.Get("c", eid, ip), m.Get("c", eid, ip))
		}
	}
	chk.Int(tst, "locate", other.Locate([]float64{1.8, 0.9}), m.Locate([]float64{1.8, 0.9}))

	_, err = NewFromState(&State{})
	if err == nil {
		tst.Errorf("NewFromState should fail with empty state\n")
	}
}
