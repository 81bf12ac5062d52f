// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package shp implements shape functions and integration points of square cells
package shp

import "math"

// Ipoint holds integration point data: natural coordinates and weight
//  ip = {r, s, t, w}
type Ipoint []float64

// constants
const (
	NvertsQua4 = 4 // number of vertices of qua4
	NipQua4    = 4 // number of integration points of qua4 (2x2 Gauss)
)

// gauss coordinate of 2x2 rule
var gaussA = 1.0 / math.Sqrt(3.0)

// IpsQua4 holds the 2x2 Gauss integration points. The ordering follows the vertices:
//
//    3 o-------o 2
//      | 3   2 |
//      | 0   1 |
//    0 o-------o 1
//
var IpsQua4 = []Ipoint{
	{-gaussA, -gaussA, 0, 1},
	{+gaussA, -gaussA, 0, 1},
	{+gaussA, +gaussA, 0, 1},
	{-gaussA, +gaussA, 0, 1},
}

// FuncQua4 computes the bilinear shape functions S @ natural coordinates (r,s)
func FuncQua4(S []float64, r, s float64) {
	S[0] = (1.0 - r) * (1.0 - s) / 4.0
	S[1] = (1.0 + r) * (1.0 - s) / 4.0
	S[2] = (1.0 + r) * (1.0 + s) / 4.0
	S[3] = (1.0 - r) * (1.0 + s) / 4.0
}

// InterpQua4 evaluates at (r,s) the bilinear function that passes through the values
// given at the 2x2 Gauss points. Points outside the Gauss square are extrapolated.
func InterpQua4(vals []float64, r, s float64) (res float64) {
	var S [NvertsQua4]float64
	FuncQua4(S[:], r/gaussA, s/gaussA)
	for i := 0; i < NvertsQua4; i++ {
		res += S[i] * vals[i]
	}
	return
}

// NatToReal converts natural coordinates of a square cell with lower-left corner (x0,y0) and edge h
// into real coordinates
func NatToReal(x0, y0, h, r, s float64) (x, y float64) {
	x = x0 + h*(1.0+r)/2.0
	y = y0 + h*(1.0+s)/2.0
	return
}

// RealToNat converts real coordinates into natural coordinates of a square cell
func RealToNat(x0, y0, h, x, y float64) (r, s float64) {
	r = 2.0*(x-x0)/h - 1.0
	s = 2.0*(y-y0)/h - 1.0
	return
}
