// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_qua4a(tst *testing.T) {

	//verbose()
	chk.PrintTitle("qua4a. shape functions")

	S := make([]float64, NvertsQua4)
	nat := [][]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for n, rs := range nat {
		FuncQua4(S, rs[0], rs[1])
		for m := 0; m < NvertsQua4; m++ {
			if m == n {
				chk.Float64(tst, "S @ own node", 1e-15, S[m], 1)
			} else {
				chk.Float64(tst, "S @ other node", 1e-15, S[m], 0)
			}
		}
	}

	var sum float64
	for _, ip := range IpsQua4 {
		sum += ip[3]
	}
	chk.Float64(tst, "sum of weights", 1e-15, sum, 4)
}

func Test_qua4b(tst *testing.T) {

	//verbose()
	chk.PrintTitle("qua4b. interpolation from Gauss points")

	// bilinear function is reproduced exactly, even outside the Gauss square
	f := func(r, s float64) float64 { return 1 + 2*r - 3*s + 0.5*r*s }
	vals := make([]float64, NipQua4)
	for i, ip := range IpsQua4 {
		vals[i] = f(ip[0], ip[1])
	}
	for _, rs := range [][]float64{{0, 0}, {0.3, -0.7}, {1, 1}, {-1, 0.5}} {
		chk.Float64(tst, "f(r,s)", 1e-14, InterpQua4(vals, rs[0], rs[1]), f(rs[0], rs[1]))
	}

	// conversion of coordinates
	x, y := NatToReal(2, 4, 0.5, 0, 1)
	chk.Float64(tst, "x", 1e-15, x, 2.25)
	chk.Float64(tst, "y", 1e-15, y, 4.5)
	r, s := RealToNat(2, 4, 0.5, x, y)
	chk.Float64(tst, "r", 1e-15, r, 0)
	chk.Float64(tst, "s", 1e-15, s, 1)
}
