// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package elast

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_linear01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linear01")

	mdl, err := New("linear")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	err = mdl.Init(map[string]interface{}{"E": 1000.0, "nu": 0.25})
	if err != nil {
		tst.Errorf("Init failed: %v\n", err)
		return
	}
	m := mdl.(*Linear)
	chk.Float64(tst, "λ", 1e-12, m.Lam, 400)
	chk.Float64(tst, "μ", 1e-12, m.Mu, 400)

	// no strain => no energy
	chk.Float64(tst, "W(0)", 1e-15, m.Energy(nil), 0)

	// uniaxial strain
	chk.Float64(tst, "W(εxx)", 1e-12, m.Energy([]float64{0.01, 0, 0}), 0.5*400*1e-4+400*1e-4)

	// pure shear
	chk.Float64(tst, "W(εxy)", 1e-12, m.Energy([]float64{0, 0, 0.01}), 400*2*1e-4)

	// misfit alone
	m.Misfit = 0.01
	chk.Float64(tst, "W(δ)", 1e-12, m.Energy(nil), 0.5*400*9e-4+400*3e-4)
}

func Test_elast02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("elast02. errors and none model")

	mdl, _ := New("linear")
	if err := mdl.Init(map[string]interface{}{"E": 1.0, "nu": 0.5}); err == nil {
		tst.Errorf("Init should fail with nu=0.5\n")
	}
	none, err := New("none")
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	if err = none.Init(nil); err != nil {
		tst.Errorf("Init failed: %v\n", err)
		return
	}
	chk.Float64(tst, "W", 1e-15, none.Energy([]float64{1, 1, 1}), 0)
}
