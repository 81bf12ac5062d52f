// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_summary01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("summary01")

	dirout := tst.TempDir()
	for _, enctype := range []string{"json", "gob"} {
		sum := NewSummary()
		sum.OutTimes = []float64{0.1, 0.2}
		sum.CkpKeys = []string{"a_0000", "a_0001"}
		sum.Nsteps, sum.Nevents, sum.Napplied, sum.Retries = 20, 3, 2, 1
		err := sum.Save(dirout, "sum01-"+enctype, enctype)
		if err != nil {
			tst.Errorf("%v\n", err)
			return
		}
		var res Summary
		err = res.Read(dirout, "sum01-"+enctype, enctype)
		if err != nil {
			tst.Errorf("%v\n", err)
			return
		}
		chk.String(tst, res.RunId, sum.RunId)
		chk.Array(tst, "OutTimes", 1e-17, res.OutTimes, sum.OutTimes)
		chk.Strings(tst, "CkpKeys", res.CkpKeys, sum.CkpKeys)
		chk.Ints(tst, "counters", []int{res.Nsteps, res.Nevents, res.Napplied, res.Retries}, []int{20, 3, 2, 1})
	}

	var res Summary
	if err := res.Read(dirout, "none", "json"); err == nil {
		tst.Errorf("reading a missing summary must fail\n")
	}
}
