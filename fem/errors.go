// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/io"

// DivergenceError signals that a time step could not be solved even after reducing the time
// step. The domain holds the last stable state.
type DivergenceError struct {
	Step    int     // index of step that failed
	Time    float64 // time of last stable state
	Dt      float64 // last time step tried
	Retries int     // number of retries
}

func (o *DivergenceError) Error() string {
	return io.Sf("solver diverged @ step %d (t=%g) after %d retries; last Δt=%g", o.Step, o.Time, o.Retries, o.Dt)
}
