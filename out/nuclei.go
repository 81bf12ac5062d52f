// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements reporting of nucleation results and engine metrics
package out

import (
	"bytes"
	"math"

	"github.com/anilkunwar/hyrax/nucl"
	"github.com/cpmech/gosl/io"
)

// tolT is the tolerance on time comparisons; event times accumulate Δt and carry rounding errors
const tolT = 1e-10

// NucleiInfo holds a summary of the nuclei present at a given time
type NucleiInfo struct {
	Time     float64     // observation time
	Nnuclei  int         // number of events with Time <= observation time
	Napplied int         // number of injected events among them
	Npending int         // number of events waiting for injection among them
	Last     *nucl.Event // most recent event; nil if none
	Spacing  float64     // mean nearest-neighbour distance; 0 if less than two nuclei
	Events   []*nucl.Event
}

// NewNucleiInfo collects information about the events in hist accepted up to time t
func NewNucleiInfo(hist *nucl.History, t float64) (o *NucleiInfo) {
	o = &NucleiInfo{Time: t}
	for _, ev := range hist.Snapshot() {
		if ev.Time > t+tolT {
			continue
		}
		o.Events = append(o.Events, ev)
		if hist.Applied(ev.Id) {
			o.Napplied++
		} else {
			o.Npending++
		}
	}
	o.Nnuclei = len(o.Events)
	if o.Nnuclei > 0 {
		o.Last = o.Events[o.Nnuclei-1]
	}
	if o.Nnuclei < 2 {
		return
	}
	excl := hist.Excl
	if excl == nil {
		excl = new(nucl.Exclusion)
	}
	var sum float64
	for i, a := range o.Events {
		dmin := math.Inf(1)
		for j, b := range o.Events {
			if i != j {
				dmin = math.Min(dmin, excl.Dist(a.X, b.X))
			}
		}
		sum += dmin
	}
	o.Spacing = sum / float64(o.Nnuclei)
	return
}

// Table returns a formatted table with the nuclei
func (o *NucleiInfo) Table() string {
	var b bytes.Buffer
	b.WriteString(io.Sf("nuclei at t = %g: %d (applied = %d, pending = %d)\n", o.Time, o.Nnuclei, o.Napplied, o.Npending))
	if o.Nnuclei == 0 {
		return b.String()
	}
	if o.Nnuclei > 1 {
		b.WriteString(io.Sf("mean spacing = %g\n", o.Spacing))
	}
	b.WriteString(io.Sf("%6s%8s%14s%14s%14s%8s%12s\n", "id", "step", "time", "x", "y", "var", "radius"))
	for _, ev := range o.Events {
		b.WriteString(io.Sf("%6d%8d%14.6g%14.6g%14.6g%8d%12.4g\n", ev.Id, ev.Step, ev.Time, ev.X[0], ev.X[1], ev.Variant, ev.Radius))
	}
	return b.String()
}
