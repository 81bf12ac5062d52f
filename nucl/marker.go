// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import "sort"

// Flag holds a refinement decision
type Flag int

// refinement decisions
const (
	Keep Flag = iota
	Refine
	Coarsen
)

// String returns the name of flag
func (f Flag) String() string {
	switch f {
	case Refine:
		return "refine"
	case Coarsen:
		return "coarsen"
	}
	return "keep"
}

// Marker classifies elements for refinement or coarsening
type Marker struct {

	// input
	Prefine  float64 // refine where the probability exceeds this value. 0 => ignore probability
	Pcoarsen float64 // coarsen where the probability stayed below this value. 0 => never coarsen
	Cooldown int     // number of consecutive calls below Pcoarsen before coarsening
	MinLevel int     // do not coarsen at or below this level
	MaxLevel int     // do not refine at or beyond this level. 0 => limited by the mesh only
	Buffer   float64 // distance added to the nucleus extent when protecting recent events
	Recent   int     // events accepted within this number of steps are refined around

	// internal
	cool   map[int]int  // cooldown counter per element id
	forced map[int]bool // refinement requested by deferred injections
}

// Force requests the refinement of elements at the next call to Mark
func (o *Marker) Force(eids []int) {
	if o.forced == nil {
		o.forced = make(map[int]bool)
	}
	for _, eid := range eids {
		o.forced[eid] = true
	}
}

// Mark classifies the active elements
//  Input:
//   pf   -- probability field. nil => zero probabilities
//   hist -- history of events. may be nil
//   step -- current step index
//  Output:
//   eids  -- element ids; pf.Eids if pf is given
//   flags -- decision for each element in eids
func (o *Marker) Mark(fld Field, pf *ProbField, hist *History, step int) (eids []int, flags []Flag) {
	if o.cool == nil {
		o.cool = make(map[int]int)
	}
	if pf != nil {
		eids = pf.Eids
	} else {
		eids = fld.Elems()
	}

	// zones around events
	var hot, protected []*Event
	if hist != nil {
		pending := make(map[int]bool)
		for _, ev := range hist.Pending() {
			pending[ev.Id] = true
		}
		for _, ev := range hist.Snapshot() {
			protected = append(protected, ev)
			if pending[ev.Id] || step-ev.Step <= o.Recent {
				hot = append(hot, ev)
			}
		}
	}

	// classify
	flags = make([]Flag, len(eids))
	alive := make(map[int]bool, len(eids))
	for idx, eid := range eids {
		alive[eid] = true
		var pmax float64
		if pf != nil {
			pmax = pf.MaxProb(idx)
		}
		refine := o.forced[eid] || (o.Prefine > 0 && pmax > o.Prefine) || o.near(fld, eid, hot)
		if refine {
			o.cool[eid] = 0
			if !fld.MaxLevelReached(eid) && (o.MaxLevel <= 0 || fld.Level(eid) < o.MaxLevel) {
				flags[idx] = Refine
			}
			continue
		}
		if o.Pcoarsen > 0 && pmax < o.Pcoarsen {
			o.cool[eid]++
			if o.cool[eid] >= o.Cooldown && fld.Level(eid) > o.MinLevel && !o.near(fld, eid, protected) {
				flags[idx] = Coarsen
			}
			continue
		}
		o.cool[eid] = 0
	}

	// forget elements that no longer exist
	for eid := range o.cool {
		if !alive[eid] {
			delete(o.cool, eid)
		}
	}
	o.forced = nil
	return
}

// near tells whether element eid lies within the extent plus buffer of any event
func (o *Marker) near(fld Field, eid int, events []*Event) bool {
	for _, ev := range events {
		if fld.Dist(eid, ev.X) <= ev.Extent()+o.Buffer {
			return true
		}
	}
	return false
}

// Counters returns copies of the cooldown counters and of the forced refinement requests
func (o *Marker) Counters() (cool map[int]int, forced []int) {
	cool = make(map[int]int, len(o.cool))
	for eid, n := range o.cool {
		cool[eid] = n
	}
	for eid := range o.forced {
		forced = append(forced, eid)
	}
	sort.Ints(forced)
	return
}

// SetCounters sets the cooldown counters and forced refinement requests; e.g. when resuming
func (o *Marker) SetCounters(cool map[int]int, forced []int) {
	o.cool = make(map[int]int, len(cool))
	for eid, n := range cool {
		o.cool[eid] = n
	}
	o.forced = nil
	o.Force(forced)
}
