// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/cpmech/gosl/chk"
)

// Event holds an accepted nucleation event. Events are never mutated after being appended to History
type Event struct {
	Id      int       `json:"id"`             // nucleus id
	X       []float64 `json:"x"`              // location
	Step    int       `json:"step"`           // time step index
	Time    float64   `json:"time"`           // physical time
	Variant int       `json:"variant"`        // index of order parameter receiving the nucleus
	Radius  float64   `json:"radius"`         // nucleus radius
	Amp     float64   `json:"amp"`            // amplitude of order parameter inside the nucleus
	Axes    []float64 `json:"axes,omitempty"` // relative semi-axes of ellipsoidal nuclei; nil => sphere
}

// clone returns a deep copy of event
func (o *Event) clone() *Event {
	e := *o
	e.X = append([]float64(nil), o.X...)
	if o.Axes != nil {
		e.Axes = append([]float64(nil), o.Axes...)
	}
	return &e
}

// Extent returns the largest semi-axis of the nucleus
func (o *Event) Extent() float64 {
	return o.Radius * amax(o.Axes)
}

// Exclusion defines the zone around existing nuclei where new nuclei are not allowed
type Exclusion struct {
	Radius float64                        // exclusion distance. 0 => no exclusion
	Decay  float64                        // time for the exclusion radius to decay linearly to zero. 0 => no decay
	Sep    func(a, b []float64) []float64 // separation vector; nil => Euclidean
}

// Dist returns the distance between points a and b
func (o *Exclusion) Dist(a, b []float64) float64 {
	if o.Sep != nil {
		return norm(o.Sep(a, b))
	}
	d := make([]float64, len(a))
	for i := range a {
		d[i] = b[i] - a[i]
	}
	return norm(d)
}

// RadiusAt returns the exclusion radius of an event created at time t0 observed at time t
func (o *Exclusion) RadiusAt(t0, t float64) float64 {
	if o.Decay <= 0 || t <= t0 {
		return o.Radius
	}
	r := o.Radius * (1.0 - (t-t0)/o.Decay)
	if r < 0 {
		return 0
	}
	return r
}

// Excludes tells whether x observed at time t lies inside the exclusion zone of ev
func (o *Exclusion) Excludes(ev *Event, x []float64, t float64) bool {
	r := o.RadiusAt(ev.Time, t)
	if r <= 0 {
		return false
	}
	return o.Dist(ev.X, x) < r
}

// History holds the append-only registry of accepted events. All methods are safe for concurrent use.
type History struct {
	Excl *Exclusion // exclusion rule; nil => no exclusion

	mu      sync.RWMutex
	events  []*Event     // events sorted by id; id == index
	applied map[int]bool // ids of injected events
}

// NewHistory returns a new empty history
func NewHistory(excl *Exclusion) *History {
	return &History{Excl: excl, applied: make(map[int]bool)}
}

// NextId returns the id that the next appended event must have
func (o *History) NextId() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.events)
}

// Len returns the number of events
func (o *History) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.events)
}

// Append appends a new event. The event id must be equal to NextId and the event must not lie
// inside the exclusion zone of any existing event.
func (o *History) Append(ev *Event) (err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ev.Id != len(o.events) {
		return chk.Err("event id must be %d. %d is invalid", len(o.events), ev.Id)
	}
	if n := len(o.events); n > 0 && ev.Time < o.events[n-1].Time {
		return chk.Err("event time %g is older than time %g of the last event", ev.Time, o.events[n-1].Time)
	}
	if other, found := o.excluded(ev.X, ev.Time); found {
		return &ExclusionError{Id: ev.Id, Other: other}
	}
	o.events = append(o.events, ev.clone())
	return
}

// Excluded tells whether x at time t lies inside the exclusion zone of an existing event
//  Output:
//   other -- id of the first event whose zone contains x
func (o *History) Excluded(x []float64, t float64) (other int, found bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.excluded(x, t)
}

// Snapshot returns copies of all events
func (o *History) Snapshot() (events []*Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	events = make([]*Event, len(o.events))
	for i, ev := range o.events {
		events[i] = ev.clone()
	}
	return
}

// Get returns a copy of event id
func (o *History) Get(id int) (ev *Event, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if id < 0 || id >= len(o.events) {
		return nil, false
	}
	return o.events[id].clone(), true
}

// MarkApplied records that event id has been injected. An event can be marked only once
func (o *History) MarkApplied(id int) (err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if id < 0 || id >= len(o.events) {
		return chk.Err("cannot mark unknown event %d as applied", id)
	}
	if o.applied[id] {
		return ErrAlreadyApplied
	}
	o.applied[id] = true
	return
}

// Applied tells whether event id has been injected
func (o *History) Applied(id int) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.applied[id]
}

// Pending returns copies of events accepted but not injected yet
func (o *History) Pending() (events []*Event) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, ev := range o.events {
		if !o.applied[ev.Id] {
			events = append(events, ev.clone())
		}
	}
	return
}

// NumApplied returns the number of injected events
func (o *History) NumApplied() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.applied)
}

// histJSON is the serialised form of History
type histJSON struct {
	Events  []*Event `json:"events"`
	Applied []int    `json:"applied"`
}

// MarshalJSON encodes the events and the ids of applied events
func (o *History) MarshalJSON() ([]byte, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	h := histJSON{Events: o.events, Applied: make([]int, 0, len(o.applied))}
	if h.Events == nil {
		h.Events = []*Event{}
	}
	for id := range o.applied {
		h.Applied = append(h.Applied, id)
	}
	sort.Ints(h.Applied)
	return json.Marshal(&h)
}

// UnmarshalJSON decodes events and applied ids. The exclusion rule is kept
func (o *History) UnmarshalJSON(b []byte) (err error) {
	var h histJSON
	err = json.Unmarshal(b, &h)
	if err != nil {
		return
	}
	return o.Load(h.Events, h.Applied)
}

// AppliedIds returns the sorted ids of injected events
func (o *History) AppliedIds() (ids []int) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids = make([]int, 0, len(o.applied))
	for id := range o.applied {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return
}

// Load replaces the contents of history; e.g. when resuming a simulation
func (o *History) Load(events []*Event, applied []int) (err error) {
	for i, ev := range events {
		if ev.Id != i {
			return chk.Err("event ids must be sequential. event %d has id %d", i, ev.Id)
		}
	}
	done := make(map[int]bool, len(applied))
	for _, id := range applied {
		if id < 0 || id >= len(events) {
			return chk.Err("applied id %d does not correspond to any event", id)
		}
		done[id] = true
	}
	cpy := make([]*Event, len(events))
	for i, ev := range events {
		cpy[i] = ev.clone()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = cpy
	o.applied = done
	return
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

func (o *History) excluded(x []float64, t float64) (other int, found bool) {
	if o.Excl == nil {
		return -1, false
	}
	for _, ev := range o.events {
		if o.Excl.Excludes(ev, x, t) {
			return ev.Id, true
		}
	}
	return -1, false
}

// amax returns the largest relative semi-axis; 1 for spheres
func amax(axes []float64) (res float64) {
	if len(axes) == 0 {
		return 1
	}
	for _, a := range axes {
		if a > res {
			res = a
		}
	}
	return
}

// amin returns the smallest relative semi-axis; 1 for spheres
func amin(axes []float64) (res float64) {
	if len(axes) == 0 {
		return 1
	}
	res = axes[0]
	for _, a := range axes {
		if a < res {
			res = a
		}
	}
	return
}
