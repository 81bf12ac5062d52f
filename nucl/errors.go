// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nucl

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

var (
	// ErrNoBarrier signals that the new phase is thermodynamically unreachable at a location.
	// Evaluators translate it into a zero rate.
	ErrNoBarrier = errors.New("no driving force for nucleation")

	// ErrAlreadyApplied signals an attempt to inject the same event twice
	ErrAlreadyApplied = errors.New("nucleation event already applied")
)

// MeshTooCoarseError signals that the mesh around a nucleus cannot represent its profile.
// The injection is deferred until the listed elements are refined.
type MeshTooCoarseError struct {
	EventId int   // id of deferred event
	Eids    []int // elements requiring refinement
}

func (o *MeshTooCoarseError) Error() string {
	return io.Sf("mesh is too coarse to inject nucleus %d: %d element(s) require refinement", o.EventId, len(o.Eids))
}

// ExclusionError signals an attempt to append an event inside the exclusion zone of another one
type ExclusionError struct {
	Id    int // id of rejected event
	Other int // id of existing event
}

func (o *ExclusionError) Error() string {
	return io.Sf("nucleus %d lies inside the exclusion zone of nucleus %d", o.Id, o.Other)
}
