// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ckp implements the persistence of simulation checkpoints
package ckp

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	goio "io"
	"time"

	"github.com/anilkunwar/hyrax/msh"
	"github.com/anilkunwar/hyrax/nucl"
)

// ErrNotFound signals that a checkpoint does not exist
var ErrNotFound = errors.New("checkpoint not found")

// Checkpoint holds everything required to resume a simulation with identical future sampling
type Checkpoint struct {

	// identification
	RunId string    `json:"runid"` // id of run that created this checkpoint
	Key   string    `json:"key"`   // simulation key
	Saved time.Time `json:"saved"` // time of creation

	// time stepping
	Step int     `json:"step"` // index of last converged step
	Time float64 `json:"time"` // physical time of last converged step
	Dt   float64 `json:"dt"`   // last time step

	// random numbers
	Seed     uint64 `json:"seed"`     // seed of sampler
	Draws    uint64 `json:"draws"`    // number of random numbers consumed so far
	RngState []byte `json:"rngstate"` // state of generator

	// nucleation history
	Events  []*nucl.Event `json:"events"`  // accepted events
	Applied []int         `json:"applied"` // ids of injected events

	// marker
	Cool   map[int]int `json:"cool"`   // cooldown counters
	Forced []int       `json:"forced"` // pending refinement requests

	// fields
	Mesh *msh.State `json:"mesh"` // mesh and field values
}

// Store defines the persistence of checkpoints
type Store interface {
	Save(ctx context.Context, key string, cp *Checkpoint) error // saves or replaces checkpoint
	Load(ctx context.Context, key string) (*Checkpoint, error)  // loads checkpoint; ErrNotFound if it does not exist
	List(ctx context.Context) ([]string, error)                 // lists keys of existing checkpoints
	Delete(ctx context.Context, key string) error               // deletes checkpoint
}

// encoders ////////////////////////////////////////////////////////////////////////////////////////

// Encoder defines encoders; e.g. gob or json
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; e.g. gob or json
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}
