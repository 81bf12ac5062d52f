// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package chem implements models for the chemical driving force of nucleation
package chem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/mitchellh/mapstructure"
)

// Model defines chemical free energy models
type Model interface {
	Init(prms map[string]interface{}) error // Init initialises this structure
	DeltaG(c, T float64) float64            // free energy change per volume to form the new phase from matrix with composition c @ temperature T. negative => favourable
}

// New chemical model
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'chem' database", name)
	}
	return allocator(), nil
}

// allocators holds all available models
var allocators = map[string]func() Model{}

// decode decodes parameters into model structure
func decode(prms map[string]interface{}, model interface{}) (err error) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           model,
	})
	if err != nil {
		return
	}
	err = dec.Decode(prms)
	if err != nil {
		return chk.Err("cannot decode parameters of chemical model:\n%v", err)
	}
	return
}
