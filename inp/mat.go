// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/anilkunwar/hyrax/mdl/chem"
	"github.com/anilkunwar/hyrax/mdl/elast"
)

// ModelData holds the name and parameters of a model
type ModelData struct {
	Model string                 `json:"model" yaml:"model"` // name of model; e.g. "parabolic", "linear"
	Extra string                 `json:"extra" yaml:"extra"` // extra information about this model
	Prms  map[string]interface{} `json:"prms" yaml:"prms"`   // model parameters
}

// ThermoData holds the thermodynamic and elastic collaborators of the nucleation engine
type ThermoData struct {

	// input
	Chem  ModelData `json:"chem" yaml:"chem"`   // chemical driving force model
	Elast ModelData `json:"elast" yaml:"elast"` // elastic strain energy model

	// derived
	ChemMdl  chem.Model  `json:"-" yaml:"-"` // pointer to actual chemical model
	ElastMdl elast.Model `json:"-" yaml:"-"` // pointer to actual elastic model
}

// SetDefault sets default values
func (o *ThermoData) SetDefault() {
	o.Chem.Model = "cte"
	o.Elast.Model = "none"
}

// Alloc allocates and initialises the models
func (o *ThermoData) Alloc() (err error) {
	o.ChemMdl, err = chem.New(o.Chem.Model)
	if err != nil {
		return &ConfigError{"thermo.chem.model", err.Error()}
	}
	err = o.ChemMdl.Init(o.Chem.Prms)
	if err != nil {
		return &ConfigError{"thermo.chem.prms", err.Error()}
	}
	if o.Elast.Model == "" {
		o.Elast.Model = "none"
	}
	o.ElastMdl, err = elast.New(o.Elast.Model)
	if err != nil {
		return &ConfigError{"thermo.elast.model", err.Error()}
	}
	err = o.ElastMdl.Init(o.Elast.Prms)
	if err != nil {
		return &ConfigError{"thermo.elast.prms", err.Error()}
	}
	return
}

// Elastic returns the elastic model or nil if the "none" model is selected
func (o *ThermoData) Elastic() elast.Model {
	if o.Elast.Model == "none" {
		return nil
	}
	return o.ElastMdl
}

