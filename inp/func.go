// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/mitchellh/mapstructure"
)

// SpaceFunc defines a scalar function of position used to set initial fields
type SpaceFunc func(x []float64) float64

// FuncData holds function definition
type FuncData struct {
	Name string                 `json:"name" yaml:"name"` // name of function. ex: c0, hotspot, etc.
	Type string                 `json:"type" yaml:"type"` // type of function: cte, lin, cdist, gauss, front
	Prms map[string]interface{} `json:"prms" yaml:"prms"` // parameters
}

// Funcs holds functions
type FuncsData []*FuncData

// funcPrms holds the parameters of all function types
//  cte:   f = v0
//  lin:   f = v0 + grad · x
//  cdist: f = v0 + amp (|x-x0| - r); amp defaults to 1
//  gauss: f = v0 + amp exp(-|x-x0|²/(2 σ²))
//  front: f = v0 + amp ½(1 - tanh(2 (n·(x-x0))/w))
type funcPrms struct {
	V0    float64   `mapstructure:"v0"`
	Amp   float64   `mapstructure:"amp"`
	X0    []float64 `mapstructure:"x0"`
	R     float64   `mapstructure:"r"`
	Sigma float64   `mapstructure:"sigma"`
	Grad  []float64 `mapstructure:"grad"`
	N     []float64 `mapstructure:"n"`
	W     float64   `mapstructure:"w"`
}

// Get returns function by name
func (o FuncsData) Get(name string) (fcn SpaceFunc, err error) {
	if name == "zero" || name == "none" {
		return spaceFunc(&dbf.Zero), nil
	}
	for _, f := range o {
		if f.Name == name {
			fcn, err = f.New()
			if err != nil {
				err = chk.Err("cannot get function named %q because of the following error:\n%v", name, err)
			}
			return
		}
	}
	err = chk.Err("cannot find function named %q\n", name)
	return
}

// New allocates the function. Types cte, lin and cdist are assembled from the dbf database.
// Types gauss and front are not available there and are implemented here.
func (o *FuncData) New() (fcn SpaceFunc, err error) {
	var p funcPrms
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return
	}
	if err = dec.Decode(o.Prms); err != nil {
		return
	}
	switch o.Type {

	case "cte":
		return newDbf(o.Type, func() dbf.T {
			return dbf.New("cte", dbf.Params{{N: "c", V: p.V0}})
		})

	case "lin":
		if len(p.Grad) < 2 {
			return nil, chk.Err("lin function requires grad with 2 components")
		}
		return newDbf(o.Type, func() dbf.T {
			return dbf.New("add", dbf.Params{
				{N: "a", V: 1},
				{N: "b", V: 1},
				{N: "fa", Fcn: dbf.New("cte", dbf.Params{{N: "c", V: p.V0}})},
				{N: "fb", Fcn: dbf.New("xpoly1", dbf.Params{{N: "a0", V: p.Grad[0]}, {N: "a1", V: p.Grad[1]}, {N: "2D"}})},
			})
		})

	case "cdist":
		if len(p.X0) < 2 || !(p.R > 0) {
			return nil, chk.Err("cdist function requires x0 with 2 components and r > 0")
		}
		amp := 1.0
		if _, ok := o.Prms["amp"]; ok {
			amp = p.Amp
		}
		return newDbf(o.Type, func() dbf.T {
			return dbf.New("add", dbf.Params{
				{N: "a", V: 1},
				{N: "b", V: amp},
				{N: "fa", Fcn: dbf.New("cte", dbf.Params{{N: "c", V: p.V0}})},
				{N: "fb", Fcn: dbf.New("cdist", dbf.Params{{N: "r", V: p.R}, {N: "xc", V: p.X0[0]}, {N: "yc", V: p.X0[1]}})},
			})
		})

	case "gauss":
		if len(p.X0) < 2 || p.Sigma <= 0 {
			return nil, chk.Err("gauss function requires x0 with 2 components and sigma > 0")
		}
		return func(x []float64) float64 {
			dx, dy := x[0]-p.X0[0], x[1]-p.X0[1]
			return p.V0 + p.Amp*math.Exp(-(dx*dx+dy*dy)/(2.0*p.Sigma*p.Sigma))
		}, nil

	case "front":
		if len(p.X0) < 2 || len(p.N) < 2 || p.W <= 0 {
			return nil, chk.Err("front function requires x0 and n with 2 components and w > 0")
		}
		ln := math.Hypot(p.N[0], p.N[1])
		if ln == 0 {
			return nil, chk.Err("front function requires a non-zero normal")
		}
		return func(x []float64) float64 {
			d := ((x[0]-p.X0[0])*p.N[0] + (x[1]-p.X0[1])*p.N[1]) / ln
			return p.V0 + p.Amp*0.5*(1.0-math.Tanh(2.0*d/p.W))
		}, nil
	}
	return nil, chk.Err("function type %q is not available", o.Type)
}

// newDbf wraps the dbf function returned by alloc. Panics of the database are returned as errors
func newDbf(kind string, alloc func() dbf.T) (fcn SpaceFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			fcn, err = nil, chk.Err("%s function: %v", kind, r)
		}
	}()
	return spaceFunc(alloc()), nil
}

// spaceFunc evaluates f @ t = 0
func spaceFunc(f dbf.T) SpaceFunc {
	return func(x []float64) float64 { return f.F(0, x) }
}

// String prints one function
func (o FuncData) String() string {
	return io.Sf("    {\"name\":%q, \"type\":%q, \"prms\":%v}", o.Name, o.Type, o.Prms)
}
