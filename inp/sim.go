// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON or YAML file
package inp

import (
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anilkunwar/hyrax/nucl"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"gopkg.in/yaml.v3"
)

// Data holds global data for simulations
type Data struct {
	Desc    string `json:"desc" yaml:"desc"`       // description of simulation
	DirOut  string `json:"dirout" yaml:"dirout"`   // directory for output; e.g. /tmp/hyrax
	Encoder string `json:"encoder" yaml:"encoder"` // encoder name; e.g. "gob" "json"
	Verbose bool   `json:"verbose" yaml:"verbose"` // show messages
}

// MeshData holds data for the reference quadtree mesh
type MeshData struct {
	Nx       int     `json:"nx" yaml:"nx"`             // number of root cells along x
	Ny       int     `json:"ny" yaml:"ny"`             // number of root cells along y
	Lx       float64 `json:"lx" yaml:"lx"`             // domain length along x
	Ly       float64 `json:"ly" yaml:"ly"`             // domain length along y
	MinLevel int     `json:"minlevel" yaml:"minlevel"` // minimum refinement level
	MaxLevel int     `json:"maxlevel" yaml:"maxlevel"` // maximum refinement level
	Periodic bool    `json:"periodic" yaml:"periodic"` // periodic domain
}

// SolverData holds data for the solve collaborator and the step orchestrator
type SolverData struct {

	// solver
	Type   string                 `json:"type" yaml:"type"`     // solver type; e.g. "relax"
	NmaxIt int                    `json:"nmaxit" yaml:"nmaxit"` // number of max iterations
	Atol   float64                `json:"atol" yaml:"atol"`     // absolute tolerance
	Prms   map[string]interface{} `json:"prms" yaml:"prms"`     // solver parameters

	// divergence control
	MaxRetries int     `json:"maxretries" yaml:"maxretries"` // max number of retries with reduced Δt
	DtFac      float64 `json:"dtfac" yaml:"dtfac"`           // Δt multiplier for retries
	DtMin      float64 `json:"dtmin" yaml:"dtmin"`           // minimum Δt

	// adaptivity
	MaxAdapt int `json:"maxadapt" yaml:"maxadapt"` // max number of refine-project-inject cycles per step
}

// NuclData holds data for the evaluators and the event sampler
type NuclData struct {

	// sampling
	Mode       string  `json:"mode" yaml:"mode"`             // "stochastic" or "single"
	Seed       uint64  `json:"seed" yaml:"seed"`             // random seed
	MaxPerStep int     `json:"maxperstep" yaml:"maxperstep"` // max number of events per step. 0 => unlimited
	MaxTotal   int     `json:"maxtotal" yaml:"maxtotal"`     // max number of events. 0 => unlimited
	Tstart     float64 `json:"tstart" yaml:"tstart"`         // start of nucleation window
	Tend       float64 `json:"tend" yaml:"tend"`             // end of nucleation window. 0 => no end
	Nvariants  int     `json:"nvariants" yaml:"nvariants"`   // number of variants

	// single nucleus
	X       []float64 `json:"x" yaml:"x"`             // location
	Time    float64   `json:"time" yaml:"time"`       // earliest time
	Variant int       `json:"variant" yaml:"variant"` // variant

	// exclusion
	ExclRadius float64 `json:"exclradius" yaml:"exclradius"` // exclusion radius
	ExclDecay  float64 `json:"excldecay" yaml:"excldecay"`   // decay time of exclusion zones. 0 => permanent

	// classical nucleation theory
	J0    float64 `json:"j0" yaml:"j0"`       // rate prefactor
	Gamma float64 `json:"gamma" yaml:"gamma"` // interfacial energy
	Kb    float64 `json:"kb" yaml:"kb"`       // Boltzmann constant
	Q     float64 `json:"q" yaml:"q"`         // activation energy of migration
	Temp  float64 `json:"temp" yaml:"temp"`   // temperature if there is no temperature field
	OpMax float64 `json:"opmax" yaml:"opmax"` // order parameter above which samples are already transformed

	// field keys
	CompKey    string   `json:"compkey" yaml:"compkey"`       // composition
	TempKey    string   `json:"tempkey" yaml:"tempkey"`       // temperature
	StrainKeys []string `json:"strainkeys" yaml:"strainkeys"` // strain components
	OpKeys     []string `json:"opkeys" yaml:"opkeys"`         // order parameter of each variant

	// parallelism
	Nworkers int `json:"nworkers" yaml:"nworkers"` // number of goroutines. 0 => all cores
}

// NucleusData holds data for the nucleus injector
type NucleusData struct {
	Radius     float64   `json:"radius" yaml:"radius"`         // nucleus radius
	Amp        float64   `json:"amp" yaml:"amp"`               // order parameter amplitude
	Width      float64   `json:"width" yaml:"width"`           // interface width. negative => radius/4
	Profile    string    `json:"profile" yaml:"profile"`       // "cos" or "tanh"
	Axes       []float64 `json:"axes" yaml:"axes"`             // relative semi-axes
	CompIn     float64   `json:"compin" yaml:"compin"`         // composition inside nucleus
	Conserve   bool      `json:"conserve" yaml:"conserve"`     // conserve solute
	CompFactor float64   `json:"compfactor" yaml:"compfactor"` // compensation shell radius / radius
	MinCells   float64   `json:"mincells" yaml:"mincells"`     // min number of elements across radius
}

// MarkerData holds data for the refinement marker
type MarkerData struct {
	Prefine  float64 `json:"prefine" yaml:"prefine"`   // refinement threshold
	Pcoarsen float64 `json:"pcoarsen" yaml:"pcoarsen"` // coarsening threshold
	Cooldown int     `json:"cooldown" yaml:"cooldown"` // number of steps below pcoarsen before coarsening
	Buffer   float64 `json:"buffer" yaml:"buffer"`     // distance added to nuclei when refining around them
	Recent   int     `json:"recent" yaml:"recent"`     // number of steps an event is considered recent
}

// TimeControl holds data for defining the simulation time stepping
type TimeControl struct {
	Tf    float64 `json:"tf" yaml:"tf"`       // final time
	Dt    float64 `json:"dt" yaml:"dt"`       // time step size
	DtOut float64 `json:"dtout" yaml:"dtout"` // time step size for output
}

// IniField holds data for setting the initial values of a field
type IniField struct {
	Key  string `json:"key" yaml:"key"`   // field key; e.g. "c"
	Func string `json:"func" yaml:"func"` // name of function
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data      Data        `json:"data" yaml:"data"`           // stores global simulation data
	Functions FuncsData   `json:"functions" yaml:"functions"` // stores all functions
	Mesh      MeshData    `json:"mesh" yaml:"mesh"`           // mesh data
	Solver    SolverData  `json:"solver" yaml:"solver"`       // solver data
	Thermo    ThermoData  `json:"thermo" yaml:"thermo"`       // thermodynamic and elastic models
	Nucl      NuclData    `json:"nucl" yaml:"nucl"`           // evaluators and sampler
	Nucleus   NucleusData `json:"nucleus" yaml:"nucleus"`     // injector
	Marker    MarkerData  `json:"marker" yaml:"marker"`       // refinement marker
	Control   TimeControl `json:"control" yaml:"control"`     // time control
	Ini       []*IniField `json:"ini" yaml:"ini"`             // initial fields

	// derived
	DirOut  string `json:"-" yaml:"-"` // directory to save results
	Key     string `json:"-" yaml:"-"` // simulation key; e.g. mysim01.sim => mysim01 or mysim01-alias
	EncType string `json:"-" yaml:"-"` // encoder type
}

// ConfigError signals an invalid configuration
type ConfigError struct {
	Field string // offending option
	Msg   string // description
}

func (o *ConfigError) Error() string {
	return io.Sf("invalid configuration: %s: %s", o.Field, o.Msg)
}

// Simulation //////////////////////////////////////////////////////////////////////////////////////

// ReadSim reads all simulation data from a .sim (JSON) or .yaml file
func ReadSim(simfilepath, alias string, erasePrev, createDirOut bool) (o *Simulation, err error) {

	// read file
	b, err := os.ReadFile(os.ExpandEnv(simfilepath))
	if err != nil {
		return nil, chk.Err("ReadSim: cannot read simulation file %q:\n%v", simfilepath, err)
	}

	// filename key
	fn := filepath.Base(simfilepath)
	fnkey := io.FnKey(fn)
	key := fnkey
	if alias != "" {
		key += "-" + alias
	}

	// decode
	o, err = ParseSim(b, filepath.Ext(fn), key)
	if err != nil {
		return nil, err
	}

	// create directory
	if createDirOut {
		err = os.MkdirAll(o.DirOut, 0777)
		if err != nil {
			return nil, chk.Err("cannot create directory for output results (%s): %v", o.DirOut, err)
		}
	}

	// erase previous simulation results
	if erasePrev {
		io.RemoveAll(io.Sf("%s/%s*", o.DirOut, fnkey))
	}
	return
}

// ParseSim decodes, post-processes and validates simulation data
//  Input:
//   ext -- file extension selecting the format: ".yaml" or ".yml" => YAML; otherwise JSON
//   key -- simulation key
func ParseSim(b []byte, ext, key string) (o *Simulation, err error) {

	// set default values
	o = new(Simulation)
	o.SetDefault()

	// decode
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, chk.Err("ParseSim: cannot unmarshal simulation data:\n%v", err)
	}

	// derived
	o.Key = key
	o.PostProcess()
	err = o.Validate()
	if err != nil {
		return nil, err
	}

	// models
	err = o.Thermo.Alloc()
	if err != nil {
		return nil, err
	}
	for _, ini := range o.Ini {
		if _, err = o.Functions.Get(ini.Func); err != nil {
			return nil, &ConfigError{"ini", err.Error()}
		}
	}
	return
}

// GetInfo returns formatted information
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return
}

// extra settings //////////////////////////////////////////////////////////////////////////////////

// SetDefault sets defaults values
func (o *Simulation) SetDefault() {

	// data
	o.Data.Encoder = "gob"

	// mesh
	o.Mesh.Nx, o.Mesh.Ny = 1, 1
	o.Mesh.Lx, o.Mesh.Ly = 1, 1

	// solver
	o.Solver.Type = "relax"
	o.Solver.NmaxIt = 20
	o.Solver.Atol = 1e-10
	o.Solver.MaxRetries = 5
	o.Solver.DtFac = 0.5
	o.Solver.DtMin = 1e-12
	o.Solver.MaxAdapt = 3

	// thermo
	o.Thermo.SetDefault()

	// nucleation
	o.Nucl.Mode = "stochastic"
	o.Nucl.Seed = 1
	o.Nucl.Nvariants = 1
	o.Nucl.J0 = 1
	o.Nucl.Gamma = 1
	o.Nucl.Kb = 1
	o.Nucl.Temp = 1
	o.Nucl.CompKey = "c"
	o.Nucl.TempKey = "T"
	o.Nucl.StrainKeys = []string{"exx", "eyy", "exy"}
	o.Nucl.OpKeys = []string{"eta"}

	// nucleus
	o.Nucleus.Radius = 1
	o.Nucleus.Amp = 1
	o.Nucleus.Width = -1
	o.Nucleus.Profile = "cos"
	o.Nucleus.CompFactor = 2
	o.Nucleus.MinCells = 2

	// marker
	o.Marker.Prefine = 0.5
	o.Marker.Pcoarsen = 1e-8
	o.Marker.Cooldown = 5
	o.Marker.Recent = 1

	// control
	o.Control.Tf = 1
	o.Control.Dt = 1
}

// PostProcess performs a post-processing of the just read data
func (o *Simulation) PostProcess() {

	// output directory
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/hyrax/" + o.Key
	}
	o.DirOut = os.ExpandEnv(o.DirOut)

	// encoder type
	o.EncType = o.Data.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "gob"
	}

	// nucleus
	if o.Nucleus.Width < 0 {
		o.Nucleus.Width = o.Nucleus.Radius / 4.0
	}

	// time control
	if o.Control.DtOut < o.Control.Dt {
		o.Control.DtOut = o.Control.Dt
	}
}

// Validate checks the consistency of all options
func (o *Simulation) Validate() error {
	type rule struct {
		bad   bool
		field string
		msg   string
	}
	nu, nc := &o.Nucleus, &o.Nucl
	cutoff := nucl.Cutoff(nu.Profile, nu.Radius, nu.Width)
	rules := []rule{
		{o.Mesh.Nx < 1 || o.Mesh.Ny < 1, "mesh.nx", "number of root cells must be positive"},
		{!(o.Mesh.Lx > 0) || !(o.Mesh.Ly > 0), "mesh.lx", "domain lengths must be positive"},
		{o.Mesh.MinLevel < 0, "mesh.minlevel", "minimum level must not be negative"},
		{o.Mesh.MaxLevel < o.Mesh.MinLevel, "mesh.maxlevel", "maximum level must not be smaller than minimum level"},
		{o.Solver.NmaxIt < 1, "solver.nmaxit", "max number of iterations must be positive"},
		{!(o.Solver.Atol > 0), "solver.atol", "tolerance must be positive"},
		{o.Solver.MaxRetries < 0, "solver.maxretries", "max number of retries must not be negative"},
		{!(o.Solver.DtFac > 0 && o.Solver.DtFac < 1), "solver.dtfac", "Δt multiplier must be in (0,1)"},
		{o.Solver.DtMin < 0, "solver.dtmin", "minimum Δt must not be negative"},
		{o.Solver.MaxAdapt < 0, "solver.maxadapt", "max number of adaptivity cycles must not be negative"},
		{nc.Mode != "stochastic" && nc.Mode != "single", "nucl.mode", io.Sf("mode %q is invalid; options are \"stochastic\" and \"single\"", nc.Mode)},
		{nc.Mode == "single" && len(nc.X) != 2, "nucl.x", "single-nucleus mode requires a location with 2 coordinates"},
		{nc.MaxPerStep < 0 || nc.MaxTotal < 0, "nucl.maxperstep", "limits must not be negative"},
		{nc.Tend != 0 && nc.Tend < nc.Tstart, "nucl.tend", "end of nucleation window must not precede its start"},
		{nc.Nvariants < 1 || nc.Nvariants > len(nc.OpKeys), "nucl.nvariants", "number of variants must be in [1, len(opkeys)]"},
		{nc.Variant < 0 || nc.Variant >= len(nc.OpKeys), "nucl.variant", "variant does not correspond to any order parameter"},
		{nc.ExclRadius < 0, "nucl.exclradius", "exclusion radius must not be negative"},
		{nc.ExclDecay < 0, "nucl.excldecay", "exclusion decay must not be negative"},
		{nc.J0 < 0, "nucl.j0", "rate prefactor must not be negative"},
		{!(nc.Gamma > 0), "nucl.gamma", "interfacial energy must be positive"},
		{!(nc.Kb > 0), "nucl.kb", "Boltzmann constant must be positive"},
		{nc.OpMax < 0, "nucl.opmax", "order parameter threshold must not be negative"},
		{nc.Nworkers < 0, "nucl.nworkers", "number of workers must not be negative"},
		{!(nu.Radius > 0), "nucleus.radius", "radius must be positive"},
		{nu.Profile != nucl.ProfileCos && nu.Profile != nucl.ProfileTanh, "nucleus.profile", io.Sf("profile %q is invalid; options are \"cos\" and \"tanh\"", nu.Profile)},
		{nu.MinCells < 0, "nucleus.mincells", "min number of cells must not be negative"},
		{nu.Conserve && !(nu.CompFactor*nu.Radius > cutoff), "nucleus.compfactor", io.Sf("compensation shell is empty; compfactor×radius = %g must exceed the %s profile cutoff %g", nu.CompFactor*nu.Radius, nu.Profile, cutoff)},
		{o.Marker.Prefine < 0 || o.Marker.Prefine > 1, "marker.prefine", "threshold must be in [0,1]"},
		{o.Marker.Pcoarsen < 0 || o.Marker.Pcoarsen > 1, "marker.pcoarsen", "threshold must be in [0,1]"},
		{o.Marker.Prefine > 0 && o.Marker.Pcoarsen > o.Marker.Prefine, "marker.pcoarsen", "coarsening threshold must not exceed refinement threshold"},
		{o.Marker.Cooldown < 0 || o.Marker.Recent < 0 || o.Marker.Buffer < 0, "marker.cooldown", "counters and buffer must not be negative"},
		{!(o.Control.Tf > 0), "control.tf", "final time must be positive"},
		{!(o.Control.Dt > 0), "control.dt", "time step must be positive"},
	}
	for _, ax := range nu.Axes {
		rules = append(rules, rule{!(ax > 0), "nucleus.axes", "semi-axes must be positive"})
	}
	for _, ini := range o.Ini {
		rules = append(rules, rule{ini.Key == "", "ini.key", "field key must be given"})
	}
	for _, r := range rules {
		if r.bad {
			return &ConfigError{r.field, r.msg}
		}
	}
	return nil
}
