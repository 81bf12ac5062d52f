// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/google/uuid"
)

// Summary records summary of outputs
type Summary struct {
	RunId    string    // identifier of run
	OutTimes []float64 // [nOutTimes] output times
	CkpKeys  []string  // [nOutTimes] keys of checkpoints saved @ output times; empty if there is no store
	Nsteps   int       // number of converged steps
	Nevents  int       // number of accepted nucleation events
	Napplied int       // number of injected nuclei
	Retries  int       // total number of solve retries
	Resumed  bool      // run was resumed from a checkpoint
}

// NewSummary returns a new summary with a new run identifier
func NewSummary() *Summary {
	return &Summary{RunId: uuid.NewString()}
}

// Save saves summary
func (o *Summary) Save(dirout, fnkey, enctype string) (err error) {
	var buf bytes.Buffer
	enc := ckp.GetEncoder(&buf, enctype)
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary:\n%v", err)
	}
	err = os.MkdirAll(dirout, 0777)
	if err != nil {
		return chk.Err("cannot create directory for summary (%s): %v", dirout, err)
	}
	return os.WriteFile(summaryPath(dirout, fnkey), buf.Bytes(), 0644)
}

// Read reads summary back
func (o *Summary) Read(dirout, fnkey, enctype string) (err error) {
	fn := summaryPath(dirout, fnkey)
	b, err := os.ReadFile(os.ExpandEnv(fn))
	if err != nil {
		return chk.Err("cannot read summary file %q:\n%v", fn, err)
	}
	dec := ckp.GetDecoder(bytes.NewReader(b), enctype)
	err = dec.Decode(o)
	if err != nil {
		return chk.Err("cannot decode summary:\n%v", err)
	}
	return
}

// summaryPath returns the path of summary file
func summaryPath(dirout, fnkey string) string {
	return io.Sf("%s/%s.sum", dirout, fnkey)
}
