// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ckp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// ckpExt is the extension of checkpoint files
const ckpExt = ".ckp"

// FileStore saves checkpoints as files in a directory
type FileStore struct {
	Dir     string // directory
	EncType string // encoder type: "gob" or "json"
}

// NewFileStore returns a new file store creating the directory if necessary
func NewFileStore(dir, enctype string) (o *FileStore, err error) {
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return nil, chk.Err("cannot create directory for checkpoints (%s): %v", dir, err)
	}
	if enctype != "json" {
		enctype = "gob"
	}
	return &FileStore{Dir: dir, EncType: enctype}, nil
}

// Save saves checkpoint. The file is replaced atomically
func (o *FileStore) Save(ctx context.Context, key string, cp *Checkpoint) (err error) {
	if err = checkKey(key); err != nil {
		return
	}
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.EncType)
	err = enc.Encode(cp)
	if err != nil {
		return chk.Err("cannot encode checkpoint %q:\n%v", key, err)
	}
	tmp := o.path(key) + ".tmp"
	err = os.WriteFile(tmp, buf.Bytes(), 0644)
	if err != nil {
		return chk.Err("cannot write checkpoint %q:\n%v", key, err)
	}
	return os.Rename(tmp, o.path(key))
}

// Load loads checkpoint
func (o *FileStore) Load(ctx context.Context, key string) (cp *Checkpoint, err error) {
	if err = checkKey(key); err != nil {
		return
	}
	b, err := os.ReadFile(o.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, chk.Err("cannot read checkpoint %q:\n%v", key, err)
	}
	cp = new(Checkpoint)
	dec := GetDecoder(bytes.NewReader(b), o.EncType)
	err = dec.Decode(cp)
	if err != nil {
		return nil, chk.Err("cannot decode checkpoint %q:\n%v", key, err)
	}
	return
}

// List lists the keys of all checkpoints in directory
func (o *FileStore) List(ctx context.Context) (keys []string, err error) {
	entries, err := os.ReadDir(o.Dir)
	if err != nil {
		return nil, chk.Err("cannot list checkpoints in %q:\n%v", o.Dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ckpExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ckpExt))
	}
	sort.Strings(keys)
	return
}

// Delete deletes checkpoint
func (o *FileStore) Delete(ctx context.Context, key string) (err error) {
	if err = checkKey(key); err != nil {
		return
	}
	err = os.Remove(o.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

func (o *FileStore) path(key string) string {
	return filepath.Join(o.Dir, key+ckpExt)
}

// checkKey checks that key can be used as a file name
func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return chk.Err("checkpoint key %q is invalid", key)
	}
	return nil
}

// String returns the description of store
func (o *FileStore) String() string {
	return io.Sf("file store @ %s (%s)", o.Dir, o.EncType)
}
