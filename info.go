// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"

	"github.com/anilkunwar/hyrax/inp"
	"github.com/anilkunwar/hyrax/out"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show nuclei and fields of a saved checkpoint",
	Long: `Loads a checkpoint of the simulation in FILE and prints the nuclei table and the
range of each field. The latest checkpoint is used unless --key is given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInfo(cmd, args[0]); err != nil {
			io.PfRed("Info failed:\n%v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	infoCmd.Flags().String("key", "", "checkpoint key; default = simulation key")
	infoCmd.Flags().Bool("list", false, "list available checkpoints")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, fnamepath string) (err error) {
	sim, err := inp.ReadSim(fnamepath, "", false, false)
	if err != nil {
		return
	}
	store, err := openStore(cmd, sim.DirOut, sim.EncType)
	if err != nil {
		return
	}
	ctx := context.Background()

	// list
	if list, _ := cmd.Flags().GetBool("list"); list {
		keys, e := store.List(ctx)
		if e != nil {
			return e
		}
		for _, k := range keys {
			io.Pf("%s\n", k)
		}
		return
	}

	// results
	key, _ := cmd.Flags().GetString("key")
	if key == "" {
		key = sim.Key
	}
	res, err := out.Load(ctx, store, key)
	if err != nil {
		return
	}
	io.Pf("checkpoint %q: step %d, t = %g, run %s\n\n", key, res.Cp.Step, res.Cp.Time, res.Cp.RunId)
	io.Pf("%s\n", res.Nuclei().Table())
	for _, k := range res.Msh.Keys {
		vmin, vmax, avg, e := res.Range(k)
		if e != nil {
			return e
		}
		io.Pf("%8s: min = %13.6e  max = %13.6e  avg = %13.6e\n", k, vmin, vmax, avg)
	}
	return
}
