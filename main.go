// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// hyrax runs phase-field simulations with stochastic nucleation on adaptive meshes
package main

import (
	"os"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hyrax",
	Short: "Hyrax runs phase-field simulations with nucleation events",
	Long: `Hyrax advances phase-field simulations on adaptive quadtree meshes, samples
nucleation events from classical nucleation theory and injects nuclei into the fields.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		io.PfRed("%v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("ckpdir", "", "directory with checkpoints; default = <dirout>/ckp")
	rootCmd.PersistentFlags().String("redis", "", "address of redis server storing checkpoints; e.g. localhost:6379")
	rootCmd.PersistentFlags().Bool("verbose", false, "show messages")
}

func main() {
	Execute()
}

// openStore returns the checkpoints store selected by the persistent flags
func openStore(cmd *cobra.Command, dirout, enctype string) (store ckp.Store, err error) {
	addr, _ := cmd.Flags().GetString("redis")
	if addr != "" {
		return ckp.NewRedisStore(addr, "", 0), nil
	}
	dir, _ := cmd.Flags().GetString("ckpdir")
	if dir == "" {
		dir = dirout + "/ckp"
	}
	return ckp.NewFileStore(dir, enctype)
}
