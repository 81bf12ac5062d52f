// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/anilkunwar/hyrax/inp"
	"github.com/cpmech/gosl/io"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a simulation file",
	Long:  `Reads and validates a simulation file without running it.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sim, err := inp.ReadSim(args[0], "", false, false)
		if err != nil {
			io.PfRed("Validation failed:\n%v\n", err)
			os.Exit(1)
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			sim.GetInfo(os.Stdout)
		}
		io.PfGreen("Simulation %q is valid\n", sim.Key)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
