// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/anilkunwar/hyrax/ckp"
	"github.com/anilkunwar/hyrax/fem"
	"github.com/anilkunwar/hyrax/out"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Run a simulation",
	Long: `Reads a .sim (JSON) or .yaml simulation file and advances it until the final time,
saving checkpoints at output times.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSimulation(cmd, args[0]); err != nil {
			io.PfRed("Run failed:\n%v\n", err)
			var div *fem.DivergenceError
			if errors.As(err, &div) {
				os.Exit(2)
			}
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().String("resume", "", "key of checkpoint to resume from")
	runCmd.Flags().String("alias", "", "alias appended to simulation key")
	runCmd.Flags().String("metrics", "", "address to serve prometheus metrics; e.g. :2112")
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, fnamepath string) (err error) {

	// flags
	verbose, _ := cmd.Flags().GetBool("verbose")
	resume, _ := cmd.Flags().GetString("resume")
	alias, _ := cmd.Flags().GetString("alias")
	addr, _ := cmd.Flags().GetString("metrics")

	// message
	if verbose {
		io.PfWhite("\nHyrax -- phase-field simulations with nucleation events\n")
		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"simulation alias", "alias", alias,
			"resume from checkpoint", "resume", resume,
			"metrics address", "metrics", addr,
		))
	}

	// allocate
	erasePrev := resume == ""
	analysis, err := fem.NewMain(fnamepath, alias, erasePrev, true, false, verbose)
	if err != nil {
		return
	}
	store, err := openStore(cmd, analysis.Sim.DirOut, analysis.Sim.EncType)
	if err != nil {
		return
	}
	if r, ok := store.(*ckp.RedisStore); ok {
		defer r.Close()
	}
	analysis.Store = store

	// metrics
	reg := prometheus.NewRegistry()
	analysis.Metrics = out.NewMetrics(reg)
	if addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if e := srv.ListenAndServe(); e != nil && e != http.ErrServerClosed {
				io.PfRed("metrics server failed: %v\n", e)
			}
		}()
		defer srv.Close()
	}

	// resume
	if resume != "" {
		cp, e := store.Load(context.Background(), resume)
		if e != nil {
			return chk.Err("cannot load checkpoint %q:\n%v", resume, e)
		}
		err = analysis.Resume(cp)
		if err != nil {
			return
		}
	}

	// run
	err = analysis.Run()
	if err != nil {
		return
	}
	if verbose {
		io.Pf("> %d steps, %d nuclei (%d applied), %d retries\n", analysis.Summary.Nsteps, analysis.Summary.Nevents, analysis.Summary.Napplied, analysis.Summary.Retries)
	}
	return
}
