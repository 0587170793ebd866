// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd wires the solver stack into a cobra CLI: pool sizing and
// dispatch tuning, debug dump/replay/validation flags, and a query
// subcommand that drives the facade against a toy fixture.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/solverstack/core/pkg/core"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/adapter"
	"github.com/solverstack/core/pkg/solver/adapter/membackend"
	"github.com/solverstack/core/pkg/solver/cache"
	"github.com/solverstack/core/pkg/solver/independent"
	"github.com/solverstack/core/pkg/solver/pool"
	"github.com/solverstack/core/pkg/solver/smtlog"
	"github.com/solverstack/core/pkg/solver/stats"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

var rootCmd = &cobra.Command{
	Use:   "solverstack",
	Short: "A solver-orchestration core for a symbolic-execution engine.",
	Long:  "Layers a query-result cache, an independent-constraint partitioner, an incremental solver pool, and optional validation/logging in front of an external decision procedure.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("solverstack ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildFacade wires up the full stack — cache -> independent -> pool ->
// adapter(s) over an in-memory example backend, with each adapter's model
// self-check switched by debug-z3-validate-models and an optional SMT-LIBv2
// dump wrapped around the cache — per the options table in spec.md §6. It also returns the shared Stats the cache layer
// reports into, so a caller can dump final counters.
func buildFacade(cmd *cobra.Command) (*core.Facade, *stats.Stats) {
	var (
		poolSize    = GetUint(cmd, "pool-size")
		poolWarn    = GetFlag(cmd, "pool-warn")
		poolPercent = GetFloat64(cmd, "pool-percent")
		incTimeout  = GetUint(cmd, "inc-timeout")
		dumpPath    = GetString(cmd, "debug-z3-dump-queries")
		validate    = GetFlag(cmd, "debug-z3-validate-models")
		verbosity   = GetUint(cmd, "debug-z3-verbosity")
		tactic      = GetString(cmd, "z3-custom-tactic")
	)

	if tactic != "none" && tactic != "array_ackermannize_to_qfbv" {
		fmt.Printf("unknown z3-custom-tactic %q\n", tactic)
		os.Exit(2)
	}

	if verbosity > 0 {
		log.SetLevel(log.DebugLevel)
	}

	if poolSize == 0 {
		fmt.Println("pool-size must be at least 1")
		os.Exit(2)
	}

	members := make([]pool.Member, poolSize)
	for i := range members {
		members[i] = adapter.New(membackend.New(), adapter.ModeIncremental, validate)
	}

	poolImpl := pool.New(members, poolPercent, poolWarn)
	st := stats.New()

	var impl solver.Impl = poolImpl

	impl = independent.New(impl)
	impl = cache.New(impl, st)

	if dumpPath != "" {
		f, err := os.Create(dumpPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		impl = smtlog.New(impl, f, nil)
	}

	s := solver.New(impl)
	s.Impl.SetCoreSolverTimeout(time.Duration(incTimeout) * time.Millisecond)

	return core.New(s, nil), st
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "accepted but has no effect (see debug-z3-verbosity)")
	// Pool
	rootCmd.PersistentFlags().Uint("pool-size", 5, "number of adapter instances in the solver pool")
	rootCmd.PersistentFlags().Bool("pool-warn", false, "emit a warning naming the chosen adapter per query")
	rootCmd.PersistentFlags().Float64("pool-percent", 0.05, "leeway percent for prefix-fraction ties during dispatch")
	// Timeouts
	rootCmd.PersistentFlags().Uint("inc-timeout", 0, "combined-solver secondary timeout in ms (0=off)")
	// Debug / diagnostics
	rootCmd.PersistentFlags().String("debug-z3-log-api-interaction", "", "path for low-level SMT API trace (accepted; no trace is written)")
	rootCmd.PersistentFlags().String("debug-z3-dump-queries", "", "path for SMT-LIBv2 query dump")
	rootCmd.PersistentFlags().Bool("debug-z3-validate-models", false, "re-evaluate model against constraints and abort on mismatch")
	rootCmd.PersistentFlags().Uint("debug-z3-verbosity", 0, "external procedure verbosity (0=silent)")
	rootCmd.PersistentFlags().String("z3-custom-tactic", "none", "\"none\" or \"array_ackermannize_to_qfbv\"")
	rootCmd.PersistentFlags().String("stats-json", "", "path to write final query-cache counters as JSON")
}
