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
package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solverstack/core/pkg/core"
	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver/stats"
	"github.com/solverstack/core/pkg/util"
)

// queryCmd drives the facade against a toy fixture: it is not a parser for
// the expression language (that is the engine's job, out of this core's
// scope), just enough of a reader to demonstrate the stack end to end.
//
// Fixture grammar, one statement per line:
//
//	array <name> <size>            declare a symbolic byte array
//	assert <name>[<index>] == <v>  add a constraint read(name,index) == v
//	query <name>[<index>] == <v>   decide validity of that equality
var queryCmd = &cobra.Command{
	Use:   "query <fixture>",
	Short: "Run a toy fixture file through the solver stack",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runQuery(cmd, args[0])
	},
}

func init() {
	queryCmd.Flags().Bool("perf", false, "log memory/time usage for this run")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	defer f.Close()

	var perf *util.PerfStats
	if GetFlag(cmd, "perf") {
		perf = util.NewPerfStats()
	}

	facade, st := buildFacade(cmd)

	arrays := make(map[string]*expr.Array)

	var constraints expr.ConstraintSet

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		fields := strings.Fields(line)

		switch fields[0] {
		case "array":
			name := fields[1]

			size, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}

			arrays[name] = expr.NewArray(name, uint(size))
		case "assert":
			constraints = append(constraints, parseEquality(arrays, fields[1:]))
		case "query":
			e := parseEquality(arrays, fields[1:])

			meta := &core.Metadata{}

			validity, ok := facade.Evaluate(constraints, constraints, e, meta)
			if !ok {
				fmt.Println("query failed")
				os.Exit(1)
			}

			fmt.Printf("%s (%s)\n", validity, meta.QueryCost)
		default:
			fmt.Printf("unknown fixture statement %q\n", fields[0])
			os.Exit(2)
		}
	}

	if statsPath := GetString(cmd, "stats-json"); statsPath != "" {
		dumpStats(statsPath, st)
	}

	if perf != nil {
		perf.Log("query")
	}
}

func dumpStats(path string, st *stats.Stats) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
}

// parseEquality reads "<name>[<index>] == <v>" already split on whitespace
// as ["<name>[<index>]", "==", "<v>"].
func parseEquality(arrays map[string]*expr.Array, fields []string) expr.Expr {
	if len(fields) != 3 || fields[1] != "==" {
		fmt.Printf("malformed equality %q\n", strings.Join(fields, " "))
		os.Exit(2)
	}

	name, index := splitIndex(fields[0])

	array, ok := arrays[name]
	if !ok {
		fmt.Printf("undeclared array %q\n", name)
		os.Exit(2)
	}

	idx, err := strconv.ParseUint(index, 10, 64)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	v, err := strconv.ParseUint(fields[2], 10, 8)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	read := expr.NewRead(expr.UpdateList{Root: array}, expr.NewConstant(idx, 32))

	return expr.CreateEq(read, expr.NewConstant(v, 8))
}

func splitIndex(s string) (name, index string) {
	open := strings.IndexByte(s, '[')
	close := strings.IndexByte(s, ']')

	if open < 0 || close < 0 || close < open {
		fmt.Printf("malformed array reference %q\n", s)
		os.Exit(2)
	}

	return s[:open], s[open+1 : close]
}
