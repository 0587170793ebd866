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

// Package smtlog wraps a solver.Impl with an SMT-LIBv2 query dump, and
// optionally a replay-comparison mode for regression testing against a
// known-good trace.
package smtlog

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
)

// Solver wraps next, writing each query's SMT-LIBv2 block to dump (if
// configured) and comparing it against replay (if configured).
type Solver struct {
	next   solver.Impl
	dump   io.Writer
	replay *bufio.Scanner
}

var _ solver.Impl = (*Solver)(nil)

// New wraps next. dump may be nil to disable dumping; replay may be nil to
// disable replay-comparison.
func New(next solver.Impl, dump io.Writer, replay io.Reader) *Solver {
	s := &Solver{next: next, dump: dump}

	if replay != nil {
		s.replay = bufio.NewScanner(replay)
	}

	return s
}

// render produces the exact dump block format: "; start Z3 query", the
// layer's stringified state, "(check-sat)", "(reset)", "; end Z3 query",
// then a blank line.
func render(state string) string {
	var b strings.Builder

	b.WriteString("; start Z3 query\n")
	b.WriteString(state)
	b.WriteString("(check-sat)\n")
	b.WriteString("(reset)\n")
	b.WriteString("; end Z3 query\n\n")

	return b.String()
}

// significant drops lines that are empty or start with ';', for comparing
// the produced and expected text ignoring cosmetic differences.
func significant(text string) []string {
	var lines []string

	for _, l := range strings.Split(text, "\n") {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, ";") {
			continue
		}

		lines = append(lines, t)
	}

	return lines
}

func (s *Solver) record(query *expr.Query) {
	block := render(s.next.GetConstraintLog(query))

	if s.dump != nil {
		fmt.Fprint(s.dump, block)
	}

	if s.replay != nil {
		s.checkReplay(block)
	}
}

// checkReplay compares block's significant lines against the next
// unconsumed block's worth of significant lines in the replay file,
// failing fatally on the first mismatch, per spec §6.
func (s *Solver) checkReplay(block string) {
	produced := significant(block)

	for _, want := range produced {
		if !s.replay.Scan() {
			log.Fatalf("smtlog: replay exhausted, expected %q", want)
		}

		got := strings.TrimSpace(s.replay.Text())
		for got == "" || strings.HasPrefix(got, ";") {
			if !s.replay.Scan() {
				log.Fatalf("smtlog: replay exhausted, expected %q", want)
			}

			got = strings.TrimSpace(s.replay.Text())
		}

		if got != want {
			log.Fatalf("smtlog: replay mismatch: produced %q, expected %q", want, got)
		}
	}
}

// ComputeValidity is not served here; see every other layer's identical
// rationale.
func (s *Solver) ComputeValidity(*expr.Query) (expr.Validity, bool) {
	return expr.ValidityUnknown, false
}

// ComputeTruth delegates, then records the query.
func (s *Solver) ComputeTruth(query *expr.Query) (bool, bool) {
	result, ok := s.next.ComputeTruth(query)
	s.record(query)

	return result, ok
}

// ComputeValue delegates, then records the query.
func (s *Solver) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	result, ok := s.next.ComputeValue(query)
	s.record(query)

	return result, ok
}

// ComputeInitialValues delegates, then records the query.
func (s *Solver) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	values, hasSolution, ok := s.next.ComputeInitialValues(query, objects)
	s.record(query)

	return values, hasSolution, ok
}

// GetOperationStatusCode delegates to next.
func (s *Solver) GetOperationStatusCode() solver.RunStatus { return s.next.GetOperationStatusCode() }

// GetConstraintLog delegates to next.
func (s *Solver) GetConstraintLog(query *expr.Query) string { return s.next.GetConstraintLog(query) }

// SetCoreSolverTimeout delegates to next.
func (s *Solver) SetCoreSolverTimeout(timeout time.Duration) { s.next.SetCoreSolverTimeout(timeout) }
