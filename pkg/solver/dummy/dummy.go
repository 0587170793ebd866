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

// Package dummy provides an Impl that answers nothing: every operation
// fails. It's the bottom of a stack used for testing the layers above it in
// isolation, and for configurations with no real backend wired in.
package dummy

import (
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/stats"
)

// Solver always fails.
type Solver struct {
	stats *stats.Stats
}

var _ solver.Impl = (*Solver)(nil)

// New returns a Solver reporting every query into st.
func New(st *stats.Stats) *Solver { return &Solver{stats: st} }

// ComputeValidity always fails.
func (s *Solver) ComputeValidity(*expr.Query) (expr.Validity, bool) {
	s.stats.SolverQueries++
	return expr.ValidityUnknown, false
}

// ComputeTruth always fails.
func (s *Solver) ComputeTruth(*expr.Query) (bool, bool) {
	s.stats.SolverQueries++
	return false, false
}

// ComputeValue always fails.
func (s *Solver) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) {
	s.stats.SolverQueries++
	s.stats.QueryCounterexamples++

	return nil, false
}

// ComputeInitialValues always fails.
func (s *Solver) ComputeInitialValues(*expr.Query, []*expr.Array) ([][]byte, bool, bool) {
	s.stats.SolverQueries++
	s.stats.QueryCounterexamples++

	return nil, false, false
}

// GetOperationStatusCode always reports failure.
func (s *Solver) GetOperationStatusCode() solver.RunStatus { return solver.StatusFailure }

// GetConstraintLog has no underlying representation to render.
func (s *Solver) GetConstraintLog(*expr.Query) string { return "" }

// SetCoreSolverTimeout is a no-op: there is no backend to configure.
func (s *Solver) SetCoreSolverTimeout(time.Duration) {}
