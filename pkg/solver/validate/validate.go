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

// Package validate implements a cross-checking layer: every answer from a
// primary Impl is re-derived from a second, independent oracle Impl, and a
// disagreement is treated as an unrecoverable defect in one of the two,
// not as an ordinary solver failure.
package validate

import (
	"fmt"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
)

// Solver cross-checks a primary Impl against an oracle Impl.
type Solver struct {
	primary solver.Impl
	oracle  solver.Impl
}

var _ solver.Impl = (*Solver)(nil)

// New wraps primary with cross-checking against oracle.
func New(primary, oracle solver.Impl) *Solver {
	return &Solver{primary: primary, oracle: oracle}
}

// ComputeValidity asks both layers and panics on disagreement.
func (s *Solver) ComputeValidity(query *expr.Query) (expr.Validity, bool) {
	result, ok := s.primary.ComputeValidity(query)
	if !ok {
		return result, false
	}

	answer, ok := s.oracle.ComputeValidity(query)
	if !ok {
		return result, false
	}

	if result != answer {
		panic(fmt.Sprintf("validate: disagreement on ComputeValidity: primary=%s oracle=%s", result, answer))
	}

	return result, true
}

// ComputeTruth asks both layers and panics on disagreement.
func (s *Solver) ComputeTruth(query *expr.Query) (bool, bool) {
	isValid, ok := s.primary.ComputeTruth(query)
	if !ok {
		return isValid, false
	}

	answer, ok := s.oracle.ComputeTruth(query)
	if !ok {
		return isValid, false
	}

	if isValid != answer {
		panic(fmt.Sprintf("validate: disagreement on ComputeTruth: primary=%v oracle=%v", isValid, answer))
	}

	return isValid, true
}

// ComputeValue takes the primary's witness value and has the oracle confirm
// that some assignment of query.Constraints makes query.Expr equal to it,
// i.e. that query.Expr != witness is not valid.
func (s *Solver) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	result, ok := s.primary.ComputeValue(query)
	if !ok {
		return nil, false
	}

	refute := query.WithExpr(expr.CreateNot(expr.CreateEq(query.Expr, result)))

	mustDiffer, ok := s.oracle.ComputeTruth(&refute)
	if !ok {
		return result, false
	}

	if mustDiffer {
		panic(fmt.Sprintf("validate: oracle rejects primary's ComputeValue witness %s", result))
	}

	return result, true
}

// ComputeInitialValues takes the primary's witness assignment, confirms the
// oracle agrees a solution exists, and re-checks the returned bytes satisfy
// every constraint directly.
func (s *Solver) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	values, hasSolution, ok := s.primary.ComputeInitialValues(query, objects)
	if !ok {
		return nil, false, false
	}

	// A model for query.Constraints exists iff Constraints does not imply
	// False; probe that directly rather than reusing query.Expr, which
	// computeInitialValues otherwise ignores.
	probe := expr.Query{Constraints: query.Constraints, Unsimplified: query.Unsimplified, Expr: expr.False()}

	impliesFalse, ok := s.oracle.ComputeTruth(&probe)
	if !ok {
		return values, hasSolution, false
	}

	oracleHasSolution := !impliesFalse

	if hasSolution != oracleHasSolution {
		panic(fmt.Sprintf("validate: disagreement on hasSolution: primary=%v oracle=%v", hasSolution, oracleHasSolution))
	}

	if !hasSolution {
		return nil, false, true
	}

	assignment := expr.NewAssignment(objects, values)

	for _, c := range query.Constraints {
		if !assignment.Evaluate(c).IsTrue() {
			panic(fmt.Sprintf("validate: primary's witness violates constraint %s", c))
		}
	}

	return values, true, true
}

// GetOperationStatusCode reports the primary's status.
func (s *Solver) GetOperationStatusCode() solver.RunStatus {
	return s.primary.GetOperationStatusCode()
}

// GetConstraintLog delegates to the primary.
func (s *Solver) GetConstraintLog(query *expr.Query) string {
	return s.primary.GetConstraintLog(query)
}

// SetCoreSolverTimeout configures both the primary and the oracle.
func (s *Solver) SetCoreSolverTimeout(timeout time.Duration) {
	s.primary.SetCoreSolverTimeout(timeout)
	s.oracle.SetCoreSolverTimeout(timeout)
}
