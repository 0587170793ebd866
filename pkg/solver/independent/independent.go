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

// Package independent implements the constraint-partitioning layer: before
// delegating, it shrinks a query down to the minimal sub-query sufficient to
// decide it, using pkg/expr's independent-element-set analysis, then stitches
// a full witness back together from the reduced solve.
package independent

import (
	"fmt"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
)

// Solver is the constraint-partitioning layer.
type Solver struct {
	next solver.Impl
}

var _ solver.Impl = (*Solver)(nil)

// New wraps next with constraint-set partitioning.
func New(next solver.Impl) *Solver { return &Solver{next: next} }

// reduce shrinks query to the sub-query relevant to its own expression,
// returning the independent-element closure alongside it so callers needing
// the referenced-array set (computeInitialValues) don't recompute it.
func reduce(query *expr.Query) (*expr.IndependentElementSet, expr.Query) {
	closure, relevant := expr.GetIndependentConstraints(*query)

	return closure, expr.Query{Constraints: relevant, Unsimplified: relevant, Expr: query.Expr}
}

// ComputeValidity delegates to next against the reduced sub-query.
func (s *Solver) ComputeValidity(query *expr.Query) (expr.Validity, bool) {
	_, sub := reduce(query)
	return s.next.ComputeValidity(&sub)
}

// ComputeTruth delegates to next against the reduced sub-query.
func (s *Solver) ComputeTruth(query *expr.Query) (bool, bool) {
	_, sub := reduce(query)
	return s.next.ComputeTruth(&sub)
}

// ComputeValue delegates to next against the reduced sub-query.
func (s *Solver) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	_, sub := reduce(query)
	return s.next.ComputeValue(&sub)
}

// ComputeInitialValues finds the independent closure seeded from objects
// themselves (not query.Expr, which the facade probes with as the
// placeholder expr.False() for a pure satisfiability check), solves that
// closure against only the arrays and constraints it references, then
// stitches the result into a full assignment over objects: arrays outside
// the closure default to all-zero, since their value cannot affect the
// satisfiability of query.Constraints. Before returning, the stitched
// assignment is checked against every original constraint; a mismatch
// indicates a broken partitioning invariant.
func (s *Solver) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	closure, relevant := expr.GetIndependentConstraintsForArrays(query.Constraints, objects)
	referenced := closure.ReferencedArrays()
	sub := expr.Query{Constraints: relevant, Unsimplified: relevant, Expr: query.Expr}

	subValues, hasSolution, success := s.next.ComputeInitialValues(&sub, referenced)
	if !success {
		return nil, false, false
	}

	if !hasSolution {
		return nil, false, true
	}

	// Zero(objects) supplies the default for everything outside the
	// closure; the solved referenced values must win where the two
	// overlap, so they go second — Merge's later argument takes priority
	// on a key collision.
	assignment := expr.Zero(objects).Merge(expr.NewAssignment(referenced, subValues))

	for _, c := range query.Constraints {
		if !assignment.Evaluate(c).IsTrue() {
			panic(fmt.Sprintf("independent: stitched assignment violates constraint %s", c))
		}
	}

	values := make([][]byte, len(objects))

	for i, a := range objects {
		b, _ := assignment.Bytes(a)
		values[i] = b
	}

	return values, true, true
}

// GetOperationStatusCode delegates to next: this layer never itself fails.
func (s *Solver) GetOperationStatusCode() solver.RunStatus { return s.next.GetOperationStatusCode() }

// GetConstraintLog delegates to next.
func (s *Solver) GetConstraintLog(query *expr.Query) string { return s.next.GetConstraintLog(query) }

// SetCoreSolverTimeout delegates to next.
func (s *Solver) SetCoreSolverTimeout(timeout time.Duration) { s.next.SetCoreSolverTimeout(timeout) }
