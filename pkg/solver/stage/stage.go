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

// Package stage implements a two-stage solver: a cheap, incomplete Primary
// is consulted first, and only a non-answer ("Unknown") falls through to a
// complete Secondary.
package stage

import (
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
)

// Primary is an incomplete layer: it may decline to answer (reporting
// expr.PartialUnknown, or false for Value/InitialValues) rather than reach
// for an expensive backend, in which case Solver falls through to Secondary.
type Primary interface {
	// ComputeTruth returns expr.PartialUnknown to decline; any other value
	// is treated as authoritative.
	ComputeTruth(query *expr.Query) expr.PartialValidity
	// ComputeValue reports whether it could resolve a witness value.
	ComputeValue(query *expr.Query) (result *expr.ConstantExpr, resolved bool)
	// ComputeInitialValues reports whether it could resolve an assignment.
	ComputeInitialValues(query *expr.Query, objects []*expr.Array) (values [][]byte, hasSolution bool, resolved bool)
}

// Solver is the two-stage layer.
type Solver struct {
	primary   Primary
	secondary solver.Impl
}

var _ solver.Impl = (*Solver)(nil)

// New wraps secondary with a cheap Primary consulted first.
func New(primary Primary, secondary solver.Impl) *Solver {
	return &Solver{primary: primary, secondary: secondary}
}

// ComputeValidity is not served by the primary stage: like the cache and
// partitioning layers, it is only ever reached by decomposing a Validity
// question into two ComputeTruth calls above this layer.
func (s *Solver) ComputeValidity(query *expr.Query) (expr.Validity, bool) {
	return expr.ValidityUnknown, false
}

// ComputeTruth consults the primary first; a decisive answer (anything but
// PartialUnknown) is authoritative, otherwise the secondary is asked.
func (s *Solver) ComputeTruth(query *expr.Query) (bool, bool) {
	if pv := s.primary.ComputeTruth(query); pv != expr.PartialUnknown {
		return pv == expr.MustBeTrue, true
	}

	return s.secondary.ComputeTruth(query)
}

// ComputeValue consults the primary first, falling through on a non-answer.
func (s *Solver) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	if result, resolved := s.primary.ComputeValue(query); resolved {
		return result, true
	}

	return s.secondary.ComputeValue(query)
}

// ComputeInitialValues consults the primary first, falling through on a
// non-answer.
func (s *Solver) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	if values, hasSolution, resolved := s.primary.ComputeInitialValues(query, objects); resolved {
		return values, hasSolution, true
	}

	return s.secondary.ComputeInitialValues(query, objects)
}

// GetOperationStatusCode reports the secondary's status: the primary has no
// notion of backend failure modes.
func (s *Solver) GetOperationStatusCode() solver.RunStatus {
	return s.secondary.GetOperationStatusCode()
}

// GetConstraintLog delegates to the secondary.
func (s *Solver) GetConstraintLog(query *expr.Query) string {
	return s.secondary.GetConstraintLog(query)
}

// SetCoreSolverTimeout configures the secondary; the primary is assumed
// cheap enough not to need one.
func (s *Solver) SetCoreSolverTimeout(timeout time.Duration) {
	s.secondary.SetCoreSolverTimeout(timeout)
}
