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

// Package solver defines the shared "solver-implementation" contract every
// layer of the stack (cache, independent, pool, adapter, validate, stage,
// dummy, smtlog) satisfies, plus the invariant-enforcing Solver wrapper
// every one of them is built through. This mirrors the split between
// klee::Solver (the invariant-enforcing façade) and klee::SolverImpl (the
// polymorphic capability record) in the system this core is modelled on.
package solver

import (
	"time"

	"github.com/solverstack/core/pkg/expr"
)

// RunStatus reports the outcome of the most recent operation an Impl
// performed, independent of any particular query's result.
type RunStatus uint8

// The run-status values every Impl can report.
const (
	StatusSuccessSolvable RunStatus = iota
	StatusSuccessUnsolvable
	StatusFailure
	StatusTimeout
	StatusInterrupted
	StatusUnknown
)

func (s RunStatus) String() string {
	switch s {
	case StatusSuccessSolvable:
		return "SuccessSolvable"
	case StatusSuccessUnsolvable:
		return "SuccessUnsolvable"
	case StatusFailure:
		return "Failure"
	case StatusTimeout:
		return "Timeout"
	case StatusInterrupted:
		return "Interrupted"
	default:
		return "Unknown"
	}
}

// Impl is the capability record every layer of the stack implements. Every
// method returns a bool "success" exactly like the engine-facing API: a
// transport failure, timeout, or interrupt surfaces as false without an
// error value, and without poisoning the layer's own state (spec.md §7).
type Impl interface {
	// ComputeValidity decides the full three-valued Validity of query.Expr
	// under query.Constraints.
	ComputeValidity(query *expr.Query) (result expr.Validity, success bool)
	// ComputeTruth decides whether query.Expr is valid (true) or not.
	ComputeTruth(query *expr.Query) (isValid bool, success bool)
	// ComputeValue returns a constant equal to query.Expr under some
	// satisfying assignment of query.Constraints.
	ComputeValue(query *expr.Query) (result *expr.ConstantExpr, success bool)
	// ComputeInitialValues returns a per-array byte assignment satisfying
	// query.Constraints, restricted to objects, plus whether one exists.
	ComputeInitialValues(query *expr.Query, objects []*expr.Array) (values [][]byte, hasSolution bool, success bool)
	// GetOperationStatusCode reports the outcome of the most recent call.
	GetOperationStatusCode() RunStatus
	// GetConstraintLog renders query in this layer's native textual form
	// (e.g. SMT-LIBv2), for diagnostics.
	GetConstraintLog(query *expr.Query) string
	// SetCoreSolverTimeout configures the per-check timeout; 0 disables it.
	SetCoreSolverTimeout(timeout time.Duration)
}

// Solver wraps an Impl and applies the Constant fast path that lets every
// Impl skip handling a literal formula itself. It does not check the width
// of query expressions.
type Solver struct {
	Impl Impl
}

// New wraps impl in the invariant-enforcing façade.
func New(impl Impl) *Solver { return &Solver{Impl: impl} }

// Evaluate decides the three-valued Validity of query.Expr. No layer in the
// stack actually implements ComputeValidity directly (every concrete
// backend leaves it unimplemented, deciding Validity is always expressed in
// terms of truth on a formula and its negation instead), so this composes
// MustBeTrue/MustBeFalse rather than calling down through Impl.
func (s *Solver) Evaluate(query expr.Query) (expr.Validity, bool) {
	if ce, ok := expr.AsConstant(query.Expr); ok {
		if ce.IsTrue() {
			return expr.ValidityTrue, true
		}

		return expr.ValidityFalse, true
	}

	isTrue, ok := s.MustBeTrue(query)
	if !ok {
		return expr.ValidityUnknown, false
	}

	if isTrue {
		return expr.ValidityTrue, true
	}

	isFalse, ok := s.MustBeFalse(query)
	if !ok {
		return expr.ValidityUnknown, false
	}

	if isFalse {
		return expr.ValidityFalse, true
	}

	return expr.ValidityUnknown, true
}

// MustBeTrue reports whether query.Expr is guaranteed true under
// query.Constraints.
func (s *Solver) MustBeTrue(query expr.Query) (bool, bool) {
	if ce, ok := expr.AsConstant(query.Expr); ok {
		return ce.IsTrue(), true
	}

	return s.Impl.ComputeTruth(&query)
}

// MustBeFalse reports whether query.Expr is guaranteed false, defined as
// MustBeTrue(¬query.Expr).
func (s *Solver) MustBeFalse(query expr.Query) (bool, bool) {
	return s.MustBeTrue(query.Negated())
}

// MayBeTrue reports whether some assignment makes query.Expr true, defined
// as ¬MustBeFalse(query.Expr).
func (s *Solver) MayBeTrue(query expr.Query) (bool, bool) {
	res, ok := s.MustBeFalse(query)
	if !ok {
		return false, false
	}

	return !res, true
}

// MayBeFalse reports whether some assignment makes query.Expr false,
// defined as ¬MustBeTrue(query.Expr).
func (s *Solver) MayBeFalse(query expr.Query) (bool, bool) {
	res, ok := s.MustBeTrue(query)
	if !ok {
		return false, false
	}

	return !res, true
}

// GetValue returns a constant equal to query.Expr under some satisfying
// assignment; a literal query.Expr is returned unchanged.
func (s *Solver) GetValue(query expr.Query) (*expr.ConstantExpr, bool) {
	if ce, ok := expr.AsConstant(query.Expr); ok {
		return ce, true
	}

	return s.Impl.ComputeValue(&query)
}

// GetInitialValues returns a byte assignment for objects satisfying
// query.Constraints. A false return conflates "no solution" with "the
// backend failed", exactly as the engine-facing API specifies.
func (s *Solver) GetInitialValues(query expr.Query, objects []*expr.Array) ([][]byte, bool) {
	values, hasSolution, success := s.Impl.ComputeInitialValues(&query, objects)
	if !success || !hasSolution {
		return nil, false
	}

	return values, true
}

// GetRange returns a pair of constants (lo, hi) bracketing query.Expr under
// query.Constraints: lo <= expr <= hi is guaranteed; the bounds need not be
// tight. A 1-bit expression is resolved with a single Evaluate call; wider
// expressions binary-search first the number of useful high bits, then the
// minimum, then the maximum.
func (s *Solver) GetRange(query expr.Query) (lo, hi *expr.ConstantExpr, success bool) {
	width := query.Expr.Width()

	if width == expr.BoolWidth {
		v, ok := s.Evaluate(query)
		if !ok {
			return nil, nil, false
		}

		switch v {
		case expr.ValidityTrue:
			return expr.NewConstant(1, width), expr.NewConstant(1, width), true
		case expr.ValidityFalse:
			return expr.NewConstant(0, width), expr.NewConstant(0, width), true
		default:
			return expr.NewConstant(0, width), expr.NewConstant(1, width), true
		}
	}

	if ce, ok := expr.AsConstant(query.Expr); ok {
		return ce, ce, true
	}

	bits, ok := s.usefulBits(query, width)
	if !ok {
		return nil, nil, false
	}

	loVal, ok := s.searchMin(query, width, bits)
	if !ok {
		return nil, nil, false
	}

	hiVal, ok := s.searchMax(query, width, loVal, bits)
	if !ok {
		return nil, nil, false
	}

	return expr.NewConstant(loVal, width), expr.NewConstant(hiVal, width), true
}

// usefulBits binary-searches for the number of low-order bits that might be
// set, by repeatedly asking whether everything above the midpoint is zero.
func (s *Solver) usefulBits(query expr.Query, width expr.Width) (uint64, bool) {
	lo, hiB := uint64(0), uint64(width)

	for lo < hiB {
		mid := lo + (hiB-lo)/2
		shifted := expr.CreateLShr(query.Expr, expr.NewConstant(mid, width))
		probe := query.WithExpr(expr.CreateEq(shifted, expr.NewConstant(0, width)))

		res, ok := s.MustBeTrue(probe)
		if !ok {
			return 0, false
		}

		if res {
			hiB = mid
		} else {
			lo = mid + 1
		}
	}

	return lo, true
}

func maxValueOfNBits(bits uint64) uint64 {
	if bits == 0 {
		return 0
	}

	if bits >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << bits) - 1
}

func (s *Solver) searchMin(query expr.Query, width expr.Width, bits uint64) (uint64, bool) {
	zeroProbe := query.WithExpr(expr.CreateEq(query.Expr, expr.NewConstant(0, width)))

	isZeroPossible, ok := s.MayBeTrue(zeroProbe)
	if !ok {
		return 0, false
	}

	if isZeroPossible {
		return 0, true
	}

	lo, hiB := uint64(0), maxValueOfNBits(bits)

	for lo < hiB {
		mid := lo + (hiB-lo)/2
		probe := query.WithExpr(expr.CreateUle(query.Expr, expr.NewConstant(mid, width)))

		res, ok := s.MayBeTrue(probe)
		if !ok {
			return 0, false
		}

		if res {
			hiB = mid
		} else {
			lo = mid + 1
		}
	}

	return lo, true
}

func (s *Solver) searchMax(query expr.Query, width expr.Width, min, bits uint64) (uint64, bool) {
	lo, hiB := min, maxValueOfNBits(bits)

	for lo < hiB {
		mid := lo + (hiB-lo)/2
		probe := query.WithExpr(expr.CreateUle(query.Expr, expr.NewConstant(mid, width)))

		res, ok := s.MustBeTrue(probe)
		if !ok {
			return 0, false
		}

		if res {
			hiB = mid
		} else {
			lo = mid + 1
		}
	}

	return lo, true
}
