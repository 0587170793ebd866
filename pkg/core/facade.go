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

// Package core exposes the six engine-facing operations over a configured
// solver stack: evaluate, mustBeTrue/mustBeFalse/mayBeTrue/mayBeFalse,
// getValue, getInitialValues, and getRange. It applies the constant fast
// path and the configured simplifier before any query descends into the
// stack, and accumulates per-call solver time into a Metadata sink.
package core

import (
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
)

// Metadata accumulates elapsed solver time across the operations sharing
// it; the engine supplies one per logical step it is timing.
type Metadata struct {
	QueryCost time.Duration
}

func (m *Metadata) add(d time.Duration) {
	if m != nil {
		m.QueryCost += d
	}
}

// Facade wraps a configured solver.Solver with the constant fast path and
// an injected Simplifier, and is the only type engine code depends on.
type Facade struct {
	solver     *solver.Solver
	simplifier expr.Simplifier
}

// New wraps solver with simplifier. A nil simplifier is treated as
// expr.IdentitySimplifier.
func New(s *solver.Solver, simplifier expr.Simplifier) *Facade {
	if simplifier == nil {
		simplifier = expr.IdentitySimplifier
	}

	return &Facade{solver: s, simplifier: simplifier}
}

func (f *Facade) query(constraints, unsimplified expr.ConstraintSet, e expr.Expr) expr.Query {
	return expr.Query{
		Constraints:  constraints,
		Unsimplified: unsimplified,
		Expr:         f.simplifier(constraints, e),
	}
}

func timed(meta *Metadata, fn func() bool) bool {
	start := time.Now()
	ok := fn()
	meta.add(time.Since(start))

	return ok
}

// Evaluate decides the three-valued Validity of e under constraints.
func (f *Facade) Evaluate(constraints, unsimplified expr.ConstraintSet, e expr.Expr, meta *Metadata) (expr.Validity, bool) {
	if ce, ok := expr.AsConstant(e); ok {
		if ce.IsTrue() {
			return expr.ValidityTrue, true
		}

		return expr.ValidityFalse, true
	}

	var (
		result  expr.Validity
		success bool
	)

	ok := timed(meta, func() bool {
		result, success = f.solver.Evaluate(f.query(constraints, unsimplified, e))
		return success
	})

	return result, ok
}

// MustBeTrue reports whether e is guaranteed true under constraints.
func (f *Facade) MustBeTrue(constraints, unsimplified expr.ConstraintSet, e expr.Expr, meta *Metadata) (bool, bool) {
	if ce, ok := expr.AsConstant(e); ok {
		return ce.IsTrue(), true
	}

	var result bool

	ok := timed(meta, func() bool {
		var success bool
		result, success = f.solver.MustBeTrue(f.query(constraints, unsimplified, e))

		return success
	})

	return result, ok
}

// MustBeFalse reports whether e is guaranteed false, defined as
// MustBeTrue(¬e).
func (f *Facade) MustBeFalse(constraints, unsimplified expr.ConstraintSet, e expr.Expr, meta *Metadata) (bool, bool) {
	return f.MustBeTrue(constraints, unsimplified, expr.CreateNot(e), meta)
}

// MayBeTrue reports whether some assignment makes e true, defined as
// ¬MustBeFalse(e).
func (f *Facade) MayBeTrue(constraints, unsimplified expr.ConstraintSet, e expr.Expr, meta *Metadata) (bool, bool) {
	res, ok := f.MustBeFalse(constraints, unsimplified, e, meta)
	if !ok {
		return false, false
	}

	return !res, true
}

// MayBeFalse reports whether some assignment makes e false, defined as
// ¬MustBeTrue(e).
func (f *Facade) MayBeFalse(constraints, unsimplified expr.ConstraintSet, e expr.Expr, meta *Metadata) (bool, bool) {
	res, ok := f.MustBeTrue(constraints, unsimplified, e, meta)
	if !ok {
		return false, false
	}

	return !res, true
}

// GetValue returns a constant equal to e under some satisfying assignment
// of constraints; a literal e is returned unchanged without touching
// timing.
func (f *Facade) GetValue(constraints, unsimplified expr.ConstraintSet, e expr.Expr, meta *Metadata) (*expr.ConstantExpr, bool) {
	if ce, ok := expr.AsConstant(e); ok {
		return ce, true
	}

	var result *expr.ConstantExpr

	ok := timed(meta, func() bool {
		var success bool
		result, success = f.solver.GetValue(f.query(constraints, unsimplified, e))

		return success
	})

	return result, ok
}

// GetInitialValues returns a byte assignment for objects satisfying
// constraints.
func (f *Facade) GetInitialValues(
	constraints, unsimplified expr.ConstraintSet,
	objects []*expr.Array,
	meta *Metadata,
) ([][]byte, bool) {
	var result [][]byte

	// query.Expr is irrelevant to computeInitialValues — only
	// query.Constraints must be satisfiable. Use False() so internalRun's
	// ¬expr push (True) adds no restriction, mirroring computeValue's
	// query.withFalse() in the original lineage.
	ok := timed(meta, func() bool {
		var success bool
		result, success = f.solver.GetInitialValues(f.query(constraints, unsimplified, expr.False()), objects)

		return success
	})

	return result, ok
}

// GetRange returns a pair of constants bracketing e under constraints.
func (f *Facade) GetRange(
	constraints, unsimplified expr.ConstraintSet,
	e expr.Expr,
	meta *Metadata,
) (lo, hi *expr.ConstantExpr, success bool) {
	if ce, ok := expr.AsConstant(e); ok {
		return ce, ce, true
	}

	ok := timed(meta, func() bool {
		var s bool
		lo, hi, s = f.solver.GetRange(f.query(constraints, unsimplified, e))

		return s
	})

	return lo, hi, ok
}
