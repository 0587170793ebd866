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
package solver_test

import (
	"testing"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/util/assert"
)

// bruteImpl is a ground-truth oracle: it enumerates every value of a single
// declared 8-bit symbolic variable and decides truth by universal
// quantification, entirely independent of the adapter/cache/pool machinery
// this package's algebra is layered above.
type bruteImpl struct {
	x     *expr.Array
	calls int
}

func (b *bruteImpl) every(query *expr.Query, pred func(v uint64) bool) bool {
	for v := uint64(0); v < 256; v++ {
		a := expr.NewAssignment([]*expr.Array{b.x}, [][]byte{{byte(v)}})

		ok := true
		for _, c := range query.Constraints {
			if !a.Evaluate(c).IsTrue() {
				ok = false
				break
			}
		}

		if ok && !pred(v) {
			return false
		}
	}

	return true
}

func (b *bruteImpl) ComputeValidity(*expr.Query) (expr.Validity, bool) { return expr.ValidityUnknown, false }

func (b *bruteImpl) ComputeTruth(query *expr.Query) (bool, bool) {
	b.calls++

	return b.every(query, func(v uint64) bool {
		a := expr.NewAssignment([]*expr.Array{b.x}, [][]byte{{byte(v)}})
		return a.Evaluate(query.Expr).IsTrue()
	}), true
}

func (b *bruteImpl) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) { return nil, false }

func (b *bruteImpl) ComputeInitialValues(*expr.Query, []*expr.Array) ([][]byte, bool, bool) {
	return nil, false, false
}

func (b *bruteImpl) GetOperationStatusCode() solver.RunStatus { return solver.StatusSuccessSolvable }
func (b *bruteImpl) GetConstraintLog(*expr.Query) string      { return "" }
func (b *bruteImpl) SetCoreSolverTimeout(time.Duration)       {}

var _ solver.Impl = (*bruteImpl)(nil)

func xRead(x *expr.Array) expr.Expr {
	return expr.NewRead(expr.UpdateList{Root: x}, expr.NewConstant(0, 32))
}

// S1: the facade (here, Solver.Evaluate directly) never invokes the lower
// stack on a Constant expression.
func TestEvaluateConstantFastPath(t *testing.T) {
	impl := &bruteImpl{x: expr.NewArray("x", 1)}
	s := solver.New(impl)

	v, ok := s.Evaluate(expr.NewQuery(nil, expr.True()))
	assert.True(t, ok)
	assert.Equal(t, expr.ValidityTrue, v)
	assert.Equal(t, 0, impl.calls)
}

// Invariant 3: mustBeFalse(phi) == mustBeTrue(not phi); mayBeTrue(phi) ==
// !mustBeFalse(phi); mayBeFalse(phi) == !mustBeTrue(phi).
func TestTruthAlgebra(t *testing.T) {
	x := expr.NewArray("x", 1)
	impl := &bruteImpl{x: x}
	s := solver.New(impl)

	constraints := expr.ConstraintSet{expr.CreateUlt(xRead(x), expr.NewConstant(10, 8))}
	phi := expr.CreateEq(xRead(x), expr.NewConstant(5, 8))
	query := expr.NewQuery(constraints, phi)

	mustTrue, ok := s.MustBeTrue(query)
	assert.True(t, ok)

	mustFalse, ok := s.MustBeFalse(query)
	assert.True(t, ok)
	assert.Equal(t, mustFalse, mustBeTrueNegated(t, s, query))

	mayTrue, ok := s.MayBeTrue(query)
	assert.True(t, ok)
	assert.Equal(t, mayTrue, !mustFalse)

	mayFalse, ok := s.MayBeFalse(query)
	assert.True(t, ok)
	assert.Equal(t, mayFalse, !mustTrue)
}

func mustBeTrueNegated(t *testing.T, s *solver.Solver, query expr.Query) bool {
	t.Helper()

	v, ok := s.MustBeTrue(query.Negated())
	assert.True(t, ok)

	return v
}

// Invariant 7 / S5: getRange returns (lo, hi) with lo <= expr <= hi under
// constraints, both at expr's width.
func TestGetRange(t *testing.T) {
	x := expr.NewArray("x", 1)
	impl := &bruteImpl{x: x}
	s := solver.New(impl)

	constraints := expr.ConstraintSet{
		expr.CreateUle(expr.NewConstant(3, 8), xRead(x)),
		expr.CreateUle(xRead(x), expr.NewConstant(17, 8)),
	}
	query := expr.NewQuery(constraints, xRead(x))

	lo, hi, ok := s.GetRange(query)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), lo.Value())
	assert.Equal(t, uint64(17), hi.Value())
	assert.Equal(t, expr.Width(8), lo.Width())
	assert.Equal(t, expr.Width(8), hi.Width())
}

// GetRange on a 1-bit expression resolves via a single Evaluate call.
func TestGetRangeBool(t *testing.T) {
	x := expr.NewArray("x", 1)
	impl := &bruteImpl{x: x}
	s := solver.New(impl)

	constraints := expr.ConstraintSet{expr.CreateEq(xRead(x), expr.NewConstant(5, 8))}
	query := expr.NewQuery(constraints, expr.CreateEq(xRead(x), expr.NewConstant(5, 8)))

	lo, hi, ok := s.GetRange(query)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), lo.Value())
	assert.Equal(t, uint64(1), hi.Value())
}
