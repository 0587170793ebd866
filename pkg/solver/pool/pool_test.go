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
package pool_test

import (
	"testing"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/pool"
	"github.com/solverstack/core/pkg/util/assert"
)

// fakeMember is a pool.Member whose stack contents are set directly by the
// test, with no real backend behind it.
type fakeMember struct {
	id     int
	stack  expr.ConstraintSet
	routed int
}

func (f *fakeMember) StackLen() uint                     { return uint(len(f.stack)) }
func (f *fakeMember) StackExprs() expr.ConstraintSet     { return f.stack }
func (f *fakeMember) ComputeValidity(*expr.Query) (expr.Validity, bool) { return expr.ValidityUnknown, false }

func (f *fakeMember) ComputeTruth(*expr.Query) (bool, bool) {
	f.routed++
	return true, true
}

func (f *fakeMember) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) { return nil, false }

func (f *fakeMember) ComputeInitialValues(*expr.Query, []*expr.Array) ([][]byte, bool, bool) {
	return nil, false, false
}

func (f *fakeMember) GetOperationStatusCode() solver.RunStatus { return solver.StatusSuccessSolvable }
func (f *fakeMember) GetConstraintLog(*expr.Query) string      { return "" }
func (f *fakeMember) SetCoreSolverTimeout(time.Duration)       {}

var _ pool.Member = (*fakeMember)(nil)

func xRead(x *expr.Array) expr.Expr {
	return expr.NewRead(expr.UpdateList{Root: x}, expr.NewConstant(0, 32))
}

// Dispatch picks the member with the longest shared prefix.
func TestPoolDispatchLongestPrefix(t *testing.T) {
	x := expr.NewArray("x", 1)
	c1 := expr.CreateUlt(xRead(x), expr.NewConstant(100, 8))
	c2 := expr.CreateUlt(xRead(x), expr.NewConstant(50, 8))
	c3 := expr.CreateEq(xRead(x), expr.NewConstant(5, 8))

	m0 := &fakeMember{id: 0, stack: expr.ConstraintSet{c1}}
	m1 := &fakeMember{id: 1, stack: expr.ConstraintSet{c1, c2, c3}}

	p := pool.New([]pool.Member{m0, m1}, 0.0, false)

	q := expr.NewQuery(expr.ConstraintSet{c1, c2, c3}, xRead(x))
	_, _ = p.ComputeTruth(&q)

	assert.Equal(t, 0, m0.routed)
	assert.Equal(t, 1, m1.routed)
}

// No member shares any prefix: dispatch falls back to LRU eviction, which
// on an all-fresh pool with equal (zero) lru clocks picks the lowest index.
func TestPoolDispatchFallsBackToLRU(t *testing.T) {
	x := expr.NewArray("x", 1)
	c1 := expr.CreateEq(xRead(x), expr.NewConstant(9, 8))

	m0 := &fakeMember{id: 0}
	m1 := &fakeMember{id: 1}

	p := pool.New([]pool.Member{m0, m1}, 0.0, false)

	q := expr.NewQuery(expr.ConstraintSet{c1}, xRead(x))
	_, _ = p.ComputeTruth(&q)

	assert.Equal(t, 1, m0.routed)
	assert.Equal(t, 0, m1.routed)
}

// Within percent-leeway of the maximal prefix fraction the member with the
// smallest current stack wins; when the stacks are equal in size too, as
// here, the lowest index wins.
func TestPoolDispatchTieBreaksOnSmallestStack(t *testing.T) {
	x := expr.NewArray("x", 1)
	c1 := expr.CreateUlt(xRead(x), expr.NewConstant(100, 8))
	c2 := expr.CreateUlt(xRead(x), expr.NewConstant(50, 8))

	// m0's stack is exactly the query (fraction 1.0, len 2).
	m0 := &fakeMember{id: 0, stack: expr.ConstraintSet{c1, c2}}
	// m1's stack is identical to m0's (fraction 1.0, len 2).
	m1 := &fakeMember{id: 1, stack: expr.ConstraintSet{c1, c2}}

	p := pool.New([]pool.Member{m0, m1}, 0.1, false)

	q := expr.NewQuery(expr.ConstraintSet{c1, c2}, xRead(x))
	_, _ = p.ComputeTruth(&q)

	// Both tie exactly; lowest index wins.
	assert.Equal(t, 1, m0.routed)
	assert.Equal(t, 0, m1.routed)
}

func TestPoolGetOperationStatusCodeBeforeAnyQuery(t *testing.T) {
	m0 := &fakeMember{id: 0}
	p := pool.New([]pool.Member{m0}, 0.0, false)

	assert.Equal(t, solver.StatusUnknown, p.GetOperationStatusCode())
}
