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
package cache_test

import (
	"testing"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/cache"
	"github.com/solverstack/core/pkg/solver/stats"
	"github.com/solverstack/core/pkg/util/assert"
)

// fixedImpl always answers computeTruth with a fixed verdict, and counts how
// many times it was consulted.
type fixedImpl struct {
	isValid bool
	calls   int
}

func (f *fixedImpl) ComputeValidity(*expr.Query) (expr.Validity, bool) { return expr.ValidityUnknown, false }

func (f *fixedImpl) ComputeTruth(*expr.Query) (bool, bool) {
	f.calls++
	return f.isValid, true
}

func (f *fixedImpl) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) { return nil, false }

func (f *fixedImpl) ComputeInitialValues(*expr.Query, []*expr.Array) ([][]byte, bool, bool) {
	return nil, false, false
}

func (f *fixedImpl) GetOperationStatusCode() solver.RunStatus { return solver.StatusSuccessSolvable }
func (f *fixedImpl) GetConstraintLog(*expr.Query) string      { return "" }
func (f *fixedImpl) SetCoreSolverTimeout(time.Duration)       {}

var _ solver.Impl = (*fixedImpl)(nil)

// S2: mustBeTrue(phi) followed by mustBeTrue(not phi) share one cache entry.
// phi is not valid, so not-phi's side of the entry reads MayBeTrue and the
// lower layer is consulted once more to refine it to TrueOrFalse; a repeat
// of not-phi is then answered from the cache.
func TestCacheNegationHit(t *testing.T) {
	x := expr.NewArray("x", 1)
	xExpr := expr.NewRead(expr.UpdateList{Root: x}, expr.NewConstant(0, 32))

	constraints := expr.ConstraintSet{expr.CreateUlt(xExpr, expr.NewConstant(10, 8))}
	phi := expr.CreateEq(xExpr, expr.NewConstant(5, 8))

	next := &fixedImpl{isValid: false}
	c := cache.New(next, stats.New())

	q1 := expr.NewQuery(constraints, phi)
	ok1, success := c.ComputeTruth(&q1)
	assert.True(t, success)
	assert.Equal(t, false, ok1)
	assert.Equal(t, 1, next.calls)

	q2 := expr.NewQuery(constraints, expr.CreateNot(phi))
	ok2, success := c.ComputeTruth(&q2)
	assert.True(t, success)
	assert.Equal(t, false, ok2)
	assert.Equal(t, 2, next.calls, "a cached MayBeTrue must be refined by the lower layer")

	ok3, success := c.ComputeTruth(&q2)
	assert.True(t, success)
	assert.Equal(t, false, ok3)
	assert.Equal(t, 2, next.calls, "the refined entry must answer a repeat without a consult")
}

// Invariant 4: the cache key for phi and not-phi is identical, and the
// negated query's stored result is the negation of phi's.
func TestCacheCanonicalizationAgreesOnNegation(t *testing.T) {
	x := expr.NewArray("x", 1)
	xExpr := expr.NewRead(expr.UpdateList{Root: x}, expr.NewConstant(0, 32))
	phi := expr.CreateEq(xExpr, expr.NewConstant(5, 8))

	next := &fixedImpl{isValid: true}
	c := cache.New(next, stats.New())

	q1 := expr.NewQuery(nil, phi)
	v1, _ := c.ComputeTruth(&q1)
	assert.Equal(t, true, v1)

	// phi proved valid; not-phi must therefore be reported false, from the
	// same cache entry without a second consult.
	q2 := expr.NewQuery(nil, expr.CreateNot(phi))
	v2, _ := c.ComputeTruth(&q2)
	assert.Equal(t, false, v2)
	assert.Equal(t, 1, next.calls)
}

// ComputeValidity is not served by this layer.
func TestCacheComputeValidityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	c := cache.New(&fixedImpl{}, stats.New())
	q := expr.NewQuery(nil, expr.True())
	_, _ = c.ComputeValidity(&q)
}
