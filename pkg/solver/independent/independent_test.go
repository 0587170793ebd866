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
package independent_test

import (
	"testing"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/independent"
	"github.com/solverstack/core/pkg/util/assert"
)

// recordingImpl records the constraint set it was actually asked about, so
// tests can confirm the partitioner shrank the query.
type recordingImpl struct {
	gotConstraints expr.ConstraintSet
	gotObjects     []*expr.Array
}

func (r *recordingImpl) ComputeValidity(*expr.Query) (expr.Validity, bool) { return expr.ValidityUnknown, false }

func (r *recordingImpl) ComputeTruth(query *expr.Query) (bool, bool) {
	r.gotConstraints = query.Constraints
	return true, true
}

func (r *recordingImpl) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) { return nil, false }

func (r *recordingImpl) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	r.gotConstraints = query.Constraints
	r.gotObjects = objects

	values := make([][]byte, len(objects))

	for i, obj := range objects {
		b := make([]byte, obj.Size)
		if obj.Name == "a" {
			b[0] = 1
		}

		values[i] = b
	}

	return values, true, true
}

func (r *recordingImpl) GetOperationStatusCode() solver.RunStatus { return solver.StatusSuccessSolvable }
func (r *recordingImpl) GetConstraintLog(*expr.Query) string      { return "" }
func (r *recordingImpl) SetCoreSolverTimeout(time.Duration)       {}

var _ solver.Impl = (*recordingImpl)(nil)

func aRead(a *expr.Array) expr.Expr {
	return expr.NewRead(expr.UpdateList{Root: a}, expr.NewConstant(0, 32))
}

// S4: a query about a[0]==1 under constraints {a[0]==1, b[0]==2} is reduced
// to the closure over a alone; b never reaches next.
func TestIndependentReducesToRelevantClosure(t *testing.T) {
	a := expr.NewArray("a", 1)
	b := expr.NewArray("b", 1)

	constraints := expr.ConstraintSet{
		expr.CreateEq(aRead(a), expr.NewConstant(1, 8)),
		expr.CreateEq(aRead(b), expr.NewConstant(2, 8)),
	}

	next := &recordingImpl{}
	s := independent.New(next)

	q := expr.NewQuery(constraints, expr.CreateEq(aRead(a), expr.NewConstant(1, 8)))
	_, ok := s.ComputeTruth(&q)
	assert.True(t, ok)
	assert.Equal(t, 1, len(next.gotConstraints))
}

// Invariant 6: computeInitialValues stitches a full assignment over all of
// objects, defaulting arrays outside the closure to zero, without panicking
// (the self-check inside ComputeInitialValues must pass).
func TestIndependentStitchesFullAssignment(t *testing.T) {
	a := expr.NewArray("a", 1)
	b := expr.NewArray("b", 1)

	constraints := expr.ConstraintSet{
		expr.CreateEq(aRead(a), expr.NewConstant(1, 8)),
	}

	next := &recordingImpl{}
	s := independent.New(next)

	q := expr.NewQuery(constraints, expr.CreateEq(aRead(a), expr.NewConstant(1, 8)))
	values, hasSolution, ok := s.ComputeInitialValues(&q, []*expr.Array{a, b})
	assert.True(t, ok)
	assert.True(t, hasSolution)
	assert.Equal(t, 2, len(values))

	// b was never in the closure; next only saw a.
	assert.Equal(t, 1, len(next.gotObjects))
}

// The facade always probes ComputeInitialValues with expr.False() as
// query.Expr (it only cares whether query.Constraints is satisfiable), so
// the closure must be seeded from objects, not from query.Expr: seeding
// from False() would reference no arrays at all and stitch an unchecked
// all-zero witness, tripping the soundness self-check against a[0]==1.
func TestIndependentComputeInitialValuesWithFalseProbe(t *testing.T) {
	a := expr.NewArray("a", 1)

	constraints := expr.ConstraintSet{
		expr.CreateEq(aRead(a), expr.NewConstant(1, 8)),
	}

	next := &recordingImpl{}
	s := independent.New(next)

	q := expr.Query{Constraints: constraints, Unsimplified: constraints, Expr: expr.False()}
	values, hasSolution, ok := s.ComputeInitialValues(&q, []*expr.Array{a})
	assert.True(t, ok)
	assert.True(t, hasSolution)
	assert.Equal(t, byte(1), values[0][0])
}
