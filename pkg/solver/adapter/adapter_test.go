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
package adapter_test

import (
	"testing"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/adapter"
	"github.com/solverstack/core/pkg/solver/adapter/membackend"
	"github.com/solverstack/core/pkg/util/assert"
)

func xRead(x *expr.Array) expr.Expr {
	return expr.NewRead(expr.UpdateList{Root: x}, expr.NewConstant(0, 32))
}

func TestAdapterComputeTruth(t *testing.T) {
	x := expr.NewArray("x", 1)
	a := adapter.New(membackend.New(), adapter.ModeIncremental, true)

	constraints := expr.ConstraintSet{expr.CreateEq(xRead(x), expr.NewConstant(5, 8))}
	phi := expr.CreateEq(xRead(x), expr.NewConstant(5, 8))
	query := expr.NewQuery(constraints, phi)

	result, ok := a.ComputeTruth(&query)
	assert.True(t, ok)
	assert.Equal(t, true, result)
	assert.Equal(t, solver.StatusSuccessUnsolvable, a.GetOperationStatusCode())
}

func TestAdapterComputeValue(t *testing.T) {
	x := expr.NewArray("x", 1)
	a := adapter.New(membackend.New(), adapter.ModeIncremental, true)

	constraints := expr.ConstraintSet{expr.CreateEq(xRead(x), expr.NewConstant(5, 8))}
	query := expr.NewQuery(constraints, xRead(x))

	result, ok := a.ComputeValue(&query)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), result.Value())
}

func TestAdapterComputeInitialValues(t *testing.T) {
	x := expr.NewArray("x", 1)
	a := adapter.New(membackend.New(), adapter.ModeIncremental, true)

	constraints := expr.ConstraintSet{expr.CreateEq(xRead(x), expr.NewConstant(5, 8))}
	query := expr.NewQuery(constraints, expr.True())

	values, hasSolution, ok := a.ComputeInitialValues(&query, []*expr.Array{x})
	assert.True(t, ok)
	assert.True(t, hasSolution)
	assert.Equal(t, byte(5), values[0][0])
	assert.Equal(t, solver.StatusSuccessSolvable, a.GetOperationStatusCode())
}

// S3: successive queries sharing a constraint prefix reuse it; StackLen
// after the second query reflects the shared prefix plus only the new
// constraint and the new negated expression, not a full rebuild.
func TestAdapterReusesCommonPrefix(t *testing.T) {
	x := expr.NewArray("x", 1)
	a := adapter.New(membackend.New(), adapter.ModeIncremental, false)

	c1 := expr.CreateUlt(xRead(x), expr.NewConstant(200, 8))
	c2 := expr.CreateUlt(expr.NewConstant(0, 8), xRead(x))
	c3 := expr.CreateEq(xRead(x), expr.NewConstant(5, 8))
	c4 := expr.CreateEq(xRead(x), expr.NewConstant(9, 8))

	q1 := expr.NewQuery(expr.ConstraintSet{c1, c2, c3}, xRead(x))
	_, _ = a.ComputeTruth(&q1)
	assert.Equal(t, uint(4), a.StackLen()) // c1, c2, c3, not(expr1)

	q2 := expr.NewQuery(expr.ConstraintSet{c1, c2, c4}, xRead(x))
	_, _ = a.ComputeTruth(&q2)
	assert.Equal(t, uint(4), a.StackLen()) // c1, c2, c4, not(expr2)
}

func TestAdapterConstantArrayAxiom(t *testing.T) {
	c := expr.NewConstantArray("table", []byte{1, 2, 3})
	a := adapter.New(membackend.New(), adapter.ModeIncremental, true)

	read := expr.NewRead(expr.UpdateList{Root: c}, expr.NewConstant(1, 32))
	query := expr.NewQuery(nil, expr.CreateEq(read, expr.NewConstant(2, 8)))

	result, ok := a.ComputeTruth(&query)
	assert.True(t, ok)
	assert.Equal(t, true, result)
}

func TestAdapterGetConstraintLogDoesNotTouchStack(t *testing.T) {
	x := expr.NewArray("x", 1)
	a := adapter.New(membackend.New(), adapter.ModeIncremental, false)

	before := a.StackLen()

	query := expr.NewQuery(expr.ConstraintSet{expr.CreateEq(xRead(x), expr.NewConstant(5, 8))}, xRead(x))
	log := a.GetConstraintLog(&query)

	assert.Equal(t, before, a.StackLen())
	assert.True(t, len(log) > 0)
}
