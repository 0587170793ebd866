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
package validate_test

import (
	"testing"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/validate"
	"github.com/solverstack/core/pkg/util/assert"
)

type fixedImpl struct {
	isValid bool
}

func (f *fixedImpl) ComputeValidity(*expr.Query) (expr.Validity, bool) { return expr.ValidityUnknown, false }

func (f *fixedImpl) ComputeTruth(*expr.Query) (bool, bool) { return f.isValid, true }

func (f *fixedImpl) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) { return nil, false }

func (f *fixedImpl) ComputeInitialValues(*expr.Query, []*expr.Array) ([][]byte, bool, bool) {
	return nil, false, false
}

func (f *fixedImpl) GetOperationStatusCode() solver.RunStatus { return solver.StatusSuccessSolvable }
func (f *fixedImpl) GetConstraintLog(*expr.Query) string      { return "" }
func (f *fixedImpl) SetCoreSolverTimeout(time.Duration)       {}

var _ solver.Impl = (*fixedImpl)(nil)

// Agreement is transparent: the wrapper returns the (identical) verdict
// without panicking.
func TestValidateAgreement(t *testing.T) {
	v := validate.New(&fixedImpl{isValid: true}, &fixedImpl{isValid: true})

	q := expr.NewQuery(nil, expr.NewRead(expr.UpdateList{Root: expr.NewArray("x", 1)}, expr.NewConstant(0, 32)))

	result, ok := v.ComputeTruth(&q)
	assert.True(t, ok)
	assert.Equal(t, true, result)
}

// Invariant 8: disagreement between primary and oracle aborts the process
// (here, panics) before returning.
func TestValidateDisagreementPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on primary/oracle disagreement")
		}
	}()

	v := validate.New(&fixedImpl{isValid: true}, &fixedImpl{isValid: false})

	q := expr.NewQuery(nil, expr.NewRead(expr.UpdateList{Root: expr.NewArray("x", 1)}, expr.NewConstant(0, 32)))
	_, _ = v.ComputeTruth(&q)
}
