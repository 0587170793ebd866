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
package smtlog_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/smtlog"
	"github.com/solverstack/core/pkg/util/assert"
)

type constLogImpl struct {
	log string
}

func (c *constLogImpl) ComputeValidity(*expr.Query) (expr.Validity, bool) { return expr.ValidityUnknown, false }
func (c *constLogImpl) ComputeTruth(*expr.Query) (bool, bool)             { return true, true }
func (c *constLogImpl) ComputeValue(*expr.Query) (*expr.ConstantExpr, bool) { return nil, false }

func (c *constLogImpl) ComputeInitialValues(*expr.Query, []*expr.Array) ([][]byte, bool, bool) {
	return nil, false, false
}

func (c *constLogImpl) GetOperationStatusCode() solver.RunStatus { return solver.StatusSuccessUnsolvable }
func (c *constLogImpl) GetConstraintLog(*expr.Query) string      { return c.log }
func (c *constLogImpl) SetCoreSolverTimeout(time.Duration)       {}

var _ solver.Impl = (*constLogImpl)(nil)

func TestSmtlogDumpFormat(t *testing.T) {
	next := &constLogImpl{log: "(assert true)\n"}

	var buf bytes.Buffer
	s := smtlog.New(next, &buf, nil)

	q := expr.NewQuery(nil, expr.True())
	_, _ = s.ComputeTruth(&q)

	want := "; start Z3 query\n(assert true)\n(check-sat)\n(reset)\n; end Z3 query\n\n"
	assert.Equal(t, want, buf.String())
}

func TestSmtlogReplayMatches(t *testing.T) {
	next := &constLogImpl{log: "(assert true)\n"}

	replay := strings.NewReader("; some header\n(assert true)\n")
	s := smtlog.New(next, nil, replay)

	q := expr.NewQuery(nil, expr.True())
	_, ok := s.ComputeTruth(&q)
	assert.True(t, ok)
}
