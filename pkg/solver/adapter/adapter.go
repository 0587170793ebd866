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

// Package adapter drives a Backend standing in for an out-of-process SMT
// decision procedure: it mirrors an incremental assertion stack so
// successive queries reuse whatever prefix of pushed formulas they share
// with the backend's current state, translates check-sat responses, and
// extracts per-array byte models.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/util/collection/stack"
	"github.com/solverstack/core/pkg/util/signals"
)

// arrayIndexWidth is the bit-width used for the synthetic index constants
// in a constant array's axioms; array contents are always byte-addressed,
// so this only needs to cover the largest array size this core supports.
const arrayIndexWidth expr.Width = 32

// Status is the backend's raw check-sat response, before translation into
// a solver.RunStatus / bool pair.
type Status uint8

// The possible check-sat outcomes a Backend can report.
const (
	StatusSat Status = iota
	StatusUnsat
	StatusTimeout
	StatusInterrupted
	StatusFailure
)

// Backend is the out-of-process SMT decision procedure the adapter drives.
// The module ships only an in-memory example implementation (for tests and
// the cmd/ demo); a real binding would translate Push/Pop/CheckSat onto the
// external procedure's own API.
type Backend interface {
	// Push asserts one boolean expression as a new incremental frame.
	Push(ctx context.Context, e expr.Expr) error
	// Pop retracts the n most recently pushed frames.
	Pop(ctx context.Context, n uint) error
	// CheckSat decides satisfiability of everything currently pushed.
	CheckSat(ctx context.Context) (Status, error)
	// ModelByte evaluates array[offset] against the model from the most
	// recent satisfiable CheckSat call.
	ModelByte(ctx context.Context, array *expr.Array, offset uint) (byte, error)
	// Reset clears any per-query translation cache the backend keeps;
	// called after every internalRun regardless of outcome.
	Reset()
	// SetTimeout configures the backend's own check-sat timeout.
	SetTimeout(d time.Duration)
}

// Mode selects whether the adapter reuses the longest common prefix of its
// assertion stack across queries (Incremental), or discards and rebuilds
// the entire stack on every query (NonIncremental) — for a Backend that
// cannot maintain incremental state.
type Mode uint8

// The two adapter dispatch modes.
const (
	ModeIncremental Mode = iota
	ModeNonIncremental
)

// frame is one entry on the mirrored assertion stack: the constraint
// asserted, plus any constant arrays whose axioms were first introduced
// alongside it (so popping this frame also unasserts those axioms).
type frame struct {
	constraint expr.Expr
	auxArrays  []*expr.Array
}

// Adapter drives one Backend instance through the incremental (or
// non-incremental) query protocol.
type Adapter struct {
	backend        Backend
	mode           Mode
	validateModels bool
	frames         *stack.Stack[*frame]
	assertedArrays map[*expr.Array]bool
	timeout        time.Duration
	status         solver.RunStatus
}

var _ solver.Impl = (*Adapter)(nil)

// New constructs an Adapter driving backend in the given mode. When
// validateModels is set, every satisfiable result is cross-checked by
// re-evaluating every asserted constraint against the extracted model.
func New(backend Backend, mode Mode, validateModels bool) *Adapter {
	return &Adapter{
		backend:        backend,
		mode:           mode,
		validateModels: validateModels,
		frames:         stack.NewStack[*frame](),
		assertedArrays: make(map[*expr.Array]bool),
	}
}

// StackLen reports the number of constraint frames currently mirrored
// (excluding nothing — every pushed constraint, including a prior query's
// negated expression, counts).
func (a *Adapter) StackLen() uint { return a.frames.Len() }

// StackExprs returns the mirrored stack's constraints in push order (bottom
// to top), for the pool's common-prefix dispatch computation.
func (a *Adapter) StackExprs() expr.ConstraintSet {
	return expr.ConstraintSet(a.stackExprs())
}

// stackExprs returns the mirrored stack's constraints in push order
// (bottom to top).
func (a *Adapter) stackExprs() []expr.Expr {
	n := a.frames.Len()
	result := make([]expr.Expr, n)

	for i := uint(0); i < n; i++ {
		result[i] = a.frames.Peek(n - 1 - i).constraint
	}

	return result
}

func (a *Adapter) context() (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.Background(), func() {}
	}

	return context.WithTimeout(context.Background(), a.timeout)
}

func constantArrayAxiom(array *expr.Array) expr.Expr {
	axiom := expr.True()

	for i := uint(0); i < array.Size; i++ {
		value, _ := array.ConstantValue(i)
		read := expr.NewRead(expr.UpdateList{Root: array}, expr.NewConstant(uint64(i), arrayIndexWidth))
		axiom = expr.CreateAnd(axiom, expr.CreateEq(read, expr.NewConstant(uint64(value), 8)))
	}

	return axiom
}

// pushFrame asserts c, plus the axioms of any constant array c references
// for the first time anywhere on the stack, recording both as one frame.
func (a *Adapter) pushFrame(ctx context.Context, c expr.Expr) error {
	if err := a.backend.Push(ctx, c); err != nil {
		return err
	}

	var aux []*expr.Array

	seen := make(map[*expr.Array]bool)

	for _, re := range expr.FindReads(c) {
		array := re.Updates.Root
		if seen[array] {
			continue
		}

		seen[array] = true

		if !array.IsConstantArray() || a.assertedArrays[array] {
			continue
		}

		if err := a.backend.Push(ctx, constantArrayAxiom(array)); err != nil {
			return err
		}

		a.assertedArrays[array] = true

		aux = append(aux, array)
	}

	a.frames.Push(&frame{constraint: c, auxArrays: aux})

	return nil
}

// popTo pops frames until exactly target remain.
func (a *Adapter) popTo(ctx context.Context, target uint) error {
	for a.frames.Len() > target {
		f := a.frames.Pop()

		if err := a.backend.Pop(ctx, uint(1+len(f.auxArrays))); err != nil {
			return err
		}

		for _, array := range f.auxArrays {
			delete(a.assertedArrays, array)
		}
	}

	return nil
}

func commonPrefixLen(stackExprs []expr.Expr, target expr.ConstraintSet) uint {
	n := len(stackExprs)
	if len(target) < n {
		n = len(target)
	}

	i := 0
	for i < n && stackExprs[i].Equals(target[i]) {
		i++
	}

	return uint(i)
}

// internalRun implements spec §4.6's incremental query protocol: reconcile
// the mirrored stack with query.Unsimplified, push the negated expression,
// check-sat, and (if objects is non-nil) extract a per-array byte model.
func (a *Adapter) internalRun(query *expr.Query, objects []*expr.Array) (values [][]byte, hasSolution bool, success bool) {
	ctx, cancel := a.context()
	defer cancel()
	defer a.backend.Reset()

	switch a.mode {
	case ModeNonIncremental:
		if err := a.popTo(ctx, 0); err != nil {
			a.status = solver.StatusFailure
			return nil, false, false
		}

		for _, c := range query.Unsimplified {
			if err := a.pushFrame(ctx, c); err != nil {
				a.status = solver.StatusFailure
				return nil, false, false
			}
		}
	default: // ModeIncremental
		prefix := commonPrefixLen(a.stackExprs(), query.Unsimplified)

		if err := a.popTo(ctx, prefix); err != nil {
			a.status = solver.StatusFailure
			return nil, false, false
		}

		for _, c := range query.Unsimplified[prefix:] {
			if err := a.pushFrame(ctx, c); err != nil {
				a.status = solver.StatusFailure
				return nil, false, false
			}
		}
	}

	if err := a.pushFrame(ctx, expr.CreateNot(query.Expr)); err != nil {
		a.status = solver.StatusFailure
		return nil, false, false
	}

	status, err := a.backend.CheckSat(ctx)
	if err != nil {
		a.status = solver.StatusFailure
		return nil, false, false
	}

	switch status {
	case StatusSat:
		a.status = solver.StatusSuccessSolvable
		return a.extractModel(ctx, objects)
	case StatusUnsat:
		a.status = solver.StatusSuccessUnsolvable
		return nil, false, true
	case StatusTimeout:
		a.status = solver.StatusTimeout
		return nil, false, false
	case StatusInterrupted:
		a.status = solver.StatusInterrupted
		signals.RaiseInterrupt()

		return nil, false, false
	default:
		a.status = solver.StatusFailure
		return nil, false, false
	}
}

func (a *Adapter) extractModel(ctx context.Context, objects []*expr.Array) ([][]byte, bool, bool) {
	if objects == nil {
		return nil, true, true
	}

	values := make([][]byte, len(objects))

	for i, array := range objects {
		data := make([]byte, array.Size)

		for offset := uint(0); offset < array.Size; offset++ {
			b, err := a.backend.ModelByte(ctx, array, offset)
			if err != nil {
				a.status = solver.StatusFailure
				return nil, false, false
			}

			data[offset] = b
		}

		values[i] = data
	}

	if a.validateModels {
		assignment := expr.NewAssignment(objects, values)

		for _, c := range a.stackExprs() {
			if !assignment.Evaluate(c).IsTrue() {
				panic(fmt.Sprintf("adapter: extracted model does not satisfy asserted constraint %s", c))
			}
		}
	}

	return values, true, true
}

// ComputeValidity is not implemented by this layer: no concrete backend in
// the original lineage implements it either, since Validity is always
// decided by composing two ComputeTruth calls above the adapter.
func (a *Adapter) ComputeValidity(*expr.Query) (expr.Validity, bool) {
	return expr.ValidityUnknown, false
}

// ComputeTruth runs the incremental protocol; the query is valid iff no
// satisfying assignment of its negation exists.
func (a *Adapter) ComputeTruth(query *expr.Query) (bool, bool) {
	_, hasSolution, success := a.internalRun(query, nil)
	if !success {
		return false, false
	}

	return !hasSolution, true
}

// ComputeValue finds the symbolic arrays query.Expr reads, solves for them
// (ignoring query.Expr itself — only query.Constraints must hold), and
// evaluates query.Expr locally against that witness, rather than issuing a
// second query to the backend.
func (a *Adapter) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	objects := arraysOf(expr.FindReads(query.Expr))

	probe := expr.Query{Constraints: query.Constraints, Unsimplified: query.Unsimplified, Expr: expr.False()}

	values, hasSolution, success := a.internalRun(&probe, objects)
	if !success || !hasSolution {
		return nil, false
	}

	assignment := expr.NewAssignment(objects, values)

	return assignment.Evaluate(query.Expr), true
}

// ComputeInitialValues runs the incremental protocol, extracting a byte
// model for objects when satisfiable.
func (a *Adapter) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	return a.internalRun(query, objects)
}

func arraysOf(reads []*expr.ReadExpr) []*expr.Array {
	seen := make(map[*expr.Array]bool)

	var result []*expr.Array

	for _, re := range reads {
		array := re.Updates.Root
		if !seen[array] {
			seen[array] = true
			result = append(result, array)
		}
	}

	return result
}

// GetOperationStatusCode reports the outcome of the most recent internalRun.
func (a *Adapter) GetOperationStatusCode() solver.RunStatus { return a.status }

// GetConstraintLog renders query's constraints (plus its negated
// expression) as a sequence of SMT-LIBv2-style assert forms, without
// touching the mirrored stack.
func (a *Adapter) GetConstraintLog(query *expr.Query) string {
	log := ""

	for _, c := range query.Unsimplified {
		log += fmt.Sprintf("(assert %s)\n", c.String())
	}

	log += fmt.Sprintf("(assert %s)\n", expr.CreateNot(query.Expr).String())

	return log
}

// SetCoreSolverTimeout configures the per-check-sat timeout; 0 disables it.
func (a *Adapter) SetCoreSolverTimeout(timeout time.Duration) {
	a.timeout = timeout
	a.backend.SetTimeout(timeout)
}
