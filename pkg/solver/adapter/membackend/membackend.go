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

// Package membackend is a small in-process stand-in for the out-of-process
// decision procedure adapter.Adapter expects: it decides satisfiability by
// randomized trial search over the byte-assignments of the symbolic arrays
// a query references, rather than by delegating to a real SMT engine. It
// exists for tests and the cmd/ demo, where wiring an actual external
// procedure is out of scope.
package membackend

import (
	"context"
	"math/rand"
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver/adapter"
	"github.com/solverstack/core/pkg/util/collection/hash"
)

// maxTrials bounds the search; exhausting it before the candidate space is
// covered is reported as adapter.StatusTimeout, exactly as a real backend
// would report giving up.
const maxTrials = 1 << 18

// Backend is the in-memory satisfiability search. It is safe for use by one
// adapter.Adapter at a time (the adapter itself is not concurrency-safe).
type Backend struct {
	stack []expr.Expr
	model expr.Assignment
	rng   *rand.Rand
}

var _ adapter.Backend = (*Backend)(nil)

// New constructs an empty Backend. The search is seeded deterministically
// so results are reproducible across runs.
func New() *Backend {
	return &Backend{rng: rand.New(rand.NewSource(1))}
}

// Push appends e to the asserted stack.
func (b *Backend) Push(_ context.Context, e expr.Expr) error {
	b.stack = append(b.stack, e)
	return nil
}

// Pop removes the n most recently pushed expressions.
func (b *Backend) Pop(_ context.Context, n uint) error {
	b.stack = b.stack[:uint(len(b.stack))-n]
	return nil
}

// Reset clears the extracted model; the assertion stack is untouched.
func (b *Backend) Reset() { b.model = expr.Assignment{} }

// SetTimeout is a no-op: the search budget is a fixed trial count, not a
// wall-clock deadline, since this backend never blocks on I/O.
func (b *Backend) SetTimeout(time.Duration) {}

// CheckSat searches for a byte-assignment of every symbolic (non-constant)
// array referenced anywhere on the stack that satisfies every pushed
// expression, trying the all-zero vector first and then uniformly random
// vectors until one satisfies the conjunction or the trial budget runs out.
// Once every vector of the candidate space has been rejected, which only a
// small space allows within the budget, the stack is reported unsatisfiable.
// A tried set skips re-evaluating a candidate the search already rejected,
// since small arrays make repeats likely long before maxTrials is spent.
func (b *Backend) CheckSat(context.Context) (adapter.Status, error) {
	arrays := b.symbolicArrays()

	candidate := expr.Zero(arrays)
	if b.satisfies(candidate) {
		b.model = candidate
		return adapter.StatusSat, nil
	}

	if len(arrays) == 0 {
		return adapter.StatusUnsat, nil
	}

	tried := newTriedSet()
	tried.add(candidateKey(arrays, candidate))

	// The candidate space holds 2^bits vectors; when that count fits in a
	// uint64, having rejected all of them proves the stack unsatisfiable.
	bits := uint(0)
	for _, a := range arrays {
		bits += 8 * a.Size
	}

	distinct := uint64(1)

	for trial := 0; trial < maxTrials; trial++ {
		if bits < 64 && distinct == uint64(1)<<bits {
			return adapter.StatusUnsat, nil
		}

		candidate = b.randomAssignment(arrays)

		if tried.add(candidateKey(arrays, candidate)) {
			continue
		}

		distinct++

		if b.satisfies(candidate) {
			b.model = candidate
			return adapter.StatusSat, nil
		}
	}

	return adapter.StatusTimeout, nil
}

// candidateKey packs one candidate's byte vectors (in arrays order) into a
// single hashable, comparable key.
func candidateKey(arrays []*expr.Array, assignment expr.Assignment) hash.Array[hash.BytesKey] {
	keys := make([]hash.BytesKey, len(arrays))

	for i, a := range arrays {
		b, _ := assignment.Bytes(a)
		keys[i] = hash.NewBytesKey(b)
	}

	return hash.NewArray(keys)
}

// triedSet is a hash.Hasher-bucketed set, the same collision-safe pattern
// cache.Solver uses for query results: Hash narrows to a bucket, Equals
// resolves any collision within it.
type triedSet struct {
	buckets map[uint64][]hash.Array[hash.BytesKey]
}

func newTriedSet() *triedSet {
	return &triedSet{buckets: make(map[uint64][]hash.Array[hash.BytesKey])}
}

// add reports whether k was already present, inserting it if not.
func (t *triedSet) add(k hash.Array[hash.BytesKey]) bool {
	h := k.Hash()

	for _, e := range t.buckets[h] {
		if e.Equals(k) {
			return true
		}
	}

	t.buckets[h] = append(t.buckets[h], k)

	return false
}

// ModelByte looks up array[offset] in the most recent satisfying model.
func (b *Backend) ModelByte(_ context.Context, array *expr.Array, offset uint) (byte, error) {
	data, _ := b.model.Bytes(array)
	return data[offset], nil
}

func (b *Backend) satisfies(assignment expr.Assignment) bool {
	for _, c := range b.stack {
		if !assignment.Evaluate(c).IsTrue() {
			return false
		}
	}

	return true
}

func (b *Backend) randomAssignment(arrays []*expr.Array) expr.Assignment {
	values := make([][]byte, len(arrays))

	for i, a := range arrays {
		bytes := make([]byte, a.Size)

		for j := range bytes {
			bytes[j] = byte(b.rng.Intn(256))
		}

		values[i] = bytes
	}

	return expr.NewAssignment(arrays, values)
}

func (b *Backend) symbolicArrays() []*expr.Array {
	seen := make(map[*expr.Array]bool)

	var result []*expr.Array

	for _, c := range b.stack {
		for _, re := range expr.FindReads(c) {
			array := re.Updates.Root
			if seen[array] || array.IsConstantArray() {
				continue
			}

			seen[array] = true

			result = append(result, array)
		}
	}

	return result
}
