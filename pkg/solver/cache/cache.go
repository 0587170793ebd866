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

// Package cache implements the query-result cache layer: a computeTruth
// result is remembered against a canonicalized (constraints, expr) key, so a
// later query differing only by negation reuses the same entry.
package cache

import (
	"time"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
	"github.com/solverstack/core/pkg/solver/stats"
)

// entry is one cache slot: the exact (constraints, canonical query) pair it
// was stored under, plus the partial-validity result. Bucket collisions
// (same combined hash, different content) are resolved by walking the
// bucket and checking Equal/Equals, never by trusting the hash alone.
type entry struct {
	constraints expr.ConstraintSet
	query       expr.Expr
	result      expr.PartialValidity
}

// Solver is the query-result cache layer. It only ever answers computeTruth
// from its own state; computeValue and computeInitialValues always bypass
// to next, since a satisfying witness isn't implied by a cached
// true/false verdict.
type Solver struct {
	next    solver.Impl
	stats   *stats.Stats
	buckets map[uint64][]entry
}

var _ solver.Impl = (*Solver)(nil)

// New wraps next with a query-result cache reporting into st.
func New(next solver.Impl, st *stats.Stats) *Solver {
	return &Solver{next: next, stats: st, buckets: make(map[uint64][]entry)}
}

// canonicalize picks the "smaller" of e and ¬e (by Expr.Compare) as the
// cache key, so a query and its negation share one entry. negated reports
// whether e itself was the one negated to reach the canonical form.
func canonicalize(e expr.Expr) (canonical expr.Expr, negated bool) {
	notE := expr.CreateNot(e)
	if e.Compare(notE) < 0 {
		return e, false
	}

	return notE, true
}

func bucketKey(constraints expr.ConstraintSet, canonical expr.Expr) uint64 {
	return constraints.Hash() ^ canonical.Hash()
}

func (s *Solver) lookup(query *expr.Query) (expr.PartialValidity, bool) {
	canonical, negated := canonicalize(query.Expr)
	key := bucketKey(query.Constraints, canonical)

	for _, e := range s.buckets[key] {
		if e.constraints.Equal(query.Constraints) && e.query.Equals(canonical) {
			if negated {
				return e.result.Negate(), true
			}

			return e.result, true
		}
	}

	return 0, false
}

func (s *Solver) insert(query *expr.Query, result expr.PartialValidity) {
	canonical, negated := canonicalize(query.Expr)
	key := bucketKey(query.Constraints, canonical)

	stored := result
	if negated {
		stored = result.Negate()
	}

	// A refinement replaces the existing entry, so a bucket never holds two
	// entries for the same (constraints, canonical query) pair.
	for i, e := range s.buckets[key] {
		if e.constraints.Equal(query.Constraints) && e.query.Equals(canonical) {
			s.buckets[key][i].result = stored
			return
		}
	}

	s.buckets[key] = append(s.buckets[key], entry{
		constraints: query.Constraints,
		query:       canonical,
		result:      stored,
	})
}

// ComputeValidity is not served by this layer: KLEE's own CachingSolver
// never implements it either, since every engine-facing Validity query is
// decomposed into two computeTruth calls (on expr and its negation) above
// this layer. Panic mirrors the original's assert(0).
func (s *Solver) ComputeValidity(*expr.Query) (expr.Validity, bool) {
	panic("cache: ComputeValidity must not be called directly; decompose into ComputeTruth calls")
}

// ComputeTruth answers from the cache when possible, falling through to
// next on a miss or on a cached MayBeTrue (which alone doesn't resolve
// truth: a satisfying false assignment may also exist).
func (s *Solver) ComputeTruth(query *expr.Query) (bool, bool) {
	s.stats.Queries++

	cached, hit := s.lookup(query)
	if hit && cached != expr.MayBeTrue {
		s.stats.QueryCacheHits++
		return cached == expr.MustBeTrue, true
	}

	s.stats.QueryCacheMisses++

	isValid, success := s.next.ComputeTruth(query)
	if !success {
		return false, false
	}

	var result expr.PartialValidity

	switch {
	case isValid:
		result = expr.MustBeTrue
	case hit:
		// A MayBeTrue hit plus a non-valid recheck means both a true and a
		// false assignment exist.
		result = expr.TrueOrFalse
	default:
		result = expr.MayBeFalse
	}

	s.insert(query, result)

	return isValid, true
}

// ComputeValue always bypasses the cache: a cached truth verdict carries no
// witness value.
func (s *Solver) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	s.stats.Queries++
	s.stats.QueryCacheMisses++
	s.stats.QueryCounterexamples++

	return s.next.ComputeValue(query)
}

// ComputeInitialValues always bypasses the cache, for the same reason as
// ComputeValue.
func (s *Solver) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	s.stats.Queries++
	s.stats.QueryCacheMisses++
	s.stats.QueryCounterexamples++

	return s.next.ComputeInitialValues(query, objects)
}

// GetOperationStatusCode delegates to next: this layer never itself fails.
func (s *Solver) GetOperationStatusCode() solver.RunStatus { return s.next.GetOperationStatusCode() }

// GetConstraintLog delegates to next.
func (s *Solver) GetConstraintLog(query *expr.Query) string { return s.next.GetConstraintLog(query) }

// SetCoreSolverTimeout delegates to next.
func (s *Solver) SetCoreSolverTimeout(timeout time.Duration) { s.next.SetCoreSolverTimeout(timeout) }
