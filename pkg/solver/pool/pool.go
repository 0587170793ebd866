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

// Package pool holds K independent adapter.Adapter instances, each with its
// own incremental assertion stack, and routes each query to whichever one
// shares the longest common prefix with the query's unsimplified
// constraints — reusing the external procedure's already-learned clauses
// instead of rebuilding its state from scratch.
package pool

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/solverstack/core/pkg/expr"
	"github.com/solverstack/core/pkg/solver"
)

// Member is the subset of adapter.Adapter the pool depends on, kept narrow
// so the pool can be tested against a fake without a real Backend.
type Member interface {
	solver.Impl
	StackLen() uint
	StackExprs() expr.ConstraintSet
}

// Pool dispatches queries across a fixed set of Members by longest common
// prefix with each member's mirrored stack, per spec §4.7.
type Pool struct {
	members       []Member
	percentLeeway float64
	warn          bool
	lru           []uint64
	clock         uint64
	previousID    int
}

// New constructs a pool over members, with the given percent-leeway for
// dispatch tie-breaking (spec §4.7 step 3) and whether to log a warning
// naming the chosen adapter per query (the pool-warn config option).
func New(members []Member, percentLeeway float64, warn bool) *Pool {
	return &Pool{
		members:       members,
		percentLeeway: percentLeeway,
		warn:          warn,
		lru:           make([]uint64, len(members)),
		previousID:    -1,
	}
}

var _ solver.Impl = (*Pool)(nil)

func commonPrefixLen(a, b expr.ConstraintSet) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	i := 0
	for i < n && a[i].Equals(b[i]) {
		i++
	}

	return i
}

// dispatch selects the member to route unsimplified to, per the four-step
// algorithm in spec §4.7: longest common prefix, percent-leeway tie among
// near-maximal prefix fractions, smallest current stack among those, lowest
// index as the final tie-break; LRU eviction when nothing shares a prefix.
func (p *Pool) dispatch(unsimplified expr.ConstraintSet) int {
	lcp := make([]int, len(p.members))
	maxLCP := 0

	for i, m := range p.members {
		lcp[i] = commonPrefixLen(m.StackExprs(), unsimplified)
		if lcp[i] > maxLCP {
			maxLCP = lcp[i]
		}
	}

	p.clock++

	if maxLCP == 0 {
		return p.evictLRU()
	}

	maxFraction := 0.0
	for i, m := range p.members {
		if f := prefixFraction(lcp[i], m.StackExprs(), unsimplified); f > maxFraction {
			maxFraction = f
		}
	}

	best := -1

	for i, m := range p.members {
		fraction := prefixFraction(lcp[i], m.StackExprs(), unsimplified)

		if maxFraction-fraction > p.percentLeeway {
			continue
		}

		if best == -1 || m.StackLen() < p.members[best].StackLen() {
			best = i
		}
	}

	p.lru[best] = p.clock

	return best
}

// prefixFraction is lcp as a fraction of the longer of the two sequences
// being compared, so a member whose stack runs well past the query scores
// lower for the frames it would have to pop, even when its raw lcp is the
// longest.
func prefixFraction(lcp int, stack expr.ConstraintSet, query expr.ConstraintSet) float64 {
	denom := len(stack)
	if len(query) > denom {
		denom = len(query)
	}

	if denom == 0 {
		return 1
	}

	return float64(lcp) / float64(denom)
}

func (p *Pool) evictLRU() int {
	oldest := 0

	for i := range p.members {
		if p.lru[i] < p.lru[oldest] {
			oldest = i
		}
	}

	p.lru[oldest] = p.clock

	return oldest
}

func (p *Pool) route(query *expr.Query) Member {
	i := p.dispatch(query.Unsimplified)
	p.previousID = i

	if p.warn {
		log.Warn("pool: dispatching query to adapter ", i, " (stack len ", p.members[i].StackLen(), ")")
	}

	return p.members[i]
}

// ComputeValidity is not served here: Validity is always composed above the
// pool from two ComputeTruth calls, exactly as for every other layer.
func (p *Pool) ComputeValidity(*expr.Query) (expr.Validity, bool) {
	return expr.ValidityUnknown, false
}

// ComputeTruth routes to the member sharing the longest stack prefix.
func (p *Pool) ComputeTruth(query *expr.Query) (bool, bool) {
	return p.route(query).ComputeTruth(query)
}

// ComputeValue routes to the member sharing the longest stack prefix.
func (p *Pool) ComputeValue(query *expr.Query) (*expr.ConstantExpr, bool) {
	return p.route(query).ComputeValue(query)
}

// ComputeInitialValues routes to the member sharing the longest stack prefix.
func (p *Pool) ComputeInitialValues(query *expr.Query, objects []*expr.Array) ([][]byte, bool, bool) {
	return p.route(query).ComputeInitialValues(query, objects)
}

// GetOperationStatusCode reports the status of the member most recently
// dispatched to.
func (p *Pool) GetOperationStatusCode() solver.RunStatus {
	if p.previousID < 0 {
		return solver.StatusUnknown
	}

	return p.members[p.previousID].GetOperationStatusCode()
}

// GetConstraintLog renders query via the most recently dispatched member, or
// the first member if none has been dispatched to yet.
func (p *Pool) GetConstraintLog(query *expr.Query) string {
	if p.previousID < 0 {
		return p.members[0].GetConstraintLog(query)
	}

	return p.members[p.previousID].GetConstraintLog(query)
}

// SetCoreSolverTimeout configures every member's timeout.
func (p *Pool) SetCoreSolverTimeout(timeout time.Duration) {
	for _, m := range p.members {
		m.SetCoreSolverTimeout(timeout)
	}
}
