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
package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// IndependentElementSet is one factor of a constraint set: the Arrays (and,
// for arrays touched only at concrete offsets, the precise indices) it
// depends on, plus the expressions that belong to this factor. Two factors
// with disjoint footprints can be solved completely independently.
//
// Invariant: an Array never appears in both Elements and WholeObjects for
// the same set.
type IndependentElementSet struct {
	// Elements maps an array accessed only at concrete, known offsets to the
	// set of offsets touched.
	Elements map[*Array]*bitset.BitSet
	// WholeObjects is the set of arrays touched symbolically ("whole
	// object"), i.e. at least one read used a non-constant index.
	WholeObjects map[*Array]bool
	// Exprs holds every expression folded into this factor so far.
	Exprs []Expr
}

// NewIndependentElementSet builds the singleton factor for one expression,
// by finding every array cell (or whole array) it reads.
func NewIndependentElementSet(e Expr) *IndependentElementSet {
	s := &IndependentElementSet{
		Elements:     make(map[*Array]*bitset.BitSet),
		WholeObjects: make(map[*Array]bool),
		Exprs:        []Expr{e},
	}

	for _, re := range findReads(e) {
		array := re.Updates.Root

		// Reads of a constant array with no layered writes don't alias
		// anything: their value is fixed and doesn't depend on any other
		// expression's assignment.
		if array.IsConstantArray() && re.Updates.Head == nil {
			continue
		}

		if s.WholeObjects[array] {
			continue
		}

		if ce, ok := AsConstant(re.Index); ok {
			bs, ok := s.Elements[array]
			if !ok {
				bs = bitset.New(array.Size)
				s.Elements[array] = bs
			}

			bs.Set(uint(ce.Value()))
		} else {
			delete(s.Elements, array)
			s.WholeObjects[array] = true
		}
	}

	return s
}

// Intersects reports whether s and other share any array footprint: a
// common whole-object array, a whole-object array in one that appears
// (concretely or symbolically) in the other, or a common concrete
// (array, index) pair.
func (s *IndependentElementSet) Intersects(other *IndependentElementSet) bool {
	for a := range s.WholeObjects {
		if other.WholeObjects[a] {
			return true
		}

		if _, ok := other.Elements[a]; ok {
			return true
		}
	}

	for a, bs := range s.Elements {
		if other.WholeObjects[a] {
			return true
		}

		if obs, ok := other.Elements[a]; ok && bs.IntersectionCardinality(obs) > 0 {
			return true
		}
	}

	return false
}

// Add merges other into s, returning true iff s's footprint actually grew.
// A concrete-index array that other touches symbolically is promoted to a
// whole object in s, matching the constructor's own promotion rule.
func (s *IndependentElementSet) Add(other *IndependentElementSet) bool {
	s.Exprs = append(s.Exprs, other.Exprs...)

	modified := false

	for a := range other.WholeObjects {
		if _, ok := s.Elements[a]; ok {
			modified = true
			delete(s.Elements, a)
			s.WholeObjects[a] = true
		} else if !s.WholeObjects[a] {
			modified = true
			s.WholeObjects[a] = true
		}
	}

	for a, obs := range other.Elements {
		if s.WholeObjects[a] {
			continue
		}

		if sbs, ok := s.Elements[a]; ok {
			before := sbs.Count()
			sbs.InPlaceUnion(obs)

			if sbs.Count() != before {
				modified = true
			}
		} else {
			modified = true
			s.Elements[a] = obs.Clone()
		}
	}

	return modified
}

// ReferencedArrays returns every array this factor depends on, concretely
// or symbolically, in a deterministic (ID) order.
func (s *IndependentElementSet) ReferencedArrays() []*Array {
	result := make([]*Array, 0, len(s.Elements)+len(s.WholeObjects))

	for a := range s.Elements {
		result = append(result, a)
	}

	for a := range s.WholeObjects {
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })

	return result
}

func (s *IndependentElementSet) String() string {
	var parts []string

	for a := range s.WholeObjects {
		parts = append(parts, "MO"+a.Name)
	}

	for a, bs := range s.Elements {
		parts = append(parts, fmt.Sprintf("MO%s:%v", a.Name, bs))
	}

	sort.Strings(parts)

	return "{" + strings.Join(parts, ", ") + "}"
}

// ComputeFactors partitions constraints (plus the negation of expr) into
// maximal independent factors. This is the full partition used for
// diagnostics/testing; production queries use GetIndependentConstraints,
// which only computes the closure relevant to one target expression.
func ComputeFactors(query Query) []*IndependentElementSet {
	factors := []*IndependentElementSet{NewIndependentElementSet(CreateNot(query.Expr))}

	for _, c := range query.Constraints {
		factors = append(factors, NewIndependentElementSet(c))
	}

	return mergeToFixpoint(factors)
}

func mergeToFixpoint(factors []*IndependentElementSet) []*IndependentElementSet {
	for {
		var (
			done    []*IndependentElementSet
			changed = false
		)

		for len(factors) > 0 {
			cur := factors[0]
			factors = factors[1:]

			var keep []*IndependentElementSet

			for _, cmp := range factors {
				if cur.Intersects(cmp) {
					if cur.Add(cmp) {
						changed = true
					}
				} else {
					keep = append(keep, cmp)
				}
			}

			done = append(done, cur)
			factors = keep
		}

		factors = done

		if !changed {
			return factors
		}
	}
}

// GetIndependentConstraints computes the minimal sub-query sufficient to
// decide query.Expr: it seeds the closure with query.Expr's own factor,
// then repeatedly absorbs any constraint whose factor intersects the
// growing closure. The returned ConstraintSet is in absorption (discovery)
// order, not query.Constraints' original order.
func GetIndependentConstraints(query Query) (*IndependentElementSet, ConstraintSet) {
	return absorbToClosure(NewIndependentElementSet(CreateNot(query.Expr)), query.Constraints)
}

// touches reports whether factor's footprint includes a, concretely or
// symbolically.
func touches(factor *IndependentElementSet, a *Array) bool {
	if factor.WholeObjects[a] {
		return true
	}

	_, ok := factor.Elements[a]

	return ok
}

// GetIndependentConstraintsForArrays partitions constraints into maximal
// independent factors (as ComputeFactors does, but without a query
// expression to seed with), then unions every factor touching any of
// objects into the returned closure. An object absent from every factor
// is independent of all of constraints; the caller is expected to assign
// it directly rather than pass it to an underlying solver.
func GetIndependentConstraintsForArrays(constraints ConstraintSet, objects []*Array) (*IndependentElementSet, ConstraintSet) {
	factors := make([]*IndependentElementSet, len(constraints))
	for i, c := range constraints {
		factors[i] = NewIndependentElementSet(c)
	}

	factors = mergeToFixpoint(factors)

	closure := &IndependentElementSet{
		Elements:     make(map[*Array]*bitset.BitSet),
		WholeObjects: make(map[*Array]bool),
	}

	var (
		relevant ConstraintSet
		used     = make(map[*IndependentElementSet]bool)
	)

	for _, obj := range objects {
		for _, f := range factors {
			if used[f] {
				continue
			}

			if touches(f, obj) {
				used[f] = true

				closure.Add(f)
				relevant = append(relevant, f.Exprs...)
			}
		}
	}

	return closure, relevant
}

// absorbToClosure repeatedly folds any constraint whose factor intersects
// the growing closure into it, until a fixed point is reached.
func absorbToClosure(closure *IndependentElementSet, constraints ConstraintSet) (*IndependentElementSet, ConstraintSet) {
	type pending struct {
		constraint Expr
		elts       *IndependentElementSet
	}

	worklist := make([]pending, len(constraints))
	for i, c := range constraints {
		worklist[i] = pending{c, NewIndependentElementSet(c)}
	}

	var relevant ConstraintSet

	for {
		var (
			next = worklist[:0:0]
			done = true
		)

		for _, p := range worklist {
			if p.elts.Intersects(closure) {
				if closure.Add(p.elts) {
					done = false
				}

				relevant = append(relevant, p.constraint)
			} else {
				next = append(next, p)
			}
		}

		worklist = next

		if done {
			break
		}
	}

	return closure, relevant
}
