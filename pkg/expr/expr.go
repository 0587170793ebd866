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

import "github.com/solverstack/core/pkg/util/collection/hash"

// Expr is an immutable node in the expression DAG.  Equality and ordering
// are always structural; two distinct Go values satisfying Equals are
// interchangeable everywhere in the solver stack.  Expr satisfies
// hash.Hasher[Expr] so it can be used directly as a key in the collection
// types built on that contract.
type Expr interface {
	hash.Hasher[Expr]

	// Kind identifies the operator this node represents.
	Kind() Kind
	// Width returns the bit-width of values this expression produces.
	Width() Width
	// Compare imposes a total, deterministic order over expressions. It
	// returns <0, 0 or >0 exactly like bytes.Compare.  Used by the cache to
	// pick a canonical representative between an expression and its
	// negation.
	Compare(other Expr) int
	// Children returns the direct sub-expressions of this node, in
	// evaluation order.  Leaves (Constant, Read's index aside) return nil.
	Children() []Expr
	// String renders a debug form; never parsed back.
	String() string
}

// AsConstant reports whether e is (or reduces trivially to) a Constant,
// returning the constant node and true if so.
func AsConstant(e Expr) (*ConstantExpr, bool) {
	if ce, ok := e.(*ConstantExpr); ok {
		return ce, true
	}

	return nil, false
}

// compareKind orders by kind first, matching every constructor's use of
// Compare as a tie-break function.
func compareKind(a, b Expr) int {
	if a.Kind() != b.Kind() {
		if a.Kind() < b.Kind() {
			return -1
		}

		return 1
	}

	if a.Width() != b.Width() {
		if a.Width() < b.Width() {
			return -1
		}

		return 1
	}

	return 0
}

// compareChildren compares two node's children pairwise, falling back to
// comparing child-count when one is a prefix of the other (should not arise
// for nodes of identical kind/width, but keeps Compare total).
func compareChildren(a, b Expr) int {
	ac, bc := a.Children(), b.Children()
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if c := ac[i].Compare(bc[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(ac) < len(bc):
		return -1
	case len(ac) > len(bc):
		return 1
	default:
		return 0
	}
}
