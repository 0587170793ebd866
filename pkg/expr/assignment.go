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

import "fmt"

// Assignment is a finite map from Array to a concrete byte-vector of length
// Array.Size, as produced by computeInitialValues and consumed by the
// partitioner when stitching sub-problem witnesses back together.
type Assignment struct {
	values map[*Array][]byte
}

// NewAssignment builds an assignment from parallel slices of arrays and
// their byte-vectors, as returned by a Backend's model extraction.
func NewAssignment(arrays []*Array, values [][]byte) Assignment {
	m := make(map[*Array][]byte, len(arrays))
	for i, a := range arrays {
		m[a] = values[i]
	}

	return Assignment{values: m}
}

// Zero builds an assignment mapping every array in arrays to an all-zero
// vector of its declared size. Used by the partitioner as the "default"
// witness for arrays a sub-problem's factor never referenced.
func Zero(arrays []*Array) Assignment {
	m := make(map[*Array][]byte, len(arrays))
	for _, a := range arrays {
		m[a] = make([]byte, a.Size)
	}

	return Assignment{values: m}
}

// Merge returns a new assignment containing every binding from both
// receivers. Later (other) bindings win on key collision, though the
// partitioner never calls Merge with overlapping array sets (factors are,
// by construction, disjoint over Arrays).
func (a Assignment) Merge(other Assignment) Assignment {
	m := make(map[*Array][]byte, len(a.values)+len(other.values))

	for k, v := range a.values {
		m[k] = v
	}

	for k, v := range other.values {
		m[k] = v
	}

	return Assignment{values: m}
}

// Bytes returns the byte vector bound to array, and whether a binding
// exists.
func (a Assignment) Bytes(array *Array) ([]byte, bool) {
	b, ok := a.values[array]
	return b, ok
}

// Evaluate interprets e under this assignment, constant-folding the entire
// tree. It panics if e references an array cell for which neither this
// assignment nor the array's own constant contents provide a value — that
// is an invariant violation (an under-specified witness), not a normal
// failure mode.
func (a Assignment) Evaluate(e Expr) *ConstantExpr {
	if ce, ok := AsConstant(e); ok {
		return ce
	}

	switch n := e.(type) {
	case *ReadExpr:
		return a.evaluateRead(n)
	case *unaryExpr:
		v := a.Evaluate(n.arg).Value()
		return NewConstant(^v, n.width) // Not is the only unary op
	case *binExpr:
		return a.evaluateBin(n)
	case *selectExpr:
		if a.Evaluate(n.cond).IsTrue() {
			return a.Evaluate(n.t)
		}

		return a.Evaluate(n.f)
	default:
		panic(fmt.Sprintf("evaluate: unsupported expression %s", e))
	}
}

func (a Assignment) evaluateRead(r *ReadExpr) *ConstantExpr {
	idx := a.Evaluate(r.Index).Value()
	// Walk the update list newest-first; the first write to this exact
	// concrete index wins.
	for n := r.Updates.Head; n != nil; n = n.Next {
		if ice, ok := AsConstant(n.Index); ok && ice.Value() == idx {
			return a.Evaluate(n.Value)
		}
		// A symbolic write's index might alias `idx` under this very
		// assignment; evaluate it to be sure before moving on.
		if a.Evaluate(n.Index).Value() == idx {
			return a.Evaluate(n.Value)
		}
	}

	if v, ok := r.Updates.Root.ConstantValue(uint(idx)); ok {
		return NewConstant(uint64(v), 8)
	}

	if bytes, ok := a.Bytes(r.Updates.Root); ok && idx < uint64(len(bytes)) {
		return NewConstant(uint64(bytes[idx]), 8)
	}

	panic(fmt.Sprintf("evaluate: no binding for %s[%d]", r.Updates.Root.Name, idx))
}

func (a Assignment) evaluateBin(b *binExpr) *ConstantExpr {
	l, r := a.Evaluate(b.left).Value(), a.Evaluate(b.right).Value()

	switch b.kind {
	case And:
		return boolConst(l != 0 && r != 0)
	case Or:
		return boolConst(l != 0 || r != 0)
	case Xor:
		return NewConstant(l^r, b.width)
	case Eq:
		return boolConst(l == r)
	case Ult:
		return boolConst(l < r)
	case Ule:
		return boolConst(l <= r)
	case Add:
		return NewConstant(l+r, b.width)
	case Sub:
		return NewConstant(l-r, b.width)
	case Mul:
		return NewConstant(l*r, b.width)
	case Shl:
		return NewConstant(l<<r, b.width)
	case LShr:
		return NewConstant(l>>r, b.width)
	default:
		panic(fmt.Sprintf("evaluate: unsupported binary kind %s", b.kind))
	}
}

func boolConst(v bool) *ConstantExpr {
	if v {
		return True()
	}

	return False()
}
