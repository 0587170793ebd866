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

// unaryExpr covers Not, the only unary connective this core needs.
type unaryExpr struct {
	kind  Kind
	arg   Expr
	width Width
}

var _ Expr = (*unaryExpr)(nil)

// CreateNot builds the logical negation of a 1-bit expression. Mirrors
// Expr::createIsZero's role as the building block for mustBeFalse and for
// negating a query for the pool's assertion stack.
func CreateNot(e Expr) Expr {
	if ce, ok := AsConstant(e); ok {
		if ce.IsTrue() {
			return False()
		}

		return True()
	}

	if ne, ok := e.(*unaryExpr); ok && ne.kind == Not {
		return ne.arg
	}

	return &unaryExpr{kind: Not, arg: e, width: e.Width()}
}

func (u *unaryExpr) Kind() Kind       { return u.kind }
func (u *unaryExpr) Width() Width     { return u.width }
func (u *unaryExpr) Children() []Expr { return []Expr{u.arg} }
func (u *unaryExpr) Hash() uint64     { return combineHash(u.kind, u.width, u.arg.Hash()) }

func (u *unaryExpr) Equals(other Expr) bool {
	ou, ok := other.(*unaryExpr)
	return ok && ou.kind == u.kind && ou.arg.Equals(u.arg)
}

func (u *unaryExpr) Compare(other Expr) int {
	if k := compareKind(u, other); k != 0 {
		return k
	}

	return u.arg.Compare(other.(*unaryExpr).arg)
}

func (u *unaryExpr) String() string { return fmt.Sprintf("%s(%s)", u.kind, u.arg) }

// binExpr covers every binary operator in the language: the two boolean
// connectives, the three comparisons (result width 1), and the arithmetic
// / bitwise / shift ops (result width == operand width).
type binExpr struct {
	kind        Kind
	left, right Expr
	width       Width
}

var _ Expr = (*binExpr)(nil)

func sameWidthBin(kind Kind, l, r Expr) Expr {
	if l.Width() != r.Width() {
		panic(fmt.Sprintf("%s: operand width mismatch (%d vs %d)", kind, l.Width(), r.Width()))
	}

	return &binExpr{kind: kind, left: l, right: r, width: l.Width()}
}

func boolBin(kind Kind, l, r Expr) Expr {
	return &binExpr{kind: kind, left: l, right: r, width: BoolWidth}
}

// CreateAnd builds a 1-bit conjunction.
func CreateAnd(l, r Expr) Expr { return boolBin(And, l, r) }

// CreateOr builds a 1-bit disjunction.
func CreateOr(l, r Expr) Expr { return boolBin(Or, l, r) }

// CreateXor builds a bitwise exclusive-or of equal-width operands.
func CreateXor(l, r Expr) Expr { return sameWidthBin(Xor, l, r) }

// CreateEq builds an equality comparison; result is always 1 bit.
func CreateEq(l, r Expr) Expr {
	if l.Width() != r.Width() {
		panic(fmt.Sprintf("Eq: operand width mismatch (%d vs %d)", l.Width(), r.Width()))
	}
	// Canonical ordering: put the smaller operand on the left so that Eq(a,b)
	// and Eq(b,a) hash and compare identically, matching the cache's
	// assumption that structurally-equal formulas are byte-for-byte equal.
	if l.Compare(r) > 0 {
		l, r = r, l
	}

	return boolBin(Eq, l, r)
}

// CreateUlt builds an unsigned less-than comparison.
func CreateUlt(l, r Expr) Expr { return boolBin(Ult, l, r) }

// CreateUle builds an unsigned less-than-or-equal comparison.
func CreateUle(l, r Expr) Expr { return boolBin(Ule, l, r) }

// CreateAdd builds equal-width unsigned addition (wrapping).
func CreateAdd(l, r Expr) Expr { return sameWidthBin(Add, l, r) }

// CreateSub builds equal-width unsigned subtraction (wrapping).
func CreateSub(l, r Expr) Expr { return sameWidthBin(Sub, l, r) }

// CreateMul builds equal-width unsigned multiplication (wrapping).
func CreateMul(l, r Expr) Expr { return sameWidthBin(Mul, l, r) }

// CreateShl builds a left shift of l by r (both same width; result width ==
// operand width).
func CreateShl(l, r Expr) Expr { return sameWidthBin(Shl, l, r) }

// CreateLShr builds a logical right shift of l by r.
func CreateLShr(l, r Expr) Expr { return sameWidthBin(LShr, l, r) }

func (b *binExpr) Kind() Kind       { return b.kind }
func (b *binExpr) Width() Width     { return b.width }
func (b *binExpr) Children() []Expr { return []Expr{b.left, b.right} }

func (b *binExpr) Hash() uint64 {
	return combineHash(b.kind, b.width, b.left.Hash(), b.right.Hash())
}

func (b *binExpr) Equals(other Expr) bool {
	ob, ok := other.(*binExpr)
	return ok && ob.kind == b.kind && ob.left.Equals(b.left) && ob.right.Equals(b.right)
}

func (b *binExpr) Compare(other Expr) int {
	if k := compareKind(b, other); k != 0 {
		return k
	}

	return compareChildren(b, other)
}

func (b *binExpr) String() string {
	return fmt.Sprintf("%s(%s, %s)", b.kind, b.left, b.right)
}

// selectExpr is a ternary if-then-else, e.g. "cond ? t : f".
type selectExpr struct {
	cond, t, f Expr
}

var _ Expr = (*selectExpr)(nil)

// CreateSelect builds a conditional selection between two equal-width
// values.
func CreateSelect(cond, t, f Expr) Expr {
	if t.Width() != f.Width() {
		panic("Select: branch width mismatch")
	}

	if ce, ok := AsConstant(cond); ok {
		if ce.IsTrue() {
			return t
		}

		return f
	}

	return &selectExpr{cond: cond, t: t, f: f}
}

func (s *selectExpr) Kind() Kind       { return Select }
func (s *selectExpr) Width() Width     { return s.t.Width() }
func (s *selectExpr) Children() []Expr { return []Expr{s.cond, s.t, s.f} }

func (s *selectExpr) Hash() uint64 {
	return combineHash(Select, s.Width(), s.cond.Hash(), s.t.Hash(), s.f.Hash())
}

func (s *selectExpr) Equals(other Expr) bool {
	os, ok := other.(*selectExpr)
	return ok && os.cond.Equals(s.cond) && os.t.Equals(s.t) && os.f.Equals(s.f)
}

func (s *selectExpr) Compare(other Expr) int {
	if k := compareKind(s, other); k != 0 {
		return k
	}

	return compareChildren(s, other)
}

func (s *selectExpr) String() string {
	return fmt.Sprintf("Select(%s, %s, %s)", s.cond, s.t, s.f)
}
