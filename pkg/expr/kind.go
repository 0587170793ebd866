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

// Package expr provides the immutable expression DAG, array, and
// constraint-set types consumed by the solver stack.  Nodes are built
// bottom-up and never mutated once constructed; equality is always
// structural.
package expr

// Width is the bit-width of an expression or array cell.
type Width uint

// BoolWidth is the width of every formula passed as a Query.Expr.
const BoolWidth Width = 1

// Kind identifies the operator (or leaf) a node represents.
type Kind uint8

// The node kinds supported by the core.  This is a deliberately small
// bit-vector/array language: enough to express validity queries, array
// reads with update lists, and the comparisons getRange needs, without
// trying to be a general-purpose IR.
const (
	Constant Kind = iota
	Read
	Not
	And
	Or
	Xor
	Eq
	Ult
	Ule
	Add
	Sub
	Mul
	Shl
	LShr
	Select
)

var kindNames = [...]string{
	Constant: "Constant",
	Read:     "Read",
	Not:      "Not",
	And:      "And",
	Or:       "Or",
	Xor:      "Xor",
	Eq:       "Eq",
	Ult:      "Ult",
	Ule:      "Ule",
	Add:      "Add",
	Sub:      "Sub",
	Mul:      "Mul",
	Shl:      "Shl",
	LShr:     "LShr",
	Select:   "Select",
}

// String returns the canonical name of this kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Unknown"
}
