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

// Query is "does Constraints imply Expr?". Constraints may be a simplified
// subset of the engine's actual path condition; Unsimplified is the
// original, unsimplified sequence and is what the solver pool uses to track
// its incremental assertion stack, since that stack must mirror the
// engine's real path regardless of what any simplifier dropped.
type Query struct {
	Constraints  ConstraintSet
	Unsimplified ConstraintSet
	Expr         Expr
}

// NewQuery builds a query whose Unsimplified set equals Constraints (the
// common case when no simplification layer is in play).
func NewQuery(constraints ConstraintSet, e Expr) Query {
	return Query{Constraints: constraints, Unsimplified: constraints, Expr: e}
}

// WithExpr returns a copy of this query with a different expression to
// decide, keeping the same constraints. Used by getRange to probe auxiliary
// formulas against the same path condition.
func (q Query) WithExpr(e Expr) Query {
	return Query{Constraints: q.Constraints, Unsimplified: q.Unsimplified, Expr: e}
}

// Negated returns a copy of this query asking the opposite question:
// "Constraints implies Not(Expr)".
func (q Query) Negated() Query {
	return q.WithExpr(CreateNot(q.Expr))
}
