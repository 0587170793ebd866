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

// FindReads is the exported form of findReads, for callers outside this
// package that need to know which arrays an expression reads — e.g. the
// external-procedure adapter, which must assert a constant array's axioms
// the first time a query references it.
func FindReads(e Expr) []*ReadExpr { return findReads(e) }

// findReads collects every ReadExpr reachable from e, including those
// nested inside a read's own update-list indices/values (visitUpdates=true
// in the terminology of the original traversal this mirrors). Each distinct
// node (by identity) is visited at most once.
func findReads(e Expr) []*ReadExpr {
	var (
		result []*ReadExpr
		seen   = make(map[Expr]bool)
		visit  func(Expr)
	)

	visit = func(n Expr) {
		if seen[n] {
			return
		}

		seen[n] = true

		if re, ok := n.(*ReadExpr); ok {
			result = append(result, re)

			for u := re.Updates.Head; u != nil; u = u.Next {
				visit(u.Index)
				visit(u.Value)
			}
		}

		for _, c := range n.Children() {
			visit(c)
		}
	}

	visit(e)

	return result
}
