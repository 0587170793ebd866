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

// Simplifier rewrites e under constraints into an equivalent, often
// cheaper, form before it descends into the solver stack. The expression
// language's own rewrite rules are an external collaborator; this core only
// consumes a Simplifier as an injected function.
type Simplifier func(constraints ConstraintSet, e Expr) Expr

// IdentitySimplifier performs no rewriting; it is the default when
// simplification is disabled.
func IdentitySimplifier(_ ConstraintSet, e Expr) Expr { return e }
