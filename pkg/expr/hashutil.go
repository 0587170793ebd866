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

// FNV-1a constants, matching pkg/util/collection/hash's Array[F] combinator
// so that every structural hash in this module is built the same way.
const (
	hashOffset64 uint64 = 14695981039346656037
	hashPrime64  uint64 = 1099511628211
)

// combineHash folds a node kind, its width, and its children's hashes (plus
// any kind-specific scalar, e.g. a Constant's value) into one structural
// hash.  Order matters: this is not commutative, which is deliberate since
// e.g. Sub(a,b) must not collide with Sub(b,a).
func combineHash(k Kind, w Width, parts ...uint64) uint64 {
	h := hashOffset64
	h ^= uint64(k)
	h *= hashPrime64
	h ^= uint64(w)
	h *= hashPrime64

	for _, p := range parts {
		h ^= p
		h *= hashPrime64
	}

	return h
}
