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

// Validity is the three-valued answer to "is this formula valid under the
// given constraints".
type Validity uint8

// The three possible validity outcomes.
const (
	ValidityTrue Validity = iota
	ValidityFalse
	ValidityUnknown
)

// String renders the validity for logs/diagnostics.
func (v Validity) String() string {
	switch v {
	case ValidityTrue:
		return "True"
	case ValidityFalse:
		return "False"
	default:
		return "Unknown"
	}
}

// PartialValidity is the six-valued summary the result cache stores: a
// May/Must refinement over true/false, a "both assignments exist" fixed
// point, and Unknown for an incomplete layer's non-answer.
type PartialValidity uint8

// The six partial-validity states.
const (
	MustBeTrue PartialValidity = iota
	MustBeFalse
	MayBeTrue
	MayBeFalse
	TrueOrFalse
	PartialUnknown
)

// Negate swaps Must<->Must and May<->May across true/false; TrueOrFalse and
// Unknown are fixed points.
func (p PartialValidity) Negate() PartialValidity {
	switch p {
	case MustBeTrue:
		return MustBeFalse
	case MustBeFalse:
		return MustBeTrue
	case MayBeTrue:
		return MayBeFalse
	case MayBeFalse:
		return MayBeTrue
	default: // TrueOrFalse, PartialUnknown
		return p
	}
}

func (p PartialValidity) String() string {
	switch p {
	case MustBeTrue:
		return "MustBeTrue"
	case MustBeFalse:
		return "MustBeFalse"
	case MayBeTrue:
		return "MayBeTrue"
	case MayBeFalse:
		return "MayBeFalse"
	case TrueOrFalse:
		return "TrueOrFalse"
	default:
		return "Unknown"
	}
}
