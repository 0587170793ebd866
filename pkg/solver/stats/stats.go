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

// Package stats holds the plain counters the solver stack updates. The
// stack under spec.md's scope never owns a reporter (Prometheus exporter,
// stdout dump, ...) — that is an external collaborator's job — so this
// package is nothing more than a shared, single-threaded-safe struct of
// monotone counts, matching KLEE's stats:: namespace without the
// statistics-file plumbing around it.
package stats

// Stats holds every counter the solver stack touches. Because spec.md §5
// guarantees at most one query is ever in flight, plain (non-atomic)
// increments are correct and match the ambient single-threaded model.
type Stats struct {
	// Queries is incremented by the cache layer once per ComputeTruth,
	// ComputeValue or ComputeInitialValues call it receives.
	Queries uint64
	// SolverQueries is incremented by the dummy layer once per call it
	// fails; no other layer updates it.
	SolverQueries uint64
	// QueryCacheHits counts truth-cache lookups answered without consulting
	// the lower layer.
	QueryCacheHits uint64
	// QueryCacheMisses counts truth-cache lookups (or always-bypass calls
	// like computeValue) that did consult the lower layer.
	QueryCacheMisses uint64
	// QueryCounterexamples counts computeValue/computeInitialValues calls
	// that needed a witness from the backend.
	QueryCounterexamples uint64
}

// New returns a fresh, zeroed Stats.
func New() *Stats { return &Stats{} }
