// Copyright 2026 The CoverCore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package estimator implements the CoverageEstimator variants of spec.md
// §4.2: Mean, Variance, TrimmedMean, CoveredFraction, and PileupCounts.
package estimator

import (
	"github.com/covercore/covercore/depth"
	"github.com/covercore/covercore/sink"
)

// Estimator accumulates per-position depth across the contigs of one
// entity (a contig, in per-contig mode, or a genome, in per-genome mode)
// and produces a finished statistic.
type Estimator interface {
	// Setup zeroes all accumulators for a new entity.
	Setup()
	// AddContig folds one contig's depth signal into the accumulators,
	// honouring end-exclusion.
	AddContig(sig *depth.Signal)
	// CalculateCoverage finalises the statistic, extending the denominator
	// by unobservedLength zero-depth positions. Safe to call once per
	// entity. For PileupCounts, the returned value is a gating signal only
	// (zero iff nothing should be printed); the actual histogram is
	// written by PrintCoverage.
	CalculateCoverage(unobservedLength int) float32
	// PrintCoverage writes value (as produced by CalculateCoverage) to s
	// for the currently open entry, in a kind-specific layout.
	PrintCoverage(value float32, s sink.Sink) error
	// PrintZeroCoverage writes a zero-coverage row/rows to s for the
	// currently open entry.
	PrintZeroCoverage(s sink.Sink) error
	// Headers returns the column headers this estimator contributes.
	Headers() []string
	// Clone returns a fresh estimator with the same configuration, as if
	// freshly constructed — required so that per-genome mode can give each
	// genome independent accumulators (spec.md §4.3, §9).
	Clone() Estimator
}

// eligibleRange returns the half-open [lo, hi) position range of a contig of
// length l that end-exclusion of endExcl bases leaves eligible. If the
// contig is too short to have any eligible positions, lo == hi.
func eligibleRange(l, endExcl int) (lo, hi int) {
	if l <= 2*endExcl {
		return 0, 0
	}
	return endExcl, l - endExcl
}
