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

// Package aggregate implements EntityAggregator (spec.md §4.3): it drives an
// alignment stream through a set of CoverageEstimators contig-by-contig,
// deciding entity boundaries either at the contig level or at the genome
// level, and accounts for reference length that no read ever touched.
package aggregate

import (
	"github.com/covercore/covercore/alignio"
	"github.com/covercore/covercore/estimator"
	"github.com/pkg/errors"
)

// ReadsMapped is the per-sample mapped/total read accounting of spec.md §3.
type ReadsMapped struct {
	NumMappedReads uint64
	NumReads       uint64
}

// Options configures the shared record-acceptance policy for all modes.
type Options struct {
	// FlagFiltering discards secondary, supplementary, and non-proper-pair
	// records before any state mutation.
	FlagFiltering bool
	// PrintZeroEntity emits a zero-coverage row for entities with no mapped
	// reads, in addition to entities that pass the estimators' gates.
	PrintZeroEntity bool
}

// acceptRecord applies flag filtering and the always-on unmapped-record skip.
// It returns false for records that must not mutate any state.
func acceptRecord(rec alignio.Record, opts Options) bool {
	if rec.Tid() < 0 {
		return false
	}
	if opts.FlagFiltering && (rec.IsSecondary() || rec.IsSupplementary() || !rec.IsProperPair()) {
		return false
	}
	return true
}

// cloneAll returns an independent clone of each estimator, used once per
// genome so that per-genome accumulators never alias (spec.md §9, "Per-genome
// estimator cloning").
func cloneAll(estimators []estimator.Estimator) []estimator.Estimator {
	out := make([]estimator.Estimator, len(estimators))
	for i, e := range estimators {
		out[i] = e.Clone()
	}
	return out
}

func targetLen(h alignio.Header, tid int) (int, error) {
	length, ok := h.TargetLen(int32(tid))
	if !ok || length == 0 {
		name := h.TargetName(int32(tid))
		return 0, errors.Errorf("aggregate: corrupt header: missing or zero target length for tid %d (%s)", tid, name)
	}
	return length, nil
}

func readsMappedFor(provider alignio.Provider, numMappedReads uint64) ReadsMapped {
	return ReadsMapped{
		NumMappedReads: numMappedReads,
		NumReads:       provider.NumDetectedPrimaryAlignments(),
	}
}
