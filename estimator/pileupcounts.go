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

package estimator

import (
	"sort"

	"github.com/covercore/covercore/depth"
	"github.com/covercore/covercore/sink"
	"github.com/pkg/errors"
)

// PileupCounts is the per-position depth histogram estimator of spec.md
// §4.2: depth -> count of positions at that depth, emitted as one row per
// non-zero bucket. It is a multi-value kind: CalculateCoverage returns a
// gating signal only, and PrintCoverage requires a sink.RawSink (spec.md
// §4.4, §4.5 — a Cached sink is undefined for this kind and PrintCoverage
// reports that as a fatal configuration error rather than panicking).
type PileupCounts struct {
	minFracCovered float64
	endExclusion   int

	histogram     map[int32]int64
	totalEligible int64
	coveredBases  int64
}

// NewPileupCounts returns a PileupCounts estimator.
func NewPileupCounts(minFracCovered float64, endExclusion int) *PileupCounts {
	return &PileupCounts{minFracCovered: minFracCovered, endExclusion: endExclusion, histogram: map[int32]int64{}}
}

// Setup implements Estimator.
func (p *PileupCounts) Setup() {
	p.histogram = map[int32]int64{}
	p.totalEligible, p.coveredBases = 0, 0
}

// AddContig implements Estimator.
func (p *PileupCounts) AddContig(sig *depth.Signal) {
	lo, hi := eligibleRange(sig.Len(), p.endExclusion)
	sig.ForEachDepth(func(pos int, d int32) {
		if pos < lo || pos >= hi {
			return
		}
		p.histogram[d]++
		p.totalEligible++
		if d > 0 {
			p.coveredBases++
		}
	})
}

// CalculateCoverage implements Estimator. The returned value only gates
// whether PrintCoverage (vs. PrintZeroCoverage) runs; it is the covered
// fraction, for consistency with the other kinds' gating semantics.
func (p *PileupCounts) CalculateCoverage(unobservedLength int) float32 {
	if unobservedLength > 0 {
		p.histogram[0] += int64(unobservedLength)
		p.totalEligible += int64(unobservedLength)
	}
	if p.totalEligible == 0 {
		return 0
	}
	frac := float64(p.coveredBases) / float64(p.totalEligible)
	if frac < p.minFracCovered {
		return 0
	}
	return float32(frac)
}

// PrintCoverage implements Estimator.
func (p *PileupCounts) PrintCoverage(_ float32, s sink.Sink) error {
	rs, ok := s.(sink.RawSink)
	if !ok {
		return errors.New("estimator: pileup-counts requires a sink supporting raw histogram rows (cached sinks are unsupported)")
	}
	depths := make([]int32, 0, len(p.histogram))
	for d := range p.histogram {
		depths = append(depths, d)
	}
	sort.Slice(depths, func(i, j int) bool { return depths[i] < depths[j] })
	for _, d := range depths {
		if err := rs.WriteHistogramRow(d, p.histogram[d]); err != nil {
			return err
		}
	}
	return nil
}

// PrintZeroCoverage implements Estimator. When the min-covered-fraction gate
// fails, nothing is emitted: there is no single "zero" cell for a histogram
// statistic to fall back to.
func (p *PileupCounts) PrintZeroCoverage(_ sink.Sink) error { return nil }

// Headers implements Estimator. Pileup bypasses the column-header model
// entirely (it is streaming-only), so this contributes nothing.
func (p *PileupCounts) Headers() []string { return nil }

// Clone implements Estimator.
func (p *PileupCounts) Clone() Estimator {
	return NewPileupCounts(p.minFracCovered, p.endExclusion)
}

var _ Estimator = (*PileupCounts)(nil)
