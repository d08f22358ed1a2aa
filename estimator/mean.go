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
	"github.com/covercore/covercore/depth"
	"github.com/covercore/covercore/sink"
)

// Mean is the mean-depth estimator of spec.md §4.2. It is an O(1)-memory
// online accumulator: it never materialises a depth buffer, which is why it
// (unlike TrimmedMean) does not reach for gonum/stat — every gonum/stat
// entry point wants a materialized []float64.
type Mean struct {
	minFracCovered float64
	endExclusion   int

	totalEligible int64
	coveredBases  int64
	sumDepth      int64
}

// NewMean returns a Mean estimator gated by minFracCovered and ignoring
// endExclusion bases at each contig terminus.
func NewMean(minFracCovered float64, endExclusion int) *Mean {
	return &Mean{minFracCovered: minFracCovered, endExclusion: endExclusion}
}

// Setup implements Estimator.
func (m *Mean) Setup() {
	m.totalEligible, m.coveredBases, m.sumDepth = 0, 0, 0
}

// AddContig implements Estimator.
func (m *Mean) AddContig(sig *depth.Signal) {
	lo, hi := eligibleRange(sig.Len(), m.endExclusion)
	sig.ForEachDepth(func(pos int, d int32) {
		if pos < lo || pos >= hi {
			return
		}
		m.totalEligible++
		m.sumDepth += int64(d)
		if d > 0 {
			m.coveredBases++
		}
	})
}

// CalculateCoverage implements Estimator.
func (m *Mean) CalculateCoverage(unobservedLength int) float32 {
	total := m.totalEligible + int64(unobservedLength)
	if total == 0 {
		return 0
	}
	if float64(m.coveredBases)/float64(total) < m.minFracCovered {
		return 0
	}
	return float32(float64(m.sumDepth) / float64(total))
}

// PrintCoverage implements Estimator.
func (m *Mean) PrintCoverage(value float32, s sink.Sink) error {
	return s.AddSingleCoverage(value)
}

// PrintZeroCoverage implements Estimator.
func (m *Mean) PrintZeroCoverage(s sink.Sink) error {
	return s.AddSingleCoverage(0)
}

// Headers implements Estimator.
func (m *Mean) Headers() []string { return []string{"Mean"} }

// Clone implements Estimator.
func (m *Mean) Clone() Estimator { return NewMean(m.minFracCovered, m.endExclusion) }

var _ Estimator = (*Mean)(nil)
