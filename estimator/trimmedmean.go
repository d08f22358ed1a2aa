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
	"fmt"
	"math"

	"github.com/covercore/covercore/depth"
	"github.com/covercore/covercore/sink"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TrimmedMean drops the lowest minLo and highest 1-maxHi fraction of eligible
// depths, then averages the remainder (spec.md §4.2). Unlike Mean/Variance,
// it requires a full-depth buffer to sort, which is exactly what
// gonum/floats.Sort and gonum/stat.Mean are for.
type TrimmedMean struct {
	minLo, maxHi   float64
	minFracCovered float64
	endExclusion   int

	buffer       []float64
	coveredBases int64
}

// NewTrimmedMean returns a TrimmedMean estimator.
func NewTrimmedMean(minLo, maxHi, minFracCovered float64, endExclusion int) *TrimmedMean {
	return &TrimmedMean{minLo: minLo, maxHi: maxHi, minFracCovered: minFracCovered, endExclusion: endExclusion}
}

// Setup implements Estimator.
func (t *TrimmedMean) Setup() {
	t.buffer = t.buffer[:0]
	t.coveredBases = 0
}

// AddContig implements Estimator.
func (t *TrimmedMean) AddContig(sig *depth.Signal) {
	lo, hi := eligibleRange(sig.Len(), t.endExclusion)
	sig.ForEachDepth(func(pos int, d int32) {
		if pos < lo || pos >= hi {
			return
		}
		t.buffer = append(t.buffer, float64(d))
		if d > 0 {
			t.coveredBases++
		}
	})
}

// CalculateCoverage implements Estimator.
func (t *TrimmedMean) CalculateCoverage(unobservedLength int) float32 {
	n := len(t.buffer) + unobservedLength
	if n == 0 {
		return 0
	}
	if float64(t.coveredBases)/float64(n) < t.minFracCovered {
		return 0
	}

	// Unobserved positions are zero-depth, i.e. the minimum possible value,
	// so sorting just the observed buffer and prepending the unobserved
	// zeros yields the full ascending-sorted sequence.
	floats.Sort(t.buffer)

	lowDrop := int(math.Floor(t.minLo * float64(n)))
	highKeepTo := int(math.Ceil(t.maxHi * float64(n)))
	if lowDrop > n {
		lowDrop = n
	}
	if highKeepTo > n {
		highKeepTo = n
	}
	if highKeepTo < lowDrop {
		highKeepTo = lowDrop
	}

	var kept []float64
	for i := lowDrop; i < highKeepTo; i++ {
		if i < unobservedLength {
			kept = append(kept, 0)
		} else {
			kept = append(kept, t.buffer[i-unobservedLength])
		}
	}
	if len(kept) == 0 {
		return 0
	}
	return float32(stat.Mean(kept, nil))
}

// PrintCoverage implements Estimator.
func (t *TrimmedMean) PrintCoverage(value float32, s sink.Sink) error {
	return s.AddSingleCoverage(value)
}

// PrintZeroCoverage implements Estimator.
func (t *TrimmedMean) PrintZeroCoverage(s sink.Sink) error {
	return s.AddSingleCoverage(0)
}

// Headers implements Estimator.
func (t *TrimmedMean) Headers() []string {
	return []string{fmt.Sprintf("Trimmed Mean (%.0f-%.0f)", t.minLo*100, t.maxHi*100)}
}

// Clone implements Estimator.
func (t *TrimmedMean) Clone() Estimator {
	return NewTrimmedMean(t.minLo, t.maxHi, t.minFracCovered, t.endExclusion)
}

var _ Estimator = (*TrimmedMean)(nil)
