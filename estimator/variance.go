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

// Variance is the sample-variance-of-depth estimator of spec.md §4.2
// (divisor n-1, returns 0 when n < 2). Like Mean, it is an online
// sum/sum-of-squares accumulator rather than a buffered computation.
type Variance struct {
	minFracCovered float64
	endExclusion   int

	totalEligible int64
	coveredBases  int64
	sum           float64
	sumSq         float64
}

// NewVariance returns a Variance estimator gated by minFracCovered and
// ignoring endExclusion bases at each contig terminus.
func NewVariance(minFracCovered float64, endExclusion int) *Variance {
	return &Variance{minFracCovered: minFracCovered, endExclusion: endExclusion}
}

// Setup implements Estimator.
func (v *Variance) Setup() {
	v.totalEligible, v.coveredBases, v.sum, v.sumSq = 0, 0, 0, 0
}

// AddContig implements Estimator.
func (v *Variance) AddContig(sig *depth.Signal) {
	lo, hi := eligibleRange(sig.Len(), v.endExclusion)
	sig.ForEachDepth(func(pos int, d int32) {
		if pos < lo || pos >= hi {
			return
		}
		v.totalEligible++
		fd := float64(d)
		v.sum += fd
		v.sumSq += fd * fd
		if d > 0 {
			v.coveredBases++
		}
	})
}

// CalculateCoverage implements Estimator.
func (v *Variance) CalculateCoverage(unobservedLength int) float32 {
	n := v.totalEligible + int64(unobservedLength)
	if n == 0 {
		return 0
	}
	if float64(v.coveredBases)/float64(n) < v.minFracCovered {
		return 0
	}
	if n < 2 {
		return 0
	}
	fn := float64(n)
	mean := v.sum / fn
	// Sample variance: sum((x-mean)^2) / (n-1), expanded to avoid a second
	// pass over the (unmaterialized) depth values.
	variance := (v.sumSq - fn*mean*mean) / (fn - 1)
	if variance < 0 {
		// Guards against floating-point cancellation driving a
		// true-zero variance slightly negative.
		variance = 0
	}
	return float32(variance)
}

// PrintCoverage implements Estimator.
func (v *Variance) PrintCoverage(value float32, s sink.Sink) error {
	return s.AddSingleCoverage(value)
}

// PrintZeroCoverage implements Estimator.
func (v *Variance) PrintZeroCoverage(s sink.Sink) error {
	return s.AddSingleCoverage(0)
}

// Headers implements Estimator.
func (v *Variance) Headers() []string { return []string{"Variance"} }

// Clone implements Estimator.
func (v *Variance) Clone() Estimator { return NewVariance(v.minFracCovered, v.endExclusion) }

var _ Estimator = (*Variance)(nil)
