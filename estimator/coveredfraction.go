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

// CoveredFraction is the fraction-of-positions-with-depth>0 estimator of
// spec.md §4.2.
type CoveredFraction struct {
	minFracCovered float64
	endExclusion   int

	totalEligible int64
	coveredBases  int64
}

// NewCoveredFraction returns a CoveredFraction estimator.
func NewCoveredFraction(minFracCovered float64, endExclusion int) *CoveredFraction {
	return &CoveredFraction{minFracCovered: minFracCovered, endExclusion: endExclusion}
}

// Setup implements Estimator.
func (c *CoveredFraction) Setup() {
	c.totalEligible, c.coveredBases = 0, 0
}

// AddContig implements Estimator.
func (c *CoveredFraction) AddContig(sig *depth.Signal) {
	lo, hi := eligibleRange(sig.Len(), c.endExclusion)
	sig.ForEachDepth(func(pos int, d int32) {
		if pos < lo || pos >= hi {
			return
		}
		c.totalEligible++
		if d > 0 {
			c.coveredBases++
		}
	})
}

// CalculateCoverage implements Estimator.
func (c *CoveredFraction) CalculateCoverage(unobservedLength int) float32 {
	total := c.totalEligible + int64(unobservedLength)
	if total == 0 {
		return 0
	}
	frac := float64(c.coveredBases) / float64(total)
	if frac < c.minFracCovered {
		return 0
	}
	return float32(frac)
}

// PrintCoverage implements Estimator.
func (c *CoveredFraction) PrintCoverage(value float32, s sink.Sink) error {
	return s.AddSingleCoverage(value)
}

// PrintZeroCoverage implements Estimator.
func (c *CoveredFraction) PrintZeroCoverage(s sink.Sink) error {
	return s.AddSingleCoverage(0)
}

// Headers implements Estimator.
func (c *CoveredFraction) Headers() []string { return []string{"Covered Fraction"} }

// Clone implements Estimator.
func (c *CoveredFraction) Clone() Estimator {
	return NewCoveredFraction(c.minFracCovered, c.endExclusion)
}

var _ Estimator = (*CoveredFraction)(nil)
