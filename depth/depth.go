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

// Package depth implements the differential (up/down) array that turns a
// stream of CIGAR-annotated read alignments on one contig into a per-position
// depth signal, in one O(contig length) pass.
package depth

import "github.com/covercore/covercore/alignio"

// Signal is the transient per-contig differential array described in
// spec.md §4.1. Its length always equals the reference length of the contig
// it was created for.
type Signal struct {
	// diff[i] is the number of reads starting at i minus the number ending
	// at i; ForEachDepth's running sum of diff is the pointwise depth.
	diff []int32
}

// New allocates a zeroed Signal for a contig of the given length.
func New(length int) *Signal {
	return &Signal{diff: make([]int32, length)}
}

// Len returns the contig length this signal was created for.
func (s *Signal) Len() int { return len(s.diff) }

// AddRead folds one read's footprint into the signal. pos is the 0-based
// leftmost aligned reference position; cigar is the read's CIGAR string.
//
// Per spec.md §4.1: M/=/X blocks increment the signal at the block start and
// decrement it one past the block end, unless the block runs off the end of
// the contig, in which case the closing decrement is skipped (it would be
// out of bounds, and for-each-depth only ever sums over [0, length)). D/N
// operations advance the cursor without touching the signal. I/S/H/P are
// no-ops.
func (s *Signal) AddRead(pos int, cigar []alignio.CigarOp) {
	cursor := pos
	for _, op := range cigar {
		switch {
		case op.Op.AlignedBlock():
			s.diff[cursor]++
			end := cursor + op.Len
			if end < len(s.diff) {
				s.diff[end]--
			}
			cursor += op.Len
		case op.Op.ConsumesReference():
			// D, N: reference-only operations.
			cursor += op.Len
		default:
			// I, S, H, P: no-ops with respect to the depth signal.
		}
	}
}

// ForEachDepth walks the signal once, computing the running depth and
// calling f(position, depth) for every position in [0, Len()).
func (s *Signal) ForEachDepth(f func(pos int, depth int32)) {
	var running int32
	for i, d := range s.diff {
		running += d
		f(i, running)
	}
}
