package depth

import (
	"testing"

	"github.com/covercore/covercore/alignio"
	"github.com/stretchr/testify/assert"
)

func cig(pairs ...interface{}) []alignio.CigarOp {
	out := make([]alignio.CigarOp, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, alignio.CigarOp{Op: pairs[i].(alignio.Op), Len: pairs[i+1].(int)})
	}
	return out
}

func collectDepths(s *Signal) []int32 {
	out := make([]int32, s.Len())
	s.ForEachDepth(func(pos int, d int32) { out[pos] = d })
	return out
}

func TestAddReadSimpleMatch(t *testing.T) {
	s := New(10)
	s.AddRead(2, cig(alignio.OpMatch, 3))
	assert.Equal(t, []int32{0, 0, 1, 1, 1, 0, 0, 0, 0, 0}, collectDepths(s))
}

func TestAddReadRunsOffContigEnd(t *testing.T) {
	// A match block that runs exactly to the contig end must not emit an
	// out-of-bounds closing decrement, and the prefix sum must still be
	// consistent (no trailing dip below the true depth).
	s := New(5)
	s.AddRead(3, cig(alignio.OpMatch, 2))
	assert.Equal(t, []int32{0, 0, 0, 1, 1}, collectDepths(s))
}

func TestAddReadWithDeletion(t *testing.T) {
	// 3M2D3M at pos 0: aligned blocks [0,3) and [5,8); the deletion moves
	// the cursor without adding depth.
	s := New(10)
	s.AddRead(0, cig(alignio.OpMatch, 3, alignio.OpDeletion, 2, alignio.OpMatch, 3))
	assert.Equal(t, []int32{1, 1, 1, 0, 0, 1, 1, 1, 0, 0}, collectDepths(s))
}

func TestAddReadIgnoresInsertionsClipsAndPadding(t *testing.T) {
	s := New(10)
	s.AddRead(1, cig(
		alignio.OpSoftClip, 2,
		alignio.OpMatch, 2,
		alignio.OpInsertion, 1,
		alignio.OpMatch, 2,
		alignio.OpHardClip, 3,
		alignio.OpPadding, 1,
	))
	// Aligned blocks at [1,3) and [3,5); insertion/softclip/hardclip/padding
	// are no-ops for the reference cursor except where noted in AddRead.
	assert.Equal(t, []int32{0, 1, 1, 1, 1, 0, 0, 0, 0, 0}, collectDepths(s))
}

func TestMultipleReadsSumToTotalDepth(t *testing.T) {
	s := New(6)
	s.AddRead(0, cig(alignio.OpMatch, 4))
	s.AddRead(2, cig(alignio.OpMatch, 4))
	assert.Equal(t, []int32{1, 1, 2, 2, 1, 1}, collectDepths(s))
}

func TestDepthNeverNegative(t *testing.T) {
	s := New(20)
	s.AddRead(5, cig(alignio.OpMatch, 3, alignio.OpDeletion, 4, alignio.OpMatch, 3))
	s.AddRead(0, cig(alignio.OpMatch, 20))
	var anyNegative bool
	s.ForEachDepth(func(_ int, d int32) {
		if d < 0 {
			anyNegative = true
		}
	})
	assert.False(t, anyNegative)
}

func TestTotalDepthEqualsClippedCigarLength(t *testing.T) {
	// Sum of per-position depth over a contig equals the summed length of
	// depth-consuming CIGAR operations, clipped to [0, length).
	s := New(8)
	s.AddRead(6, cig(alignio.OpMatch, 5)) // clipped to 2 positions: 6,7
	var total int32
	s.ForEachDepth(func(_ int, d int32) { total += d })
	assert.EqualValues(t, 2, total)
}
