package alignio

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/stretchr/testify/assert"
)

func TestOpConsumesReference(t *testing.T) {
	consuming := []Op{OpMatch, OpEqual, OpMismatch, OpDeletion, OpSkip}
	for _, op := range consuming {
		assert.True(t, op.ConsumesReference(), "%c should consume reference", op)
	}
	nonConsuming := []Op{OpInsertion, OpSoftClip, OpHardClip, OpPadding, OpBack}
	for _, op := range nonConsuming {
		assert.False(t, op.ConsumesReference(), "%c should not consume reference", op)
	}
}

func TestOpAlignedBlock(t *testing.T) {
	aligned := []Op{OpMatch, OpEqual, OpMismatch}
	for _, op := range aligned {
		assert.True(t, op.AlignedBlock(), "%c should be an aligned block", op)
	}
	notAligned := []Op{OpInsertion, OpDeletion, OpSkip, OpSoftClip, OpHardClip, OpPadding, OpBack}
	for _, op := range notAligned {
		assert.False(t, op.AlignedBlock(), "%c should not be an aligned block", op)
	}
}

func TestSamOpToOp(t *testing.T) {
	cases := map[sam.CigarOpType]Op{
		sam.CigarMatch:       OpMatch,
		sam.CigarInsertion:   OpInsertion,
		sam.CigarDeletion:    OpDeletion,
		sam.CigarSkipped:     OpSkip,
		sam.CigarSoftClipped: OpSoftClip,
		sam.CigarHardClipped: OpHardClip,
		sam.CigarPadded:      OpPadding,
		sam.CigarEqual:       OpEqual,
		sam.CigarMismatch:    OpMismatch,
		sam.CigarBack:        OpBack,
	}
	for samOp, want := range cases {
		assert.Equal(t, want, samOpToOp(samOp))
	}
}

func TestBAMRecordUnmappedTid(t *testing.T) {
	r := bamRecord{r: &sam.Record{Ref: nil}}
	assert.Equal(t, int32(-1), r.Tid())
}

func TestBAMRecordFlags(t *testing.T) {
	r := bamRecord{r: &sam.Record{Flags: sam.Secondary | sam.ProperPair}}
	assert.True(t, r.IsSecondary())
	assert.False(t, r.IsSupplementary())
	assert.True(t, r.IsProperPair())
}

func TestBAMRecordCigarTranslation(t *testing.T) {
	r := bamRecord{r: &sam.Record{
		Cigar: sam.Cigar{
			sam.NewCigarOp(sam.CigarMatch, 10),
			sam.NewCigarOp(sam.CigarDeletion, 2),
			sam.NewCigarOp(sam.CigarSoftClipped, 3),
		},
	}}
	got := r.Cigar()
	assert.Equal(t, []CigarOp{
		{Op: OpMatch, Len: 10},
		{Op: OpDeletion, Len: 2},
		{Op: OpSoftClip, Len: 3},
	}, got)
}
