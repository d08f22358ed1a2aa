package matrix

import (
	"bytes"
	"testing"

	"github.com/covercore/covercore/aggregate"
	"github.com/covercore/covercore/sink"
	"github.com/stretchr/testify/assert"
)

func TestDenseCachedHelloWorld(t *testing.T) {
	c := sink.NewCached(2)
	assert.NoError(t, c.StartStoit("stoit1"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(1.1))
	assert.NoError(t, c.AddSingleCoverage(1.2))
	assert.NoError(t, c.FinishEntry())

	d := &DenseCached{}
	var buf bytes.Buffer
	assert.NoError(t, d.PrintHeaders("Contig", []string{"mean", "std"}, &buf))
	assert.NoError(t, d.Finalise(c, &buf, nil, nil))
	assert.Equal(t, "Contig\tstoit1 mean\tstoit1 std\n"+
		"contig1\t1.1\t1.2\n", buf.String())
}

func TestDenseCachedNormalised(t *testing.T) {
	c := sink.NewCached(2)
	assert.NoError(t, c.StartStoit("stoit1"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(1.1))
	assert.NoError(t, c.AddSingleCoverage(1.2))
	assert.NoError(t, c.FinishEntry())

	d := &DenseCached{}
	var buf bytes.Buffer
	assert.NoError(t, d.PrintHeaders("Contig", []string{"mean", "std"}, &buf))
	rm := []aggregate.ReadsMapped{{NumMappedReads: 1, NumReads: 2}}
	assert.NoError(t, d.Finalise(c, &buf, rm, []int{0}))
	assert.Equal(t, "Contig\tstoit1 mean\tstoit1 std\n"+
		"unmapped\t50\tNA\n"+
		"contig1\t50\t1.2\n", buf.String())
}

func TestSparseCachedMultipleSamples(t *testing.T) {
	c := sink.NewCached(1)
	assert.NoError(t, c.StartStoit("stoit1"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(2))
	assert.NoError(t, c.FinishEntry())
	assert.NoError(t, c.StartStoit("stoit2"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(4))
	assert.NoError(t, c.FinishEntry())

	s := SparseCached{}
	var buf bytes.Buffer
	assert.NoError(t, s.PrintHeaders("Contig", []string{"mean"}, &buf))
	assert.NoError(t, s.Finalise(c, &buf, nil, nil))
	assert.Equal(t, "Sample\tContig\tmean\n"+
		"stoit1\tcontig1\t2\n"+
		"stoit2\tcontig1\t4\n", buf.String())
}

func TestSparseCachedNormalisedWithUnmapped(t *testing.T) {
	c := sink.NewCached(1)
	assert.NoError(t, c.StartStoit("stoit1"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(3))
	assert.NoError(t, c.FinishEntry())
	assert.NoError(t, c.StartEntry(1, "contig2"))
	assert.NoError(t, c.AddSingleCoverage(1))
	assert.NoError(t, c.FinishEntry())

	s := SparseCached{}
	var buf bytes.Buffer
	assert.NoError(t, s.PrintHeaders("Contig", []string{"mean"}, &buf))
	rm := []aggregate.ReadsMapped{{NumMappedReads: 4, NumReads: 4}}
	assert.NoError(t, s.Finalise(c, &buf, rm, []int{0}))
	assert.Equal(t, "Sample\tContig\tmean\n"+
		"stoit1\tunmapped\t0\n"+
		"stoit1\tcontig1\t75\n"+
		"stoit1\tcontig2\t25\n", buf.String())
}

func TestStreamingFinaliseIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	s := Streaming{}
	assert.NoError(t, s.PrintHeaders("Genome", []string{"mean"}, &buf))
	assert.NoError(t, s.Finalise(nil, &buf, nil, nil))
	assert.Equal(t, "Sample\tGenome\tmean\n", buf.String())
}

func TestNormalisationWithoutReadsMappedIsRejected(t *testing.T) {
	c := sink.NewCached(1)
	assert.NoError(t, c.StartStoit("stoit1"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(1))
	assert.NoError(t, c.FinishEntry())

	s := SparseCached{}
	var buf bytes.Buffer
	err := s.Finalise(c, &buf, nil, []int{0})
	assert.Error(t, err)
}
