package sink

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamingWritesRowsOnFinish(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreaming(&buf)
	assert.NoError(t, s.StartStoit("sample1"))
	assert.NoError(t, s.StartEntry(0, "contig1"))
	assert.NoError(t, s.AddSingleCoverage(1.2))
	assert.NoError(t, s.FinishEntry())
	assert.NoError(t, s.StartEntry(1, "contig2"))
	assert.NoError(t, s.AddMultipleCoverage([]float32{0, 0.5}))
	assert.NoError(t, s.FinishEntry())
	assert.Equal(t, "sample1\tcontig1\t1.2\nsample1\tcontig2\t0\t0.5\n", buf.String())
}

func TestStreamingWriteHistogramRow(t *testing.T) {
	var buf bytes.Buffer
	s := NewStreaming(&buf)
	assert.NoError(t, s.StartStoit("sample1"))
	assert.NoError(t, s.StartEntry(0, "contig1"))
	assert.NoError(t, s.WriteHistogramRow(0, 482))
	assert.NoError(t, s.WriteHistogramRow(1, 922))
	assert.Equal(t, "sample1\tcontig1\t0\t482\nsample1\tcontig1\t1\t922\n", buf.String())
}

func TestCachedAccumulatesRowsAndPads(t *testing.T) {
	c := NewCached(2)
	assert.NoError(t, c.StartStoit("sample1"))
	assert.NoError(t, c.StartEntry(3, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(1.1))
	assert.NoError(t, c.FinishEntry())

	name, ok := c.EntryName(3)
	assert.True(t, ok)
	assert.Equal(t, "contig1", name)

	rows := c.Rows()
	assert.Len(t, rows, 1)
	assert.Equal(t, Row{StoitIndex: 0, EntryIndex: 3, Coverages: []float32{1.1, 0}}, rows[0])
}

func TestCachedMultipleSamplesPreserveStartOrder(t *testing.T) {
	c := NewCached(1)
	assert.NoError(t, c.StartStoit("a"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(1))
	assert.NoError(t, c.FinishEntry())

	assert.NoError(t, c.StartStoit("b"))
	assert.NoError(t, c.StartEntry(0, "contig1"))
	assert.NoError(t, c.AddSingleCoverage(2))
	assert.NoError(t, c.FinishEntry())

	assert.Equal(t, []string{"a", "b"}, c.StoitNames())
	rows := c.Rows()
	assert.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].StoitIndex)
	assert.Equal(t, 1, rows[1].StoitIndex)
}

func TestCachedStartEntryWithoutStoitFails(t *testing.T) {
	c := NewCached(1)
	err := c.StartEntry(0, "contig1")
	assert.Error(t, err)
}

func TestCachedFinishEntryWithoutStartFails(t *testing.T) {
	c := NewCached(1)
	assert.NoError(t, c.StartStoit("a"))
	err := c.FinishEntry()
	assert.Error(t, err)
}

func TestCachedSkipsAbsentEntriesInRows(t *testing.T) {
	c := NewCached(1)
	assert.NoError(t, c.StartStoit("a"))
	assert.NoError(t, c.StartEntry(5, "contig6"))
	assert.NoError(t, c.AddSingleCoverage(3))
	assert.NoError(t, c.FinishEntry())

	rows := c.Rows()
	assert.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].EntryIndex)
}
