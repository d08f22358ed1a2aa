package aggregate

import (
	"io"

	"github.com/covercore/covercore/alignio"
)

// fakeRecord, fakeHeader, fakeIterator, and fakeProvider give the aggregate
// package an in-memory alignio.Provider, standing in for a real BAM file
// (none is available to parse in this test tree).

type fakeRecord struct {
	tid                                   int32
	pos                                   int
	cigar                                 []alignio.CigarOp
	name                                  string
	secondary, supplementary, properPair bool
}

func (r fakeRecord) Tid() int32              { return r.tid }
func (r fakeRecord) Pos() int                { return r.pos }
func (r fakeRecord) Cigar() []alignio.CigarOp { return r.cigar }
func (r fakeRecord) Name() string            { return r.name }
func (r fakeRecord) IsSecondary() bool       { return r.secondary }
func (r fakeRecord) IsSupplementary() bool   { return r.supplementary }
func (r fakeRecord) IsProperPair() bool      { return r.properPair }

type fakeHeader struct {
	names []string
	lens  []int
}

func (h fakeHeader) TargetCount() int { return len(h.names) }
func (h fakeHeader) TargetName(tid int32) string { return h.names[tid] }
func (h fakeHeader) TargetLen(tid int32) (int, bool) {
	if int(tid) >= len(h.lens) {
		return 0, false
	}
	return h.lens[tid], true
}

type fakeIterator struct {
	records []fakeRecord
	i       int
}

func (it *fakeIterator) Scan() bool {
	if it.i >= len(it.records) {
		return false
	}
	it.i++
	return true
}
func (it *fakeIterator) Record() alignio.Record { return it.records[it.i-1] }
func (it *fakeIterator) Err() error              { return nil }
func (it *fakeIterator) Close() error            { return nil }

type fakeProvider struct {
	header       fakeHeader
	records      []fakeRecord
	primaryCount uint64
}

func (p *fakeProvider) Header() (alignio.Header, error) { return p.header, nil }
func (p *fakeProvider) Iterator() (alignio.Iterator, error) {
	return &fakeIterator{records: p.records}, nil
}
func (p *fakeProvider) NumDetectedPrimaryAlignments() uint64 { return p.primaryCount }
func (p *fakeProvider) Close() error                         { return nil }

var _ alignio.Provider = (*fakeProvider)(nil)
var _ io.Closer = (*fakeProvider)(nil)

func match(length int) []alignio.CigarOp {
	return []alignio.CigarOp{{Op: alignio.OpMatch, Len: length}}
}
