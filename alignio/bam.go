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

package alignio

import (
	"io"
	"os"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/pkg/errors"
)

// bamHeader adapts *sam.Header to the Header interface.
type bamHeader struct {
	h *sam.Header
}

func (h bamHeader) TargetCount() int { return len(h.h.Refs()) }

func (h bamHeader) TargetName(tid int32) string {
	return h.h.Refs()[tid].Name()
}

func (h bamHeader) TargetLen(tid int32) (int, bool) {
	ref := h.h.Refs()[tid]
	if ref == nil {
		return 0, false
	}
	l := ref.Len()
	if l <= 0 {
		return 0, false
	}
	return l, true
}

// bamRecord adapts *sam.Record to the Record interface.
type bamRecord struct {
	r *sam.Record
}

func (r bamRecord) Tid() int32 {
	if r.r.Ref == nil {
		return -1
	}
	return int32(r.r.Ref.ID())
}

func (r bamRecord) Pos() int { return r.r.Pos }

func (r bamRecord) Cigar() []CigarOp {
	cigar := r.r.Cigar
	out := make([]CigarOp, len(cigar))
	for i, co := range cigar {
		out[i] = CigarOp{Op: samOpToOp(co.Type()), Len: co.Len()}
	}
	return out
}

func (r bamRecord) Name() string { return r.r.Name }

func (r bamRecord) IsSecondary() bool { return r.r.Flags&sam.Secondary != 0 }

func (r bamRecord) IsSupplementary() bool { return r.r.Flags&sam.Supplementary != 0 }

func (r bamRecord) IsProperPair() bool { return r.r.Flags&sam.ProperPair != 0 }

func samOpToOp(t sam.CigarOpType) Op {
	switch t {
	case sam.CigarMatch:
		return OpMatch
	case sam.CigarInsertion:
		return OpInsertion
	case sam.CigarDeletion:
		return OpDeletion
	case sam.CigarSkipped:
		return OpSkip
	case sam.CigarSoftClipped:
		return OpSoftClip
	case sam.CigarHardClipped:
		return OpHardClip
	case sam.CigarPadded:
		return OpPadding
	case sam.CigarEqual:
		return OpEqual
	case sam.CigarMismatch:
		return OpMismatch
	default:
		return OpBack
	}
}

// bamIterator is a single-pass, non-seeking scan of an entire BAM file. It
// does not use the .bai index: spec.md's Non-goals exclude random access, so
// there is nothing for an index to buy us here.
type bamIterator struct {
	f      *os.File
	reader *bam.Reader
	rec    *sam.Record
	err    error
	count  *uint64
}

func (it *bamIterator) Scan() bool {
	if it.err != nil {
		return false
	}
	rec, err := it.reader.Read()
	if err != nil {
		if err != io.EOF {
			it.err = err
		}
		return false
	}
	it.rec = rec
	if rec.Flags&(sam.Secondary|sam.Supplementary) == 0 {
		*it.count++
	}
	return true
}

func (it *bamIterator) Record() Record { return bamRecord{it.rec} }

func (it *bamIterator) Err() error { return it.err }

func (it *bamIterator) Close() error {
	if it.reader != nil {
		it.reader.Close()
		it.reader = nil
	}
	if it.f != nil {
		err := it.f.Close()
		it.f = nil
		return err
	}
	return nil
}

// BAMProvider is a Provider backed by a local BAM file, read sequentially
// from front to back exactly once. Adapted from the Provider/Iterator
// interface shape of github.com/grailbio/bio/encoding/bamprovider, with the
// sharding and .bai-index random-access machinery removed.
type BAMProvider struct {
	Path string

	header       *sam.Header
	primaryCount uint64
}

// Header implements Provider.
func (p *BAMProvider) Header() (Header, error) {
	if p.header == nil {
		f, err := os.Open(p.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "alignio: opening %s", p.Path)
		}
		defer f.Close()
		r, err := bam.NewReader(f, 1)
		if err != nil {
			return nil, errors.Wrapf(err, "alignio: reading BAM header of %s", p.Path)
		}
		defer r.Close()
		p.header = r.Header()
	}
	return bamHeader{p.header}, nil
}

// Iterator implements Provider.
func (p *BAMProvider) Iterator() (Iterator, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "alignio: opening %s", p.Path)
	}
	r, err := bam.NewReader(f, 1)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "alignio: reading BAM header of %s", p.Path)
	}
	if p.header == nil {
		p.header = r.Header()
	}
	p.primaryCount = 0
	return &bamIterator{f: f, reader: r, count: &p.primaryCount}, nil
}

// NumDetectedPrimaryAlignments implements Provider.
func (p *BAMProvider) NumDetectedPrimaryAlignments() uint64 { return p.primaryCount }

// Close implements Provider.
func (p *BAMProvider) Close() error { return nil }
