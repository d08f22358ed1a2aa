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

// Package alignio defines the contract the coverage core consumes from an
// external alignment reader: a sequential iterator of CIGAR-annotated
// records plus a reference-header lookup. It also provides one concrete
// implementation backed by github.com/grailbio/hts/bam.
//
// The core never seeks or re-reads: Provider.Iterator yields records in
// ascending (tid, pos) order exactly once, which is all the streaming
// coverage algorithm requires.
package alignio

// Op is a CIGAR operation type, following the single-letter SAM spec
// vocabulary (M, I, D, N, S, H, P, =, X).
type Op byte

const (
	OpMatch     Op = 'M'
	OpInsertion Op = 'I'
	OpDeletion  Op = 'D'
	OpSkip      Op = 'N'
	OpSoftClip  Op = 'S'
	OpHardClip  Op = 'H'
	OpPadding   Op = 'P'
	OpEqual     Op = '='
	OpMismatch  Op = 'X'
	OpBack      Op = 'B' // bíogo's CigarBack; never produced by conforming BAMs.
)

// ConsumesReference reports whether an operation of this type advances the
// reference-coordinate cursor.
func (o Op) ConsumesReference() bool {
	switch o {
	case OpMatch, OpEqual, OpMismatch, OpDeletion, OpSkip:
		return true
	default:
		return false
	}
}

// AlignedBlock reports whether an operation of this type is a
// reference-and-query-consuming aligned block (spec.md §4.1's "M, =, X").
func (o Op) AlignedBlock() bool {
	switch o {
	case OpMatch, OpEqual, OpMismatch:
		return true
	default:
		return false
	}
}

// CigarOp is one (operation, length) pair of a CIGAR string.
type CigarOp struct {
	Op  Op
	Len int
}

// Record is a single aligned (or unaligned) sequencing read.
type Record interface {
	// Tid is the reference this record aligns to, or -1 if unmapped.
	Tid() int32
	// Pos is the 0-based leftmost aligned reference position. Meaningless
	// when Tid() < 0.
	Pos() int
	// Cigar describes how the read aligns to the reference. Empty when
	// Tid() < 0.
	Cigar() []CigarOp
	// Name is the query name, used only for diagnostics.
	Name() string
	IsSecondary() bool
	IsSupplementary() bool
	IsProperPair() bool
}

// Header exposes the reference dictionary of an alignment stream.
type Header interface {
	// TargetCount is the number of references, T. Valid tids are [0, T).
	TargetCount() int
	// TargetName returns the name of reference tid.
	TargetName(tid int32) string
	// TargetLen returns the length of reference tid in bases, and false if
	// the header has no length for it (a corrupt-header condition).
	TargetLen(tid int32) (int, bool)
}

// Iterator scans records of one sample in ascending (tid, pos) order.
type Iterator interface {
	// Scan advances to the next record, returning false at end of stream or
	// on error; call Err to distinguish the two.
	Scan() bool
	// Record returns the record last advanced to by Scan.
	Record() Record
	// Err returns the error that stopped iteration, or nil at a clean EOF.
	Err() error
	// Close releases resources backing the iterator. Idempotent.
	Close() error
}

// Provider opens one sample's alignment stream.
type Provider interface {
	// Header returns the sample's reference dictionary.
	Header() (Header, error)
	// Iterator returns a single-pass sequential iterator over every record
	// in the sample, mapped and unmapped alike, in file order.
	Iterator() (Iterator, error)
	// NumDetectedPrimaryAlignments is the read-count accounting spec.md §1
	// treats as an external collaborator; it becomes the denominator of
	// ReadsMapped.NumReads. Valid only after the iterator returned by
	// Iterator has been fully scanned and closed.
	NumDetectedPrimaryAlignments() uint64
	// Close releases the provider. Idempotent. Requires any iterator it
	// produced to have been closed first.
	Close() error
}
