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

package aggregate

import (
	"github.com/covercore/covercore/alignio"
	"github.com/covercore/covercore/depth"
	"github.com/covercore/covercore/estimator"
	"github.com/covercore/covercore/genome"
	"github.com/covercore/covercore/sink"
	"github.com/grailbio/base/log"
)

// separatorResolver extracts the genome name for a tid, either via the
// separator-byte convention or, when singleGenome is set, a constant empty
// name (every contig belongs to the one genome).
type separatorResolver struct {
	header       alignio.Header
	sep          byte
	singleGenome bool
}

func (r separatorResolver) genomeOf(tid int) (string, error) {
	if r.singleGenome {
		return "", nil
	}
	return genome.ExtractGenome(r.header.TargetName(int32(tid)), r.sep)
}

// fillForwards sums the lengths of contigs after currentTid that still
// belong to targetGenome, stopping at the first contig that doesn't (or at
// the end of the reference list). It accounts for contigs skipped entirely
// because no read ever touched them.
func (r separatorResolver) fillForwards(currentTid int, targetGenome string) (int, error) {
	extra := 0
	total := r.header.TargetCount()
	for tid := currentTid + 1; tid < total; tid++ {
		g, err := r.genomeOf(tid)
		if err != nil {
			return 0, err
		}
		if !r.singleGenome && g != targetGenome {
			break
		}
		length, err := targetLen(r.header, tid)
		if err != nil {
			return 0, err
		}
		extra += length
	}
	return extra, nil
}

// fillBackwards walks backwards from currentTid-1 while contigs still belong
// to targetGenome, returning the accumulated unobserved length and the first
// (lowest) tid reached — the genome's first_tid, used as the sink's stable
// ordering key.
func (r separatorResolver) fillBackwards(currentTid int, targetGenome string) (extra int, firstTid int, err error) {
	if currentTid == 0 {
		return 0, 0, nil
	}
	firstTid = currentTid
	for tid := currentTid - 1; tid >= 0; tid-- {
		g, gerr := r.genomeOf(tid)
		if gerr != nil {
			return 0, 0, gerr
		}
		if !r.singleGenome && g != targetGenome {
			break
		}
		length, lerr := targetLen(r.header, tid)
		if lerr != nil {
			return 0, 0, lerr
		}
		extra += length
		firstTid = tid
	}
	return extra, firstTid, nil
}

// fillBackwardsToLast sums the lengths of the contigs strictly between
// lastTid and currentTid that were skipped over because they had no mapped
// reads, stopping early if one of them belongs to a different genome.
func (r separatorResolver) fillBackwardsToLast(currentTid, lastTid int, targetGenome string) (int, error) {
	if currentTid == 0 {
		return 0, nil
	}
	extra := 0
	for tid := lastTid + 1; tid < currentTid; tid++ {
		g, err := r.genomeOf(tid)
		if err != nil {
			return 0, err
		}
		if !r.singleGenome && g != targetGenome {
			break
		}
		length, err := targetLen(r.header, tid)
		if err != nil {
			return 0, err
		}
		extra += length
	}
	return extra, nil
}

// printZeroCoverageGenomesBetween walks backwards from currentTid, grouping
// contiguous same-genome runs, to find every genome strictly between
// lastGenome (the genome just closed) and currentGenome (the genome just
// entered, already given its own row by the caller) that never had a mapped
// read. It stops as soon as it reaches lastGenome's run and emits one zero
// row per discovered genome in ascending tid order (spec.md §9,
// "Zero-coverage sweep").
func printZeroCoverageGenomesBetween(r separatorResolver, lastGenome, currentGenome string, currentTid int, estimators []estimator.Estimator, snk sink.Sink) error {
	type found struct {
		name     string
		firstTid int
	}
	var discovered []found

	tid := currentTid
	for tid >= 0 {
		g, err := r.genomeOf(tid)
		if err != nil {
			return err
		}
		if g == lastGenome {
			break
		}
		start := tid
		for start-1 >= 0 {
			g2, err := r.genomeOf(start - 1)
			if err != nil {
				return err
			}
			if g2 != g {
				break
			}
			start--
		}
		if g != currentGenome {
			discovered = append(discovered, found{name: g, firstTid: start})
		}
		tid = start - 1
	}

	for i := len(discovered) - 1; i >= 0; i-- {
		f := discovered[i]
		if err := snk.StartEntry(f.firstTid, f.name); err != nil {
			return err
		}
		for _, e := range estimators {
			if err := e.PrintZeroCoverage(snk); err != nil {
				return err
			}
		}
		if err := snk.FinishEntry(); err != nil {
			return err
		}
	}
	return nil
}

// PerGenomeSeparator runs the separator-convention (or, with singleGenome,
// whole-sample-as-one-genome) aggregation of spec.md §4.3(b).
func PerGenomeSeparator(provider alignio.Provider, sampleName string, sep byte, singleGenome bool, estimators []estimator.Estimator, snk sink.Sink, opts Options) (ReadsMapped, error) {
	header, err := provider.Header()
	if err != nil {
		return ReadsMapped{}, err
	}
	it, err := provider.Iterator()
	if err != nil {
		return ReadsMapped{}, err
	}
	defer it.Close()

	if err := snk.StartStoit(sampleName); err != nil {
		return ReadsMapped{}, err
	}

	r := separatorResolver{header: header, sep: sep, singleGenome: singleGenome}

	emitRow := func(firstTid int, name string, coverages []float32) error {
		if err := snk.StartEntry(firstTid, name); err != nil {
			return err
		}
		for i, e := range estimators {
			var err error
			if coverages[i] > 0 {
				err = e.PrintCoverage(coverages[i], snk)
			} else {
				err = e.PrintZeroCoverage(snk)
			}
			if err != nil {
				return err
			}
		}
		return snk.FinishEntry()
	}

	var sig *depth.Signal
	lastTid := 0
	doingFirst := true
	var lastGenome string
	unobservedLength := 0
	firstTidOfGenome := 0
	var numMappedReads uint64

	for it.Scan() {
		rec := it.Record()
		if opts.FlagFiltering && (rec.IsSecondary() || rec.IsSupplementary() || !rec.IsProperPair()) {
			continue
		}
		tid := int(rec.Tid())
		if tid < 0 {
			continue
		}
		numMappedReads++

		currentGenome, err := r.genomeOf(tid)
		if err != nil {
			return ReadsMapped{}, err
		}

		if tid != lastTid || doingFirst {
			switch {
			case doingFirst:
				for _, e := range estimators {
					e.Setup()
				}
				lastGenome = currentGenome
				unobservedLength, firstTidOfGenome, err = r.fillBackwards(tid, currentGenome)
				if err != nil {
					return ReadsMapped{}, err
				}
				doingFirst = false
				if opts.PrintZeroEntity && !singleGenome {
					if err := printZeroCoverageGenomesBetween(r, "", currentGenome, tid, estimators, snk); err != nil {
						return ReadsMapped{}, err
					}
				}

			case currentGenome == lastGenome:
				for _, e := range estimators {
					e.AddContig(sig)
				}
				extra, err := r.fillBackwardsToLast(tid, lastTid, currentGenome)
				if err != nil {
					return ReadsMapped{}, err
				}
				unobservedLength += extra

			default:
				extra, err := r.fillBackwardsToLast(tid, lastTid, lastGenome)
				if err != nil {
					return ReadsMapped{}, err
				}
				unobservedLength += extra
				coverages := make([]float32, len(estimators))
				anyPositive := false
				for i, e := range estimators {
					e.AddContig(sig)
					coverages[i] = e.CalculateCoverage(unobservedLength)
					if coverages[i] > 0 {
						anyPositive = true
					}
				}
				if anyPositive || opts.PrintZeroEntity {
					if err := emitRow(firstTidOfGenome, lastGenome, coverages); err != nil {
						return ReadsMapped{}, err
					}
				}
				for _, e := range estimators {
					e.Setup()
				}
				if opts.PrintZeroEntity {
					if err := printZeroCoverageGenomesBetween(r, lastGenome, currentGenome, tid, estimators, snk); err != nil {
						return ReadsMapped{}, err
					}
				}
				lastGenome = currentGenome
				unobservedLength, firstTidOfGenome, err = r.fillBackwards(tid, currentGenome)
				if err != nil {
					return ReadsMapped{}, err
				}
			}

			length, err := targetLen(header, tid)
			if err != nil {
				return ReadsMapped{}, err
			}
			sig = depth.New(length)
			lastTid = tid
		}

		sig.AddRead(rec.Pos(), rec.Cigar())
	}
	if err := it.Err(); err != nil {
		return ReadsMapped{}, err
	}

	if doingFirst {
		log.Error.Printf("aggregate: no reads were observed in sample %q - perhaps something went wrong in the mapping?", sampleName)
		if opts.PrintZeroEntity {
			var zerr error
			if singleGenome {
				zerr = emitRow(0, "genome1", make([]float32, len(estimators)))
			} else {
				zerr = printZeroCoverageGenomesBetween(r, "", "", header.TargetCount()-1, estimators, snk)
			}
			if zerr != nil {
				return ReadsMapped{}, zerr
			}
		}
		return readsMappedFor(provider, numMappedReads), nil
	}

	if singleGenome {
		lastGenome = "genome1"
	}
	extra, err := r.fillForwards(lastTid, lastGenome)
	if err != nil {
		return ReadsMapped{}, err
	}
	unobservedLength += extra

	coverages := make([]float32, len(estimators))
	anyPositive := false
	for i, e := range estimators {
		e.AddContig(sig)
		coverages[i] = e.CalculateCoverage(unobservedLength)
		if coverages[i] > 0 {
			anyPositive = true
		}
	}
	if anyPositive || opts.PrintZeroEntity {
		if err := emitRow(firstTidOfGenome, lastGenome, coverages); err != nil {
			return ReadsMapped{}, err
		}
	}
	if opts.PrintZeroEntity && !singleGenome {
		if err := printZeroCoverageGenomesBetween(r, lastGenome, "", header.TargetCount()-1, estimators, snk); err != nil {
			return ReadsMapped{}, err
		}
	}

	return readsMappedFor(provider, numMappedReads), nil
}
