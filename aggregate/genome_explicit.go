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
	"github.com/pkg/errors"
)

// PerGenomeExplicit runs the explicit-mapping genome aggregation of spec.md
// §4.3(b): every tid resolves to a genome index (or to no genome) via
// mapping, and each genome's estimators fold in every one of its contigs
// before a single row is emitted, keyed by genome index.
func PerGenomeExplicit(provider alignio.Provider, sampleName string, mapping *genome.Mapping, estimators []estimator.Estimator, snk sink.Sink, opts Options) (ReadsMapped, error) {
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

	numRefs := header.TargetCount()
	refGenome := make([]int, numRefs) // -1 = unmapped to any genome
	numInGenomes, numNotInGenomes := 0, 0
	for tid := 0; tid < numRefs; tid++ {
		idx, ok := mapping.GenomeIndexOfContig(header.TargetName(int32(tid)))
		if ok {
			refGenome[tid] = idx
			numInGenomes++
		} else {
			refGenome[tid] = -1
			numNotInGenomes++
		}
	}
	log.Debug.Printf("aggregate: of %d reference IDs, %d assigned to a genome and %d were not", numRefs, numInGenomes, numNotInGenomes)
	if numInGenomes == 0 {
		return ReadsMapped{}, errors.New("aggregate: there are no found reference sequences that are a part of a genome")
	}

	perGenomeEstimators := make([][]estimator.Estimator, mapping.NumGenomes())
	for i := range perGenomeEstimators {
		perGenomeEstimators[i] = cloneAll(estimators)
	}

	var sig *depth.Signal
	lastTid := 0
	doingFirst := true
	seen := make(map[int]bool)
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
		if tid != lastTid || doingFirst {
			if doingFirst {
				doingFirst = false
			} else if idx := refGenome[lastTid]; idx >= 0 {
				for _, e := range perGenomeEstimators[idx] {
					e.AddContig(sig)
				}
			}
			length, err := targetLen(header, tid)
			if err != nil {
				return ReadsMapped{}, err
			}
			sig = depth.New(length)
			lastTid = tid
			seen[tid] = true
		}
		if refGenome[tid] >= 0 {
			numMappedReads++
			sig.AddRead(rec.Pos(), rec.Cigar())
		}
	}
	if err := it.Err(); err != nil {
		return ReadsMapped{}, err
	}

	if doingFirst {
		log.Error.Printf("aggregate: no reads were observed in sample %q - perhaps something went wrong in the mapping?", sampleName)
	} else if idx := refGenome[lastTid]; idx >= 0 {
		for _, e := range perGenomeEstimators[idx] {
			e.AddContig(sig)
		}
	}

	unobservedLengths := make([]int, mapping.NumGenomes())
	for tid := 0; tid < numRefs; tid++ {
		idx := refGenome[tid]
		if idx < 0 || seen[tid] {
			continue
		}
		length, err := targetLen(header, tid)
		if err != nil {
			return ReadsMapped{}, err
		}
		unobservedLengths[idx] += length
	}

	for i, name := range mapping.Genomes() {
		ests := perGenomeEstimators[i]
		coverages := make([]float32, len(ests))
		anyPositive := false
		for j, e := range ests {
			coverages[j] = e.CalculateCoverage(unobservedLengths[i])
			if coverages[j] > 0 {
				anyPositive = true
			}
		}
		if !anyPositive && !opts.PrintZeroEntity {
			continue
		}
		if err := snk.StartEntry(i, name); err != nil {
			return ReadsMapped{}, err
		}
		for j, e := range ests {
			var err error
			if coverages[j] > 0 {
				err = e.PrintCoverage(coverages[j], snk)
			} else {
				err = e.PrintZeroCoverage(snk)
			}
			if err != nil {
				return ReadsMapped{}, err
			}
		}
		if err := snk.FinishEntry(); err != nil {
			return ReadsMapped{}, err
		}
	}

	return readsMappedFor(provider, numMappedReads), nil
}
