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
	"github.com/covercore/covercore/sink"
	"github.com/grailbio/base/log"
)

// noTid marks "no contig closed yet"; never a valid tid.
const noTid = -2

// PerContig runs the contig-is-the-entity aggregation of spec.md §4.3(a):
// each tid closes the previous contig, folds it into every estimator, and
// emits a row before a new DepthSignal opens for the next tid.
func PerContig(provider alignio.Provider, sampleName string, estimators []estimator.Estimator, snk sink.Sink, opts Options) (ReadsMapped, error) {
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

	var sig *depth.Signal
	lastTid := noTid
	var numMappedReads uint64

	closeContig := func(closingTid, nextTid int) error {
		if closingTid != noTid {
			for _, e := range estimators {
				e.AddContig(sig)
			}
			coverages := make([]float32, len(estimators))
			anyPositive := false
			for i, e := range estimators {
				coverages[i] = e.CalculateCoverage(0)
				if coverages[i] > 0 {
					anyPositive = true
				}
			}
			if opts.PrintZeroEntity || anyPositive {
				if err := snk.StartEntry(closingTid, header.TargetName(int32(closingTid))); err != nil {
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
				if err := snk.FinishEntry(); err != nil {
					return err
				}
			}
			for _, e := range estimators {
				e.Setup()
			}
		}
		if opts.PrintZeroEntity {
			from := closingTid + 1
			if closingTid == noTid {
				from = 0
			}
			for my := from; my < nextTid; my++ {
				if err := snk.StartEntry(my, header.TargetName(int32(my))); err != nil {
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
		}
		return nil
	}

	sawAny := false
	for it.Scan() {
		rec := it.Record()
		if !acceptRecord(rec, opts) {
			continue
		}
		sawAny = true
		numMappedReads++
		tid := int(rec.Tid())
		if tid != lastTid {
			log.Debug.Printf("aggregate: new tid %d", tid)
			if err := closeContig(lastTid, tid); err != nil {
				return ReadsMapped{}, err
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

	if !sawAny {
		log.Error.Printf("aggregate: no reads were observed in sample %q - perhaps something went wrong in the mapping?", sampleName)
	}
	if err := closeContig(lastTid, header.TargetCount()); err != nil {
		return ReadsMapped{}, err
	}

	return readsMappedFor(provider, numMappedReads), nil
}
