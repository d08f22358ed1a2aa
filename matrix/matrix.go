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

// Package matrix renders the rows accumulated by a sink.Cached into final
// output (spec.md §4.5). It mirrors the CoveragePrinter three-way split of
// the original implementation: a Streaming variant that has nothing left to
// do (rows were already written as they closed), and two cached variants —
// SparseCached and DenseCached — that only know the full sample/entity
// matrix once aggregation across every sample has finished.
//
// Printing happens in two phases, since the header row's shape is known
// before aggregation starts but a cached variant's body isn't renderable
// until it ends: PrintHeaders is called once up front, Finalise once after
// every sample has been aggregated.
package matrix

import (
	"fmt"
	"io"

	"github.com/covercore/covercore/aggregate"
	"github.com/covercore/covercore/sink"
	"github.com/pkg/errors"
)

// Printer is the output-rendering half of a run: it turns the rows a
// sink.Cached accumulated (or, for the streaming variant, nothing at all)
// into the final table.
type Printer interface {
	// PrintHeaders writes or captures the header row. entryType names the
	// row kind ("Contig" or "Genome"); headers are the column names each
	// configured estimator contributes, in order.
	PrintHeaders(entryType string, headers []string, w io.Writer) error
	// Finalise renders the accumulated matrix, if any. readsMappedPerSample
	// may be nil when read-count accounting wasn't requested; it is
	// required whenever columnsToNormalise is non-empty, since relative
	// abundance is defined in terms of the fraction of reads mapped.
	Finalise(cached *sink.Cached, w io.Writer, readsMappedPerSample []aggregate.ReadsMapped, columnsToNormalise []int) error
}

func normalisationTotals(cached *sink.Cached, columnsToNormalise []int) map[int][]float32 {
	totals := make(map[int][]float32, len(columnsToNormalise))
	for _, col := range columnsToNormalise {
		totals[col] = make([]float32, len(cached.StoitNames()))
	}
	for _, row := range cached.Rows() {
		for _, col := range columnsToNormalise {
			totals[col][row.StoitIndex] += row.Coverages[col]
		}
	}
	return totals
}

func mappedFraction(readsMappedPerSample []aggregate.ReadsMapped, stoitIndex int) float32 {
	rm := readsMappedPerSample[stoitIndex]
	if rm.NumReads == 0 {
		return 0
	}
	return float32(rm.NumMappedReads) / float32(rm.NumReads)
}

// writeUnmappedCells writes one sample's "unmapped" row cells: "NA"
// for every column outside columnsToNormalise, and 100*(1-fractionMapped)
// for every normalised column (spec.md §4.5, "synthetic unmapped row").
func writeUnmappedCells(w io.Writer, numCoverages int, columnsToNormalise []int, fractionMapped float32) error {
	normalised := make(map[int]bool, len(columnsToNormalise))
	for _, c := range columnsToNormalise {
		normalised[c] = true
	}
	for i := 0; i < numCoverages; i++ {
		var err error
		if normalised[i] {
			_, err = fmt.Fprintf(w, "\t%v", 100*(1-fractionMapped))
		} else {
			_, err = io.WriteString(w, "\tNA")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func checkNormalisationPreconditions(readsMappedPerSample []aggregate.ReadsMapped, cached *sink.Cached, columnsToNormalise []int) error {
	if len(columnsToNormalise) == 0 {
		return nil
	}
	if readsMappedPerSample == nil {
		return errors.New("matrix: columnsToNormalise given without read-mapped accounting")
	}
	if len(readsMappedPerSample) != len(cached.StoitNames()) {
		return errors.Errorf("matrix: %d reads-mapped entries for %d samples", len(readsMappedPerSample), len(cached.StoitNames()))
	}
	return nil
}
