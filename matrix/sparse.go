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

package matrix

import (
	"fmt"
	"io"

	"github.com/covercore/covercore/aggregate"
	"github.com/covercore/covercore/sink"
)

// SparseCached prints one line per (sample, entity) pair, sample-major:
// every row belonging to a sample is printed together, with a synthetic
// "unmapped" row first when read-mapped accounting was requested. Entities
// with no row in the cache simply never appear; unlike DenseCached, samples
// need not have the same number of rows.
type SparseCached struct{}

// PrintHeaders implements Printer; sparse and streaming share a header
// layout, so it's written immediately rather than captured.
func (SparseCached) PrintHeaders(entryType string, headers []string, w io.Writer) error {
	return Streaming{}.PrintHeaders(entryType, headers, w)
}

// Finalise implements Printer.
func (SparseCached) Finalise(cached *sink.Cached, w io.Writer, readsMappedPerSample []aggregate.ReadsMapped, columnsToNormalise []int) error {
	if err := checkNormalisationPreconditions(readsMappedPerSample, cached, columnsToNormalise); err != nil {
		return err
	}
	normalised := make(map[int]bool, len(columnsToNormalise))
	for _, c := range columnsToNormalise {
		normalised[c] = true
	}
	totals := normalisationTotals(cached, columnsToNormalise)
	numCoverages := cached.NumCoverages()
	rows := cached.Rows()
	stoitNames := cached.StoitNames()

	i := 0
	for stoitIdx, stoitName := range stoitNames {
		var group []sink.Row
		for i < len(rows) && rows[i].StoitIndex == stoitIdx {
			group = append(group, rows[i])
			i++
		}

		if readsMappedPerSample != nil {
			frac := mappedFraction(readsMappedPerSample, stoitIdx)
			if _, err := fmt.Fprintf(w, "%s\tunmapped", stoitName); err != nil {
				return err
			}
			if err := writeUnmappedCells(w, numCoverages, columnsToNormalise, frac); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		for _, row := range group {
			name, _ := cached.EntryName(row.EntryIndex)
			if _, err := fmt.Fprintf(w, "%s\t%s", stoitName, name); err != nil {
				return err
			}
			for col := 0; col < numCoverages; col++ {
				value := row.Coverages[col]
				if normalised[col] {
					frac := mappedFraction(readsMappedPerSample, stoitIdx)
					value = value * 100 * frac / totals[col][stoitIdx]
				}
				if _, err := fmt.Fprintf(w, "\t%v", value); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ Printer = SparseCached{}
