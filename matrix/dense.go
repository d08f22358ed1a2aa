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
	"github.com/pkg/errors"
)

// DenseCached prints one line per entity, with every sample's columns laid
// out side by side — "wide" format. Unlike SparseCached, it assumes every
// sample observed the same set of entities in the same order; the header
// row needs the full sample list, which isn't known until Finalise, so
// PrintHeaders only captures the entry type and estimator headers and
// Finalise writes them out.
type DenseCached struct {
	entryType string
	headers   []string
}

// PrintHeaders implements Printer: captures the shape of the header row for
// use once Finalise knows the full sample list.
func (d *DenseCached) PrintHeaders(entryType string, headers []string, _ io.Writer) error {
	d.entryType = entryType
	d.headers = headers
	return nil
}

// Finalise implements Printer.
func (d *DenseCached) Finalise(cached *sink.Cached, w io.Writer, readsMappedPerSample []aggregate.ReadsMapped, columnsToNormalise []int) error {
	if err := checkNormalisationPreconditions(readsMappedPerSample, cached, columnsToNormalise); err != nil {
		return err
	}
	stoitNames := cached.StoitNames()
	numCoverages := cached.NumCoverages()

	if _, err := fmt.Fprint(w, d.entryType); err != nil {
		return err
	}
	for _, stoitName := range stoitNames {
		for _, h := range d.headers {
			if _, err := fmt.Fprintf(w, "\t%s %s", stoitName, h); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	if readsMappedPerSample != nil {
		if _, err := io.WriteString(w, "unmapped"); err != nil {
			return err
		}
		for stoitIdx := range stoitNames {
			frac := mappedFraction(readsMappedPerSample, stoitIdx)
			if err := writeUnmappedCells(w, numCoverages, columnsToNormalise, frac); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	normalised := make(map[int]bool, len(columnsToNormalise))
	for _, c := range columnsToNormalise {
		normalised[c] = true
	}
	totals := normalisationTotals(cached, columnsToNormalise)

	rowsByStoit := make([][]sink.Row, len(stoitNames))
	for _, row := range cached.Rows() {
		rowsByStoit[row.StoitIndex] = append(rowsByStoit[row.StoitIndex], row)
	}
	if len(stoitNames) == 0 {
		return nil
	}
	numEntries := len(rowsByStoit[0])
	for _, rows := range rowsByStoit {
		if len(rows) != numEntries {
			return errors.New("matrix: dense printing requires every sample to observe the same set of entities")
		}
	}

	for entryI := 0; entryI < numEntries; entryI++ {
		name, _ := cached.EntryName(rowsByStoit[0][entryI].EntryIndex)
		if _, err := io.WriteString(w, name); err != nil {
			return err
		}
		for stoitIdx, rows := range rowsByStoit {
			row := rows[entryI]
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
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

var _ Printer = (*DenseCached)(nil)
