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

package sink

import "github.com/pkg/errors"

// Row is one (sample, entity) coverage tuple yielded by Cached.Rows.
type Row struct {
	StoitIndex int
	EntryIndex int
	Coverages  []float32
}

// Cached accumulates a two-dimensional (sample x entity) matrix of
// coverages for later rendering by package matrix (spec.md §4.4, §4.5).
// Width (NumCoverages) is fixed at construction; FinishEntry pads a row
// that received fewer cells than that with zeros.
type Cached struct {
	numCoverages int

	stoitNames []string
	entryNames []*string       // indexed by entryIndex; nil where absent.
	coverages  [][][]float32   // coverages[stoitIdx][entryIndex]

	curStoit int
	curEntry int
	pending  []float32
}

// NewCached returns a Cached sink whose rows hold numCoverages cells each.
func NewCached(numCoverages int) *Cached {
	return &Cached{numCoverages: numCoverages, curStoit: -1, curEntry: -1}
}

// StartStoit implements Sink.
func (c *Cached) StartStoit(name string) error {
	c.stoitNames = append(c.stoitNames, name)
	c.coverages = append(c.coverages, nil)
	c.curStoit = len(c.stoitNames) - 1
	return nil
}

// StartEntry implements Sink.
func (c *Cached) StartEntry(entryIndex int, name string) error {
	if c.curStoit < 0 {
		return errors.New("sink: StartEntry before StartStoit")
	}
	for len(c.entryNames) <= entryIndex {
		c.entryNames = append(c.entryNames, nil)
	}
	n := name
	c.entryNames[entryIndex] = &n
	c.curEntry = entryIndex
	c.pending = c.pending[:0]
	return nil
}

// AddSingleCoverage implements Sink.
func (c *Cached) AddSingleCoverage(v float32) error {
	c.pending = append(c.pending, v)
	return nil
}

// AddMultipleCoverage implements Sink.
func (c *Cached) AddMultipleCoverage(vs []float32) error {
	c.pending = append(c.pending, vs...)
	return nil
}

// FinishEntry implements Sink.
func (c *Cached) FinishEntry() error {
	if c.curStoit < 0 || c.curEntry < 0 {
		return errors.New("sink: FinishEntry without an open entry")
	}
	row := make([]float32, c.numCoverages)
	copy(row, c.pending)
	rows := c.coverages[c.curStoit]
	for len(rows) <= c.curEntry {
		rows = append(rows, nil)
	}
	rows[c.curEntry] = row
	c.coverages[c.curStoit] = rows
	c.curEntry = -1
	return nil
}

// NumCoverages returns the fixed row width.
func (c *Cached) NumCoverages() int { return c.numCoverages }

// StoitNames returns the samples in the order they were started.
func (c *Cached) StoitNames() []string { return c.stoitNames }

// EntryName returns the name registered for entryIndex, or "" if none was.
func (c *Cached) EntryName(entryIndex int) (string, bool) {
	if entryIndex < 0 || entryIndex >= len(c.entryNames) || c.entryNames[entryIndex] == nil {
		return "", false
	}
	return *c.entryNames[entryIndex], true
}

// Rows returns every finished (stoit, entry) row, samples in start order,
// entries in ascending entryIndex order within each sample.
func (c *Cached) Rows() []Row {
	var out []Row
	for s, rows := range c.coverages {
		for e, cov := range rows {
			if cov == nil {
				continue
			}
			out = append(out, Row{StoitIndex: s, EntryIndex: e, Coverages: cov})
		}
	}
	return out
}

var _ Sink = (*Cached)(nil)
