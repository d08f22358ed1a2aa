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

// Package sink implements the two CoverageSink variants of spec.md §4.4: a
// Streaming sink that writes rows as soon as an entry closes, and a Cached
// sink that accumulates a dense (sample x entity x coverage) matrix for
// later rendering by package matrix.
package sink

// Sink is the contract a CoverageEstimator writes finished values to.
// Samples are append-only: once StartStoit has been called with a name, that
// sample is fixed for the lifetime of the Sink.
type Sink interface {
	// StartStoit begins a new sample.
	StartStoit(name string) error
	// StartEntry opens a row for the current sample. entryIndex is the
	// stable ordering key the aggregator assigns (a contig tid, a genome's
	// first observed/predicted tid in separator mode, or a genome's index in
	// an explicit mapping).
	StartEntry(entryIndex int, name string) error
	// AddSingleCoverage appends one coverage cell to the open row.
	AddSingleCoverage(v float32) error
	// AddMultipleCoverage appends several coverage cells to the open row.
	AddMultipleCoverage(vs []float32) error
	// FinishEntry closes the currently open row.
	FinishEntry() error
}

// RawSink is implemented by sinks that can emit pre-formatted, multi-row
// text outside the fixed-width numeric row model — the only statistic that
// needs this is PileupCounts (spec.md §4.2, §4.5 "Multi-value statistics in
// cached sinks"). The Cached sink does not implement RawSink; an estimator
// that requires it and receives a sink that doesn't is a fatal configuration
// error (spec.md §7).
type RawSink interface {
	Sink
	// WriteHistogramRow writes one (depth, position count) pair for the
	// currently open entry.
	WriteHistogramRow(depth int32, count int64) error
}
