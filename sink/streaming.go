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

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Streaming writes one row per finished entry, immediately: `sample\t
// entry\tv1[\tv2...]\n`. It does not support column normalisation — that
// requires the whole matrix, which a streaming sink never holds.
type Streaming struct {
	w            *bufio.Writer
	stoit, entry string
	pending      []float32
}

// NewStreaming returns a Streaming sink writing to w.
func NewStreaming(w io.Writer) *Streaming {
	return &Streaming{w: bufio.NewWriter(w)}
}

// StartStoit implements Sink.
func (s *Streaming) StartStoit(name string) error {
	s.stoit = name
	return nil
}

// StartEntry implements Sink.
func (s *Streaming) StartEntry(_ int, name string) error {
	s.entry = name
	s.pending = s.pending[:0]
	return nil
}

// AddSingleCoverage implements Sink.
func (s *Streaming) AddSingleCoverage(v float32) error {
	s.pending = append(s.pending, v)
	return nil
}

// AddMultipleCoverage implements Sink.
func (s *Streaming) AddMultipleCoverage(vs []float32) error {
	s.pending = append(s.pending, vs...)
	return nil
}

// FinishEntry implements Sink.
func (s *Streaming) FinishEntry() error {
	if _, err := fmt.Fprintf(s.w, "%s\t%s", s.stoit, s.entry); err != nil {
		return errors.Wrap(err, "sink: writing streaming row")
	}
	for _, v := range s.pending {
		if _, err := fmt.Fprintf(s.w, "\t%v", v); err != nil {
			return errors.Wrap(err, "sink: writing streaming row")
		}
	}
	if _, err := fmt.Fprintln(s.w); err != nil {
		return errors.Wrap(err, "sink: writing streaming row")
	}
	return s.w.Flush()
}

// WriteHistogramRow implements RawSink.
func (s *Streaming) WriteHistogramRow(depth int32, count int64) error {
	if _, err := fmt.Fprintf(s.w, "%s\t%s\t%d\t%d\n", s.stoit, s.entry, depth, count); err != nil {
		return errors.Wrap(err, "sink: writing pileup row")
	}
	return s.w.Flush()
}

var (
	_ Sink    = (*Streaming)(nil)
	_ RawSink = (*Streaming)(nil)
)
