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

// Streaming writes the header row up front and has nothing left to do at
// the end: every body row was already written by a sink.Streaming as each
// entry closed.
type Streaming struct{}

// PrintHeaders implements Printer.
func (Streaming) PrintHeaders(entryType string, headers []string, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Sample\t%s", entryType); err != nil {
		return err
	}
	for _, h := range headers {
		if _, err := fmt.Fprintf(w, "\t%s", h); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Finalise implements Printer. Streaming has no cached state to render.
func (Streaming) Finalise(*sink.Cached, io.Writer, []aggregate.ReadsMapped, []int) error {
	return nil
}

var _ Printer = Streaming{}
