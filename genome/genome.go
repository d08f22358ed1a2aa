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

// Package genome resolves contigs to genomes, the two ways spec.md §3
// describes: an explicit contig-name -> genome mapping, and a separator-byte
// convention on contig names. Single-genome mode (the whole sample as one
// genome) has no resolver here; package aggregate handles it.
package genome

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Mapping is the explicit contig -> genome table (spec.md §3(i)), built up
// with EstablishGenome/Insert and queried by GenomeIndexOfContig.
type Mapping struct {
	genomes        []string
	contigToGenome map[string]int
}

// NewMapping returns an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{contigToGenome: map[string]int{}}
}

// EstablishGenome registers a new genome name and returns its index. Calling
// it twice with the same name creates two distinct genomes, mirroring the
// reference tool's establish_genome, which never deduplicates by name.
func (m *Mapping) EstablishGenome(name string) int {
	m.genomes = append(m.genomes, name)
	return len(m.genomes) - 1
}

// Insert records that contig belongs to the genome at genomeIndex.
func (m *Mapping) Insert(contig string, genomeIndex int) {
	m.contigToGenome[contig] = genomeIndex
}

// GenomeIndexOfContig looks up the genome a contig was assigned to.
func (m *Mapping) GenomeIndexOfContig(contig string) (int, bool) {
	idx, ok := m.contigToGenome[contig]
	return idx, ok
}

// Genomes returns the registered genome names in establishment order.
func (m *Mapping) Genomes() []string { return m.genomes }

// NumGenomes returns the number of registered genomes.
func (m *Mapping) NumGenomes() int { return len(m.genomes) }

// LoadMapping parses an explicit genome-definition file: one "contig\tgenome"
// pair per line, blank lines and lines starting with '#' ignored. A genome
// name is established the first time it's seen, so genome order in the
// returned Mapping follows first-occurrence order in the file.
func LoadMapping(r io.Reader) (*Mapping, error) {
	m := NewMapping()
	genomeIndex := map[string]int{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, errors.Errorf("genome: malformed genome-definition line %d: expected \"contig\\tgenome\", got %q", lineNo, line)
		}
		contig, genome := fields[0], fields[1]
		idx, ok := genomeIndex[genome]
		if !ok {
			idx = m.EstablishGenome(genome)
			genomeIndex[genome] = idx
		}
		m.Insert(contig, idx)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "genome: reading genome-definition file")
	}
	return m, nil
}

// ExtractGenome returns the genome name implied by separator mode: the prefix
// of name up to (exclusive) the first occurrence of sep. It returns an error
// if name does not contain sep, matching extract_genome's fatal diagnostic.
func ExtractGenome(name string, sep byte) (string, error) {
	offset := bytes.IndexByte([]byte(name), sep)
	if offset < 0 {
		return "", errors.Errorf("genome: contig name %q does not contain split symbol %q, so cannot determine which genome it belongs to", name, string(sep))
	}
	return name[:offset], nil
}
