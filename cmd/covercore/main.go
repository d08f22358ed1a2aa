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
package main

/*
covercore computes per-sample read coverage over a set of reference
contigs, or over genomes built up from those contigs, from one or more
coordinate-sorted BAM files.

Example, per-contig mean coverage over two samples:

    covercore -methods mean sample1.bam sample2.bam

Example, per-genome coverage using a "_" separator on contig names,
with relative abundance normalisation of the first (and only) column:

    covercore -entity genome -separator _ -normalise 0 -output-format sparse \
        sample1.bam sample2.bam
*/

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/covercore/covercore/aggregate"
	"github.com/covercore/covercore/alignio"
	"github.com/covercore/covercore/estimator"
	"github.com/covercore/covercore/genome"
	"github.com/covercore/covercore/matrix"
	"github.com/covercore/covercore/sink"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/pkg/errors"
)

// Opts collects one run's configuration, one field per flag, mirroring
// pileup/snp.Opts's convention.
type Opts struct {
	EntityType         string
	GenomeDefinitions  string
	Separator          string
	SingleGenome       bool
	Methods            string
	MinCoveredFraction float64
	EndExclusion       int
	TrimMin            float64
	TrimMax            float64
	FlagFiltering      bool
	PrintZeroEntity    bool
	OutputFormat       string
	Normalise          string
	OutputPath         string
	Parallelism        int
}

// DefaultOpts gives every flag an explicit, named default.
var DefaultOpts = Opts{
	EntityType:         "contig",
	Methods:            "mean",
	MinCoveredFraction: 0,
	EndExclusion:       75,
	TrimMin:            0.05,
	TrimMax:            0.95,
	OutputFormat:       "sparse",
	Parallelism:        0,
}

var (
	entityType         = flag.String("entity", DefaultOpts.EntityType, `Entity to report coverage for: "contig" or "genome"`)
	genomeDefinitions  = flag.String("genome-definitions", DefaultOpts.GenomeDefinitions, "Path to a contig<TAB>genome mapping file (genome mode; mutually exclusive with -separator and -single-genome)")
	separator          = flag.String("separator", DefaultOpts.Separator, "Single-byte separator splitting a contig name's genome prefix (genome mode)")
	singleGenome       = flag.Bool("single-genome", DefaultOpts.SingleGenome, `Treat every contig as belonging to one genome, "genome1" (genome mode)`)
	methods            = flag.String("methods", DefaultOpts.Methods, "Comma-separated estimator kinds: mean,variance,trimmed_mean,covered_fraction,pileup_counts")
	minCoveredFraction = flag.Float64("min-covered-fraction", DefaultOpts.MinCoveredFraction, "Minimum fraction of an entity's length that must be covered for a non-zero result")
	endExclusion       = flag.Int("end-exclusion", DefaultOpts.EndExclusion, "Bases excluded from both ends of each contig before statistics are computed")
	trimMin            = flag.Float64("trim-min", DefaultOpts.TrimMin, "Lower quantile discarded by trimmed_mean")
	trimMax            = flag.Float64("trim-max", DefaultOpts.TrimMax, "Upper quantile discarded by trimmed_mean")
	flagFiltering      = flag.Bool("flag-filtering", false, "Discard secondary, supplementary, and non-proper-pair records")
	printZeroEntity    = flag.Bool("print-zero-entity", false, "Emit a row for entities with no mapped reads")
	outputFormat       = flag.String("output-format", DefaultOpts.OutputFormat, `Output layout: "streaming", "sparse", or "dense"`)
	normalise          = flag.String("normalise", DefaultOpts.Normalise, "Comma-separated 0-based column indices to report as relative-abundance percentages")
	outputPath         = flag.String("output", DefaultOpts.OutputPath, "Output file path; default stdout")
	parallelism        = flag.Int("threads", DefaultOpts.Parallelism, "Number of samples to process concurrently; 0 = one worker per sample")
)

func coverCoreUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] bam1 [bam2 ...]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = coverCoreUsage
	shutdown := grail.Init()
	defer shutdown()

	bamPaths := flag.Args()
	if len(bamPaths) == 0 {
		log.Fatalf("covercore: at least one BAM path is required")
	}

	opts := Opts{
		EntityType:         *entityType,
		GenomeDefinitions:  *genomeDefinitions,
		Separator:          *separator,
		SingleGenome:       *singleGenome,
		Methods:            *methods,
		MinCoveredFraction: *minCoveredFraction,
		EndExclusion:       *endExclusion,
		TrimMin:            *trimMin,
		TrimMax:            *trimMax,
		FlagFiltering:      *flagFiltering,
		PrintZeroEntity:    *printZeroEntity,
		OutputFormat:       *outputFormat,
		Normalise:          *normalise,
		OutputPath:         *outputPath,
		Parallelism:        *parallelism,
	}

	if err := run(bamPaths, &opts); err != nil {
		log.Fatalf("covercore: %v", err)
	}
}

// buildEstimators constructs one fresh estimator per requested kind. It is
// called once per sample so that concurrently-processed samples never share
// accumulator state.
func buildEstimators(opts *Opts) ([]estimator.Estimator, error) {
	kinds := strings.Split(opts.Methods, ",")
	out := make([]estimator.Estimator, 0, len(kinds))
	for _, k := range kinds {
		k = strings.TrimSpace(k)
		switch k {
		case "mean":
			out = append(out, estimator.NewMean(opts.MinCoveredFraction, opts.EndExclusion))
		case "variance":
			out = append(out, estimator.NewVariance(opts.MinCoveredFraction, opts.EndExclusion))
		case "trimmed_mean":
			out = append(out, estimator.NewTrimmedMean(opts.TrimMin, opts.TrimMax, opts.MinCoveredFraction, opts.EndExclusion))
		case "covered_fraction":
			out = append(out, estimator.NewCoveredFraction(opts.MinCoveredFraction, opts.EndExclusion))
		case "pileup_counts":
			out = append(out, estimator.NewPileupCounts(opts.MinCoveredFraction, opts.EndExclusion))
		default:
			return nil, errors.Errorf("covercore: unknown estimator kind %q", k)
		}
	}
	return out, nil
}

func parseColumns(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "covercore: parsing -normalise value %q", p)
		}
		out[i] = v
	}
	return out, nil
}

func sampleNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func percentMapped(rm aggregate.ReadsMapped) float64 {
	if rm.NumReads == 0 {
		return 0
	}
	return 100 * float64(rm.NumMappedReads) / float64(rm.NumReads)
}

// syncWriter lets multiple concurrently-processed samples share one
// streaming output without interleaving within a single row: sink.Streaming
// flushes once per finished entry, which becomes one Write call here.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// mergeCached replays every row of src, a single sample's private Cached
// sink, into dst under sampleName — used to combine the independently
// computed per-sample caches after traverse.Each's barrier, since sink.Cached
// itself isn't safe for concurrent writers.
func mergeCached(dst *sink.Cached, src *sink.Cached, sampleName string) error {
	if err := dst.StartStoit(sampleName); err != nil {
		return err
	}
	for _, row := range src.Rows() {
		name, _ := src.EntryName(row.EntryIndex)
		if err := dst.StartEntry(row.EntryIndex, name); err != nil {
			return err
		}
		if err := dst.AddMultipleCoverage(row.Coverages); err != nil {
			return err
		}
		if err := dst.FinishEntry(); err != nil {
			return err
		}
	}
	return nil
}

func run(bamPaths []string, opts *Opts) error {
	headerEstimators, err := buildEstimators(opts)
	if err != nil {
		return err
	}
	var headers []string
	for _, e := range headerEstimators {
		headers = append(headers, e.Headers()...)
	}

	entryTypeStr := "Contig"
	if opts.EntityType == "genome" {
		entryTypeStr = "Genome"
	}

	columnsToNormalise, err := parseColumns(opts.Normalise)
	if err != nil {
		return err
	}

	var mapping *genome.Mapping
	var sepByte byte
	if opts.EntityType == "genome" {
		switch {
		case opts.GenomeDefinitions != "":
			f, err := os.Open(opts.GenomeDefinitions)
			if err != nil {
				return errors.Wrapf(err, "covercore: opening genome definitions %s", opts.GenomeDefinitions)
			}
			mapping, err = genome.LoadMapping(f)
			f.Close()
			if err != nil {
				return err
			}
		case opts.SingleGenome:
			// Handled directly by PerGenomeSeparator's singleGenome argument.
		case opts.Separator != "":
			if len(opts.Separator) != 1 {
				return errors.Errorf("covercore: -separator must be exactly one byte, got %q", opts.Separator)
			}
			sepByte = opts.Separator[0]
		default:
			return errors.New("covercore: -entity genome requires one of -genome-definitions, -separator, or -single-genome")
		}
	}

	out := io.Writer(os.Stdout)
	if opts.OutputPath != "" {
		f, err := os.Create(opts.OutputPath)
		if err != nil {
			return errors.Wrapf(err, "covercore: creating output file %s", opts.OutputPath)
		}
		defer f.Close()
		out = f
	}

	var printer matrix.Printer
	switch opts.OutputFormat {
	case "streaming":
		printer = matrix.Streaming{}
	case "sparse":
		printer = matrix.SparseCached{}
	case "dense":
		printer = &matrix.DenseCached{}
	default:
		return errors.Errorf("covercore: unknown -output-format %q", opts.OutputFormat)
	}
	if err := printer.PrintHeaders(entryTypeStr, headers, out); err != nil {
		return err
	}

	type sampleResult struct {
		name   string
		reads  aggregate.ReadsMapped
		cached *sink.Cached
	}
	results := make([]sampleResult, len(bamPaths))
	streamingOut := &syncWriter{w: out}

	processSample := func(i int) error {
		path := bamPaths[i]
		sampleName := sampleNameFromPath(path)

		ests, err := buildEstimators(opts)
		if err != nil {
			return err
		}

		provider := &alignio.BAMProvider{Path: path}
		defer provider.Close()

		var outSink sink.Sink
		var cached *sink.Cached
		if opts.OutputFormat == "streaming" {
			outSink = sink.NewStreaming(streamingOut)
		} else {
			cached = sink.NewCached(len(headers))
			outSink = cached
		}

		aggOpts := aggregate.Options{FlagFiltering: opts.FlagFiltering, PrintZeroEntity: opts.PrintZeroEntity}

		var reads aggregate.ReadsMapped
		switch {
		case opts.EntityType != "genome":
			reads, err = aggregate.PerContig(provider, sampleName, ests, outSink, aggOpts)
		case mapping != nil:
			reads, err = aggregate.PerGenomeExplicit(provider, sampleName, mapping, ests, outSink, aggOpts)
		default:
			reads, err = aggregate.PerGenomeSeparator(provider, sampleName, sepByte, opts.SingleGenome, ests, outSink, aggOpts)
		}
		if err != nil {
			return errors.Wrapf(err, "covercore: sample %s", sampleName)
		}
		log.Printf("covercore: in sample %q, found %d reads mapped out of %d total (%.2f%%)",
			sampleName, reads.NumMappedReads, reads.NumReads, percentMapped(reads))

		results[i] = sampleResult{name: sampleName, reads: reads, cached: cached}
		return nil
	}

	nSamples := len(bamPaths)
	workers := opts.Parallelism
	if workers <= 0 || workers > nSamples {
		workers = nSamples
	}
	err = traverse.Each(workers, func(jobIdx int) error {
		startIdx := (jobIdx * nSamples) / workers
		endIdx := ((jobIdx + 1) * nSamples) / workers
		for i := startIdx; i < endIdx; i++ {
			if err := processSample(i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if opts.OutputFormat == "streaming" {
		return nil
	}

	globalCached := sink.NewCached(len(headers))
	readsMapped := make([]aggregate.ReadsMapped, len(results))
	for i, r := range results {
		readsMapped[i] = r.reads
		if err := mergeCached(globalCached, r.cached, r.name); err != nil {
			return err
		}
	}

	return printer.Finalise(globalCached, out, readsMapped, columnsToNormalise)
}
