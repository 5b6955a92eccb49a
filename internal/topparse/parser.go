// Package topparse turns the batch output of top into a summary and a
// CPU-ordered list of process records.
package topparse

import (
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Enricher fills in the application identity of a parsed record.
type Enricher interface {
	Resolve(rec ProcessRecord) ProcessRecord
}

type options struct {
	enricher Enricher
	workers  int
}

// Option configures Parse.
type Option func(*options)

// WithEnricher resolves each record's AppIdentifier after parsing.
func WithEnricher(e Enricher) Option {
	return func(o *options) { o.enricher = e }
}

// WithWorkers enriches records on up to n goroutines. Values below 2 keep
// enrichment on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Parse classifies every line of output, collects the summary and the
// process rows, enriches the rows and returns them sorted by CPU usage,
// highest first. Rows with equal CPU keep their order in output. Parse never
// fails: unusable input yields a zero summary and no records.
func Parse(output string, opts ...Option) (SnapshotSummary, []ProcessRecord) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		summary       SnapshotSummary
		records       []ProcessRecord
		inProcessList bool
		kind          LineKind
	)

	for _, line := range strings.Split(output, "\n") {
		kind, inProcessList = ClassifyLine(line, inProcessList)
		switch kind {
		case LineCPUSummary, LineMemorySummary, LineTaskSummary:
			summary.apply(kind, line)
		case LineProcessRow:
			if rec, ok := ParseRow(line); ok {
				records = append(records, rec)
			}
		}
	}

	if o.enricher != nil {
		enrich(records, o.enricher, o.workers)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CPUPercent > records[j].CPUPercent
	})

	return summary, records
}

func enrich(records []ProcessRecord, e Enricher, workers int) {
	if workers < 2 || len(records) < 2 {
		for i := range records {
			records[i] = e.Resolve(records[i])
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range records {
		i := i
		g.Go(func() error {
			records[i] = e.Resolve(records[i])
			return nil
		})
	}
	_ = g.Wait()
}
