package migration

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"festadmin/internal/content"
)

// RecordDiff lists what a run changed (or would change) in one record.
type RecordDiff struct {
	Collection string        `json:"collection" yaml:"collection"`
	ID         string        `json:"id" yaml:"id"`
	Changes    []FieldChange `json:"changes" yaml:"changes"`
	Issues     []string      `json:"issues,omitempty" yaml:"issues,omitempty"`
	Skips      []string      `json:"skips,omitempty" yaml:"skips,omitempty"`
}

// WriteFailure is one record whose write was attempted and failed.
type WriteFailure struct {
	Collection string `json:"collection" yaml:"collection"`
	ID         string `json:"id" yaml:"id"`
	Error      string `json:"error" yaml:"error"`
}

// CollectionSummary aggregates the counters of one collection.
type CollectionSummary struct {
	Name      string `json:"name" yaml:"name"`
	Total     int    `json:"total" yaml:"total"`
	Changed   int    `json:"changed" yaml:"changed"`
	Unchanged int    `json:"unchanged" yaml:"unchanged"`
	Written   int    `json:"written" yaml:"written"`
	Failed    int    `json:"failed" yaml:"failed"`
}

// Report is the outcome of a Migrate run. RecordsChanged counts records with a
// non-empty diff whether or not their write succeeded.
type Report struct {
	RunID            string              `json:"runId" yaml:"runId"`
	DryRun           bool                `json:"dryRun" yaml:"dryRun"`
	StartedAt        time.Time           `json:"startedAt" yaml:"startedAt"`
	Duration         time.Duration       `json:"-" yaml:"-"`
	DurationMillis   int64               `json:"durationMs" yaml:"durationMs"`
	TotalRecords     int                 `json:"totalRecords" yaml:"totalRecords"`
	RecordsChanged   int                 `json:"recordsChanged" yaml:"recordsChanged"`
	RecordsUnchanged int                 `json:"recordsUnchanged" yaml:"recordsUnchanged"`
	RecordsWritten   int                 `json:"recordsWritten" yaml:"recordsWritten"`
	Collections      []CollectionSummary `json:"collections" yaml:"collections"`
	PerRecordDiffs   []RecordDiff        `json:"perRecordDiffs" yaml:"perRecordDiffs"`
	WriteFailures    []WriteFailure      `json:"writeFailures" yaml:"writeFailures"`
	Cancelled        bool                `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// accumulator is the only state shared between workers.
type accumulator struct {
	mu      sync.Mutex
	report  *Report
	byName  map[string]*CollectionSummary
	ordered []string
}

func newAccumulator(report *Report) *accumulator {
	return &accumulator{report: report, byName: make(map[string]*CollectionSummary)}
}

func (a *accumulator) collection(name string) *CollectionSummary {
	s, ok := a.byName[name]
	if !ok {
		s = &CollectionSummary{Name: name}
		a.byName[name] = s
		a.ordered = append(a.ordered, name)
	}
	return s
}

// open registers a collection so it appears in the summary even when empty.
func (a *accumulator) open(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.collection(name)
}

func (a *accumulator) record(doc content.Document, out Outcome, written bool, writeErr error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.collection(doc.Collection)
	s.Total++
	a.report.TotalRecords++
	if !out.Changed() {
		s.Unchanged++
		a.report.RecordsUnchanged++
		return
	}
	s.Changed++
	a.report.RecordsChanged++

	diff := RecordDiff{
		Collection: doc.Collection,
		ID:         doc.ID,
		Changes:    out.Changes,
		Issues:     out.Issues,
	}
	for _, skip := range out.Skips {
		diff.Skips = append(diff.Skips, skip.String())
	}
	a.report.PerRecordDiffs = append(a.report.PerRecordDiffs, diff)

	switch {
	case writeErr != nil:
		s.Failed++
		a.report.WriteFailures = append(a.report.WriteFailures, WriteFailure{
			Collection: doc.Collection,
			ID:         doc.ID,
			Error:      writeErr.Error(),
		})
	case written:
		s.Written++
		a.report.RecordsWritten++
	}
}

// finish sorts the per-record lists so output is deterministic regardless of
// worker scheduling.
func (a *accumulator) finish(started time.Time) *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := a.report
	r.Duration = time.Since(started)
	r.DurationMillis = r.Duration.Milliseconds()
	r.Collections = r.Collections[:0]
	for _, name := range a.ordered {
		r.Collections = append(r.Collections, *a.byName[name])
	}
	slices.SortFunc(r.PerRecordDiffs, func(x, y RecordDiff) int {
		return cmp.Or(cmp.Compare(x.Collection, y.Collection), cmp.Compare(x.ID, y.ID))
	})
	slices.SortFunc(r.WriteFailures, func(x, y WriteFailure) int {
		return cmp.Or(cmp.Compare(x.Collection, y.Collection), cmp.Compare(x.ID, y.ID))
	})
	return r
}
