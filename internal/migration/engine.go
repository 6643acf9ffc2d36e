package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"festadmin/internal/content"
	"festadmin/internal/logging"
	"festadmin/internal/media"
	"festadmin/internal/services"
)

// ErrEnumerate marks a failure to read a collection. It is the only error that
// aborts a run.
var ErrEnumerate = errors.New("enumerate records")

// Source enumerates stored documents. content.Repository satisfies it.
type Source interface {
	Each(ctx context.Context, collection string, fn func(content.Document) error) error
}

// WriteFunc persists the media fields of one record. It must leave every
// other field untouched.
type WriteFunc func(ctx context.Context, collection, id string, rec media.Record) error

// Options tune a Migrate run.
type Options struct {
	DryRun      bool
	Collections []string
	// Workers bounds concurrent record processing. Values below 1 mean 1.
	Workers int
	Logger  *slog.Logger
	// RunID tags log lines and the report. A UUID is generated when empty.
	RunID string
	// ProgressEvery logs progress once per this many records per collection.
	ProgressEvery int
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// errStopped aborts enumeration when the caller cancels between records.
var errStopped = errors.New("migration stopped")

// Migrate normalizes, validates, and repairs every document of the requested
// collections and writes back the ones whose media fields changed. In dry-run
// mode write is never called.
//
// The returned report is always non-nil. On cancellation the report is partial,
// Cancelled is set, and the context error is returned. On enumeration failure
// the partial report is returned with an ErrEnumerate-wrapped error.
func Migrate(ctx context.Context, src Source, write WriteFunc, opts Options) (*Report, error) {
	started := time.Now()
	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}
	workers := max(opts.Workers, 1)
	ctx = services.WithRunID(ctx, opts.RunID)
	base := logging.NewComponentLogger(opts.Logger, "migration")
	logger := logging.WithContext(ctx, base)

	acc := newAccumulator(&Report{
		RunID:     opts.RunID,
		DryRun:    opts.DryRun,
		StartedAt: started.UTC(),
	})
	if src == nil {
		return acc.finish(started), fmt.Errorf("%w: no record source", ErrEnumerate)
	}
	if write == nil && !opts.DryRun {
		return acc.finish(started), services.Wrap(services.ErrConfiguration, "migration", "migrate", "apply mode requires a writer", nil)
	}

	logger.Info("media migration started",
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("workers", workers),
		logging.String("collections", strings.Join(opts.Collections, ",")),
	)

	sampler := logging.NewProgressSampler(opts.ProgressEvery)
	var runErr error
	for _, collection := range opts.Collections {
		acc.open(collection)
		if err := migrateCollection(ctx, src, write, opts, workers, collection, acc, base, sampler); err != nil {
			runErr = err
			break
		}
	}

	report := acc.finish(started)
	switch {
	case runErr == nil:
		logger.Info("media migration finished",
			logging.Int("total", report.TotalRecords),
			logging.Int("changed", report.RecordsChanged),
			logging.Int("unchanged", report.RecordsUnchanged),
			logging.Int("written", report.RecordsWritten),
			logging.Int("write_failures", len(report.WriteFailures)),
			logging.Duration("duration", report.Duration),
		)
	case errors.Is(runErr, ErrEnumerate):
		logging.ErrorWithContext(logger, "media migration aborted", "migration_enumerate_failed",
			logging.Error(runErr),
			logging.String(logging.FieldErrorHint, "check store connectivity and rerun; completed records converge"),
		)
	default:
		report.Cancelled = true
		logging.WarnWithContext(logger, "media migration cancelled", "migration_cancelled",
			logging.Int("processed", report.TotalRecords),
			logging.String(logging.FieldErrorHint, "rerun migrate-media to resume"),
			logging.String(logging.FieldImpact, "remaining records were not examined"),
		)
	}
	return report, runErr
}

func migrateCollection(
	ctx context.Context,
	src Source,
	write WriteFunc,
	opts Options,
	workers int,
	collection string,
	acc *accumulator,
	base *slog.Logger,
	sampler *logging.ProgressSampler,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collCtx := services.WithCollection(ctx, collection)
	logger := logging.WithContext(collCtx, base)
	var g errgroup.Group
	g.SetLimit(workers)

	seen := 0
	enumErr := src.Each(collCtx, collection, func(doc content.Document) error {
		if ctx.Err() != nil {
			return errStopped
		}
		if doc.Collection == "" {
			doc.Collection = collection
		}
		if sampler.ShouldLog(seen, collection) {
			logger.Info("migration progress", logging.Int("enumerated", seen))
		}
		seen++
		g.Go(func() error {
			migrateRecord(collCtx, doc, write, opts.DryRun, acc, base)
			return nil
		})
		return nil
	})
	_ = g.Wait()

	if enumErr == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: collection %s: %w", ErrEnumerate, collection, enumErr)
}

// migrateRecord runs one document as a single unit. Its write uses a context
// detached from cancellation so a started record always completes.
func migrateRecord(ctx context.Context, doc content.Document, write WriteFunc, dryRun bool, acc *accumulator, base *slog.Logger) {
	recCtx := context.WithoutCancel(services.WithRecordID(ctx, doc.ID))
	recLog := logging.WithContext(recCtx, base)

	out := Process(doc)
	for _, skip := range out.Skips {
		logging.WarnWithContext(recLog, "media entry dropped", "media_entry_dropped",
			logging.String("skip", skip.String()),
			logging.String(logging.FieldErrorHint, "fix the stored entry by hand if the asset should be kept"),
			logging.String(logging.FieldImpact, "entry omitted from the canonical collection"),
		)
	}
	if !out.Changed() {
		acc.record(doc, out, false, nil)
		return
	}
	if len(out.Issues) > 0 {
		recLog.Info("record repaired", logging.String("issues", strings.Join(out.Issues, "; ")))
	}
	if dryRun {
		recLog.Debug("record would change", logging.Int("fields", len(out.Changes)))
		acc.record(doc, out, false, nil)
		return
	}

	err := write(recCtx, doc.Collection, doc.ID, out.Final)
	if err != nil {
		logging.WarnWithContext(recLog, "media write failed", "media_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "rerun migrate-media; unwritten records are retried"),
			logging.String(logging.FieldImpact, "record keeps its legacy media fields"),
		)
		acc.record(doc, out, false, err)
		return
	}
	recLog.Debug("record written", logging.Int("fields", len(out.Changes)))
	acc.record(doc, out, true, nil)
}
