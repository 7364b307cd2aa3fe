package syncer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	mcerrors "github.com/PrismLauncher/mcmeta/pkg/errors"
	"github.com/PrismLauncher/mcmeta/pkg/observability"
)

// DefaultConcurrency is used when Options.Concurrency is not positive.
const DefaultConcurrency = 4

// Task fetches, validates and persists one record.
type Task func(ctx context.Context, rec IdentityRecord) error

// Options configures Run.
type Options struct {
	// Source names the sync source in logs and metrics.
	Source string
	// Concurrency bounds how many tasks run at once.
	Concurrency int
	// Logger receives per-item outcomes. Nil discards them.
	Logger *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Source == "" {
		o.Source = "sync"
	}
	return o
}

// Failure is one record that did not make it to storage.
type Failure struct {
	Record IdentityRecord
	Err    error
	Class  mcerrors.Class
}

// Result aggregates the outcome of a Run.
type Result struct {
	Source    string
	Succeeded []IdentityRecord
	Failures  []Failure
	// Skipped holds records never dispatched because the batch was
	// stopped by a fatal failure or by context cancellation.
	Skipped  []IdentityRecord
	Duration time.Duration
}

// Count returns the number of failures in class c.
func (r *Result) Count(c mcerrors.Class) int {
	n := 0
	for _, f := range r.Failures {
		if f.Class == c {
			n++
		}
	}
	return n
}

// Aborted reports whether a fatal failure stopped dispatch.
func (r *Result) Aborted() bool {
	for _, f := range r.Failures {
		if escalates(f.Err, f.Class) {
			return true
		}
	}
	return false
}

// Err returns a storage-coded error when the batch was aborted, and nil when
// the cycle may proceed with whatever succeeded.
func (r *Result) Err() error {
	for _, f := range r.Failures {
		if escalates(f.Err, f.Class) {
			return mcerrors.Storagef(f.Err, "%s: sync aborted at %s (%d skipped)", r.Source, f.Record.ID, len(r.Skipped))
		}
	}
	return nil
}

// escalates reports whether a failure should stop the whole batch. A
// crashed task is fatal for its own item only.
func escalates(err error, c mcerrors.Class) bool {
	return c == mcerrors.Fatal && !mcerrors.Is(err, mcerrors.ErrCodeTaskPanic)
}

type outcome struct {
	rec      IdentityRecord
	err      error
	class    mcerrors.Class
	skipped  bool
	duration time.Duration
}

// Run executes task for every pending record with at most opts.Concurrency
// tasks in flight. It always returns a Result; inspect Result.Err to decide
// whether the source's cycle must stop.
func Run(ctx context.Context, pending []IdentityRecord, opts Options, task Task) *Result {
	opts = opts.withDefaults()
	hooks := observability.Sync()
	start := time.Now()
	hooks.OnSyncStart(ctx, opts.Source, len(pending))

	res := &Result{Source: opts.Source}
	if len(pending) == 0 {
		hooks.OnSyncComplete(ctx, opts.Source, 0, 0, 0)
		return res
	}

	var (
		stop    atomic.Bool
		wg      sync.WaitGroup
		skipped []IdentityRecord
		jobs    = make(chan IdentityRecord)
		results = make(chan outcome, opts.Concurrency)
	)

	for range min(opts.Concurrency, len(pending)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				if stop.Load() || ctx.Err() != nil {
					results <- outcome{rec: rec, skipped: true}
					continue
				}
				o := execute(ctx, rec, task)
				if o.err != nil && escalates(o.err, o.class) {
					stop.Store(true)
				}
				results <- o
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, rec := range pending {
			if stop.Load() {
				skipped = append(skipped, pending[i:]...)
				return
			}
			select {
			case jobs <- rec:
			case <-ctx.Done():
				skipped = append(skipped, pending[i:]...)
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for o := range results {
		switch {
		case o.skipped:
			res.Skipped = append(res.Skipped, o.rec)
			continue
		case o.err == nil:
			res.Succeeded = append(res.Succeeded, o.rec)
			opts.Logger.Debug("synced", "source", opts.Source, "id", o.rec.ID, "took", o.duration)
			hooks.OnItemComplete(ctx, opts.Source, o.rec.ID, o.duration, "")
		default:
			res.Failures = append(res.Failures, Failure{Record: o.rec, Err: o.err, Class: o.class})
			logFailure(opts.Logger, opts.Source, o)
			hooks.OnItemComplete(ctx, opts.Source, o.rec.ID, o.duration, o.class.String())
		}
	}
	// The dispatcher closed jobs before the workers drained, so skipped is
	// final once results is closed.
	res.Skipped = append(res.Skipped, skipped...)
	res.Duration = time.Since(start)

	hooks.OnSyncComplete(ctx, opts.Source, len(res.Succeeded), len(res.Failures), res.Duration)
	return res
}

func execute(ctx context.Context, rec IdentityRecord, task Task) (o outcome) {
	o.rec = rec
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.err = mcerrors.New(mcerrors.ErrCodeTaskPanic, "task for %s panicked: %v", rec.ID, r)
		}
		o.duration = time.Since(start)
		if o.err != nil {
			o.class = mcerrors.ClassOf(o.err)
		}
	}()
	o.err = task(ctx, rec)
	return o
}

func logFailure(logger *log.Logger, source string, o outcome) {
	kv := []any{"source", source, "id", o.rec.ID, "class", o.class.String(), "err", o.err}
	switch o.class {
	case mcerrors.Transient:
		logger.Warn("sync failed, will retry next cycle", kv...)
	case mcerrors.DataError:
		logger.Error("invalid upstream data", kv...)
	default:
		logger.Error(fmt.Sprintf("%s failure", o.class), kv...)
	}
}
