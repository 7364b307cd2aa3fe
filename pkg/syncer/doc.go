// Package syncer mirrors a remote identity set into local storage.
//
// A sync cycle has two halves. [Diff] compares the remote listing with what
// is already mirrored and returns the ids that are missing or stale. [Run]
// then pushes one task per pending id through a fixed-size worker pool:
//
//	pending := syncer.Diff(remote, local)
//	res := syncer.Run(ctx, pending, syncer.Options{
//	    Source:      "mojang",
//	    Concurrency: cfg.MaxParallelFetchConnections,
//	    Logger:      logger,
//	}, func(ctx context.Context, rec syncer.IdentityRecord) error {
//	    // fetch, validate, persist
//	})
//	if err := res.Err(); err != nil {
//	    return err // storage is broken; stop this source
//	}
//
// Failures never cancel sibling tasks. Every failure is reported in the
// [Result] with its [errors.Class], and items that succeeded stay persisted
// regardless of what happened to the rest of the batch. A failed id is simply
// pending again on the next cycle.
//
// Only Fatal failures change the flow: once one is seen, no new task is
// dispatched, tasks already running finish, and [Result.Err] reports the
// cycle as aborted. A task that panics is recorded as a Fatal failure for
// that item alone and does not stop the batch.
package syncer
