// Package cleanup deletes previously deployed files whose source is gone.
// Orphans come straight from the lockfile, so removed sources, disabled
// targets, and config drift are all covered by one check: a key with no
// output in the current compile is an orphan.
package cleanup

import (
	"context"
	"fmt"

	"github.com/calvin-dev/calvin/internal/lock"
	syncpkg "github.com/calvin-dev/calvin/internal/sync"
	"github.com/calvin-dev/calvin/internal/target"
)

// SkipReason explains why an orphan was left in place.
type SkipReason string

const (
	// SkipNoSignature: the on-disk content matches neither the lockfile
	// hash nor carries a Calvin signature — someone edited it, so deleting
	// would destroy their work.
	SkipNoSignature SkipReason = "no-signature"
)

// Removal records one orphan's outcome.
type Removal struct {
	Key     string
	RelPath string
	Deleted bool
	Skipped SkipReason // set when the orphan is kept for lack of a hash or signature match
	Err     error
}

// Options configures a cleanup pass.
type Options struct {
	DryRun bool
	// Force deletes orphans even when neither the hash nor the signature
	// check recognizes them as Calvin-written.
	Force bool
}

// Engine removes orphaned outputs and their lockfile entries.
type Engine struct {
	Dest *syncpkg.Destination
	Lock *lock.Lockfile
	Sink syncpkg.EventSink
}

// Clean processes each orphan: delete when the on-disk content still
// matches the lockfile hash, or when it carries a Calvin signature, or when
// forced. Everything else is skipped and reported. Lockfile entries are
// removed for every deleted (or already-missing) orphan, and the lockfile
// is saved at the end of the pass unless DryRun is set.
func (e *Engine) Clean(ctx context.Context, orphans []syncpkg.Orphan, opts Options) ([]Removal, error) {
	var results []Removal

	for _, o := range orphans {
		r := Removal{Key: o.Key, RelPath: o.RelPath}

		if o.Missing {
			// File already gone; just drop the stale entry.
			if !opts.DryRun {
				e.Lock.Remove(o.Key)
			}
			r.Deleted = true
			results = append(results, r)
			continue
		}

		port := e.Dest.PortForNamespace(o.Namespace)

		allowed := o.SafeToDelete || opts.Force
		if !allowed {
			content, err := port.Read(ctx, o.RelPath)
			if err != nil {
				r.Err = fmt.Errorf("reading orphan %s: %w", o.RelPath, err)
				results = append(results, r)
				continue
			}
			allowed = target.HasSignature(content)
		}
		if !allowed {
			r.Skipped = SkipNoSignature
			results = append(results, r)
			continue
		}

		if opts.DryRun {
			r.Deleted = true
			results = append(results, r)
			continue
		}

		if err := port.Remove(ctx, o.RelPath); err != nil {
			r.Err = fmt.Errorf("removing %s: %w", o.RelPath, err)
			results = append(results, r)
			continue
		}
		e.Lock.Remove(o.Key)
		r.Deleted = true
		if e.Sink != nil {
			e.Sink.Event(syncpkg.Event{Kind: syncpkg.EventFileDeleted, Path: o.RelPath})
		}
		results = append(results, r)
	}

	if !opts.DryRun {
		if err := lock.Save(e.Dest.LockfilePath, e.Lock); err != nil {
			return results, fmt.Errorf("saving lockfile after cleanup: %w", err)
		}
	}
	return results, nil
}

// Deleted counts the removals marked Deleted: files removed, files that
// would be removed in a dry run, and orphans whose file was already gone.
func Deleted(results []Removal) int {
	n := 0
	for _, r := range results {
		if r.Deleted {
			n++
		}
	}
	return n
}
