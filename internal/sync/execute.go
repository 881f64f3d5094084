package sync

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/calvin-dev/calvin/internal/fs"
	"github.com/calvin-dev/calvin/internal/hashid"
	"github.com/calvin-dev/calvin/internal/lock"
	"github.com/calvin-dev/calvin/internal/target"
)

// rsyncThreshold is the write count above which a remote deploy switches
// from per-file ssh writes to one staged rsync invocation.
const rsyncThreshold = 10

// ExecuteOptions tunes stage 3.
type ExecuteOptions struct {
	// JSONMode disables the rsync batch strategy so rsync's own progress
	// output can't interleave with the NDJSON event stream.
	JSONMode bool
}

// Executor applies a refined plan and keeps the lockfile in step with what
// actually landed on disk.
type Executor struct {
	Dest *Destination
	Lock *lock.Lockfile
	Sink EventSink
}

func (e *Executor) sink() EventSink {
	if e.Sink == nil {
		return discardSink{}
	}
	return e.Sink
}

// Execute writes the plan's files, recording each successful write in the
// in-memory lockfile. Per-file write failures are reported as events and
// counted; remaining files still execute. The lockfile is persisted once at
// the end (and removed if it ended up empty); a process killed mid-run
// leaves the lockfile on disk as it was before the run.
func (e *Executor) Execute(ctx context.Context, plan *Plan, opts ExecuteOptions) (*Summary, error) {
	sink := e.sink()
	summary := &Summary{}

	for _, item := range plan.ToSkip {
		sink.Event(Event{Kind: EventFileSkipped, Path: item.Output.Path.String(), Reason: "unchanged"})
		summary.Skipped++
	}

	remaining := plan.ToWrite
	if batch, rest, ok := e.rsyncEligible(plan.ToWrite, opts); ok {
		if err := e.executeRsync(ctx, batch, summary); err != nil {
			// Batch failure falls back to per-file so partial progress is
			// still visible file by file.
			remaining = plan.ToWrite
		} else {
			remaining = rest
		}
	}

	for _, item := range remaining {
		sink.Event(Event{Kind: EventFileStarted, Path: item.Output.Path.String(), Reason: string(item.Reason)})

		port := e.Dest.PortFor(item.Output.Scope)
		if err := port.WriteAtomic(ctx, item.Output.Path.String(), item.Output.Content); err != nil {
			sink.Event(Event{Kind: EventFileError, Path: item.Output.Path.String(), Err: err})
			summary.Errors++
			continue
		}

		e.Lock.SetEntry(item.Key, lockEntry(item.Output))
		sink.Event(Event{Kind: EventFileWritten, Path: item.Output.Path.String(), Reason: string(item.Reason)})
		summary.Written++
	}

	if err := lock.Save(e.Dest.LockfilePath, e.Lock); err != nil {
		return summary, fmt.Errorf("saving lockfile: %w", err)
	}

	if summary.Errors > 0 {
		return summary, fmt.Errorf("%d file(s) failed to write", summary.Errors)
	}
	return summary, nil
}

// lockEntry builds the lockfile record for one written output: the hash of
// exactly the bytes written, plus the output's provenance.
func lockEntry(o target.OutputFile) *lock.FileEntry {
	return &lock.FileEntry{
		Hash:            string(hashid.FromContent(o.Content)),
		IsBinary:        o.IsBinary,
		SourceLayer:     string(o.Provenance.SourceLayer),
		SourceLayerPath: o.Provenance.SourceLayerPath,
		SourceAsset:     o.Provenance.SourceAsset,
		SourceFile:      o.Provenance.SourceFile,
		Overrides:       o.Provenance.Overrides,
	}
}

// rsyncEligible reports whether the batch strategy applies and partitions
// the writes into the batch (primary-port items) and the per-file rest.
func (e *Executor) rsyncEligible(items []Item, opts ExecuteOptions) (batch, rest []Item, ok bool) {
	if e.Dest.Kind != DestRemote || opts.JSONMode || len(items) <= rsyncThreshold {
		return nil, nil, false
	}
	if _, err := exec.LookPath("rsync"); err != nil {
		return nil, nil, false
	}
	if _, isRemote := e.Dest.Port.(*fs.Remote); !isRemote {
		return nil, nil, false
	}
	for _, item := range items {
		if e.Dest.PortFor(item.Output.Scope) == e.Dest.Port {
			batch = append(batch, item)
		} else {
			rest = append(rest, item)
		}
	}
	return batch, rest, len(batch) > rsyncThreshold
}

// executeRsync stages the batch in a local temp tree mirroring the output
// paths and syncs it in one rsync -a invocation.
func (e *Executor) executeRsync(ctx context.Context, batch []Item, summary *Summary) error {
	sink := e.sink()
	remote := e.Dest.Port.(*fs.Remote)

	stage, err := os.MkdirTemp("", "calvin-rsync-*")
	if err != nil {
		return fmt.Errorf("creating rsync staging directory: %w", err)
	}
	defer os.RemoveAll(stage)

	for _, item := range batch {
		abs := filepath.Join(stage, filepath.FromSlash(item.Output.Path.String()))
		if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return fmt.Errorf("staging %s: %w", item.Output.Path, err)
		}
		if err := os.WriteFile(abs, item.Output.Content, 0644); err != nil {
			return fmt.Errorf("staging %s: %w", item.Output.Path, err)
		}
	}

	cmd := exec.CommandContext(ctx, "rsync", "-a", stage+"/", remote.Host()+":"+remote.Base()+"/")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("rsync: %s: %w", string(out), err)
	}

	for _, item := range batch {
		e.Lock.SetEntry(item.Key, lockEntry(item.Output))
		sink.Event(Event{Kind: EventFileWritten, Path: item.Output.Path.String(), Reason: string(item.Reason)})
		summary.Written++
	}
	return nil
}
