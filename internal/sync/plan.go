package sync

import (
	"context"
	"fmt"
	"sort"

	"github.com/calvin-dev/calvin/internal/hashid"
	"github.com/calvin-dev/calvin/internal/lock"
	"github.com/calvin-dev/calvin/internal/target"
)

// WriteReason says why an output landed in the to-write bucket.
type WriteReason string

const (
	ReasonNew    WriteReason = "new"
	ReasonUpdate WriteReason = "update"
)

// Item is one planned write or skip.
type Item struct {
	Output target.OutputFile
	Key    string // namespaced lockfile key
	Reason WriteReason
}

// ConflictKind distinguishes the two ways a target file can block a write.
type ConflictKind string

const (
	// ConflictModified: the file was Calvin-written but has since been
	// edited; the on-disk hash matches neither the output nor the lockfile.
	ConflictModified ConflictKind = "modified"
	// ConflictUntracked: the file exists but the lockfile has no record of
	// it, so Calvin never wrote it.
	ConflictUntracked ConflictKind = "untracked"
)

// Conflict is one output blocked by existing content.
type Conflict struct {
	Output   target.OutputFile
	Key      string
	Kind     ConflictKind
	Existing []byte
}

// Orphan is a lockfile key with no output in the current compile.
type Orphan struct {
	Key          string
	Namespace    lock.Namespace
	RelPath      string // path relative to the owning port's root
	Entry        *lock.FileEntry
	SafeToDelete bool // on-disk bytes still hash to the lockfile entry
	Missing      bool // file already gone; only the entry remains
}

// Plan is the stage-1 classification of every output.
type Plan struct {
	ToWrite   []Item
	ToSkip    []Item
	Conflicts []Conflict
	Orphans   []Orphan
}

// Summary folds the plan into counts (conflicts still unresolved).
func (p *Plan) Summary() Summary {
	return Summary{Written: len(p.ToWrite), Skipped: len(p.ToSkip), Conflicts: len(p.Conflicts)}
}

// BuildPlan classifies each compiled output against the destination tree
// and the lockfile:
//
//	target absent                                     -> write (new)
//	target bytes == output bytes                      -> skip
//	target bytes == lockfile hash, output differs     -> write (update)
//	target bytes != lockfile hash                     -> conflict (modified)
//	target present, no lockfile entry                 -> conflict (untracked)
//
// Outputs arrive sorted from the compiler; orphans are sorted by key here,
// so the whole plan is deterministic.
func BuildPlan(ctx context.Context, outputs []target.OutputFile, dest *Destination, lf *lock.Lockfile) (*Plan, error) {
	plan := &Plan{}
	produced := make(map[string]bool, len(outputs))

	for _, o := range outputs {
		ns := dest.NamespaceFor(o.Scope)
		key := lock.Key(ns, o.Path.String())
		produced[key] = true

		port := dest.PortFor(o.Scope)
		rel := o.Path.String()

		exists, err := port.Exists(ctx, rel)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", rel, err)
		}
		if !exists {
			plan.ToWrite = append(plan.ToWrite, Item{Output: o, Key: key, Reason: ReasonNew})
			continue
		}

		existing, err := port.Read(ctx, rel)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}

		outHash := hashid.FromContent(o.Content)
		diskHash := hashid.FromContent(existing)
		if diskHash == outHash {
			plan.ToSkip = append(plan.ToSkip, Item{Output: o, Key: key})
			continue
		}

		entry := lf.Files[key]
		if entry != nil && string(diskHash) == entry.Hash {
			plan.ToWrite = append(plan.ToWrite, Item{Output: o, Key: key, Reason: ReasonUpdate})
			continue
		}
		kind := ConflictUntracked
		if entry != nil {
			kind = ConflictModified
		}
		plan.Conflicts = append(plan.Conflicts, Conflict{Output: o, Key: key, Kind: kind, Existing: existing})
	}

	var orphanKeys []string
	for key := range lf.Files {
		if !produced[key] {
			orphanKeys = append(orphanKeys, key)
		}
	}
	sort.Strings(orphanKeys)

	for _, key := range orphanKeys {
		ns, keyPath, ok := lock.ParseKey(key)
		if !ok {
			continue // unparsable keys are reported by check, not planned
		}
		entry := lf.Files[key]
		o := Orphan{Key: key, Namespace: ns, RelPath: DiskPath(keyPath), Entry: entry}

		port := dest.PortForNamespace(ns)
		exists, err := port.Exists(ctx, o.RelPath)
		if err != nil {
			return nil, fmt.Errorf("checking orphan %s: %w", o.RelPath, err)
		}
		if !exists {
			o.Missing = true
		} else {
			content, err := port.Read(ctx, o.RelPath)
			if err != nil {
				return nil, fmt.Errorf("reading orphan %s: %w", o.RelPath, err)
			}
			o.SafeToDelete = string(hashid.FromContent(content)) == entry.Hash
		}
		plan.Orphans = append(plan.Orphans, o)
	}

	return plan, nil
}
