package calvin

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/calvin-dev/calvin/internal/cleanup"
	"github.com/calvin-dev/calvin/internal/fs"
	"github.com/calvin-dev/calvin/internal/home"
	"github.com/calvin-dev/calvin/internal/lock"
	"github.com/calvin-dev/calvin/internal/registry"
	syncpkg "github.com/calvin-dev/calvin/internal/sync"
)

// DeployOptions configures stages 2 and 3 plus cleanup.
type DeployOptions struct {
	Dest     *syncpkg.Destination
	Strategy syncpkg.Strategy
	Sink     syncpkg.EventSink

	DryRun     bool
	Cleanup    bool // delete orphans instead of warn-only
	ForceClean bool // delete unrecognized orphans too
	JSONMode   bool

	// RegistryPath enables the post-deploy registry upsert for
	// project-scope deploys; empty disables it.
	RegistryPath string
}

// DeployResult reports everything a caller needs to render the outcome.
type DeployResult struct {
	Plan     *syncpkg.Plan // stage-1 classification, orphans included
	Refined  *syncpkg.Plan // after conflict resolution
	Summary  syncpkg.Summary
	Removals []cleanup.Removal
}

// Deploy synchronizes a compiled set against a destination: plan, resolve
// conflicts, execute, then clean or report orphans. In dry-run mode the
// refined plan and would-be removals are computed but nothing is written.
func Deploy(ctx context.Context, c *Compiled, opts DeployOptions) (*DeployResult, error) {
	lf, err := loadLockfile(c, opts.Dest)
	if err != nil {
		return nil, err
	}

	plan, err := syncpkg.BuildPlan(ctx, c.Outputs, opts.Dest, lf)
	if err != nil {
		return nil, err
	}

	refined, _, err := syncpkg.ResolveConflicts(plan, opts.Strategy)
	if err != nil {
		return nil, err
	}

	result := &DeployResult{Plan: plan, Refined: refined}
	result.Summary.Conflicts = len(plan.Conflicts)

	if opts.DryRun {
		result.Summary.Written = len(refined.ToWrite)
		result.Summary.Skipped = len(refined.ToSkip)
		if opts.Cleanup {
			engine := &cleanup.Engine{Dest: opts.Dest, Lock: lf, Sink: opts.Sink}
			removals, err := engine.Clean(ctx, plan.Orphans, cleanup.Options{DryRun: true, Force: opts.ForceClean})
			if err != nil {
				return result, err
			}
			result.Removals = removals
			result.Summary.Deleted = cleanup.Deleted(removals)
		}
		return result, nil
	}

	executor := &syncpkg.Executor{Dest: opts.Dest, Lock: lf, Sink: opts.Sink}
	summary, execErr := executor.Execute(ctx, refined, syncpkg.ExecuteOptions{JSONMode: opts.JSONMode})
	result.Summary.Written = summary.Written
	result.Summary.Skipped = summary.Skipped
	result.Summary.Errors = summary.Errors

	if opts.Cleanup {
		engine := &cleanup.Engine{Dest: opts.Dest, Lock: lf, Sink: opts.Sink}
		removals, cleanErr := engine.Clean(ctx, plan.Orphans, cleanup.Options{Force: opts.ForceClean})
		result.Removals = removals
		result.Summary.Deleted = cleanup.Deleted(removals)
		if execErr == nil {
			execErr = cleanErr
		}
	}

	if execErr != nil {
		return result, execErr
	}

	if opts.RegistryPath != "" && opts.Dest.Kind == syncpkg.DestProject {
		if err := updateRegistry(opts.RegistryPath, c, opts.Dest); err != nil {
			return result, err
		}
	}
	return result, nil
}

// loadLockfile reads the destination's lockfile, migrating the legacy
// "<source>/.calvin.lock" location first when applicable.
func loadLockfile(c *Compiled, dest *syncpkg.Destination) (*lock.Lockfile, error) {
	if dest.Kind != syncpkg.DestHome {
		legacy := filepath.Join(c.SourceDir, ".calvin.lock")
		if err := lock.MigrateLegacy(legacy, dest.LockfilePath); err != nil {
			return nil, err
		}
	}
	return lock.LoadOrNew(dest.LockfilePath)
}

func updateRegistry(path string, c *Compiled, dest *syncpkg.Destination) error {
	reg, err := registry.Load(path)
	if err != nil {
		return err
	}
	reg.Upsert(registry.Project{
		Path:         c.ProjectRoot,
		LockfilePath: dest.LockfilePath,
		LastDeployed: time.Now().UTC(),
		AssetCount:   len(c.Assets),
	})
	return registry.Save(path, reg)
}

// NewDestination builds the filesystem ports and lockfile location for a
// deploy kind. Remote destinations keep the lockfile on the local project
// root.
func NewDestination(ctx context.Context, kind syncpkg.DestKind, projectRoot, remoteHost, remotePath string) (*syncpkg.Destination, error) {
	h, err := home.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	homePort := fs.NewLocal(h)

	switch kind {
	case syncpkg.DestProject:
		return &syncpkg.Destination{
			Kind:         syncpkg.DestProject,
			Port:         fs.NewLocal(projectRoot),
			HomePort:     homePort,
			LockfilePath: filepath.Join(projectRoot, "calvin.lock"),
		}, nil
	case syncpkg.DestHome:
		return &syncpkg.Destination{
			Kind:         syncpkg.DestHome,
			Port:         homePort,
			LockfilePath: filepath.Join(h, ".calvin", "calvin.lock"),
		}, nil
	case syncpkg.DestRemote:
		remote, err := fs.NewRemote(ctx, remoteHost, remotePath)
		if err != nil {
			return nil, err
		}
		return &syncpkg.Destination{
			Kind:         syncpkg.DestRemote,
			Port:         remote,
			LockfilePath: filepath.Join(projectRoot, "calvin.lock"),
		}, nil
	default:
		return nil, fmt.Errorf("unknown destination kind %q", kind)
	}
}
