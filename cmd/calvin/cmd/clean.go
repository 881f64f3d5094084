package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/internal/cleanup"
	"github.com/calvin-dev/calvin/internal/layer"
	"github.com/calvin-dev/calvin/internal/lock"
	"github.com/calvin-dev/calvin/internal/registry"
	syncpkg "github.com/calvin-dev/calvin/internal/sync"
	"github.com/calvin-dev/calvin/internal/ui"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

var (
	cleanHome   bool
	cleanAll    bool
	cleanDryRun bool
	cleanForce  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete orphaned outputs recorded in the lockfile",
	Long: `Recomputes the current output set and deletes previously deployed files
that are no longer sourced. Files whose content matches neither the
lockfile hash nor carries a calvin signature are kept unless --force is
given. --all runs the same engine over every registered project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		var jsonSink *ui.JSON
		if jsonOut {
			jsonSink = ui.NewJSON(os.Stdout)
			jsonSink.Start("clean")
		}

		summary := syncpkg.Summary{}
		var failed error

		if cleanAll {
			regPath := registryPath()
			reg, err := registry.Load(regPath)
			if err != nil {
				if jsonSink != nil {
					jsonSink.Error(err)
				}
				return err
			}
			for _, p := range reg.All() {
				deleted, err := cleanProject(cmd.Context(), p.Path, "", jsonSink)
				if err != nil {
					errorf("%s: %v", p.Path, err)
					failed = err
					continue
				}
				summary.Deleted += deleted
			}
		} else {
			root, err := projectRoot()
			if err != nil {
				return err
			}
			if cleanHome {
				deleted, err := cleanHomeDeploy(cmd.Context(), jsonSink)
				if err != nil {
					if jsonSink != nil {
						jsonSink.Error(err)
					}
					return err
				}
				summary.Deleted = deleted
			} else {
				deleted, err := cleanProject(cmd.Context(), root, sourcePath, jsonSink)
				if err != nil {
					if jsonSink != nil {
						jsonSink.Error(err)
					}
					return err
				}
				summary.Deleted = deleted
			}
		}

		if jsonSink != nil {
			jsonSink.Complete(summary)
		} else {
			info("")
			info("%d deleted.", summary.Deleted)
		}
		return failed
	},
}

// cleanProject compiles one project (an empty compile is fine — a deleted
// source just orphans everything) and cleans its orphans. source is the
// --source override, which only applies to the invocation's own project.
func cleanProject(ctx context.Context, root, source string, jsonSink *ui.JSON) (int, error) {
	compiled, err := calvin.Compile(calvin.Options{ProjectRoot: root, SourcePath: source})
	if err != nil {
		if errors.Is(err, layer.ErrNoLayersFound) {
			compiled = &calvin.Compiled{ProjectRoot: root}
		} else {
			return 0, err
		}
	}

	dest, err := calvin.NewDestination(ctx, syncpkg.DestProject, root, "", "")
	if err != nil {
		return 0, err
	}
	return cleanDest(ctx, compiled, dest, jsonSink)
}

func cleanHomeDeploy(ctx context.Context, jsonSink *ui.JSON) (int, error) {
	root, err := projectRoot()
	if err != nil {
		return 0, err
	}
	compiled, err := calvin.Compile(calvin.Options{ProjectRoot: root, SourcePath: sourcePath})
	if err != nil {
		if errors.Is(err, layer.ErrNoLayersFound) {
			compiled = &calvin.Compiled{ProjectRoot: root}
		} else {
			return 0, err
		}
	}
	dest, err := calvin.NewDestination(ctx, syncpkg.DestHome, root, "", "")
	if err != nil {
		return 0, err
	}
	return cleanDest(ctx, compiled, dest, jsonSink)
}

func cleanDest(ctx context.Context, compiled *calvin.Compiled, dest *syncpkg.Destination, jsonSink *ui.JSON) (int, error) {
	lf, err := lock.LoadOrNew(dest.LockfilePath)
	if err != nil {
		return 0, err
	}

	plan, err := syncpkg.BuildPlan(ctx, compiled.Outputs, dest, lf)
	if err != nil {
		return 0, err
	}

	var sink syncpkg.EventSink = human
	if jsonSink != nil {
		sink = jsonSink
	}
	engine := &cleanup.Engine{Dest: dest, Lock: lf, Sink: sink}
	removals, err := engine.Clean(ctx, plan.Orphans, cleanup.Options{
		DryRun: cleanDryRun,
		Force:  cleanForce,
	})
	if err != nil {
		return 0, err
	}
	for _, r := range removals {
		if r.Skipped != "" {
			info("  %-8s %s (%s)", "kept", r.RelPath, r.Skipped)
		}
		if r.Err != nil {
			errorf("%s: %v", r.RelPath, r.Err)
		}
	}
	return cleanup.Deleted(removals), nil
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanHome, "home", false, "clean the home deploy instead of the project")
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "clean every project in the registry")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "report what would be deleted without deleting")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "delete orphans even without hash or signature match")
	rootCmd.AddCommand(cleanCmd)
}
