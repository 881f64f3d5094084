package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	syncpkg "github.com/calvin-dev/calvin/internal/sync"
	"github.com/calvin-dev/calvin/internal/ui"
	"github.com/calvin-dev/calvin/internal/watch"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

var (
	watchHome      bool
	watchAllLayers bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Redeploy automatically when source layers change",
	Long: `Watches the project source (or, with --watch-all-layers, every resolved
layer) and re-runs the full compile-and-sync pipeline after each debounced
batch of changes. Conflicting files are skipped, never overwritten; stop
watching and deploy with --force to resolve them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		opts, err := compileOptions(nil, false, false, false, nil)
		if err != nil {
			return err
		}

		// One compile up front: validates the source and resolves the roots
		// to watch.
		compiled, err := calvin.Compile(opts)
		if err != nil {
			return err
		}

		roots := []string{compiled.SourceDir}
		if watchAllLayers {
			roots = nil
			for _, l := range compiled.Layers {
				roots = append(roots, l.ResolvedPath)
			}
		}

		destKind := syncpkg.DestProject
		if watchHome {
			destKind = syncpkg.DestHome
		}

		var jsonSink *ui.JSON
		var sink syncpkg.EventSink = human
		if jsonOut {
			jsonSink = ui.NewJSON(os.Stdout)
			jsonSink.Start("watch")
			sink = jsonSink
		}

		run := func(ctx context.Context) error {
			compiled, err := calvin.Compile(opts)
			if err != nil {
				return err
			}
			dest, err := calvin.NewDestination(ctx, destKind, compiled.ProjectRoot, "", "")
			if err != nil {
				return err
			}
			result, err := calvin.Deploy(ctx, compiled, calvin.DeployOptions{
				Dest:         dest,
				Strategy:     syncpkg.SafeStrategy{},
				Sink:         sink,
				JSONMode:     jsonOut,
				RegistryPath: registryPath(),
			})
			if err != nil {
				return err
			}
			if jsonSink != nil {
				jsonSink.Complete(result.Summary)
			} else {
				info("synced: %d written, %d skipped, %d conflicts",
					result.Summary.Written, result.Summary.Skipped, result.Summary.Conflicts)
			}
			return nil
		}

		w := &watch.Watcher{
			Roots: roots,
			Run:   run,
			OnError: func(err error) {
				if jsonSink != nil {
					jsonSink.Error(err)
				} else {
					errorf("%v", err)
				}
			},
		}

		info("watching %d root(s) — ctrl-c to stop", len(roots))
		err = w.Watch(cmd.Context())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchHome, "home", false, "deploy to the user home tree")
	watchCmd.Flags().BoolVar(&watchAllLayers, "watch-all-layers", false, "watch every resolved layer, not just the project source")
	rootCmd.AddCommand(watchCmd)
}
