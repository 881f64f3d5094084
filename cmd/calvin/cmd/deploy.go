package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	syncpkg "github.com/calvin-dev/calvin/internal/sync"
	"github.com/calvin-dev/calvin/internal/ui"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

var (
	deployHome         bool
	deployProjectFlag  bool
	deployRemote       string
	deployTargets      string
	deployLayers       []string
	deployNoUserLayer  bool
	deployNoAdditional bool
	deployYes          bool
	deployForce        bool
	deployDryRun       bool
	deployCleanup      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Compile the source layers and synchronize all targets",
	Long: `Resolves the layer stack, merges assets by precedence, compiles them for
every enabled target, and synchronizes the result against the destination.
Conflicting files prompt interactively unless --yes (skip) or --force
(overwrite) is given. Orphaned outputs are reported; --cleanup deletes
them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		if deployHome && deployRemote != "" {
			return errors.New("--home and --remote cannot be combined")
		}
		if deployProjectFlag && deployHome {
			return errors.New("--project and --home cannot be combined")
		}

		opts, err := compileOptions(deployLayers, deployNoUserLayer, deployNoAdditional, deployRemote != "", splitTargets(deployTargets))
		if err != nil {
			return err
		}

		var jsonSink *ui.JSON
		var sink syncpkg.EventSink = human
		if jsonOut {
			jsonSink = ui.NewJSON(os.Stdout)
			jsonSink.Start("deploy")
			sink = jsonSink
		}

		compiled, err := calvin.Compile(opts)
		if err != nil {
			if jsonSink != nil {
				jsonSink.Error(err)
			}
			return err
		}
		reportWarnings(compiled, jsonSink)

		dest, err := buildDestination(cmd, compiled)
		if err != nil {
			if jsonSink != nil {
				jsonSink.Error(err)
			}
			return err
		}

		strategy := pickStrategy()

		result, err := calvin.Deploy(cmd.Context(), compiled, calvin.DeployOptions{
			Dest:         dest,
			Strategy:     strategy,
			Sink:         sink,
			DryRun:       deployDryRun,
			Cleanup:      deployCleanup,
			ForceClean:   deployForce,
			JSONMode:     jsonOut,
			RegistryPath: registryPath(),
		})
		if err != nil {
			if jsonSink != nil {
				jsonSink.Error(err)
			}
			return err
		}

		if jsonSink != nil {
			jsonSink.Complete(result.Summary)
			return nil
		}

		if deployDryRun {
			info("Dry run — no files written.")
			for _, item := range result.Refined.ToWrite {
				info("  %-8s %s", item.Reason, item.Output.Path)
			}
		}
		reportOrphans(result)
		info("")
		info("%d files written, %d skipped, %d conflicts, %d deleted.",
			result.Summary.Written, result.Summary.Skipped, result.Summary.Conflicts, result.Summary.Deleted)
		for id, ov := range compiled.Overrides {
			detail("override: %s won by %s layer (shadowed: %v)", id, ov.WinningLayer, ov.ShadowedLayer)
		}
		return nil
	},
}

// buildDestination picks the deploy destination from flags, falling back to
// the config's [deploy] target.
func buildDestination(cmd *cobra.Command, compiled *calvin.Compiled) (*syncpkg.Destination, error) {
	kind := syncpkg.DestProject
	host, remotePath := "", ""

	switch {
	case deployRemote != "":
		kind = syncpkg.DestRemote
		host, remotePath = splitRemote(deployRemote)
	case deployHome:
		kind = syncpkg.DestHome
	case deployProjectFlag:
		kind = syncpkg.DestProject
	case compiled.Config.Deploy.Target == "home":
		kind = syncpkg.DestHome
	}

	return calvin.NewDestination(cmd.Context(), kind, compiled.ProjectRoot, host, remotePath)
}

// splitRemote parses HOST[:PATH].
func splitRemote(s string) (host, path string) {
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, "~"
}

func pickStrategy() syncpkg.Strategy {
	switch {
	case deployForce:
		return syncpkg.ForceStrategy{}
	case deployYes, deployDryRun, jsonOut:
		return syncpkg.SafeStrategy{}
	default:
		return &syncpkg.InteractiveStrategy{
			Chooser: newTTYChooser(),
			Out:     os.Stderr,
			Color:   !noColor,
		}
	}
}

func reportOrphans(result *calvin.DeployResult) {
	if deployCleanup {
		for _, r := range result.Removals {
			if r.Skipped != "" {
				info("  %-8s %s (%s)", "kept", r.RelPath, r.Skipped)
			}
		}
		return
	}
	for _, o := range result.Plan.Orphans {
		suffix := ""
		if !o.SafeToDelete && !o.Missing {
			suffix = " (modified)"
		}
		info("  orphan   %s%s — run with --cleanup to remove", o.RelPath, suffix)
	}
}

func init() {
	deployCmd.Flags().BoolVar(&deployHome, "home", false, "deploy to the user home tree")
	deployCmd.Flags().BoolVar(&deployProjectFlag, "project", false, "deploy to the project tree (default)")
	deployCmd.Flags().StringVar(&deployRemote, "remote", "", "deploy over SSH to HOST[:PATH]")
	deployCmd.Flags().StringVar(&deployTargets, "targets", "", "comma-separated target list, overriding config")
	deployCmd.Flags().StringArrayVar(&deployLayers, "layer", nil, "additional layer root (repeatable)")
	deployCmd.Flags().BoolVar(&deployNoUserLayer, "no-user-layer", false, "exclude the user layer")
	deployCmd.Flags().BoolVar(&deployNoAdditional, "no-additional-layers", false, "exclude additional layers")
	deployCmd.Flags().BoolVar(&deployYes, "yes", false, "never prompt; skip conflicting files")
	deployCmd.Flags().BoolVar(&deployForce, "force", false, "never prompt; overwrite conflicting files")
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "plan and report without writing")
	deployCmd.Flags().BoolVar(&deployCleanup, "cleanup", false, "delete orphaned outputs")
	rootCmd.AddCommand(deployCmd)
}
