package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/internal/lock"
	syncpkg "github.com/calvin-dev/calvin/internal/sync"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what a deploy would change, as unified diffs",
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		opts, err := compileOptions(nil, false, false, false, nil)
		if err != nil {
			return err
		}
		compiled, err := calvin.Compile(opts)
		if err != nil {
			return err
		}

		dest, err := calvin.NewDestination(cmd.Context(), syncpkg.DestProject, compiled.ProjectRoot, "", "")
		if err != nil {
			return err
		}
		lf, err := lock.LoadOrNew(dest.LockfilePath)
		if err != nil {
			return err
		}
		plan, err := syncpkg.BuildPlan(cmd.Context(), compiled.Outputs, dest, lf)
		if err != nil {
			return err
		}

		if jsonOut {
			type row struct {
				Path   string `json:"path"`
				Change string `json:"change"`
			}
			enc := json.NewEncoder(os.Stdout)
			for _, item := range plan.ToWrite {
				if err := enc.Encode(row{Path: item.Output.Path.String(), Change: string(item.Reason)}); err != nil {
					return err
				}
			}
			for _, c := range plan.Conflicts {
				if err := enc.Encode(row{Path: c.Output.Path.String(), Change: "conflict-" + string(c.Kind)}); err != nil {
					return err
				}
			}
			for _, o := range plan.Orphans {
				if err := enc.Encode(row{Path: o.RelPath, Change: "orphan"}); err != nil {
					return err
				}
			}
			return nil
		}

		changes := 0
		for _, item := range plan.ToWrite {
			changes++
			if item.Reason == syncpkg.ReasonNew {
				info("new file: %s", item.Output.Path)
				continue
			}
			existing, err := dest.PortFor(item.Output.Scope).Read(cmd.Context(), item.Output.Path.String())
			if err != nil {
				return err
			}
			fmt.Print(syncpkg.RenderDiff(item.Output.Path.String(), existing, item.Output.Content, !noColor))
		}
		for _, c := range plan.Conflicts {
			changes++
			info("conflict (%s): %s", c.Kind, c.Output.Path)
			if !c.Output.IsBinary {
				fmt.Print(syncpkg.RenderDiff(c.Output.Path.String(), c.Existing, c.Output.Content, !noColor))
			}
		}
		for _, o := range plan.Orphans {
			changes++
			info("orphan: %s", o.RelPath)
		}
		if changes == 0 {
			info("No changes — destination is up to date.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
