package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/internal/registry"
)

var projectsPrune bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects calvin has deployed to",
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		path := registryPath()
		reg, err := registry.Load(path)
		if err != nil {
			return err
		}

		if projectsPrune {
			pruned := reg.Prune()
			for _, p := range pruned {
				info("  pruned   %s (lockfile gone)", p.Path)
			}
			if len(pruned) > 0 {
				if err := registry.Save(path, reg); err != nil {
					return err
				}
			}
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			for _, p := range reg.All() {
				if err := enc.Encode(p); err != nil {
					return err
				}
			}
			return nil
		}

		if len(reg.All()) == 0 {
			info("No projects registered yet — run 'calvin deploy' in one.")
			return nil
		}
		for _, p := range reg.All() {
			info("  %s", p.Path)
			detail("lockfile: %s, assets: %d, last deployed: %s", p.LockfilePath, p.AssetCount, p.LastDeployed.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	projectsCmd.Flags().BoolVar(&projectsPrune, "prune", false, "drop entries whose lockfile no longer exists")
	rootCmd.AddCommand(projectsCmd)
}
