package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/internal/home"
)

var (
	initUser  bool
	initForce bool
)

const initConfig = `# calvin source configuration.
# [targets]
# enabled = ["cursor", "claude-code"]
`

const initSamplePolicy = `---
description: House style for this project
---
Write the code style rules your assistants should follow here.
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a new source directory",
	Long: `Creates a .promptpack source directory with the conventional layout:
actions/, agents/, policies/, commands/, skills/, and a commented
config.toml. With --user the scaffold goes to the user layer under
~/.calvin/.promptpack instead of the project.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		var root string
		if initUser {
			h, err := home.Dir()
			if err != nil {
				return err
			}
			root = filepath.Join(h, ".calvin", ".promptpack")
		} else {
			wd, err := projectRoot()
			if err != nil {
				return err
			}
			root = filepath.Join(wd, ".promptpack")
			if sourcePath != "" {
				root = sourcePath
			}
		}

		if _, err := os.Stat(root); err == nil && !initForce {
			return fmt.Errorf("%s already exists — use --force to scaffold anyway", root)
		}

		for _, dir := range []string{"actions", "agents", "policies", "commands", "skills"} {
			if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}

		files := map[string]string{
			"config.toml":       initConfig,
			"policies/style.md": initSamplePolicy,
		}
		for rel, content := range files {
			path := filepath.Join(root, filepath.FromSlash(rel))
			if _, err := os.Stat(path); err == nil && !initForce {
				detail("keeping existing %s", rel)
				continue
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", rel, err)
			}
		}

		info("Initialized %s", root)
		info("Next: edit policies/style.md and run 'calvin deploy'.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initUser, "user", false, "scaffold the user layer instead of the project")
	initCmd.Flags().BoolVar(&initForce, "force", false, "scaffold even if the directory exists")
	rootCmd.AddCommand(initCmd)
}
