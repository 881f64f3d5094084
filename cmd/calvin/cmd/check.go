package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/check"
	"github.com/calvin-dev/calvin/internal/registry"
	"github.com/calvin-dev/calvin/internal/security"
	"github.com/calvin-dev/calvin/internal/target"
	"github.com/calvin-dev/calvin/internal/ui"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

var (
	checkMode           string
	checkStrictWarnings bool
	checkAll            bool
	checkAllLayers      bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and assets without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		initSinks()

		if checkAll {
			return checkRegisteredProjects()
		}

		opts, err := compileOptions(nil, false, false, false, nil)
		if err != nil {
			return err
		}

		var jsonSink *ui.JSON
		if jsonOut {
			jsonSink = ui.NewJSON(os.Stdout)
			jsonSink.Start("check")
		}

		compiled, err := calvin.Compile(opts)
		if err != nil {
			if jsonSink != nil {
				jsonSink.Error(err)
			}
			return err
		}

		mode := compiled.Config.SecurityMode()
		if checkMode != "" {
			mode, err = security.Parse(checkMode)
			if err != nil {
				return err
			}
		}

		checked := compiled.Assets
		if checkAllLayers {
			// Shadowed layers too: walk each layer individually instead of
			// using the merged (precedence-deduplicated) set.
			checked = nil
			for _, l := range compiled.Layers {
				layerAssets, err := asset.WalkLayer(l)
				if err != nil {
					return err
				}
				checked = append(checked, layerAssets...)
			}
		}

		result := check.Run(checked, target.NewRegistry().Known(), compiled.Warnings, check.Options{
			Mode:           mode,
			StrictWarnings: checkStrictWarnings,
		})

		if jsonSink != nil {
			jsonSink.Warnings(result.Warnings)
			jsonSink.Complete(result.Summary())
			if !result.OK() {
				return fmt.Errorf("check failed with %d problem(s)", len(result.Problems))
			}
			return nil
		}

		info("layers: %d, assets: %d, targets: %s", len(compiled.Layers), len(compiled.Assets), joinOr(compiled.Enabled, "none"))
		for _, l := range compiled.Layers {
			detail("layer %-8s %s", l.Type, l.OriginalPath)
		}
		for _, w := range result.Warnings {
			info("warning: %s", w)
		}
		for _, p := range result.Problems {
			errorf("%s", p)
		}
		if !result.OK() {
			return fmt.Errorf("check failed with %d problem(s)", len(result.Problems))
		}
		info("ok")
		return nil
	},
}

func joinOr(list []string, empty string) string {
	if len(list) == 0 {
		return empty
	}
	out := list[0]
	for _, s := range list[1:] {
		out += ", " + s
	}
	return out
}

// checkRegisteredProjects runs the same validation once per registry entry.
func checkRegisteredProjects() error {
	reg, err := registry.Load(registryPath())
	if err != nil {
		return err
	}
	failed := 0
	for _, p := range reg.All() {
		compiled, err := calvin.Compile(calvin.Options{ProjectRoot: p.Path})
		if err != nil {
			errorf("%s: %v", p.Path, err)
			failed++
			continue
		}
		result := check.Run(compiled.Assets, target.NewRegistry().Known(), compiled.Warnings, check.Options{
			Mode:           compiled.Config.SecurityMode(),
			StrictWarnings: checkStrictWarnings,
		})
		if result.OK() {
			info("  ok       %s", p.Path)
			continue
		}
		failed++
		info("  FAILED   %s", p.Path)
		for _, w := range result.Warnings {
			detail("warning: %s", w)
		}
		for _, prob := range result.Problems {
			errorf("%s", prob)
		}
	}
	if failed > 0 {
		return fmt.Errorf("check failed for %d project(s)", failed)
	}
	return nil
}

func init() {
	checkCmd.Flags().StringVar(&checkMode, "mode", "", "security mode: yolo, balanced, strict")
	checkCmd.Flags().BoolVar(&checkStrictWarnings, "strict-warnings", false, "treat warnings as failures")
	checkCmd.Flags().BoolVar(&checkAll, "all", false, "check every project in the registry")
	checkCmd.Flags().BoolVar(&checkAllLayers, "all-layers", false, "report problems in shadowed layers too")
	rootCmd.AddCommand(checkCmd)
}
