package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Show the resolved layer stack in precedence order",
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

		if jsonOut {
			type layerRow struct {
				Type     string `json:"type"`
				Path     string `json:"path"`
				Resolved string `json:"resolved"`
				Assets   int    `json:"assets"`
			}
			enc := json.NewEncoder(os.Stdout)
			for _, l := range compiled.Layers {
				row := layerRow{Type: string(l.Type), Path: l.OriginalPath, Resolved: l.ResolvedPath}
				row.Assets = countAssetsFrom(compiled.Assets, l.ResolvedPath)
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
			return nil
		}

		info("Layer stack (lowest to highest precedence):")
		for _, l := range compiled.Layers {
			info("  %-8s %s", l.Type, l.OriginalPath)
			if l.ResolvedPath != l.OriginalPath {
				detail("resolves to %s", l.ResolvedPath)
			}
		}
		for id, ov := range compiled.Overrides {
			info("  override %s: %s layer wins over %v", id, ov.WinningLayer, ov.ShadowedLayer)
		}
		return nil
	},
}

// countAssetsFrom counts merged assets whose winning layer is the given
// root.
func countAssetsFrom(assets []*asset.Asset, layerPath string) int {
	n := 0
	for _, a := range assets {
		if a.SourceLayerPath == layerPath {
			n++
		}
	}
	return n
}

func init() {
	rootCmd.AddCommand(layersCmd)
}
