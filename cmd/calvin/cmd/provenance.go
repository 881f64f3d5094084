package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calvin-dev/calvin/pkg/calvin"
)

var provenanceFilter string

var provenanceCmd = &cobra.Command{
	Use:   "provenance",
	Short: "Show which layer, asset, and source file produced each output",
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

		type row struct {
			Path      string `json:"path"`
			Layer     string `json:"layer"`
			Asset     string `json:"asset"`
			Source    string `json:"source"`
			Overrides string `json:"overrides,omitempty"`
		}

		var rows []row
		for _, o := range compiled.Outputs {
			r := row{
				Path:      o.Path.String(),
				Layer:     string(o.Provenance.SourceLayer),
				Asset:     o.Provenance.SourceAsset,
				Source:    o.Provenance.SourceFile,
				Overrides: o.Provenance.Overrides,
			}
			if provenanceFilter != "" &&
				!strings.Contains(r.Path, provenanceFilter) &&
				!strings.Contains(r.Asset, provenanceFilter) {
				continue
			}
			rows = append(rows, r)
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			for _, r := range rows {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		}

		for _, r := range rows {
			line := r.Path + "  <-  " + r.Layer + ":" + r.Asset
			if r.Overrides != "" {
				line += " (overrides " + r.Overrides + ")"
			}
			info("  %s", line)
			detail("source: %s", r.Source)
		}
		info("")
		info("%d outputs.", len(rows))
		return nil
	},
}

func init() {
	provenanceCmd.Flags().StringVar(&provenanceFilter, "filter", "", "only show outputs matching this substring")
	rootCmd.AddCommand(provenanceCmd)
}
