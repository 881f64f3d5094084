package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags.
var (
	sourcePath string
	verbose    bool
	quiet      bool
	noColor    bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "calvin",
	Short: "Compile and deploy AI-assistant configuration",
	Long: `calvin maintains prompts, policies, agents, skills, and commands in one
scope-agnostic source directory and compiles them into the per-tool file
layouts of your coding assistants (.cursor/, .claude/, .codex/, and
friends), locally or over SSH. Layers merge with strict precedence, a
lockfile tracks every file written, and orphaned outputs are cleaned up
safely.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("calvin %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourcePath, "source", "", "path to the source directory (default <project>/.promptpack)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit NDJSON events instead of text")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if !jsonOut {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		return err
	}
	return nil
}
