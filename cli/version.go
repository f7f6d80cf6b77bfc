package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X nifri2/emotipet/cli.Version=v1.0.0"
var (
	Version = "dev"
	Commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "petsim %s (commit: %s, go: %s)\n", Version, Commit, runtime.Version())
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "petsim %s\n", Version)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
