package cli

import (
	"github.com/spf13/cobra"

	"nifri2/emotipet/config"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Long: `Print every setting with its default value. Save the output as
.petsim.yaml and edit it to tune thresholds and timings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.WriteDefaults(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(defaultsCmd)
}
