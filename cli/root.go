// Package cli implements the petsim command, a host simulator and asset tool
// for the pet firmware.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nifri2/emotipet/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "petsim",
	Short: "petsim - run the pet on a host and manage its animation assets",
	Long: `petsim runs the pet's control loop against a scripted virtual board,
packs and inspects .anim animation containers, and shows the persisted
personality record.

Example:
  petsim run --script greet.txt --assets animations --for 10m --ascii`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .petsim.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("state", "", "directory holding the personality record")
	rootCmd.PersistentFlags().String("redis", "", "redis address holding the personality record")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("state"))
	_ = viper.BindPFlag("store.redis_addr", rootCmd.PersistentFlags().Lookup("redis"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".petsim")
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
