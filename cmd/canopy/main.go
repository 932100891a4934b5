package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootCmdConfig struct {
	verbose bool
}

func main() {
	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "canopy",
		Short: "Grow and apply random forests",
		Long: `Canopy grows random forests and gradient-boosted trees over CSV,
SQLite, PostgreSQL or MongoDB datasets, measures their accuracy and
applies them to label new data.`,
	}
	config := &rootCmdConfig{}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "report progress and warnings on stderr")
	rootCmd.AddCommand(versionCmd(), growCmd(config), testCmd(config), predictCmd(config), boostCmd(config), datasetCmd(config))
	return rootCmd
}
