package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goinsight",
		Short:         "Recommend visualizations for a tabular dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("sheet", "", "XLSX sheet to read (default: first sheet)")
	rootCmd.PersistentFlags().Bool("json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().Bool("yaml", false, "Print YAML instead of tables")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(
		newProfileCmd(),
		newSubspacesCmd(),
		newRecommendCmd(),
		newDemoCmd(),
	)
	return rootCmd
}
