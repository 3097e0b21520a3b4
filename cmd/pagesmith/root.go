package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "pagesmith",
	Short: "Visual PDF page editor",
	Long: `pagesmith is a browser-based editor for the pages of a PDF.

Open a PDF and you get a grid of page thumbnails. From there you can:
  - Drag pages to reorder them
  - Select pages and delete or extract them
  - Merge another PDF onto the end
  - Download the result

Everything happens in memory on the server; nothing is stored between runs.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pagesmith/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "pagesmith home directory (default: ~/.pagesmith)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
