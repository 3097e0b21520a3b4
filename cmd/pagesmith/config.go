package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagesmith/internal/api"
	"github.com/jackzampolin/pagesmith/internal/config"
	"github.com/jackzampolin/pagesmith/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize configuration",
	Long: `Inspect and initialize pagesmith configuration.

Values come from built-in defaults, then the config file, then
PAGESMITH_* environment variables (e.g. PAGESMITH_SERVER_PORT=9090).

Examples:
  pagesmith config init              # Write ~/.pagesmith/config.yaml
  pagesmith config show              # Print every effective setting
  pagesmith config get thumbnails.scale`,
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with every default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		path := h.ConfigPath()
		if len(args) == 1 {
			path = args[0]
		} else if err := h.EnsureExists(); err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every effective setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		return api.Output(mgr.Effective())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one effective setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		value, err := mgr.Lookup(args[0])
		if err != nil {
			return err
		}
		entry := config.Entry{Key: args[0], Value: value}
		if def, err := config.GetDefault(args[0]); err == nil {
			entry.Description = def.Description
		}
		return api.Output(entry)
	},
}

// loadConfig resolves the config file the same way serve does.
func loadConfig() (*config.Manager, error) {
	path := cfgFile
	if path == "" {
		h, err := home.New(homeDir)
		if err != nil {
			return nil, err
		}
		if h.ConfigExists() {
			path = h.ConfigPath()
		}
	}
	return config.NewManager(path)
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}
