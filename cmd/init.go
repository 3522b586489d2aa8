package cmd

import (
	"fmt"
	"os"

	"github.com/davebream/widgetmcp/internal/config"
	"github.com/spf13/cobra"
)

var (
	initForce   bool
	initBaseURL string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Writes the default configuration to the config file (or --config).
A .yaml or .yml path is written as YAML, anything else as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}

		cfg := config.DefaultConfig()
		cfg.BaseURL = initBaseURL
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Println("Wrote", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config")
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "", "Base URL the widget HTML is fetched from")
	rootCmd.AddCommand(initCmd)
}
