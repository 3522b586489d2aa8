package cmd

import (
	"fmt"
	"os"

	"github.com/davebream/widgetmcp/internal/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "widgetmcp",
	Short: "MCP widget server",
	Long: `widgetmcp serves an insurance product search and a content widget to
conversational agents over MCP style JSON-RPC.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (JSON or YAML, default: <config dir>/config.json)")
}

// resolveConfigPath returns --config or the default config file path.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.ConfigFilePath()
}

func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	if configPath != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}
	cfg, err := config.LoadOrDefault(path)
	return cfg, path, err
}
