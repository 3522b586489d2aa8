package cmd

import (
	"fmt"

	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("widgetmcp %s (commit: %s, protocol: %s)\n", version, commit, protocol.ProtocolVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
