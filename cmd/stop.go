package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/davebream/widgetmcp/internal/config"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, _, err := config.ReadPID()
		if err != nil {
			return fmt.Errorf("server not running (%v)", err)
		}

		process, err := os.FindProcess(pid)
		if err != nil {
			return fmt.Errorf("find process: %w", err)
		}

		if err := process.Signal(syscall.SIGTERM); err != nil {
			config.RemovePID()
			return fmt.Errorf("send SIGTERM: %w (removed stale PID file)", err)
		}

		fmt.Println("Sent shutdown signal to server")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
