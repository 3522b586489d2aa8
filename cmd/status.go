package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/davebream/widgetmcp/internal/client"
	"github.com/davebream/widgetmcp/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, listen, err := config.ReadPID()
		if err != nil {
			fmt.Println("Server: not running")
			return nil
		}
		if !processAlive(pid) {
			fmt.Printf("Server: not running (PID %d, stale PID file)\n", pid)
			return nil
		}

		url := client.LocalURL(listen)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h, err := client.New(url).Health(ctx)
		if err != nil {
			fmt.Printf("Server: running (PID %d), %s not reachable: %v\n", pid, url, err)
			return nil
		}

		fmt.Printf("Server: running (PID %d)\n", pid)
		fmt.Printf("URL:    %s\n", url)
		fmt.Printf("State:  %s, up %s\n", h.State, h.Uptime)
		fmt.Printf("Requests: %d product search, %d content widget\n", h.RPCRequests, h.SDKRequests)
		for id, loaded := range h.Widgets {
			fmt.Printf("Widget %s: loaded=%t\n", id, loaded)
		}
		return nil
	},
}

func processAlive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// readLivePID returns the PID file contents only if that process is alive.
func readLivePID() (int, string, error) {
	pid, listen, err := config.ReadPID()
	if err != nil {
		return 0, "", err
	}
	if !processAlive(pid) {
		return 0, "", fmt.Errorf("PID %d is not running", pid)
	}
	return pid, listen, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
