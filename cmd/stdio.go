package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/davebream/widgetmcp/internal/rpcserver"
	"github.com/davebream/widgetmcp/internal/server"
	"github.com/spf13/cobra"
)

var stdioCmd = &cobra.Command{
	Use:   "stdio",
	Short: "Serve product search over stdin/stdout",
	Long: `Reads newline-delimited JSON-RPC requests from stdin and writes responses
to stdout. Logs go to the log file only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, logCleanup := setupLogger(cfg, false)
		defer logCleanup()

		// Stdio clients close stdin to stop; SIGINT would come from the terminal.
		signal.Ignore(syscall.SIGPIPE)
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()

		logger.Info("stdio session started")
		err = rpcserver.ServeStdio(ctx, server.NewDispatcher(cfg), os.Stdin, os.Stdout, logger)
		logger.Info("stdio session ended")
		return err
	},
}

func init() {
	rootCmd.AddCommand(stdioCmd)
}
