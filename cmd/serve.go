package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/davebream/widgetmcp/internal/config"
	"github.com/davebream/widgetmcp/internal/logging"
	"github.com/davebream/widgetmcp/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveListen   string
	serveBaseURL  string
	serveLogLevel string
	serveQuiet    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if serveListen != "" {
			cfg.Listen = serveListen
		}
		if serveBaseURL != "" {
			cfg.BaseURL = config.ResolveEnv(serveBaseURL)
		}
		if serveLogLevel != "" {
			cfg.LogLevel = serveLogLevel
		}

		logger, logCleanup := setupLogger(cfg, !serveQuiet)
		defer logCleanup()

		srv, err := server.New(cfg, logger)
		if err != nil {
			return err
		}

		if err := config.WritePID(os.Getpid(), cfg.Listen); err != nil {
			logger.Warn("failed to write PID file", "error", err)
		} else {
			defer config.RemovePID()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx)
	},
}

// setupLogger logs to the rotating server log, falling back to stderr when
// the log directory is unusable.
func setupLogger(cfg *config.Config, alsoStderr bool) (*slog.Logger, func()) {
	level := logging.ParseLevel(cfg.LogLevel)
	format := logging.ParseFormat(cfg.LogFormat)

	logDir, err := config.LogDir()
	if err == nil {
		err = config.EnsureDir(logDir, 0700)
	}
	if err == nil {
		logger, cleanup, err := logging.Setup(logDir, level, format, alsoStderr)
		if err == nil {
			return logger, cleanup
		}
		fmt.Fprintf(os.Stderr, "widgetmcp: cannot set up file logging: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "widgetmcp: cannot create log directory: %v\n", err)
	}
	return logging.NewLogger(os.Stderr, level, format), func() {}
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveBaseURL, "base-url", "", "Base URL the widget HTML is fetched from (overrides config)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	serveCmd.Flags().BoolVarP(&serveQuiet, "quiet", "q", false, "Log to the log file only")
	rootCmd.AddCommand(serveCmd)
}
