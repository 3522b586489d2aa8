package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/davebream/widgetmcp/internal/client"
	"github.com/davebream/widgetmcp/internal/widget"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, widget source and server reachability",
	RunE: func(cmd *cobra.Command, args []string) error {
		allOK := true

		// 1. Config file
		cfg, path, err := loadConfig()
		if err != nil {
			fmt.Printf("Config:  FAIL (%v)\n", err)
			return fmt.Errorf("some checks failed")
		}
		if err := cfg.Validate(); err != nil {
			fmt.Printf("Config:  FAIL (%v, %s)\n", err, path)
			allOK = false
		} else {
			fmt.Printf("Config:  OK (%s)\n", path)
		}

		// 2. Widget source
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		src := widget.SelectSource(cfg.WidgetFile, cfg.BaseURL, cfg.WidgetPath)
		html, err := src.Fetch(ctx)
		if err != nil {
			fmt.Printf("Widget:  FAIL (%s: %v)\n", src, err)
			allOK = false
		} else {
			fmt.Printf("Widget:  OK (%s, %d bytes)\n", src, len(html))
		}

		// 3. Server process
		pid, listen, err := readLivePID()
		if err != nil {
			fmt.Println("Server:  WARN (not running)")
		} else {
			fmt.Printf("Server:  OK (PID %d)\n", pid)

			// 4. Reachability
			url := client.LocalURL(listen)
			if _, err := client.New(url).Health(ctx); err != nil {
				fmt.Printf("Connect: FAIL (%s: %v)\n", url, err)
				allOK = false
			} else {
				fmt.Printf("Connect: OK (%s)\n", url)
			}
		}

		if !allOK {
			return fmt.Errorf("some checks failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
