package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/davebream/widgetmcp/internal/client"
	"github.com/spf13/cobra"
)

var (
	callURL string
	callSDK bool
)

var callCmd = &cobra.Command{
	Use:   "call <method> [params-json]",
	Short: "Send one JSON-RPC request to a running server",
	Example: `  widgetmcp call tools/list
  widgetmcp call tools/call '{"name":"search_products","arguments":{"query":"zahn"}}'
  widgetmcp call --sdk resources/read '{"uri":"ui://widget/content-template.html"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		baseURL := callURL
		if baseURL == "" {
			baseURL = runningServerURL(cfg.Listen)
		}
		path := cfg.RPCPath
		if callSDK {
			path = cfg.SDKPath
		}

		var params json.RawMessage
		if len(args) == 2 {
			params = json.RawMessage(args[1])
		}

		data, err := client.New(baseURL).Call(context.Background(), path, args[0], params)
		if err != nil {
			return err
		}

		var out bytes.Buffer
		if err := json.Indent(&out, data, "", "  "); err != nil {
			return fmt.Errorf("format response: %w", err)
		}
		out.WriteByte('\n')
		_, err = out.WriteTo(os.Stdout)
		return err
	},
}

// runningServerURL prefers the address recorded by a running server over the
// configured one.
func runningServerURL(configured string) string {
	if _, listen, err := readLivePID(); err == nil && listen != "" {
		return client.LocalURL(listen)
	}
	return client.LocalURL(configured)
}

func init() {
	callCmd.Flags().StringVar(&callURL, "url", "", "Server base URL (default: derived from the running server or config)")
	callCmd.Flags().BoolVar(&callSDK, "sdk", false, "Send to the content widget endpoint instead of product search")
	rootCmd.AddCommand(callCmd)
}
