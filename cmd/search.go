package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/davebream/widgetmcp/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	searchType string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the product catalog locally",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		products := catalog.Search(query, searchType)

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		}

		fmt.Println(catalog.Summary(len(products), query))
		if len(products) == 0 {
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tPROVIDER\tPRICE\tRATING")
		for _, p := range products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f €\t%.1f\n", p.ID, p.Name, p.Type, p.Provider, p.MonthlyPrice, p.Rating)
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "Filter by product type ("+strings.Join(catalog.Types(), ", ")+")")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print matching products as JSON")
	rootCmd.AddCommand(searchCmd)
}
