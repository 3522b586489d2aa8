package rpcserver

import (
	"strings"

	"github.com/davebream/widgetmcp/internal/catalog"
	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/davebream/widgetmcp/internal/widget"
	"github.com/google/jsonschema-go/jsonschema"
)

// SearchToolName is the only tool the product search endpoint knows.
const SearchToolName = "search_products"

type searchArgs struct {
	Query       string
	ProductType string
}

func searchInputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {
				Type:        "string",
				Description: "Suchbegriff, z. B. Haftpflicht, Zahn oder Fahrrad",
			},
			"productType": {
				Type:        "string",
				Description: "Optionaler Filter auf die Produktart: " + strings.Join(catalog.Types(), ", "),
			},
		},
		Required: []string{"query"},
	}
}

func searchTool(w *widget.ContentWidget) protocol.Tool {
	return protocol.Tool{
		Name:        SearchToolName,
		Title:       w.Title,
		Description: "Durchsucht Versicherungsprodukte nach Name, Beschreibung, Produktart und Leistungen.",
		InputSchema: searchInputSchema(),
		Meta:        w.Meta(),
	}
}

// parseSearchArgs validates tools/call arguments: query is a required string,
// productType an optional string.
func parseSearchArgs(args map[string]any) (searchArgs, *protocol.Error) {
	var out searchArgs
	raw, ok := args["query"]
	if !ok || raw == nil {
		return out, protocol.InvalidParams("arguments.query is required")
	}
	q, ok := raw.(string)
	if !ok {
		return out, protocol.InvalidParams("arguments.query must be a string")
	}
	out.Query = q

	if raw, ok := args["productType"]; ok && raw != nil {
		pt, ok := raw.(string)
		if !ok {
			return out, protocol.InvalidParams("arguments.productType must be a string")
		}
		out.ProductType = pt
	}
	return out, nil
}
