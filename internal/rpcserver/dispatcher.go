package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/davebream/widgetmcp/internal/catalog"
	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/davebream/widgetmcp/internal/widget"
)

const (
	serverName    = "insurance-product-search"
	serverVersion = "1.0.0"
)

// ErrUnknownTool is returned for tools/call with a tool name other than SearchToolName.
// It is not a JSON-RPC error: callers translate it into an internal error.
var ErrUnknownTool = errors.New("unknown tool")

// Dispatcher answers the five product search methods.
type Dispatcher struct {
	widget *widget.ContentWidget
	loader *widget.Loader
}

// NewDispatcher creates a dispatcher serving w, whose HTML comes from loader.
func NewDispatcher(w *widget.ContentWidget, loader *widget.Loader) *Dispatcher {
	return &Dispatcher{widget: w, loader: loader}
}

// SearchResult is the structured content of a search_products call.
type SearchResult struct {
	ResultCount int                        `json:"resultCount"`
	Query       string                     `json:"query"`
	ProductType *string                    `json:"productType"`
	Products    []catalog.InsuranceProduct `json:"products"`
}

// Handle dispatches one request. JSON-RPC level failures come back as an error
// response; a non-nil error means the request could not be handled at all.
func (d *Dispatcher) Handle(ctx context.Context, method string, params, id json.RawMessage) (*protocol.Response, error) {
	m, ok := protocol.ParseMethod(method)
	if !ok {
		return protocol.NewErrorResponse(id, protocol.MethodNotFound(method)), nil
	}

	var (
		result any
		rpcErr *protocol.Error
		err    error
	)
	switch m {
	case protocol.MethodInitialize:
		result = d.initialize()
	case protocol.MethodToolsList:
		result = d.toolsList()
	case protocol.MethodToolsCall:
		result, rpcErr, err = d.toolsCall(params)
	case protocol.MethodResourcesList:
		result = d.resourcesList()
	case protocol.MethodResourcesRead:
		result, rpcErr, err = d.resourcesRead(ctx, params)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if rpcErr != nil {
		return protocol.NewErrorResponse(id, rpcErr), nil
	}
	return protocol.NewResult(id, result), nil
}

func (d *Dispatcher) initialize() *protocol.InitializeResult {
	return &protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities: protocol.ServerCapabilities{
			Tools:     map[string]any{},
			Resources: map[string]any{},
		},
		ServerInfo: protocol.Implementation{Name: serverName, Version: serverVersion},
	}
}

func (d *Dispatcher) toolsList() *protocol.ToolsListResult {
	return &protocol.ToolsListResult{Tools: []protocol.Tool{searchTool(d.widget)}}
}

func (d *Dispatcher) toolsCall(params json.RawMessage) (any, *protocol.Error, error) {
	p, rpcErr := protocol.UnmarshalParams[protocol.CallToolParams](params)
	if rpcErr != nil {
		return nil, rpcErr, nil
	}
	if p.Name != SearchToolName {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTool, p.Name)
	}
	args, rpcErr := parseSearchArgs(p.Arguments)
	if rpcErr != nil {
		return nil, rpcErr, nil
	}

	products := catalog.Search(args.Query, args.ProductType)
	structured := SearchResult{
		ResultCount: len(products),
		Query:       args.Query,
		Products:    products,
	}
	if args.ProductType != "" {
		structured.ProductType = &args.ProductType
	}
	return &protocol.CallToolResult{
		Content:           []protocol.TextContent{protocol.Text(catalog.Summary(len(products), args.Query))},
		StructuredContent: structured,
		Meta:              d.widget.Meta(),
	}, nil, nil
}

func (d *Dispatcher) resource() protocol.Resource {
	return protocol.Resource{
		URI:         d.widget.TemplateURI,
		Name:        d.widget.ID + "-widget",
		Title:       d.widget.Title,
		Description: d.widget.Description,
		MIMEType:    widget.MIMEType,
		Meta:        d.widget.ResourceMeta(),
	}
}

func (d *Dispatcher) resourcesList() *protocol.ResourcesListResult {
	return &protocol.ResourcesListResult{Resources: []protocol.Resource{d.resource()}}
}

func (d *Dispatcher) resourcesRead(ctx context.Context, params json.RawMessage) (any, *protocol.Error, error) {
	p, rpcErr := protocol.UnmarshalParams[protocol.ReadResourceParams](params)
	if rpcErr != nil {
		return nil, rpcErr, nil
	}
	if p.URI != d.widget.TemplateURI {
		return nil, protocol.NewError(protocol.CodeInvalidParams, "Resource not found: "+p.URI, nil), nil
	}
	html, err := d.loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load widget: %w", err)
	}
	return &protocol.ReadResourceResult{
		Contents: []protocol.ResourceContents{{
			URI:      d.widget.TemplateURI,
			MIMEType: widget.MIMEType,
			Text:     d.widget.WithHTML(html).Document(),
			Meta:     d.widget.ResourceMeta(),
		}},
	}, nil, nil
}
