// Package sdkserver exposes the content widget through the MCP Go SDK.
package sdkserver

import (
	"context"
	"fmt"
	"time"

	"github.com/davebream/widgetmcp/internal/widget"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "content-widget"
	serverVersion = "1.0.0"

	// ResourceName is the registered name of the widget resource.
	ResourceName = "content-widget"
)

// ShowContentInput is the input of the show_content tool.
type ShowContentInput struct {
	Name string `json:"name" jsonschema:"The name to display in the widget"`
}

// ShowContentOutput is the structured content of a show_content call.
type ShowContentOutput struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server wraps an mcp.Server with one widget resource and one tool.
type Server struct {
	widget *widget.ContentWidget
	loader *widget.Loader
	now    func() time.Time
	mcp    *mcp.Server
}

// New builds the SDK server for w, whose HTML comes from loader.
func New(w *widget.ContentWidget, loader *widget.Loader, opts ...Option) *Server {
	s := &Server{widget: w, loader: loader, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	s.mcp.AddResource(&mcp.Resource{
		URI:         w.TemplateURI,
		Name:        ResourceName,
		Title:       w.Title,
		Description: w.Description,
		MIMEType:    widget.MIMEType,
		Meta:        mcp.Meta(w.ResourceMeta()),
	}, s.readWidget)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        w.ID,
		Title:       w.Title,
		Description: "Fetch and display the homepage content with the name of the user",
		Meta:        mcp.Meta(w.Meta()),
	}, s.showContent)

	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server { return s.mcp }

func (s *Server) readWidget(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	if uri != s.widget.TemplateURI {
		return nil, mcp.ResourceNotFoundError(uri)
	}
	html, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load widget: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: widget.MIMEType,
			Text:     s.widget.WithHTML(html).Document(),
			Meta:     mcp.Meta(s.widget.ResourceMeta()),
		}},
	}, nil
}

func (s *Server) showContent(_ context.Context, _ *mcp.CallToolRequest, in ShowContentInput) (*mcp.CallToolResult, ShowContentOutput, error) {
	out := ShowContentOutput{
		Name:      in.Name,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: in.Name}},
		StructuredContent: out,
		Meta:              mcp.Meta(s.widget.Meta()),
	}, out, nil
}
