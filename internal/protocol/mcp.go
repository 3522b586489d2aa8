package protocol

// ProtocolVersion is the MCP revision the hand-rolled endpoint advertises.
const ProtocolVersion = "2024-11-05"

type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ServerCapabilities struct {
	Tools     map[string]any `json:"tools"`
	Resources map[string]any `json:"resources"`
}

type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

type Tool struct {
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description"`
	InputSchema any            `json:"inputSchema"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// CallToolParams is the params object of tools/call.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// TextContent is a text content block in a tool result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func Text(s string) TextContent {
	return TextContent{Type: "text", Text: s}
}

type CallToolResult struct {
	Content           []TextContent  `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError,omitempty"`
	Meta              map[string]any `json:"_meta,omitempty"`
}

type Resource struct {
	URI         string         `json:"uri"`
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	MIMEType    string         `json:"mimeType"`
	Meta        map[string]any `json:"_meta,omitempty"`
}

type ResourcesListResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceParams is the params object of resources/read.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

type ResourceContents struct {
	URI      string         `json:"uri"`
	MIMEType string         `json:"mimeType"`
	Text     string         `json:"text"`
	Meta     map[string]any `json:"_meta,omitempty"`
}

type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}
