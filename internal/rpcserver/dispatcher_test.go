package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/davebream/widgetmcp/internal/catalog"
	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/davebream/widgetmcp/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	html string
	err  error
}

func (s staticSource) Fetch(context.Context) (string, error) { return s.html, s.err }
func (s staticSource) String() string                        { return "static" }

func newTestDispatcher(src widget.Source) *Dispatcher {
	if src == nil {
		src = staticSource{html: "<div>products</div>"}
	}
	return NewDispatcher(widget.ProductSearch("https://widgets.example.com"), widget.NewLoader(src))
}

// roundTrip marshals a response and decodes it generically, the way a client sees it.
func roundTrip(t *testing.T, resp *protocol.Response) map[string]any {
	t.Helper()
	data, err := resp.Serialize()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestDispatcherInitialize(t *testing.T) {
	d := newTestDispatcher(nil)

	resp, err := d.Handle(context.Background(), "initialize", json.RawMessage(`{}`), protocol.IntID(1))
	require.NoError(t, err)

	out := roundTrip(t, resp)
	assert.Equal(t, "2.0", out["jsonrpc"])
	assert.Equal(t, float64(1), out["id"])
	result := out["result"].(map[string]any)
	assert.Equal(t, "2024-11-05", result["protocolVersion"])
	assert.Equal(t, serverName, result["serverInfo"].(map[string]any)["name"])
	assert.Contains(t, result["capabilities"], "tools")
	assert.Contains(t, result["capabilities"], "resources")
}

func TestDispatcherToolsList(t *testing.T) {
	d := newTestDispatcher(nil)

	resp, err := d.Handle(context.Background(), "tools/list", nil, protocol.IntID(2))
	require.NoError(t, err)

	out := roundTrip(t, resp)
	tools := out["result"].(map[string]any)["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, SearchToolName, tool["name"])

	schema := tool["inputSchema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"query"}, schema["required"])
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "productType")

	meta := tool["_meta"].(map[string]any)
	assert.Equal(t, "ui://widget/product-search.html", meta["openai/outputTemplate"])
}

func TestDispatcherToolsCall(t *testing.T) {
	d := newTestDispatcher(nil)
	call := func(t *testing.T, params string) map[string]any {
		t.Helper()
		resp, err := d.Handle(context.Background(), "tools/call", json.RawMessage(params), protocol.IntID(5))
		require.NoError(t, err)
		return roundTrip(t, resp)
	}

	t.Run("single match", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{"query":"haftpflicht"}}`)
		result := out["result"].(map[string]any)

		content := result["content"].([]any)
		require.Len(t, content, 1)
		assert.Equal(t, `1 Produkt für "haftpflicht" gefunden.`, content[0].(map[string]any)["text"])

		sc := result["structuredContent"].(map[string]any)
		assert.Equal(t, float64(1), sc["resultCount"])
		assert.Equal(t, "haftpflicht", sc["query"])
		assert.Nil(t, sc["productType"])
		products := sc["products"].([]any)
		require.Len(t, products, 1)
		assert.Equal(t, "ins-001", products[0].(map[string]any)["id"])

		assert.Equal(t, "ui://widget/product-search.html",
			result["_meta"].(map[string]any)["openai/outputTemplate"])
	})

	t.Run("type filter", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{"query":"zahn","productType":"Zahnzusatz"}}`)
		sc := out["result"].(map[string]any)["structuredContent"].(map[string]any)
		assert.Equal(t, "Zahnzusatz", sc["productType"])
		assert.Equal(t, float64(1), sc["resultCount"])
	})

	t.Run("type filter excludes all", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{"query":"zahn","productType":"Hausrat"}}`)
		result := out["result"].(map[string]any)
		sc := result["structuredContent"].(map[string]any)
		assert.Equal(t, float64(0), sc["resultCount"])
		assert.Equal(t, []any{}, sc["products"])
		assert.Equal(t, `0 Produkte für "zahn" gefunden.`, result["content"].([]any)[0].(map[string]any)["text"])
	})

	t.Run("plural", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{"query":""}}`)
		text := out["result"].(map[string]any)["content"].([]any)[0].(map[string]any)["text"]
		assert.Equal(t, catalog.Summary(5, ""), text)
	})

	t.Run("missing query is invalid params", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{}}`)
		assert.Equal(t, float64(protocol.CodeInvalidParams), out["error"].(map[string]any)["code"])
	})

	t.Run("non-string query is invalid params", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{"query":3}}`)
		assert.Equal(t, float64(protocol.CodeInvalidParams), out["error"].(map[string]any)["code"])
	})

	t.Run("non-string product type is invalid params", func(t *testing.T) {
		out := call(t, `{"name":"search_products","arguments":{"query":"a","productType":true}}`)
		assert.Equal(t, float64(protocol.CodeInvalidParams), out["error"].(map[string]any)["code"])
	})

	t.Run("malformed params are invalid params", func(t *testing.T) {
		out := call(t, `{"name":["x"]}`)
		assert.Equal(t, float64(protocol.CodeInvalidParams), out["error"].(map[string]any)["code"])
	})
}

func TestDispatcherUnknownTool(t *testing.T) {
	d := newTestDispatcher(nil)

	resp, err := d.Handle(context.Background(), "tools/call",
		json.RawMessage(`{"name":"bogus","arguments":{}}`), protocol.IntID(2))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Contains(t, err.Error(), "bogus")
}

func TestDispatcherResources(t *testing.T) {
	d := newTestDispatcher(nil)

	t.Run("list", func(t *testing.T) {
		resp, err := d.Handle(context.Background(), "resources/list", nil, protocol.IntID(3))
		require.NoError(t, err)
		resources := roundTrip(t, resp)["result"].(map[string]any)["resources"].([]any)
		require.Len(t, resources, 1)
		r := resources[0].(map[string]any)
		assert.Equal(t, "ui://widget/product-search.html", r["uri"])
		assert.Equal(t, widget.MIMEType, r["mimeType"])
	})

	t.Run("read", func(t *testing.T) {
		resp, err := d.Handle(context.Background(), "resources/read",
			json.RawMessage(`{"uri":"ui://widget/product-search.html"}`), protocol.IntID(3))
		require.NoError(t, err)
		contents := roundTrip(t, resp)["result"].(map[string]any)["contents"].([]any)
		require.Len(t, contents, 1)
		c := contents[0].(map[string]any)
		assert.Equal(t, "<html><div>products</div></html>", c["text"])
		assert.Equal(t, widget.MIMEType, c["mimeType"])
		assert.Equal(t, "https://widgets.example.com", c["_meta"].(map[string]any)["openai/widgetDomain"])
	})

	t.Run("read unknown uri", func(t *testing.T) {
		resp, err := d.Handle(context.Background(), "resources/read", json.RawMessage(`{"uri":"bad"}`), protocol.IntID(3))
		require.NoError(t, err)
		require.NotNil(t, resp.Error)
		assert.Equal(t, protocol.CodeInvalidParams, resp.Error.Code)
		assert.Equal(t, json.RawMessage(`3`), resp.ID)
	})

	t.Run("read with failing loader", func(t *testing.T) {
		d := newTestDispatcher(staticSource{err: errors.New("unreachable")})
		_, err := d.Handle(context.Background(), "resources/read",
			json.RawMessage(`{"uri":"ui://widget/product-search.html"}`), protocol.IntID(3))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unreachable")
	})
}

func TestDispatcherMethodNotFound(t *testing.T) {
	d := newTestDispatcher(nil)

	resp, err := d.Handle(context.Background(), "prompts/list", nil, json.RawMessage(`"abc"`))
	require.NoError(t, err)
	require.NotNil(t, resp.Error)
	assert.Equal(t, protocol.CodeMethodNotFound, resp.Error.Code)
	assert.Nil(t, resp.Result)
}
