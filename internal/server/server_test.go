package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/davebream/widgetmcp/internal/config"
	"github.com/davebream/widgetmcp/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "widget.html")
	require.NoError(t, os.WriteFile(path, []byte("<div>test widget</div>"), 0644))
	cfg := config.DefaultConfig()
	cfg.Listen = "127.0.0.1:0"
	cfg.WidgetFile = path
	cfg.ShutdownTimeout = "2s"
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RPCPath = "/healthz"
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestRoutes(t *testing.T) {
	s, err := New(testConfig(t), nil)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	t.Run("asset", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<div>test widget</div>", string(body))
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	})

	t.Run("unknown path", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/nope")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("rpc search", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search_products","arguments":{"query":"haftpflicht"}}}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		sc := out["result"].(map[string]any)["structuredContent"].(map[string]any)
		assert.Equal(t, float64(1), sc["resultCount"])
	})

	t.Run("rpc reads widget from file", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"ui://widget/product-search.html"}}`
		resp, err := http.Post(ts.URL+"/mcp", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		contents := out["result"].(map[string]any)["contents"].([]any)
		assert.Equal(t, "<html><div>test widget</div></html>", contents[0].(map[string]any)["text"])
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(ts.URL + HealthPath)
		require.NoError(t, err)
		defer resp.Body.Close()

		var h Health
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
		assert.Equal(t, "ok", h.Status)
		assert.Equal(t, uint64(2), h.RPCRequests)
		assert.True(t, h.Widgets["search_products"])
		assert.False(t, h.Widgets["show_content"])
	})
}

func TestEmbeddedAssetWithoutWidgetFile(t *testing.T) {
	cfg := config.DefaultConfig()
	s, err := New(cfg, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, widget.DefaultHTML(), rec.Body.String())
}

func TestServeAndShutdown(t *testing.T) {
	s, err := New(testConfig(t), nil)
	require.NoError(t, err)
	assert.Equal(t, StateStopped, s.State())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + HealthPath
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, StateReady, s.State())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, StateStopped, s.State())
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		valid    bool
	}{
		{StateStopped, StateStarting, true},
		{StateStarting, StateReady, true},
		{StateReady, StateDraining, true},
		{StateDraining, StateStopped, true},
		{StateStopped, StateReady, false},
		{StateReady, StateStopped, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidTransition(tt.from, tt.to))
		})
	}
	assert.Equal(t, "UNKNOWN(9)", State(9).String())
}
