package sdkserver

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/davebream/widgetmcp/internal/httputil"
	"github.com/davebream/widgetmcp/internal/logging"
	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxLoggedBody = 64 * 1024

// Handler serves the SDK server over stateless streamable HTTP with JSON
// responses, logging each request before it reaches the SDK.
type Handler struct {
	inner    http.Handler
	logger   *slog.Logger
	requests protocol.Counter
}

// NewHandler wraps s for HTTP.
func NewHandler(s *Server, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	inner := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.MCP()
	}, &mcp.StreamableHTTPOptions{
		Stateless:    true,
		JSONResponse: true,
	})
	return &Handler{inner: inner, logger: logger}
}

// Requests returns how many requests the handler has seen.
func (h *Handler) Requests() uint64 {
	return h.requests.Current()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	seq := h.requests.Next()
	requestID := uuid.NewString()
	log := logging.RequestLogger(h.logger, "sdk", seq, requestID)
	w.Header().Set("X-Request-Id", requestID)

	log.Info("request", "method", r.Method, "url", r.URL.String())
	log.Debug("request headers", logging.HeaderAttr(r.Header))

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic handling request", "error", fmt.Sprint(p), "stack", string(debug.Stack()))
			_ = httputil.WriteJSON(w, http.StatusInternalServerError,
				protocol.NewErrorResponse(nil, protocol.InternalError(fmt.Errorf("panic: %v", p))))
		}
	}()

	if r.Method == http.MethodPost && r.Body != nil {
		body, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			log.Error("read body", "error", err)
			_ = httputil.WriteJSON(w, http.StatusBadRequest,
				protocol.NewErrorResponse(nil, protocol.ParseError(err.Error())))
			return
		}
		logged := body
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody]
		}
		log.Debug("request body", "body", string(logged))
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	h.inner.ServeHTTP(w, r)
}
