package rpcserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/davebream/widgetmcp/internal/httputil"
	"github.com/davebream/widgetmcp/internal/logging"
	"github.com/davebream/widgetmcp/internal/protocol"
	"github.com/google/uuid"
)

// maxBodySize bounds a single JSON-RPC request body.
const maxBodySize = 10 * 1024 * 1024

// Handler serves the product search endpoint over HTTP.
//
//	GET     implicit initialize
//	POST    one JSON-RPC request
//	OPTIONS CORS preflight
type Handler struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	requests   protocol.Counter
}

func NewHandler(d *Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{dispatcher: d, logger: logger}
}

// Requests returns how many requests the handler has seen.
func (h *Handler) Requests() uint64 {
	return h.requests.Current()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	seq := h.requests.Next()
	requestID := uuid.NewString()
	log := logging.RequestLogger(h.logger, "rpc", seq, requestID)

	w.Header().Set("X-Request-Id", requestID)
	w.Header().Set("Access-Control-Allow-Origin", "*")

	log.Info("request", "method", r.Method, "url", r.URL.String())
	log.Debug("request headers", logging.HeaderAttr(r.Header))

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic handling request", "error", fmt.Sprint(p), "stack", string(debug.Stack()))
			h.writeResponse(w, log, http.StatusInternalServerError,
				protocol.NewErrorResponse(nil, protocol.InternalError(fmt.Errorf("panic: %v", p))))
		}
	}()

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		httputil.WriteNoContent(w)
	case http.MethodGet:
		h.serveGet(w, r, log)
	case http.MethodPost:
		h.servePost(w, r, log)
	default:
		httputil.WriteMethodNotAllowed(w, "GET, POST, OPTIONS")
	}
}

func (h *Handler) serveGet(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	resp, err := h.dispatcher.Handle(r.Context(), protocol.MethodInitialize.String(), nil, nil)
	if err != nil {
		h.fail(w, log, nil, err)
		return
	}
	h.writeResponse(w, log, http.StatusOK, resp)
}

func (h *Handler) servePost(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		h.fail(w, log, nil, fmt.Errorf("read body: %w", err))
		return
	}
	log.Debug("request body", "body", string(body))

	req, err := protocol.ParseRequest(body)
	if err != nil {
		h.fail(w, log, nil, err)
		return
	}
	if req.IsNotification() {
		log.Info("notification accepted", "rpc_method", req.Method)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	resp, err := h.dispatcher.Handle(r.Context(), req.Method, req.Params, req.ID)
	if err != nil {
		h.fail(w, log, req.ID, err)
		return
	}
	if resp.Error != nil {
		log.Warn("rpc error", "rpc_method", req.Method, "code", resp.Error.Code, "message", resp.Error.Message)
	}
	h.writeResponse(w, log, http.StatusOK, resp)
}

// fail logs err with a stack trace and answers with a generic internal error.
func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, id json.RawMessage, err error) {
	log.Error("request failed", "error", err.Error(), "stack", string(debug.Stack()))
	h.writeResponse(w, log, http.StatusInternalServerError,
		protocol.NewErrorResponse(id, protocol.InternalError(err)))
}

func (h *Handler) writeResponse(w http.ResponseWriter, log *slog.Logger, status int, resp *protocol.Response) {
	if err := httputil.WriteJSON(w, status, resp); err != nil {
		log.Error("write response", "error", err)
		return
	}
	log.Info("response", "status", status)
}
