// Package server composes the product search and content widget endpoints
// into one HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davebream/widgetmcp/internal/config"
	"github.com/davebream/widgetmcp/internal/httputil"
	"github.com/davebream/widgetmcp/internal/logging"
	"github.com/davebream/widgetmcp/internal/rpcserver"
	"github.com/davebream/widgetmcp/internal/sdkserver"
	"github.com/davebream/widgetmcp/internal/widget"
	"golang.org/x/sync/errgroup"
)

const HealthPath = "/healthz"

// Health is the body served at HealthPath.
type Health struct {
	Status      string          `json:"status"`
	State       string          `json:"state"`
	Uptime      string          `json:"uptime"`
	RPCRequests uint64          `json:"rpc_requests"`
	SDKRequests uint64          `json:"sdk_requests"`
	Widgets     map[string]bool `json:"widgets_loaded"`
}

type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	rpc        *rpcserver.Handler
	sdk        *sdkserver.Handler
	rpcLoader  *widget.Loader
	sdkLoader  *widget.Loader
	rpcWidget  *widget.ContentWidget
	sdkWidget  *widget.ContentWidget
	asset      *widget.Loader
	handler    http.Handler
	state      atomic.Int32
	startedAt  time.Time
	mu         sync.Mutex
	httpServer *http.Server
}

// NewDispatcher builds the product search dispatcher described by cfg.
func NewDispatcher(cfg *config.Config) *rpcserver.Dispatcher {
	w := widget.ProductSearch(cfg.WidgetDomainOrBase())
	return rpcserver.NewDispatcher(w, widget.NewLoader(widgetSource(cfg)))
}

func widgetSource(cfg *config.Config) widget.Source {
	return widget.SelectSource(cfg.WidgetFile, cfg.BaseURL, cfg.WidgetPath)
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		rpcWidget: widget.ProductSearch(cfg.WidgetDomainOrBase()),
		sdkWidget: widget.Content(cfg.WidgetDomainOrBase()),
		rpcLoader: widget.NewLoader(widgetSource(cfg)),
		sdkLoader: widget.NewLoader(widgetSource(cfg)),
		// The asset route never fetches over HTTP: base_url may point back here.
		asset: widget.NewLoader(widget.SelectSource(cfg.WidgetFile, "", "")),
	}
	s.rpc = rpcserver.NewHandler(rpcserver.NewDispatcher(s.rpcWidget, s.rpcLoader), logger)
	s.sdk = sdkserver.NewHandler(sdkserver.New(s.sdkWidget, s.sdkLoader), logger)

	mux := http.NewServeMux()
	mux.Handle(cfg.RPCPath, s.rpc)
	mux.Handle(cfg.SDKPath, s.sdk)
	mux.HandleFunc("GET "+HealthPath, s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleAsset)
	s.handler = mux
	return s, nil
}

// Handler returns the routing handler, for use without Run.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) State() State { return State(s.state.Load()) }

func (s *Server) setState(to State) {
	from := s.State()
	if !IsValidTransition(from, to) {
		s.logger.Warn("invalid state transition", "from", from.String(), "to", to.String())
	}
	s.state.Store(int32(to))
	s.logger.Debug("state", "from", from.String(), "to", to.String())
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	timeout, err := s.cfg.ShutdownTimeoutDuration()
	if err != nil {
		ln.Close()
		return err
	}

	s.setState(StateStarting)
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.startedAt = time.Now()
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.setState(StateReady)
		s.logger.Info("server started",
			"addr", ln.Addr().String(),
			"rpc_path", s.cfg.RPCPath,
			"sdk_path", s.cfg.SDKPath,
			"widget_source", s.rpcLoader.Source().String(),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.setState(StateDraining)
		s.logger.Info("shutting down", "timeout", timeout.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	s.setState(StateStopped)
	s.logger.Info("server stopped")
	return err
}

func (s *Server) health() Health {
	s.mu.Lock()
	startedAt := s.startedAt
	s.mu.Unlock()

	h := Health{
		Status:      "ok",
		State:       s.State().String(),
		RPCRequests: s.rpc.Requests(),
		SDKRequests: s.sdk.Requests(),
		Widgets: map[string]bool{
			s.rpcWidget.ID: s.rpcLoader.Loaded(),
			s.sdkWidget.ID: s.sdkLoader.Loaded(),
		},
	}
	if !startedAt.IsZero() {
		h.Uptime = time.Since(startedAt).Round(time.Second).String()
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := httputil.WriteJSON(w, http.StatusOK, s.health()); err != nil {
		s.logger.Error("write health", "error", err)
	}
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	html, err := s.asset.Load(r.Context())
	if err != nil {
		s.logger.Error("load widget asset", "source", s.asset.Source().String(), "error", err)
		http.Error(w, "widget unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write([]byte(html))
}
