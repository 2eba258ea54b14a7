package proxy

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StoryBuilder/internal/config"
)

// Server hosts the generation endpoint, the websocket sessions, metrics and health.
type Server struct {
	httpServer      *http.Server
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
}

// ServerOptions holds the routes and timeouts of a Server.
type ServerOptions struct {
	Address         string
	ShutdownTimeout time.Duration
	Generate        http.Handler
	Sessions        http.Handler // mounted on /ws when set
	Registry        *prometheus.Registry
}

// NewServer creates the HTTP server.
func NewServer(opts ServerOptions) *Server {
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{shutdownTimeout: opts.ShutdownTimeout}

	mux := http.NewServeMux()
	mux.Handle(config.GeneratePath, opts.Generate)
	if opts.Sessions != nil {
		mux.Handle("/ws", opts.Sessions)
	}
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", s.handleHealth)

	// Generation may take most of a minute, so there is no write timeout.
	s.httpServer = &http.Server{
		Addr:              opts.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start blocks until the server stops. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown drains open connections for up to the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.inShutdown.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
