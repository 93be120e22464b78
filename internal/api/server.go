package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"creatorhub/internal/marketplace"
	"creatorhub/internal/rpc"
	"creatorhub/internal/token"
)

// Server represents the read-only HTTP API server
// Provides endpoints for Prometheus metrics, health checks, and fresh
// contract reads. Every response is fetched from the contract on demand;
// nothing is cached.
type Server struct {
	httpServer   *http.Server
	mux          *http.ServeMux
	tokens       *token.Operations
	market       *marketplace.Operations
	rpcClient    *rpc.Client
	queryAccount string
	port         int
}

// NewServer creates a new API server instance. queryAccount is the funded
// account used as the source of read-only simulations.
func NewServer(port int, tokens *token.Operations, market *marketplace.Operations, rpcClient *rpc.Client, queryAccount string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:          mux,
		tokens:       tokens,
		market:       market,
		rpcClient:    rpcClient,
		queryAccount: queryAccount,
		port:         port,
	}

	// Register all HTTP routes
	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.handleMetrics())

	// Contract read endpoints
	s.mux.HandleFunc("/tokens", s.handleTokens)
	s.mux.HandleFunc("/tokens/", s.handleTokenRoutes)
	s.mux.HandleFunc("/listings", s.handleListings)
	s.mux.HandleFunc("/listings/", s.handleListingRoutes)
	s.mux.HandleFunc("/curve", s.handleCurvePreview)
}

// handleTokens routes to list tokens (without trailing slash)
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handleListTokens(w, r)
}

// handleTokenRoutes routes token sub-endpoints (with trailing slash)
func (s *Server) handleTokenRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/tokens/")
	parts := strings.Split(path, "/")

	// GET /tokens/{id}
	if len(parts) == 1 && parts[0] != "" {
		s.handleGetToken(w, r, parts[0])
		return
	}

	s.sendError(w, "Endpoint not found", http.StatusNotFound)
}

// handleListings routes to list listings (without trailing slash)
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handleListListings(w, r)
}

// handleListingRoutes routes listing sub-endpoints (with trailing slash)
func (s *Server) handleListingRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/listings/")
	parts := strings.Split(path, "/")

	// GET /listings/{id}
	if len(parts) == 1 && parts[0] != "" {
		s.handleGetListing(w, r, parts[0])
		return
	}

	s.sendError(w, "Endpoint not found", http.StatusNotFound)
}

// Start starts the HTTP server in a goroutine
// Returns immediately after starting the server
func (s *Server) Start() error {
	go func() {
		slog.Info("API server starting",
			"port", s.port,
			"endpoints", []string{"/", "/health", "/metrics", "/tokens", "/listings", "/curve"},
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
		}
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)

	return nil
}

// Shutdown gracefully shuts down the HTTP server
// Waits for active connections to close or context to timeout
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}
