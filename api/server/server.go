// Package server wires the HTTP API: routing, middleware, and lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/VarunStarz/sahayak-edu-local/api/handlers"
	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/internal/store"
	"github.com/VarunStarz/sahayak-edu-local/internal/vectorstore"
	"github.com/VarunStarz/sahayak-edu-local/llm/agents"
	"github.com/VarunStarz/sahayak-edu-local/llm/providers/shared"
	"github.com/VarunStarz/sahayak-edu-local/llm/services/sessions"
	"github.com/VarunStarz/sahayak-edu-local/llm/tools"
)

// Dependencies holds everything the server routes to.
type Dependencies struct {
	Store    store.DataStore
	Vectors  vectorstore.VectorStore
	Agents   *agents.Registry
	Tools    *tools.Registry
	Sessions *sessions.Service
	Recorder handlers.ExchangeRecorder
	LLM      shared.LLMProvider
	Logger   zerolog.Logger
}

// Server is the platform HTTP server.
type Server struct {
	router  *mux.Router
	handler http.Handler
	server  *http.Server
	logger  zerolog.Logger
}

// New creates a server with all routes and middleware configured.
func New(cfg *config.ServerConfig, deps *Dependencies) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: deps.Logger,
	}

	agentHandler := handlers.NewAgentHandler(deps.Agents, deps.Sessions, deps.Recorder, deps.Logger)
	toolHandler := handlers.NewToolHandler(deps.Tools, deps.LLM)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	studentHandler := handlers.NewStudentHandler(deps.Store, deps.Tools)
	systemHandler := handlers.NewSystemHandler(deps.Store, deps.Vectors, deps.Agents, deps.Tools, deps.Logger)

	s.router.HandleFunc("/agents", agentHandler.ListAgents).Methods("GET")
	s.router.HandleFunc("/agents/{name}", agentHandler.ExecuteAgent).Methods("POST")

	s.router.HandleFunc("/tools", toolHandler.ListTools).Methods("GET")
	// {name:.+} spans path segments so slash-namespaced remote tools
	// (server/tool) stay addressable.
	s.router.HandleFunc("/tools/{name:.+}", toolHandler.ExecuteTool).Methods("POST")

	s.router.HandleFunc("/sessions", sessionHandler.CreateSession).Methods("POST")
	s.router.HandleFunc("/sessions/{id}/messages", sessionHandler.GetMessages).Methods("GET")
	s.router.HandleFunc("/sessions/{id}", sessionHandler.DeleteSession).Methods("DELETE")

	s.router.HandleFunc("/students/{id}/progress", studentHandler.GetProgress).Methods("GET")
	s.router.HandleFunc("/students/{id}/dashboard", studentHandler.GetDashboard).Methods("GET")

	s.router.HandleFunc("/health", systemHandler.Health).Methods("GET")
	s.router.HandleFunc("/stats", systemHandler.Stats).Methods("GET")

	// Middleware wraps the router so CORS preflights are answered even
	// for unrouted methods.
	s.handler = s.recoveryMiddleware(s.loggingMiddleware(s.corsMiddleware(s.router)))

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler returns the routed handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.server.Addr).Msg("starting HTTP server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Msg("handler panicked")
				http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
