// Package server provides the HTTP API for skillscope: upload an assessment
// spreadsheet once, then compute any report view over it with filters, as
// JSON or as a CSV download.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/spektr-org/skillscope/engine"
	"github.com/spektr-org/skillscope/logger"
	"github.com/spektr-org/skillscope/schema"
)

// multipartMemory is the part of an upload kept in memory before the
// multipart reader spills to disk.
const multipartMemory = 8 << 20

// Server represents the report API server
type Server struct {
	router *mux.Router
	config *ServerConfig
	store  *Store
	server *http.Server
}

// ServerConfig holds the configuration for the API server
type ServerConfig struct {
	Host           string
	Port           int
	MaxDatasets    int
	MaxUploadBytes int64
	Schema         schema.Config

	// LinguisticDomain is reported by /api/scales; EngineOptions should
	// carry the same domain.
	LinguisticDomain string
	EngineOptions    []engine.Option
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxDatasets < 1 {
		return errors.Errorf("max datasets must be positive, got %d", c.MaxDatasets)
	}
	if c.MaxUploadBytes < 1 {
		return errors.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	if err := c.Schema.Validate(); err != nil {
		return errors.Wrap(err, "invalid schema")
	}
	return nil
}

// NewServer creates a new API server
func NewServer(config *ServerConfig) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid server configuration")
	}

	s := &Server{
		router: mux.NewRouter(),
		config: config,
		store:  NewStore(config.MaxDatasets),
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all the HTTP routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scales", s.handleScales).Methods("GET")
	api.HandleFunc("/views", s.handleListViews).Methods("GET")
	api.HandleFunc("/datasets", s.handleListDatasets).Methods("GET")
	api.HandleFunc("/datasets", s.handleUpload).Methods("POST")
	api.HandleFunc("/datasets/{id}", s.handleGetDataset).Methods("GET")
	api.HandleFunc("/datasets/{id}", s.handleDeleteDataset).Methods("DELETE")
	api.HandleFunc("/datasets/{id}/options", s.handleOptions).Methods("GET")
	api.HandleFunc("/datasets/{id}/views/{view:[a-z_]+}.csv", s.handleViewCSV).Methods("GET")
	api.HandleFunc("/datasets/{id}/views/{view:[a-z_]+}", s.handleView).Methods("GET")
	// Preflight requests only need to match a route; corsMiddleware answers them.
	api.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
}

// loggingMiddleware attaches a request logger and logs each request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		log := logger.G(r.Context()).WithFields(map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		r = r.WithContext(logger.WithLogger(r.Context(), log))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		log.WithFields(map[string]any{
			"status":      rw.statusCode,
			"duration":    time.Since(start),
			"remote_addr": r.RemoteAddr,
		}).Info("HTTP request")
	})
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start listens on the configured address and serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.G(ctx).WithField("address", ln.Addr().String()).Info("API server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "API server failed")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down API server")
	}
	<-errCh
	return nil
}

// Stop closes the server immediately
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.G(ctx).WithError(err).Error("failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (s *Server) writeErrorResponse(ctx context.Context, w http.ResponseWriter, statusCode int, message string, err error) {
	log := logger.G(ctx).WithField("status", statusCode)
	if err != nil {
		log = log.WithError(err)
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error(message)
	} else {
		log.Warn(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]any{
		"error":   message,
		"status":  statusCode,
		"success": false,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.WithError(err).Error("failed to encode error response")
	}
}
