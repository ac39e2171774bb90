// Package api exposes the transformation engine over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alevsk/shapeshift/internal/config"
	"github.com/alevsk/shapeshift/internal/detector"
	"github.com/alevsk/shapeshift/internal/logger"
	"github.com/alevsk/shapeshift/internal/orchestrator"
	"github.com/gorilla/mux"
)

// Server represents the API server
type Server struct {
	router   *mux.Router
	orch     *orchestrator.Orchestrator
	server   config.ServerConfig
	defaults config.TransformConfig
}

// TransformRequest is the body of POST /api/v1/transform. Unset fields
// fall back to the transform section of the configuration.
type TransformRequest struct {
	Data     string `json:"data"`
	From     string `json:"from"`
	To       string `json:"to"`
	Pretty   *bool  `json:"pretty"`
	Indent   *int   `json:"indent"`
	Validate *bool  `json:"validate"`
	Strict   *bool  `json:"strict"`
}

// ValidateRequest is the body of POST /api/v1/validate. An empty format
// is detected.
type ValidateRequest struct {
	Data   string `json:"data"`
	Format string `json:"format"`
	Strict *bool  `json:"strict"`
}

// DetectRequest is the body of POST /api/v1/detect
type DetectRequest struct {
	Data string `json:"data"`
}

// NewServer creates a new API server instance. A nil orchestrator is
// built from cfg, and a nil cfg means the default configuration.
func NewServer(orch *orchestrator.Orchestrator, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if orch == nil {
		orch = orchestrator.New(&orchestrator.Options{StrictMode: cfg.Strict})
	}
	s := &Server{
		router:   mux.NewRouter(),
		orch:     orch,
		server:   cfg.Server,
		defaults: cfg.Transform,
	}
	s.routes()
	return s
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.Use(logRequests)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	v1.HandleFunc("/formats", s.formats).Methods(http.MethodGet)
	v1.HandleFunc("/transform", s.transform).Methods(http.MethodPost)
	v1.HandleFunc("/validate", s.validate).Methods(http.MethodPost)
	v1.HandleFunc("/detect", s.detect).Methods(http.MethodPost)
}

// ServeHTTP makes Server an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.server.Address(),
		Handler:      s.router,
		ReadTimeout:  s.server.Timeout,
		WriteTimeout: s.server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) formats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"formats": s.orch.Formats()})
}

func (s *Server) transform(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := orchestrator.TransformOptions{
		Source:   req.From,
		Target:   req.To,
		Validate: s.defaults.Validate,
		Pretty:   s.defaults.Pretty,
		Indent:   s.defaults.Indent,
		Strict:   req.Strict,
	}
	if opts.Target == "" {
		opts.Target = s.defaults.Target
	}
	if req.Validate != nil {
		opts.Validate = *req.Validate
	}
	if req.Pretty != nil {
		opts.Pretty = *req.Pretty
	}
	if req.Indent != nil {
		opts.Indent = *req.Indent
	}

	writeJSON(w, http.StatusOK, s.orch.Transform(req.Data, opts))
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if !s.decode(w, r, &req) {
		return
	}

	format := req.Format
	if format == "" {
		detected, err := s.orch.Detect(req.Data)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		format = detected.Format
	}
	writeJSON(w, http.StatusOK, s.orch.ValidateOnly(req.Data, format, req.Strict))
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.orch.Detect(req.Data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, detector.ErrDetection) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// decode reads a JSON request body into v, writing the error response
// itself when it fails
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.server.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body.Bytes()); err != nil {
		logger.Warn().Err(err).Msg("failed to write response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
