package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"voice-shop/internal/application"
	"voice-shop/internal/domain"
	"voice-shop/internal/infra/metrics"
	"voice-shop/web"
)

const maxBodyBytes = 64 * 1024

type Options struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func DefaultOptions() Options {
	return Options{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type Server struct {
	addr     string
	opts     Options
	resolver *application.Resolver
	catalog  application.Catalog
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	running  bool
	mux      *http.ServeMux
}

func NewServer(
	addr string,
	opts Options,
	resolver *application.Resolver,
	catalog application.Catalog,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Server {
	s := &Server{
		addr:     addr,
		opts:     opts,
		resolver: resolver,
		catalog:  catalog,
		metrics:  m,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.mux.Handle("POST /api/voice", s.instrument("/api/voice", http.HandlerFunc(s.handleVoice)))
	s.mux.Handle("GET /health", s.instrument("/health", http.HandlerFunc(s.handleHealth)))
	s.mux.Handle("GET /metrics", m.Handler())
	s.mux.Handle("GET /", s.instrument("/", web.Handler()))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr is the bound address once the server is running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	go func() {
		s.logger.Info("HTTP server starting", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	req, err := decodeVoiceRequest(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.metrics.Failed(application.KindServer)
		s.writeError(w, r, application.ServerError(err))
		return
	}

	var text string
	if req.Text != nil {
		text = *req.Text
	}

	result, err := s.resolver.Resolve(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeRaw(w, result.StatusCode, result.Body)
}

// decodeVoiceRequest requires the body to be exactly one JSON value.
func decodeVoiceRequest(body io.Reader) (domain.VoiceRequest, error) {
	var req domain.VoiceRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("decoding request: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return req, errors.New("decoding request: trailing data after JSON value")
	}
	return req, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"status":              status,
		"running":             running,
		"catalog_size":        s.catalog.Len(),
		"delegate_configured": s.resolver.DelegateConfigured(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		appErr = application.ServerError(err)
	}

	if appErr.Kind == application.KindServer {
		s.logger.Error("handling voice query",
			"error", err,
			"request_id", RequestID(r.Context()),
		)
	} else {
		s.logger.Warn("rejecting voice query",
			"kind", appErr.Kind,
			"error", appErr.Message,
			"request_id", RequestID(r.Context()),
		)
	}

	writeJSON(w, appErr.HTTPStatus(), domain.QueryResult{Error: appErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"Server error"}`, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
