package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/botworkspace/googlelink/internal/auth"
	"github.com/botworkspace/googlelink/internal/instrumentation"
	"github.com/botworkspace/googlelink/internal/logging"
)

// Server is the HTTP front for the account linking service.
type Server struct {
	service    *auth.Service
	health     *HealthChecker
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	httpServer *http.Server
	addr       string
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to the server.
func WithMetrics(m *instrumentation.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates the HTTP server for the given linking service.
func New(addr string, service *auth.Service, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		health:  NewHealthChecker(),
		logger:  slog.Default(),
		addr:    addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health returns the server's health checker, so the lifecycle owner can
// flip readiness during startup and shutdown.
func (s *Server) Health() *HealthChecker {
	return s.health
}

// Handler builds the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /auth/url", s.instrument("/auth/url", s.handleAuthURL))
	mux.Handle("GET /oauth/callback", s.instrument("/oauth/callback", s.handleCallback))
	mux.Handle("GET /users/first-interaction", s.instrument("/users/first-interaction", s.handleFirstInteraction))
	s.health.RegisterHealthEndpoints(mux)

	return mux
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("starting server", slog.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetShuttingDown()
	if s.httpServer != nil {
		s.logger.Info("shutting down server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// handleAuthURL issues a consent URL for the user identified by the
// identity token. The caller may supply its own session id; one is
// generated otherwise.
func (s *Server) handleAuthURL(w http.ResponseWriter, r *http.Request) {
	token := identityTokenFrom(r)
	if token == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("identity token is required"))
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	url, err := s.service.AuthURL(r.Context(), sessionID, token)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"url":        url,
		"session_id": sessionID,
	})
}

// handleCallback is the OAuth redirect target. Google sends the user
// here with the one-time code and the state we encoded into the consent
// URL.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		// The user denied consent or the flow was aborted at Google.
		s.logger.Warn("authorization flow aborted", slog.String("reason", errCode))
		s.writeError(w, r, http.StatusBadRequest, errors.New("authorization was not granted"))
		return
	}

	code := q.Get("code")
	state := q.Get("state")
	if code == "" || state == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("code and state query parameters are required"))
		return
	}

	if _, err := s.service.Exchange(r.Context(), code, state); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
}

// handleFirstInteraction reports whether a phone number has ever been
// seen before.
func (s *Server) handleFirstInteraction(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")

	first, err := s.service.IsFirstInteraction(r.Context(), phone)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"first_interaction": first})
}

// identityTokenFrom extracts the identity token from the Authorization
// header, falling back to the token query parameter.
func identityTokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return token
		}
	}
	return r.URL.Query().Get("token")
}

// statusFor maps service errors to HTTP status codes. Unknown errors are
// storage failures and map to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrStateDecoding),
		errors.Is(err, auth.ErrTokenExchange),
		errors.Is(err, auth.ErrMissingIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrMissingAuthorization):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", r.URL.Path), logging.Err(err))
		// Do not leak internals to the caller.
		s.writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(route string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		h(rec, r)

		s.metrics.RecordHTTPRequest(r.Context(), r.Method, route, rec.status, time.Since(start))
	})
}
