package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/services/moderator"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// HTTPTransport serves the JSON moderation API.
type HTTPTransport struct {
	addr   string
	logger log.Logger

	mu       sync.RWMutex
	running  bool
	server   *http.Server
	listener net.Listener
}

type textRequest struct {
	Text *string `json:"text"`
}

type textResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPTransport creates a transport that will bind addr on Start.
func NewHTTPTransport(addr string, logger log.Logger) *HTTPTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &HTTPTransport{addr: addr, logger: logger}
}

// Start binds the listener and serves in the background until Stop is called
// or ctx is cancelled.
func (t *HTTPTransport) Start(ctx context.Context, handler moderator.Responder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("HTTP transport already running")
	}

	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to bind HTTP listener on %s: %w", t.addr, err)
	}

	t.listener = ln
	t.server = &http.Server{
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	t.running = true

	t.logger.Info(map[string]any{
		"transport": "http",
		"address":   ln.Addr().String(),
	}, "moderation transport started")

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error(map[string]any{"error": err.Error()}, "HTTP server stopped unexpectedly")
		}
	}(t.server)

	return nil
}

// Stop shuts the server down, waiting for in-flight requests up to a fixed timeout.
func (t *HTTPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := t.server.Shutdown(ctx)
	if err != nil {
		t.logger.Warn(map[string]any{"error": err.Error()}, "error shutting down HTTP server")
	}
	t.running = false

	t.logger.Info(map[string]any{
		"transport": "http",
		"address":   t.listener.Addr().String(),
	}, "moderation transport stopped")

	return err
}

// Address returns the bound address while running, else the configured one.
func (t *HTTPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.running && t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.addr
}

// Handler returns the routed API with request IDs and access logging applied.
func (t *HTTPTransport) Handler(handler moderator.Responder) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/classify", t.only(http.MethodPost, t.classify(handler)))
	mux.HandleFunc("/v1/sanitize", t.only(http.MethodPost, t.sanitize(handler)))
	mux.HandleFunc("/healthz", t.only(http.MethodGet, health))
	return t.withRequestLog(mux)
}

func (t *HTTPTransport) classify(handler moderator.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r)
		if !ok {
			return
		}
		v := handler.Classify(r.Context(), text, r.Header.Get(HeaderModerationKey))
		writeJSON(w, http.StatusOK, v)
	}
}

func (t *HTTPTransport) sanitize(handler moderator.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, textResponse{Text: handler.Sanitize(text)})
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (t *HTTPTransport) only(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

// decodeText reads {"text": ...}. A missing text field is a bad request;
// an empty string is a valid comment.
func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return "", false
	}
	if req.Text == nil {
		writeError(w, http.StatusBadRequest, `missing "text" field`)
		return "", false
	}
	return *req.Text, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (t *HTTPTransport) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		t.logger.Info(map[string]any{
			"request_id":  id,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"remote":      r.RemoteAddr,
			"duration_ms": time.Since(start).Milliseconds(),
		}, "http_request")
	})
}

var _ ServerTransport = (*HTTPTransport)(nil)
