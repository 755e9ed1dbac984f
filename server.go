package main

// In this file: the hosted HTTP surface carrying both transports.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// httpServer is the hosted deployment shape: a single HTTP listener
// multiplexing the streamable transport, the legacy event-stream transport
// and the health endpoint.
type httpServer struct {
	cfg    *Config
	reg    *Registry
	logger *slog.Logger
	srv    *http.Server
}

// newHTTPServer wires the router. The registry is owned here and passed to
// handlers through the receiver, never referenced as package state.
func newHTTPServer(cfg *Config, reg *Registry, lg *slog.Logger) *httpServer {
	if lg == nil {
		lg = slog.Default()
	}
	if reg == nil {
		reg = NewRegistry(lg)
	}
	s := &httpServer{cfg: cfg, reg: reg, logger: lg}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(corsMiddleware)
	r.Get("/health", s.handleHealth)
	r.Post("/sse", s.requireToken(s.handleStreamPost))
	r.Get("/sse", s.requireToken(s.handleLegacyStream))
	r.Delete("/sse", s.handleStreamDelete)
	r.Post(messageEndpoint, s.handleLegacyMessage)

	s.srv = &http.Server{Addr: cfg.Addr, Handler: r}
	return s
}

// ListenAndServe runs the server until ctx is cancelled, then shuts it down
// gracefully.
func (s *httpServer) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
		close(errCh)
	}()

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		if err := s.srv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// corsMiddleware allows browser clients from any origin and exposes the
// session header so they can keep their session across requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+sessionIDHeader)
		h.Set("Access-Control-Expose-Headers", sessionIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireToken gates an endpoint on the token query parameter. Requests
// with a missing or mis-prefixed token are rejected before any session or
// remote work happens.
func (s *httpServer) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" || !strings.HasPrefix(token, TokenPrefix) {
			writeJSONError(w, http.StatusUnauthorized, "Valid token required as query parameter")
			return
		}
		next(w, r)
	}
}

func (s *httpServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": ServerVersion,
	})
}

// handleStreamPost serves the streamable transport. A request without a
// session identifier establishes a new session; the identifier the
// transport assigns during that first exchange is captured from the
// response header and registered. Requests with a known identifier are
// delegated to that session's engine. An unknown identifier starts a fresh
// session rather than failing.
func (s *httpServer) handleStreamPost(w http.ResponseWriter, r *http.Request) {
	if sid := r.Header.Get(sessionIDHeader); sid != "" {
		if sess := s.reg.Stream(sid); sess != nil {
			s.delegate(w, r, sess.handler)
			return
		}
		r.Header.Del(sessionIDHeader)
	}

	token := r.URL.Query().Get("token")
	sess := newStreamSession(s.cfg.BaseURL, token, s.logger)
	s.delegate(w, r, sess.handler)

	if id := w.Header().Get(sessionIDHeader); id != "" {
		s.reg.PutStream(id, sess)
	}
}

// handleStreamDelete tears a streaming session down.
func (s *httpServer) handleStreamDelete(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get(sessionIDHeader)
	sess := s.reg.Stream(sid)
	if sess == nil {
		writeJSONError(w, http.StatusNotFound, "Unknown session")
		return
	}
	s.delegate(w, r, sess.handler)
	s.reg.RemoveStream(sid)
}

// handleLegacyStream opens a legacy SSE connection: a fresh engine bound
// to the token, registered as the most recent session for side-channel
// routing, fed until the client disconnects.
func (s *httpServer) handleLegacyStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	token := r.URL.Query().Get("token")
	sess := newLegacySession(s.cfg.BaseURL, token, s.logger)
	s.reg.PutLegacy(sess)
	defer s.reg.RemoveLegacy(sess.id)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// The endpoint event tells the client where to POST protocol messages.
	fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", messageEndpoint)
	flusher.Flush()

	for {
		select {
		case msg := <-sess.events:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// handleLegacyMessage accepts a side-channel protocol message. It carries
// no session identifier, so it is routed to the most recently opened
// legacy session; the engine's response travels back over that session's
// event stream and the POST itself just acknowledges receipt.
func (s *httpServer) handleLegacyMessage(w http.ResponseWriter, r *http.Request) {
	sess := s.reg.LatestLegacy()
	if sess == nil {
		writeJSONError(w, http.StatusBadRequest, "No active SSE session")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Unreadable request body")
		return
	}

	if resp := sess.engine.HandleMessage(r.Context(), body); resp != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("legacy response marshal failed", "session_id", sess.id, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !sess.deliver(data) {
			s.logger.Warn("legacy stream not keeping up, response dropped", "session_id", sess.id)
		}
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}

// delegate forwards a request to a transport handler, containing any
// failure. Once response headers have gone out an error can no longer be
// reported to the client, so it is only logged; before that, the client
// gets a generic 500.
func (s *httpServer) delegate(w http.ResponseWriter, r *http.Request, h http.Handler) {
	tw := &trackingWriter{ResponseWriter: w}
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("transport failure", "path", r.URL.Path, "panic", rec)
			if !tw.wrote {
				writeJSONError(tw, http.StatusInternalServerError, "Internal server error")
			}
		}
	}()
	h.ServeHTTP(tw, r)
}

// trackingWriter records whether the response has been started, and keeps
// the Flusher contract intact for handlers that stream.
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) WriteHeader(code int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(b)
}

func (t *trackingWriter) Flush() {
	if f, ok := t.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
