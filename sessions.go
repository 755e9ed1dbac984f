package main

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// streamSession is one streamable-HTTP client: a protocol engine bound to
// the token presented when the session was established, plus the transport
// handler that multiplexes HTTP requests onto it. The token is fixed for
// the session's lifetime.
type streamSession struct {
	token   string
	engine  *mcpsrv.MCPServer
	handler *mcpsrv.StreamableHTTPServer
}

// newStreamSession builds an engine for the given token and wraps it in a
// streamable-HTTP handler. The session identifier is not known yet; the
// transport assigns one during the first handshake exchange.
func newStreamSession(baseURL, token string, lg *slog.Logger) *streamSession {
	engine := newEngine(NewClient(baseURL, token, lg), lg)
	return &streamSession{
		token:   token,
		engine:  engine,
		handler: mcpsrv.NewStreamableHTTPServer(engine),
	}
}

// legacySession is one legacy event-stream client: an engine plus the
// channel feeding its open SSE stream. Protocol responses produced by
// side-channel POSTs are delivered through events.
type legacySession struct {
	id     string
	token  string
	engine *mcpsrv.MCPServer
	events chan []byte
}

func newLegacySession(baseURL, token string, lg *slog.Logger) *legacySession {
	return &legacySession{
		id:     legacySessionID(),
		token:  token,
		engine: newEngine(NewClient(baseURL, token, lg), lg),
		events: make(chan []byte, 16),
	}
}

// deliver queues a message for the session's stream. Returns false when the
// stream is not keeping up and the message was dropped.
func (s *legacySession) deliver(msg []byte) bool {
	select {
	case s.events <- msg:
		return true
	default:
		return false
	}
}

// legacySessionID generates a session identifier from a timestamp and a
// random suffix. Not collision-proof; it only has to be unique within this
// process's table, which holds a single active client in practice.
func legacySessionID() string {
	return fmt.Sprintf("sse-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Registry owns the session tables for both hosted transports. The two
// tables are independent keyspaces; an identifier in one never resolves in
// the other. It is the only shared mutable state of the hosted server and
// is mutated exclusively on connect, disconnect and teardown.
type Registry struct {
	mu      sync.RWMutex
	streams map[string]*streamSession
	legacy  map[string]*legacySession
	order   []string // legacy session ids, most recently opened last
	logger  *slog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(lg *slog.Logger) *Registry {
	if lg == nil {
		lg = slog.Default()
	}
	return &Registry{
		streams: make(map[string]*streamSession),
		legacy:  make(map[string]*legacySession),
		logger:  lg,
	}
}

// PutStream registers an established streaming session under the
// identifier the transport assigned to it.
func (r *Registry) PutStream(id string, s *streamSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams[id] = s
	r.logger.Info("streaming session established", "session_id", id, "sessions", len(r.streams))
}

// Stream resolves a streaming session identifier. Returns nil when the
// identifier is unknown or the session has been closed.
func (r *Registry) Stream(id string) *streamSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.streams[id]
}

// RemoveStream drops a streaming session. Its identifier may not be reused.
func (r *Registry) RemoveStream(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[id]; !ok {
		return
	}
	delete(r.streams, id)
	r.logger.Info("streaming session closed", "session_id", id, "sessions", len(r.streams))
}

// PutLegacy registers an open legacy stream session and marks it as the
// most recent one.
func (r *Registry) PutLegacy(s *legacySession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.legacy[s.id] = s
	r.order = append(r.order, s.id)
	r.logger.Info("legacy session opened", "session_id", s.id, "sessions", len(r.legacy))
}

// LatestLegacy returns the most recently opened legacy session that is
// still open, or nil when none is. Side-channel messages carry no session
// identifier, so this is the routing rule for all of them. A deliberate
// single-active-client compromise.
func (r *Registry) LatestLegacy() *legacySession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		if s, ok := r.legacy[r.order[i]]; ok {
			return s
		}
	}
	return nil
}

// RemoveLegacy deregisters a legacy session after its stream closed.
func (r *Registry) RemoveLegacy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.legacy[id]; !ok {
		return
	}
	delete(r.legacy, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Info("legacy session closed", "session_id", id, "sessions", len(r.legacy))
}

// StreamCount reports the number of live streaming sessions.
func (r *Registry) StreamCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams)
}

// LegacyCount reports the number of open legacy sessions.
func (r *Registry) LegacyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.legacy)
}
