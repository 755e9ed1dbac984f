package main

// In this file: an in-memory fake of the Fastidious API used by the tool
// and transport tests.

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeFastidious is an in-memory stand-in for the remote notes service. It
// records enough about incoming requests to let tests assert on request
// shaping (auth header, content type, bodies) and call counts.
type fakeFastidious struct {
	t *testing.T

	mu    sync.Mutex
	items map[string]*Note
	seq   int

	calls           int
	lastAuth        string
	lastContentType string
	lastMoveBody    []byte
	lastUpdateBody  []byte

	failWith int // when non-zero every request answers this status
}

func newFakeFastidious(t *testing.T) *fakeFastidious {
	return &fakeFastidious{t: t, items: make(map[string]*Note)}
}

// server starts an httptest server for the fake; it is shut down with the
// test.
func (f *fakeFastidious) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/items", f.createItem)
	mux.HandleFunc("GET /api/items", f.listItems)
	mux.HandleFunc("GET /api/items/{id}", f.getItem)
	mux.HandleFunc("PUT /api/items/{id}", f.updateItem)
	mux.HandleFunc("DELETE /api/items/{id}", f.deleteItem)
	mux.HandleFunc("POST /api/items/{id}/move", f.moveItem)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls++
		f.lastAuth = r.Header.Get("Authorization")
		f.lastContentType = r.Header.Get("Content-Type")
		fail := f.failWith
		f.mu.Unlock()
		if fail != 0 {
			http.Error(w, http.StatusText(fail), fail)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	f.t.Cleanup(srv.Close)
	return srv
}

func (f *fakeFastidious) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFastidious) authHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

func (f *fakeFastidious) contentTypeHeader() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastContentType
}

func (f *fakeFastidious) moveBody() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMoveBody
}

func (f *fakeFastidious) updateBody() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpdateBody
}

func (f *fakeFastidious) setFailWith(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = code
}

// seed inserts an item directly into the store, bypassing HTTP.
func (f *fakeFastidious) seed(n Note) *Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	if n.ID == "" {
		n.ID = fmt.Sprintf("item-%d", f.seq)
	}
	f.items[n.ID] = &n
	return &n
}

func (f *fakeFastidious) createItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.seq++
	now := time.Now().UTC()
	n := &Note{
		ID:               fmt.Sprintf("item-%d", f.seq),
		Type:             req.Type,
		Title:            req.Title,
		Content:          req.Content,
		CustomFields:     req.CustomFields,
		FieldDefinitions: req.FieldDefinitions,
		DisplayFields:    req.DisplayFields,
		ViewMode:         req.ViewMode,
		SortField:        req.SortField,
		SortDirection:    req.SortDirection,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.ParentID != "" {
		pid := req.ParentID
		n.ParentID = &pid
	}
	f.items[n.ID] = n
	f.mu.Unlock()

	writeJSON(w, n)
}

func (f *fakeFastidious) listItems(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parentId")
	q := strings.ToLower(r.URL.Query().Get("q"))

	f.mu.Lock()
	var out []Note
	for _, n := range f.items {
		if parentID != "" && (n.ParentID == nil || *n.ParentID != parentID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) {
			continue
		}
		out = append(out, *n)
	}
	f.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if out == nil {
		out = []Note{}
	}
	writeJSON(w, out)
}

func (f *fakeFastidious) getItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	n, ok := f.items[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, n)
}

func (f *fakeFastidious) updateItem(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var req UpdateItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.lastUpdateBody = body
	n, ok := f.items[r.PathValue("id")]
	if ok {
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		if req.CustomFields != nil {
			n.CustomFields = *req.CustomFields
		}
		if req.FieldDefinitions != nil {
			n.FieldDefinitions = *req.FieldDefinitions
		}
		if req.DisplayFields != nil {
			n.DisplayFields = *req.DisplayFields
		}
		if req.ViewMode != nil {
			n.ViewMode = *req.ViewMode
		}
		if req.SortField != nil {
			n.SortField = *req.SortField
		}
		if req.SortDirection != nil {
			n.SortDirection = *req.SortDirection
		}
		n.UpdatedAt = time.Now().UTC()
	}
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, n)
}

func (f *fakeFastidious) deleteItem(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	_, ok := f.items[r.PathValue("id")]
	delete(f.items, r.PathValue("id"))
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (f *fakeFastidious) moveItem(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var req MoveItemRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.lastMoveBody = body
	n, ok := f.items[r.PathValue("id")]
	if ok {
		n.ParentID = req.TargetParentID
		n.UpdatedAt = time.Now().UTC()
	}
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, n)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
