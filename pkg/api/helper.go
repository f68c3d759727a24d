package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openagora/agora/pkg/logging"
	"github.com/openagora/agora/pkg/store"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}

// respondStoreError maps store errors onto HTTP statuses without
// leaking internals.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("%s: not found", operation))
	case errors.Is(err, store.ErrConflict):
		s.respondError(w, http.StatusConflict, fmt.Sprintf("%s: already exists", operation))
	default:
		s.logger.Error("store operation failed",
			logging.Operation(operation),
			logging.Error(err),
		)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", operation))
	}
}

// decodeJSON decodes a request body, answering 400 on malformed input.
// Returns false if the response has already been written.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// methodRouter dispatches a request by HTTP method, answering 405 for
// anything unhandled.
type methodRouter struct {
	w       http.ResponseWriter
	r       *http.Request
	handled bool
}

func (s *Server) newMethodRouter(w http.ResponseWriter, r *http.Request) *methodRouter {
	return &methodRouter{w: w, r: r}
}

func (m *methodRouter) Get(fn func()) *methodRouter    { return m.on(http.MethodGet, fn) }
func (m *methodRouter) Post(fn func()) *methodRouter   { return m.on(http.MethodPost, fn) }
func (m *methodRouter) Delete(fn func()) *methodRouter { return m.on(http.MethodDelete, fn) }

func (m *methodRouter) on(method string, fn func()) *methodRouter {
	if !m.handled && m.r.Method == method {
		m.handled = true
		fn()
	}
	return m
}

func (m *methodRouter) NotAllowed() {
	if !m.handled {
		http.Error(m.w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// splitSubtree splits the path remainder after a prefix into its
// segments, e.g. "/deliberations/abc/nodes" -> ["abc", "nodes"].
func splitSubtree(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
