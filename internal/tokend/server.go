// Package tokend is the local token-creation service: a loopback REST API
// backed by a SQLite store. The game client never talks to it; the token
// form does.
package tokend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Server runs the token-creation HTTP API.
type Server struct {
	store      *Store
	log        *logrus.Logger
	addr       string
	httpServer *http.Server
}

// NewServer creates a server bound to loopback at the given port.
func NewServer(store *Store, port int, log *logrus.Logger) *Server {
	if port <= 0 {
		port = 8080
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		store: store,
		log:   log,
		addr:  fmt.Sprintf("127.0.0.1:%d", port),
	}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Post("/create_token", s.handleCreateToken)
	r.Get("/tokens", s.handleListTokens)
	r.Get("/tokens/{name}", s.handleGetToken)

	return r
}

// Start begins listening in a goroutine. It returns once the socket is bound.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.log.WithField("addr", s.addr).Info("token service listening")
	go func() {
		_ = s.httpServer.Serve(ln)
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ========== Handlers ==========

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createTokenRequest matches the form's POST body.
type createTokenRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply int64  `json:"total_supply"`
}

// POST /create_token
//
// Answers with a bare JSON string either way:
// 200 "Token created successfully" or 400 "Error: ...".
func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "Error: invalid JSON")
		return
	}
	if req.Name == "" || req.Symbol == "" {
		writeJSON(w, http.StatusBadRequest, "Error: name and symbol are required")
		return
	}
	if req.TotalSupply < 1 {
		writeJSON(w, http.StatusBadRequest, "Error: total supply must be positive")
		return
	}

	token, err := s.store.CreateToken(r.Context(), req.Name, req.Symbol, req.TotalSupply)
	switch {
	case errors.Is(err, ErrTokenExists):
		writeJSON(w, http.StatusBadRequest, fmt.Sprintf("Error: token %q already exists", req.Name))
		return
	case err != nil:
		s.log.WithError(err).Error("create token")
		writeJSON(w, http.StatusBadRequest, "Error: saving token failed")
		return
	}

	s.log.WithFields(logrus.Fields{
		"name":         token.Name,
		"symbol":       token.Symbol,
		"total_supply": token.TotalSupply,
	}).Info("token created")
	writeJSON(w, http.StatusOK, "Token created successfully")
}

// GET /tokens?limit=&offset=
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	limit := qInt(r, "limit", 100)
	offset := qInt(r, "offset", 0)

	items, err := s.store.ListTokens(r.Context(), limit, offset)
	if err != nil {
		s.log.WithError(err).Error("list tokens")
		writeJSON(w, http.StatusInternalServerError, "Error: listing tokens failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens": items,
		"count":  len(items),
	})
}

// GET /tokens/{name}
func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	token, found, err := s.store.GetToken(r.Context(), name)
	if err != nil {
		s.log.WithError(err).Error("get token")
		writeJSON(w, http.StatusInternalServerError, "Error: loading token failed")
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, fmt.Sprintf("Error: token %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// ========== Helpers ==========

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"ms":     time.Since(start).Milliseconds(),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func qInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
