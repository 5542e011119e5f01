// Package kv implements a small key-value HTTP service and its client.
//
// Clients call /register to obtain an API token, then store values with
// POST /save/{key} and read them back with GET /load/{key}, passing the
// token in the API_TOKEN query parameter.
package kv

import (
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/mtlprog/kanban/internal/middleware"
)

// maxValueSize caps the accepted request body.
const maxValueSize = 32 << 20

// Server is an in-memory key-value store served over HTTP.
type Server struct {
	mu    sync.RWMutex
	data  map[string][]byte
	token string
	auth  *middleware.TokenAuth
}

// NewServer creates a new Server with a freshly issued API token.
func NewServer() *Server {
	token := uuid.NewString()
	return &Server{
		data:  make(map[string][]byte),
		token: token,
		auth:  middleware.NewTokenAuth(token),
	}
}

// Token returns the API token issued by /register.
func (s *Server) Token() string {
	return s.token
}

// RegisterRoutes registers the key-value routes.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /register", s.handleRegister)
	mux.Handle("POST /save/{key...}", s.auth.Authenticate(http.HandlerFunc(s.handleSave)))
	mux.Handle("GET /load/{key...}", s.auth.Authenticate(http.HandlerFunc(s.handleLoad)))
}

// Handler returns an http.Handler serving the key-value routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return middleware.Recover(middleware.Logging(mux))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	slog.Info("kv client registered", "remote_addr", r.RemoteAddr)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.token))
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.Error(w, "key is required: /save/{key}", http.StatusBadRequest)
		return
	}

	value, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxValueSize))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(value) == 0 {
		http.Error(w, "value is required in request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()

	slog.Debug("kv value saved", "key", key, "bytes", len(value))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.Error(w, "key is required: /load/{key}", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "key not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(value)
}
