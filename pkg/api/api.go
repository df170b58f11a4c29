// Package api exposes a small JSON-over-HTTP surface for the gamemoded
// daemon. It listens on a Unix domain socket and delegates everything to
// internal/engine; no third-party HTTP framework is needed for six routes.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gamemode/gamemoded/internal/buildinfo"
	"github.com/gamemode/gamemoded/internal/engine"
	"github.com/gamemode/gamemoded/internal/socket"
)

// RegisterRequest asks the daemon to admit a game client.
type RegisterRequest struct {
	PID  int    `json:"pid"`
	Path string `json:"path"`
}

// RegisterResponse carries the created session.
type RegisterResponse struct {
	ID string `json:"id"`
}

// UnregisterRequest asks the daemon to drop a game client.
type UnregisterRequest struct {
	PID int `json:"pid"`
}

// ClientInfo is one registered client as reported over the API.
type ClientInfo struct {
	ID           string    `json:"id"`
	PID          int       `json:"pid"`
	Path         string    `json:"path"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CheckResponse reports how the filter lists treat a client path.
type CheckResponse struct {
	Client      string `json:"client"`
	Whitelisted bool   `json:"whitelisted"`
	Blacklisted bool   `json:"blacklisted"`
}

// ReloadResponse reports the config generation after a reload.
type ReloadResponse struct {
	Generation int64 `json:"generation"`
}

// StatusResponse summarizes the daemon state.
type StatusResponse struct {
	Clients         int           `json:"clients"`
	ConfigGen       int64         `json:"config_generation"`
	ReaperFrequency int64         `json:"reaper_frequency"`
	WhitelistSize   int           `json:"whitelist_size"`
	BlacklistSize   int           `json:"blacklist_size"`
	Uptime          time.Duration `json:"uptime"`
	Version         string        `json:"version"`
	Commit          string        `json:"commit"`
}

// Server handles API requests over a Unix domain socket.
type Server struct {
	eng   *engine.Engine
	start time.Time
	mux   *http.ServeMux
	srv   *http.Server
}

// New creates an API server around eng with all routes installed.
func New(eng *engine.Engine) *Server {
	s := &Server{
		eng:   eng,
		start: time.Now(),
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("/v1/register", s.handleRegister)
	s.mux.HandleFunc("/v1/unregister", s.handleUnregister)
	s.mux.HandleFunc("/v1/clients", s.handleClients)
	s.mux.HandleFunc("/v1/check", s.handleCheck)
	s.mux.HandleFunc("/v1/reload", s.handleReload)
	s.mux.HandleFunc("/v1/status", s.handleStatus)

	s.srv = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the route table, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts serving on a Unix socket at path.
func (s *Server) ListenAndServe(path string) error {
	ln, err := socket.Listen(path)
	if err != nil {
		return err
	}
	return s.srv.Serve(ln)
}

// Shutdown gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PID <= 0 || req.Path == "" {
		http.Error(w, "pid and path required", http.StatusBadRequest)
		return
	}

	client, err := s.eng.RegisterGame(r.Context(), req.PID, req.Path)
	switch {
	case errors.Is(err, engine.ErrNotWhitelisted), errors.Is(err, engine.ErrBlacklisted):
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	case errors.Is(err, engine.ErrAlreadyRegistered):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, RegisterResponse{ID: client.ID})
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req UnregisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PID <= 0 {
		http.Error(w, "pid required", http.StatusBadRequest)
		return
	}
	if _, ok := s.eng.UnregisterGame(r.Context(), req.PID); !ok {
		http.Error(w, "not registered", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	clients := s.eng.Clients()
	out := make([]ClientInfo, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientInfo{
			ID:           c.ID,
			PID:          c.PID,
			Path:         c.Path,
			RegisteredAt: c.RegisteredAt,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	client := r.URL.Query().Get("client")
	if client == "" {
		http.Error(w, "client query parameter required", http.StatusBadRequest)
		return
	}
	cfg := s.eng.Config()
	writeJSON(w, CheckResponse{
		Client:      client,
		Whitelisted: cfg.IsWhitelisted(client),
		Blacklisted: cfg.IsBlacklisted(client),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg := s.eng.Config()
	cfg.Reload()
	writeJSON(w, ReloadResponse{Generation: cfg.Generation()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg := s.eng.Config()
	writeJSON(w, StatusResponse{
		Clients:         int(s.eng.ActiveCount()),
		ConfigGen:       cfg.Generation(),
		ReaperFrequency: cfg.ReaperFrequency(),
		WhitelistSize:   len(cfg.WhitelistEntries()),
		BlacklistSize:   len(cfg.BlacklistEntries()),
		Uptime:          time.Since(s.start),
		Version:         buildinfo.Version,
		Commit:          buildinfo.Commit,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encoding response: %v", err), http.StatusInternalServerError)
	}
}
