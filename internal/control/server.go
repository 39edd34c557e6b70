// Package control is the local HTTP surface for watching and steering
// a running bot: live state for the viewer, pause/resume, tick period,
// and strategy assignments.
package control

import (
	"embed"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bomberbot/internal/assign"
	"bomberbot/internal/runner"
	"bomberbot/internal/state"
	"bomberbot/pkg/strategy"
)

//go:embed index.html
var indexFS embed.FS

// Server wires the cache, the loop control and the assignment store
// into an HTTP handler.
type Server struct {
	cache    *state.Cache
	control  *runner.Control
	store    *assign.Store
	registry *strategy.Registry
	secret   string
}

func NewServer(cache *state.Cache, control *runner.Control, store *assign.Store, registry *strategy.Registry, secret string) *Server {
	return &Server{
		cache:    cache,
		control:  control,
		store:    store,
		registry: registry,
		secret:   secret,
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/control", s.handleGetControl)
		r.Post("/control", s.requireOperator(s.handleSetControl))
		r.Get("/control/strategies", s.handleStrategies)
		r.Get("/control/assignments", s.handleGetAssignments)
		r.Post("/control/assignments", s.requireOperator(s.handleSetAssignment))
		r.Post("/control/default", s.requireOperator(s.handleSetDefault))
	})
	return r
}

// ListenAndServe blocks serving the control surface on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[control] listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := indexFS.ReadFile("index.html")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "index unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Get()
	ageMS := int64(-1)
	if !snap.FetchedAt.IsZero() {
		ageMS = time.Since(snap.FetchedAt).Milliseconds()
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"state":        snap.State,
		"age_ms":       ageMS,
		"commands":     snap.Commands,
		"notes":        snap.Notes,
		"danger_cells": snap.DangerCells,
		"move_resp":    snap.MoveResp,
		"last_error":   snap.LastErr,
		"decide_ms":    snap.TickMS,
	})
}

func (s *Server) handleGetControl(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"paused":   s.control.Paused(),
		"tick_sec": s.control.TickSec(),
		"default":  s.store.Default(),
	})
}

func (s *Server) handleSetControl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paused  *bool    `json:"paused"`
		TickSec *float64 `json:"tick_sec"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Paused != nil {
		s.control.SetPaused(*req.Paused)
		log.Printf("[control] paused=%v", *req.Paused)
	}
	if req.TickSec != nil {
		s.control.SetTickSec(*req.TickSec)
		log.Printf("[control] tick_sec=%.2f", s.control.TickSec())
	}
	s.handleGetControl(w, r)
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"strategies": s.registry.IDs()})
}

func (s *Server) handleGetAssignments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"default":     s.store.Default(),
		"assignments": s.store.Dump(),
	})
}

func (s *Server) handleSetAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit     string `json:"unit"`
		Strategy string `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Unit == "" {
		respondError(w, http.StatusBadRequest, "expected {unit, strategy}")
		return
	}
	if req.Strategy != "" && !s.registry.Has(req.Strategy) {
		respondError(w, http.StatusBadRequest, "unknown strategy "+req.Strategy)
		return
	}
	if err := s.store.SetFor(req.Unit, req.Strategy); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("[control] unit %s -> %q", req.Unit, req.Strategy)
	s.handleGetAssignments(w, r)
}

func (s *Server) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategy string `json:"strategy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Strategy == "" {
		respondError(w, http.StatusBadRequest, "expected {strategy}")
		return
	}
	if !s.registry.Has(req.Strategy) {
		respondError(w, http.StatusBadRequest, "unknown strategy "+req.Strategy)
		return
	}
	if err := s.store.SetDefault(req.Strategy); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("[control] default -> %s", req.Strategy)
	s.handleGetAssignments(w, r)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[control] encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
