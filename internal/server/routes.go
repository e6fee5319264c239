package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/romdo/go-ratefn/internal/api"
)

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Post("/search", s.handleSearch)
	s.router.Post("/move", s.handleMove)
}

type searchResponse struct {
	Query     string `json:"query"`
	Scheduled bool   `json:"scheduled"`
}

type moveResponse struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Fired bool `json:"fired"`
}

type statsResponse struct {
	Searches int       `json:"searches"`
	Tracks   int       `json:"tracks"`
	Syncs    int       `json:"syncs"`
	Last     *api.Call `json:"last,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.client.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		Searches: stats.Searches,
		Tracks:   stats.Tracks,
		Syncs:    stats.Syncs,
		Last:     stats.Last,
	})
}

// handleSearch feeds the query into the debounced search. The search runs
// once no further query has arrived for the debounce delay.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := api.Query{Text: r.URL.Query().Get("q")}

	err := s.run(r.Context(), func() {
		s.bind.Search.Call(q)
	})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, searchResponse{Query: q.Text, Scheduled: true})
}

// handleMove feeds the position into the throttled tracker. It responds with
// 429 when the position was dropped.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "x and y must be integers"})
		return
	}
	p := api.Point{X: x, Y: y}

	var fired bool
	err := s.run(r.Context(), func() {
		fired = s.bind.Track.Call(p)
	})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	status := http.StatusOK
	if !fired {
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, moveResponse{X: x, Y: y, Fired: fired})
}

const (
	taskQueued int32 = iota
	taskStarted
	taskAbandoned
)

// run executes f through the runner. When the runner gives up waiting, f is
// either skipped for good or has already started, in which case run waits
// for it and reports success. A 503 therefore means f never ran.
func (s *Server) run(ctx context.Context, f func()) error {
	var state atomic.Int32
	done := make(chan struct{})

	err := s.runner.Do(ctx, func() {
		if !state.CompareAndSwap(taskQueued, taskStarted) {
			return
		}
		defer close(done)
		f()
	})
	if err == nil {
		return nil
	}
	if state.CompareAndSwap(taskQueued, taskAbandoned) {
		return err
	}
	<-done

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
