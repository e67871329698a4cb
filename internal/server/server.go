package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/entropyworks/entropymem/internal/decay"
	"github.com/entropyworks/entropymem/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the entropymem HTTP access boundary. It translates HTTP
// requests into operations on the single decaying record and journals
// every operation.
type Server struct {
	record  *decay.Record
	db      *store.DB
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server around the given record and journal database.
func New(record *decay.Record, db *store.DB, version string) *Server {
	s := &Server{
		record:  record,
		db:      db,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Put("/record", s.handlePutRecord)
		r.Get("/record", s.handleGetRecord)
		r.Delete("/record", s.handleClearRecord)
		r.Get("/record/state", s.handleRecordState)

		r.Get("/stats", s.handleStats)
		r.Get("/journal", s.handleJournal)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"capacity": s.record.Capacity(),
		"journal":  dbOK,
	})
}

// journal appends a row for a boundary operation. Journal failures never
// fail the operation itself; they are logged.
func (s *Server) journal(op, outcome string, bytes int) {
	decayed := 0
	if snap, err := s.record.Snapshot(context.Background()); err == nil {
		decayed = snap.Decayed
	}
	if err := s.db.AppendOp(op, outcome, bytes, decayed); err != nil {
		log.Printf("journal %s: %v", op, err)
	}
}
