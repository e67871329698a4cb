package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/entropyworks/entropymem/internal/decay"
	"github.com/entropyworks/entropymem/internal/store"
)

// outcomeFor translates a record error into a journal outcome string.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return store.OutcomeOK
	case errors.Is(err, decay.ErrInvalidArgument):
		return store.OutcomeInvalidArgument
	case errors.Is(err, decay.ErrInputFault):
		return store.OutcomeInputFault
	case errors.Is(err, decay.ErrOutputFault):
		return store.OutcomeOutputFault
	case errors.Is(err, decay.ErrInterrupted):
		return store.OutcomeInterrupted
	default:
		return store.OutcomeOutputFault
	}
}

// writeRecordError maps record errors onto HTTP statuses. Interrupted is
// retryable and says so.
func writeRecordError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, decay.ErrInvalidArgument), errors.Is(err, decay.ErrInputFault):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, decay.ErrInterrupted):
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	var (
		n   int
		err error
	)
	if r.ContentLength >= 0 {
		// Stream the body straight into the record: the copy-in happens
		// under the record lock, so a mid-transfer fault hits the
		// documented clear-then-fail path.
		n, err = s.record.Put(r.Context(), r.Body, int(r.ContentLength))
	} else {
		// Chunked request with no declared length: buffer to learn the count.
		var body []byte
		body, err = io.ReadAll(io.LimitReader(r.Body, int64(s.record.Capacity())))
		if err == nil {
			n, err = s.record.PutBytes(r.Context(), body)
		} else {
			err = decay.ErrInputFault
		}
	}

	s.journal("put", outcomeFor(err), n)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"accepted": n})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeRecordError(w, err)
		s.journal("get", store.OutcomeInvalidArgument, 0)
		return
	}
	max, err := queryInt(r, "max", s.record.Capacity())
	if err != nil {
		writeRecordError(w, err)
		s.journal("get", store.OutcomeInvalidArgument, 0)
		return
	}

	data, err := s.record.GetBytes(r.Context(), offset, max)
	s.journal("get", outcomeFor(err), len(data))
	if err != nil {
		writeRecordError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Entropymem-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		// Headers are gone; nothing to report to the caller but the fault.
		log.Printf("deliver record: %v", err)
	}
}

func (s *Server) handleClearRecord(w http.ResponseWriter, r *http.Request) {
	err := s.record.Clear(r.Context())
	s.journal("clear", outcomeFor(err), 0)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
}

func (s *Server) handleRecordState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.record.Snapshot(r.Context())
	if err != nil {
		writeRecordError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"state":       snap.State,
		"length":      snap.Length,
		"decayed":     snap.Decayed,
		"written_at":  snap.WrittenAt.UTC().Format(time.RFC3339),
		"age_seconds": int64(time.Since(snap.WrittenAt).Seconds()),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, last, err := s.db.Stats()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	if stats == nil {
		stats = []store.OpStats{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"ops":        stats,
		"last_op_ms": last,
	})
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil || limit < 1 {
		writeRecordError(w, decay.ErrInvalidArgument)
		return
	}

	entries, err := s.db.RecentOps(limit)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	type entry struct {
		ID        string `json:"id"`
		Op        string `json:"op"`
		Outcome   string `json:"outcome"`
		Bytes     int    `json:"bytes"`
		Decayed   int    `json:"decayed"`
		CreatedAt int64  `json:"created_at_ms"`
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry{e.ID, e.Op, e.Outcome, e.Bytes, e.Decayed, e.CreatedAt})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"entries": out})
}

// queryInt parses an optional integer query parameter. A malformed value
// is an invalid argument; range checks belong to the record.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, decay.ErrInvalidArgument
	}
	return v, nil
}
