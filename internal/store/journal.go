package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcomes recorded for a journal entry. "ok" covers successes including
// logical end-of-data reads; the rest mirror the boundary error taxonomy.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeInputFault      = "input_fault"
	OutcomeOutputFault     = "output_fault"
	OutcomeInterrupted     = "interrupted"
)

// JournalEntry is one boundary operation against the record.
type JournalEntry struct {
	ID        string
	Op        string // put, get, clear
	Outcome   string
	Bytes     int // bytes accepted (put) or delivered (get)
	Decayed   int // record's decayed count after the operation
	CreatedAt int64
}

// AppendOp journals a boundary operation. The row id is generated here.
func (db *DB) AppendOp(op, outcome string, bytes, decayed int) error {
	_, err := db.Exec(`
		INSERT INTO ops_journal (id, op, outcome, bytes, decayed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), op, outcome, bytes, decayed, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("append op: %w", err)
	}
	return nil
}

// OpStats aggregates the journal for one operation kind.
type OpStats struct {
	Op         string `json:"op"`
	Count      int    `json:"count"`
	Faults     int    `json:"faults"`
	TotalBytes int64  `json:"total_bytes"`
}

// Stats returns per-op aggregates plus the timestamp of the newest entry
// (0 when the journal is empty).
func (db *DB) Stats() ([]OpStats, int64, error) {
	rows, err := db.Query(`
		SELECT op,
		       COUNT(*),
		       SUM(CASE WHEN outcome != 'ok' THEN 1 ELSE 0 END),
		       SUM(bytes)
		FROM ops_journal
		GROUP BY op
		ORDER BY op
	`)
	if err != nil {
		return nil, 0, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []OpStats
	for rows.Next() {
		var s OpStats
		if err := rows.Scan(&s.Op, &s.Count, &s.Faults, &s.TotalBytes); err != nil {
			return nil, 0, fmt.Errorf("scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate stats: %w", err)
	}

	var last int64
	if err := db.QueryRow("SELECT COALESCE(MAX(created_at), 0) FROM ops_journal").Scan(&last); err != nil {
		return nil, 0, fmt.Errorf("last op time: %w", err)
	}
	return stats, last, nil
}

// RecentOps returns the newest limit journal entries, newest first.
func (db *DB) RecentOps(limit int) ([]JournalEntry, error) {
	rows, err := db.Query(`
		SELECT id, op, outcome, bytes, decayed, created_at
		FROM ops_journal
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent ops: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Op, &e.Outcome, &e.Bytes, &e.Decayed, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
