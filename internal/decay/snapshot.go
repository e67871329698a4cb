package decay

import (
	"context"
	"time"
)

// Snapshot is a point-in-time view of a record's decay state.
//
// Snapshots are passive: taking one does not apply pending decay (decay is
// read-triggered), so Decayed reflects the corruption applied as of the
// most recent data read.
type Snapshot struct {
	Length    int       `json:"length"`
	Decayed   int       `json:"decayed"`
	WrittenAt time.Time `json:"written_at"`
	State     State     `json:"state"`
}

// Snapshot reports the record's current length, applied decay, and
// lifecycle state.
func (r *Record) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := r.acquire(ctx); err != nil {
		return Snapshot{}, err
	}
	defer r.release()

	return Snapshot{
		Length:    r.length,
		Decayed:   r.decayed,
		WrittenAt: r.written,
		State:     r.stateLocked(),
	}, nil
}

func (r *Record) stateLocked() State {
	switch {
	case r.length == 0:
		return StateEmpty
	case r.decayed == 0:
		return StateFresh
	case r.decayed < r.length:
		return StatePartiallyDecayed
	default:
		return StateFullyDecayed
	}
}
