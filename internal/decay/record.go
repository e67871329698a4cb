// Package decay implements a single-slot byte store whose contents rot
// as wall-clock time passes. One byte position is corrupted per elapsed
// second, lazily, when a read asks for the data. Corruption replaces the
// byte at a random position with a random printable ASCII character; once
// every owed position has been corrupted the record freezes in its final
// scrambled form until the next write.
package decay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"
)

// DefaultCapacity is the buffer size ceiling when none is configured.
const DefaultCapacity = 1024

// Printable ASCII range used for corrupted bytes: '!' (33) .. '~' (126).
const (
	alphabetLow  = 33
	alphabetSize = 94
)

var (
	// ErrInvalidArgument reports a negative offset or count.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInputFault reports a failure reading content from the caller.
	ErrInputFault = errors.New("input fault")
	// ErrOutputFault reports a failure delivering content to the caller.
	ErrOutputFault = errors.New("output fault")
	// ErrInterrupted reports a lock wait cancelled by the caller's
	// context. The operation did not run; callers may retry.
	ErrInterrupted = errors.New("interrupted")
)

// State describes where a record sits in its decay lifecycle.
type State string

const (
	StateEmpty            State = "empty"
	StateFresh            State = "fresh"
	StatePartiallyDecayed State = "partially-decayed"
	StateFullyDecayed     State = "fully-decayed"
)

// Record is a single decaying storage slot.
//
// All operations take the same exclusive lock: Get mutates the buffer
// (it applies pending decay in place), so there is no reader/writer
// distinction. Lock waits honor context cancellation and surface
// ErrInterrupted without leaving the lock held.
type Record struct {
	sem chan struct{} // 1-buffered; held entry means locked

	buf     []byte // len(buf) == capacity; one byte reserved past length
	length  int    // meaningful bytes, 0 <= length <= capacity-1
	written time.Time
	decayed int // corruption steps applied since written; <= length

	timeNow    func() time.Time
	randUint32 func() uint32
}

// Option configures a Record at construction.
type Option func(*Record)

// WithCapacity sets the buffer size ceiling. Values below 2 are ignored
// (the capacity must hold at least one content byte plus the reserved
// terminator position).
func WithCapacity(n int) Option {
	return func(r *Record) {
		if n >= 2 {
			r.buf = make([]byte, n)
		}
	}
}

// WithTimeNow injects the clock used to measure elapsed decay time.
// Tests inject a controllable clock instead of sleeping.
func WithTimeNow(fn func() time.Time) Option {
	return func(r *Record) { r.timeNow = fn }
}

// WithRand injects the random source used to pick corruption positions
// and replacement bytes.
func WithRand(fn func() uint32) Option {
	return func(r *Record) { r.randUint32 = fn }
}

// NewRecord creates an empty record.
func NewRecord(opts ...Option) *Record {
	r := &Record{
		sem:        make(chan struct{}, 1),
		buf:        make([]byte, DefaultCapacity),
		timeNow:    time.Now,
		randUint32: rand.Uint32,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.written = r.timeNow()
	return r
}

// Capacity returns the configured buffer size ceiling.
func (r *Record) Capacity() int { return len(r.buf) }

func (r *Record) acquire(ctx context.Context) error {
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("lock wait: %w", ErrInterrupted)
	}
}

func (r *Record) release() { <-r.sem }

// Put replaces the record's content with up to count bytes read from src,
// truncated to capacity-1, and resets the decay timeline. It returns the
// number of bytes accepted. A count of zero is an explicit clear, not an
// error.
//
// The buffer is zeroed before the transfer so no residue of a previous,
// longer record survives a shorter overwrite. A consequence, kept
// deliberately: if reading src fails mid-transfer the prior content is
// already gone — the record is left empty and ErrInputFault is returned.
func (r *Record) Put(ctx context.Context, src io.Reader, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("count %d: %w", count, ErrInvalidArgument)
	}

	copyLen := count
	if limit := len(r.buf) - 1; copyLen > limit {
		copyLen = limit
	}

	if err := r.acquire(ctx); err != nil {
		return 0, err
	}
	defer r.release()

	r.zeroLocked()

	if copyLen > 0 {
		if _, err := io.ReadFull(src, r.buf[:copyLen]); err != nil {
			// Prior content is destroyed at this point; report the
			// fault rather than exposing a half-written record.
			r.zeroLocked()
			return 0, fmt.Errorf("read content: %w: %v", ErrInputFault, err)
		}
	}

	r.length = copyLen
	r.written = r.timeNow()
	r.decayed = 0
	return copyLen, nil
}

// PutBytes is Put with an in-memory source.
func (r *Record) PutBytes(ctx context.Context, p []byte) (int, error) {
	return r.Put(ctx, bytes.NewReader(p), len(p))
}

// Get copies up to count bytes starting at offset into dst, after applying
// any decay owed for the elapsed time since the last write. It returns the
// number of bytes delivered. An empty record, or an offset at or past the
// end, yields (0, nil) — logical end of data, not an error.
func (r *Record) Get(ctx context.Context, offset, count int, dst io.Writer) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("offset %d: %w", offset, ErrInvalidArgument)
	}
	if count < 0 {
		return 0, fmt.Errorf("count %d: %w", count, ErrInvalidArgument)
	}
	if count == 0 {
		return 0, nil
	}

	if err := r.acquire(ctx); err != nil {
		return 0, err
	}
	defer r.release()

	if r.length == 0 || offset >= r.length {
		return 0, nil
	}

	r.applyDecayLocked()

	n := r.length - offset
	if n > count {
		n = count
	}
	wrote, err := dst.Write(r.buf[offset : offset+n])
	if err != nil {
		return wrote, fmt.Errorf("deliver content: %w: %v", ErrOutputFault, err)
	}
	if wrote < n {
		return wrote, fmt.Errorf("deliver content: %w: short write (%d of %d)", ErrOutputFault, wrote, n)
	}
	return n, nil
}

// GetBytes is Get with an in-memory destination.
func (r *Record) GetBytes(ctx context.Context, offset, count int) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := r.Get(ctx, offset, count, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Clear resets the record to empty. Equivalent to a zero-length Put.
func (r *Record) Clear(ctx context.Context) error {
	_, err := r.Put(ctx, nil, 0)
	return err
}

// applyDecayLocked corrupts the positions owed since the last write.
//
// Work is bounded by length, never by elapsed time: the target is the
// elapsed whole seconds capped at length, and only the delta beyond what
// was already applied is performed. Once decayed == length the guard
// stops all further work, so a fully decayed record's bytes freeze.
func (r *Record) applyDecayLocked() {
	if r.length == 0 {
		return
	}

	elapsed := int64(r.timeNow().Sub(r.written) / time.Second)
	target := r.length
	if elapsed < int64(r.length) {
		target = int(elapsed)
	}
	if target <= r.decayed {
		return
	}

	for i := r.decayed; i < target; i++ {
		pos := int(r.randUint32() % uint32(r.length))
		r.buf[pos] = byte(alphabetLow + r.randUint32()%alphabetSize)
	}
	r.decayed = target
}

func (r *Record) zeroLocked() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.length = 0
	r.written = r.timeNow()
	r.decayed = 0
}
