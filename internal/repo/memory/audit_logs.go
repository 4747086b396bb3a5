package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saiza/notehub/internal/domain/audit"
)

// AuditLogsRepo is the in-memory counterpart of the postgres audit log,
// used in tests and local development.
type AuditLogsRepo struct {
	mu     sync.RWMutex
	events []audit.Event
	seq    int64
}

func NewAuditLogsRepo() *AuditLogsRepo {
	return &AuditLogsRepo{}
}

func (r *AuditLogsRepo) Insert(ctx context.Context, e audit.Event) (audit.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++

	e.ID = uuid.NewString()
	e.Timestamp = time.Now().UTC()
	e.Seq = r.seq

	r.events = append(r.events, e)

	return e, nil
}

// newestFirst returns a copy ordered by timestamp desc, seq desc. The slice
// is appended in write order, so walking it backwards already satisfies both.
func (r *AuditLogsRepo) newestFirst() []audit.Event {
	out := make([]audit.Event, 0, len(r.events))

	for i := len(r.events) - 1; i >= 0; i-- {
		out = append(out, r.events[i])
	}

	return out
}

func (r *AuditLogsRepo) Recent(ctx context.Context, n int) ([]audit.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.newestFirst()

	if n < len(all) {
		all = all[:n]
	}

	return all, nil
}

func (r *AuditLogsRepo) All(ctx context.Context) ([]audit.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.newestFirst(), nil
}

func (r *AuditLogsRepo) Between(ctx context.Context, start, end time.Time) ([]audit.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []audit.Event{}

	for _, e := range r.events {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}

	return out, nil
}

func (r *AuditLogsRepo) CountByAction(ctx context.Context, action audit.Action) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64

	for _, e := range r.events {
		if e.Action == action {
			n++
		}
	}

	return n, nil
}
