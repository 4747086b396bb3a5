// Package audit (recorder) moves audit writes off the request path. Events go
// into a bounded queue consumed by a single writer goroutine, so the order
// recent() observes is actual write order, and a slow or unreachable store can
// never fail or stall the request being audited.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/observability"
)

type Appender interface {
	Insert(ctx context.Context, e audit.Event) (audit.Event, error)
}

type Recorder struct {
	store Appender
	log   *slog.Logger
	prom  *observability.Prom

	queue        chan audit.Event
	writeTimeout time.Duration
}

func NewRecorder(store Appender, log *slog.Logger, prom *observability.Prom, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}

	return &Recorder{
		store:        store,
		log:          log,
		prom:         prom,
		queue:        make(chan audit.Event, queueSize),
		writeTimeout: 2 * time.Second,
	}
}

// Record enqueues an event and returns immediately. When the queue is full
// the event is dropped and counted; the audit trail is best-effort and the
// primary action stays authoritative.
func (r *Recorder) Record(action audit.Action, actor audit.Actor, noteID, details, ip string) {
	e := audit.Event{
		Action:    action,
		UserID:    actor.ID,
		UserEmail: actor.Email,
		NoteID:    noteID,
		Details:   details,
		IPAddress: ip,
	}

	if actor.Anonymous() {
		e.UserID = audit.AnonymousMarker
		e.UserEmail = audit.AnonymousMarker
	}

	select {
	case r.queue <- e:
		if r.prom != nil {
			r.prom.AuditEnqueued.Inc()
			r.prom.AuditQueueDepth.Set(float64(len(r.queue)))
		}
	default:
		if r.prom != nil {
			r.prom.AuditDropped.Inc()
		}
		r.log.Warn("audit queue full, event dropped", "action", string(e.Action), "user_id", e.UserID)
	}
}

// Run consumes the queue until ctx is cancelled, then drains whatever is
// still buffered before returning.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return

		case e := <-r.queue:
			r.write(e)
		}
	}
}

func (r *Recorder) drain() {
	for {
		select {
		case e := <-r.queue:
			r.write(e)
		default:
			return
		}
	}
}

func (r *Recorder) write(e audit.Event) {
	// The request that produced the event is long gone; the write gets its
	// own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	_, err := r.store.Insert(ctx, e)

	if r.prom != nil {
		r.prom.AuditQueueDepth.Set(float64(len(r.queue)))
	}

	if err != nil {
		if r.prom != nil {
			r.prom.AuditWriteErrors.Inc()
		}
		r.log.Error("audit write failed", "action", string(e.Action), "err", err)
		return
	}

	if r.prom != nil {
		r.prom.AuditWritten.Inc()
	}
}
