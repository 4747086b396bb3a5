package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saiza/notehub/internal/domain/audit"
	"github.com/saiza/notehub/internal/observability"
)

type AuditLogsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAuditLogsRepo(pool *pgxpool.Pool) *AuditLogsRepo {
	return &AuditLogsRepo{
		pool: pool,
	}
}

// WithMetrics enables per-op latency/error metrics on this repo.
func (r *AuditLogsRepo) WithMetrics(prom *observability.Prom) *AuditLogsRepo {
	r.prom = prom
	return r
}

func (r *AuditLogsRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

const auditColumns = `id, action, user_id, user_email, note_id, details, ip_address, ts, seq`

func scanEvents(rows pgx.Rows) ([]audit.Event, error) {
	defer rows.Close()

	out := []audit.Event{}

	for rows.Next() {
		var e audit.Event
		var noteID *string

		err := rows.Scan(&e.ID, &e.Action, &e.UserID, &e.UserEmail, &noteID, &e.Details, &e.IPAddress, &e.Timestamp, &e.Seq)

		if err != nil {
			return nil, err
		}

		if noteID != nil {
			e.NoteID = *noteID
		}

		out = append(out, e)
	}

	err := rows.Err()

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Insert assigns id and timestamp at write time. The seq column is a
// bigserial, so insertion order is recorded even when timestamps collide.
func (r *AuditLogsRepo) Insert(ctx context.Context, e audit.Event) (audit.Event, error) {
	e.ID = uuid.NewString()
	e.Timestamp = time.Now().UTC()

	var noteID *string

	if e.NoteID != "" {
		noteID = &e.NoteID
	}

	err := r.observe("audit_logs.insert", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO audit_logs (id, action, user_id, user_email, note_id, details, ip_address, ts)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING seq`,
			e.ID, e.Action, e.UserID, e.UserEmail, noteID, e.Details, e.IPAddress, e.Timestamp,
		).Scan(&e.Seq)
	})

	if err != nil {
		return audit.Event{}, err
	}

	return e, nil
}

// Recent returns the n newest events, newest first. A log shorter than n
// returns everything it has.
func (r *AuditLogsRepo) Recent(ctx context.Context, n int) ([]audit.Event, error) {
	var out []audit.Event

	err := r.observe("audit_logs.recent", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+auditColumns+`
			 FROM audit_logs
			 ORDER BY ts DESC, seq DESC
			 LIMIT $1`,
			n,
		)

		if err != nil {
			return err
		}

		out, err = scanEvents(rows)

		return err
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// All returns every event, newest first. Used by the admin log listing.
func (r *AuditLogsRepo) All(ctx context.Context) ([]audit.Event, error) {
	var out []audit.Event

	err := r.observe("audit_logs.all", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+auditColumns+`
			 FROM audit_logs
			 ORDER BY ts DESC, seq DESC`,
		)

		if err != nil {
			return err
		}

		out, err = scanEvents(rows)

		return err
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Between returns events with ts in [start, end] inclusive, oldest first.
func (r *AuditLogsRepo) Between(ctx context.Context, start, end time.Time) ([]audit.Event, error) {
	var out []audit.Event

	err := r.observe("audit_logs.between", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+auditColumns+`
			 FROM audit_logs
			 WHERE ts >= $1 AND ts <= $2
			 ORDER BY ts ASC, seq ASC`,
			start, end,
		)

		if err != nil {
			return err
		}

		out, err = scanEvents(rows)

		return err
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AuditLogsRepo) CountByAction(ctx context.Context, action audit.Action) (int64, error) {
	var n int64

	err := r.observe("audit_logs.count_by_action", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM audit_logs WHERE action = $1`,
			action,
		).Scan(&n)
	})

	if err != nil {
		return 0, err
	}

	return n, nil
}
