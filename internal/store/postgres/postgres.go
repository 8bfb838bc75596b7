// Package postgres provides the relational store.Store backend.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist. Durations are
// stored as nanosecond counts; seq preserves insertion order for records
// that share a start timestamp.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
            user_id BIGINT PRIMARY KEY,
            activity TEXT NOT NULL,
            started_at TIMESTAMPTZ NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS activity_records (
            seq BIGSERIAL PRIMARY KEY,
            record_id TEXT NOT NULL UNIQUE,
            user_id BIGINT NOT NULL,
            activity TEXT NOT NULL,
            category TEXT NOT NULL,
            started_at TIMESTAMPTZ NOT NULL,
            ended_at TIMESTAMPTZ NOT NULL,
            duration_ns BIGINT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS activity_records_user_start_idx
            ON activity_records(user_id, started_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap opens a connection, applies the schema and closes again. It is
// the one-shot variant used by tools; the service keeps the connection from
// Open instead.
func Bootstrap(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}

	db, err := Open(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return EnsureSchema(ctx, db)
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Sessions() store.Sessions { return &sessions{db: s.db} }
func (s *pgStore) Records() store.Records   { return &records{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type sessions struct{ db *sql.DB }

func (x *sessions) Get(ctx context.Context, userID int64) (*model.Session, error) {
	var activity string
	var started time.Time
	row := x.db.QueryRowContext(ctx, `
        SELECT activity, started_at FROM sessions WHERE user_id=$1
    `, userID)
	if err := row.Scan(&activity, &started); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &model.Session{UserID: userID, Activity: activity, StartedAt: started.UTC()}, nil
}

func (x *sessions) Put(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.Activity == "" {
		return fmt.Errorf("%w: session requires an activity", model.ErrValidation)
	}
	_, err := x.db.ExecContext(ctx, `
        INSERT INTO sessions (user_id, activity, started_at)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id) DO UPDATE SET activity=EXCLUDED.activity, started_at=EXCLUDED.started_at
    `, sess.UserID, sess.Activity, sess.StartedAt)
	return err
}

func (x *sessions) Clear(ctx context.Context, userID int64) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
	return err
}

func (x *sessions) All(ctx context.Context) ([]*model.Session, error) {
	rows, err := x.db.QueryContext(ctx, `
        SELECT user_id, activity, started_at FROM sessions ORDER BY user_id
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.UserID, &sess.Activity, &sess.StartedAt); err != nil {
			return nil, err
		}
		sess.StartedAt = sess.StartedAt.UTC()
		out = append(out, &sess)
	}
	return out, rows.Err()
}

type records struct{ db *sql.DB }

func (x *records) Append(ctx context.Context, r *model.ActivityRecord) (*model.ActivityRecord, error) {
	if r == nil || r.Activity == "" {
		return nil, fmt.Errorf("%w: record requires an activity", model.ErrValidation)
	}
	out := *r
	if out.RecordID == "" {
		out.RecordID = uuid.NewString()
	}
	_, err := x.db.ExecContext(ctx, `
        INSERT INTO activity_records (record_id, user_id, activity, category, started_at, ended_at, duration_ns)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, out.RecordID, out.UserID, out.Activity, out.Category, out.StartedAt, out.EndedAt, int64(out.Duration))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (x *records) ListDay(ctx context.Context, userID int64, day model.Day) ([]*model.ActivityRecord, error) {
	rows, err := x.db.QueryContext(ctx, `
        SELECT record_id, activity, category, started_at, ended_at, duration_ns
        FROM activity_records
        WHERE user_id=$1 AND started_at >= $2 AND started_at < $3
        ORDER BY started_at, seq
    `, userID, day.Start, day.End)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ActivityRecord
	for rows.Next() {
		var r model.ActivityRecord
		r.UserID = userID
		var durNs int64
		if err := rows.Scan(&r.RecordID, &r.Activity, &r.Category, &r.StartedAt, &r.EndedAt, &durNs); err != nil {
			return nil, err
		}
		r.StartedAt = r.StartedAt.UTC()
		r.EndedAt = r.EndedAt.UTC()
		r.Duration = time.Duration(durNs)
		out = append(out, &r)
	}
	return out, rows.Err()
}
