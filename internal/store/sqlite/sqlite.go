// Package sqlite provides the embedded file-based store.Store backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/store"
)

// Open opens (or creates) a SQLite database at the given path and enables
// WAL journal mode. The caller still needs EnsureSchema before first use.
func Open(path string) (*sql.DB, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist. Timestamps are
// stored as Unix nanoseconds so range queries compare chronologically.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
            user_id INTEGER PRIMARY KEY,
            activity TEXT NOT NULL,
            started_at_ns INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS activity_records (
            record_id TEXT PRIMARY KEY,
            user_id INTEGER NOT NULL,
            activity TEXT NOT NULL,
            category TEXT NOT NULL,
            started_at_ns INTEGER NOT NULL,
            ended_at_ns INTEGER NOT NULL,
            duration_ns INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS activity_records_user_start_idx
            ON activity_records(user_id, started_at_ns);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewWithDB constructs a SQLite store backed by an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Sessions() store.Sessions { return &sessions{db: s.db} }
func (s *sqlStore) Records() store.Records   { return &records{db: s.db} }

// HealthPing implements health.HealthPinger for the SQLite-backed store.
func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type sessions struct{ db *sql.DB }

func (x *sessions) Get(ctx context.Context, userID int64) (*model.Session, error) {
	var activity string
	var startedNs int64
	row := x.db.QueryRowContext(ctx, `
        SELECT activity, started_at_ns FROM sessions WHERE user_id = ?
    `, userID)
	if err := row.Scan(&activity, &startedNs); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &model.Session{
		UserID:    userID,
		Activity:  activity,
		StartedAt: time.Unix(0, startedNs).UTC(),
	}, nil
}

func (x *sessions) Put(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.Activity == "" {
		return fmt.Errorf("%w: session requires an activity", model.ErrValidation)
	}
	_, err := x.db.ExecContext(ctx, `
        INSERT INTO sessions (user_id, activity, started_at_ns) VALUES (?,?,?)
        ON CONFLICT(user_id) DO UPDATE SET activity=excluded.activity, started_at_ns=excluded.started_at_ns
    `, sess.UserID, sess.Activity, sess.StartedAt.UnixNano())
	return err
}

func (x *sessions) Clear(ctx context.Context, userID int64) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (x *sessions) All(ctx context.Context) ([]*model.Session, error) {
	rows, err := x.db.QueryContext(ctx, `
        SELECT user_id, activity, started_at_ns FROM sessions ORDER BY user_id
    `)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Session
	for rows.Next() {
		var userID, startedNs int64
		var activity string
		if err := rows.Scan(&userID, &activity, &startedNs); err != nil {
			return nil, err
		}
		out = append(out, &model.Session{
			UserID:    userID,
			Activity:  activity,
			StartedAt: time.Unix(0, startedNs).UTC(),
		})
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
        INSERT INTO activity_records (record_id, user_id, activity, category, started_at_ns, ended_at_ns, duration_ns)
        VALUES (?,?,?,?,?,?,?)
    `, out.RecordID, out.UserID, out.Activity, out.Category,
		out.StartedAt.UnixNano(), out.EndedAt.UnixNano(), int64(out.Duration))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (x *records) ListDay(ctx context.Context, userID int64, day model.Day) ([]*model.ActivityRecord, error) {
	rows, err := x.db.QueryContext(ctx, `
        SELECT record_id, activity, category, started_at_ns, ended_at_ns, duration_ns
        FROM activity_records
        WHERE user_id = ? AND started_at_ns >= ? AND started_at_ns < ?
        ORDER BY started_at_ns, rowid
    `, userID, day.Start.UnixNano(), day.End.UnixNano())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.ActivityRecord
	for rows.Next() {
		var r model.ActivityRecord
		r.UserID = userID
		var startedNs, endedNs, durNs int64
		if err := rows.Scan(&r.RecordID, &r.Activity, &r.Category, &startedNs, &endedNs, &durNs); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, startedNs).UTC()
		r.EndedAt = time.Unix(0, endedNs).UTC()
		r.Duration = time.Duration(durNs)
		out = append(out, &r)
	}
	return out, rows.Err()
}
