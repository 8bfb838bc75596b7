package store

import (
	"context"

	"github.com/daytrace/daytrace/internal/model"
)

// Store exposes persistence operations required by the session engine and
// the statistics aggregator.
// Implementations live under internal/store/<driver>/ (memory, sqlite, postgres).
type Store interface {
	Sessions() Sessions
	Records() Records
}

// Sessions holds at most one open activity per user. Get returns
// (nil, nil) when the user has no open session; absence is a state, not
// an error.
type Sessions interface {
	Get(ctx context.Context, userID int64) (*model.Session, error)
	Put(ctx context.Context, s *model.Session) error
	Clear(ctx context.Context, userID int64) error
	All(ctx context.Context) ([]*model.Session, error)
}

// Records is the append-only ledger of closed intervals. Append assigns
// the RecordID; ListDay returns a user's records whose start falls inside
// the day, ordered by start ascending then by insertion.
type Records interface {
	Append(ctx context.Context, r *model.ActivityRecord) (*model.ActivityRecord, error)
	ListDay(ctx context.Context, userID int64, day model.Day) ([]*model.ActivityRecord, error)
}
