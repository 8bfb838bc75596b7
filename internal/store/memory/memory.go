// Package memory provides an in-process store.Store for tests and
// single-node development runs. State does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/store"
)

// Store is a mutex-guarded, map-backed store.Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]model.Session
	records  map[int64][]model.ActivityRecord
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		sessions: make(map[int64]model.Session),
		records:  make(map[int64][]model.ActivityRecord),
	}
}

func (s *Store) Sessions() store.Sessions { return &sessions{s: s} }
func (s *Store) Records() store.Records   { return &records{s: s} }

// HealthPing implements health.HealthPinger; the in-memory store is
// always reachable.
func (s *Store) HealthPing(ctx context.Context) error { return nil }

type sessions struct{ s *Store }

func (x *sessions) Get(ctx context.Context, userID int64) (*model.Session, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	sess, ok := x.s.sessions[userID]
	if !ok {
		return nil, nil
	}
	out := sess
	return &out, nil
}

func (x *sessions) Put(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.Activity == "" {
		return fmt.Errorf("%w: session requires an activity", model.ErrValidation)
	}
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	x.s.sessions[sess.UserID] = *sess
	return nil
}

func (x *sessions) Clear(ctx context.Context, userID int64) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	delete(x.s.sessions, userID)
	return nil
}

func (x *sessions) All(ctx context.Context) ([]*model.Session, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	out := make([]*model.Session, 0, len(x.s.sessions))
	for _, sess := range x.s.sessions {
		cp := sess
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type records struct{ s *Store }

func (x *records) Append(ctx context.Context, r *model.ActivityRecord) (*model.ActivityRecord, error) {
	if r == nil || r.Activity == "" {
		return nil, fmt.Errorf("%w: record requires an activity", model.ErrValidation)
	}
	cp := *r
	if cp.RecordID == "" {
		cp.RecordID = uuid.NewString()
	}
	x.s.mu.Lock()
	defer x.s.mu.Unlock()
	x.s.records[cp.UserID] = append(x.s.records[cp.UserID], cp)
	out := cp
	return &out, nil
}

func (x *records) ListDay(ctx context.Context, userID int64, day model.Day) ([]*model.ActivityRecord, error) {
	x.s.mu.RLock()
	defer x.s.mu.RUnlock()
	var out []*model.ActivityRecord
	for _, r := range x.s.records[userID] {
		if !day.Contains(r.StartedAt) {
			continue
		}
		cp := r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}
