// Package tracker implements the session engine: at most one open
// activity per user, closed the instant the next one starts.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/daytrace/daytrace/internal/category"
	"github.com/daytrace/daytrace/internal/clock"
	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/stats"
	"github.com/daytrace/daytrace/internal/store"
)

// Transition is the outcome of one start operation: the record closed on
// the way out (nil when the user was idle) and the session opened.
type Transition struct {
	Closed *model.ActivityRecord `json:"closed,omitempty"`
	Opened model.Session         `json:"opened"`
}

// EndOfDayResult pairs the sleep transition with the day summary computed
// right after it.
type EndOfDayResult struct {
	Transition *Transition        `json:"transition"`
	Report     *model.StatsReport `json:"report"`
}

// Engine serializes per-user transitions against the store. Methods are
// safe for concurrent use; operations for the same user never interleave,
// operations for different users run in parallel.
type Engine struct {
	store store.Store
	clk   clock.Clock
	stats *stats.Aggregator
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New constructs an Engine.
func New(s store.Store, clk clock.Clock, agg *stats.Aggregator, log zerolog.Logger) *Engine {
	return &Engine{
		store: s,
		clk:   clk,
		stats: agg,
		log:   log,
		locks: map[int64]*sync.Mutex{},
	}
}

// userLock returns the mutex guarding one user's transitions. Locks are
// created on first use and kept for the process lifetime; the set is
// bounded by the number of distinct users seen.
func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// StartActivity closes the user's open activity (if any) at the instant
// the new one starts and opens the new one. A non-nil at backdates that
// instant; the previous activity still closes at the same instant, so the
// day's records tile without gaps even when a backdate produces a
// negative-duration record. On error the transition fails as a unit and
// is not retried.
func (e *Engine) StartActivity(ctx context.Context, userID int64, activity string, at *time.Time) (*Transition, error) {
	name := strings.TrimSpace(activity)
	if name == "" {
		return nil, fmt.Errorf("%w: activity name is empty", model.ErrValidation)
	}

	startAt := e.clk.Now()
	if at != nil {
		startAt = *at
	}

	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	prev, err := e.store.Sessions().Get(ctx, userID)
	if err != nil {
		transitionFailures.WithLabelValues("start").Inc()
		return nil, fmt.Errorf("load session: %w", err)
	}

	var closed *model.ActivityRecord
	if prev != nil {
		rec := &model.ActivityRecord{
			UserID:    userID,
			Activity:  prev.Activity,
			Category:  category.Classify(prev.Activity),
			StartedAt: prev.StartedAt,
			EndedAt:   startAt,
			Duration:  startAt.Sub(prev.StartedAt),
		}
		closed, err = e.store.Records().Append(ctx, rec)
		if err != nil {
			transitionFailures.WithLabelValues("start").Inc()
			return nil, fmt.Errorf("close previous activity: %w", err)
		}
	}

	opened := model.Session{UserID: userID, Activity: name, StartedAt: startAt}
	if err := e.store.Sessions().Put(ctx, &opened); err != nil {
		transitionFailures.WithLabelValues("start").Inc()
		if closed != nil {
			e.log.Error().Stack().Err(err).
				Int64("user_id", userID).
				Str("closed_record", closed.RecordID).
				Msg("session save failed after ledger append; open session is stale")
		}
		return nil, fmt.Errorf("save session: %w", err)
	}

	transitionsTotal.WithLabelValues("start").Inc()
	e.log.Info().
		Int64("user_id", userID).
		Str("activity", name).
		Time("started_at", startAt).
		Bool("explicit_start", at != nil).
		Msg("activity started")

	return &Transition{Closed: closed, Opened: opened}, nil
}

// EndOfDay runs the sleep transition and returns it together with the
// day's summary. The opened Sleep session stays open; the next morning's
// first activity closes it, crediting the night to the Sleep category.
// When summarizing fails the committed transition stands and the error is
// returned; stats can be re-requested.
func (e *Engine) EndOfDay(ctx context.Context, userID int64) (*EndOfDayResult, error) {
	now := e.clk.Now()

	tr, err := e.StartActivity(ctx, userID, category.ActivitySleep, &now)
	if err != nil {
		return nil, err
	}
	transitionsTotal.WithLabelValues("sleep").Inc()

	rep, err := e.stats.Summarize(ctx, stats.Request{UserID: userID, Day: model.DayOf(now)})
	if err != nil {
		e.log.Warn().Err(err).Int64("user_id", userID).
			Msg("day summary failed after sleep transition")
		return nil, fmt.Errorf("summarize day: %w", err)
	}

	return &EndOfDayResult{Transition: tr, Report: rep}, nil
}

// ForceCloseAll closes every open session at a single instant and clears
// them, returning the number closed. It is idempotent: a second call
// finds nothing open. Per-user failures do not stop the sweep; they are
// joined into the returned error.
func (e *Engine) ForceCloseAll(ctx context.Context) (int, error) {
	now := e.clk.Now()

	open, err := e.store.Sessions().All(ctx)
	if err != nil {
		return 0, fmt.Errorf("enumerate open sessions: %w", err)
	}

	closed := 0
	var errs []error
	for _, sess := range open {
		if err := e.forceCloseOne(ctx, sess.UserID, now); err != nil {
			transitionFailures.WithLabelValues("force_close").Inc()
			e.log.Error().Stack().Err(err).
				Int64("user_id", sess.UserID).
				Msg("force close failed; open interval is lost")
			errs = append(errs, fmt.Errorf("user %d: %w", sess.UserID, err))
			continue
		}
		closed++
	}
	if closed > 0 {
		transitionsTotal.WithLabelValues("force_close").Add(float64(closed))
		e.log.Info().Int("closed", closed).Time("at", now).Msg("open sessions force-closed")
	}
	return closed, errors.Join(errs...)
}

func (e *Engine) forceCloseOne(ctx context.Context, userID int64, now time.Time) error {
	l := e.userLock(userID)
	l.Lock()
	defer l.Unlock()

	// Re-read under the lock; the session may have changed since All().
	sess, err := e.store.Sessions().Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		return nil
	}

	rec := &model.ActivityRecord{
		UserID:    userID,
		Activity:  sess.Activity,
		Category:  category.Classify(sess.Activity),
		StartedAt: sess.StartedAt,
		EndedAt:   now,
		Duration:  now.Sub(sess.StartedAt),
	}
	if _, err := e.store.Records().Append(ctx, rec); err != nil {
		return fmt.Errorf("append closing record: %w", err)
	}
	if err := e.store.Sessions().Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentSession returns the user's open session, or nil when idle.
func (e *Engine) CurrentSession(ctx context.Context, userID int64) (*model.Session, error) {
	return e.store.Sessions().Get(ctx, userID)
}

// Now exposes the engine's clock reading; transports use it to anchor
// backdate parsing to the same timeline the engine closes records on.
func (e *Engine) Now() time.Time { return e.clk.Now() }
