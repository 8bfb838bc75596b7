package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/daytrace/daytrace/internal/category"
	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/stats"
)

// MaxCustomNameLen caps free-text activity names, in runes.
const MaxCustomNameLen = 100

// Action is the closed set of user intents the engine consumes. Transports
// translate buttons and free text into Actions and submit them through
// Apply; nothing else mutates sessions.
type Action interface{ isAction() }

// StartKnownActivity starts a catalog activity. At backdates the start.
type StartKnownActivity struct {
	Name string
	At   *time.Time
}

// StartCustomActivity starts a free-text activity; the engine prefixes
// and validates the text.
type StartCustomActivity struct {
	Text string
	At   *time.Time
}

// RequestBackdate announces the user's intent to backdate; it changes no
// engine state and exists so every intent funnels through Apply.
type RequestBackdate struct{}

// Cancel abandons a pending dialog; it changes no engine state.
type Cancel struct{}

// ShowStats requests the current day's summary.
type ShowStats struct{ Detailed bool }

// Sleep runs the end-of-day transition.
type Sleep struct{}

func (StartKnownActivity) isAction()  {}
func (StartCustomActivity) isAction() {}
func (RequestBackdate) isAction()     {}
func (Cancel) isAction()              {}
func (ShowStats) isAction()           {}
func (Sleep) isAction()               {}

// Outcome carries whatever an action produced: a transition for starts
// and sleep, a report for stats and sleep, neither for the dialog-only
// actions.
type Outcome struct {
	Transition *Transition
	Stats      *model.StatsReport
}

// Apply is the single entry point consuming Actions. Per-user ordering is
// guaranteed by the engine's keyed locks regardless of how many callers
// submit concurrently.
func (e *Engine) Apply(ctx context.Context, userID int64, act Action) (*Outcome, error) {
	switch a := act.(type) {
	case StartKnownActivity:
		if !category.Known(a.Name) {
			return nil, fmt.Errorf("%w: unknown activity %q", model.ErrValidation, a.Name)
		}
		tr, err := e.StartActivity(ctx, userID, a.Name, a.At)
		if err != nil {
			return nil, err
		}
		return &Outcome{Transition: tr}, nil

	case StartCustomActivity:
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: activity text is empty", model.ErrValidation)
		}
		if utf8.RuneCountInString(text) > MaxCustomNameLen {
			return nil, fmt.Errorf("%w: activity name exceeds %d characters", model.ErrValidation, MaxCustomNameLen)
		}
		tr, err := e.StartActivity(ctx, userID, category.MakeCustom(text), a.At)
		if err != nil {
			return nil, err
		}
		return &Outcome{Transition: tr}, nil

	case RequestBackdate, Cancel:
		return &Outcome{}, nil

	case ShowStats:
		rep, err := e.stats.Summarize(ctx, stats.Request{
			UserID:   userID,
			Day:      model.DayOf(e.clk.Now()),
			Detailed: a.Detailed,
		})
		if err != nil {
			return nil, err
		}
		return &Outcome{Stats: rep}, nil

	case Sleep:
		res, err := e.EndOfDay(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &Outcome{Transition: res.Transition, Stats: res.Report}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported action %T", model.ErrValidation, act)
	}
}
