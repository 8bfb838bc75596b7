// Package stats aggregates closed intervals into daily reports.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/daytrace/daytrace/internal/category"
	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/store"
)

// Request selects what to summarize. Detailed adds the per-record
// timeline to the report.
type Request struct {
	UserID   int64
	Day      model.Day
	Detailed bool
}

// Aggregator is a pure read-side over the ledger; it never mutates state
// and is safe for concurrent use.
type Aggregator struct {
	store store.Store
}

// New constructs an Aggregator.
func New(s store.Store) *Aggregator { return &Aggregator{store: s} }

// Summarize builds the day's report from the ledger. Durations are summed
// arithmetically, so backdated negative intervals subtract. A day with no
// records yields a valid empty report, not an error.
func (a *Aggregator) Summarize(ctx context.Context, req Request) (*model.StatsReport, error) {
	recs, err := a.store.Records().ListDay(ctx, req.UserID, req.Day)
	if err != nil {
		return nil, fmt.Errorf("list day records: %w", err)
	}

	rep := &model.StatsReport{
		UserID:     req.UserID,
		Date:       req.Day.Date(),
		Categories: []model.CategoryTotal{},
	}

	catIdx := map[string]int{}
	customIdx := map[string]int{}
	loc := req.Day.Start.Location()

	for _, r := range recs {
		rep.Total += r.Duration

		if i, ok := catIdx[r.Category]; ok {
			rep.Categories[i].Total += r.Duration
		} else {
			catIdx[r.Category] = len(rep.Categories)
			rep.Categories = append(rep.Categories, model.CategoryTotal{Category: r.Category, Total: r.Duration})
		}

		if category.IsCustom(r.Activity) {
			name := category.CustomName(r.Activity)
			if i, ok := customIdx[name]; ok {
				rep.Custom[i].Total += r.Duration
			} else {
				customIdx[name] = len(rep.Custom)
				rep.Custom = append(rep.Custom, model.CustomTotal{Name: name, Total: r.Duration})
			}
		}

		if req.Detailed {
			rep.Timeline = append(rep.Timeline, model.TimelineRow{
				Activity: r.Activity,
				Category: r.Category,
				Start:    r.StartedAt.In(loc).Format("15:04"),
				End:      r.EndedAt.In(loc).Format("15:04"),
				Duration: r.Duration,
			})
		}
	}

	// Largest first; ties keep first-encountered ledger order.
	sort.SliceStable(rep.Categories, func(i, j int) bool {
		return rep.Categories[i].Total > rep.Categories[j].Total
	})
	sort.SliceStable(rep.Custom, func(i, j int) bool {
		return rep.Custom[i].Total > rep.Custom[j].Total
	})

	return rep, nil
}
