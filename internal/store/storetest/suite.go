// Package storetest provides a compliance suite run against every
// store.Store backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/daytrace/daytrace/internal/model"
	"github.com/daytrace/daytrace/internal/store"
)

// Run exercises the session and ledger contracts against a store.Store
// implementation. Implementations should provide a clean, isolated store
// and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Whole-second timestamps keep assertions exact across drivers.
	base := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)
	day := model.DayOf(base)

	const alice int64 = 1001
	const bob int64 = 1002

	// Absent session is a state, not an error.
	if got, err := s.Sessions().Get(ctx, alice); err != nil || got != nil {
		t.Fatalf("Get absent session: got=%v err=%v", got, err)
	}

	// Clear of an absent session is a no-op.
	if err := s.Sessions().Clear(ctx, alice); err != nil {
		t.Fatalf("Clear absent session: %v", err)
	}

	// Put then Get round-trips.
	if err := s.Sessions().Put(ctx, &model.Session{UserID: alice, Activity: "Breakfast", StartedAt: base}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Sessions().Get(ctx, alice)
	if err != nil || got == nil {
		t.Fatalf("Get: got=%v err=%v", got, err)
	}
	if got.UserID != alice || got.Activity != "Breakfast" || !got.StartedAt.Equal(base) {
		t.Fatalf("Get mismatch: %+v", got)
	}

	// Put is an upsert: last write wins.
	if err := s.Sessions().Put(ctx, &model.Session{UserID: alice, Activity: "Study", StartedAt: base.Add(30 * time.Minute)}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	if got, err := s.Sessions().Get(ctx, alice); err != nil || got == nil || got.Activity != "Study" {
		t.Fatalf("Get after overwrite: got=%+v err=%v", got, err)
	}

	// All enumerates every open session.
	if err := s.Sessions().Put(ctx, &model.Session{UserID: bob, Activity: "Gaming", StartedAt: base.Add(time.Hour)}); err != nil {
		t.Fatalf("Put bob: %v", err)
	}
	if all, err := s.Sessions().All(ctx); err != nil || len(all) != 2 {
		t.Fatalf("All: n=%d err=%v", len(all), err)
	}

	// Clear removes only the targeted user.
	if err := s.Sessions().Clear(ctx, bob); err != nil {
		t.Fatalf("Clear bob: %v", err)
	}
	if got, err := s.Sessions().Get(ctx, bob); err != nil || got != nil {
		t.Fatalf("Get cleared session: got=%v err=%v", got, err)
	}
	if got, err := s.Sessions().Get(ctx, alice); err != nil || got == nil {
		t.Fatalf("alice must survive bob's clear: got=%v err=%v", got, err)
	}

	// Append assigns a record id and preserves fields.
	r1, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: alice, Activity: "Breakfast", Category: "Food",
		StartedAt: base, EndedAt: base.Add(30 * time.Minute), Duration: 30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Append r1: %v", err)
	}
	if r1.RecordID == "" {
		t.Fatalf("Append r1: empty record id")
	}

	r2, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: alice, Activity: "Study", Category: "Study",
		StartedAt: base.Add(30 * time.Minute), EndedAt: base.Add(2 * time.Hour), Duration: 90 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Append r2: %v", err)
	}

	// r3 shares r2's start; listing must keep insertion order for the tie.
	r3, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: alice, Activity: "Rest", Category: "Entertainment",
		StartedAt: base.Add(30 * time.Minute), EndedAt: base.Add(45 * time.Minute), Duration: 15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Append r3: %v", err)
	}

	// Negative durations from backdated starts are stored as-is.
	r4, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: alice, Activity: "Woke up", Category: "Sleep",
		StartedAt: base.Add(-time.Hour), EndedAt: base.Add(-75 * time.Minute), Duration: -15 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Append r4: %v", err)
	}

	// Records outside the day and records of other users stay out of ListDay.
	if _, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: alice, Activity: "Sleep", Category: "Sleep",
		StartedAt: day.Start.Add(-time.Hour), EndedAt: day.Start, Duration: time.Hour,
	}); err != nil {
		t.Fatalf("Append previous-day record: %v", err)
	}
	if _, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: alice, Activity: "Woke up", Category: "Sleep",
		StartedAt: day.End, EndedAt: day.End.Add(time.Minute), Duration: time.Minute,
	}); err != nil {
		t.Fatalf("Append next-day record: %v", err)
	}
	if _, err := s.Records().Append(ctx, &model.ActivityRecord{
		UserID: bob, Activity: "Gaming", Category: "Gaming",
		StartedAt: base, EndedAt: base.Add(time.Hour), Duration: time.Hour,
	}); err != nil {
		t.Fatalf("Append bob record: %v", err)
	}

	lst, err := s.Records().ListDay(ctx, alice, day)
	if err != nil {
		t.Fatalf("ListDay: %v", err)
	}
	if len(lst) != 4 {
		t.Fatalf("ListDay: n=%d want 4", len(lst))
	}
	wantOrder := []string{r4.RecordID, r1.RecordID, r2.RecordID, r3.RecordID}
	for i, want := range wantOrder {
		if lst[i].RecordID != want {
			t.Fatalf("ListDay order[%d]: got=%s want=%s", i, lst[i].RecordID, want)
		}
	}
	if lst[0].Duration != -15*time.Minute {
		t.Fatalf("negative duration round-trip: got=%v", lst[0].Duration)
	}
	if lst[1].Activity != "Breakfast" || lst[1].Category != "Food" || !lst[1].StartedAt.Equal(base) {
		t.Fatalf("record fields round-trip: %+v", lst[1])
	}
	if !lst[1].EndedAt.Equal(base.Add(30 * time.Minute)) {
		t.Fatalf("record EndedAt round-trip: %+v", lst[1])
	}

	// A day with no records yields an empty list, not an error.
	if empty, err := s.Records().ListDay(ctx, alice, model.DayOf(base.AddDate(0, 0, 5))); err != nil || len(empty) != 0 {
		t.Fatalf("ListDay empty day: n=%d err=%v", len(empty), err)
	}
}
