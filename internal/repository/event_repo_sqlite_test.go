package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/repository"
	"github.com/lahn92/AquaTimer/internal/repository/db"
)

// Round-trip against a real database file: Append writes occurred_at as
// formatted text, so this covers the text comparison List's range bounds
// rely on, which a statement mock cannot.
func TestEventSQLite_RoundTrip(t *testing.T) {
	sqlDB, err := db.InitDB(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewEventSQLite(sqlDB)
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, e := range []models.LightEvent{
		{EventID: "e1", OccurredAt: first, Type: models.EventTimeSync, Description: "clock synced"},
		{EventID: "e2", OccurredAt: second, Type: models.EventScheduleReplaced, Description: "schedule replaced"},
	} {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s): %v", e.EventID, err)
		}
	}

	// 'from' exactly equal to the earliest timestamp must still include it.
	events, err := repo.List(ctx, first, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List(from=first) returned %d events, want 2", len(events))
	}
	if events[0].EventID != "e1" || events[1].EventID != "e2" {
		t.Fatalf("unexpected order: %q, %q", events[0].EventID, events[1].EventID)
	}
	if !events[0].OccurredAt.Equal(first) {
		t.Fatalf("occurred_at round-trip = %v, want %v", events[0].OccurredAt, first)
	}

	// 'to' exactly equal to the latest timestamp is inclusive too.
	events, err = repo.List(ctx, time.Time{}, second, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("List(to=second) returned %d events, want 2", len(events))
	}

	// Range that excludes the second event, plus a type filter.
	events, err = repo.List(ctx, first, second.Add(-time.Second), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 || events[0].EventID != "e1" {
		t.Fatalf("narrow range = %+v, want only e1", events)
	}

	events, err = repo.List(ctx, time.Time{}, time.Time{}, models.EventScheduleReplaced)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(events) != 1 || events[0].EventID != "e2" {
		t.Fatalf("type filter = %+v, want only e2", events)
	}
}
