package audit_test

import (
	"testing"
	"time"

	"github.com/kinnected/kinnected/internal/app/store/audit"
	"github.com/kinnected/kinnected/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	event := audit.Event{
		Category:  audit.CategoryAccount,
		EventType: audit.EventUserCreated,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
	}

	if err := store.Log(ctx, event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if events[0].Timestamp.IsZero() {
		t.Error("expected Timestamp to be auto-set")
	}
}

func TestStore_Log_PreservesTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	userID := primitive.NewObjectID()
	if err := store.Log(ctx, audit.Event{Timestamp: ts, UserID: &userID, Category: audit.CategoryAccount, EventType: audit.EventUserUpdated}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 1)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 || !events[0].Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %+v", ts, events)
	}
}

func TestStore_Query_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws1 := primitive.NewObjectID()
	ws2 := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)

	events := []audit.Event{
		{WorkspaceID: &ws1, Category: audit.CategoryFamily, EventType: audit.EventWorkspaceCreated, Timestamp: base},
		{WorkspaceID: &ws1, Category: audit.CategoryFamily, EventType: audit.EventMemberJoined, Timestamp: base.Add(time.Minute)},
		{WorkspaceID: &ws1, Category: audit.CategoryFamily, EventType: audit.EventRelationshipCreated, Timestamp: base.Add(2 * time.Minute)},
		{WorkspaceID: &ws2, Category: audit.CategoryFamily, EventType: audit.EventWorkspaceCreated, Timestamp: base.Add(3 * time.Minute)},
		{Category: audit.CategoryAccount, EventType: audit.EventUserCreated, Timestamp: base.Add(4 * time.Minute)},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	start := base.Add(30 * time.Second)
	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 5},
		{"workspace", audit.QueryFilter{WorkspaceID: &ws1}, 3},
		{"category", audit.QueryFilter{Category: audit.CategoryAccount}, 1},
		{"event type", audit.QueryFilter{EventType: audit.EventWorkspaceCreated}, 2},
		{"time range", audit.QueryFilter{WorkspaceID: &ws1, StartTime: &start}, 2},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
		{"offset", audit.QueryFilter{Offset: 4}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{WorkspaceID: &ws1})
	if err != nil {
		t.Fatalf("CountByFilter failed: %v", err)
	}
	if n != 3 {
		t.Errorf("CountByFilter: got %d, want 3", n)
	}
}

func TestStore_GetByWorkspace_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ws := primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)
	for i, et := range []string{audit.EventWorkspaceCreated, audit.EventMemberJoined, audit.EventRelationshipCreated} {
		if err := store.Log(ctx, audit.Event{WorkspaceID: &ws, Category: audit.CategoryFamily, EventType: et, Timestamp: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	got, err := store.GetByWorkspace(ctx, ws, 10, 0)
	if err != nil {
		t.Fatalf("GetByWorkspace failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].EventType != audit.EventRelationshipCreated || got[2].EventType != audit.EventWorkspaceCreated {
		t.Errorf("unexpected order: %s, %s, %s", got[0].EventType, got[1].EventType, got[2].EventType)
	}
}
