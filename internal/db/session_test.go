package db

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	clock := time.Unix(1_700_000_000, 0)
	db.now = func() time.Time { return clock }

	s, err := db.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if s.ID == "" {
		t.Fatalf("expected session id")
	}

	got, ok, err := db.GetSession(ctx, s.ID)
	if err != nil || !ok {
		t.Fatalf("get session: ok=%v err=%v", ok, err)
	}
	if !got.CreatedAt.Equal(clock) || !got.LastSeen.Equal(clock) {
		t.Fatalf("unexpected timestamps %+v", got)
	}

	clock = clock.Add(time.Hour)
	if err := db.TouchSession(ctx, s.ID); err != nil {
		t.Fatalf("touch session: %v", err)
	}
	got, _, _ = db.GetSession(ctx, s.ID)
	if !got.LastSeen.Equal(clock) {
		t.Fatalf("expected last_seen %v, got %v", clock, got.LastSeen)
	}

	if err := db.TouchSession(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows touching missing session, got %v", err)
	}
}

func TestDeleteSessionClearsScope(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	s, err := db.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := db.Scope(SessionScope(s.ID)).Set(ctx, "refresh-token", "r1"); err != nil {
		t.Fatalf("set token: %v", err)
	}

	if err := db.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, _ := db.GetSession(ctx, s.ID); ok {
		t.Fatalf("expected session deleted")
	}
	if _, ok, _ := db.Scope(SessionScope(s.ID)).Get(ctx, "refresh-token"); ok {
		t.Fatalf("expected session scope cleared")
	}
}

func TestPurgeSessions(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	clock := time.Unix(1_700_000_000, 0)
	db.now = func() time.Time { return clock }
	old, err := db.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create old session: %v", err)
	}
	if err := db.Scope(SessionScope(old.ID)).Set(ctx, "user", "{}"); err != nil {
		t.Fatalf("set user: %v", err)
	}

	clock = clock.Add(48 * time.Hour)
	fresh, err := db.CreateSession(ctx)
	if err != nil {
		t.Fatalf("create fresh session: %v", err)
	}

	purged, err := db.PurgeSessions(ctx, clock.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("purge sessions: %v", err)
	}
	if len(purged) != 1 || purged[0] != old.ID {
		t.Fatalf("expected only %s purged, got %v", old.ID, purged)
	}
	if _, ok, _ := db.GetSession(ctx, fresh.ID); !ok {
		t.Fatalf("expected fresh session kept")
	}
	entries, err := db.ListKeys(ctx, SessionScope(old.ID))
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected purged scope empty, got %v", entries)
	}

	purged, err = db.PurgeSessions(ctx, clock.Add(-24*time.Hour))
	if err != nil || purged != nil {
		t.Fatalf("expected nothing to purge, got %v err=%v", purged, err)
	}
}
