package db

import (
	"testing"
	"time"
)

func TestStorageSetGetRemove(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	s := db.Scope("cli")

	if _, ok, err := s.Get(ctx, "refresh-token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "refresh-token", "r1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "refresh-token", "r2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, ok, err := s.Get(ctx, "refresh-token")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != "r2" {
		t.Fatalf("expected r2, got %q", got)
	}

	if err := s.Remove(ctx, "refresh-token"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "refresh-token"); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "refresh-token"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestScopesAreIsolated(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	if err := db.Scope("a").Set(ctx, "user", "alice"); err != nil {
		t.Fatalf("set a: %v", err)
	}
	if err := db.Scope("b").Set(ctx, "user", "bob"); err != nil {
		t.Fatalf("set b: %v", err)
	}

	got, _, _ := db.Scope("a").Get(ctx, "user")
	if got != "alice" {
		t.Fatalf("expected alice, got %q", got)
	}

	n, err := db.ClearScope(ctx, "a")
	if err != nil {
		t.Fatalf("clear scope: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 cleared, got %d", n)
	}
	if _, ok, _ := db.Scope("a").Get(ctx, "user"); ok {
		t.Fatalf("expected scope a empty")
	}
	if _, ok, _ := db.Scope("b").Get(ctx, "user"); !ok {
		t.Fatalf("expected scope b untouched")
	}
}

func TestListKeysOrdered(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	s := db.Scope("cli")
	for _, k := range []string{"user", "refresh-token"} {
		if err := s.Set(ctx, k, k+"-value"); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	entries, err := db.ListKeys(ctx, "cli")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "refresh-token" || entries[1].Key != "user" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[1].Value != "user-value" {
		t.Fatalf("unexpected value %q", entries[1].Value)
	}
	if entries[0].UpdatedAt.IsZero() || time.Since(entries[0].UpdatedAt) > time.Hour {
		t.Fatalf("unexpected updated_at %v", entries[0].UpdatedAt)
	}
}
