package storage

import (
	"context"
	"testing"
)

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(ctx, "stocks", `[{"id":"1"}]`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err := s.Get(ctx, "stocks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != `[{"id":"1"}]` {
		t.Errorf("unexpected value: %s", value)
	}

	// Перезапись
	if err := s.Set(ctx, "stocks", "[]"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, _ = s.Get(ctx, "stocks")
	if value != "[]" {
		t.Errorf("expected overwritten value, got %s", value)
	}
}

func TestNoopStorage(t *testing.T) {
	s := NewNoopStorage()
	ctx := context.Background()

	if err := s.Set(ctx, "stocks", "data"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Noop ничего не хранит
	if _, err := s.Get(ctx, "stocks"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
