package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStore_SetGetInvalidate(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := t.Context()

	s.Set(ctx, "snapshot:results", []byte(`[]`))
	if _, ok := s.Get(ctx, "snapshot:results"); !ok {
		t.Fatal("expected cached value")
	}

	s.Invalidate(ctx, "snapshot", "results")
	if _, ok := s.Get(ctx, "snapshot:results"); ok {
		t.Fatal("expected entry invalidated")
	}
}

func TestStore_InvalidatePrefixDescendants(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := t.Context()

	s.Set(ctx, "snapshot:results", 1)
	s.Set(ctx, "snapshot:results:page:2", 2)
	s.Set(ctx, "snapshot:schedule", 3)

	s.Invalidate(ctx, "snapshot", "results")

	if _, ok := s.Get(ctx, "snapshot:results:page:2"); ok {
		t.Fatal("expected descendant entry invalidated")
	}
	if _, ok := s.Get(ctx, "snapshot:schedule"); !ok {
		t.Fatal("unrelated entry must survive")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	ctx := t.Context()

	s.Set(ctx, "key", "value")
	time.Sleep(25 * time.Millisecond)

	if _, ok := s.Get(ctx, "key"); ok {
		t.Fatal("expected entry expired")
	}
}

func TestStore_GetOrLoad(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := t.Context()

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return "loaded", nil
	}

	for i := 0; i < 3; i++ {
		value, err := s.GetOrLoad(ctx, "key", loader)
		if err != nil {
			t.Fatalf("load %d failed: %v", i, err)
		}
		if value != "loaded" {
			t.Fatalf("load %d returned %v", i, value)
		}
	}
	if loads != 1 {
		t.Fatalf("expected one loader call, got %d", loads)
	}
}

func TestStore_GetOrLoadErrorNotCached(t *testing.T) {
	s := NewStore(time.Minute)
	ctx := t.Context()

	boom := errors.New("load failed")
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}

	if _, err := s.GetOrLoad(ctx, "key", loader); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	value, err := s.GetOrLoad(ctx, "key", loader)
	if err != nil || value != "ok" {
		t.Fatalf("expected retry to load, got %v err=%v", value, err)
	}
}

func TestStore_NilStoreDegradesToLoader(t *testing.T) {
	var s *Store
	ctx := t.Context()

	s.Set(ctx, "key", "value")
	if _, ok := s.Get(ctx, "key"); ok {
		t.Fatal("nil store must not cache")
	}
	s.Invalidate(ctx, "key", "")

	value, err := s.GetOrLoad(ctx, "key", func(context.Context) (any, error) {
		return "loaded", nil
	})
	if err != nil || value != "loaded" {
		t.Fatalf("expected pass-through load, got %v err=%v", value, err)
	}
}
