package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches ErrNoRows", func(t *testing.T) {
		if !isNotFound(sql.ErrNoRows) {
			t.Fatal("expected true for sql.ErrNoRows")
		}
	})

	t.Run("matches wrapped ErrNoRows", func(t *testing.T) {
		err := fmt.Errorf("get match: %w", sql.ErrNoRows)
		if !isNotFound(err) {
			t.Fatal("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(errors.New("pq: relation matches does not exist")) {
			t.Fatal("expected false for unrelated error")
		}
	})
}

func TestIntPtrFromNull(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		got := intPtrFromNull(sql.NullInt64{Int64: 3, Valid: true})
		if got == nil || *got != 3 {
			t.Fatalf("expected pointer to 3, got %v", got)
		}
	})

	t.Run("null stays nil", func(t *testing.T) {
		if got := intPtrFromNull(sql.NullInt64{}); got != nil {
			t.Fatalf("expected nil, got %v", *got)
		}
	})
}

func TestBoolPtrFromNull(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		got := boolPtrFromNull(sql.NullBool{Bool: true, Valid: true})
		if got == nil || !*got {
			t.Fatalf("expected pointer to true, got %v", got)
		}
	})

	t.Run("null stays nil", func(t *testing.T) {
		if got := boolPtrFromNull(sql.NullBool{}); got != nil {
			t.Fatalf("expected nil, got %v", *got)
		}
	})
}

func TestNullFromPtrRoundTrip(t *testing.T) {
	score := 2
	if got := nullFromIntPtr(&score); !got.Valid || got.Int64 != 2 {
		t.Fatalf("unexpected null int: %+v", got)
	}
	if got := nullFromIntPtr(nil); got.Valid {
		t.Fatalf("expected invalid null int, got %+v", got)
	}

	flag := false
	if got := nullFromBoolPtr(&flag); !got.Valid || got.Bool {
		t.Fatalf("unexpected null bool: %+v", got)
	}
	if got := nullFromBoolPtr(nil); got.Valid {
		t.Fatalf("expected invalid null bool, got %+v", got)
	}
}
