package widecol

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func categoryOf(t *testing.T, err error) Category {
	t.Helper()

	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	return werr.Category
}

func TestMemoryUnknownTableIsIOWithResource(t *testing.T) {
	// Arrange
	m := NewMemory()
	ctx := context.Background()

	// Act
	err := m.Put(ctx, "nope", "row", "key:a", "v", 1)

	// Assert
	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if werr.Category != CategoryIO || werr.Resource != "nope" {
		t.Fatalf("got %s on %q, want IO error naming the table", werr.Category, werr.Resource)
	}
}

func TestMemoryLifecycle(t *testing.T) {
	// Arrange
	m := NewMemory()
	ctx := context.Background()

	if err := m.CreateTable(ctx, "tbl"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	// Act & Assert
	if err := m.CreateTable(ctx, "tbl"); categoryOf(t, err) != CategoryAlreadyExists {
		t.Fatalf("second create = %v, want CategoryAlreadyExists", err)
	}

	if err := m.Put(ctx, "tbl", "row", "key:a", "v1", 7); err != nil {
		t.Fatalf("put: %v", err)
	}

	cell, err := m.Get(ctx, "tbl", "row", "key:a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cell.Value != "v1" || cell.Timestamp != 7 {
		t.Fatalf("cell = %+v, want written value and timestamp", cell)
	}

	if _, err := m.Get(ctx, "tbl", "row", "key:b"); categoryOf(t, err) != CategoryMissing {
		t.Fatalf("get absent = %v, want CategoryMissing", err)
	}

	if err := m.Delete(ctx, "tbl", "row", "key:a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, "tbl", "row", "key:a"); categoryOf(t, err) != CategoryMissing {
		t.Fatalf("second delete = %v, want CategoryMissing", err)
	}
}

func TestMemoryIncrement(t *testing.T) {
	// Arrange
	m := NewMemory()
	ctx := context.Background()

	if err := m.CreateTable(ctx, "hb"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	// Act
	first, err := m.Increment(ctx, "hb", "host-1", "incr:a", 1)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	second, err := m.Increment(ctx, "hb", "host-1", "incr:a", 2)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}

	// Assert
	if first != 1 || second != 3 {
		t.Fatalf("counters = %d, %d, want 1 and 3", first, second)
	}
}

func TestMapRedisError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		resource string
	}{
		{"unknown table", errors.New("NOTABLE abc123"), CategoryIO, "abc123"},
		{"missing cell", errors.New("NOROW key:a"), CategoryMissing, "key:a"},
		{"table exists", errors.New("EXISTS abc123"), CategoryAlreadyExists, "abc123"},
		{"bad command", errors.New("ERR value is not an integer"), CategoryIllegalArgument, ""},
		{"nil reply", redis.Nil, CategoryMissing, ""},
		{"transport", errors.New("dial tcp 10.0.0.1:6379: connection refused"), CategoryIO, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapRedisError(tc.err)

			var werr *Error
			if !errors.As(mapped, &werr) {
				t.Fatalf("mapped = %v, want *Error", mapped)
			}
			if werr.Category != tc.category || werr.Resource != tc.resource {
				t.Fatalf("got %s on %q, want %s on %q", werr.Category, werr.Resource, tc.category, tc.resource)
			}
		})
	}
}

func TestMapRedisErrorNil(t *testing.T) {
	if err := mapRedisError(nil); err != nil {
		t.Fatalf("mapRedisError(nil) = %v, want nil", err)
	}
}
