// Package widecol defines a minimal wide-column storage surface: tables hold
// rows, rows hold named columns, and every operation is a single backend
// round trip.
package widecol

import (
	"context"
	"fmt"
)

// Category classifies backend failures.
type Category int

const (
	// CategoryIO covers transport failures and unknown-table errors.
	CategoryIO Category = iota
	// CategoryIllegalArgument covers requests the backend rejected as invalid.
	CategoryIllegalArgument
	// CategoryAlreadyExists covers creation of a table that already exists.
	CategoryAlreadyExists
	// CategoryMissing covers absent rows or columns.
	CategoryMissing
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryIO:
		return "IO"
	case CategoryIllegalArgument:
		return "ILLEGAL_ARGUMENT"
	case CategoryAlreadyExists:
		return "ALREADY_EXISTS"
	case CategoryMissing:
		return "MISSING"
	default:
		return "UNKNOWN"
	}
}

// Error is a categorized backend failure. Resource names the table involved
// when the backend reported one, which lets callers distinguish "tenant table
// does not exist" from a generic transport failure.
type Error struct {
	Category Category
	Resource string
	Message  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("widecol: %s on %s: %s", e.Category, e.Resource, e.Message)
	}
	return fmt.Sprintf("widecol: %s: %s", e.Category, e.Message)
}

// Cell is one stored column value with its write timestamp.
type Cell struct {
	Value     string
	Timestamp int64
}

// Client is a single wide-column backend connection.
//
// Implementations must perform each call as one backend round trip so that
// latency stays bounded under pooled concurrent access.
type Client interface {
	// CreateTable registers a table. Creating an existing table returns a
	// CategoryAlreadyExists error.
	CreateTable(ctx context.Context, table string) error

	// Put writes a column value at the given timestamp.
	Put(ctx context.Context, table, row, column, value string, timestamp int64) error

	// Get reads one column. Absent rows or columns return CategoryMissing.
	Get(ctx context.Context, table, row, column string) (*Cell, error)

	// Delete removes one column. Absent rows or columns return CategoryMissing.
	Delete(ctx context.Context, table, row, column string) error

	// Increment atomically adds amount to a numeric column and returns the
	// new value.
	Increment(ctx context.Context, table, row, column string, amount int64) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
