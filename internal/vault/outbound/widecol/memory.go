package widecol

import (
	"context"
	"strconv"
	"sync"
)

// Memory is an in-process Client used by tests and single-node development
// setups. It mirrors the error categories of the real backends.
type Memory struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]Cell
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]map[string]Cell)}
}

// CreateTable registers a table.
func (m *Memory) CreateTable(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; ok {
		return &Error{Category: CategoryAlreadyExists, Resource: table, Message: "table exists"}
	}
	m.tables[table] = make(map[string]map[string]Cell)
	return nil
}

// Put writes a column value.
func (m *Memory) Put(_ context.Context, table, row, column, value string, timestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return &Error{Category: CategoryIO, Resource: table, Message: "unknown table"}
	}

	cells, ok := rows[row]
	if !ok {
		cells = make(map[string]Cell)
		rows[row] = cells
	}
	cells[column] = Cell{Value: value, Timestamp: timestamp}
	return nil
}

// Get reads a column value.
func (m *Memory) Get(_ context.Context, table, row, column string) (*Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, &Error{Category: CategoryIO, Resource: table, Message: "unknown table"}
	}

	cell, ok := rows[row][column]
	if !ok {
		return nil, &Error{Category: CategoryMissing, Resource: column, Message: "no such cell"}
	}
	out := cell
	return &out, nil
}

// Delete removes a column value.
func (m *Memory) Delete(_ context.Context, table, row, column string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return &Error{Category: CategoryIO, Resource: table, Message: "unknown table"}
	}

	if _, ok := rows[row][column]; !ok {
		return &Error{Category: CategoryMissing, Resource: column, Message: "no such cell"}
	}
	delete(rows[row], column)
	return nil
}

// Increment atomically adds amount to a numeric column.
func (m *Memory) Increment(_ context.Context, table, row, column string, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return 0, &Error{Category: CategoryIO, Resource: table, Message: "unknown table"}
	}

	cells, ok := rows[row]
	if !ok {
		cells = make(map[string]Cell)
		rows[row] = cells
	}

	current := int64(0)
	if cell, ok := cells[column]; ok {
		n, err := strconv.ParseInt(cell.Value, 10, 64)
		if err != nil {
			return 0, &Error{Category: CategoryIllegalArgument, Resource: column, Message: "not a number"}
		}
		current = n
	}

	current += amount
	cells[column] = Cell{Value: strconv.FormatInt(current, 10)}
	return current, nil
}

// Close is a no-op for the in-memory backend.
func (m *Memory) Close() error {
	return nil
}
