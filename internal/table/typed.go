// ABOUTME: Typed view over a Table for Go record structs
// ABOUTME: A Codec maps each struct to and from a Row without reflection
package table

import (
	"context"
	"fmt"
)

// Codec describes how a record type R is stored.
type Codec[R any] interface {
	// Schema returns the static record declaration.
	Schema() Schema
	// Encode returns the row for r, values in schema order.
	Encode(r R) Row
	// Decode rebuilds a record from a row read back from storage.
	Decode(row Row) (R, error)
}

// Typed wraps a Table with a Codec.
type Typed[R any] struct {
	table *Table
	codec Codec[R]
}

// OpenTyped opens a Table for the codec's schema.
func OpenTyped[R any](codec Codec[R], name, path string, opts ...Option) (*Typed[R], error) {
	t, err := Open(codec.Schema(), name, path, opts...)
	if err != nil {
		return nil, err
	}
	return &Typed[R]{table: t, codec: codec}, nil
}

// Table returns the underlying untyped table.
func (t *Typed[R]) Table() *Table { return t.table }

// Close closes the underlying table.
func (t *Typed[R]) Close() error { return t.table.Close() }

// Get returns the record matching m. The bool is false when no row matched.
func (t *Typed[R]) Get(ctx context.Context, m Match) (R, bool, error) {
	var zero R
	row, err := t.table.Get(ctx, m)
	if err != nil || row == nil {
		return zero, false, err
	}
	r, err := t.codec.Decode(row)
	if err != nil {
		return zero, false, fmt.Errorf("failed to decode %s row: %w", t.table.Name(), err)
	}
	return r, true, nil
}

// All returns every record matching m.
func (t *Typed[R]) All(ctx context.Context, m Match) ([]R, error) {
	rows, err := t.table.All(ctx, m)
	if err != nil {
		return nil, err
	}
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		r, err := t.codec.Decode(row)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", t.table.Name(), err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Put upserts r by primary key.
func (t *Typed[R]) Put(ctx context.Context, r R) error {
	return t.table.Update(ctx, t.codec.Encode(r))
}

// Remove deletes the record identified by exactly the primary key fields.
func (t *Typed[R]) Remove(ctx context.Context, m Match) (int64, error) {
	return t.table.Remove(ctx, m)
}
