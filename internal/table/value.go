// ABOUTME: Row and predicate value types plus kind coercion rules
// ABOUTME: Values are normalized to bool, int64, float64, string, []byte or nil
package table

import (
	"bytes"
	"fmt"
	"math"
	"sort"
)

// Row is one record, values in schema field order.
type Row []any

// Match is a field=value predicate scoping get, all and remove.
type Match map[string]any

// Keys returns the predicate field names, sorted.
func (m Match) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for i, v := range r {
		if b, ok := v.([]byte); ok {
			v = bytes.Clone(b)
		}
		out[i] = v
	}
	return out
}

// Equal reports whether two rows hold the same normalized values.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if !valueEqual(r[i], other[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	ab, aok := a.([]byte)
	bb, bok := b.([]byte)
	if aok || bok {
		return aok && bok && bytes.Equal(ab, bb)
	}
	return a == b
}

// Bool returns column i as a bool.
func (r Row) Bool(i int) bool {
	v, _ := r[i].(bool)
	return v
}

// Int returns column i as an int64.
func (r Row) Int(i int) int64 {
	v, _ := r[i].(int64)
	return v
}

// Float returns column i as a float64.
func (r Row) Float(i int) float64 {
	v, _ := r[i].(float64)
	return v
}

// Text returns column i as a string.
func (r Row) Text(i int) string {
	v, _ := r[i].(string)
	return v
}

// Blob returns column i as a byte slice.
func (r Row) Blob(i int) []byte {
	v, _ := r[i].([]byte)
	return v
}

// OptionalText returns column i as a string pointer, nil for NULL.
func (r Row) OptionalText(i int) *string {
	v, ok := r[i].(string)
	if !ok {
		return nil
	}
	return &v
}

// coerce checks that v matches kind k and normalizes it.
func coerce(k Kind, v any) (any, bool) {
	switch k {
	case Bool:
		b, ok := v.(bool)
		return b, ok
	case Int:
		return toInt64(v)
	case Float:
		switch f := v.(type) {
		case float64:
			return f, true
		case float32:
			return float64(f), true
		}
	case Text:
		s, ok := v.(string)
		return s, ok
	case Blob:
		b, ok := v.([]byte)
		return b, ok
	}
	return nil, false
}

func toInt64(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return nil, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return nil, false
		}
		return int64(n), true
	}
	return nil, false
}

// fromStorage normalizes a value scanned from the driver into the column's kind.
// Drivers differ in how they surface BOOLEAN and empty BLOB columns.
func fromStorage(d Descriptor, v any) (any, error) {
	if v == nil {
		switch {
		case d.Nullable:
			return nil, nil
		case d.Kind == Blob:
			return []byte{}, nil
		}
		return nil, fmt.Errorf("column %s: unexpected NULL", d.Name)
	}

	switch d.Kind {
	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		}
	case Int:
		switch n := v.(type) {
		case int64:
			return n, nil
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		}
	case Float:
		switch f := v.(type) {
		case float64:
			return f, nil
		case int64:
			return float64(f), nil
		}
	case Text:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	case Blob:
		switch b := v.(type) {
		case []byte:
			// modernc reports an empty BLOB as a typed nil slice.
			if b == nil {
				return []byte{}, nil
			}
			return bytes.Clone(b), nil
		case string:
			return []byte(b), nil
		}
	}
	return nil, fmt.Errorf("column %s: cannot read %T as %s", d.Name, v, d.Kind)
}
