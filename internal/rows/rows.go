// ABOUTME: Converts text and JSON input into engine values for a table's columns
// ABOUTME: Shared by the CLI field=value arguments and the MCP tool arguments
package rows

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/harper/seatbot/internal/table"
)

// NullLiteral is the command-line spelling of a null value.
const NullLiteral = "null"

// Parse converts a command-line string to a value of the column's kind.
// Blobs are taken as the raw bytes of s.
func Parse(d table.Descriptor, s string) (any, error) {
	if d.Nullable && s == NullLiteral {
		return nil, nil
	}
	switch d.Kind {
	case table.Bool:
		v, err := cast.ToBoolE(s)
		if err != nil {
			return nil, fieldError(d, s, err)
		}
		return v, nil
	case table.Int:
		// Base 10 only: "010" is ten, not an octal eight.
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fieldError(d, s, err)
		}
		return v, nil
	case table.Float:
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fieldError(d, s, err)
		}
		return v, nil
	case table.Text:
		return s, nil
	case table.Blob:
		return []byte(s), nil
	}
	return nil, fmt.Errorf("%w: %s has unsupported kind %s", table.ErrSchema, d.Name, d.Kind)
}

// Convert converts a decoded JSON value to the column's kind. Blobs are
// base64 strings, matching how encoding/json renders []byte. Integers may be
// JSON numbers up to MaxExactInt or decimal strings of any int64.
func Convert(d table.Descriptor, v any) (any, error) {
	if v == nil {
		if d.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s cannot be null", table.ErrValidation, d.Name)
	}
	switch d.Kind {
	case table.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fieldError(d, v, nil)
		}
		return b, nil
	case table.Int:
		return convertInt(d, v)
	case table.Float:
		if _, ok := v.(bool); ok {
			return nil, fieldError(d, v, nil)
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fieldError(d, v, err)
		}
		return f, nil
	case table.Text:
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(d, v, nil)
		}
		return s, nil
	case table.Blob:
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(d, v, nil)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fieldError(d, v, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: %s has unsupported kind %s", table.ErrSchema, d.Name, d.Kind)
}

// MaxExactInt is the largest integer a JSON number (float64) holds exactly.
// Larger IDs, such as Discord snowflakes, must be sent as decimal strings.
const MaxExactInt = 1 << 53

func convertInt(d table.Descriptor, v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return nil, fieldError(d, v, nil)
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, fieldError(d, v, nil)
		}
		if math.Abs(x) > MaxExactInt {
			return nil, fmt.Errorf("%w: %s value %v is beyond exact JSON integer range; pass it as a decimal string",
				table.ErrValidation, d.Name, v)
		}
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return nil, fieldError(d, v, err)
		}
		return n, nil
	case json.Number:
		n, err := strconv.ParseInt(x.String(), 10, 64)
		if err != nil {
			return nil, fieldError(d, v, err)
		}
		return n, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fieldError(d, v, nil)
		}
	case uint64:
		if x > math.MaxInt64 {
			return nil, fieldError(d, v, nil)
		}
	case float32:
		return convertInt(d, float64(x))
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil, fieldError(d, v, err)
	}
	return n, nil
}

// Pairs parses field=value arguments into a match against t's columns.
func Pairs(t *table.Table, args []string) (table.Match, error) {
	m := make(table.Match, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected field=value, got %q", table.ErrValidation, arg)
		}
		d, err := column(t, name)
		if err != nil {
			return nil, err
		}
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("%w: %s given more than once", table.ErrValidation, name)
		}
		v, err := Parse(d, raw)
		if err != nil {
			return nil, err
		}
		m[name] = v
	}
	return m, nil
}

// Object converts a JSON object into a match against t's columns.
func Object(t *table.Table, obj map[string]any) (table.Match, error) {
	m := make(table.Match, len(obj))
	for name, raw := range obj {
		d, err := column(t, name)
		if err != nil {
			return nil, err
		}
		v, err := Convert(d, raw)
		if err != nil {
			return nil, err
		}
		m[name] = v
	}
	return m, nil
}

// Build orders a match into a full row. Every column must be present.
func Build(t *table.Table, m table.Match) (table.Row, error) {
	cols := t.Columns()
	row := make(table.Row, len(cols))
	var missing []string
	for i, d := range cols {
		v, ok := m[d.Name]
		if !ok {
			missing = append(missing, d.Name)
			continue
		}
		row[i] = v
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %s", table.ErrValidation, strings.Join(missing, ", "))
	}
	if len(m) != len(cols) {
		var extra []string
		for name := range m {
			if _, ok := t.Column(name); !ok {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return nil, fmt.Errorf("%w: unknown fields %s", table.ErrValidation, strings.Join(extra, ", "))
	}
	return row, nil
}

// Map renders a row as field name to value.
func Map(t *table.Table, row table.Row) map[string]any {
	out := make(map[string]any, len(row))
	for i, d := range t.Columns() {
		if i < len(row) {
			out[d.Name] = row[i]
		}
	}
	return out
}

// Format renders a single value for tabular output.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return NullLiteral
	case []byte:
		return fmt.Sprintf("%x", x)
	}
	return cast.ToString(v)
}

func column(t *table.Table, name string) (table.Descriptor, error) {
	d, ok := t.Column(name)
	if !ok {
		return table.Descriptor{}, fmt.Errorf("%w: %s is not a member of %s", table.ErrValidation, name, t.Name())
	}
	return d, nil
}

func fieldError(d table.Descriptor, v any, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s must be %s, got %v: %v", table.ErrValidation, d.Name, d.Kind, v, cause)
	}
	return fmt.Errorf("%w: %s must be %s, got %v", table.ErrValidation, d.Name, d.Kind, v)
}
