// ABOUTME: Tests for the record schema introspector
// ABOUTME: Verifies SQL type mapping, nullability and schema errors
package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_TypeMapping(t *testing.T) {
	tests := []struct {
		field    Field
		sqlType  string
		kind     Kind
		nullable bool
	}{
		{Column("flag", Bool), "BOOLEAN NOT NULL", Bool, false},
		{Column("data", Blob), "BLOB NOT NULL", Blob, false},
		{Column("ratio", Float), "REAL NOT NULL", Float, false},
		{Column("count", Int), "INTEGER NOT NULL", Int, false},
		{Column("name", Text), "TEXT NOT NULL", Text, false},
		{NullableColumn("filepath", Text), "TEXT", Text, true},
		{Field{Name: "swapped", Type: Of(Null, Int)}, "INTEGER", Int, true},
	}

	for _, tt := range tests {
		t.Run(tt.field.Name, func(t *testing.T) {
			descs, err := Describe(Schema{tt.field})
			require.NoError(t, err)
			require.Len(t, descs, 1)

			assert.Equal(t, tt.field.Name, descs[0].Name)
			assert.Equal(t, tt.sqlType, descs[0].SQLType)
			assert.Equal(t, tt.kind, descs[0].Kind)
			assert.Equal(t, tt.nullable, descs[0].Nullable)
		})
	}
}

func TestDescribe_PreservesFieldOrder(t *testing.T) {
	descs, err := Describe(Schema{
		Column("guild_id", Int),
		Column("user_id", Int),
		Column("count", Int),
	})
	require.NoError(t, err)

	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"guild_id", "user_id", "count"}, names)
}

func TestDescribe_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"empty", Schema{}},
		{"two base types", Schema{{Name: "value", Type: Of(Int, Text)}}},
		{"two base types nullable", Schema{{Name: "value", Type: Of(Int, Text, Null)}}},
		{"only null", Schema{{Name: "value", Type: Of(Null)}}},
		{"no kinds", Schema{{Name: "value"}}},
		{"duplicate", Schema{Column("a", Int), Column("a", Text)}},
		{"bad identifier", Schema{Column("drop table;", Int)}},
		{"unknown kind", Schema{{Name: "value", Type: Of(Kind(42))}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Describe(tt.schema)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "text | null", Optional(Text).String())
	assert.Equal(t, "int", Of(Int).String())
}
