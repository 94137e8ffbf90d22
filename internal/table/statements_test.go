// ABOUTME: Tests for SQL statement fragment generation
// ABOUTME: Verifies placeholder, assignment and conjunction formatting
package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementFragments(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		insert string
		update string
		search string
	}{
		{"empty", nil, "", "", ""},
		{"single", []string{"a"}, ":a", "a = :a", "a = :a"},
		{"pair", []string{"a", "b"}, ":a, :b", "a = :a, b = :b", "a = :a AND b = :b"},
		{"order preserved", []string{"b", "a", "c"}, ":b, :a, :c", "b = :b, a = :a, c = :c", "b = :b AND a = :a AND c = :c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.insert, InsertPlaceholders(tt.fields))
			assert.Equal(t, tt.update, UpdateAssignments(tt.fields))
			assert.Equal(t, tt.search, SearchConjunction(tt.fields))
		})
	}
}

func TestCreateTable(t *testing.T) {
	descs, err := Describe(Schema{
		Column("guild_id", Int),
		NullableColumn("filepath", Text),
	})
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}

	assert.Equal(t,
		"CREATE TABLE IF NOT EXISTS sounds (guild_id INTEGER NOT NULL, filepath TEXT)",
		CreateTable("sounds", descs))
}

func TestGeneratedStatements(t *testing.T) {
	cols := []string{"guild_id", "user_id", "count"}
	keys := []string{"guild_id", "user_id"}

	assert.Equal(t, "SELECT guild_id, user_id, count FROM counts", selectQuery("counts", cols, nil))
	assert.Equal(t,
		"SELECT guild_id, user_id, count FROM counts WHERE guild_id = :guild_id",
		selectQuery("counts", cols, []string{"guild_id"}))
	assert.Equal(t,
		"INSERT INTO counts (guild_id, user_id, count) VALUES (:guild_id, :user_id, :count)",
		insertStatement("counts", cols))
	assert.Equal(t,
		"UPDATE counts SET guild_id = :guild_id, user_id = :user_id, count = :count WHERE guild_id = :guild_id AND user_id = :user_id",
		updateStatement("counts", cols, keys))
	assert.Equal(t,
		"DELETE FROM counts WHERE guild_id = :guild_id AND user_id = :user_id",
		deleteStatement("counts", keys))
}
