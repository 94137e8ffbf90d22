// ABOUTME: Tests for the table engine against SQLite storage
// ABOUTME: Covers round trips, upsert, primary key contracts and removal
package table

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var countSchema = Schema{
	Column("guild_id", Int),
	Column("user_id", Int),
	Column("count", Int),
}

var soundSchema = Schema{
	Column("name", Text),
	NullableColumn("filepath", Text),
	Column("volume", Float),
	Column("enabled", Bool),
	Column("checksum", Blob),
}

func openCounts(t *testing.T, path string, opts ...Option) *Table {
	t.Helper()
	opts = append([]Option{PrimaryKey("guild_id", "user_id")}, opts...)
	tbl, err := Open(countSchema, "counts", path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func TestOpen_UnknownPrimaryKey(t *testing.T) {
	_, err := Open(countSchema, "counts", ":memory:", PrimaryKey("guild_id", "channel_id"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "not a field")
}

func TestOpen_SchemaErrorBeforeIO(t *testing.T) {
	bad := Schema{{Name: "value", Type: Of(Int, Text)}}
	path := filepath.Join(t.TempDir(), "never", "created.db")

	_, err := Open(bad, "broken", path)
	require.ErrorIs(t, err, ErrSchema)

	_, statErr := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr), "directory should not be created for an invalid schema")
}

func TestOpen_NullablePrimaryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "sounds.db")

	_, err := Open(soundSchema, "sounds", path, PrimaryKey("name", "filepath"))
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "cannot be nullable")

	_, statErr := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(statErr), "directory should not be created for a nullable primary key")
}

func TestRoundTrip_EmptyBlobIsNotNull(t *testing.T) {
	ctx := context.Background()
	schema := Schema{
		Column("id", Text),
		Column("data", Blob),
		NullableColumn("extra", Blob),
	}
	tbl, err := Open(schema, "blobs", ":memory:", PrimaryKey("id"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })

	require.NoError(t, tbl.Update(ctx, Row{"empty", []byte{}, []byte{}}))
	require.NoError(t, tbl.Update(ctx, Row{"null", []byte{}, nil}))

	got, err := tbl.Get(ctx, Match{"id": "empty"})
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got[1])
	assert.Equal(t, []byte{}, got[2], "empty blob must stay distinct from NULL")

	got, err = tbl.Get(ctx, Match{"id": "null"})
	require.NoError(t, err)
	assert.Equal(t, []byte{}, got[1])
	assert.Nil(t, got[2])
}

func TestOpen_InvalidTableName(t *testing.T) {
	_, err := Open(countSchema, "counts; DROP TABLE x", ":memory:")
	assert.ErrorIs(t, err, ErrSchema)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bot.db")
	openCounts(t, path)

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	require.NoError(t, tbl.Update(ctx, Row{1, 2, 3}))

	got, err := tbl.Get(ctx, Match{"guild_id": 1, "user_id": 2})
	require.NoError(t, err)
	assert.Equal(t, Row{int64(1), int64(2), int64(3)}, got)
}

func TestRoundTrip_AllKinds(t *testing.T) {
	ctx := context.Background()
	tbl, err := Open(soundSchema, "sounds", ":memory:", PrimaryKey("name"))
	require.NoError(t, err)
	defer func() { _ = tbl.Close() }()

	rows := []Row{
		{"airhorn", "/sounds/airhorn.mp3", 0.5, true, []byte{0xde, 0xad}},
		{"silence", nil, 1.0, false, []byte{}},
	}
	for _, r := range rows {
		require.NoError(t, tbl.Update(ctx, r))
	}

	got, err := tbl.Get(ctx, Match{"name": "airhorn"})
	require.NoError(t, err)
	assert.True(t, got.Equal(rows[0]), "got %v", got)

	got, err = tbl.Get(ctx, Match{"name": "silence"})
	require.NoError(t, err)
	assert.Nil(t, got[1], "null filepath should survive a round trip")
	assert.Nil(t, got.OptionalText(1))
	assert.Equal(t, false, got.Bool(3))
	assert.Equal(t, []byte{}, got.Blob(4))
}

func TestGet_NoRow(t *testing.T) {
	tbl := openCounts(t, ":memory:")

	got, err := tbl.Get(context.Background(), Match{"guild_id": 9, "user_id": 9})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGet_Validation(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	tests := []struct {
		name  string
		match Match
		msg   string
	}{
		{"no arguments", Match{}, "at least one argument"},
		{"nil match", nil, "at least one argument"},
		{"unknown field", Match{"channel_id": 1}, "not a member"},
		{"wrong type", Match{"guild_id": "1"}, "must be int"},
		{"null value", Match{"guild_id": nil}, "must be int"},
		{"bool for int", Match{"guild_id": true}, "must be int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Get(ctx, tt.match)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestAll_Validation(t *testing.T) {
	tbl := openCounts(t, ":memory:")

	_, err := tbl.All(context.Background(), Match{"count": 1.5})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	for _, r := range []Row{{1, 1, 10}, {1, 2, 20}, {2, 1, 30}} {
		require.NoError(t, tbl.Update(ctx, r))
	}

	every, err := tbl.All(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, every, 3)

	guild, err := tbl.All(ctx, Match{"guild_id": 1})
	require.NoError(t, err)
	assert.Len(t, guild, 2)

	none, err := tbl.All(ctx, Match{"guild_id": 3})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdate_Upsert(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	require.NoError(t, tbl.Update(ctx, Row{1, 1, 0}))
	require.NoError(t, tbl.Update(ctx, Row{1, 1, 5}))

	got, err := tbl.Get(ctx, Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	assert.Equal(t, Row{int64(1), int64(1), int64(5)}, got)

	rows, err := tbl.All(ctx, Match{"guild_id": 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUpdate_RowValidation(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	tests := []struct {
		name string
		row  Row
	}{
		{"short", Row{1, 1}},
		{"long", Row{1, 1, 1, 1}},
		{"null in required column", Row{1, nil, 1}},
		{"wrong kind", Row{1, 1, "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tbl.Update(ctx, tt.row), ErrValidation)
		})
	}
}

func TestDuplicateRowsSurfaceIntegrityErrors(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	for i := 0; i < 2; i++ {
		_, err := tbl.db.Exec("INSERT INTO counts (guild_id, user_id, count) VALUES (1, 1, 0)")
		require.NoError(t, err)
	}

	err := tbl.Update(ctx, Row{1, 1, 7})
	require.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "updated more than one row")

	_, err = tbl.Get(ctx, Match{"guild_id": 1, "user_id": 1})
	require.ErrorIs(t, err, ErrIntegrity)
	assert.Contains(t, err.Error(), "found multiple matching rows")

	// The failed upsert is rolled back.
	rows, err := tbl.All(ctx, Match{"count": 7})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGet_UnderSpecifiedPredicate(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	require.NoError(t, tbl.Update(ctx, Row{1, 1, 0}))
	require.NoError(t, tbl.Update(ctx, Row{1, 2, 0}))

	_, err := tbl.Get(ctx, Match{"guild_id": 1})
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")

	n, err := tbl.Remove(ctx, Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	require.NoError(t, tbl.Update(ctx, Row{1, 1, 3}))

	n, err = tbl.Remove(ctx, Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := tbl.Get(ctx, Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemove_RequiresExactPrimaryKeys(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, ":memory:")
	require.NoError(t, tbl.Update(ctx, Row{1, 1, 3}))

	tests := []struct {
		name  string
		match Match
	}{
		{"subset", Match{"guild_id": 1}},
		{"superset", Match{"guild_id": 1, "user_id": 1, "count": 3}},
		{"disjoint", Match{"guild_id": 1, "count": 3}},
		{"empty", Match{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Remove(ctx, tt.match)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), "must be the primary keys")
		})
	}

	rows, err := tbl.All(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRemove_Unsupported(t *testing.T) {
	ctx := context.Background()

	appendOnly, err := Open(countSchema, "offenses", ":memory:")
	require.NoError(t, err)
	defer func() { _ = appendOnly.Close() }()

	_, err = appendOnly.Remove(ctx, Match{})
	assert.ErrorIs(t, err, ErrRemoveUnsupported)
	assert.False(t, appendOnly.Removable())

	disabled := openCounts(t, ":memory:", WithoutRemove())
	_, err = disabled.Remove(ctx, Match{"guild_id": 1, "user_id": 1})
	assert.ErrorIs(t, err, ErrRemoveUnsupported)
}

func TestUpdate_WithoutPrimaryKeysAppends(t *testing.T) {
	ctx := context.Background()
	tbl, err := Open(countSchema, "offenses", ":memory:")
	require.NoError(t, err)
	defer func() { _ = tbl.Close() }()

	require.NoError(t, tbl.Update(ctx, Row{1, 1, 1}))
	require.NoError(t, tbl.Update(ctx, Row{1, 1, 1}))

	rows, err := tbl.All(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestIdempotentCreate(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bot.db")

	first := openCounts(t, path)
	require.NoError(t, first.Update(ctx, Row{1, 1, 4}))
	require.NoError(t, first.Close())

	second := openCounts(t, path)
	got, err := second.Get(ctx, Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	assert.Equal(t, Row{int64(1), int64(1), int64(4)}, got)
}

func TestConcurrentUpdatesSameKey(t *testing.T) {
	ctx := context.Background()
	tbl := openCounts(t, filepath.Join(t.TempDir(), "bot.db"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, tbl.Update(ctx, Row{1, 1, n}))
		}(i)
	}
	wg.Wait()

	rows, err := tbl.All(ctx, Match{"guild_id": 1, "user_id": 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTableAccessors(t *testing.T) {
	tbl := openCounts(t, ":memory:")

	assert.Equal(t, "counts", tbl.Name())
	assert.Equal(t, ":memory:", tbl.Path())
	assert.Equal(t, []string{"guild_id", "user_id"}, tbl.PrimaryKeys())
	assert.True(t, tbl.Removable())
	require.Len(t, tbl.Columns(), 3)

	c, ok := tbl.Column("count")
	require.True(t, ok)
	assert.Equal(t, "INTEGER NOT NULL", c.SQLType)
}
