// ABOUTME: Tests for SQLite connection pools
// ABOUTME: Verifies DSN building, directory creation and in-memory pinning
package sqlite

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMemory(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"", true},
		{":memory:", true},
		{"file::memory:?cache=shared", true},
		{"file:bot?mode=memory&cache=shared", true},
		{"/var/lib/seatbot/seatbot.db", false},
		{"data/bot.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMemory(tt.path))
		})
	}
}

func TestBuildDSN_PureGo(t *testing.T) {
	dsn := buildDSN("/tmp/bot.db", false, Options{Driver: DriverPureGo, BusyTimeout: 2 * time.Second})

	assert.True(t, strings.HasPrefix(dsn, "/tmp/bot.db?"))
	assert.Contains(t, dsn, "_pragma=busy_timeout(2000)")
	assert.Contains(t, dsn, "_pragma=journal_mode(WAL)")
	assert.Contains(t, dsn, "_pragma=foreign_keys(ON)")
}

func TestBuildDSN_CGO(t *testing.T) {
	dsn := buildDSN("/tmp/bot.db", false, Options{Driver: DriverCGO, BusyTimeout: 5 * time.Second})

	assert.Contains(t, dsn, "_busy_timeout=5000")
	assert.Contains(t, dsn, "_journal_mode=WAL")
	assert.Contains(t, dsn, "_foreign_keys=on")
}

func TestBuildDSN_MemorySkipsWAL(t *testing.T) {
	dsn := buildDSN(":memory:", true, Options{}.withDefaults())

	assert.NotContains(t, dsn, "journal_mode")
	assert.True(t, strings.HasPrefix(dsn, ":memory:?"))
}

func TestBuildDSN_ExistingQuery(t *testing.T) {
	dsn := buildDSN("file::memory:?cache=shared", true, Options{}.withDefaults())
	assert.True(t, strings.HasPrefix(dsn, "file::memory:?cache=shared&"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(":memory:", Options{Driver: "postgres"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sqlite driver")
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "seatbot.db")

	db, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = db.Exec("CREATE TABLE probe (id INTEGER)")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", strings.ToLower(mode))
}

func TestOpen_MemoryKeepsData(t *testing.T) {
	db, err := Open(MemoryPath, Options{})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	_, err = db.Exec("CREATE TABLE probe (id INTEGER)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO probe (id) VALUES (1)")
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM probe").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	assert.Equal(t, "/tmp/xdg-data/seatbot", DefaultDataDir())
	assert.Equal(t, "seatbot.db", filepath.Base(DefaultDBPath()))
}

func TestIsBusy(t *testing.T) {
	assert.False(t, IsBusy(nil))
	assert.True(t, IsBusy(errors.New("database is locked")))
	assert.True(t, IsBusy(fmt.Errorf("ping: %w", errors.New("database is locked (5) (SQLITE_BUSY)"))))
	assert.False(t, IsBusy(errors.New("no such table: probe")))
}
