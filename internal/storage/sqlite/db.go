// ABOUTME: SQLite connection pools for table storage paths
// ABOUTME: Supports modernc.org/sqlite (pure Go) and mattn/go-sqlite3 (cgo) drivers
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/harper/seatbot/internal/util"
)

// Driver names registered with database/sql.
const (
	DriverPureGo = "sqlite"
	DriverCGO    = "sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// openAttempts bounds how often Open retries a locked database.
const openAttempts = 4

const defaultBusyTimeout = 5 * time.Second

// Options tune how a storage path is opened.
type Options struct {
	Driver      string
	BusyTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Driver == "" {
		o.Driver = DriverPureGo
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = defaultBusyTimeout
	}
	return o
}

// DefaultDataDir returns the data directory following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "seatbot")
}

// DefaultDBPath returns the default database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "seatbot.db")
}

// IsMemory reports whether path denotes an ephemeral in-memory database.
func IsMemory(path string) bool {
	return path == "" || path == MemoryPath ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

// Open opens a connection pool for path, creating its directory if needed.
func Open(path string, opts Options) (*sql.DB, error) {
	opts = opts.withDefaults()
	if opts.Driver != DriverPureGo && opts.Driver != DriverCGO {
		return nil, fmt.Errorf("unknown sqlite driver %q: must be %q or %q", opts.Driver, DriverPureGo, DriverCGO)
	}

	memory := IsMemory(path)
	if path == "" {
		path = MemoryPath
	}
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := sql.Open(opts.Driver, buildDSN(path, memory, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every new connection to :memory: is a fresh database, so keep exactly one.
	if memory {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		conn.SetConnMaxIdleTime(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ping := func() error { return conn.PingContext(ctx) }
	if err := util.Retry(ctx, openAttempts, 50*time.Millisecond, IsBusy, ping); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// IsBusy reports whether err is SQLite's transient "database is locked" error.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// buildDSN appends driver-specific connection parameters to path.
func buildDSN(path string, memory bool, opts Options) string {
	timeout := opts.BusyTimeout.Milliseconds()

	var params []string
	switch opts.Driver {
	case DriverCGO:
		params = append(params, fmt.Sprintf("_busy_timeout=%d", timeout), "_foreign_keys=on")
		if !memory {
			params = append(params, "_journal_mode=WAL", "_synchronous=NORMAL")
		}
	default:
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", timeout), "_pragma=foreign_keys(ON)")
		if !memory {
			params = append(params, "_pragma=journal_mode(WAL)", "_pragma=synchronous(NORMAL)")
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}
