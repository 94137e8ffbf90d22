// ABOUTME: Table engine mapping a static record schema onto one SQL table
// ABOUTME: Provides get, all, upsert and primary-key scoped remove with a query cache
package table

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harper/seatbot/internal/logging"
	"github.com/harper/seatbot/internal/storage/sqlite"
)

// Table is a persistent relation bound to one record schema.
//
// A Table is the only coherent owner of its query cache: two Tables opened on
// the same storage path serve stale reads after each other's writes.
type Table struct {
	name        string
	path        string
	columns     []Descriptor
	fieldNames  []string
	byName      map[string]Descriptor
	primaryKeys []string

	db     *sql.DB
	ownsDB bool
	cache  *queryCache
	logger *log.Logger

	removable bool

	// writeMu serializes upserts issued through this Table.
	writeMu sync.Mutex
}

type settings struct {
	primaryKeys []string
	storage     sqlite.Options
	db          *sql.DB
	logger      *log.Logger
	noCache     bool
	noRemove    bool
}

// Option configures Open.
type Option func(*settings)

// PrimaryKey declares the fields that identify a row.
func PrimaryKey(fields ...string) Option {
	return func(s *settings) { s.primaryKeys = append([]string(nil), fields...) }
}

// WithStorage sets the driver options used to open the storage path.
func WithStorage(opts sqlite.Options) Option {
	return func(s *settings) { s.storage = opts }
}

// WithDB uses an already open pool instead of opening path. The caller keeps
// ownership and Close does not close it.
func WithDB(db *sql.DB) Option {
	return func(s *settings) { s.db = db }
}

// WithLogger sets the logger for DDL and statement tracing.
func WithLogger(logger *log.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithoutCache disables the query cache; every read goes to storage.
func WithoutCache() Option {
	return func(s *settings) { s.noCache = true }
}

// WithoutRemove disables Remove for row shapes where removal is undefined.
func WithoutRemove() Option {
	return func(s *settings) { s.noRemove = true }
}

// Open binds schema to the table name at path, creating the table if absent.
func Open(schema Schema, name, path string, opts ...Option) (*Table, error) {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	if !identifier.MatchString(name) {
		return nil, fmt.Errorf("%w: %q is not a valid table name", ErrSchema, name)
	}
	columns, err := Describe(schema)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Descriptor, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}
	seen := make(map[string]bool, len(cfg.primaryKeys))
	for _, key := range cfg.primaryKeys {
		col, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("%w: primary key %q is not a field of %s", ErrValidation, key, name)
		}
		if col.Nullable {
			return nil, fmt.Errorf("%w: primary key %q of %s cannot be nullable", ErrSchema, key, name)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: primary key %q declared twice", ErrValidation, key)
		}
		seen[key] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = logging.Discard()
	}

	t := &Table{
		name:        name,
		path:        path,
		columns:     columns,
		fieldNames:  schema.Names(),
		byName:      byName,
		primaryKeys: cfg.primaryKeys,
		db:          cfg.db,
		logger:      logger.With("table", name),
		removable:   len(cfg.primaryKeys) > 0 && !cfg.noRemove,
	}
	if !cfg.noCache {
		t.cache = newQueryCache()
	}

	if t.db == nil {
		db, err := sqlite.Open(path, cfg.storage)
		if err != nil {
			return nil, err
		}
		t.db = db
		t.ownsDB = true
	}

	ddl := CreateTable(name, columns)
	t.logger.Debug("ensuring table", "ddl", ddl)
	if _, err := t.db.Exec(ddl); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}

	return t, nil
}

// Close releases the connection pool if the Table opened it.
func (t *Table) Close() error {
	if t.ownsDB && t.db != nil {
		return t.db.Close()
	}
	return nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Path returns the storage path the table was opened on.
func (t *Table) Path() string { return t.path }

// Columns returns the column descriptors in field order.
func (t *Table) Columns() []Descriptor {
	return append([]Descriptor(nil), t.columns...)
}

// Column returns the descriptor for a field.
func (t *Table) Column(name string) (Descriptor, bool) {
	d, ok := t.byName[name]
	return d, ok
}

// PrimaryKeys returns the declared primary key fields.
func (t *Table) PrimaryKeys() []string {
	return append([]string(nil), t.primaryKeys...)
}

// Removable reports whether Remove is supported.
func (t *Table) Removable() bool { return t.removable }

// CacheStats reports cache activity for op. A Table without a cache reports zeros.
func (t *Table) CacheStats(op Op) CacheStats {
	if t.cache == nil {
		return CacheStats{}
	}
	return t.cache.statsFor(op)
}

// InvalidateCache drops every cached query result.
func (t *Table) InvalidateCache() {
	if t.cache != nil {
		t.cache.invalidate()
	}
}

// Get returns the single row matching m, or nil when none does.
func (t *Table) Get(ctx context.Context, m Match) (Row, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: at least one argument must be provided", ErrValidation)
	}
	match, err := t.normalizeMatch(m)
	if err != nil {
		return nil, err
	}

	v, err := t.cached(ctx, OpGet, match, func(ctx context.Context) (any, error) {
		rows, err := t.query(ctx, match)
		if err != nil {
			return nil, err
		}
		switch len(rows) {
		case 0:
			return Row(nil), nil
		case 1:
			return rows[0], nil
		}
		return nil, fmt.Errorf("%w: found multiple matching rows in %s for %s", ErrIntegrity, t.name, describeMatch(match))
	})
	if err != nil {
		return nil, err
	}
	return v.(Row).Clone(), nil
}

// All returns every row matching m in storage order. An empty m matches every row.
func (t *Table) All(ctx context.Context, m Match) ([]Row, error) {
	match, err := t.normalizeMatch(m)
	if err != nil {
		return nil, err
	}

	v, err := t.cached(ctx, OpAll, match, func(ctx context.Context) (any, error) {
		return t.query(ctx, match)
	})
	if err != nil {
		return nil, err
	}

	cached := v.([]Row)
	out := make([]Row, len(cached))
	for i, r := range cached {
		out[i] = r.Clone()
	}
	return out, nil
}

// Update writes row, replacing the row with the same primary key if one exists.
func (t *Table) Update(ctx context.Context, row Row) error {
	values, err := t.normalizeRow(row)
	if err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	conn, err := t.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := t.namedArgs(t.fieldNames, values)

	var affected int64
	if len(t.primaryKeys) > 0 {
		stmt := updateStatement(t.name, t.fieldNames, t.primaryKeys)
		t.logger.Debug("exec", "sql", stmt)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", t.name, err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update %s: %w", t.name, err)
		}
		if affected > 1 {
			return fmt.Errorf("%w: updated more than one row in %s (%d rows)", ErrIntegrity, t.name, affected)
		}
	}

	if affected == 0 {
		stmt := insertStatement(t.name, t.fieldNames)
		t.logger.Debug("exec", "sql", stmt)
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", t.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	t.InvalidateCache()
	return nil
}

// Remove deletes the row identified by exactly the primary key fields and
// returns the number of rows deleted.
func (t *Table) Remove(ctx context.Context, m Match) (int64, error) {
	if !t.removable {
		return 0, fmt.Errorf("%w: %s", ErrRemoveUnsupported, t.name)
	}
	if !sameKeys(m.Keys(), t.primaryKeys) {
		return 0, fmt.Errorf("%w: arguments %v must be the primary keys %v",
			ErrValidation, m.Keys(), t.primaryKeys)
	}
	match, err := t.normalizeMatch(m)
	if err != nil {
		return 0, err
	}

	defer t.InvalidateCache()

	conn, err := t.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	keys := match.Keys()
	stmt := deleteStatement(t.name, keys)
	t.logger.Debug("exec", "sql", stmt)
	res, err := conn.ExecContext(ctx, stmt, t.matchArgs(match)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}
	return res.RowsAffected()
}

func (t *Table) cached(ctx context.Context, op Op, m Match, load func(context.Context) (any, error)) (any, error) {
	if t.cache == nil {
		return load(ctx)
	}
	return t.cache.lookup(ctx, op, m, load)
}

func (t *Table) query(ctx context.Context, m Match) ([]Row, error) {
	conn, err := t.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	stmt := selectQuery(t.name, t.fieldNames, m.Keys())
	t.logger.Debug("query", "sql", stmt)
	rows, err := conn.QueryContext(ctx, stmt, t.matchArgs(m)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	defer func() { _ = rows.Close() }()

	out := []Row{}
	for rows.Next() {
		raw := make([]any, len(t.columns))
		dest := make([]any, len(t.columns))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
		}

		row := make(Row, len(t.columns))
		for i, c := range t.columns {
			v, err := fromStorage(c, raw[i])
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", t.name, err)
			}
			row[i] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalizeMatch validates field names and value kinds.
func (t *Table) normalizeMatch(m Match) (Match, error) {
	out := make(Match, len(m))
	for name, v := range m {
		c, ok := t.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a member of %s", ErrValidation, name, t.name)
		}
		nv, ok := coerce(c.Kind, v)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be %s, got %T", ErrValidation, name, c.Kind, v)
		}
		out[name] = nv
	}
	return out, nil
}

// normalizeRow validates arity, value kinds and nullability.
func (t *Table) normalizeRow(row Row) (Row, error) {
	if len(row) != len(t.columns) {
		return nil, fmt.Errorf("%w: %s rows have %d fields, got %d", ErrValidation, t.name, len(t.columns), len(row))
	}
	out := make(Row, len(row))
	for i, c := range t.columns {
		if row[i] == nil {
			if !c.Nullable {
				return nil, fmt.Errorf("%w: %s may not be null", ErrValidation, c.Name)
			}
			continue
		}
		v, ok := coerce(c.Kind, row[i])
		if !ok {
			return nil, fmt.Errorf("%w: %s must be %s, got %T", ErrValidation, c.Name, c.Kind, row[i])
		}
		out[i] = v
	}
	return out, nil
}

func (t *Table) namedArgs(fields []string, values Row) []any {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = sql.Named(f, values[i])
	}
	return args
}

func (t *Table) matchArgs(m Match) []any {
	keys := m.Keys()
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = sql.Named(k, m[k])
	}
	return args
}

func sameKeys(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	set := make(map[string]bool, len(want))
	for _, k := range want {
		set[k] = true
	}
	for _, k := range got {
		if !set[k] {
			return false
		}
	}
	return true
}

func describeMatch(m Match) string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
