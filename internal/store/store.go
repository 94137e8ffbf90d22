// ABOUTME: Unified store opening every cog table on one SQLite database
// ABOUTME: Exposes typed tables plus the domain helpers the bot calls
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harper/seatbot/internal/logging"
	"github.com/harper/seatbot/internal/records"
	"github.com/harper/seatbot/internal/storage/sqlite"
	"github.com/harper/seatbot/internal/table"
)

// Store manages all persistent bot data.
type Store struct {
	db      *sql.DB
	path    string
	logger  *log.Logger
	tables  map[string]*table.Table
	noCache bool

	Counts    *table.Typed[records.UserCount]
	Sounds    *table.Typed[records.Sound]
	Commands  *table.Typed[records.CustomCommand]
	Birthdays *table.Typed[records.Birthday]
	Reminders *table.Typed[records.Reminder]
	Rules     *table.Typed[records.RuleConfig]
	Offenses  *table.Typed[records.Offense]

	// countMu serializes read-modify-write counter increments.
	countMu sync.Mutex
}

// Options configures Open.
type Options struct {
	Path    string
	Storage sqlite.Options
	Logger  *log.Logger
	// NoCache disables the per-table query caches.
	NoCache bool
}

// Open opens the database at opts.Path (default DefaultDBPath) and ensures every table exists.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = sqlite.DefaultDBPath()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := sqlite.Open(opts.Path, opts.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:      db,
		path:    opts.Path,
		logger:  logger,
		tables:  make(map[string]*table.Table),
		noCache: opts.NoCache,
	}
	if err := s.openTables(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("store opened", "path", opts.Path, "tables", len(s.tables))
	return s, nil
}

// OpenInMemory creates an in-memory store (for testing)
func OpenInMemory() (*Store, error) {
	return Open(Options{Path: sqlite.MemoryPath})
}

func (s *Store) openTables() (err error) {
	if s.Counts, err = openTyped[records.UserCount](s, records.CountCodec{}, records.Counts); err != nil {
		return err
	}
	if s.Sounds, err = openTyped[records.Sound](s, records.SoundCodec{}, records.Sounds); err != nil {
		return err
	}
	if s.Commands, err = openTyped[records.CustomCommand](s, records.CommandCodec{}, records.Commands); err != nil {
		return err
	}
	if s.Birthdays, err = openTyped[records.Birthday](s, records.BirthdayCodec{}, records.Birthdays); err != nil {
		return err
	}
	if s.Reminders, err = openTyped[records.Reminder](s, records.ReminderCodec{}, records.Reminders); err != nil {
		return err
	}
	if s.Rules, err = openTyped[records.RuleConfig](s, records.RuleCodec{}, records.Rules); err != nil {
		return err
	}
	if s.Offenses, err = openTyped[records.Offense](s, records.OffenseCodec{}, records.Offenses); err != nil {
		return err
	}
	return nil
}

func openTyped[R any](s *Store, codec table.Codec[R], def records.Definition) (*table.Typed[R], error) {
	opts := append(def.Options(), table.WithDB(s.db), table.WithLogger(s.logger))
	if s.noCache {
		opts = append(opts, table.WithoutCache())
	}
	t, err := table.OpenTyped(codec, def.Name, s.path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s table: %w", def.Name, err)
	}
	s.tables[def.Name] = t.Table()
	return t, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database path
func (s *Store) Path() string {
	return s.path
}

// Table returns the untyped table with the given name.
func (s *Store) Table(name string) (*table.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns every table sorted by name.
func (s *Store) Tables() []*table.Table {
	out := make([]*table.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Increment adds one to a user's counter and returns the new value.
func (s *Store) Increment(ctx context.Context, guildID, userID int64) (int64, error) {
	s.countMu.Lock()
	defer s.countMu.Unlock()

	current, _, err := s.Counts.Get(ctx, table.Match{"guild_id": guildID, "user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to read count: %w", err)
	}
	next := records.UserCount{GuildID: guildID, UserID: userID, Count: current.Count + 1}
	if err := s.Counts.Put(ctx, next); err != nil {
		return 0, fmt.Errorf("failed to save count: %w", err)
	}
	return next.Count, nil
}

// AddReminder schedules a new reminder.
func (s *Store) AddReminder(ctx context.Context, guildID, channelID, authorID int64, due time.Time, message string) (*records.Reminder, error) {
	r, err := records.NewReminder(guildID, channelID, authorID, due, message)
	if err != nil {
		return nil, err
	}
	if err := s.Reminders.Put(ctx, *r); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}
	s.logger.Debug("reminder scheduled", "id", r.ID, "due", r.Due)
	return r, nil
}

// DueReminders returns reminders that are due at now, oldest first.
func (s *Store) DueReminders(ctx context.Context, now time.Time) ([]records.Reminder, error) {
	all, err := s.Reminders.All(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	var due []records.Reminder
	for _, r := range all {
		if r.Overdue(now) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Due.Before(due[j].Due) })
	return due, nil
}

// RuleConfig returns a guild's rule settings, or the defaults if none are stored.
func (s *Store) RuleConfig(ctx context.Context, guildID int64) (records.RuleConfig, error) {
	cfg, ok, err := s.Rules.Get(ctx, table.Match{"guild_id": guildID})
	if err != nil {
		return records.RuleConfig{}, fmt.Errorf("failed to read rules: %w", err)
	}
	if !ok {
		return records.DefaultRuleConfig(guildID), nil
	}
	return cfg, nil
}

// RecordOffense logs an offense and returns how many the user has within the
// guild's cooldown window ending at at.
func (s *Store) RecordOffense(ctx context.Context, guildID, userID int64, at time.Time) (int, error) {
	cfg, err := s.RuleConfig(ctx, guildID)
	if err != nil {
		return 0, err
	}
	if err := s.Offenses.Put(ctx, records.Offense{GuildID: guildID, UserID: userID, At: at}); err != nil {
		return 0, fmt.Errorf("failed to record offense: %w", err)
	}

	all, err := s.Offenses.All(ctx, table.Match{"guild_id": guildID, "user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to list offenses: %w", err)
	}
	since := at.Add(-cfg.Cooldown)
	recent := 0
	for _, o := range all {
		if !o.At.Before(since.Truncate(time.Second)) {
			recent++
		}
	}
	return recent, nil
}

// BirthdaysOn returns the guild members whose birthday falls on t.
func (s *Store) BirthdaysOn(ctx context.Context, guildID int64, t time.Time) ([]records.Birthday, error) {
	all, err := s.Birthdays.All(ctx, table.Match{"guild_id": guildID})
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays: %w", err)
	}
	var out []records.Birthday
	for _, b := range all {
		if b.Is(t) {
			out = append(out, b)
		}
	}
	return out, nil
}
