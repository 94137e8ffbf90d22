// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Store opening from config, output formatting and small helpers
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harper/seatbot/internal/config"
	"github.com/harper/seatbot/internal/logging"
	"github.com/harper/seatbot/internal/store"
	"github.com/harper/seatbot/internal/table"
)

// loadConfig reads .env, the config file and the environment, then applies flags.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	switch {
	case verbose:
		cfg.LogLevel = "debug"
	case quiet:
		cfg.LogLevel = "error"
	}
	return cfg, nil
}

// newLogger builds the CLI logger on stderr.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*log.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
}

// openStore opens the configured database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	s, _, err := openStoreWithLogger(cmd)
	return s, err
}

// openStoreWithLogger opens the configured database and returns its logger.
func openStoreWithLogger(cmd *cobra.Command) (*store.Store, *log.Logger, error) {
	if err := validateFormat(outputFormat); err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Open(store.Options{
		Path:    cfg.DBPath(),
		Storage: cfg.StorageOptions(),
		Logger:  logger,
		NoCache: !cfg.QueryCache,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return s, logger, nil
}

// lookupTable returns the named table or a helpful error.
func lookupTable(s *store.Store, name string) (*table.Table, error) {
	t, ok := s.Table(name)
	if !ok {
		return nil, fmt.Errorf("unknown table %q (see 'seatbot tables')", name)
	}
	return t, nil
}

func validateFormat(format string) error {
	switch format {
	case "auto", "json", "table":
		return nil
	}
	return fmt.Errorf("--format must be auto, json or table, got %q", format)
}

// wantJSON resolves --format for out. Auto picks JSON unless out is a terminal.
func wantJSON(out io.Writer) bool {
	switch outputFormat {
	case "json":
		return true
	case "table":
		return false
	}
	return !isTerminal(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats t relative to now, in the past or the future
func formatTime(t, now time.Time) string {
	diff := t.Sub(now)
	suffix := "from now"
	if diff < 0 {
		diff = -diff
		suffix = "ago"
	}

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm %s", int(diff.Minutes()), suffix)
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh %s", int(diff.Hours()), suffix)
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd %s", int(diff.Hours()/24), suffix)
	}
	return t.Format("2006-01-02")
}
