// ABOUTME: CLI command to schedule and list reminders
// ABOUTME: Uses the store's reminder helpers so ids and due times match the bot
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var (
	remindDue bool
)

// NewRemindCmd creates the remind command
func NewRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind <guild> <channel> <author> <in> <message>...",
		Short: "Schedule a reminder or list due reminders",
		Long: `Schedule a reminder that fires after the given duration.

The duration uses Go syntax (90s, 15m, 2h30m). With --due, list the
reminders that are due now instead.

Examples:
  seatbot remind 1 10 42 15m stretch your legs
  seatbot remind --due`,
		RunE: runRemind,
	}

	cmd.Flags().BoolVar(&remindDue, "due", false, "List reminders that are due now")

	return cmd
}

func runRemind(cmd *cobra.Command, args []string) error {
	if remindDue {
		if len(args) != 0 {
			return fmt.Errorf("--due takes no arguments")
		}
		return listDue(cmd)
	}
	if len(args) < 5 {
		return fmt.Errorf("expected <guild> <channel> <author> <in> <message>, got %d argument(s)", len(args))
	}

	ids := make([]int64, 3)
	for i, name := range []string{"guild", "channel", "author"} {
		id, err := cast.ToInt64E(args[i])
		if err != nil {
			return fmt.Errorf("%s must be an integer id, got %q", name, args[i])
		}
		ids[i] = id
	}
	in, err := time.ParseDuration(args[3])
	if err != nil {
		return fmt.Errorf("parsing duration: %w", err)
	}
	if in <= 0 {
		return fmt.Errorf("duration must be positive, got %s", in)
	}
	message := strings.Join(args[4:], " ")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	r, err := s.AddReminder(cmd.Context(), ids[0], ids[1], ids[2], time.Now().Add(in), message)
	if err != nil {
		return err
	}

	if wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd.OutOrStdout(), r)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Reminder %s scheduled for %s\n", r.ID, r.Due.Local().Format(time.RFC3339))
	}
	return nil
}

func listDue(cmd *cobra.Command) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	due, err := s.DueReminders(cmd.Context(), now)
	if err != nil {
		return err
	}

	if wantJSON(cmd.OutOrStdout()) {
		if due == nil {
			return writeJSON(cmd.OutOrStdout(), []any{})
		}
		return writeJSON(cmd.OutOrStdout(), due)
	}
	if len(due) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No reminders due\n")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DUE\tCHANNEL\tMESSAGE\tID\n")
	fmt.Fprintf(w, "---\t-------\t-------\t--\n")
	for _, r := range due {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", formatTime(r.Due, now), r.ChannelID, truncate(r.Message, maxCellWidth), r.ID)
	}
	return w.Flush()
}
