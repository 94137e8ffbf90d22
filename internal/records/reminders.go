// ABOUTME: Scheduled reminders posted back to a channel when due
// ABOUTME: Keyed by a generated UUID; due time stored as unix seconds
package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harper/seatbot/internal/table"
)

// Reminders is the reminder table.
var Reminders = Definition{Name: "reminders", PrimaryKeys: []string{"reminder_id"}}

// Reminder is a message to post in ChannelID at Due.
type Reminder struct {
	ID        string    `json:"reminder_id"`
	GuildID   int64     `json:"guild_id"`
	ChannelID int64     `json:"channel_id"`
	AuthorID  int64     `json:"author_id"`
	Due       time.Time `json:"due"`
	Message   string    `json:"message"`
}

// NewReminder creates a reminder with a fresh ID.
func NewReminder(guildID, channelID, authorID int64, due time.Time, message string) (*Reminder, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("reminder message cannot be empty")
	}
	if due.IsZero() {
		return nil, fmt.Errorf("reminder due time cannot be zero")
	}
	return &Reminder{
		ID:        uuid.New().String(),
		GuildID:   guildID,
		ChannelID: channelID,
		AuthorID:  authorID,
		Due:       due.UTC().Truncate(time.Second),
		Message:   message,
	}, nil
}

// Overdue reports whether the reminder should have fired by now.
func (r Reminder) Overdue(now time.Time) bool {
	return !r.Due.After(now)
}

// ReminderCodec stores Reminder rows.
type ReminderCodec struct{}

func (ReminderCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("reminder_id", table.Text),
		table.Column("guild_id", table.Int),
		table.Column("channel_id", table.Int),
		table.Column("author_id", table.Int),
		table.Column("due", table.Int),
		table.Column("message", table.Text),
	}
}

func (ReminderCodec) Encode(r Reminder) table.Row {
	return table.Row{r.ID, r.GuildID, r.ChannelID, r.AuthorID, r.Due.Unix(), r.Message}
}

func (ReminderCodec) Decode(row table.Row) (Reminder, error) {
	if err := checkArity(Reminders.Name, row, 6); err != nil {
		return Reminder{}, err
	}
	if _, err := uuid.Parse(row.Text(0)); err != nil {
		return Reminder{}, fmt.Errorf("invalid reminder id %q: %w", row.Text(0), err)
	}
	return Reminder{
		ID:        row.Text(0),
		GuildID:   row.Int(1),
		ChannelID: row.Int(2),
		AuthorID:  row.Int(3),
		Due:       time.Unix(row.Int(4), 0).UTC(),
		Message:   row.Text(5),
	}, nil
}
