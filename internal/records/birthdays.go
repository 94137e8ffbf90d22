// ABOUTME: Member birthdays announced once a year per guild
// ABOUTME: Stored as month/day so no year is kept
package records

import (
	"fmt"
	"time"

	"github.com/harper/seatbot/internal/table"
)

// Birthdays is the birthday table.
var Birthdays = Definition{Name: "birthdays", PrimaryKeys: []string{"guild_id", "user_id"}}

// Birthday is a member's birth month and day.
type Birthday struct {
	GuildID int64 `json:"guild_id"`
	UserID  int64 `json:"user_id"`
	Month   int64 `json:"month"`
	Day     int64 `json:"day"`
}

// NewBirthday validates the date against a leap year so Feb 29 is accepted.
func NewBirthday(guildID, userID int64, month, day int) (*Birthday, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month must be 1-12, got %d", month)
	}
	d := time.Date(2000, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || d.Month() != time.Month(month) {
		return nil, fmt.Errorf("day %d is not valid for %s", day, time.Month(month))
	}
	return &Birthday{GuildID: guildID, UserID: userID, Month: int64(month), Day: int64(day)}, nil
}

// Is reports whether t falls on the birthday. Feb 29 birthdays are
// celebrated on Feb 28 in common years.
func (b Birthday) Is(t time.Time) bool {
	month, day := int64(t.Month()), int64(t.Day())
	if b.Month == 2 && b.Day == 29 && !isLeap(t.Year()) {
		return month == 2 && day == 28
	}
	return month == b.Month && day == b.Day
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// BirthdayCodec stores Birthday rows.
type BirthdayCodec struct{}

func (BirthdayCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("guild_id", table.Int),
		table.Column("user_id", table.Int),
		table.Column("month", table.Int),
		table.Column("day", table.Int),
	}
}

func (BirthdayCodec) Encode(b Birthday) table.Row {
	return table.Row{b.GuildID, b.UserID, b.Month, b.Day}
}

func (BirthdayCodec) Decode(row table.Row) (Birthday, error) {
	if err := checkArity(Birthdays.Name, row, 4); err != nil {
		return Birthday{}, err
	}
	return Birthday{GuildID: row.Int(0), UserID: row.Int(1), Month: row.Int(2), Day: row.Int(3)}, nil
}
