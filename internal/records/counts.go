// ABOUTME: Per-user counters scoped to a guild
// ABOUTME: Keyed by (guild_id, user_id)
package records

import "github.com/harper/seatbot/internal/table"

// Counts is the per-user counter table.
var Counts = Definition{Name: "counts", PrimaryKeys: []string{"guild_id", "user_id"}}

// UserCount is how many times a user has triggered a counted event in a guild.
type UserCount struct {
	GuildID int64 `json:"guild_id"`
	UserID  int64 `json:"user_id"`
	Count   int64 `json:"count"`
}

// CountCodec stores UserCount rows.
type CountCodec struct{}

func (CountCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("guild_id", table.Int),
		table.Column("user_id", table.Int),
		table.Column("count", table.Int),
	}
}

func (CountCodec) Encode(c UserCount) table.Row {
	return table.Row{c.GuildID, c.UserID, c.Count}
}

func (CountCodec) Decode(row table.Row) (UserCount, error) {
	if err := checkArity(Counts.Name, row, 3); err != nil {
		return UserCount{}, err
	}
	return UserCount{GuildID: row.Int(0), UserID: row.Int(1), Count: row.Int(2)}, nil
}
