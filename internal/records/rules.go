// ABOUTME: Per-guild rule enforcement settings and the offense log
// ABOUTME: Offenses are append-only and cannot be removed through the table
package records

import (
	"fmt"
	"time"

	"github.com/harper/seatbot/internal/table"
)

// Rules is the per-guild rule settings table.
var Rules = Definition{Name: "rules", PrimaryKeys: []string{"guild_id"}}

// Offenses is the append-only offense log.
var Offenses = Definition{Name: "offenses", AppendOnly: true}

// RuleConfig controls how rule violations are punished in a guild.
type RuleConfig struct {
	GuildID     int64         `json:"guild_id"`
	Enabled     bool          `json:"enabled"`
	MaxOffenses int64         `json:"max_offenses"`
	Cooldown    time.Duration `json:"cooldown"`
}

// DefaultRuleConfig is used for guilds that never changed their settings.
func DefaultRuleConfig(guildID int64) RuleConfig {
	return RuleConfig{GuildID: guildID, Enabled: false, MaxOffenses: 3, Cooldown: 10 * time.Minute}
}

// Validate checks the settings are enforceable.
func (c RuleConfig) Validate() error {
	if c.MaxOffenses < 1 {
		return fmt.Errorf("max offenses must be at least 1, got %d", c.MaxOffenses)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("cooldown cannot be negative, got %s", c.Cooldown)
	}
	return nil
}

// RuleCodec stores RuleConfig rows. Cooldown is kept as REAL seconds.
type RuleCodec struct{}

func (RuleCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("guild_id", table.Int),
		table.Column("enabled", table.Bool),
		table.Column("max_offenses", table.Int),
		table.Column("cooldown", table.Float),
	}
}

func (RuleCodec) Encode(c RuleConfig) table.Row {
	return table.Row{c.GuildID, c.Enabled, c.MaxOffenses, c.Cooldown.Seconds()}
}

func (RuleCodec) Decode(row table.Row) (RuleConfig, error) {
	if err := checkArity(Rules.Name, row, 4); err != nil {
		return RuleConfig{}, err
	}
	return RuleConfig{
		GuildID:     row.Int(0),
		Enabled:     row.Bool(1),
		MaxOffenses: row.Int(2),
		Cooldown:    time.Duration(row.Float(3) * float64(time.Second)),
	}, nil
}

// Offense is one recorded rule violation.
type Offense struct {
	GuildID int64     `json:"guild_id"`
	UserID  int64     `json:"user_id"`
	At      time.Time `json:"at"`
}

// OffenseCodec stores Offense rows.
type OffenseCodec struct{}

func (OffenseCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("guild_id", table.Int),
		table.Column("user_id", table.Int),
		table.Column("at", table.Int),
	}
}

func (OffenseCodec) Encode(o Offense) table.Row {
	return table.Row{o.GuildID, o.UserID, o.At.Unix()}
}

func (OffenseCodec) Decode(row table.Row) (Offense, error) {
	if err := checkArity(Offenses.Name, row, 3); err != nil {
		return Offense{}, err
	}
	return Offense{GuildID: row.Int(0), UserID: row.Int(1), At: time.Unix(row.Int(2), 0).UTC()}, nil
}
