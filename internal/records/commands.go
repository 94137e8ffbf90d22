// ABOUTME: Custom text commands defined by guild members
// ABOUTME: Keyed by (guild_id, name)
package records

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/harper/seatbot/internal/table"
)

// Commands is the custom command table.
var Commands = Definition{Name: "commands", PrimaryKeys: []string{"guild_id", "name"}}

// MaxResponseLength is the longest message a command may reply with.
const MaxResponseLength = 2000

// CustomCommand replies with Response when Name is invoked.
type CustomCommand struct {
	GuildID  int64  `json:"guild_id"`
	Name     string `json:"name"`
	Response string `json:"response"`
}

// NewCustomCommand validates and normalizes a command definition.
func NewCustomCommand(guildID int64, name, response string) (*CustomCommand, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, " \t\n") {
		return nil, fmt.Errorf("command name must be a single word")
	}
	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("command response cannot be empty")
	}
	if utf8.RuneCountInString(response) > MaxResponseLength {
		return nil, fmt.Errorf("command response exceeds %d characters", MaxResponseLength)
	}
	return &CustomCommand{GuildID: guildID, Name: name, Response: response}, nil
}

// CommandCodec stores CustomCommand rows.
type CommandCodec struct{}

func (CommandCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("guild_id", table.Int),
		table.Column("name", table.Text),
		table.Column("response", table.Text),
	}
}

func (CommandCodec) Encode(c CustomCommand) table.Row {
	return table.Row{c.GuildID, c.Name, c.Response}
}

func (CommandCodec) Decode(row table.Row) (CustomCommand, error) {
	if err := checkArity(Commands.Name, row, 3); err != nil {
		return CustomCommand{}, err
	}
	return CustomCommand{GuildID: row.Int(0), Name: row.Text(1), Response: row.Text(2)}, nil
}
