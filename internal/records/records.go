// ABOUTME: Record types persisted by the bot's cogs through the table engine
// ABOUTME: Each record has a Codec and a Definition naming its table and keys
package records

import (
	"fmt"

	"github.com/harper/seatbot/internal/table"
)

// Definition names the table a record lives in and how it is keyed.
type Definition struct {
	Name        string
	PrimaryKeys []string
	// AppendOnly tables have no primary key and reject Remove.
	AppendOnly bool
}

// Options returns the table options for the definition.
func (d Definition) Options() []table.Option {
	opts := []table.Option{table.PrimaryKey(d.PrimaryKeys...)}
	if d.AppendOnly {
		opts = append(opts, table.WithoutRemove())
	}
	return opts
}

func checkArity(name string, row table.Row, want int) error {
	if len(row) != want {
		return fmt.Errorf("%s row has %d fields, want %d", name, len(row), want)
	}
	return nil
}
