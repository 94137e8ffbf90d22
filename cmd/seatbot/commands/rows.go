// ABOUTME: CLI commands that read and write table rows
// ABOUTME: get, list, set and remove take field=value arguments
package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/seatbot/internal/rows"
	"github.com/harper/seatbot/internal/table"
)

const maxCellWidth = 40

// NewGetCmd creates the get command
func NewGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <field=value>...",
		Short: "Fetch the single row matching the given fields",
		Long: `Fetch the single row whose fields equal every given value.

Values are parsed according to the column kind. Use "null" for a
nullable column. More than one matching row is an error.

Examples:
  seatbot get counts guild_id=1 user_id=42
  seatbot get sounds guild_id=1 name=airhorn --format json`,
		Args: cobra.MinimumNArgs(2),
		RunE: runGet,
	}
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [field=value]...",
		Short: "List rows, optionally filtered by fields",
		Long: `List every row whose fields equal the given values.
With no filters the whole table is listed.

Examples:
  seatbot list birthdays
  seatbot list offenses guild_id=1 user_id=42 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runList,
	}
}

// NewSetCmd creates the set command
func NewSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <table> <field=value>...",
		Short: "Insert or update a row",
		Long: `Insert a row, or update the existing row with the same primary key.
Every column must be given.

Examples:
  seatbot set counts guild_id=1 user_id=42 count=7
  seatbot set commands guild_id=1 name=hello response="hi there"`,
		Args: cobra.MinimumNArgs(2),
		RunE: runSet,
	}
}

// NewRemoveCmd creates the remove command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <table> <field=value>...",
		Short: "Delete the row with the given primary key",
		Long: `Delete rows by primary key. Exactly the primary key fields must be given.

Examples:
  seatbot remove counts guild_id=1 user_id=42`,
		Args: cobra.MinimumNArgs(2),
		RunE: runRemove,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	t, err := lookupTable(s, args[0])
	if err != nil {
		return err
	}
	m, err := rows.Pairs(t, args[1:])
	if err != nil {
		return err
	}
	row, err := t.Get(cmd.Context(), m)
	if err != nil {
		return err
	}

	if wantJSON(cmd.OutOrStdout()) {
		if row == nil {
			return writeJSON(cmd.OutOrStdout(), nil)
		}
		return writeJSON(cmd.OutOrStdout(), rows.Map(t, row))
	}
	if row == nil {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No matching row\n")
		}
		return nil
	}
	return printRows(cmd.OutOrStdout(), t, []table.Row{row})
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	t, err := lookupTable(s, args[0])
	if err != nil {
		return err
	}
	m, err := rows.Pairs(t, args[1:])
	if err != nil {
		return err
	}
	found, err := t.All(cmd.Context(), m)
	if err != nil {
		return err
	}

	if wantJSON(cmd.OutOrStdout()) {
		out := make([]map[string]any, 0, len(found))
		for _, row := range found {
			out = append(out, rows.Map(t, row))
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}
	if len(found) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No rows found\n")
		}
		return nil
	}
	if err := printRows(cmd.OutOrStdout(), t, found); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d row(s)\n", len(found))
	}
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	t, err := lookupTable(s, args[0])
	if err != nil {
		return err
	}
	m, err := rows.Pairs(t, args[1:])
	if err != nil {
		return err
	}
	row, err := rows.Build(t, m)
	if err != nil {
		return err
	}
	if err := t.Update(cmd.Context(), row); err != nil {
		return err
	}

	if wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd.OutOrStdout(), rows.Map(t, row))
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved row in %s\n", t.Name())
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	t, err := lookupTable(s, args[0])
	if err != nil {
		return err
	}
	m, err := rows.Pairs(t, args[1:])
	if err != nil {
		return err
	}
	n, err := t.Remove(cmd.Context(), m)
	if err != nil {
		return err
	}

	if wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd.OutOrStdout(), map[string]int64{"removed": n})
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d row(s) from %s\n", n, t.Name())
	}
	return nil
}

func printRows(out io.Writer, t *table.Table, found []table.Row) error {
	cols := t.Columns()
	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, d := range cols {
		header[i] = strings.ToUpper(d.Name)
		rule[i] = strings.Repeat("-", len(d.Name))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	fmt.Fprintln(w, strings.Join(rule, "\t"))
	for _, row := range found {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = truncate(rows.Format(v), maxCellWidth)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}
