// ABOUTME: CLI commands describing the tables in the database
// ABOUTME: tables lists every table; schema shows one table's columns
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/seatbot/internal/table"
)

// tableInfo is the JSON shape of a table summary.
type tableInfo struct {
	Name        string   `json:"name"`
	PrimaryKeys []string `json:"primary_keys"`
	Removable   bool     `json:"removable"`
	Columns     int      `json:"columns"`
}

// columnInfo is the JSON shape of one column.
type columnInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	SQLType    string `json:"sql_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// NewTablesCmd creates the tables command
func NewTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables",
		Long: `List every table with its primary keys.

Examples:
  seatbot tables
  seatbot tables --format json`,
		Args: cobra.NoArgs,
		RunE: runTables,
	}
}

// NewSchemaCmd creates the schema command
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <table>",
		Short: "Show a table's columns",
		Long: `Show the columns of a table with their kinds and SQL types.

Examples:
  seatbot schema counts
  seatbot schema sounds --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runSchema,
	}
}

func runTables(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	infos := make([]tableInfo, 0)
	for _, t := range s.Tables() {
		infos = append(infos, describeTable(t))
	}

	if wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd.OutOrStdout(), infos)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TABLE\tPRIMARY KEY\tCOLUMNS\tREMOVE\n")
	fmt.Fprintf(w, "-----\t-----------\t-------\t------\n")
	for _, info := range infos {
		pk := strings.Join(info.PrimaryKeys, ", ")
		if pk == "" {
			pk = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\n", info.Name, pk, info.Columns, info.Removable)
	}
	return w.Flush()
}

func runSchema(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	t, err := lookupTable(s, args[0])
	if err != nil {
		return err
	}
	cols := describeColumns(t)

	if wantJSON(cmd.OutOrStdout()) {
		return writeJSON(cmd.OutOrStdout(), cols)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "COLUMN\tKIND\tSQL TYPE\tKEY\n")
	fmt.Fprintf(w, "------\t----\t--------\t---\n")
	for _, c := range cols {
		key := ""
		if c.PrimaryKey {
			key = "PK"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.Kind, c.SQLType, key)
	}
	return w.Flush()
}

func describeTable(t *table.Table) tableInfo {
	pk := t.PrimaryKeys()
	if pk == nil {
		pk = []string{}
	}
	return tableInfo{
		Name:        t.Name(),
		PrimaryKeys: pk,
		Removable:   t.Removable(),
		Columns:     len(t.Columns()),
	}
}

func describeColumns(t *table.Table) []columnInfo {
	pk := make(map[string]bool)
	for _, name := range t.PrimaryKeys() {
		pk[name] = true
	}
	cols := make([]columnInfo, 0, len(t.Columns()))
	for _, d := range t.Columns() {
		kind := d.Kind.String()
		if d.Nullable {
			kind += " | null"
		}
		cols = append(cols, columnInfo{
			Name:       d.Name,
			Kind:       kind,
			SQLType:    d.SQLType,
			Nullable:   d.Nullable,
			PrimaryKey: pk[d.Name],
		})
	}
	return cols
}
