// ABOUTME: SQL statement fragments generated from field names
// ABOUTME: Named placeholders (:field) are bound with sql.Named by the engine
package table

import "strings"

// InsertPlaceholders returns ":a, :b" for fields (a, b).
func InsertPlaceholders(fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = ":" + f
	}
	return strings.Join(parts, ", ")
}

// UpdateAssignments returns "a = :a, b = :b" for fields (a, b).
func UpdateAssignments(fields []string) string {
	return strings.Join(equalities(fields), ", ")
}

// SearchConjunction returns "a = :a AND b = :b" for fields (a, b).
func SearchConjunction(fields []string) string {
	return strings.Join(equalities(fields), " AND ")
}

func equalities(fields []string) []string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + " = :" + f
	}
	return parts
}

// CreateTable returns the idempotent DDL for a table with the given columns.
func CreateTable(name string, columns []Descriptor) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c.Definition()
	}
	return "CREATE TABLE IF NOT EXISTS " + name + " (" + strings.Join(defs, ", ") + ")"
}

func selectQuery(name string, columns, where []string) string {
	query := "SELECT " + strings.Join(columns, ", ") + " FROM " + name
	return appendWhere(query, where)
}

func insertStatement(name string, columns []string) string {
	return "INSERT INTO " + name + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		InsertPlaceholders(columns) + ")"
}

func updateStatement(name string, columns, where []string) string {
	return appendWhere("UPDATE "+name+" SET "+UpdateAssignments(columns), where)
}

func deleteStatement(name string, where []string) string {
	return appendWhere("DELETE FROM "+name, where)
}

func appendWhere(query string, where []string) string {
	if len(where) == 0 {
		return query
	}
	return query + " WHERE " + SearchConjunction(where)
}
