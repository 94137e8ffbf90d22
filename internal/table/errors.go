// ABOUTME: Sentinel errors for the typed row-table engine
// ABOUTME: Callers match failures with errors.Is against these values
package table

import "errors"

var (
	// ErrSchema is returned when a record schema cannot be mapped onto a SQL table.
	ErrSchema = errors.New("table: schema error")

	// ErrValidation is returned for malformed predicates, rows or primary key declarations.
	ErrValidation = errors.New("table: invalid argument")

	// ErrIntegrity is returned when a statement touches more rows than the primary key allows.
	ErrIntegrity = errors.New("table: integrity violation")

	// ErrRemoveUnsupported is returned by Remove on tables where removal is undefined.
	ErrRemoveUnsupported = errors.New("table: remove is not supported")
)
