// ABOUTME: MCP tool handler implementations for the seatbot server
// ABOUTME: Converts JSON arguments through the rows package and calls the table engine
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/seatbot/internal/rows"
	"github.com/harper/seatbot/internal/store"
	"github.com/harper/seatbot/internal/table"
)

const defaultListLimit = 100

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	store  *store.Store
	logger *log.Logger
}

// TableInfo summarizes one table.
type TableInfo struct {
	Name        string   `json:"name"`
	PrimaryKeys []string `json:"primary_keys"`
	Removable   bool     `json:"removable"`
}

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	SQLType    string `json:"sql_type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primary_key"`
}

// ListTables handles the list_tables tool
func (h *Handlers) ListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos := make([]TableInfo, 0)
	for _, t := range h.store.Tables() {
		pk := t.PrimaryKeys()
		if pk == nil {
			pk = []string{}
		}
		infos = append(infos, TableInfo{Name: t.Name(), PrimaryKeys: pk, Removable: t.Removable()})
	}
	return jsonResult(map[string]interface{}{"tables": infos})
}

// DescribeTable handles the describe_table tool
func (h *Handlers) DescribeTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, errResult := h.table(request)
	if errResult != nil {
		return errResult, nil
	}

	pk := make(map[string]bool)
	for _, name := range t.PrimaryKeys() {
		pk[name] = true
	}
	cols := make([]ColumnInfo, 0, len(t.Columns()))
	for _, d := range t.Columns() {
		cols = append(cols, ColumnInfo{
			Name:       d.Name,
			Kind:       d.Kind.String(),
			SQLType:    d.SQLType,
			Nullable:   d.Nullable,
			PrimaryKey: pk[d.Name],
		})
	}
	return jsonResult(map[string]interface{}{"table": t.Name(), "columns": cols})
}

// GetRow handles the get_row tool
func (h *Handlers) GetRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, errResult := h.table(request)
	if errResult != nil {
		return errResult, nil
	}
	m, err := objectArg(request, t, "match", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, err := t.Get(ctx, m)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get failed: %v", err)), nil
	}
	var out map[string]any
	if row != nil {
		out = rows.Map(t, row)
	}
	return jsonResult(map[string]interface{}{"row": out})
}

// ListRows handles the list_rows tool
func (h *Handlers) ListRows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, errResult := h.table(request)
	if errResult != nil {
		return errResult, nil
	}
	m, err := objectArg(request, t, "match", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := request.GetInt("limit", defaultListLimit)
	if limit <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be positive, got %d", limit)), nil
	}

	found, err := t.All(ctx, m)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	total := len(found)
	if len(found) > limit {
		found = found[:limit]
	}
	out := make([]map[string]any, 0, len(found))
	for _, row := range found {
		out = append(out, rows.Map(t, row))
	}
	return jsonResult(map[string]interface{}{"rows": out, "total": total})
}

// UpsertRow handles the upsert_row tool
func (h *Handlers) UpsertRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, errResult := h.table(request)
	if errResult != nil {
		return errResult, nil
	}
	m, err := objectArg(request, t, "row", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := rows.Build(t, m)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.Update(ctx, row); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("upsert failed: %v", err)), nil
	}
	h.logger.Debug("row upserted via mcp", "table", t.Name())
	return jsonResult(map[string]interface{}{"table": t.Name(), "row": rows.Map(t, row)})
}

// RemoveRow handles the remove_row tool
func (h *Handlers) RemoveRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, errResult := h.table(request)
	if errResult != nil {
		return errResult, nil
	}
	m, err := objectArg(request, t, "key", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n, err := t.Remove(ctx, m)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("remove failed: %v", err)), nil
	}
	h.logger.Debug("rows removed via mcp", "table", t.Name(), "count", n)
	return jsonResult(map[string]interface{}{"table": t.Name(), "removed": n})
}

// table resolves the required table argument.
func (h *Handlers) table(request mcp.CallToolRequest) (*table.Table, *mcp.CallToolResult) {
	name, err := request.RequireString("table")
	if err != nil {
		return nil, mcp.NewToolResultError("table argument is required and must be a string")
	}
	t, ok := h.store.Table(name)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf("unknown table %q", name))
	}
	return t, nil
}

// objectArg converts a JSON object argument into a match for t.
func objectArg(request mcp.CallToolRequest, t *table.Table, key string, required bool) (table.Match, error) {
	raw, ok := request.GetArguments()[key]
	if !ok || raw == nil {
		if required {
			return nil, fmt.Errorf("%s argument is required and must be an object", key)
		}
		return nil, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s argument must be an object", key)
	}
	return rows.Object(t, obj)
}

func jsonResult(response interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
