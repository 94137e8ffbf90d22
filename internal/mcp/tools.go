// ABOUTME: MCP tool definitions and registration for the seatbot server
// ABOUTME: Defines JSON schemas for the six table tools
package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/seatbot/internal/logging"
	"github.com/harper/seatbot/internal/store"
)

func tableProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Table name (see list_tables)",
	}
}

// fieldsProperty describes a field name to value object. JSON numbers lose
// precision above 2^53, so large integer IDs travel as decimal strings.
func fieldsProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"description":          description + ". Integers above 9007199254740992 (2^53), such as Discord snowflake IDs, must be passed as decimal strings",
		"additionalProperties": true,
	}
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, s *store.Store, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = logging.Discard()
	}
	handlers := &Handlers{
		store:  s,
		logger: logger,
	}

	// 1. list_tables - Enumerate the tables and their primary keys
	server.AddTool(mcp.Tool{
		Name:        "list_tables",
		Description: "List every table with its primary keys and whether rows can be removed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListTables)

	// 2. describe_table - Show the columns of one table
	server.AddTool(mcp.Tool{
		Name:        "describe_table",
		Description: "Describe a table's columns: kind, SQL type, nullability and primary key membership.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": tableProperty(),
			},
			Required: []string{"table"},
		},
	}, handlers.DescribeTable)

	// 3. get_row - Fetch the single row matching a set of fields
	server.AddTool(mcp.Tool{
		Name:        "get_row",
		Description: "Fetch the single row whose fields equal the given values. Returns null when nothing matches and an error when several rows match.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": tableProperty(),
				"match": fieldsProperty("Field name to value; at least one field is required"),
			},
			Required: []string{"table", "match"},
		},
	}, handlers.GetRow)

	// 4. list_rows - List rows, optionally filtered
	server.AddTool(mcp.Tool{
		Name:        "list_rows",
		Description: "List rows whose fields equal the given values. Omit match to list the whole table.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": tableProperty(),
				"match": fieldsProperty("Optional field name to value filter"),
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of rows to return (default: 100)",
					"default":     defaultListLimit,
				},
			},
			Required: []string{"table"},
		},
	}, handlers.ListRows)

	// 5. upsert_row - Insert or replace a row by primary key
	server.AddTool(mcp.Tool{
		Name:        "upsert_row",
		Description: "Insert a row, or update the row with the same primary key. Every column must be given; blobs are base64 strings.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": tableProperty(),
				"row":   fieldsProperty("Complete row as field name to value"),
			},
			Required: []string{"table", "row"},
		},
	}, handlers.UpsertRow)

	// 6. remove_row - Delete by primary key
	server.AddTool(mcp.Tool{
		Name:        "remove_row",
		Description: "Delete the row identified by exactly the table's primary key fields.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": tableProperty(),
				"key":   fieldsProperty("Primary key field name to value"),
			},
			Required: []string{"table", "key"},
		},
	}, handlers.RemoveRow)

	return handlers
}
