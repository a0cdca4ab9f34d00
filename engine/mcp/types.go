package mcp

import (
	"context"

	"github.com/compozy/testproject/engine/cmakedoc"
)

// IndexStore persists a parsed CMake index
type IndexStore interface {
	StoreIndex(ctx context.Context, idx cmakedoc.Index) error
}

// IndexQuerier runs read queries against stored CMake indexes. A store that
// also implements it enables the query_cmake_index tool.
type IndexQuerier interface {
	Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// ToolResponse represents a response from a tool
type ToolResponse struct {
	Content []any `json:"content"`
}

// bindingTool maps an MCP tool onto a binding method
type bindingTool struct {
	name        string
	class       string
	method      string
	params      []string
	description string
}

var bindingTools = []bindingTool{
	{"math_add", "Math", "add", []string{"a", "b"}, "Add two numbers"},
	{"math_multiply", "Math", "multiply", []string{"a", "b"}, "Multiply two numbers"},
	{"string_to_upper", "StringUtils", "to_upper", []string{"value"}, "Uppercase the ASCII letters of a string"},
	{"string_reverse", "StringUtils", "reverse", []string{"value"}, "Reverse a string byte by byte"},
	{"string_brackets", "StringUtils", "brackets", []string{"value"}, "Wrap a string in square brackets"},
}
