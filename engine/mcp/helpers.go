package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// wrapResourceHandler adapts a byte-producing handler to the mcp-go resource signature
func wrapResourceHandler(
	uri string,
	handler func(ctx context.Context) ([]byte, error),
) func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := handler(ctx)
		if err != nil {
			return nil, err
		}
		textContent := mcp.TextResourceContents{
			URI:      uri,
			Text:     string(data),
			MIMEType: "application/json",
		}
		return []mcp.ResourceContents{&textContent}, nil
	}
}

// newToolResultFromResponse converts a ToolResponse into MCP content
func newToolResultFromResponse(response *ToolResponse) (*mcp.CallToolResult, error) {
	if response == nil || len(response.Content) == 0 {
		return mcp.NewToolResultText("No content available"), nil
	}

	mcpContent := make([]mcp.Content, 0, len(response.Content))
	for _, content := range response.Content {
		item, err := convertToMCPContent(content)
		if err != nil {
			return nil, err
		}
		mcpContent = append(mcpContent, item)
	}

	return &mcp.CallToolResult{
		Content: mcpContent,
	}, nil
}

// convertToMCPContent converts a single content item to MCP Content
func convertToMCPContent(content any) (mcp.Content, error) {
	switch v := content.(type) {
	case string:
		return mcp.TextContent{
			Type: "text",
			Text: v,
		}, nil
	default:
		return convertObjectToText(v)
	}
}

// convertObjectToText converts any object to JSON text content
func convertObjectToText(v any) (mcp.Content, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}
	return mcp.TextContent{
		Type: "text",
		Text: string(jsonData),
	}, nil
}

// toolError reports err to the client as an error result rather than a
// transport error
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// getString returns a string argument or ""
func getString(req mcp.CallToolRequest, key string) string {
	return req.GetString(key, "")
}

// getBool accepts JSON booleans and the strings "true"/"1"
func getBool(req mcp.CallToolRequest, key string) bool {
	switch v := req.GetArguments()[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	default:
		return false
	}
}
