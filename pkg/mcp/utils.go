package mcp

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/daybook/pkg/journal"
)

func argString(request mcp.CallToolRequest, name string) string {
	v, _ := request.Params.Arguments[name].(string)
	return strings.TrimSpace(v)
}

func argBool(request mcp.CallToolRequest, name string) bool {
	v, _ := request.Params.Arguments[name].(bool)
	return v
}

// argInt reads a JSON number argument. Missing or fractional values yield def.
func argInt(request mcp.CallToolRequest, name string, def int) int {
	switch v := request.Params.Arguments[name].(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case int:
		return v
	}
	return def
}

// argEntryID reads an optional entry ID. ok is false only for a malformed ID.
func argEntryID(request mcp.CallToolRequest) (id *uuid.UUID, ok bool) {
	raw := argString(request, "id")
	if raw == "" || strings.EqualFold(raw, "today") {
		return nil, true
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

func argDate(request mcp.CallToolRequest, name string) (*time.Time, error) {
	raw := argString(request, name)
	if raw == "" {
		return nil, nil
	}
	d, err := journal.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("'%s' must be a date in YYYY-MM-DD format", name)
	}
	return &d, nil
}

// parseTags splits a comma separated tag list.
func parseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
