package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/daybook/pkg/export"
	"github.com/unowned-ai/daybook/pkg/journal"
	"github.com/unowned-ai/daybook/pkg/session"
)

// failure turns an engine error into a tool error result.
func failure(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, journal.ErrUnauthorized) {
		return mcp.NewToolResultError("The journal is locked or no user is signed in. Sign in with `daybook login` and call 'unlock' with your PIN.")
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
}

// RegisterPingTool registers the liveness tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the Daybook MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_daybook"), nil
}

// RegisterSessionTools registers whoami, unlock and lock.
func RegisterSessionTools(s *server.MCPServer, sess *session.Session) {
	s.AddTool(mcp.NewTool("whoami",
		mcp.WithDescription("Shows the signed-in user and whether the journal is unlocked."),
	), whoamiHandler(sess))

	s.AddTool(mcp.NewTool("unlock",
		mcp.WithDescription("Unlocks the journal with the user's PIN."),
		mcp.WithString("pin", mcp.Required(), mcp.Description("The user's unlock PIN.")),
	), unlockHandler(sess))

	s.AddTool(mcp.NewTool("lock",
		mcp.WithDescription("Locks the journal until 'unlock' is called again."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess.Lock()
		return mcp.NewToolResultText("locked"), nil
	})
}

func whoamiHandler(sess *session.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := map[string]any{"state": sess.State().String()}
		if u, ok := sess.CurrentUser(); ok {
			out["user"] = u
		}
		return jsonResult(out)
	}
}

func unlockHandler(sess *session.Session) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pin, _ := request.Params.Arguments["pin"].(string)
		ok, err := sess.UnlockWithPin(pin)
		if err != nil {
			if errors.Is(err, session.ErrNotAuthenticated) {
				return mcp.NewToolResultError("No user is signed in. Run `daybook login` first."), nil
			}
			return failure("unlock", err), nil
		}
		if !ok {
			return mcp.NewToolResultError("Incorrect PIN."), nil
		}
		return mcp.NewToolResultText("unlocked"), nil
	}
}

// RegisterEntryTools registers the tools that read and write single entries.
func RegisterEntryTools(s *server.MCPServer, svc *journal.Service) {
	s.AddTool(mcp.NewTool("write_entry",
		mcp.WithDescription("Writes today's journal entry, or updates an existing entry when 'id' is given. Tags replace the entry's current tags."),
		mcp.WithString("id", mcp.Description("Optional ID of an existing entry. Omit to write today's entry.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry body. May contain HTML markup.")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Entry category, e.g. Work or Personal.")),
		mcp.WithString("primary_mood", mcp.Required(), mcp.Description("Main mood of the day.")),
		mcp.WithString("secondary_mood1", mcp.Description("Optional second mood.")),
		mcp.WithString("secondary_mood2", mcp.Description("Optional third mood.")),
		mcp.WithBoolean("is_public", mcp.Description("Share the entry on the public feed."), mcp.DefaultBool(false)),
		mcp.WithString("tags", mcp.Description("Comma separated tags, e.g. 'work,focus'.")),
	), writeEntryHandler(svc))

	s.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Gets an entry with its tags. Omit 'id' (or pass 'today') for today's entry."),
		mcp.WithString("id", mcp.Description("Entry ID or 'today'.")),
	), getEntryHandler(svc))

	s.AddTool(mcp.NewTool("delete_entry",
		mcp.WithDescription("Deletes an entry. Omit 'id' (or pass 'today') to delete today's entry."),
		mcp.WithString("id", mcp.Description("Entry ID or 'today'.")),
	), deleteEntryHandler(svc))
}

func writeEntryHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := argEntryID(request)
		if !ok {
			return mcp.NewToolResultError("'id' must be a valid UUID."), nil
		}
		content, _ := request.Params.Arguments["content"].(string)
		fields := journal.Fields{
			Content:        content,
			Category:       argString(request, "category"),
			PrimaryMood:    argString(request, "primary_mood"),
			SecondaryMood1: argString(request, "secondary_mood1"),
			SecondaryMood2: argString(request, "secondary_mood2"),
			IsPublic:       argBool(request, "is_public"),
		}

		written, err := svc.Upsert(ctx, id, fields, parseTags(argString(request, "tags")))
		if err != nil {
			return failure("write entry", err), nil
		}
		if !written {
			return mcp.NewToolResultError(fmt.Sprintf("Entry '%s' not found.", id)), nil
		}

		var entry *journal.Entry
		if id != nil {
			entry, err = svc.Get(ctx, *id)
		} else {
			entry, err = svc.GetToday(ctx)
		}
		if err != nil {
			return failure("read back entry", err), nil
		}
		return jsonResult(entry)
	}
}

func getEntryHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := argEntryID(request)
		if !ok {
			return mcp.NewToolResultError("'id' must be a valid UUID or 'today'."), nil
		}

		var (
			entry *journal.Entry
			err   error
		)
		if id != nil {
			entry, err = svc.Get(ctx, *id)
		} else {
			entry, err = svc.GetToday(ctx)
		}
		if err != nil {
			return failure("get entry", err), nil
		}
		if entry == nil {
			return mcp.NewToolResultError("Entry not found."), nil
		}
		return jsonResult(entry)
	}
}

func deleteEntryHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := argEntryID(request)
		if !ok {
			return mcp.NewToolResultError("'id' must be a valid UUID or 'today'."), nil
		}

		var (
			deleted bool
			err     error
		)
		if id != nil {
			deleted, err = svc.Delete(ctx, *id)
		} else {
			deleted, err = svc.DeleteToday(ctx)
		}
		if err != nil {
			return failure("delete entry", err), nil
		}
		return jsonResult(map[string]bool{"deleted": deleted})
	}
}

// RegisterSearchTools registers listing, searching and the public feed.
func RegisterSearchTools(s *server.MCPServer, svc *journal.Service) {
	s.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("Lists all of the user's entries, newest first."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := svc.List(ctx)
		if err != nil {
			return failure("list entries", err), nil
		}
		return jsonResult(entries)
	})

	s.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Searches the user's entries. All filters are optional and combine with AND. Results are paged, newest first."),
		mcp.WithString("text", mcp.Description("Case-insensitive text found in content, category or tag names.")),
		mcp.WithString("from", mcp.Description("Earliest entry date, YYYY-MM-DD, inclusive.")),
		mcp.WithString("to", mcp.Description("Latest entry date, YYYY-MM-DD, inclusive.")),
		mcp.WithString("mood", mcp.Description("Exact mood, matched against primary and secondary moods.")),
		mcp.WithString("tag", mcp.Description("Case-insensitive part of a tag name.")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1.")),
		mcp.WithNumber("page_size", mcp.Description("Entries per page (default 10, max 100).")),
	), searchEntriesHandler(svc))

	s.AddTool(mcp.NewTool("list_public_entries",
		mcp.WithDescription("Lists public entries from all users, newest first."),
		mcp.WithString("text", mcp.Description("Case-insensitive text found in content or category.")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1.")),
		mcp.WithNumber("page_size", mcp.Description("Entries per page (default 10, max 100).")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := svc.ListPublic(ctx, argString(request, "text"),
			argInt(request, "page", 1), argInt(request, "page_size", journal.DefaultPageSize))
		if err != nil {
			return failure("list public entries", err), nil
		}
		return jsonResult(page)
	})

	s.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("Lists the distinct tags used on the user's entries."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tags, err := svc.Tags(ctx)
		if err != nil {
			return failure("list tags", err), nil
		}
		return jsonResult(tags)
	})
}

func searchEntriesHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := argDate(request, "from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := argDate(request, "to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		filter := journal.Filter{
			Text: argString(request, "text"),
			From: from,
			To:   to,
			Mood: argString(request, "mood"),
			Tag:  argString(request, "tag"),
		}
		page, err := svc.Search(ctx, filter, argInt(request, "page", 1), argInt(request, "page_size", journal.DefaultPageSize))
		if err != nil {
			return failure("search entries", err), nil
		}
		return jsonResult(page)
	}
}

// RegisterExportTool registers export_entries, which writes a document to disk.
func RegisterExportTool(s *server.MCPServer, svc *journal.Service) {
	s.AddTool(mcp.NewTool("export_entries",
		mcp.WithDescription("Exports the user's entries in a date range to a PDF or text file."),
		mcp.WithString("from", mcp.Required(), mcp.Description("First date, YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Last date, YYYY-MM-DD.")),
		mcp.WithString("path", mcp.Required(), mcp.Description("File to write.")),
		mcp.WithString("format", mcp.Description("pdf or text."), mcp.DefaultString("pdf")),
	), exportHandler(svc))
}

func exportHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := argDate(request, "from")
		if err != nil || from == nil {
			return mcp.NewToolResultError("'from' is required in YYYY-MM-DD format."), nil
		}
		to, err := argDate(request, "to")
		if err != nil || to == nil {
			return mcp.NewToolResultError("'to' is required in YYYY-MM-DD format."), nil
		}
		path := argString(request, "path")
		if path == "" {
			return mcp.NewToolResultError("'path' is required."), nil
		}
		renderer, err := export.ForFormat(argString(request, "format"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		report, err := svc.ExportReport(ctx, *from, *to)
		if err != nil {
			return failure("export entries", err), nil
		}
		data, err := renderer.Render(ctx, report)
		if err != nil {
			return failure("render export", err), nil
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return failure("create export directory", err), nil
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return failure("write export", err), nil
		}
		return jsonResult(map[string]any{"path": path, "entries": len(report.Entries), "bytes": len(data)})
	}
}
