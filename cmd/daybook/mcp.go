package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Daybook MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes the signed-in
user's journal as MCP tools via STDIO.

The server restores the login remembered by ` + "`daybook login`" + `. Journals
without a PIN are unlocked straight away; PIN protected ones stay locked
until the client calls the unlock tool.

The --db flag is optional. If not provided, a system-specific default location will be used:
- Windows: %USERPROFILE%\AppData\Roaming\daybook\daybook.db
- macOS: ~/Library/Application Support/daybook/daybook.db
- Linux: ~/.local/share/daybook/daybook.db

Example:
  daybook mcp
  daybook mcp --db daybook.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewDaybookMCPServer(cmd.Context(), mcp.Options{
			DBPath:    dbPath,
			PrefsPath: prefsPath,
			WAL:       walMode,
			SyncMode:  syncMode,
		})
		if err != nil {
			return err
		}
		defer srv.Close()

		srv.RegisterTools()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Daybook MCP server started. DB: %s (WAL: %t, Sync: %s)\n", srv.DbPath, walMode, syncMode)
		fmt.Fprintf(os.Stderr, "Session: %s\n", srv.Session().State())
		fmt.Fprintln(os.Stderr, "Available tools: ping, whoami, unlock, lock, write_entry, get_entry, delete_entry, list_entries, search_entries, list_public_entries, list_tags, export_entries")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		return srv.Start()
	},
}
