package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	daybook "github.com/unowned-ai/daybook/pkg"
	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/export"
	"github.com/unowned-ai/daybook/pkg/journal"
	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/session"
	"github.com/unowned-ai/daybook/pkg/utils"
)

// Options locate the files the server works on. Empty paths use the platform
// defaults.
type Options struct {
	DBPath    string
	PrefsPath string
	WAL       bool
	SyncMode  string
}

// DaybookMCPServer exposes the signed-in user's journal as MCP tools.
type DaybookMCPServer struct {
	mcpServer *server.MCPServer
	db        *sql.DB
	session   *session.Session
	journal   *journal.Service
	DbPath    string
}

// NewDaybookMCPServer opens the database and preferences, restores the
// remembered login and unlocks it when the user has no PIN.
func NewDaybookMCPServer(ctx context.Context, opts Options) (*DaybookMCPServer, error) {
	dbPath, err := utils.ResolveAndEnsureDBPath(opts.DBPath)
	if err != nil {
		return nil, err
	}
	prefsPath, err := utils.ResolveAndEnsurePrefsPath(opts.PrefsPath)
	if err != nil {
		return nil, err
	}

	dbConn, err := pkgdb.OpenDBConnection(dbPath, opts.WAL, opts.SyncMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := pkgdb.UpgradeDB(dbConn, dbPath, pkgdb.TargetSchemaVersion); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to initialize/upgrade database schema for '%s': %w", dbPath, err)
	}

	prefs, err := preferences.OpenFileStore(prefsPath)
	if err != nil {
		dbConn.Close()
		return nil, err
	}

	sess := session.New(dbConn, prefs)
	if err := sess.Initialize(ctx); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	if sess.IsAuthenticated() {
		if _, err := sess.UnlockWithPin(""); err != nil {
			dbConn.Close()
			return nil, err
		}
	}

	svc := journal.New(dbConn, sess.RequireUnlocked(), journal.WithRenderer(export.NewPDFRenderer()))
	return newServer(dbConn, sess, svc, dbPath), nil
}

func newServer(db *sql.DB, sess *session.Session, svc *journal.Service, dbPath string) *DaybookMCPServer {
	s := server.NewMCPServer(
		"Daybook MCP Server",
		daybook.Version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
	)
	return &DaybookMCPServer{
		mcpServer: s,
		db:        db,
		session:   sess,
		journal:   svc,
		DbPath:    dbPath,
	}
}

// RegisterTools adds every journal tool to the server.
func (s *DaybookMCPServer) RegisterTools() {
	RegisterPingTool(s.mcpServer)
	RegisterSessionTools(s.mcpServer, s.session)
	RegisterEntryTools(s.mcpServer, s.journal)
	RegisterSearchTools(s.mcpServer, s.journal)
	RegisterExportTool(s.mcpServer, s.journal)
}

// Start runs the stdio event loop. Register tools beforehand.
func (s *DaybookMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// DB returns the underlying *sql.DB.
func (s *DaybookMCPServer) DB() *sql.DB {
	return s.db
}

// Session returns the server's session.
func (s *DaybookMCPServer) Session() *session.Session {
	return s.session
}

// MCPRawServer exposes the raw mcp-go server.
func (s *DaybookMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close checkpoints the WAL and closes the database.
func (s *DaybookMCPServer) Close() error {
	if s.db == nil {
		return nil
	}
	if err := pkgdb.Checkpoint(s.db); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return s.db.Close()
}
