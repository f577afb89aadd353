package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/journal"
	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/session"
	"github.com/unowned-ai/daybook/pkg/utils"
)

// app is everything a command needs, opened from the resolved flags.
type app struct {
	db      *sql.DB
	prefs   *preferences.FileStore
	session *session.Session
	journal *journal.Service
}

// openApp opens the database and preferences and restores the remembered
// login. The journal only answers once the session is unlocked.
func openApp(ctx context.Context) (*app, error) {
	path, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}
	conn, err := pkgdb.OpenDBConnection(path, walMode, syncMode)
	if err != nil {
		return nil, err
	}
	if err := pkgdb.UpgradeDB(conn, path, pkgdb.TargetSchemaVersion); err != nil {
		conn.Close()
		return nil, err
	}

	prefsFile, err := utils.ResolveAndEnsurePrefsPath(prefsPath)
	if err != nil {
		conn.Close()
		return nil, err
	}
	prefs, err := preferences.OpenFileStore(prefsFile)
	if err != nil {
		conn.Close()
		return nil, err
	}

	sess := session.New(conn, prefs)
	if err := sess.Initialize(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return &app{
		db:      conn,
		prefs:   prefs,
		session: sess,
		journal: journal.New(conn, sess.RequireUnlocked()),
	}, nil
}

func (a *app) Close() {
	if err := pkgdb.Checkpoint(a.db); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	a.db.Close()
}

var errNotSignedIn = errors.New("not signed in: run `daybook login <username>` first")

// unlock moves the session to Unlocked using the --pin flag. Users without a
// PIN need no flag.
func (a *app) unlock(cmd *cobra.Command) error {
	if !a.session.IsAuthenticated() {
		return errNotSignedIn
	}
	pin, _ := cmd.Flags().GetString("pin")
	ok, err := a.session.UnlockWithPin(pin)
	if err != nil {
		return err
	}
	if !ok {
		if pin == "" {
			return errors.New("journal is locked: pass --pin")
		}
		return errors.New("incorrect PIN")
	}
	return nil
}

// withUnlockedApp opens the app, unlocks it and runs fn.
func withUnlockedApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.unlock(cmd); err != nil {
		return err
	}
	return fn(a)
}
