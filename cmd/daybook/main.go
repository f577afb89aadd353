package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	daybook "github.com/unowned-ai/daybook/pkg"
	"github.com/unowned-ai/daybook/pkg/config"
	pkgdb "github.com/unowned-ai/daybook/pkg/db"
	"github.com/unowned-ai/daybook/pkg/utils"
)

var (
	dbPath    string
	prefsPath string
	walMode   bool
	syncMode  string
	jsonOut   bool
	pageSize  int
)

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "A private daily journal with moods, tags and a public feed.",
	Long: `daybook keeps one journal entry per day. Entries carry a category, moods
and tags, can be shared on a public feed, searched, and exported to PDF.

Settings come from flags, then DAYBOOK_* environment variables (optionally
loaded from a .env file), then built-in defaults.`,
	Version:           fmt.Sprintf("v%s", daybook.Version),
	SilenceUsage:      true,
	PersistentPreRunE: applyConfig,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// applyConfig fills every flag the user did not set from the environment.
func applyConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("db") {
		dbPath = cfg.DBPath
	}
	if !flags.Changed("prefs") {
		prefsPath = cfg.PrefsPath
	}
	if !flags.Changed("wal") {
		walMode = cfg.WAL
	}
	if !flags.Changed("sync") {
		syncMode = cfg.SyncMode
	}
	pageSize = cfg.PageSize
	return nil
}

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

var completionCmd = &cobra.Command{
	Use:   fmt.Sprintf("completion %s", strings.Join(completionShells, "|")),
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for daybook.

Examples:

  Bash (current shell):
    $ source <(daybook completion bash)

  Zsh:
    $ daybook completion zsh > "${fpath[1]}/_daybook"

  Fish:
    $ daybook completion fish > ~/.config/fish/completions/daybook.fish

  PowerShell:
    PS> daybook completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             completionShells,
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of daybook",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), daybook.Version)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the daybook database",
}

var dbUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Create or upgrade the journal database schema",
	Long: `Opens the SQLite database (--db, DAYBOOK_DB or the platform default) and
brings the journal schema to the version this build expects. A missing
database is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := utils.ResolveAndEnsureDBPath(dbPath)
		if err != nil {
			return err
		}
		cmd.PrintErrf("Upgrading journal schema in %s (WAL: %t, Sync: %s)\n", path, walMode, syncMode)

		dbConn, err := pkgdb.OpenDBConnection(path, walMode, syncMode)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		return pkgdb.UpgradeDB(dbConn, path, pkgdb.TargetSchemaVersion)
	},
}

func initCmd() {
	defaults := config.Defaults()
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: platform data directory)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Path to the preferences file (default: platform data directory)")
	rootCmd.PersistentFlags().BoolVar(&walMode, "wal", defaults.WAL, "Enable SQLite WAL (Write-Ahead Logging) mode")
	rootCmd.PersistentFlags().StringVar(&syncMode, "sync", defaults.SyncMode, "SQLite synchronous pragma (OFF, NORMAL, FULL, EXTRA)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")

	dbCmd.AddCommand(dbUpgradeCmd)

	initAuthCmds()
	initEntriesCmd()
	initThemeCmd()
	rootCmd.AddCommand(completionCmd, versionCmd, dbCmd, entriesCmd, themeCmd, mcpCmd, tuiCmd)
}

func main() {
	initCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
