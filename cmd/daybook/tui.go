package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long: `Display an interactive terminal UI for reading and browsing your journal.
A PIN protected journal asks for the PIN first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.session.IsAuthenticated() {
			return errNotSignedIn
		}
		// Users without a PIN go straight to the timeline.
		if _, err := a.session.UnlockWithPin(""); err != nil {
			return err
		}

		themes, err := preferences.LoadThemes(a.prefs)
		if err != nil {
			return err
		}
		return tui.ShowTUI(cmd.Context(), a.session, a.journal, themes)
	},
}
