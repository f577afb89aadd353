package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/preferences"
	"github.com/unowned-ai/daybook/pkg/utils"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the colour theme",
}

var themeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current theme",
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := loadThemes()
		if err != nil {
			return err
		}
		cmd.Println(themes.Current())
		return nil
	},
}

var themeSetCmd = &cobra.Command{
	Use:       "set light|dark",
	Short:     "Switch to the given theme",
	ValidArgs: []string{string(preferences.ThemeLight), string(preferences.ThemeDark)},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := loadThemes()
		if err != nil {
			return err
		}
		if err := themes.Set(preferences.Theme(args[0])); err != nil {
			return err
		}
		cmd.Printf("Theme: %s\n", themes.Current())
		return nil
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip between light and dark",
	RunE: func(cmd *cobra.Command, args []string) error {
		themes, err := loadThemes()
		if err != nil {
			return err
		}
		if err := themes.Toggle(); err != nil {
			return err
		}
		cmd.Printf("Theme: %s\n", themes.Current())
		return nil
	},
}

func loadThemes() (*preferences.Themes, error) {
	path, err := utils.ResolveAndEnsurePrefsPath(prefsPath)
	if err != nil {
		return nil, err
	}
	store, err := preferences.OpenFileStore(path)
	if err != nil {
		return nil, err
	}
	return preferences.LoadThemes(store)
}

func initThemeCmd() {
	themeCmd.AddCommand(themeGetCmd, themeSetCmd, themeToggleCmd)
}
