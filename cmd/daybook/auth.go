package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/daybook/pkg/users"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := users.Register(cmd.Context(), a.db, users.Registration{Username: username, Email: email, Password: password})
		if err != nil {
			return err
		}
		if err := a.session.Authenticate(u); err != nil {
			return err
		}
		cmd.Printf("Registered and signed in as %s.\n", u.Username)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username-or-email>",
	Short: "Sign in; the login is remembered until logout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := users.Login(cmd.Context(), a.db, args[0], password)
		if err != nil {
			return err
		}
		if err := a.session.Login(u); err != nil {
			return err
		}
		cmd.Printf("Signed in as %s.\n", u.Username)
		if u.HasPin() {
			cmd.Println("Your journal is PIN protected: pass --pin to entry commands.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the remembered login",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Logout(); err != nil {
			return err
		}
		cmd.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the remembered login",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		u, ok := a.session.CurrentUser()
		if !ok {
			return errNotSignedIn
		}
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), u)
		}
		cmd.Printf("%s <%s>\n", u.Username, u.Email)
		cmd.Printf("PIN lock: %t\n", u.HasPin())
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Manage the unlock PIN",
}

var pinSetCmd = &cobra.Command{
	Use:   "set <new-pin>",
	Short: "Set or change the unlock PIN (pass the current one with --pin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUnlockedApp(cmd, func(a *app) error {
			id, _ := a.session.UserID()
			if err := users.SetPin(cmd.Context(), a.db, id, args[0]); err != nil {
				return err
			}
			cmd.Println("PIN updated.")
			return a.session.Refresh(cmd.Context())
		})
	},
}

var pinClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the unlock PIN (pass the current one with --pin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUnlockedApp(cmd, func(a *app) error {
			id, _ := a.session.UserID()
			if err := users.ClearPin(cmd.Context(), a.db, id); err != nil {
				return err
			}
			cmd.Println("PIN removed.")
			return nil
		})
	},
}

// readPassword takes --password, or the first line of stdin with
// --password-stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return "", errors.New("a password is required: use --password or --password-stdin")
	}
	return password, nil
}

func addPasswordFlags(cmd *cobra.Command) {
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

func initAuthCmds() {
	registerCmd.Flags().String("username", "", "Username (letters and digits)")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")
	addPasswordFlags(registerCmd)
	addPasswordFlags(loginCmd)

	pinCmd.PersistentFlags().String("pin", "", "Current PIN, if one is set")
	pinCmd.AddCommand(pinSetCmd, pinClearCmd)

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, pinCmd)
}
