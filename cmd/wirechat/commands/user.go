package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gcammarata/wirechat/pkg/config"
	"github.com/gcammarata/wirechat/pkg/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts (add, delete, passwd, list)",
	Long: `Manage chat accounts directly in the persistent store.

These commands operate on the configured database and do not require a
running server.`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			if err := st.AddUser(args[0], password); err != nil {
				return err
			}
			fmt.Printf("Account %q created\n", args[0])
			return nil
		})
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account and its friendships and memberships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			if err := st.DeleteUser(args[0]); err != nil {
				return err
			}
			fmt.Printf("Account %q deleted\n", args[0])
			return nil
		})
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change an account password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			password, err := promptPassword("New password: ")
			if err != nil {
				return err
			}
			if err := st.ChangePassword(args[0], password); err != nil {
				return err
			}
			fmt.Printf("Password changed for %q\n", args[0])
			return nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			users, err := st.ListAllUsersWithStatus("")
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Println(u.Name)
			}
			return nil
		})
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userPasswdCmd)
	userCmd.AddCommand(userListCmd)
}

// withStore loads the config, opens the store, runs fn, and closes.
func withStore(fn func(*store.Store) error) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("password must not be empty")
	}
	return string(raw), nil
}
