package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/CompanyPortal/internal/core"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage portal accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a portal account",
	Long: `Create a portal account. The password is read from --password or,
when that is empty, from the first line of standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleFlag, _ := cmd.Flags().GetString("role")
		role, err := core.ParseRole(roleFlag)
		if err != nil {
			return err
		}

		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password, err = readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
		}

		pool, err := openPool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := newService(pool).CreateUser(cmd.Context(), args[0], password, role); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s\n", role, args[0])
		return nil
	},
}

var userDisableCmd = &cobra.Command{
	Use:   "disable <username>",
	Short: "Disable a portal account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], false)
	},
}

var userEnableCmd = &cobra.Command{
	Use:   "enable <username>",
	Short: "Re-enable a disabled portal account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], true)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd, userDisableCmd, userEnableCmd)

	userCreateCmd.Flags().StringP("role", "r", string(core.RoleUser), "account role: user or admin")
	userCreateCmd.Flags().StringP("password", "p", "", "account password (read from stdin when empty)")
}

func setActive(cmd *cobra.Command, username string, active bool) error {
	pool, err := openPool(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := newService(pool).SetUserActive(cmd.Context(), username, active); err != nil {
		return err
	}
	state := "disabled"
	if active {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, username)
	return nil
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", core.ErrEmptyCredentials
	}
	return line, nil
}
