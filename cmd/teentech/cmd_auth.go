package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"teentech/internal/auth"
)

var (
	registerRole   string
	registerNumber string
)

// registerCmd creates an account without entering the UI.
var registerCmd = &cobra.Command{
	Use:   "register <name> <email>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return err
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		u := auth.User{
			Name:     args[0],
			Email:    args[1],
			Password: password,
			Role:     auth.Role(registerRole),
		}
		if u.Role == auth.RoleTeacher {
			u.RegistrationNumber = registerNumber
		}

		logger.Info("registering account",
			zap.String("email", u.Email),
			zap.String("role", string(u.Role)))

		if err := svcs.auth.Register(cmd.Context(), u); err != nil {
			return err
		}
		fmt.Println("Account created. Log in with: teentech login", u.Email)
		return nil
	},
}

// loginCmd authenticates and stores the session token.
var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in and store the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return err
		}

		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		dest, err := svcs.auth.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		logger.Info("logged in", zap.String("destination", string(dest)))
		fmt.Printf("Logged in. Your home page is %s\n", dest)
		return nil
	},
}

// logoutCmd discards the stored session.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return err
		}
		if err := svcs.auth.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// whoamiCmd prints the role of the stored session.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the role of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return err
		}
		role, err := svcs.auth.CurrentRole()
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as a %s\n", role)
		return nil
	},
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	registerCmd.Flags().StringVar(&registerRole, "role", string(auth.RoleStudent), "account role: student or teacher")
	registerCmd.Flags().StringVar(&registerNumber, "number", "", "teacher registration number (10 digits)")
}
