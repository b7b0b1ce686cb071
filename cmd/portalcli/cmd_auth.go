package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginFlags struct {
	email    string
	password string
	remember bool
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the access token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Close the session and forget stored tokens",
	RunE:  runLogout,
}

func init() {
	f := loginCmd.Flags()
	f.StringVar(&loginFlags.email, "email", "", "Account email (required)")
	f.StringVar(&loginFlags.password, "password", envOr("PORTAL_PASSWORD", ""), "Account password (or PORTAL_PASSWORD)")
	f.BoolVar(&loginFlags.remember, "remember", false, "Keep the session across reboots")

	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if loginFlags.password == "" {
		return fmt.Errorf("password is required, use --password or PORTAL_PASSWORD")
	}

	client, log, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tokens, err := client.Login(cmd.Context(), loginFlags.email, loginFlags.password, loginFlags.remember)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	scope := "this session"
	if loginFlags.remember {
		scope = "this machine"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s), remembered on %s\n", loginFlags.email, tokens.Role, scope)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	client, log, err := newClient()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := client.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
