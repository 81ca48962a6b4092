package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stowaway/internal/secrets"
	"stowaway/internal/services"
)

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	credsCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the encrypted FTP login",
	}
	credsCmd.AddCommand(newCredentialsSetCommand(ctx))
	credsCmd.AddCommand(newCredentialsShowCommand(ctx))
	return credsCmd
}

func newCredentialsSetCommand(ctx *commandContext) *cobra.Command {
	var host, user, password string
	var port int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the FTP login encrypted on disk",
		Long: "Store host, port, user, and password. Unset flags fall back to config.toml; the " +
			"password falls back to " + passwordEnv + " and then to a prompt on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.credentialStore()
			if err != nil {
				return err
			}
			creds := ctx.configCredentials()
			if current, err := store.LoadCredentials(); err == nil {
				creds = current
			} else if !errors.Is(err, services.ErrNotFound) {
				return err
			}
			if cmd.Flags().Changed("host") {
				creds.Host = strings.TrimSpace(host)
			}
			if cmd.Flags().Changed("port") {
				creds.Port = port
			}
			if cmd.Flags().Changed("user") {
				creds.User = strings.TrimSpace(user)
			}
			if err := creds.Validate(); err != nil {
				return err
			}
			switch {
			case cmd.Flags().Changed("password"):
				creds.Password = password
			case os.Getenv(passwordEnv) != "":
				creds.Password = os.Getenv(passwordEnv)
			default:
				fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s@%s: ", creds.User, creds.Host)
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				creds.Password = strings.TrimRight(line, "\r\n")
			}
			if err := store.SaveCredentials(creds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for %s@%s\n", creds.User, creds.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "FTP server host")
	cmd.Flags().IntVar(&port, "port", secrets.DefaultPort, "FTP server port")
	cmd.Flags().StringVar(&user, "user", "", "FTP user name")
	cmd.Flags().StringVar(&password, "password", "", "FTP password (prefer the environment variable)")
	return cmd
}

func newCredentialsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the login an upload would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := ctx.resolveCredentials()
			if err != nil {
				return err
			}
			shown := creds.Redacted()
			password := shown.Password
			if password == "" {
				password = "(none)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Host:     %s\n", shown.Host)
			fmt.Fprintf(out, "Port:     %d\n", shown.Port)
			fmt.Fprintf(out, "User:     %s\n", shown.User)
			fmt.Fprintf(out, "Password: %s\n", password)
			return nil
		},
	}
}
