package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rshep3087/expensemon/api"
	"github.com/Rshep3087/expensemon/session"
)

// authenticator exchanges credentials with the remote.
type authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, cred api.Credentials) error
}

// sessionStore holds the token between runs.
type sessionStore interface {
	Login(token string) error
	Logout() error
	IsAuthenticated() bool
	Token() (string, bool)
}

type loginCommand struct {
	auth  func() authenticator
	store func() sessionStore
}

func newLoginCmd(auth func() authenticator, store func() sessionStore) *cobra.Command {
	c := loginCommand{auth: auth, store: store}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Long: `Sign in with an email and password, or store an existing API token with --token. ` +
			`The token is kept in the session file until logout.`,
		RunE: c.run,
	}
	cmd.Flags().String("token", "", "API token to store instead of signing in")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("password", "", "account password (or EXPENSEMON_PASSWORD)")
	cmd.MarkFlagsMutuallyExclusive("token", "email")
	return cmd
}

func (c *loginCommand) run(cmd *cobra.Command, _ []string) error {
	token, _ := cmd.Flags().GetString("token")
	token = strings.TrimSpace(token)

	if token == "" {
		email, _ := cmd.Flags().GetString("email")
		password := passwordFlag(cmd)
		if email == "" || password == "" {
			return errors.New("either --token or --email and --password are required")
		}

		var err error
		token, err = c.auth().Login(cmd.Context(), strings.TrimSpace(email), password)
		if err != nil {
			return fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if err := c.store().Login(token); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	log.Debug("session stored")
	fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
	return nil
}

type registerCommand struct {
	auth  func() authenticator
	store func() sessionStore
}

func newRegisterCmd(auth func() authenticator, store func() sessionStore) *cobra.Command {
	c := registerCommand{auth: auth, store: store}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE:  c.run,
	}
	cmd.Flags().String("name", "", "your name (required)")
	cmd.Flags().String("email", "", "account email (required)")
	cmd.Flags().String("password", "", "account password (or EXPENSEMON_PASSWORD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *registerCommand) run(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	cred := api.Credentials{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: passwordFlag(cmd),
	}

	if err := validateEmail(cred.Email); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := c.auth().Register(ctx, cred); err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}

	token, err := c.auth().Login(ctx, cred.Email, cred.Password)
	if err != nil {
		return fmt.Errorf("registered, but failed to sign in: %w", err)
	}

	if err := c.store().Login(token); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s and logged in\n", cred.Email)
	return nil
}

func newLogoutCmd(store func() sessionStore) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store().Logout(); err != nil {
				return fmt.Errorf("failed to remove session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newStatusCmd(store func() sessionStore) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), sessionStatus(store(), time.Now()))
			return nil
		},
	}
}

// sessionStatus describes the stored session, including the token expiry
// when the token is a JWT.
func sessionStatus(s sessionStore, now time.Time) string {
	token, ok := s.Token()
	if !ok {
		return "Not logged in"
	}

	exp, err := session.TokenExpiry(token)
	switch {
	case errors.Is(err, session.ErrNoExpiry):
		return "Logged in (token does not expire)"
	case err != nil:
		return "Logged in"
	case session.TokenExpired(token, now):
		return fmt.Sprintf("Session expired at %s, log in again", exp.Local().Format(time.DateTime))
	}

	return fmt.Sprintf("Logged in until %s", exp.Local().Format(time.DateTime))
}

func passwordFlag(cmd *cobra.Command) string {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		return viper.GetString("password")
	}
	return password
}
