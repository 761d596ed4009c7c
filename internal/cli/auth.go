package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"time"

	"taskdeck/internal/session"

	"github.com/spf13/cobra"
)

type credentialFlags struct {
	username      string
	password      string
	passwordStdin bool
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", envOr("TASKDECK_USERNAME", ""), "Username")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the password from stdin")
}

func (f *credentialFlags) resolve(in io.Reader) error {
	if f.passwordStdin {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		f.password = strings.TrimRight(line, "\r\n")
	}
	if f.password == "" {
		f.password = envOr("TASKDECK_PASSWORD", "")
	}
	if strings.TrimSpace(f.username) == "" {
		return errors.New("missing --username")
	}
	if f.password == "" {
		return errors.New("missing password; pass --password-stdin or set TASKDECK_PASSWORD")
	}
	return nil
}

func newLoginCmd(app *App) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolve(cmd.InOrStdin()); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.session.Login(cmd.Context(), creds.username, creds.password); err != nil {
				return writeErr(cmd, err)
			}
			u, _ := app.session.User()
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}
	creds.register(cmd)
	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var (
		creds credentialFlags
		email string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolve(cmd.InOrStdin()); err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(email) == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			if err := app.session.Signup(cmd.Context(), creds.username, strings.TrimSpace(email), creds.password); err != nil {
				return writeErr(cmd, err)
			}
			u, _ := app.session.User()
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"state": app.session.State()}})
		},
	}
}

type tokenInfo struct {
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := requireUser(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := map[string]any{"data": u}
			tok, err := app.store.AccessToken(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if claims, ok := session.ReadClaims(tok); ok {
				out["token"] = tokenInfo{Subject: claims.Subject, ExpiresAt: claims.ExpiresAt}
			}
			return writeOut(cmd, app, out)
		},
	}
}
