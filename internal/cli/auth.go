package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/ui/login"
)

type credentials struct {
	name     string
	photoURL string
	email    string
	password string
}

// prompt asks for any credential not given as a flag.
func (cr *credentials) prompt(register bool) error {
	var fields []huh.Field
	if register && cr.name == "" {
		fields = append(fields, huh.NewInput().Title("Name").Value(&cr.name))
	}
	if cr.email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&cr.email))
	}
	if cr.password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&cr.password))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

func (c *CLI) newLoginCmd() *cobra.Command {
	var cr credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.authenticate(cmd, &cr, false)
		},
	}
	cmd.Flags().StringVar(&cr.email, "email", "", "Account email")
	cmd.Flags().StringVar(&cr.password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func (c *CLI) newRegisterCmd() *cobra.Command {
	var cr credentials
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.authenticate(cmd, &cr, true)
		},
	}
	cmd.Flags().StringVar(&cr.name, "name", "", "Display name")
	cmd.Flags().StringVar(&cr.photoURL, "photo-url", "", "Profile photo URL")
	cmd.Flags().StringVar(&cr.email, "email", "", "Account email")
	cmd.Flags().StringVar(&cr.password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func (c *CLI) authenticate(cmd *cobra.Command, cr *credentials, register bool) error {
	env, err := c.environment(cmd.Context(), false)
	if err != nil {
		return err
	}
	if err := cr.prompt(register); err != nil {
		return zerr.Wrap(err, "reading credentials")
	}

	email := strings.TrimSpace(cr.email)
	sess, err := login.Authenticate(cmd.Context(), env.Provider, register, cr.name, email, cr.password, cr.photoURL)
	if err != nil {
		var pe *auth.ProviderError
		if errors.As(err, &pe) || errors.Is(err, auth.ErrWeakPassword) {
			return err
		}
		return zerr.With(zerr.Wrap(err, "signing in"), "email", email)
	}
	if err := env.Sessions.Save(sess); err != nil {
		return zerr.Wrap(err, "saving session")
	}

	env.Logger.Info().Str("email", sess.User.Email).Bool("register", register).Msg("signed in")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", describeUser(&sess.User))
	return nil
}

func (c *CLI) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			if err := env.Sessions.Clear(); err != nil {
				return zerr.Wrap(err, "clearing session")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *CLI) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.environment(cmd.Context(), false)
			if err != nil {
				return err
			}
			u, err := currentUser(env)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), describeUser(u))
			return nil
		},
	}
}

func describeUser(u *auth.User) string {
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}
