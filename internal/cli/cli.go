// Package cli implements the plantcare command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/credential"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/store"
	appsync "github.com/nhle/plant-care/internal/sync"
)

// Version is stamped at build time.
var Version = "dev"

// Options holds the persistent flag values.
type Options struct {
	ConfigPath string
	LogLevel   string
	// Interactive is set for the TUI, which owns the terminal; logs then go
	// to the log file only.
	Interactive bool
}

// Env holds the collaborators a command runs against.
type Env struct {
	Config      *model.AppConfig
	ConfigPath  string
	Logger      zerolog.Logger
	Store       store.Store
	Credentials *credential.Store
	Sessions    *auth.SessionStore
	API         api.PlantService
	Provider    auth.Provider
	Tracker     *recent.Tracker
	Poller      *appsync.Poller
	Now         func() time.Time
	// Close releases the store and the log file. May be nil.
	Close func() error
}

// Builder assembles an Env once flags are parsed.
type Builder func(ctx context.Context, opts Options) (*Env, error)

// CLI represents the command line interface for plantcare.
type CLI struct {
	build   Builder
	opts    Options
	env     *Env
	rootCmd *cobra.Command

	// runTUI starts the terminal UI.
	runTUI func(ctx context.Context, env *Env) error
}

// New creates a new CLI building its dependencies with build.
func New(build Builder) *CLI {
	rootCmd := &cobra.Command{
		Use:           "plantcare",
		Short:         "Keep track of when your plants need water",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		Args:          cobra.NoArgs,
	}
	rootCmd.SetVersionTemplate("{{.Name}} version {{.Version}}\n")

	c := &CLI{
		build:   build,
		rootCmd: rootCmd,
		runTUI:  runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&c.opts.ConfigPath, "config", "", "Config file (default ~/.config/plantcare/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.opts.LogLevel, "log-level", "", "Override the configured log level")
	rootCmd.RunE = c.tui

	rootCmd.AddCommand(c.newTUICmd())
	rootCmd.AddCommand(c.newNextCmd())
	rootCmd.AddCommand(c.newRecentCmd())
	rootCmd.AddCommand(c.newLoginCmd())
	rootCmd.AddCommand(c.newRegisterCmd())
	rootCmd.AddCommand(c.newLogoutCmd())
	rootCmd.AddCommand(c.newWhoamiCmd())
	rootCmd.AddCommand(c.newSyncCmd())
	rootCmd.AddCommand(c.newDueCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newExportCmd())

	return c
}

// Execute runs the root command with the given context and releases
// whatever the command opened.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	err := c.rootCmd.Execute()
	if c.env != nil && c.env.Close != nil {
		if cerr := c.env.Close(); cerr != nil && err == nil {
			err = zerr.Wrap(cerr, "shutting down")
		}
	}
	c.env = nil
	return err
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// environment builds the Env on first use.
func (c *CLI) environment(ctx context.Context, interactive bool) (*Env, error) {
	if c.env != nil {
		return c.env, nil
	}
	opts := c.opts
	opts.Interactive = interactive
	env, err := c.build(ctx, opts)
	if err != nil {
		return nil, zerr.Wrap(err, "starting plantcare")
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	c.env = env
	return env, nil
}

// currentUser returns the signed-in user, or an error telling the user to
// sign in first.
func currentUser(env *Env) (*auth.User, error) {
	u, err := env.Sessions.RequireUser()
	if err != nil {
		if errors.Is(err, auth.ErrNotSignedIn) {
			return nil, fmt.Errorf("%w: run 'plantcare login'", err)
		}
		return nil, zerr.Wrap(err, "loading session")
	}
	return u, nil
}

func (c *CLI) tui(cmd *cobra.Command, _ []string) error {
	env, err := c.environment(cmd.Context(), true)
	if err != nil {
		return err
	}
	return c.runTUI(cmd.Context(), env)
}

func (c *CLI) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal interface (default)",
		Args:  cobra.NoArgs,
		RunE:  c.tui,
	}
}
