package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.trai.ch/zerr"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/credential"
	"github.com/nhle/plant-care/internal/logging"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/reminder"
	"github.com/nhle/plant-care/internal/store"
	appsync "github.com/nhle/plant-care/internal/sync"
)

// DefaultBuilder wires the real config file, SQLite mirror, OS keyring and
// remote API.
func DefaultBuilder(_ context.Context, opts Options) (*Env, error) {
	path := opts.ConfigPath
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "loading config"), "path", path)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	mode := logging.ModeConsole
	if opts.Interactive {
		mode = logging.ModeFile
	}
	logger, logCloser, err := logging.New(cfg.Log, mode)
	if err != nil {
		// A missing log file never stops the app.
		logger = zerolog.Nop()
	}

	dbPath := model.DefaultDBPath()
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		_ = logCloser.Close()
		return nil, zerr.With(zerr.Wrap(err, "opening local store"), "path", dbPath)
	}

	creds, err := credential.Open()
	if err != nil {
		_ = s.Close()
		_ = logCloser.Close()
		return nil, zerr.Wrap(err, "opening keyring")
	}
	sessions := auth.NewSessionStore(creds)

	client := api.NewClient(cfg.API.BaseURL,
		api.WithToken(sessions.Token),
		api.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
	)

	tracker := recent.New(s,
		recent.WithCapacity(cfg.Recent.Capacity),
		recent.WithLogger(logging.Component(logger, "recent")),
	)

	pollOpts := appsync.Options{
		Interval: time.Duration(cfg.Display.PollIntervalSec) * time.Second,
		Location: location(cfg.Reminders.Timezone, logger),
		Logger:   logging.Component(logger, "sync"),
	}
	if cfg.Reminders.Enabled {
		pollOpts.CheckSchedule = cfg.Reminders.Schedule
	}
	if cfg.Reminders.Email {
		password, err := creds.Get(credential.KeySMTPPassword)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			logger.Warn().Err(err).Msg("reading SMTP password")
		}
		sender := reminder.NewSMTPSender(cfg.Reminders.SMTP, password)
		pollOpts.Reminder = reminder.NewDispatcher(sender, cfg.Reminders.From,
			cfg.Reminders.RatePerMinute, logging.Component(logger, "reminder"))
	}

	return &Env{
		Config:      cfg,
		ConfigPath:  path,
		Logger:      logger,
		Store:       s,
		Credentials: creds,
		Sessions:    sessions,
		API:         client,
		Provider:    auth.NewIdentityClient(cfg.Auth.Endpoint, cfg.Auth.APIKey),
		Tracker:     tracker,
		Poller:      appsync.New(client, s, pollOpts),
		Now:         time.Now,
		Close: func() error {
			return errors.Join(s.Close(), logCloser.Close())
		},
	}, nil
}

// location resolves the configured reminder time zone, falling back to the
// local zone.
func location(name string, logger zerolog.Logger) *time.Location {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn().Err(err).Str("timezone", name).Msg("using local time zone")
		return time.Local
	}
	return loc
}
