package cli

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/zerr"

	"github.com/nhle/plant-care/internal/app"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/theme"
	"github.com/nhle/plant-care/internal/ui/settings"
)

func runTUI(ctx context.Context, env *Env) error {
	prefs := theme.LoadPreferences(ctx, env.Store, theme.DefaultPreferences(env.Config.Display.Theme))
	prefs.Apply()

	m := app.New(app.Deps{
		Config:      env.Config,
		ConfigPath:  env.ConfigPath,
		Store:       env.Store,
		API:         env.API,
		Provider:    env.Provider,
		Sessions:    env.Sessions,
		Credentials: env.Credentials,
		Tracker:     env.Tracker,
		Poller:      env.Poller,
		Prefs:       prefs,
		Logger:      env.Logger,
		Now:         env.Now,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := os.Stat(env.ConfigPath); err == nil {
		model.WatchConfig(env.ConfigPath,
			func(cfg *model.AppConfig) {
				env.Logger.Info().Str("path", env.ConfigPath).Msg("config reloaded")
				p.Send(settings.SavedMsg{Config: cfg})
			},
			func(err error) {
				env.Logger.Warn().Err(err).Msg("config reload failed")
			},
		)
	}

	_, err := p.Run()
	if env.Poller != nil {
		env.Poller.Stop()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return zerr.Wrap(err, "running terminal interface")
	}
	return nil
}
