package app

import (
	"context"
	"testing"
	"time"

	"github.com/99designs/keyring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/credential"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/store"
	"github.com/nhle/plant-care/internal/testutil"
	"github.com/nhle/plant-care/internal/theme"
	"github.com/nhle/plant-care/internal/ui/command"
	"github.com/nhle/plant-care/internal/ui/detail"
	"github.com/nhle/plant-care/internal/ui/login"
)

type fixture struct {
	store    *store.SQLiteStore
	sessions *auth.SessionStore
	tracker  *recent.Tracker
	deps     Deps
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	fake := testutil.NewFakeAPI(t, testutil.SamplePlants()...)
	s := testutil.NewSeededStore(t)
	creds := credential.NewStore(keyring.NewArrayKeyring(nil))
	sessions := auth.NewSessionStore(creds)
	if signedIn {
		require.NoError(t, sessions.Save(&auth.Session{
			IDToken: "tok",
			User:    auth.User{UID: "u1", Name: "Sam", Email: "sam@example.com"},
		}))
	}
	tracker := recent.New(s, recent.WithCapacity(3))

	return &fixture{
		store:    s,
		sessions: sessions,
		tracker:  tracker,
		deps: Deps{
			Config:      model.DefaultConfig(),
			Store:       s,
			API:         api.NewClient(fake.URL(), api.WithToken(sessions.Token)),
			Sessions:    sessions,
			Credentials: creds,
			Tracker:     tracker,
			Prefs:       theme.Preferences{DarkMode: false},
			Logger:      zerolog.Nop(),
			Now:         func() time.Time { return time.Date(2024, time.January, 12, 9, 0, 0, 0, time.Local) },
		},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPrivateViewRedirectsToLogin(t *testing.T) {
	f := newFixture(t, false)
	m := New(f.deps)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	require.Nil(t, m.User())

	cmd := m.openDetail("p1")
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewLogin, m.CurrentView())
	require.NotNil(t, m.after)
	assert.Equal(t, "p1", m.after.plantID)

	m, _ = update(t, m, login.LoggedInMsg{Session: &auth.Session{
		IDToken: "tok",
		User:    auth.User{UID: "u1", Name: "Sam", Email: "sam@example.com"},
	}})
	require.NotNil(t, m.User())
	assert.Equal(t, ViewDetail, m.CurrentView())
	assert.Nil(t, m.after)
}

func TestPublicViewsStayOpenWhenSignedOut(t *testing.T) {
	f := newFixture(t, false)
	m := New(f.deps)

	m.navigate(ViewDashboard, nil)
	assert.Equal(t, ViewDashboard, m.CurrentView())

	m.navigate(ViewMine, nil)
	assert.Equal(t, ViewLogin, m.CurrentView())
}

func TestLoadDetailRecordsRecentView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	m := New(f.deps)

	_, err := f.tracker.RecordView(ctx, "p2", testutil.SamplePlants()[1])
	require.NoError(t, err)

	msg, ok := m.loadDetail("p1")().(detail.DetailLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "Boston Fern", msg.Plant.PlantName)
	require.Len(t, msg.Others, 1)
	assert.Equal(t, "p2", msg.Others[0].ID)

	items, err := f.tracker.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
}

func TestLoadDetailFallsBackToMirror(t *testing.T) {
	f := newFixture(t, true)
	f.deps.API = api.NewClient("http://127.0.0.1:1", api.WithTimeout(200*time.Millisecond))
	m := New(f.deps)

	msg, ok := m.loadDetail("p3")().(detail.DetailLoadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "Aloe Vera", msg.Plant.PlantName)
}

func TestDarkModeCommandPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	m := New(f.deps)
	t.Cleanup(func() { theme.Preferences{}.Apply() })

	cmd := m.executeCommand(command.CommandMsg{Name: command.Dark})
	require.NotNil(t, cmd)
	assert.True(t, m.Prefs().DarkMode)
	assert.Equal(t, noticeMsg{text: "dark mode"}, cmd())

	raw, found, err := f.store.Get(ctx, theme.DarkModeKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "true", raw)

	loaded := theme.LoadPreferences(ctx, f.store, theme.Preferences{})
	assert.True(t, loaded.DarkMode)
}

func TestSettingsAndRecentShortcuts(t *testing.T) {
	f := newFixture(t, false)
	m := New(f.deps)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = update(t, m, runes("s"))
	assert.Equal(t, ViewSettings, m.CurrentView())

	m.currentView = ViewList
	m, _ = update(t, m, runes("R"))
	assert.Equal(t, ViewRecent, m.CurrentView())

	m.currentView = ViewList
	m, _ = update(t, m, command.CommandMsg{Name: command.Settings})
	assert.Equal(t, ViewSettings, m.CurrentView())
}

func TestLogoutLeavesPrivateView(t *testing.T) {
	f := newFixture(t, true)
	m := New(f.deps)
	require.NotNil(t, m.User())

	m.navigate(ViewMine, nil)
	require.Equal(t, ViewMine, m.CurrentView())

	m.logout()
	assert.Nil(t, m.User())
	assert.Equal(t, ViewList, m.CurrentView())
	_, err := f.sessions.RequireUser()
	assert.ErrorIs(t, err, auth.ErrNotSignedIn)
}

func TestRecentClearCommand(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	m := New(f.deps)
	_, err := f.tracker.RecordView(ctx, "p1", testutil.SamplePlants()[0])
	require.NoError(t, err)

	cmd := m.executeCommand(command.CommandMsg{Name: command.Recent, Args: []string{"clear"}})
	require.NotNil(t, cmd)
	assert.Equal(t, noticeMsg{text: "Recently viewed list cleared"}, cmd())

	items, err := f.tracker.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestEditRefreshesRecentSnapshotInPlace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	m := New(f.deps)

	plants := testutil.SamplePlants()
	_, err := f.tracker.RecordView(ctx, "p1", plants[0])
	require.NoError(t, err)
	_, err = f.tracker.RecordView(ctx, "p2", plants[1])
	require.NoError(t, err)

	edited := plants[0]
	edited.PlantName = "Boston Fern (bathroom)"
	msg, ok := m.savePlant(edited, true, "")().(plantSavedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)

	items, err := f.tracker.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ID)
	assert.Equal(t, "p1", items[1].ID)
	cached, err := recent.Decode[model.Plant](items[1])
	require.NoError(t, err)
	assert.Equal(t, "Boston Fern (bathroom)", cached.PlantName)
}
