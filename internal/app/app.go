package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/credential"
	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/store"
	appsync "github.com/nhle/plant-care/internal/sync"
	"github.com/nhle/plant-care/internal/theme"
	"github.com/nhle/plant-care/internal/ui"
	"github.com/nhle/plant-care/internal/ui/command"
	"github.com/nhle/plant-care/internal/ui/dashboard"
	"github.com/nhle/plant-care/internal/ui/detail"
	helpview "github.com/nhle/plant-care/internal/ui/help"
	"github.com/nhle/plant-care/internal/ui/login"
	"github.com/nhle/plant-care/internal/ui/myplants"
	"github.com/nhle/plant-care/internal/ui/plantform"
	"github.com/nhle/plant-care/internal/ui/plantlist"
	"github.com/nhle/plant-care/internal/ui/recentview"
	"github.com/nhle/plant-care/internal/ui/settings"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// noticeMsg shows a one-line message under the content.
type noticeMsg struct {
	text  string
	isErr bool
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewMine
	ViewDetail
	ViewForm
	ViewDashboard
	ViewLogin
	ViewHelp
	ViewCommand
	ViewSettings
	ViewRecent
)

// private reports whether v needs a signed-in user.
func (v ViewState) private() bool {
	switch v {
	case ViewMine, ViewDetail, ViewForm:
		return true
	}
	return false
}

// Deps are the collaborators the TUI drives.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Store      store.Store
	API        api.PlantService
	Provider   auth.Provider
	Sessions   *auth.SessionStore
	// Credentials receives secrets edited in the settings view. May be nil.
	Credentials *credential.Store
	Tracker     *recent.Tracker
	Poller      *appsync.Poller
	Prefs       theme.Preferences
	Logger      zerolog.Logger
	Now         func() time.Time
}

// pending remembers where to go once the user has signed in.
type pending struct {
	view    ViewState
	plantID string
	plant   *model.Plant
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the persistence layer.
type Model struct {
	deps         Deps
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	plantList    plantlist.Model
	detail       detail.Model
	form         plantform.Model
	myPlants     myplants.Model
	dashboard    dashboard.Model
	loginView    login.Model
	helpView     helpview.Model
	commandView  command.Model
	settingsView settings.Model
	recentView   recentview.Model
	user         *auth.User
	prefs        theme.Preferences
	after        *pending
	ready        bool
	unreadCount  int
	notice       noticeMsg
	authError    string
}

// New creates the root application model.
func New(d Deps) Model {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Config == nil {
		d.Config = model.DefaultConfig()
	}
	k := keys.DefaultKeyMap()
	today := func() time.Time { return schedule.Today(d.Now) }

	m := Model{
		deps:         d,
		currentView:  ViewList,
		keys:         k,
		plantList:    plantlist.New(d.Store, k, model.ParseSortMode(d.Config.Display.DefaultSort), 80, 24),
		detail:       detail.New(k, 80, 24),
		form:         plantform.New(80, 24),
		myPlants:     myplants.New(d.Store, d.API, k, 80, 24),
		dashboard:    dashboard.New(d.Store, k, 80, 24),
		loginView:    login.New(d.Provider, d.Sessions, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		settingsView: settings.New(d.Config, d.ConfigPath, d.Credentials, k, 80, 24),
		recentView:   recentview.New(d.Tracker, k, 80, 24),
		prefs:        d.Prefs,
	}
	m.plantList.SetToday(today)
	m.detail.SetToday(today)
	m.form.SetToday(today)
	m.dashboard.SetToday(today)

	if d.Sessions != nil {
		if u, err := d.Sessions.RequireUser(); err == nil {
			m.setUser(u)
		}
	}
	m.prefs.Apply()
	return m
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// User returns the signed-in user, or nil.
func (m Model) User() *auth.User { return m.user }

// Prefs returns the active display preference.
func (m Model) Prefs() theme.Preferences { return m.prefs }

func (m *Model) setUser(u *auth.User) {
	m.user = u
	email := ""
	if u != nil {
		email = u.Email
	}
	m.plantList.SetOwner(email)
	m.detail.SetOwner(email)
	m.myPlants.SetOwner(email)
	m.dashboard.SetOwner(email)
}

// Init returns the initial commands to load plants and start polling.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.plantList.Init(), m.fetchUnreadCount()}
	if m.deps.Poller != nil {
		cmds = append(cmds, m.deps.Poller.Start())
	}
	return tea.Batch(cmds...)
}

// navigate switches to v, redirecting to the login view first when v is
// private and nobody is signed in.
func (m *Model) navigate(v ViewState, after *pending) tea.Cmd {
	if v.private() && m.user == nil {
		if after == nil {
			after = &pending{view: v}
		}
		m.after = after
		m.previousView = m.currentView
		m.currentView = ViewLogin
		m.notice = noticeMsg{text: "Sign in to continue"}
		return m.loginView.Start(false)
	}
	m.previousView = m.currentView
	m.currentView = v
	switch v {
	case ViewLogin:
		m.after = after
		return m.loginView.Start(false)
	case ViewList:
		return m.plantList.LoadPlants()
	case ViewMine:
		return m.myPlants.Reload()
	case ViewDashboard:
		return m.dashboard.Reload()
	case ViewSettings:
		m.settingsView.Open(m.deps.Config)
	case ViewRecent:
		return m.recentView.Reload()
	}
	return nil
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.plantList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.myPlants.SetSize(w, h)
		m.dashboard.SetSize(w, h)
		m.loginView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.recentView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.authError = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authError = ""
		}
		if msg.Error == nil && msg.NewPlantCount > 0 {
			m.notice = noticeMsg{text: fmt.Sprintf("%d new plant(s) synced", msg.NewPlantCount)}
		}
		return m, tea.Batch(
			m.reloadActive(),
			m.deps.Poller.WaitForNextResult(),
			m.fetchUnreadCount(),
		)

	case appsync.DueCheckMsg:
		if msg.Error != nil {
			m.notice = noticeMsg{text: "watering check: " + msg.Error.Error(), isErr: true}
		} else if msg.NewNotifications > 0 {
			m.notice = noticeMsg{text: fmt.Sprintf("%d plant(s) need water today", msg.NewNotifications)}
		}
		return m, tea.Batch(m.deps.Poller.WaitForNextResult(), m.fetchUnreadCount())

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case noticeMsg:
		m.notice = msg
		return m, nil

	case plantlist.PlantsLoadedMsg:
		var cmd tea.Cmd
		m.plantList, cmd = m.plantList.Update(msg)
		return m, cmd

	case plantlist.SelectedPlantMsg:
		return m, m.openDetail(msg.PlantID)

	case myplants.OpenMsg:
		return m, m.openDetail(msg.PlantID)

	case recentview.OpenMsg:
		return m, m.openDetail(msg.PlantID)

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = m.listView()
		return m, m.reloadActive()

	case detail.ActionMsg:
		return m, m.handleDetailAction(msg)

	case myplants.CloseMsg, dashboard.CloseMsg, recentview.CloseMsg:
		m.currentView = ViewList
		return m, m.plantList.LoadPlants()

	case myplants.AddMsg:
		return m, m.startCreate()

	case myplants.EditMsg:
		return m, m.startEdit(msg.Plant)

	case myplants.PlantDeletedMsg:
		var cmd tea.Cmd
		m.myPlants, cmd = m.myPlants.Update(msg)
		return m, tea.Batch(cmd, m.afterDelete(msg))

	case plantform.PlantSubmittedMsg:
		m.currentView = m.previousView
		if m.currentView == ViewForm || m.currentView.private() && m.user == nil {
			m.currentView = ViewList
		}
		return m, m.savePlant(msg.Plant, msg.Edit, "")

	case plantform.PlantFormCancelMsg:
		m.currentView = m.previousView
		if m.currentView == ViewForm {
			m.currentView = ViewList
		}
		return m, nil

	case plantSavedMsg:
		if msg.err != nil {
			m.notice = noticeMsg{text: msg.err.Error(), isErr: true}
		} else {
			m.notice = noticeMsg{text: msg.text}
		}
		if m.currentView == ViewDetail && msg.plantID != "" {
			return m, m.loadDetail(msg.plantID)
		}
		return m, m.reloadActive()

	case login.LoggedInMsg:
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		m.setUser(&msg.Session.User)
		m.authError = ""
		m.notice = noticeMsg{text: "Signed in as " + msg.Session.User.Email}
		next := m.resume()
		if m.deps.Poller != nil {
			m.deps.Poller.RefreshAll()
		}
		return m, tea.Batch(cmd, next)

	case login.CancelMsg:
		m.after = nil
		m.currentView = ViewList
		return m, m.plantList.LoadPlants()

	case settings.SavedMsg:
		m.deps.Config = msg.Config
		mode := model.ParseSortMode(msg.Config.Display.DefaultSort)
		if mode != m.plantList.Sort() {
			m.plantList.SetSort(mode)
		}
		m.notice = noticeMsg{text: "Settings saved. API and reminder changes apply on restart."}
		return m, nil

	case settings.DoneMsg:
		m.currentView = ViewList
		return m, m.plantList.LoadPlants()

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case command.ErrorMsg:
		m.currentView = m.previousView
		m.notice = noticeMsg{text: msg.Err.Error(), isErr: true}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturesText reports whether the active view owns free text input, in
// which case single-letter shortcuts must reach it untouched.
func (m Model) capturesText() bool {
	switch m.currentView {
	case ViewForm, ViewLogin, ViewCommand:
		return true
	case ViewList:
		return m.plantList.Searching()
	case ViewMine:
		return m.myPlants.Confirming()
	case ViewSettings:
		return m.settingsView.Editing()
	case ViewRecent:
		return m.recentView.Confirming()
	}
	return false
}

// handleGlobalKey processes keys that work regardless of the current view.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}

	if m.currentView == ViewHelp || m.currentView == ViewCommand {
		if key.Matches(msg, m.keys.Back) ||
			(m.currentView == ViewHelp && key.Matches(msg, m.keys.Help)) {
			m.currentView = m.previousView
			return nil, true
		}
	}

	if m.capturesText() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.currentView == ViewList {
			return m.quit(), true
		}

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.ToggleDark):
		return m.setDarkMode(!m.prefs.DarkMode), true

	case key.Matches(msg, m.keys.Login):
		if m.user != nil {
			return m.logout(), true
		}
		return m.navigate(ViewLogin, &pending{view: m.currentView}), true

	case key.Matches(msg, m.keys.Dashboard):
		return m.navigate(ViewDashboard, nil), true

	case key.Matches(msg, m.keys.AllPlants):
		m.plantList.SetMineOnly(false)
		return m.navigate(ViewList, nil), true

	case key.Matches(msg, m.keys.MyPlants):
		return m.navigate(ViewMine, nil), true

	case key.Matches(msg, m.keys.Recent):
		if m.currentView == ViewList {
			return m.navigate(ViewRecent, nil), true
		}

	case key.Matches(msg, m.keys.Settings):
		if m.currentView == ViewList {
			return m.navigate(ViewSettings, nil), true
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewList {
			return m.refresh(), true
		}

	case key.Matches(msg, m.keys.Add):
		if m.currentView == ViewList {
			return m.startCreate(), true
		}

	case key.Matches(msg, m.keys.Edit):
		if m.currentView == ViewList {
			if p, ok := m.plantList.Selected(); ok && m.user != nil && p.IsOwnedBy(m.user.Email) {
				return m.startEdit(p), true
			}
		}
	}
	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.plantList, cmd = m.plantList.Update(msg)
	case ViewMine:
		m.myPlants, cmd = m.myPlants.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewRecent:
		m.recentView, cmd = m.recentView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return m.layout.Render(ui.Frame{
		Title:   "Plant Care",
		Due:     m.unreadCount,
		Status:  m.headerStatus(),
		Content: m.renderContent(),
		Notice:  m.notice.text,
		IsError: m.notice.isErr,
		Hints:   m.keyHints(),
	})
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.plantList.View()
	case ViewMine:
		return m.myPlants.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewLogin:
		return m.loginView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewRecent:
		return m.recentView.View()
	default:
		return ""
	}
}

// headerStatus describes the signed-in user, display mode and sync state.
func (m Model) headerStatus() string {
	who := "guest"
	if m.user != nil {
		who = m.user.Email
		if m.user.Name != "" {
			who = m.user.Name
		}
	}
	sync := "offline"
	if m.deps.Poller != nil {
		st := m.deps.Poller.Status()
		sync = st.State.String()
		if st.State == appsync.SyncIdle && !st.LastSync.IsZero() {
			sync = "synced " + st.LastSync.Format("15:04")
		}
	}
	return fmt.Sprintf("%s · %s · %s", who, m.prefs.Label(), sync)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.authError != "" && m.currentView == ViewList {
		return m.authError
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | e edit | w watered | d delete | j/k scroll"
	case ViewForm:
		return "enter next | shift+tab previous | ctrl+c cancel"
	case ViewLogin:
		return "enter next | ctrl+c cancel"
	case ViewMine:
		return "n add | e edit | d delete | esc back"
	case ViewDashboard:
		return "r reload | x mark read | esc back"
	case ViewSettings:
		return "a api | m reminders | v display | enter test | esc back"
	case ViewRecent:
		return "enter open | d forget | c clear all | esc back"
	default:
		return fmt.Sprintf("q quit | ? help | / search | tab sort (%s) | 1 dashboard | 3 mine | s settings | D %s | L %s",
			m.plantList.Sort().Label(), m.prefs.Toggled().Label(), m.loginHint())
	}
}

func (m Model) loginHint() string {
	if m.user != nil {
		return "sign out"
	}
	return "sign in"
}

// listView is the view a detail page returns to.
func (m Model) listView() ViewState {
	switch m.previousView {
	case ViewMine, ViewDashboard, ViewRecent:
		return m.previousView
	}
	return ViewList
}

// reloadActive refreshes whatever the active view shows from the store.
func (m Model) reloadActive() tea.Cmd {
	switch m.currentView {
	case ViewMine:
		return m.myPlants.Reload()
	case ViewDashboard:
		return m.dashboard.Reload()
	case ViewRecent:
		return m.recentView.Reload()
	}
	return m.plantList.LoadPlants()
}

// fetchUnreadCount returns a tea.Cmd that queries the store for the
// number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.deps.Store
	return func() tea.Msg {
		notifications, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(notifications)}
	}
}

func (m *Model) refresh() tea.Cmd {
	if m.deps.Poller != nil {
		m.deps.Poller.RefreshAll()
	}
	return m.plantList.LoadPlants()
}

func (m *Model) quit() tea.Cmd {
	if m.deps.Poller != nil {
		m.deps.Poller.Stop()
	}
	return tea.Quit
}

// resume continues to the view the user wanted before signing in.
func (m *Model) resume() tea.Cmd {
	after := m.after
	m.after = nil
	if after == nil || after.view == ViewLogin {
		m.currentView = ViewList
		return m.plantList.LoadPlants()
	}
	switch {
	case after.view == ViewDetail && after.plantID != "":
		m.currentView = ViewList
		return m.openDetail(after.plantID)
	case after.view == ViewForm && after.plant != nil:
		m.currentView = ViewList
		return m.startEdit(*after.plant)
	case after.view == ViewForm:
		m.currentView = ViewList
		return m.startCreate()
	}
	m.currentView = ViewList
	return m.navigate(after.view, nil)
}

// executeCommand handles a parsed command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case command.Dark:
		return m.setDarkMode(true)
	case command.Light:
		return m.setDarkMode(false)
	case command.Sort:
		mode := model.ParseSortMode(c.Args[0])
		m.plantList.SetSort(mode)
		m.notice = noticeMsg{text: "Sorted by " + mode.Label()}
		return m.plantList.LoadPlants()
	case command.Mine:
		if m.user == nil {
			return m.navigate(ViewMine, nil)
		}
		m.plantList.SetMineOnly(true)
		return m.navigate(ViewList, nil)
	case command.All:
		m.plantList.SetMineOnly(false)
		return m.navigate(ViewList, nil)
	case command.Dashboard:
		return m.navigate(ViewDashboard, nil)
	case command.Add:
		return m.startCreate()
	case command.Login:
		return m.navigate(ViewLogin, &pending{view: ViewList})
	case command.Logout:
		return m.logout()
	case command.Refresh:
		return m.refresh()
	case command.Check:
		return m.checkDueNow()
	case command.Recent:
		if len(c.Args) > 0 && c.Args[0] == "clear" {
			return m.clearRecent()
		}
		return m.navigate(ViewRecent, nil)
	case command.Settings:
		return m.navigate(ViewSettings, nil)
	case command.Quit:
		return m.quit()
	}
	return nil
}
