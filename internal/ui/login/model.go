package login

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/auth"
	"github.com/nhle/plant-care/internal/theme"
)

const (
	actionSignIn   = "signin"
	actionRegister = "register"
)

// SignInTimeout bounds one round trip to the identity provider.
const SignInTimeout = 20 * time.Second

// LoggedInMsg is sent after the session was obtained and saved.
type LoggedInMsg struct {
	Session *auth.Session
}

// CancelMsg is sent when the user leaves the login view.
type CancelMsg struct{}

type failedMsg struct{ err error }

type formBindings struct {
	action   string
	name     string
	photoURL string
	email    string
	password string
}

// Model is the sign-in / registration view.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	provider auth.Provider
	sessions *auth.SessionStore
	busy     bool
	err      error
	width    int
	height   int
}

// New creates a login model.
func New(p auth.Provider, sessions *auth.SessionStore, width, height int) Model {
	return Model{
		fb:       &formBindings{action: actionSignIn},
		provider: p,
		sessions: sessions,
		width:    width,
		height:   height,
	}
}

// Start resets the form. Pass register to preselect account creation.
func (m *Model) Start(register bool) tea.Cmd {
	email := m.fb.email
	*m.fb = formBindings{action: actionSignIn, email: email}
	if register {
		m.fb.action = actionRegister
	}
	m.busy = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Err returns the last sign-in failure.
func (m Model) Err() error { return m.err }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case failedMsg:
		m.err = msg.err
		return m, m.Start(m.fb.action == actionRegister)
	case LoggedInMsg:
		m.err = nil
		m.busy = false
		return m, nil
	}

	if m.form == nil || m.busy {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.busy = true
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	fb := *m.fb
	provider := m.provider
	sessions := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), SignInTimeout)
		defer cancel()
		sess, err := Authenticate(ctx, provider, fb.action == actionRegister,
			fb.name, strings.TrimSpace(fb.email), fb.password, strings.TrimSpace(fb.photoURL))
		if err != nil {
			return failedMsg{err: err}
		}
		if err := sessions.Save(sess); err != nil {
			return failedMsg{err: fmt.Errorf("saving session: %w", err)}
		}
		return LoggedInMsg{Session: sess}
	}
}

// Authenticate signs in, or registers when register is set. Registration
// enforces the password policy before contacting the provider.
func Authenticate(ctx context.Context, p auth.Provider, register bool, name, email, password, photoURL string) (*auth.Session, error) {
	if register {
		if err := auth.ValidatePassword(password); err != nil {
			return nil, err
		}
		return p.SignUp(ctx, strings.TrimSpace(name), email, password, photoURL)
	}
	return p.SignIn(ctx, email, password)
}

// View renders the form, or a progress note while the provider answers.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome back, plant lover"))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(theme.ErrorStyle.Render(friendly(m.err)))
		b.WriteString("\n\n")
	}
	switch {
	case m.busy:
		b.WriteString(theme.HelpStyle.Render("Signing in..."))
	case m.form != nil:
		b.WriteString(m.form.View())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func friendly(err error) string {
	var pe *auth.ProviderError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return err.Error()
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fb := m.fb
	registering := func() bool { return fb.action == actionRegister }

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account").
				Options(
					huh.NewOption("Sign in", actionSignIn),
					huh.NewOption("Create an account", actionRegister),
				).
				Value(&fb.action),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Photo URL").
				Placeholder("optional").
				Value(&fb.photoURL),
		).WithHideFunc(func() bool { return !registering() }),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fb.email).
				Validate(func(s string) error {
					if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&fb.password).
				Validate(func(s string) error {
					if registering() {
						return auth.ValidatePassword(s)
					}
					if s == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 80)
}

func (m Model) formHeight() int {
	return max(m.height-6, 10)
}
