package settings

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/credential"
	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	appsync "github.com/nhle/plant-care/internal/sync"
	"github.com/nhle/plant-care/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeSummary        Mode = iota // Show current settings
	ModeFormAPI                    // Plant API and identity provider
	ModeFormReminders              // Watering check and email
	ModeFormDisplay                // Theme, sort and polling
	ModeValidating                 // Testing the API connection
	ModeValidateResult             // Show the connection result
)

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

// SavedMsg carries the configuration after it was written to disk.
type SavedMsg struct {
	Config *model.AppConfig
}

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Plants int
	Err    error
}

type savedInternalMsg struct {
	cfg *model.AppConfig
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL     string
	timeout     string
	authURL     string
	apiKey      string
	enabled     bool
	email       bool
	schedule    string
	timezone    string
	from        string
	smtpHost    string
	smtpPort    string
	smtpUser    string
	smtpPass    string
	smtpTLS     string
	themeName   string
	defaultSort string
	pollSec     string
}

// Model is the Bubble Tea model for editing the configuration file.
type Model struct {
	mode  Mode
	cfg   *model.AppConfig
	path  string
	creds *credential.Store
	fb    *formBindings
	form  *huh.Form

	validPlants int
	validError  error
	spinner     spinner.Model

	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings view editing cfg, saved to path. creds receives
// the SMTP password and may be nil.
func New(cfg *model.AppConfig, path string, creds *credential.Store, k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return Model{
		mode:    ModeSummary,
		cfg:     cfg,
		path:    path,
		creds:   creds,
		fb:      &formBindings{},
		keys:    k,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Open shows the summary for cfg, discarding any unfinished form.
func (m *Model) Open(cfg *model.AppConfig) {
	if cfg != nil {
		m.cfg = cfg
	}
	m.mode = ModeSummary
	m.form = nil
	m.statusMsg = ""
}

// Mode returns the current mode.
func (m Model) Mode() Mode { return m.mode }

// Editing reports whether a form has focus.
func (m Model) Editing() bool {
	switch m.mode {
	case ModeFormAPI, ModeFormReminders, ModeFormDisplay:
		return true
	}
	return false
}

// Config returns the configuration being edited.
func (m Model) Config() *model.AppConfig { return m.cfg }

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case savedInternalMsg:
		m.mode = ModeSummary
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, nil
		}
		m.cfg = msg.cfg
		m.statusMsg = "Settings saved to " + m.path
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case ValidateResultMsg:
		m.validPlants = msg.Plants
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m.updateForm(msg)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case ModeSummary:
		return m.handleSummaryKeys(msg)
	case ModeValidating:
		// Only allow escape during validation
		if msg.String() == "esc" {
			m.mode = ModeSummary
		}
		return m, nil
	case ModeValidateResult:
		switch msg.String() {
		case "enter", "esc":
			m.mode = ModeSummary
			m.validError = nil
		case "r":
			return m.startValidation()
		}
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) handleSummaryKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return DoneMsg{} }

	case msg.String() == "a":
		return m.openForm(ModeFormAPI)

	case msg.String() == "m":
		return m.openForm(ModeFormReminders)

	case msg.String() == "v":
		return m.openForm(ModeFormDisplay)

	case msg.String() == "enter":
		return m.startValidation()
	}
	return m, nil
}

func (m Model) startValidation() (Model, tea.Cmd) {
	m.mode = ModeValidating
	return m, tea.Batch(m.spinner.Tick, ValidateConnection(m.cfg.API))
}

func (m Model) openForm(mode Mode) (Model, tea.Cmd) {
	m.loadBindings()
	m.mode = mode
	switch mode {
	case ModeFormAPI:
		m.form = m.buildAPIForm()
	case ModeFormReminders:
		m.form = m.buildRemindersForm()
	default:
		m.form = m.buildDisplayForm()
	}
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Editing() || m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.applyBindings()
		if err != nil {
			m.mode = ModeSummary
			m.statusMsg = err.Error()
			return m, nil
		}
		return m, m.save(cfg, m.fb.smtpPass)
	case huh.StateAborted:
		m.mode = ModeSummary
		return m, nil
	}
	return m, cmd
}

func (m *Model) loadBindings() {
	c := m.cfg
	*m.fb = formBindings{
		baseURL:     c.API.BaseURL,
		timeout:     strconv.Itoa(c.API.TimeoutSec),
		authURL:     c.Auth.Endpoint,
		apiKey:      c.Auth.APIKey,
		enabled:     c.Reminders.Enabled,
		email:       c.Reminders.Email,
		schedule:    c.Reminders.Schedule,
		timezone:    c.Reminders.Timezone,
		from:        c.Reminders.From,
		smtpHost:    c.Reminders.SMTP.Host,
		smtpPort:    strconv.Itoa(c.Reminders.SMTP.Port),
		smtpUser:    c.Reminders.SMTP.Username,
		smtpTLS:     c.Reminders.SMTP.TLS,
		themeName:   c.Display.Theme,
		defaultSort: string(model.ParseSortMode(c.Display.DefaultSort)),
		pollSec:     strconv.Itoa(c.Display.PollIntervalSec),
	}
}

// applyBindings returns a copy of the configuration with the form values.
func (m Model) applyBindings() (*model.AppConfig, error) {
	cfg := *m.cfg
	fb := m.fb

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(fb.baseURL), "/")
	cfg.Auth.Endpoint = strings.TrimSpace(fb.authURL)
	cfg.Auth.APIKey = strings.TrimSpace(fb.apiKey)
	cfg.Reminders.Enabled = fb.enabled
	cfg.Reminders.Email = fb.email
	cfg.Reminders.Schedule = strings.TrimSpace(fb.schedule)
	cfg.Reminders.Timezone = strings.TrimSpace(fb.timezone)
	cfg.Reminders.From = strings.TrimSpace(fb.from)
	cfg.Reminders.SMTP.Host = strings.TrimSpace(fb.smtpHost)
	cfg.Reminders.SMTP.Username = strings.TrimSpace(fb.smtpUser)
	cfg.Reminders.SMTP.TLS = fb.smtpTLS
	cfg.Display.Theme = fb.themeName
	cfg.Display.DefaultSort = fb.defaultSort

	var err error
	if cfg.API.TimeoutSec, err = strconv.Atoi(strings.TrimSpace(fb.timeout)); err != nil {
		return nil, fmt.Errorf("timeout must be a number of seconds")
	}
	if cfg.Reminders.SMTP.Port, err = strconv.Atoi(strings.TrimSpace(fb.smtpPort)); err != nil {
		return nil, fmt.Errorf("SMTP port must be a number")
	}
	if cfg.Display.PollIntervalSec, err = strconv.Atoi(strings.TrimSpace(fb.pollSec)); err != nil {
		return nil, fmt.Errorf("poll interval must be a number of seconds")
	}
	return &cfg, nil
}

func (m Model) buildAPIForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Plant API URL").
				Placeholder("http://localhost:3000").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&m.fb.timeout).
				Validate(validateNumber),
			huh.NewInput().
				Title("Identity endpoint").
				Value(&m.fb.authURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Identity API key").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.apiKey),
		),
	).WithWidth(m.formWidth())
}

func (m Model) buildRemindersForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Run the daily watering check?").
				Value(&m.fb.enabled),
			huh.NewInput().
				Title("Schedule (cron)").
				Placeholder("0 8 * * *").
				Value(&m.fb.schedule).
				Validate(appsync.ValidateSchedule),
			huh.NewInput().
				Title("Time zone").
				Placeholder("Local").
				Value(&m.fb.timezone).
				Validate(validateTimezone),
			huh.NewConfirm().
				Title("Email reminders to plant owners?").
				Value(&m.fb.email),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("From address").
				Value(&m.fb.from),
			huh.NewInput().
				Title("SMTP host").
				Value(&m.fb.smtpHost),
			huh.NewInput().
				Title("SMTP port").
				Value(&m.fb.smtpPort).
				Validate(validateNumber),
			huh.NewInput().
				Title("SMTP username").
				Value(&m.fb.smtpUser),
			huh.NewInput().
				Title("SMTP password").
				Description("Stored in the system keyring. Leave empty to keep the current one.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.smtpPass),
			huh.NewSelect[string]().
				Title("TLS").
				Options(
					huh.NewOption("STARTTLS", "starttls"),
					huh.NewOption("Implicit TLS", "implicit"),
				).
				Value(&m.fb.smtpTLS),
		).WithHideFunc(func() bool { return !m.fb.email }),
	).WithWidth(m.formWidth())
}

func (m Model) buildDisplayForm() *huh.Form {
	sorts := make([]huh.Option[string], len(model.SortModes))
	for i, s := range model.SortModes {
		sorts[i] = huh.NewOption(s.Label(), string(s))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Follow terminal", "auto"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.fb.themeName),
			huh.NewSelect[string]().
				Title("Default sort").
				Options(sorts...).
				Value(&m.fb.defaultSort),
			huh.NewInput().
				Title("Sync every (seconds)").
				Value(&m.fb.pollSec).
				Validate(validateNumber),
		),
	).WithWidth(m.formWidth())
}

// --- View ---

// View renders the settings UI based on the current mode.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Padding(1, 2).
		Width(m.width).
		Height(m.height)

	switch m.mode {
	case ModeFormAPI, ModeFormReminders, ModeFormDisplay:
		if m.form == nil {
			return ""
		}
		return style.Render(m.form.View())
	case ModeValidating:
		return style.Render(fmt.Sprintf(
			"%s Testing connection to %s...\n\nPress esc to cancel.",
			m.spinner.View(), m.cfg.API.BaseURL,
		))
	case ModeValidateResult:
		return style.Render(m.viewValidateResult())
	}
	return style.Render(m.viewSummary())
}

func (m Model) viewSummary() string {
	c := m.cfg
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		if value == "" {
			value = theme.HelpStyle.Render("not set")
		}
		b.WriteString(theme.LabelStyle.Render(label) + value + "\n")
	}

	row("Plant API", c.API.BaseURL)
	row("Identity", c.Auth.Endpoint)
	row("API key", mask(c.Auth.APIKey))
	b.WriteString("\n")
	check := "off"
	if c.Reminders.Enabled {
		check = c.Reminders.Schedule + " (" + c.Reminders.Timezone + ")"
	}
	row("Watering check", check)
	mail := "off"
	if c.Reminders.Email {
		mail = fmt.Sprintf("%s via %s:%d", c.Reminders.From, c.Reminders.SMTP.Host, c.Reminders.SMTP.Port)
	}
	row("Email reminders", mail)
	b.WriteString("\n")
	row("Theme", c.Display.Theme)
	row("Default sort", model.ParseSortMode(c.Display.DefaultSort).Label())
	row("Sync every", fmt.Sprintf("%ds", c.Display.PollIntervalSec))
	row("Config file", m.path)

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("a api | m reminders | v display | enter test connection | esc back"))
	return b.String()
}

func (m Model) viewValidateResult() string {
	if m.validError != nil {
		errStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorRed)
		return errStyle.Render("Connection failed") + "\n\n" +
			m.validError.Error() + "\n\n" +
			theme.HelpStyle.Render("r retry | enter/esc back")
	}
	okStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorLeaf)
	return okStyle.Render("Connection successful") + "\n\n" +
		fmt.Sprintf("%d plant(s) in the collection", m.validPlants) + "\n\n" +
		theme.HelpStyle.Render("enter/esc back")
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

// --- Helpers ---

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// ValidateConnection lists the collection once to prove the API answers.
func ValidateConnection(cfg model.APIConfig) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		c := api.NewClient(cfg.BaseURL, api.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second))
		plants, err := c.ListPlants(ctx)
		return ValidateResultMsg{Plants: len(plants), Err: err}
	}
}

// save writes cfg to disk and, when given, the SMTP password to the keyring.
func (m Model) save(cfg *model.AppConfig, password string) tea.Cmd {
	path := m.path
	creds := m.creds
	return func() tea.Msg {
		if password != "" && creds != nil {
			if err := creds.Set(credential.KeySMTPPassword, password); err != nil {
				return savedInternalMsg{err: fmt.Errorf("storing SMTP password: %w", err)}
			}
		}
		if err := model.SaveConfig(path, cfg); err != nil {
			return savedInternalMsg{err: err}
		}
		return savedInternalMsg{cfg: cfg}
	}
}

// --- Validators ---

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateNumber(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("a number is required")
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return fmt.Errorf("must be a positive number")
	}
	return nil
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "local") {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown time zone %q", s)
	}
	return nil
}
