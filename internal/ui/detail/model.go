package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// DetailLoadedMsg carries the loaded plant and the other recently viewed
// plants, most recent first.
type DetailLoadedMsg struct {
	Plant  *model.Plant
	Others []model.Plant
	Err    error
}

// Actions the detail view can request from the parent.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionWater  = "water"
)

// ActionMsg signals the parent to execute an action on the current plant.
type ActionMsg struct {
	Action  string
	PlantID string
}

// Model is the plant detail view component.
type Model struct {
	plant    *model.Plant
	others   []model.Plant
	err      error
	viewport viewport.Model
	keys     *keys.KeyMap
	today    func() time.Time
	owner    string
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		today:    func() time.Time { return schedule.Today(time.Now) },
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.SetPlant(msg.Plant, msg.Others, msg.Err)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Edit):
			return m, m.action(ActionEdit)

		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete)

		case key.Matches(msg, m.keys.Water):
			return m, m.action(ActionWater)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// action returns a command requesting name on the current plant. Changes
// are limited to the owner's own plants.
func (m Model) action(name string) tea.Cmd {
	if m.plant == nil || !m.plant.IsOwnedBy(m.owner) {
		return nil
	}
	id := m.plant.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, PlantID: id}
	}
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loading:
		return placeholder.Render("Loading plant details...")
	case m.err != nil:
		return placeholder.Render(theme.ErrorStyle.Render(m.err.Error()))
	case m.plant == nil:
		return placeholder.Render("No plant selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.plant == nil {
		return ""
	}

	p := m.plant
	day := m.today()
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(p.PlantName))

	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.CategoryStyle(p.Category).Render(strings.ToUpper(p.Category)),
		"  ",
		theme.CareLevelStyle(p.CareLevel).Render(p.CareLevel),
		"  ",
		theme.HealthStyle(p.HealthStatus).Render(p.HealthStatus),
	)
	sections = append(sections, badgeLine, "")

	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, theme.LabelStyle.Render(label)+valStyle.Render(value))
	}

	row("Watering:", p.WateringFrequency)
	row("Last watered:", p.LastWateredDate)
	if p.NextWateringDate != "" {
		due := theme.DueStyle(p.Overdue(day), p.NextWateringDate == schedule.FormatDate(day)).
			Render(p.NextWateringDate)
		sections = append(sections, theme.LabelStyle.Render("Next watering:")+due)
	} else {
		sections = append(sections, theme.LabelStyle.Render("Next watering:")+theme.HelpStyle.Render("unknown"))
	}
	row("Owner:", ownerLine(*p))
	row("Image:", p.ImageURL)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections = append(sections, headerStyle.Render("Description"))
	body := p.Description
	if body == "" {
		body = theme.HelpStyle.Render("No description")
	}
	sections = append(sections, body)

	if len(m.others) > 0 {
		sections = append(sections, "", separator, "")
		sections = append(sections, headerStyle.Render(
			fmt.Sprintf("Recently Viewed (%d)", len(m.others)),
		))
		for _, o := range m.others {
			next := o.NextWateringDate
			if next == "" {
				next = "unknown"
			}
			sections = append(sections, fmt.Sprintf("%s %s  %s",
				theme.CategoryStyle(o.Category).Render("●"),
				o.PlantName,
				theme.HelpStyle.Render("next "+next),
			))
		}
	}

	if p.IsOwnedBy(m.owner) {
		sections = append(sections, "", theme.HelpStyle.Render("e edit · w watered today · d delete"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func ownerLine(p model.Plant) string {
	switch {
	case p.OwnerName != "" && p.OwnerEmail != "":
		return fmt.Sprintf("%s <%s>", p.OwnerName, p.OwnerEmail)
	case p.OwnerEmail != "":
		return p.OwnerEmail
	}
	return p.OwnerName
}

// SetPlant updates the plant being displayed and re-renders the content.
func (m *Model) SetPlant(p *model.Plant, others []model.Plant, err error) {
	m.plant = p
	m.others = others
	m.err = err
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Plant returns the plant on display.
func (m Model) Plant() *model.Plant { return m.plant }

// SetOwner records the signed-in user's email.
func (m *Model) SetOwner(email string) {
	m.owner = email
	m.viewport.SetContent(m.renderContent())
}

// SetToday overrides the clock used for due highlighting.
func (m *Model) SetToday(today func() time.Time) {
	m.today = today
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
