package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/store"
	"github.com/nhle/plant-care/internal/theme"
)

// LoadedMsg carries the figures shown on the dashboard.
type LoadedMsg struct {
	Summary       model.Summary
	Notifications []model.Notification
	Err           error
}

// CloseMsg signals the parent to leave the dashboard.
type CloseMsg struct{}

// Model summarizes a plant collection: totals, plants due and watered
// today, counts per category and unread watering notifications.
type Model struct {
	store   store.Store
	keys    *keys.KeyMap
	owner   string
	today   func() time.Time
	summary model.Summary
	notes   []model.Notification
	err     error
	width   int
	height  int
}

// New creates a dashboard model.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	return Model{
		store:  s,
		keys:   k,
		today:  func() time.Time { return schedule.Today(time.Now) },
		width:  width,
		height: height,
	}
}

// SetOwner restricts the figures to one user's plants. Empty means all.
func (m *Model) SetOwner(email string) { m.owner = email }

// SetToday overrides the clock.
func (m *Model) SetToday(today func() time.Time) { m.today = today }

// Summary returns the figures last loaded.
func (m Model) Summary() model.Summary { return m.summary }

// Init loads the figures.
func (m Model) Init() tea.Cmd { return m.Reload() }

// Reload returns a command that recomputes the figures from the store.
func (m Model) Reload() tea.Cmd {
	s := m.store
	owner := m.owner
	day := m.today()
	return func() tea.Msg {
		ctx := context.Background()
		filter := store.PlantFilter{}
		if owner != "" {
			filter.OwnerEmail = &owner
		}
		plants, err := s.GetPlants(ctx, filter)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		notes, err := s.GetUnreadNotifications(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Summary: model.Summarize(plants, day), Notifications: notes}
	}
}

// MarkAllRead clears the unread notifications.
func (m Model) MarkAllRead() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		if err := s.MarkAllNotificationsRead(context.Background()); err != nil {
			return LoadedMsg{Err: err}
		}
		return nil
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.summary = msg.Summary
			m.notes = msg.Notifications
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.Refresh):
			return m, m.Reload()
		case msg.String() == "x":
			m.notes = nil
			return m, m.MarkAllRead()
		}
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	title := "Dashboard · all plants"
	if m.owner != "" {
		title = "Dashboard · " + m.owner
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			titleStyle.Render(title) + "\n" + theme.ErrorStyle.Render(m.err.Error()),
		)
	}

	s := m.summary
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total plants", s.Total, theme.ColorLeaf),
		card("Due today", s.DueToday, theme.ColorOrange),
		card("Overdue", s.Overdue, theme.ColorRed),
		card("Watered today", s.WateredToday, theme.ColorBlue),
	)

	sections := []string{titleStyle.Render(title), cards, ""}

	sections = append(sections, lipgloss.NewStyle().Bold(true).Render("By category"))
	if len(s.ByCategory) == 0 {
		sections = append(sections, theme.HelpStyle.Render("no plants"))
	}
	for _, c := range sortedCategories(s.ByCategory) {
		label := c
		if label == "" {
			label = "uncategorized"
		}
		bar := strings.Repeat("█", min(s.ByCategory[c], 40))
		sections = append(sections, fmt.Sprintf("%s %s %d",
			theme.LabelStyle.Render(label),
			theme.CategoryStyle(c).Render(bar),
			s.ByCategory[c],
		))
	}

	sections = append(sections, "", lipgloss.NewStyle().Bold(true).Render("Coming up this week"))
	if len(s.UpcomingWeek) == 0 {
		sections = append(sections, theme.HelpStyle.Render("nothing to water"))
	}
	for _, p := range s.UpcomingWeek {
		sections = append(sections, theme.LabelStyle.Render(p.NextWateringDate)+p.PlantName)
	}

	if len(m.notes) > 0 {
		sections = append(sections, "", lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("Notifications (%d)", len(m.notes)),
		))
		for _, n := range m.notes {
			sections = append(sections, theme.LabelStyle.Render(n.Day)+n.Message)
		}
		sections = append(sections, theme.HelpStyle.Render("x mark all read"))
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func card(label string, n int, color lipgloss.AdaptiveColor) string {
	value := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprint(n))
	return theme.CardStyle.BorderForeground(color).Render(value + "\n" + theme.HelpStyle.Render(label))
}

func sortedCategories(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
