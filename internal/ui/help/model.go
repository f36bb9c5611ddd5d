package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/theme"
	"github.com/nhle/plant-care/internal/ui/command"
)

// Model is the help overlay: key bindings, palette commands and a short
// note on how watering dates are derived. Long pages scroll with j/k.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	viewport viewport.Model
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	m := Model{
		keys:     k,
		help:     help.New(),
		viewport: viewport.New(0, 0),
	}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update scrolls the page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help overlay.
func (m Model) View() string {
	return theme.DetailPanelStyle.Render(m.viewport.View())
}

// SetSize resizes the page and reflows its content.
func (m *Model) SetSize(width, height int) {
	inner := max(width-6, 20)
	m.help.Width = inner
	m.viewport.Width = inner
	m.viewport.Height = max(height-4, 3)
	m.viewport.SetContent(m.content())
}

func (m Model) content() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	h := m.help
	h.ShowAll = true

	var b strings.Builder
	b.WriteString(heading.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(h.View(m.keys))
	b.WriteString("\n\n")

	b.WriteString(heading.Render("Commands"))
	b.WriteString("\n\n")
	for _, n := range command.Suggest("") {
		b.WriteString(theme.LabelStyle.Render(":" + string(n)))
		b.WriteString(command.Describe(n))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	sorts := make([]string, len(model.SortModes))
	for i, s := range model.SortModes {
		sorts[i] = s.Label()
	}
	b.WriteString(heading.Render("Watering"))
	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("Tab cycles the sort: " + strings.Join(sorts, " → ")))
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(
		"The next watering date is the last watered date plus the first number " +
			"in the frequency, in days. \"every 3 days\" waters three days later; " +
			"a frequency without a number has no date."))
	return b.String()
}
