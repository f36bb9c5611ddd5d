package plantlist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/theme"
)

// PlantItem wraps a model.Plant so it can be used in a bubbles/list.
type PlantItem struct {
	Plant model.Plant
}

// FilterValue returns the string used for fuzzy filtering.
func (i PlantItem) FilterValue() string { return i.Plant.PlantName }

// Title returns the plant name for the list.
func (i PlantItem) Title() string { return i.Plant.PlantName }

// Description returns a short summary line for the list.
func (i PlantItem) Description() string {
	parts := []string{i.Plant.Category, i.Plant.CareLevel, i.Plant.WateringFrequency}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering plant rows.
type ItemDelegate struct {
	// Today returns the local calendar day used for due highlighting.
	Today func() time.Time
	// Owner is the signed-in user's email; their plants get a marker.
	Owner string
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

var (
	rowStyle      = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(theme.ColorLeaf).
			Foreground(theme.ColorLeaf)
)

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(PlantItem)
	if !ok {
		return
	}
	p := pi.Plant

	day := schedule.Today(time.Now)
	if d.Today != nil {
		day = d.Today()
	}

	mine := " "
	if d.Owner != "" && p.IsOwnedBy(d.Owner) {
		mine = lipgloss.NewStyle().Foreground(theme.ColorLeaf).Render("●")
	}

	category := theme.CategoryStyle(p.Category).Render(categoryBadge(p.Category))
	care := theme.CareLevelStyle(p.CareLevel).Render(careBadge(p.CareLevel))

	line := fmt.Sprintf("%s %s %s %s  %s", mine, category, care, p.PlantName, dueLabel(p, day))

	if index == m.Index() {
		line = selectedStyle.Render(line)
	} else {
		line = rowStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// dueLabel renders the next watering date relative to day.
func dueLabel(p model.Plant, day time.Time) string {
	if p.NextWateringDate == "" {
		return theme.HelpStyle.Render("no schedule")
	}
	overdue := p.Overdue(day)
	today := p.NextWateringDate == schedule.FormatDate(day)
	text := "water " + relativeDay(p.NextWateringDate, day)
	return theme.DueStyle(overdue, today).Render(text)
}

// relativeDay describes date relative to day in whole days.
func relativeDay(date string, day time.Time) string {
	t, err := schedule.ParseDate(date)
	if err != nil {
		return date
	}
	n := int(t.Sub(day).Hours() / 24)
	switch {
	case n == 0:
		return "today"
	case n == 1:
		return "tomorrow"
	case n == -1:
		return "yesterday"
	case n < 0:
		return fmt.Sprintf("%dd overdue", -n)
	case n < 7:
		return fmt.Sprintf("in %dd", n)
	default:
		return t.Format("Jan 02")
	}
}

// categoryBadge returns a fixed-width label for a category.
func categoryBadge(c string) string {
	if c == "" {
		return "---"
	}
	return strings.ToUpper(c)[:min(3, len(c))]
}

// careBadge returns a one-letter care level marker.
func careBadge(level string) string {
	switch strings.ToLower(level) {
	case model.CareEasy:
		return "E"
	case model.CareModerate:
		return "M"
	case model.CareDifficult:
		return "D"
	default:
		return "?"
	}
}
