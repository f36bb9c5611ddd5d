package recentview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/theme"
)

// CloseMsg signals the parent to close the recently viewed list.
type CloseMsg struct{}

// OpenMsg asks the parent to open a plant.
type OpenMsg struct {
	PlantID string
}

type viewMode int

const (
	modeList viewMode = iota
	modeConfirmClear
)

type formBindings struct {
	confirm bool
}

type itemsLoadedMsg struct {
	items []recent.Item
	err   error
}

type changedMsg struct {
	items  []recent.Item
	status string
	err    error
}

// entry is a cached snapshot ready to display.
type entry struct {
	id    string
	plant model.Plant
	ok    bool
}

// Model is the Bubble Tea model for managing the recently viewed plants.
type Model struct {
	mode        viewMode
	tracker     *recent.Tracker
	keys        *keys.KeyMap
	entries     []entry
	selectedIdx int
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a recently viewed manager backed by t.
func New(t *recent.Tracker, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:    modeList,
		tracker: t,
		keys:    k,
		fb:      &formBindings{},
		width:   width, height: height,
	}
}

// Init loads the cached items.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Confirming reports whether the clear confirmation has focus.
func (m Model) Confirming() bool { return m.mode == modeConfirmClear }

// Len returns the number of cached items.
func (m Model) Len() int { return len(m.entries) }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case itemsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.setItems(msg.items)
		return m, nil

	case changedMsg:
		m.mode = modeList
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, m.Reload()
		}
		m.statusMsg = msg.status
		m.setItems(msg.items)
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeConfirmClear {
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeConfirmClear {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m *Model) setItems(items []recent.Item) {
	m.entries = make([]entry, 0, len(items))
	for _, it := range items {
		p, err := recent.Decode[model.Plant](it)
		m.entries = append(m.entries, entry{id: it.ID, plant: p, ok: err == nil})
	}
	if m.selectedIdx >= len(m.entries) {
		m.selectedIdx = max(len(m.entries)-1, 0)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.entries) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.entries)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.entries) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.entries) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if e, ok := m.selected(); ok {
			return m, func() tea.Msg { return OpenMsg{PlantID: e.id} }
		}

	case key.Matches(msg, m.keys.Delete):
		if e, ok := m.selected(); ok {
			return m, m.remove(e)
		}

	case msg.String() == "c":
		if len(m.entries) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmClear
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) selected() (entry, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.entries) {
		return entry{}, false
	}
	return m.entries[m.selectedIdx], true
}

func (m Model) buildConfirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Forget all %d recently viewed plants?", len(m.entries))).
				Description("Plants themselves are not affected.").
				Affirmative("Yes, clear").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		m.mode = modeList
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		if m.fb.confirm {
			return m, m.Clear()
		}
		m.mode = modeList
		return m, nil
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the recently viewed list.
func (m Model) View() string {
	if m.mode == modeConfirmClear && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	capacity := 0
	if m.tracker != nil {
		capacity = m.tracker.Capacity()
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Recently Viewed (%d/%d)", len(m.entries), capacity)))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("Nothing viewed yet. Open a plant to see it here."))
	} else {
		for i, e := range m.entries {
			label := e.label()
			if i == m.selectedIdx {
				b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.ColorLeaf).Render("▸ " + label))
			} else {
				b.WriteString("  " + label)
			}
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render("enter open | d forget | c clear all | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (e entry) label() string {
	if !e.ok || e.plant.PlantName == "" {
		return e.id
	}
	s := e.plant.PlantName
	if e.plant.Category != "" {
		s += theme.HelpStyle.Render(" · " + e.plant.Category)
	}
	return s
}

// SetSize updates dimensions.
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

// Reload reads the cached sequence.
func (m Model) Reload() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if t == nil {
			return itemsLoadedMsg{}
		}
		items, err := t.LoadAll(context.Background())
		return itemsLoadedMsg{items: items, err: err}
	}
}

// Clear forgets every cached item.
func (m Model) Clear() tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if t == nil {
			return changedMsg{}
		}
		if err := t.Clear(context.Background()); err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{items: []recent.Item{}, status: "Recently viewed list cleared"}
	}
}

func (m Model) remove(e entry) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		items, err := t.RemoveItem(context.Background(), e.id)
		if err != nil {
			return changedMsg{err: err}
		}
		return changedMsg{items: items, status: "Forgot " + e.label()}
	}
}
