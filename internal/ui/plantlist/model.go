package plantlist

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/store"
	"github.com/nhle/plant-care/internal/theme"
)

// PlantsLoadedMsg is sent when plants have been loaded from the store.
type PlantsLoadedMsg struct {
	Plants []model.Plant
	Err    error
}

// SelectedPlantMsg is sent when a user selects a plant to view details.
type SelectedPlantMsg struct {
	PlantID string
}

// Model is the plant list view component, used both for the whole
// collection and, with the owner filter on, for "my plants".
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	delegate    *ItemDelegate
	filter      store.PlantFilter
	owner       string
	mineOnly    bool
	searchMode  bool
	searchInput textinput.Model
	loadErr     error
	width       int
	height      int
}

// New creates a new plant list model.
func New(s store.Store, k *keys.KeyMap, sort model.SortMode, width, height int) Model {
	delegate := &ItemDelegate{}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search plants..."
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		store:       s,
		keys:        k,
		delegate:    delegate,
		filter:      store.PlantFilter{SortBy: sort},
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.updateTitle()
	return m
}

// Init returns a command that loads the initial set of plants.
func (m Model) Init() tea.Cmd {
	return m.LoadPlants()
}

// Update handles messages for the plant list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PlantsLoadedMsg:
		m.loadErr = msg.Err
		items := make([]list.Item, len(msg.Plants))
		for i, p := range msg.Plants {
			items[i] = PlantItem{Plant: p}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadPlants()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadPlants()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		p, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedPlantMsg{PlantID: p.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.SetSort(nextSort(m.filter.SortBy))
		return m, m.LoadPlants()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func nextSort(cur model.SortMode) model.SortMode {
	for i, s := range model.SortModes {
		if s == cur {
			return model.SortModes[(i+1)%len(model.SortModes)]
		}
	}
	return model.SortModes[0]
}

// Selected returns the highlighted plant.
func (m Model) Selected() (model.Plant, bool) {
	item, ok := m.list.SelectedItem().(PlantItem)
	if !ok {
		return model.Plant{}, false
	}
	return item.Plant, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// Sort returns the current sort mode.
func (m Model) Sort() model.SortMode { return m.filter.SortBy }

// MineOnly reports whether the list is restricted to the owner's plants.
func (m Model) MineOnly() bool { return m.mineOnly }

// SetSort changes the sort mode; call LoadPlants afterwards.
func (m *Model) SetSort(mode model.SortMode) {
	m.filter.SortBy = mode
	m.updateTitle()
}

// SetOwner records the signed-in user's email. An empty owner clears the
// "my plants" restriction.
func (m *Model) SetOwner(email string) {
	m.owner = email
	m.delegate.Owner = email
	if email == "" {
		m.mineOnly = false
	}
	m.applyOwnerFilter()
}

// SetMineOnly restricts the list to the owner's plants. It has no effect
// when nobody is signed in.
func (m *Model) SetMineOnly(on bool) {
	m.mineOnly = on && m.owner != ""
	m.applyOwnerFilter()
}

// SetToday overrides the clock used for due highlighting.
func (m *Model) SetToday(today func() time.Time) {
	m.delegate.Today = today
}

func (m *Model) applyOwnerFilter() {
	if m.mineOnly {
		owner := m.owner
		m.filter.OwnerEmail = &owner
	} else {
		m.filter.OwnerEmail = nil
	}
	m.updateTitle()
}

func (m *Model) updateTitle() {
	title := "All Plants"
	if m.mineOnly {
		title = "My Plants"
	}
	m.list.Title = title + " · by " + m.filter.SortBy.Label()
}

// View renders the plant list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no plants are available.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case m.loadErr != nil:
		return style.Render("Could not load plants.\n" + theme.ErrorStyle.Render(m.loadErr.Error()))
	case m.filter.Query != nil:
		return style.Render("No matching plants.\nPress / and esc to clear the search.")
	case m.mineOnly:
		return style.Render("You have no plants yet.\n\nPress n to add one.")
	}
	return style.Render("No plants found.\n\nPress r to sync or n to add one.")
}

// LoadPlants returns a tea.Cmd that queries the store with the current filter.
func (m Model) LoadPlants() tea.Cmd {
	filter := m.filter
	s := m.store
	return func() tea.Msg {
		plants, err := s.GetPlants(context.Background(), filter)
		return PlantsLoadedMsg{Plants: plants, Err: err}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
