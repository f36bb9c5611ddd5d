package myplants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/store"
	"github.com/nhle/plant-care/internal/theme"
)

// CloseMsg signals the parent to close the view.
type CloseMsg struct{}

// AddMsg asks the parent to open the plant form for a new plant.
type AddMsg struct{}

// EditMsg asks the parent to open the plant form for Plant.
type EditMsg struct {
	Plant model.Plant
}

// OpenMsg asks the parent to show the detail view for PlantID.
type OpenMsg struct {
	PlantID string
}

// PlantDeletedMsg reports the outcome of a confirmed delete.
type PlantDeletedMsg struct {
	PlantID string
	Name    string
	Err     error
}

type mode int

const (
	modeList mode = iota
	modeConfirmDelete
)

type formBindings struct {
	confirm bool
}

type plantsLoadedMsg struct {
	plants []model.Plant
	err    error
}

// Model lists the signed-in user's plants with edit and delete actions.
type Model struct {
	mode        mode
	store       store.Store
	api         api.PlantService
	keys        *keys.KeyMap
	owner       string
	plants      []model.Plant
	selectedIdx int
	confirmForm *huh.Form
	target      model.Plant
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new my plants model.
func New(s store.Store, svc api.PlantService, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		store: s,
		api:   svc,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// SetOwner sets whose plants are listed. Call Reload afterwards.
func (m *Model) SetOwner(email string) {
	m.owner = email
}

// Init loads the owner's plants from the store.
func (m Model) Init() tea.Cmd {
	return m.Reload()
}

// Confirming reports whether the delete confirmation is showing.
func (m Model) Confirming() bool { return m.mode == modeConfirmDelete }

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case plantsLoadedMsg:
		m.plants = msg.plants
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		if m.selectedIdx >= len(m.plants) {
			m.selectedIdx = max(len(m.plants)-1, 0)
		}
		return m, nil

	case PlantDeletedMsg:
		if msg.Err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.Err)
		} else {
			m.statusMsg = fmt.Sprintf("Deleted %s", msg.Name)
		}
		m.mode = modeList
		return m, m.Reload()

	case tea.KeyMsg:
		if m.mode == modeConfirmDelete {
			return m.updateConfirm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.mode == modeConfirmDelete {
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.plants) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.plants)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.plants) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.plants) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		return m, func() tea.Msg { return AddMsg{} }

	case key.Matches(msg, m.keys.Select):
		if p, ok := m.selected(); ok {
			return m, func() tea.Msg { return OpenMsg{PlantID: p.ID} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if p, ok := m.selected(); ok {
			return m, func() tea.Msg { return EditMsg{Plant: p} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.ConfirmDelete(p)
	}
	return m, nil
}

// ConfirmDelete asks the user to confirm deleting p.
func (m *Model) ConfirmDelete(p model.Plant) tea.Cmd {
	m.target = p
	m.fb.confirm = false
	m.confirmForm = m.buildConfirmForm()
	m.mode = modeConfirmDelete
	return m.confirmForm.Init()
}

func (m Model) selected() (model.Plant, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.plants) {
		return model.Plant{}, false
	}
	return m.plants[m.selectedIdx], true
}

func (m Model) buildConfirmForm() *huh.Form {
	p := m.target
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", p.PlantName)).
				Description("This removes the plant from your collection.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm && m.target.ID != "" {
			return m, m.Delete(m.target)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

// View renders the list or the delete confirmation.
func (m Model) View() string {
	if m.mode == modeConfirmDelete && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("My Plants (%d)", len(m.plants))))
	b.WriteString("\n\n")

	if len(m.plants) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No plants yet. Press 'n' to add one."))
	} else {
		header := fmt.Sprintf("  %-24s %-10s %-10s %-12s", "Name", "Category", "Care", "Next water")
		b.WriteString(theme.HelpStyle.Render(header))
		b.WriteString("\n")
		for i, p := range m.plants {
			next := p.NextWateringDate
			if next == "" {
				next = "unknown"
			}
			label := fmt.Sprintf("%-24s %-10s %-10s %-12s",
				truncate(p.PlantName, 24), p.Category, p.CareLevel, next)

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
	b.WriteString(theme.HelpStyle.Render(
		"n add | enter view | e edit | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
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

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// Reload returns a command that reads the owner's plants from the mirror.
func (m Model) Reload() tea.Cmd {
	s := m.store
	owner := m.owner
	return func() tea.Msg {
		if owner == "" {
			return plantsLoadedMsg{}
		}
		plants, err := s.GetPlants(context.Background(), store.PlantFilter{
			OwnerEmail: &owner,
			SortBy:     model.SortByNextWatering,
		})
		return plantsLoadedMsg{plants: plants, err: err}
	}
}

// Delete removes p remotely and then from the local mirror. A plant already
// gone from the remote collection is still dropped locally.
func (m Model) Delete(p model.Plant) tea.Cmd {
	s := m.store
	svc := m.api
	return func() tea.Msg {
		ctx := context.Background()
		err := svc.DeletePlant(ctx, p.ID)
		if err != nil && !errors.Is(err, api.ErrNotFound) {
			return PlantDeletedMsg{PlantID: p.ID, Name: p.PlantName, Err: err}
		}
		if err := s.DeletePlant(ctx, p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return PlantDeletedMsg{PlantID: p.ID, Name: p.PlantName, Err: err}
		}
		return PlantDeletedMsg{PlantID: p.ID, Name: p.PlantName}
	}
}
