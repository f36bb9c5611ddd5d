package plantform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
	"github.com/nhle/plant-care/internal/theme"
)

// PlantSubmittedMsg is dispatched when the form completes. Plant carries the
// edited record including its recomputed next watering date; Edit is set
// when an existing plant was changed.
type PlantSubmittedMsg struct {
	Plant model.Plant
	Edit  bool
}

// PlantFormCancelMsg is dispatched when the user cancels the form.
type PlantFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name         string
	category     string
	description  string
	careLevel    string
	frequency    string
	lastWatered  string
	healthStatus string
	imageURL     string

	// nextWatering is derived, never bound to an input.
	nextWatering string
}

func (fb *formBindings) recompute() {
	fb.nextWatering = schedule.ComputeNextWateringDate(fb.lastWatered, fb.frequency)
}

// Model is the Bubble Tea model for the plant create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	base     model.Plant
	editMode bool
	today    func() time.Time
	width    int
	height   int
}

// New creates a new plant form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		today:  func() time.Time { return schedule.Today(time.Now) },
		width:  width,
		height: height,
	}
}

// SetToday overrides the clock used to prefill the last watered date.
func (m *Model) SetToday(today func() time.Time) {
	m.today = today
}

// StartCreate initializes the form for a new plant owned by owner.
func (m *Model) StartCreate(owner model.Plant) tea.Cmd {
	m.editMode = false
	m.base = model.Plant{OwnerName: owner.OwnerName, OwnerEmail: owner.OwnerEmail}
	*m.fb = formBindings{
		category:     model.CategorySucculent,
		careLevel:    model.CareEasy,
		lastWatered:  schedule.FormatDate(m.today()),
		healthStatus: "healthy",
	}
	m.fb.recompute()
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing plant.
func (m *Model) StartEdit(p model.Plant) tea.Cmd {
	m.editMode = true
	m.base = p
	*m.fb = formBindings{
		name:         p.PlantName,
		category:     strings.ToLower(p.Category),
		description:  p.Description,
		careLevel:    strings.ToLower(p.CareLevel),
		frequency:    p.WateringFrequency,
		lastWatered:  p.LastWateredDate,
		healthStatus: p.HealthStatus,
		imageURL:     p.ImageURL,
	}
	if d, err := schedule.NormalizeDateForSubmission(p.LastWateredDate); err == nil {
		m.fb.lastWatered = d
	}
	m.fb.recompute()
	m.form = m.buildForm()
	return m.form.Init()
}

// NextWatering returns the date derived from the current field values, or
// an empty string when it cannot be derived.
func (m Model) NextWatering() string {
	return m.fb.nextWatering
}

// Editing reports whether the form edits an existing plant.
func (m Model) Editing() bool { return m.editMode }

// Update handles messages for the plant form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	m.fb.recompute()

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return PlantFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the plant form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Add Plant"
	if m.editMode {
		titleText = "Update " + m.base.PlantName
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fb := m.fb

	categories := make([]huh.Option[string], len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = huh.NewOption(title(c), c)
	}
	careLevels := make([]huh.Option[string], len(model.CareLevels))
	for i, c := range model.CareLevels {
		careLevels[i] = huh.NewOption(title(c), c)
	}

	plant := huh.NewGroup(
		huh.NewInput().
			Title("Plant Name").
			Placeholder("e.g. Monstera").
			Value(&fb.name).
			Validate(validateRequired("Plant name")),
		huh.NewSelect[string]().
			Title("Category").
			Options(categories...).
			Value(&fb.category),
		huh.NewText().
			Title("Description").
			Placeholder("Optional notes...").
			Value(&fb.description),
		huh.NewSelect[string]().
			Title("Care Level").
			Options(careLevels...).
			Value(&fb.careLevel),
		huh.NewInput().
			Title("Image URL").
			Placeholder("https://... (optional)").
			Value(&fb.imageURL),
	)

	care := huh.NewGroup(
		huh.NewInput().
			Title("Watering Frequency").
			Placeholder("e.g. every 3 days").
			Value(&fb.frequency).
			Validate(validateRequired("Watering frequency")),
		huh.NewInput().
			Title("Last Watered").
			Placeholder("YYYY-MM-DD").
			Value(&fb.lastWatered).
			Validate(validateDate),
		huh.NewNote().
			Title("Next Watering").
			DescriptionFunc(func() string {
				if fb.nextWatering == "" {
					return "not scheduled: enter a date and a frequency with a number of days"
				}
				return fb.nextWatering
			}, fb),
		huh.NewInput().
			Title("Health Status").
			Placeholder("e.g. healthy").
			Value(&fb.healthStatus).
			Validate(validateRequired("Health status")),
	)

	return huh.NewForm(plant, care).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	p := m.base
	p.PlantName = m.fb.name
	p.Category = m.fb.category
	p.Description = m.fb.description
	p.CareLevel = m.fb.careLevel
	p.WateringFrequency = m.fb.frequency
	p.LastWateredDate = m.fb.lastWatered
	p.HealthStatus = m.fb.healthStatus
	p.ImageURL = m.fb.imageURL
	p.Recompute()

	edit := m.editMode
	return func() tea.Msg { return PlantSubmittedMsg{Plant: p, Edit: edit} }
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

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := schedule.NormalizeDateForSubmission(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
