package plantform

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/testutil"
)

type tick struct{}

func fixedDay() time.Time { return time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC) }

func TestForm_CreatePrefillsToday(t *testing.T) {
	m := New(80, 30)
	m.SetToday(fixedDay)
	m.StartCreate(model.Plant{OwnerName: "Sam", OwnerEmail: "sam@example.com"})

	assert.False(t, m.Editing())
	assert.Equal(t, "2024-01-12", m.fb.lastWatered)
	assert.Empty(t, m.NextWatering(), "no frequency yet")
}

func TestForm_RecomputesAfterEveryEdit(t *testing.T) {
	m := New(80, 30)
	m.StartEdit(testutil.SamplePlants()[0])
	assert.Equal(t, "2024-01-12", m.NextWatering())

	m.fb.frequency = "every 10 days"
	m, _ = m.Update(tick{})
	assert.Equal(t, "2024-01-19", m.NextWatering())

	m.fb.lastWatered = "2024-02-28"
	m, _ = m.Update(tick{})
	assert.Equal(t, "2024-03-09", m.NextWatering())

	m.fb.frequency = "when the soil is dry"
	m, _ = m.Update(tick{})
	assert.Empty(t, m.NextWatering(), "stale date must not survive")

	m.fb.frequency = "3"
	m.fb.lastWatered = "not a date"
	m, _ = m.Update(tick{})
	assert.Empty(t, m.NextWatering())
}

func TestForm_SubmitKeepsIdentity(t *testing.T) {
	m := New(80, 30)
	src := testutil.SamplePlants()[1]
	m.StartEdit(src)
	m.fb.name = "Thai Basil"
	m.fb.frequency = "every 2 days"

	msg := m.handleSubmit()()
	sub, ok := msg.(PlantSubmittedMsg)
	require.True(t, ok)
	assert.True(t, sub.Edit)
	assert.Equal(t, src.ID, sub.Plant.ID)
	assert.Equal(t, src.OwnerEmail, sub.Plant.OwnerEmail)
	assert.Equal(t, "Thai Basil", sub.Plant.PlantName)
	assert.Equal(t, "2024-01-12", sub.Plant.NextWateringDate)
}

func TestForm_AbortCancels(t *testing.T) {
	m := New(80, 30)
	m.StartCreate(model.Plant{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, PlantFormCancelMsg{}, cmd())
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, validateDate("2024-01-12"))
	assert.NoError(t, validateDate("2024-01-12T09:00:00Z"))
	assert.Error(t, validateDate("12/01/2024"))
	assert.Error(t, validateDate(""))
}
