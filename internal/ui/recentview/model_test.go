package recentview

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/testutil"
)

func seeded(t *testing.T) (Model, *recent.Tracker) {
	t.Helper()
	ctx := context.Background()
	tr := recent.New(&recent.MemoryStorage{}, recent.WithCapacity(3))
	for _, p := range testutil.SamplePlants() {
		_, err := tr.RecordView(ctx, p.ID, p)
		require.NoError(t, err)
	}
	m := New(tr, keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(m.Reload()())
	return m, tr
}

func TestRecentView_ListsMostRecentFirst(t *testing.T) {
	m, _ := seeded(t)
	require.Equal(t, 3, m.Len())
	assert.Equal(t, "p4", m.entries[0].id)
	assert.Contains(t, m.View(), "Recently Viewed (3/3)")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, OpenMsg{PlantID: "p3"}, cmd())
}

func TestRecentView_Forget(t *testing.T) {
	m, tr := seeded(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	assert.Equal(t, 2, m.Len())
	items, err := tr.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p3", items[0].ID)
}

func TestRecentView_ClearConfirmation(t *testing.T) {
	m, tr := seeded(t)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.True(t, m.Confirming())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.False(t, m.Confirming())
	assert.Equal(t, 3, m.Len())

	m, _ = m.Update(m.Clear()())
	assert.Equal(t, 0, m.Len())
	assert.Contains(t, m.View(), "cleared")

	items, err := tr.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRecentView_Back(t *testing.T) {
	m := New(nil, keys.DefaultKeyMap(), 80, 24)
	m, _ = m.Update(m.Reload()())
	assert.Contains(t, m.View(), "Nothing viewed yet")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
}
