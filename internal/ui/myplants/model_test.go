package myplants

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/api"
	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/store"
	"github.com/nhle/plant-care/internal/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setup(t *testing.T) (Model, *testutil.FakeAPI, store.Store) {
	t.Helper()
	fake := testutil.NewFakeAPI(t, testutil.SamplePlants()...)
	s := testutil.NewTestStore(t)
	require.NoError(t, s.UpsertPlants(context.Background(), testutil.SamplePlants()))

	m := New(s, api.NewClient(fake.URL()), keys.DefaultKeyMap(), 80, 24)
	m.SetOwner("sam@example.com")
	m, _ = m.Update(m.Reload()())
	return m, fake, s
}

func TestMyPlants_ListsOwnerOnly(t *testing.T) {
	m, _, _ := setup(t)
	require.Len(t, m.plants, 2)
	assert.Equal(t, "Boston Fern", m.plants[0].PlantName)
	assert.Equal(t, "Sweet Basil", m.plants[1].PlantName)
	assert.Contains(t, m.View(), "My Plants (2)")
}

func TestMyPlants_NoOwnerListsNothing(t *testing.T) {
	m, _, _ := setup(t)
	m.SetOwner("")
	m, _ = m.Update(m.Reload()())
	assert.Empty(t, m.plants)
}

func TestMyPlants_NavigationAndEdit(t *testing.T) {
	m, _, _ := setup(t)
	m, _ = m.Update(runes("j"))
	_, cmd := m.Update(runes("e"))
	require.NotNil(t, cmd)
	edit, ok := cmd().(EditMsg)
	require.True(t, ok)
	assert.Equal(t, "p2", edit.Plant.ID)

	m, _ = m.Update(runes("j"))
	assert.Equal(t, 0, m.selectedIdx, "wraps around")
}

func TestMyPlants_DeleteAsksForConfirmation(t *testing.T) {
	m, _, _ := setup(t)
	m, _ = m.Update(runes("d"))
	assert.True(t, m.Confirming())
	assert.Contains(t, m.View(), "Boston Fern")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.False(t, m.Confirming())
	assert.Len(t, m.plants, 2)
}

func TestMyPlants_DeleteRemovesRemoteAndLocal(t *testing.T) {
	m, fake, s := setup(t)
	p := m.plants[0]

	msg := m.Delete(p)()
	deleted, ok := msg.(PlantDeletedMsg)
	require.True(t, ok)
	require.NoError(t, deleted.Err)

	_, remote := fake.Plant(p.ID)
	assert.False(t, remote)
	_, err := s.GetPlantByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	m, cmd := m.Update(deleted)
	assert.Contains(t, m.statusMsg, "Deleted Boston Fern")
	m, _ = m.Update(cmd())
	assert.Len(t, m.plants, 1)

	// Deleting again is tolerated.
	again := m.Delete(p)().(PlantDeletedMsg)
	assert.NoError(t, again.Err)
}
