package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	msg, err := Parse(":Sort care_level")
	require.NoError(t, err)
	assert.Equal(t, Sort, msg.Name)
	assert.Equal(t, []string{"care_level"}, msg.Args)

	msg, err = Parse("q")
	require.NoError(t, err)
	assert.Equal(t, Quit, msg.Name)

	_, err = Parse("sort")
	assert.Error(t, err)
	_, err = Parse("fertilize")
	assert.ErrorContains(t, err, "unknown command")
	_, err = Parse("   ")
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, []Name{Dark, Dashboard}, Suggest("da"))
	assert.Equal(t, []Name{Login, Logout}, Suggest("lo"))
	assert.Empty(t, Suggest("zz"))
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := New(80, 20)
	for _, r := range "mine" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: Mine, Args: []string{}}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}
