package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/keys"
	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/testutil"
)

func day() time.Time { return time.Date(2024, time.January, 12, 0, 0, 0, 0, time.UTC) }

func TestDashboard_Figures(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewSeededStore(t)
	_, err := s.CreateNotification(ctx, model.Notification{PlantID: "p1", Day: "2024-01-12", Message: "Water Boston Fern today"})
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 100, 40)
	m.SetToday(day)
	m, _ = m.Update(m.Reload()())

	sum := m.Summary()
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 1, sum.DueToday)
	assert.Equal(t, 1, sum.Overdue)
	assert.Equal(t, 0, sum.WateredToday)
	assert.Equal(t, 1, sum.ByCategory[model.CategoryFern])

	view := m.View()
	assert.Contains(t, view, "Notifications (1)")
	assert.Contains(t, view, "Water Boston Fern today")
}

func TestDashboard_OwnerOnly(t *testing.T) {
	s := testutil.NewSeededStore(t)

	m := New(s, keys.DefaultKeyMap(), 100, 40)
	m.SetToday(day)
	m.SetOwner("kim@example.com")
	m, _ = m.Update(m.Reload()())

	sum := m.Summary()
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 0, sum.DueToday)
	assert.Equal(t, 1, sum.Overdue)
}

func TestDashboard_MarkAllRead(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	_, err := s.CreateNotification(ctx, model.Notification{PlantID: "p1", Day: "2024-01-12", Message: "x"})
	require.NoError(t, err)

	m := New(s, keys.DefaultKeyMap(), 100, 40)
	assert.Nil(t, m.MarkAllRead()())

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestSortedCategories(t *testing.T) {
	got := sortedCategories(map[string]int{"herb": 1, "fern": 3, "tree": 1})
	assert.Equal(t, []string{"fern", "herb", "tree"}, got)
}
