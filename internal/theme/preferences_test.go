package theme_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/recent"
	"github.com/nhle/plant-care/internal/theme"
)

func TestPreferences_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := &recent.MemoryStorage{}

	got := theme.LoadPreferences(ctx, store, theme.Preferences{DarkMode: true})
	assert.True(t, got.DarkMode)

	require.NoError(t, got.Toggled().Save(ctx, store))
	got = theme.LoadPreferences(ctx, store, theme.Preferences{DarkMode: true})
	assert.False(t, got.DarkMode)
	assert.Equal(t, "light", got.Label())

	require.NoError(t, store.Set(ctx, theme.DarkModeKey, "maybe"))
	got = theme.LoadPreferences(ctx, store, theme.Preferences{DarkMode: true})
	assert.True(t, got.DarkMode)
}

func TestDefaultPreferences(t *testing.T) {
	assert.True(t, theme.DefaultPreferences("dark").DarkMode)
	assert.False(t, theme.DefaultPreferences("LIGHT").DarkMode)
}
