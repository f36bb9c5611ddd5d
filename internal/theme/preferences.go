package theme

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DarkModeKey is the storage slot holding the dark mode flag.
const DarkModeKey = "darkMode"

// Storage is the key-value slot store preferences persist to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Preferences is the user's display preference. It is loaded once at start
// and passed to the views that need it.
type Preferences struct {
	DarkMode bool
}

// DefaultPreferences derives the initial preference from the configured
// theme: "dark", "light" or "auto" (follow the terminal).
func DefaultPreferences(configured string) Preferences {
	switch strings.ToLower(configured) {
	case "dark":
		return Preferences{DarkMode: true}
	case "light":
		return Preferences{DarkMode: false}
	}
	return Preferences{DarkMode: lipgloss.HasDarkBackground()}
}

// LoadPreferences returns the stored preference, or fallback when nothing
// valid is stored.
func LoadPreferences(ctx context.Context, s Storage, fallback Preferences) Preferences {
	raw, found, err := s.Get(ctx, DarkModeKey)
	if err != nil || !found {
		return fallback
	}
	dark, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return Preferences{DarkMode: dark}
}

// Save persists p.
func (p Preferences) Save(ctx context.Context, s Storage) error {
	if err := s.Set(ctx, DarkModeKey, strconv.FormatBool(p.DarkMode)); err != nil {
		return fmt.Errorf("saving display preference: %w", err)
	}
	return nil
}

// Toggled returns p with dark mode flipped.
func (p Preferences) Toggled() Preferences {
	return Preferences{DarkMode: !p.DarkMode}
}

// Apply makes every adaptive color resolve for p.
func (p Preferences) Apply() {
	lipgloss.SetHasDarkBackground(p.DarkMode)
}

// Label names the active mode.
func (p Preferences) Label() string {
	if p.DarkMode {
		return "dark"
	}
	return "light"
}
