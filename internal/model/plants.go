package model

import (
	"slices"
	"strings"
	"time"

	"github.com/nhle/plant-care/internal/schedule"
)

// SortMode selects the ordering of plant lists.
type SortMode string

const (
	SortByNextWatering SortMode = "next_watering"
	SortByCareLevel    SortMode = "care_level"
	SortByName         SortMode = "plant_name"
	SortByLastWatered  SortMode = "last_watered"
)

// SortModes lists the modes the list view cycles through.
var SortModes = []SortMode{SortByNextWatering, SortByCareLevel, SortByName, SortByLastWatered}

// Label returns a human readable name for the mode.
func (m SortMode) Label() string {
	switch m {
	case SortByNextWatering:
		return "next watering"
	case SortByCareLevel:
		return "care level"
	case SortByName:
		return "name"
	case SortByLastWatered:
		return "last watered"
	}
	return string(m)
}

// ParseSortMode maps a user supplied string to a mode. Unknown input falls
// back to SortByNextWatering.
func ParseSortMode(s string) SortMode {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	for _, m := range SortModes {
		if string(m) == s {
			return m
		}
	}
	switch s {
	case "nextwatering", "next":
		return SortByNextWatering
	case "carelevel", "care":
		return SortByCareLevel
	case "name":
		return SortByName
	}
	return SortByNextWatering
}

// CareRank orders care levels; unknown levels sort last.
func CareRank(level string) int {
	for i, l := range CareLevels {
		if strings.EqualFold(l, level) {
			return i
		}
	}
	return len(CareLevels)
}

// dateKey returns the parsed date and whether it is valid.
func dateKey(s string) (time.Time, bool) {
	t, err := schedule.ParseDate(s)
	return t, err == nil
}

// compareDates orders valid dates before invalid ones in either direction.
func compareDates(a, b string, desc bool) int {
	ta, okA := dateKey(a)
	tb, okB := dateKey(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if desc {
		return tb.Compare(ta)
	}
	return ta.Compare(tb)
}

// SortPlants orders plants in place. Plants without a usable date or with an
// unknown care level sort after the rest; ties keep their input order.
func SortPlants(plants []Plant, mode SortMode) {
	slices.SortStableFunc(plants, func(a, b Plant) int {
		switch mode {
		case SortByCareLevel:
			return CareRank(a.CareLevel) - CareRank(b.CareLevel)
		case SortByName:
			return strings.Compare(strings.ToLower(a.PlantName), strings.ToLower(b.PlantName))
		case SortByLastWatered:
			return compareDates(a.LastWateredDate, b.LastWateredDate, true)
		default:
			return compareDates(a.NextWateringDate, b.NextWateringDate, false)
		}
	})
}

// DueOn returns the plants whose next watering date is day.
func DueOn(plants []Plant, day time.Time) []Plant {
	want := schedule.FormatDate(day)
	var out []Plant
	for _, p := range plants {
		if p.NextWateringDate == want {
			out = append(out, p)
		}
	}
	return out
}

// WateredOn returns the plants last watered on day.
func WateredOn(plants []Plant, day time.Time) []Plant {
	want := schedule.FormatDate(day)
	var out []Plant
	for _, p := range plants {
		if d, ok := dateKey(p.LastWateredDate); ok && schedule.FormatDate(d) == want {
			out = append(out, p)
		}
	}
	return out
}

// Overdue reports whether p should have been watered before day.
func (p Plant) Overdue(day time.Time) bool {
	next, ok := dateKey(p.NextWateringDate)
	return ok && next.Before(day)
}

// NeedsWater reports whether p is due on or before day.
func (p Plant) NeedsWater(day time.Time) bool {
	next, ok := dateKey(p.NextWateringDate)
	return ok && !next.After(day)
}

// CategoryCounts returns the number of plants per category.
func CategoryCounts(plants []Plant) map[string]int {
	counts := make(map[string]int)
	for _, p := range plants {
		counts[p.Category]++
	}
	return counts
}

// Summary is the dashboard overview of a plant collection.
type Summary struct {
	Total        int
	DueToday     int
	Overdue      int
	WateredToday int
	ByCategory   map[string]int
	UpcomingWeek []Plant
}

// Summarize computes dashboard figures for day.
func Summarize(plants []Plant, day time.Time) Summary {
	s := Summary{
		Total:        len(plants),
		DueToday:     len(DueOn(plants, day)),
		WateredToday: len(WateredOn(plants, day)),
		ByCategory:   CategoryCounts(plants),
	}
	weekEnd := schedule.AddDays(day, 7)
	for _, p := range plants {
		if p.Overdue(day) {
			s.Overdue++
		}
		if next, ok := dateKey(p.NextWateringDate); ok && !next.Before(day) && next.Before(weekEnd) {
			s.UpcomingWeek = append(s.UpcomingWeek, p)
		}
	}
	SortPlants(s.UpcomingWeek, SortByNextWatering)
	return s
}

// FilterOwned returns the plants owned by email.
func FilterOwned(plants []Plant, email string) []Plant {
	var out []Plant
	for _, p := range plants {
		if p.IsOwnedBy(email) {
			out = append(out, p)
		}
	}
	return out
}
