package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/plant-care/internal/model"
	"github.com/nhle/plant-care/internal/schedule"
)

func validPlant() model.Plant {
	return model.Plant{
		PlantName:         "Boston Fern",
		Category:          "Fern",
		CareLevel:         "Moderate",
		WateringFrequency: "every 3 days",
		LastWateredDate:   "2024-01-10",
		HealthStatus:      "healthy",
		OwnerName:         "Sam",
		OwnerEmail:        "sam@example.com",
		ImageURL:          "https://example.com/fern.jpg",
	}
}

func TestPlant_PrepareForSubmission(t *testing.T) {
	p := validPlant()
	p.LastWateredDate = "2024-01-10T09:00:00Z"
	p.NextWateringDate = "1999-01-01"

	require.NoError(t, p.PrepareForSubmission())
	assert.Equal(t, "fern", p.Category)
	assert.Equal(t, "moderate", p.CareLevel)
	assert.Equal(t, "2024-01-10", p.LastWateredDate)
	assert.Equal(t, "2024-01-13", p.NextWateringDate)
}

func TestPlant_PrepareForSubmissionBadDate(t *testing.T) {
	p := validPlant()
	p.LastWateredDate = "2024-13-45"

	err := p.PrepareForSubmission()
	require.Error(t, err)

	var dfe *schedule.DateFormatError
	require.ErrorAs(t, err, &dfe)
	assert.Equal(t, "2024-13-45", dfe.Input)

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "lastWateredDate", ve.Fields[0].Field)
	assert.Equal(t, "2024-13-45", p.LastWateredDate)
}

func TestPlant_Recompute(t *testing.T) {
	p := validPlant()
	p.Recompute()
	assert.Equal(t, "2024-01-13", p.NextWateringDate)

	p.WateringFrequency = "weekly"
	p.Recompute()
	assert.Empty(t, p.NextWateringDate)

	p.WateringFrequency = "every 7 days"
	p.LastWateredDate = "2024-02-25"
	p.Recompute()
	assert.Equal(t, "2024-03-03", p.NextWateringDate)
}

func TestPlant_Validate(t *testing.T) {
	p := model.Plant{
		Category:        "cactus",
		CareLevel:       "hard",
		LastWateredDate: "yesterday",
		ImageURL:        "ftp://x",
		OwnerEmail:      "not-an-email",
	}

	err := p.Validate()
	require.Error(t, err)

	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)

	fields := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{
		"plantName", "category", "careLevel", "wateringFrequency",
		"lastWateredDate", "healthStatus", "image", "userEmail",
	}, fields)
}

func TestPlant_JSON(t *testing.T) {
	var p model.Plant
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"abc","plantName":"Aloe","userEmail":"a@b.c"}`), &p))
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "Aloe", p.PlantName)
	assert.Equal(t, "a@b.c", p.OwnerEmail)

	var alt model.Plant
	require.NoError(t, json.Unmarshal([]byte(`{"id":"xyz"}`), &alt))
	assert.Equal(t, "xyz", alt.ID)

	out, err := json.Marshal(model.Plant{ID: "1", PlantName: "Mint"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"_id":"1"`)
	assert.Contains(t, string(out), `"plantName":"Mint"`)
}

func TestSortPlants(t *testing.T) {
	plants := []model.Plant{
		{ID: "a", CareLevel: "difficult", NextWateringDate: "2024-01-05", LastWateredDate: "2024-01-02", PlantName: "b"},
		{ID: "b", CareLevel: "easy", NextWateringDate: "", LastWateredDate: "", PlantName: "C"},
		{ID: "c", CareLevel: "unknown", NextWateringDate: "2024-01-01", LastWateredDate: "2024-01-04", PlantName: "a"},
		{ID: "d", CareLevel: "moderate", NextWateringDate: "2024-01-03", LastWateredDate: "2024-01-03", PlantName: "d"},
	}

	order := func() []string {
		out := make([]string, len(plants))
		for i, p := range plants {
			out[i] = p.ID
		}
		return out
	}

	model.SortPlants(plants, model.SortByNextWatering)
	assert.Equal(t, []string{"c", "d", "a", "b"}, order())

	model.SortPlants(plants, model.SortByCareLevel)
	assert.Equal(t, []string{"b", "d", "a", "c"}, order())

	model.SortPlants(plants, model.SortByName)
	assert.Equal(t, []string{"c", "a", "b", "d"}, order())

	model.SortPlants(plants, model.SortByLastWatered)
	assert.Equal(t, []string{"c", "d", "a", "b"}, order())
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, model.SortByCareLevel, model.ParseSortMode("care-level"))
	assert.Equal(t, model.SortByCareLevel, model.ParseSortMode("careLevel"))
	assert.Equal(t, model.SortByNextWatering, model.ParseSortMode("nextWatering"))
	assert.Equal(t, model.SortByName, model.ParseSortMode("name"))
	assert.Equal(t, model.SortByNextWatering, model.ParseSortMode("bogus"))
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	plants := []model.Plant{
		{ID: "1", Category: "fern", LastWateredDate: "2024-01-10", NextWateringDate: "2024-01-13"},
		{ID: "2", Category: "fern", LastWateredDate: "2024-01-07", NextWateringDate: "2024-01-10"},
		{ID: "3", Category: "herb", LastWateredDate: "2024-01-01", NextWateringDate: "2024-01-08"},
		{ID: "4", Category: "tree", LastWateredDate: "2024-01-01", NextWateringDate: "2024-02-01"},
	}

	s := model.Summarize(plants, day)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.DueToday)
	assert.Equal(t, 1, s.WateredToday)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, map[string]int{"fern": 2, "herb": 1, "tree": 1}, s.ByCategory)
	require.Len(t, s.UpcomingWeek, 2)
	assert.Equal(t, "2", s.UpcomingWeek[0].ID)
	assert.Equal(t, "1", s.UpcomingWeek[1].ID)

	assert.True(t, plants[2].NeedsWater(day))
	assert.False(t, plants[3].NeedsWater(day))
}

func TestFilterOwned(t *testing.T) {
	plants := []model.Plant{{ID: "1", OwnerEmail: "Sam@Example.com"}, {ID: "2", OwnerEmail: "kim@example.com"}}
	got := model.FilterOwned(plants, "sam@example.com")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Empty(t, model.FilterOwned(plants, ""))
}
