package model

import "time"

// Notification is a watering reminder surfaced in the app. At most one
// notification exists per plant and day.
type Notification struct {
	ID string `json:"id" db:"id"`

	// PlantID links this notification to the plant that needs water.
	PlantID string `json:"plant_id" db:"plant_id"`

	// Day is the calendar date (YYYY-MM-DD) the reminder is for.
	Day string `json:"day" db:"day"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read" db:"read"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
