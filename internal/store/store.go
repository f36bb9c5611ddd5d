package store

import (
	"context"
	"errors"

	"github.com/nhle/plant-care/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// PlantFilter controls filtering, sorting, and pagination for plant queries
// against the local mirror.
type PlantFilter struct {
	OwnerEmail *string // case-insensitive owner match
	Category   *string
	CareLevel  *string
	Query      *string // search name + description
	DueBy      *string // YYYY-MM-DD; plants due on or before this day
	SortBy     model.SortMode
	SortDesc   bool
	Limit      int
	Offset     int
}

// Store defines the local persistence interface: the plant mirror, the
// key-value slots used for preferences and the recently viewed cache, and
// watering notifications.
type Store interface {
	// === Plants mirror ===

	ReplacePlants(ctx context.Context, plants []model.Plant) error
	UpsertPlants(ctx context.Context, plants []model.Plant) error
	GetPlants(ctx context.Context, filter PlantFilter) ([]model.Plant, error)
	GetPlantByID(ctx context.Context, id string) (*model.Plant, error)
	DeletePlant(ctx context.Context, id string) error

	// === Key-value slots ===

	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) (bool, error)
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}
