package testutil

import "github.com/nhle/plant-care/internal/model"

// SamplePlants returns a fresh set of plants owned by two users.
// Ordered by next watering they are p3, p1, p2, p4 (p4 has no schedule).
func SamplePlants() []model.Plant {
	return []model.Plant{
		{
			ID: "p1", PlantName: "Boston Fern", Category: model.CategoryFern, CareLevel: model.CareEasy,
			Description: "Likes humidity", WateringFrequency: "every 3 days",
			LastWateredDate: "2024-01-09", NextWateringDate: "2024-01-12", HealthStatus: "healthy",
			OwnerName: "Sam", OwnerEmail: "sam@example.com",
		},
		{
			ID: "p2", PlantName: "Sweet Basil", Category: model.CategoryHerb, CareLevel: model.CareDifficult,
			Description: "Kitchen window", WateringFrequency: "every 5 days",
			LastWateredDate: "2024-01-10", NextWateringDate: "2024-01-15", HealthStatus: "needs attention",
			OwnerName: "Sam", OwnerEmail: "sam@example.com",
		},
		{
			ID: "p3", PlantName: "Aloe Vera", Category: model.CategorySucculent, CareLevel: model.CareModerate,
			WateringFrequency: "every 14 days",
			LastWateredDate: "2023-12-27", NextWateringDate: "2024-01-10", HealthStatus: "healthy",
			OwnerName: "Kim", OwnerEmail: "kim@example.com",
		},
		{
			ID: "p4", PlantName: "Mystery Tree", Category: model.CategoryTree,
			WateringFrequency: "when dry",
			LastWateredDate: "2024-01-01", HealthStatus: "healthy",
			OwnerName: "Kim", OwnerEmail: "kim@example.com",
		},
	}
}
