package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/plant-care/internal/model"
)

const plantColumns = `
	id, plant_name, category, description, care_level,
	watering_frequency, last_watered_date, next_watering_date,
	health_status, owner_name, owner_email, image_url, synced_at`

// UpsertPlants inserts or replaces a batch of plants in the mirror.
func (s *SQLiteStore) UpsertPlants(ctx context.Context, plants []model.Plant) error {
	if len(plants) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.upsertPlantsTx(ctx, tx, plants); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplacePlants swaps the whole mirror for plants in one transaction, so
// records deleted remotely disappear locally.
func (s *SQLiteStore) ReplacePlants(ctx context.Context, plants []model.Plant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM plants"); err != nil {
		return fmt.Errorf("clearing plants: %w", err)
	}
	if err := s.upsertPlantsTx(ctx, tx, plants); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) upsertPlantsTx(ctx context.Context, tx *sqlx.Tx, plants []model.Plant) error {
	if len(plants) == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT OR REPLACE INTO plants (`+plantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	syncedAt := s.now().UTC()
	for _, p := range plants {
		if p.ID == "" {
			return fmt.Errorf("upserting plant %q: missing id", p.PlantName)
		}
		_, err := stmt.ExecContext(ctx,
			p.ID, p.PlantName, p.Category, p.Description, p.CareLevel,
			p.WateringFrequency, p.LastWateredDate, p.NextWateringDate,
			p.HealthStatus, p.OwnerName, p.OwnerEmail, p.ImageURL, syncedAt,
		)
		if err != nil {
			return fmt.Errorf("upserting plant %s: %w", p.ID, err)
		}
	}
	return nil
}

// GetPlants retrieves mirrored plants matching the filter.
func (s *SQLiteStore) GetPlants(ctx context.Context, filter PlantFilter) ([]model.Plant, error) {
	var conditions []string
	var args []interface{}

	if filter.OwnerEmail != nil {
		conditions = append(conditions, "owner_email = ? COLLATE NOCASE")
		args = append(args, *filter.OwnerEmail)
	}
	if filter.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, strings.ToLower(*filter.Category))
	}
	if filter.CareLevel != nil {
		conditions = append(conditions, "care_level = ?")
		args = append(args, strings.ToLower(*filter.CareLevel))
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(plant_name LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}
	if filter.DueBy != nil {
		conditions = append(conditions, "(next_watering_date != '' AND next_watering_date <= ?)")
		args = append(args, *filter.DueBy)
	}

	query := "SELECT " + plantColumns + " FROM plants"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY " + orderClause(filter.SortBy, filter.SortDesc)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	var plants []model.Plant
	if err := s.db.SelectContext(ctx, &plants, query, args...); err != nil {
		return nil, fmt.Errorf("querying plants: %w", err)
	}
	return plants, nil
}

// orderClause mirrors model.SortPlants: empty dates and unknown care levels
// always sort last regardless of direction.
func orderClause(mode model.SortMode, desc bool) string {
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	switch mode {
	case model.SortByCareLevel:
		return fmt.Sprintf(`CASE care_level
			WHEN 'easy' THEN 0 WHEN 'moderate' THEN 1 WHEN 'difficult' THEN 2 ELSE 3 END = 3,
			CASE care_level
			WHEN 'easy' THEN 0 WHEN 'moderate' THEN 1 WHEN 'difficult' THEN 2 ELSE 3 END %s,
			plant_name COLLATE NOCASE ASC`, direction)
	case model.SortByName:
		return fmt.Sprintf("plant_name COLLATE NOCASE %s, id ASC", direction)
	case model.SortByLastWatered:
		if !desc {
			// Most recently watered first is the natural order here.
			direction = "DESC"
		} else {
			direction = "ASC"
		}
		return fmt.Sprintf("last_watered_date = '' ASC, last_watered_date %s, plant_name COLLATE NOCASE ASC", direction)
	default:
		return fmt.Sprintf("next_watering_date = '' ASC, next_watering_date %s, plant_name COLLATE NOCASE ASC", direction)
	}
}

// GetPlantByID retrieves a single mirrored plant.
func (s *SQLiteStore) GetPlantByID(ctx context.Context, id string) (*model.Plant, error) {
	var p model.Plant
	err := s.db.GetContext(ctx, &p, "SELECT "+plantColumns+" FROM plants WHERE id = ?", id)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("plant %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting plant %s: %w", id, err)
	}
	return &p, nil
}

// DeletePlant removes a plant from the mirror along with its notifications.
func (s *SQLiteStore) DeletePlant(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM plants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting plant %s: %w", id, err)
	}
	if err := requireAffected(res, "plant", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications WHERE plant_id = ?", id); err != nil {
		return fmt.Errorf("deleting notifications for plant %s: %w", id, err)
	}
	return tx.Commit()
}
