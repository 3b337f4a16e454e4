package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academy-booking-api/internal/models"
)

// SeasonRepository reads seasons and their slot template catalog.
type SeasonRepository struct {
	db *sqlx.DB
}

// NewSeasonRepository constructs the repository.
func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

// FindByID returns a season by its ID.
func (r *SeasonRepository) FindByID(ctx context.Context, id string) (*models.Season, error) {
	const query = `SELECT id, name, start_month, end_month, created_at FROM seasons WHERE id = $1`
	var season models.Season
	if err := r.db.GetContext(ctx, &season, query, id); err != nil {
		return nil, err
	}
	return &season, nil
}

// ListTemplates returns the slot templates registered for a season.
func (r *SeasonRepository) ListTemplates(ctx context.Context, seasonID string) ([]models.SlotTemplate, error) {
	const query = `SELECT id, season_id, day_type, time_slot, category, capacity, is_break
        FROM slot_templates WHERE season_id = $1 ORDER BY day_type, time_slot`
	var templates []models.SlotTemplate
	if err := r.db.SelectContext(ctx, &templates, query, seasonID); err != nil {
		return nil, fmt.Errorf("list slot templates: %w", err)
	}
	return templates, nil
}
