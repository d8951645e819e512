package repository

import (
	"context"
	"fmt"

	"luckydraw/database"
	"luckydraw/models"
)

// DrawSettingsRepository implements the DrawSettingsRepository interface.
// The table holds a single row with id 1.
type DrawSettingsRepository struct {
	q queryable
}

// NewDrawSettingsRepository creates a new draw settings repository
func NewDrawSettingsRepository(db *database.DB) *DrawSettingsRepository {
	return &DrawSettingsRepository{q: db.Pool}
}

// newDrawSettingsRepositoryWithTx creates a new draw settings repository with a transaction
func newDrawSettingsRepositoryWithTx(tx queryable) *DrawSettingsRepository {
	return &DrawSettingsRepository{q: tx}
}

// GetOrCreate returns the settings row, creating the default one if missing
func (r *DrawSettingsRepository) GetOrCreate(ctx context.Context) (*models.DrawSettings, error) {
	insert := `
		INSERT INTO draw_settings (id)
		VALUES (1)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert); err != nil {
		return nil, fmt.Errorf("failed to create draw settings: %w", err)
	}

	query := `
		SELECT closed, display_mode, updated_at
		FROM draw_settings
		WHERE id = 1
	`

	var settings models.DrawSettings
	err := r.q.QueryRow(ctx, query).Scan(
		&settings.Closed,
		&settings.DisplayMode,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw settings: %w", err)
	}

	return &settings, nil
}

// Update stores the closed flag and display mode
func (r *DrawSettingsRepository) Update(ctx context.Context, settings *models.DrawSettings) error {
	query := `
		UPDATE draw_settings
		SET closed = $1, display_mode = $2, updated_at = NOW()
		WHERE id = 1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, settings.Closed, string(settings.DisplayMode)).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update draw settings: %w", err)
	}

	return nil
}
